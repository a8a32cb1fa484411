package glyph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigitShapes(t *testing.T) {
	tests := []struct {
		digit int
		want  string
	}{
		{0, ".###.\n#...#\n#...#\n#...#\n.###.\n"},
		{1, "..#..\n.##..\n..#..\n..#..\n.###.\n"},
		{7, "#####\n....#\n...#.\n..#..\n..#..\n"},
	}

	for _, tt := range tests {
		b, ok := Lookup(tt.digit)
		require.True(t, ok)
		assert.Equal(t, tt.want, b.String(), "digit %d", tt.digit)
	}
}

func TestDigitsDistinct(t *testing.T) {
	seen := map[Bitmap]int{}
	for d, b := range Digits {
		if prev, ok := seen[b]; ok {
			t.Errorf("digit %d has the same glyph as %d", d, prev)
		}
		seen[b] = d
		for y, row := range b {
			assert.Zero(t, row&^0x1f, "digit %d row %d uses more than 5 columns", d, y)
		}
		assert.NotZero(t, b.Count(), "digit %d is blank", d)
	}
}

func TestLookup(t *testing.T) {
	for _, d := range []int{-1, 10, 42} {
		_, ok := Lookup(d)
		assert.False(t, ok, "Lookup(%d)", d)
	}
}

func TestOnAndSet(t *testing.T) {
	var b Bitmap
	b.Set(0, 0, true)
	b.Set(4, 2, true)
	b.Set(5, 0, true)
	b.Set(-1, 3, true)

	assert.True(t, b.On(0, 0))
	assert.True(t, b.On(4, 2))
	assert.False(t, b.On(1, 0))
	assert.False(t, b.On(5, 0))
	assert.Equal(t, 2, b.Count())
	assert.Equal(t, uint8(0b10000), b[0])
	assert.Equal(t, uint8(0b00001), b[2])

	b.Set(0, 0, false)
	assert.False(t, b.On(0, 0))
}

func TestCellsOrder(t *testing.T) {
	var got [][2]int
	Digits[1].Cells(func(x, y int) { got = append(got, [2]int{x, y}) })
	want := [][2]int{{2, 0}, {1, 1}, {2, 1}, {2, 2}, {2, 3}, {1, 4}, {2, 4}, {3, 4}}
	assert.Equal(t, want, got)
}
