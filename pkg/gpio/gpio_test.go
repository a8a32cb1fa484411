//go:build linux

package gpio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPinNoChip(t *testing.T) {
	tests := []struct {
		name  string
		chips []string
	}{
		{name: "missing chip", chips: []string{"gpiochip-missing"}},
		{name: "all missing", chips: []string{"gpiochip-missing-a", "gpiochip-missing-b"}},
		{name: "none", chips: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPin(17, WithChips(tt.chips...))
			require.Error(t, err)
			assert.Nil(t, p)
			for _, c := range tt.chips {
				assert.Contains(t, err.Error(), c)
			}
		})
	}
}

func TestClosedPin(t *testing.T) {
	p := &Pin{offset: 17, chip: "gpiochip0"}
	assert.Equal(t, "gpiochip0:17", p.String())
	assert.NoError(t, p.Close())
	assert.Error(t, p.SetValue(1))
	assert.Equal(t, 0, p.Value())
}
