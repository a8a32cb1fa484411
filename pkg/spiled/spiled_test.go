package spiled

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"

	"github.com/fkcurrie/ws2818-matrix/pkg/matrix"
	"github.com/fkcurrie/ws2818-matrix/pkg/ws2818"
)

type fakeEnable struct {
	values []int
	err    error
}

func (f *fakeEnable) SetValue(v int) error {
	f.values = append(f.values, v)
	return f.err
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantErr bool
	}{
		{name: "5x5", n: 25},
		{name: "single", n: 1},
		{name: "zero", n: 0, wantErr: true},
		{name: "negative", n: -3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := Open(spitest.NewRecordRaw(&buf), tt.n)
			if (err != nil) != tt.wantErr {
				t.Errorf("Open() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				assert.Equal(t, "nrzled{recordraw}", l.String())
			}
		})
	}
}

func TestSend(t *testing.T) {
	var buf bytes.Buffer
	en := &fakeEnable{}
	l, err := Open(spitest.NewRecordRaw(&buf), 25, WithEnable(en))
	require.NoError(t, err)

	frame := make([]uint32, 25)
	frame[0] = ws2818.Red.GRB()
	require.NoError(t, l.Send(frame))

	// Three SPI bits per NRZ bit.
	assert.GreaterOrEqual(t, buf.Len(), 25*9)
	assert.Equal(t, []int{1, 0}, en.values)
	assert.Equal(t, ws2818.RGB(0xff, 0, 0), ws2818.FromGRB(frame[0]))
	assert.Equal(t, []byte{0xff, 0, 0}, l.rgb[:3])

	assert.Error(t, l.Send(make([]uint32, 24)))
}

func TestSendEnableError(t *testing.T) {
	var buf bytes.Buffer
	en := &fakeEnable{err: errors.New("line busy")}
	l, err := Open(spitest.NewRecordRaw(&buf), 4, WithEnable(en))
	require.NoError(t, err)

	err = l.Send(make([]uint32, 4))
	assert.ErrorIs(t, err, en.err)
	assert.Equal(t, []int{1}, en.values, "frame written with the enable line down")
}

func TestClose(t *testing.T) {
	var buf bytes.Buffer
	l, err := Open(spitest.NewRecordRaw(&buf), 4)
	require.NoError(t, err)

	require.NoError(t, l.Close())
	assert.ErrorIs(t, l.Send(make([]uint32, 4)), ws2818.ErrClosed)
	assert.NoError(t, l.Close())
	assert.Equal(t, "spiled{closed}", l.String())
}

func TestMatrixOverSPI(t *testing.T) {
	var buf bytes.Buffer
	l, err := Open(spitest.NewRecordRaw(&buf), 25)
	require.NoError(t, err)

	var link matrix.Link = l
	m, err := matrix.New(matrix.Geometry{Width: 5, Height: 5}, link, matrix.WithSleep(func(d time.Duration) {}))
	require.NoError(t, err)

	m.Clear()
	require.NoError(t, m.RenderDigit(3, ws2818.Green))
	require.NoError(t, m.Commit())
	assert.GreaterOrEqual(t, buf.Len(), 25*9)
	assert.Equal(t, ws2818.DefaultResetGap, l.ResetGap())
}
