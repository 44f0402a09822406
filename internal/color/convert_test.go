package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp8(t *testing.T) {
	cases := []struct {
		in   int32
		want byte
	}{
		{-1000, 0},
		{-1, 0},
		{0, 0},
		{128, 128},
		{255, 255},
		{256, 255},
		{100000, 255},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, clamp8(c.in), "clamp8(%d)", c.in)
	}
}

// TestConvertAllBlack: a 4x4 all-black BGRA frame (00 00 00 FF
// repeated) must produce Y=0x00, U=V=0x80.
func TestConvertAllBlack(t *testing.T) {
	const w, h = 4, 4
	bgra := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		bgra[i*4+0] = 0x00
		bgra[i*4+1] = 0x00
		bgra[i*4+2] = 0x00
		bgra[i*4+3] = 0xFF
	}

	ySize, uSize, vSize := PlaneSizes(w, h)
	require.Equal(t, 16, ySize)
	require.Equal(t, 4, uSize)
	require.Equal(t, 4, vSize)

	y := make([]byte, ySize)
	u := make([]byte, uSize)
	v := make([]byte, vSize)
	Convert(w, h, bgra, y, u, v)

	for _, b := range y {
		assert.Equal(t, byte(0x00), b)
	}
	for _, b := range u {
		assert.Equal(t, byte(0x80), b)
	}
	for _, b := range v {
		assert.Equal(t, byte(0x80), b)
	}
}

// TestConvertAllWhite: a 2x2 all-white BGRA frame must produce Y≈0xFF,
// U≈V≈0x80 within tolerance ±2.
func TestConvertAllWhite(t *testing.T) {
	const w, h = 2, 2
	bgra := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		bgra[i*4+0] = 0xFF
		bgra[i*4+1] = 0xFF
		bgra[i*4+2] = 0xFF
		bgra[i*4+3] = 0xFF
	}

	ySize, uSize, vSize := PlaneSizes(w, h)
	y := make([]byte, ySize)
	u := make([]byte, uSize)
	v := make([]byte, vSize)
	Convert(w, h, bgra, y, u, v)

	for _, b := range y {
		assert.InDelta(t, 255, int(b), 2)
	}
	for _, b := range u {
		assert.InDelta(t, 128, int(b), 2)
	}
	for _, b := range v {
		assert.InDelta(t, 128, int(b), 2)
	}
}

// TestConvertRoundTripApprox is a light form of property 1: for a
// constant-color source every Y sample must land within ±2 of the
// fixed-point luma formula applied to that color. Only luma is checked
// here; nothing is decoded back to RGB, and chroma is checked
// separately above for solid colors.
func TestConvertRoundTripApprox(t *testing.T) {
	const w, h = 8, 8
	bgra := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		bgra[i*4+0] = 60  // B
		bgra[i*4+1] = 140 // G
		bgra[i*4+2] = 200 // R
		bgra[i*4+3] = 0xFF
	}

	ySize, uSize, vSize := PlaneSizes(w, h)
	y := make([]byte, ySize)
	u := make([]byte, uSize)
	v := make([]byte, vSize)
	Convert(w, h, bgra, y, u, v)

	wantY := clamp8((77*200 + 150*140 + 29*60 + 128) >> 8)
	for _, b := range y {
		assert.InDelta(t, int(wantY), int(b), 2)
	}
}
