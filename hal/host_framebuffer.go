//go:build !idf

package hal

import (
	"image/color"
	"sync"
)

// hostFramebuffer is an RGB565 little-endian pixel buffer, the format of
// the board's LCD.
type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte
	frames uint64
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	stride := width * 2
	return &hostFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

// rgb565 drops the low bits of each channel.
func rgb565(c color.RGBA) uint16 {
	return uint16(c.R>>3)<<11 | uint16(c.G>>2)<<5 | uint16(c.B>>3)
}

// rgba8888 widens p back to 8 bits per channel by repeating the high bits,
// so full scale maps to 0xFF.
func rgba8888(p uint16) color.RGBA {
	r := uint8(p>>11) & 0x1F
	g := uint8(p>>5) & 0x3F
	b := uint8(p) & 0x1F
	return color.RGBA{R: r<<3 | r>>2, G: g<<2 | g>>4, B: b<<3 | b>>2, A: 0xFF}
}

// put stores p at byte offset off. The caller holds f.mu.
func (f *hostFramebuffer) put(off int, p uint16) {
	f.buf[off] = byte(p)
	f.buf[off+1] = byte(p >> 8)
}

// get loads the pixel at byte offset off from src.
func get(src []byte, off int) uint16 {
	return uint16(src[off]) | uint16(src[off+1])<<8
}

func (f *hostFramebuffer) Present() error {
	f.mu.Lock()
	f.frames++
	f.mu.Unlock()
	return nil
}

func (f *hostFramebuffer) pixelAt(x, y int) uint16 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return get(f.buf, y*f.stride+x*2)
}

func (f *hostFramebuffer) snapshotRGB565(dst []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(dst, f.buf)
}

func (f *hostFramebuffer) presented() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}
