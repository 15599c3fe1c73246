//go:build !idf

package hal

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// fbDisplay adapts a host framebuffer to the tinygo display driver
// interfaces. Vertical scroll is emulated: screen row y shows buffer row
// (y+scroll) mod height.
type fbDisplay struct {
	fb     *hostFramebuffer
	scroll int16
}

var _ drivers.Displayer = (*fbDisplay)(nil)

func newFBDisplay(fb *hostFramebuffer) *fbDisplay {
	return &fbDisplay{fb: fb}
}

func (d *fbDisplay) Size() (x, y int16) {
	return int16(d.fb.width), int16(d.fb.height)
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.width || iy < 0 || iy >= d.fb.height {
		return
	}
	p := rgb565(c)

	d.fb.mu.Lock()
	d.fb.put(iy*d.fb.stride+ix*2, p)
	d.fb.mu.Unlock()
}

func (d *fbDisplay) Display() error {
	return d.fb.Present()
}

func (d *fbDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	w, h := d.fb.width, d.fb.height
	x0 := clampInt(int(x), 0, w)
	y0 := clampInt(int(y), 0, h)
	x1 := clampInt(int(x)+int(width), 0, w)
	y1 := clampInt(int(y)+int(height), 0, h)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	p := rgb565(c)

	d.fb.mu.Lock()
	defer d.fb.mu.Unlock()
	for py := y0; py < y1; py++ {
		row := py * d.fb.stride
		for px := x0; px < x1; px++ {
			d.fb.put(row+px*2, p)
		}
	}
	return nil
}

func (d *fbDisplay) SetScroll(line int16) {
	d.fb.mu.Lock()
	d.scroll = line
	d.fb.mu.Unlock()
}

func (d *fbDisplay) SetRotation(drivers.Rotation) error {
	return nil
}

// snapshotRGB565 copies the visible image, with scroll applied, into dst.
func (d *fbDisplay) snapshotRGB565(dst []byte) {
	d.fb.mu.Lock()
	defer d.fb.mu.Unlock()

	h := d.fb.height
	if h == 0 {
		return
	}
	s := int(d.scroll) % h
	if s < 0 {
		s += h
	}
	stride := d.fb.stride
	for y := 0; y < h; y++ {
		src := ((y + s) % h) * stride
		copy(dst[y*stride:(y+1)*stride], d.fb.buf[src:src+stride])
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
