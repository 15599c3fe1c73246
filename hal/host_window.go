//go:build !idf && cgo

package hal

import (
	"context"
	"errors"
	"image"

	"lumen/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow opens a desktop window showing the LCD, and the log console when
// enabled, and forwards keyboard input to the encoder. run is started on its
// own goroutine. RunWindow blocks until the window closes or run returns.
func RunWindow(h *Host, scale int, run func(ctx context.Context) error) error {
	if scale < 1 {
		scale = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx) }()

	g := &hostGame{h: h, kbd: newHostKeyboard(h.encoder), done: done}
	w, ht := g.Layout(0, 0)
	ebiten.SetWindowTitle("Lumen (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(w*scale, ht*scale)
	ebiten.SetTPS(60)

	err := ebiten.RunGame(g)
	if errors.Is(err, errRunFinished) {
		return g.runErr
	}
	return err
}

var errRunFinished = errors.New("hal: run finished")

type hostGame struct {
	h    *Host
	kbd  *hostKeyboard
	done <-chan error

	runErr  error
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
}

func (g *hostGame) Update() error {
	select {
	case err := <-g.done:
		g.runErr = err
		return errRunFinished
	default:
	}
	g.kbd.poll()
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	w, h := g.Layout(0, 0)
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, w, h))
		g.scratch = make([]byte, w*h*2)
		g.fbImg = ebiten.NewImage(w, h)
	}

	lcd := g.h.lcd
	lcdBytes := lcd.stride * lcd.height
	lcd.snapshotRGB565(g.scratch[:lcdBytes])
	if c := g.h.console; c != nil {
		c.snapshotRGB565(g.scratch[lcdBytes:])
	}

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src); i += 2 {
		c := rgba8888(get(src, i))
		j := (i / 2) * 4
		dst[j+0] = c.R
		dst[j+1] = c.G
		dst[j+2] = c.B
		dst[j+3] = c.A
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.h.lcd.width, g.h.lcd.height
	if c := g.h.console; c != nil {
		_, ch := c.size()
		h += ch
	}
	return w, h
}
