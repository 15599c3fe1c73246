//go:build !idf && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// hostKeyboard turns key presses into encoder events.
type hostKeyboard struct {
	enc *hostEncoder
}

func newHostKeyboard(enc *hostEncoder) *hostKeyboard {
	return &hostKeyboard{enc: enc}
}

var keyEvents = []struct {
	key ebiten.Key
	ev  uint8
}{
	{ebiten.KeyArrowDown, encoderCW},
	{ebiten.KeyArrowRight, encoderCW},
	{ebiten.KeyArrowUp, encoderCCW},
	{ebiten.KeyArrowLeft, encoderCCW},
	{ebiten.KeyEnter, encoderClick},
	{ebiten.KeySpace, encoderClick},
	{ebiten.KeyEscape, encoderPress},
	{ebiten.KeyBackspace, encoderPress},
}

func (k *hostKeyboard) poll() {
	for _, ke := range keyEvents {
		if inpututil.IsKeyJustPressed(ke.key) {
			k.enc.post(ke.ev)
		}
	}
}
