//go:build !idf

package hal

import (
	"image/color"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freesans"
	"tinygo.org/x/tinyfont/proggy"
)

// Action tags pulled through the display poll callback.
const (
	displayActionNone int32 = iota
	displayActionGoPrev
	displayActionGoNext
	displayActionEnter
	displayActionExit
)

var hostMenuItems = []string{"Output", "Power", "Motion", "Buzzer", "About"}

var (
	colorBackground = color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xFF}
	colorForeground = color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	colorHighlight  = color.RGBA{R: 0x30, G: 0x70, B: 0xD0, A: 0xFF}
	colorDim        = color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
)

const (
	menuTop        = 36
	menuItemHeight = 36
)

// MenuState is the observable state of the simulated UI.
type MenuState struct {
	Index   int
	Item    string
	Entered bool
	FPS     int
}

// hostDisplay simulates the LCD UI library: a one-level menu driven by the
// actions it polls once per frame.
type hostDisplay struct {
	lcd    *hostFramebuffer
	disp   *fbDisplay
	halted *atomic.Bool
	log    *slog.Logger

	mu      sync.Mutex
	poll    PollFunc
	index   int
	entered bool

	frames    int
	fps       int
	lastCount time.Time
	now       func() time.Time
}

func newHostDisplay(lcd *hostFramebuffer, halted *atomic.Bool, log *slog.Logger) *hostDisplay {
	return &hostDisplay{
		lcd:    lcd,
		disp:   newFBDisplay(lcd),
		halted: halted,
		log:    log,
		now:    time.Now,
	}
}

func (d *hostDisplay) Init(poll PollFunc) {
	d.mu.Lock()
	d.poll = poll
	d.lastCount = d.now()
	d.mu.Unlock()
	d.log.Info("init", "width", LCDWidth, "height", LCDHeight)
}

func (d *hostDisplay) FrameRender() {
	if d.halted.Load() {
		return
	}

	d.mu.Lock()
	poll := d.poll
	d.mu.Unlock()

	// The poll callback may log or fault; call it unlocked.
	if poll != nil {
		d.apply(poll())
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames++
	if now := d.now(); now.Sub(d.lastCount) >= time.Second {
		d.fps = d.frames
		d.frames = 0
		d.lastCount = now
	}
	d.render()
	_ = d.disp.Display()
}

func (d *hostDisplay) apply(tag int32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(hostMenuItems)
	switch tag {
	case displayActionNone:
	case displayActionGoPrev:
		if !d.entered {
			d.index = (d.index + n - 1) % n
		}
	case displayActionGoNext:
		if !d.entered {
			d.index = (d.index + 1) % n
		}
	case displayActionEnter:
		d.entered = true
	case displayActionExit:
		d.entered = false
	default:
		d.log.Warn("unknown action", "tag", tag)
	}
}

func (d *hostDisplay) render() {
	_ = d.disp.FillRectangle(0, 0, LCDWidth, LCDHeight, colorBackground)

	tinyfont.WriteLine(d.disp, &proggy.TinySZ8pt7b, 4, 12, "lumen", colorDim)
	fps := strconv.Itoa(d.fps) + " fps"
	_, w := tinyfont.LineWidth(&proggy.TinySZ8pt7b, fps)
	tinyfont.WriteLine(d.disp, &proggy.TinySZ8pt7b, LCDWidth-4-int16(w), 12, fps, colorDim)

	if d.entered {
		tinyfont.WriteLine(d.disp, &freesans.Bold9pt7b, 12, menuTop+24, hostMenuItems[d.index], colorForeground)
		tinyfont.WriteLine(d.disp, &proggy.TinySZ8pt7b, 12, LCDHeight-12, "long press to go back", colorDim)
		return
	}

	for i, item := range hostMenuItems {
		y := int16(menuTop + i*menuItemHeight)
		fg := colorForeground
		if i == d.index {
			_ = d.disp.FillRectangle(4, y, LCDWidth-8, menuItemHeight-4, colorHighlight)
		} else {
			fg = colorDim
		}
		tinyfont.WriteLine(d.disp, &freesans.Regular9pt7b, 12, y+22, item, fg)
	}
}

func (d *hostDisplay) state() MenuState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return MenuState{
		Index:   d.index,
		Item:    hostMenuItems[d.index],
		Entered: d.entered,
		FPS:     d.fps,
	}
}

// Menu returns the simulated UI state.
func (h *Host) Menu() MenuState { return h.display.state() }
