// Package pixel is the GUI host: a pixelgl window that renders framebuffer
// snapshots and serves as the keypad capability by polling the keyboard.
package pixel

import (
	"fmt"

	"github.com/faiface/pixel"
	"github.com/faiface/pixel/imdraw"
	"github.com/faiface/pixel/pixelgl"
	"golang.org/x/image/colornames"

	"github.com/chip8-vm/internal/display"
)

const screenWidth float64 = 1024
const screenHeight float64 = 768

// Window embeds a pixelgl window and holds the hex keypad -> keyboard
// mapping:
//
//	1 2 3 C  ->  1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E  ->  A S D F
//	A 0 B F  ->  Z X C V
type Window struct {
	*pixelgl.Window
	keyMap map[uint8]pixelgl.Button
}

// NewWindow creates the pixelgl window config, initializes the window, and
// returns it ready to render and poll.
func NewWindow(title string) (*Window, error) {
	cfg := pixelgl.WindowConfig{
		Title:  title,
		Bounds: pixel.R(0, 0, screenWidth, screenHeight),
		VSync:  true,
	}
	w, err := pixelgl.NewWindow(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating new window: %v", err)
	}
	km := map[uint8]pixelgl.Button{
		0x1: pixelgl.Key1, 0x2: pixelgl.Key2,
		0x3: pixelgl.Key3, 0xC: pixelgl.Key4,
		0x4: pixelgl.KeyQ, 0x5: pixelgl.KeyW,
		0x6: pixelgl.KeyE, 0xD: pixelgl.KeyR,
		0x7: pixelgl.KeyA, 0x8: pixelgl.KeyS,
		0x9: pixelgl.KeyD, 0xE: pixelgl.KeyF,
		0xA: pixelgl.KeyZ, 0x0: pixelgl.KeyX,
		0xB: pixelgl.KeyC, 0xF: pixelgl.KeyV,
	}
	return &Window{
		Window: w,
		keyMap: km,
	}, nil
}

// PressedKey reports the hex key currently held down. With several keys
// down it returns the lowest; the machine only tracks a single-key view.
func (w *Window) PressedKey() (uint8, bool) {
	for key := uint8(0); key < 0x10; key++ {
		if w.Pressed(w.keyMap[key]) {
			return key, true
		}
	}
	return 0, false
}

// DrawGraphics scales the framebuffer snapshot up to the window and swaps
// buffers. Row 0 of the snapshot is the top of the Chip-8 screen; pixelgl's
// origin is bottom-left, so rows flip on the way out.
func (w *Window) DrawGraphics(gfx [display.Width * display.Height]bool) {
	w.Clear(colornames.Black)
	imDraw := imdraw.New(nil)
	imDraw.Color = pixel.RGB(1, 1, 1)
	width, height := screenWidth/display.Width, screenHeight/display.Height

	for i := 0; i < display.Width; i++ {
		for j := 0; j < display.Height; j++ {
			if gfx[(display.Height-1-j)*display.Width+i] {
				imDraw.Push(pixel.V(width*float64(i), height*float64(j)))
				imDraw.Push(pixel.V(width*float64(i)+width, height*float64(j)+height))
				imDraw.Rectangle(0)
			}
		}
	}

	imDraw.Draw(w)
	w.Update()
}
