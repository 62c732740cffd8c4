package main

import (
	"github.com/faiface/pixel/pixelgl"

	"github.com/chip8-vm/cmd"
)

func main() {
	// pixelgl needs access to the main thread, so the CLI (and with it the
	// whole run loop) executes inside its trampoline
	pixelgl.Run(cmd.Execute)
}
