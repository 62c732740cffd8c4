package cmd

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chip8-vm/internal/beeper"
	"github.com/chip8-vm/internal/chip8"
	"github.com/chip8-vm/internal/display"
	"github.com/chip8-vm/internal/pixel"
	"github.com/chip8-vm/internal/timer"
)

// timerRate is the 60Hz tick rate of the delay timer, independent of the
// CPU clock.
const timerRate = time.Second / 60

var (
	clockHz         int
	shiftUsesVY     bool
	advanceIOnStore bool
	jumpAddsVX      bool
)

// runCmd runs the chip8-vm virtual machine until the window closes or the
// machine faults
var runCmd = &cobra.Command{
	Use:   "run `path/to/rom`",
	Short: "run the chip8-vm emulator",
	Args:  cobra.ExactArgs(1),
	Run:   runChip8,
}

func init() {
	runCmd.Flags().IntVar(&clockHz, "clock", 300, "CPU steps per second")
	runCmd.Flags().BoolVar(&shiftUsesVY, "quirk-shift-vy", false, "8XY6/8XYE shift VY instead of VX (COSMAC VIP behaviour)")
	runCmd.Flags().BoolVar(&advanceIOnStore, "quirk-advance-i", false, "FX55/FX65 advance I past the last register (COSMAC VIP behaviour)")
	runCmd.Flags().BoolVar(&jumpAddsVX, "quirk-jump-vx", false, "BNNN jumps to NNN+VX instead of NNN+V0")
}

func runChip8(cmd *cobra.Command, args []string) {
	rom, err := chip8.ReadROM(args[0])
	if err != nil {
		fmt.Printf("\nerror loading ROM: %v\n", err)
		os.Exit(1)
	}

	fb := display.New()
	delay := timer.New()

	bpr, err := beeper.New()
	if err != nil {
		fmt.Printf("\nerror initializing audio: %v\n", err)
		os.Exit(1)
	}
	defer bpr.Close()

	win, err := pixel.NewWindow("chip8-vm: " + rom.Name)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	vm, err := chip8.New(chip8.Capabilities{
		Display: fb,
		Delay:   delay,
		Sound:   bpr,
		Keypad:  win,
	}, chip8.Quirks{
		ShiftUsesVY:     shiftUsesVY,
		AdvanceIOnStore: advanceIOnStore,
		JumpAddsVX:      jumpAddsVX,
	})
	if err != nil {
		fmt.Printf("\nerror creating a new chip-8 VM: %v\n", err)
		os.Exit(1)
	}
	if err := vm.LoadROM(rom); err != nil {
		fmt.Printf("\nerror loading ROM into VM: %v\n", err)
		os.Exit(1)
	}

	// The delay timer ticks at 60Hz regardless of the CPU clock. The
	// beeper runs its own countdown.
	done := make(chan struct{})
	defer close(done)
	go func() {
		tick := time.NewTicker(timerRate)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				delay.Tick()
			case <-done:
				return
			}
		}
	}()

	clock := time.NewTicker(time.Second / time.Duration(clockHz))
	defer clock.Stop()

	for range clock.C {
		if win.Closed() {
			fmt.Println("exit signal detected, gracefully shutting down...")
			return
		}
		if err := vm.Step(); err != nil {
			log.Printf("machine halted: %v", err)
			return
		}
		if fb.TakeDirty() {
			win.DrawGraphics(fb.Snapshot())
		} else {
			win.UpdateInput()
		}
	}
}
