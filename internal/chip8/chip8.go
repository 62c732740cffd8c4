// Package chip8 implements the Chip-8 virtual machine core: a fetch, decode,
// and execute interpreter over 4K of flat memory. The core performs no I/O of
// its own. Every host interaction goes through one of the capability
// interfaces below, so the same executor runs under a GUI window, a test
// harness, or anything else that can satisfy the contracts.
package chip8

import (
	"errors"
	"fmt"
)

//		System memory map
// 		+---------------+= 0xFFF (4095) End Chip-8 RAM
// 		|               |
// 		|               |
// 		| 0x200 to 0xFFF|
// 		|     Chip-8    |
// 		| Program / Data|
// 		|     Space     |
// 		|               |
// 		+---------------+= 0x200 (512) Start of most Chip-8 programs
// 		| 0x0A0 to 0x1FF|
// 		|     free      |
// 		+---------------+= 0x0A0 (160)
// 		| 0x050 to 0x09F|
// 		|   hex font    |
// 		+---------------+= 0x050 (80)
// 		| 0x000 to 0x04F|
// 		|   reserved    |
// 		+---------------+= 0x000 (0) Begin Chip-8 RAM
const (
	// MemorySize is the size of Chip-8 RAM in bytes.
	MemorySize = 4096

	// AddressMask masks an address to the 12 bits the machine can reach.
	AddressMask = 0x0FFF

	// FontStart is where the 16-glyph hex font lives.
	FontStart = 0x050

	// EntryPoint is the conventional program load address.
	EntryPoint = 0x200

	// MaxROMSize is the largest program that fits below the end of RAM.
	MaxROMSize = MemorySize - EntryPoint

	// StackDepth matches the 16 nesting levels of the original hardware.
	StackDepth = 16

	// NumRegisters is the count of general purpose registers V0-VF.
	NumRegisters = 16
)

// Fatal interpreter errors. Each one Step can return latches: once Step
// returns it, it keeps returning the same error until Reset.
// ErrROMTooLarge comes only from LoadROM and ReadROM and does not latch.
var (
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrStackUnderflow     = errors.New("stack underflow")
	ErrStackOverflow      = errors.New("stack overflow")
	ErrOutOfMemory        = errors.New("out of memory access")
	ErrROMTooLarge        = errors.New("rom too large")
)

// Display is the 64x32 monochrome screen the DRAW opcode blits to. Modify
// XORs the sprite onto the screen starting at (x, y) and reports whether any
// lit pixel was turned off. Start coordinates wrap modulo the screen size;
// pixels running past the right or bottom edge are clipped.
type Display interface {
	Modify(sprite []byte, x, y uint8) bool
	Clear()
	Width() int
	Height() int
}

// Timer is the delay timer: an 8-bit counter decremented at 60Hz by the
// host. The core only reads and writes its current value.
type Timer interface {
	Get() uint8
	Set(v uint8)
}

// Beeper is the sound timer. Start sets the countdown; the beeper owns its
// own 60Hz decrement and emits a tone while the counter is above zero.
type Beeper interface {
	Start(v uint8)
}

// Keypad reports the hex key currently held down, if any. Hosts that see
// several keys at once pick one; the core never disambiguates.
type Keypad interface {
	PressedKey() (uint8, bool)
}

// RandomSource produces the bytes consumed by the CXNN opcode.
type RandomSource interface {
	NextByte() uint8
}

// Capabilities bundles the host surfaces a VM is constructed with. Display,
// Delay, Sound, and Keypad are required. Rand defaults to the platform RNG.
type Capabilities struct {
	Display Display
	Delay   Timer
	Sound   Beeper
	Keypad  Keypad
	Rand    RandomSource
}

// Quirks pins the instruction behaviours that differ between the COSMAC VIP
// and later interpreters. The zero value is the modern set: shifts ignore
// VY, register dump/load leave I unmodified, and BNNN jumps to NNN+V0.
// Legacy ROMs that depend on the 1977 behaviour flip these at construction.
type Quirks struct {
	// ShiftUsesVY makes 8XY6/8XYE shift VY into VX instead of shifting
	// VX in place.
	ShiftUsesVY bool

	// AdvanceIOnStore makes FX55/FX65 leave I pointing past the last
	// register transferred.
	AdvanceIOnStore bool

	// JumpAddsVX makes BNNN behave as BXNN: jump to NNN plus VX, where X
	// is the high nibble of NNN.
	JumpAddsVX bool
}

// VM is one Chip-8 machine. All state lives in the value, so independent
// VMs coexist freely in a process. The VM itself is single threaded; if the
// host ticks timers or pumps input from other goroutines, the capability
// implementations own that synchronization.
type VM struct {
	// Chip-8 system memory, see memory map above
	memory [MemorySize]byte

	// 8-bit general purpose registers V0-VF. VF doubles as the flag
	// register for arithmetic, shifts, and DRAW collision.
	v [NumRegisters]byte

	// Index register, functionally 12-bit
	i uint16

	// Program counter, points at the next instruction to fetch
	pc uint16

	// Return addresses for CALL, capped at StackDepth entries
	stack []uint16

	quirks Quirks

	display Display
	delay   Timer
	sound   Beeper
	keypad  Keypad
	rand    RandomSource

	// ROM held for Reset
	rom ROM

	// First fatal error; sticky until Reset
	fault error
}

// New builds a VM around the given capabilities. The machine is empty until
// LoadROM establishes memory and the program counter.
func New(caps Capabilities, quirks Quirks) (*VM, error) {
	switch {
	case caps.Display == nil:
		return nil, errors.New("chip8: nil display capability")
	case caps.Delay == nil:
		return nil, errors.New("chip8: nil delay timer capability")
	case caps.Sound == nil:
		return nil, errors.New("chip8: nil beeper capability")
	case caps.Keypad == nil:
		return nil, errors.New("chip8: nil keypad capability")
	}
	if caps.Rand == nil {
		caps.Rand = PlatformRand{}
	}
	return &VM{
		stack:   make([]uint16, 0, StackDepth),
		quirks:  quirks,
		display: caps.Display,
		delay:   caps.Delay,
		sound:   caps.Sound,
		keypad:  caps.Keypad,
		rand:    caps.Rand,
	}, nil
}

// LoadROM zeroes the machine, places the hex font at FontStart and the
// program at EntryPoint, and points the program counter at the entry point.
func (m *VM) LoadROM(rom ROM) error {
	if len(rom.Data) > MaxROMSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrROMTooLarge, len(rom.Data), MaxROMSize)
	}
	m.rom = rom
	m.initialize(rom.Data, FontSet[:])
	return nil
}

// Reset re-initializes the machine with the ROM it already holds, clearing
// any latched fatal error.
func (m *VM) Reset() {
	m.initialize(m.rom.Data, FontSet[:])
}

func (m *VM) initialize(program, font []byte) {
	m.memory = [MemorySize]byte{}
	copy(m.memory[FontStart:], font)
	copy(m.memory[EntryPoint:], program)
	m.v = [NumRegisters]byte{}
	m.i = 0
	m.pc = EntryPoint
	m.stack = m.stack[:0]
	m.display.Clear()
	m.fault = nil
}

// Step advances the machine by exactly one instruction: fetch two bytes at
// PC, advance PC, decode, execute. Side effects of the instruction are fully
// visible before Step returns. A fatal error halts the machine; every later
// Step returns the same error until Reset.
func (m *VM) Step() error {
	if m.fault != nil {
		return m.fault
	}
	word, err := m.fetch()
	if err == nil {
		err = m.exec(Decode(word))
	}
	if err != nil {
		m.fault = err
		return err
	}
	return nil
}

// fetch reads the big-endian opcode word at PC and advances PC past it. The
// 12-bit address mask keeps computed addresses in range everywhere else, so
// only the program counter itself needs validating.
func (m *VM) fetch() (uint16, error) {
	if int(m.pc)+1 >= MemorySize {
		return 0, fmt.Errorf("%w: fetch at %#04x", ErrOutOfMemory, m.pc)
	}
	word := uint16(m.memory[m.pc])<<8 | uint16(m.memory[m.pc+1])
	m.pc += 2
	return word, nil
}

// PC returns the current program counter.
func (m *VM) PC() uint16 { return m.pc }

// Register returns the value of Vx.
func (m *VM) Register(x uint8) byte { return m.v[x&0xF] }

// Index returns the index register I.
func (m *VM) Index() uint16 { return m.i }

// ReadMemory returns the byte at addr, masked to the 12-bit address space.
func (m *VM) ReadMemory(addr uint16) byte { return m.memory[addr&AddressMask] }
