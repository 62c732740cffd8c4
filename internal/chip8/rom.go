package chip8

import (
	"fmt"
	"os"
	"path"
)

// ROM is a raw Chip-8 program: headerless bytes copied verbatim to memory
// at the entry point.
type ROM struct {
	Name string
	Data []byte
}

// ReadROM loads a ROM from disk and checks it fits below the end of RAM.
func ReadROM(romPath string) (ROM, error) {
	data, err := os.ReadFile(romPath)
	if err != nil {
		return ROM{}, fmt.Errorf("read rom file %s: %w", romPath, err)
	}
	if len(data) > MaxROMSize {
		return ROM{}, fmt.Errorf("%w: %s is %d bytes, max %d", ErrROMTooLarge, romPath, len(data), MaxROMSize)
	}
	return ROM{
		Name: path.Base(romPath),
		Data: data,
	}, nil
}
