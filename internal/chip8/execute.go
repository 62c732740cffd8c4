package chip8

import "fmt"

// exec dispatches one decoded instruction. PC has already been advanced past
// it, so a skip adds 2 and WAIT_KEY rewinds by 2 to run again next step.
func (m *VM) exec(in Instruction) error {
	switch in.Op {
	case OpClearScreen: // 00E0
		m.display.Clear()
	case OpReturn: // 00EE
		return m.ret()
	case OpJump: // 1NNN
		m.pc = in.NNN
	case OpCall: // 2NNN
		return m.call(in.NNN)
	case OpSkipEqNN: // 3XNN
		m.skipIf(m.v[in.X] == in.NN)
	case OpSkipNeqNN: // 4XNN
		m.skipIf(m.v[in.X] != in.NN)
	case OpSkipEq: // 5XY0
		m.skipIf(m.v[in.X] == m.v[in.Y])
	case OpSetNN: // 6XNN
		m.v[in.X] = in.NN
	case OpAddNN: // 7XNN, no carry flag
		m.v[in.X] += in.NN
	case OpSet: // 8XY0
		m.v[in.X] = m.v[in.Y]
	case OpOr: // 8XY1
		m.v[in.X] |= m.v[in.Y]
	case OpAnd: // 8XY2
		m.v[in.X] &= m.v[in.Y]
	case OpXor: // 8XY3
		m.v[in.X] ^= m.v[in.Y]
	case OpAdd: // 8XY4
		m.add(in.X, in.Y)
	case OpSub: // 8XY5
		m.sub(in.X, in.X, in.Y)
	case OpShiftRight: // 8XY6
		m.shiftRight(in.X, in.Y)
	case OpSubReverse: // 8XY7
		m.sub(in.X, in.Y, in.X)
	case OpShiftLeft: // 8XYE
		m.shiftLeft(in.X, in.Y)
	case OpSkipNeq: // 9XY0
		m.skipIf(m.v[in.X] != m.v[in.Y])
	case OpSetIndex: // ANNN
		m.i = in.NNN
	case OpJumpOffset: // BNNN
		if m.quirks.JumpAddsVX {
			m.pc = in.NNN + uint16(m.v[in.X])
		} else {
			m.pc = in.NNN + uint16(m.v[0])
		}
	case OpRandom: // CXNN
		m.v[in.X] = m.rand.NextByte() & in.NN
	case OpDraw: // DXYN
		m.draw(in)
	case OpSkipKeyPressed: // EX9E
		key, ok := m.keypad.PressedKey()
		m.skipIf(ok && key == m.v[in.X]&0xF)
	case OpSkipKeyNotPressed: // EXA1
		key, ok := m.keypad.PressedKey()
		m.skipIf(!ok || key != m.v[in.X]&0xF)
	case OpReadDelay: // FX07
		m.v[in.X] = m.delay.Get()
	case OpWaitKey: // FX0A
		m.waitKey(in.X)
	case OpSetDelay: // FX15
		m.delay.Set(m.v[in.X])
	case OpSetSound: // FX18
		m.sound.Start(m.v[in.X])
	case OpAddIndex: // FX1E, VF untouched
		m.i = (m.i + uint16(m.v[in.X])) & AddressMask
	case OpFontChar: // FX29
		m.i = FontStart + 5*uint16(m.v[in.X]&0xF)
	case OpBCD: // FX33
		m.bcd(in.X)
	case OpStoreRegs: // FX55
		m.storeRegs(in.X)
	case OpLoadRegs: // FX65
		m.loadRegs(in.X)
	default:
		return fmt.Errorf("%w: %#04x at %#04x", ErrInvalidInstruction, in.Word, m.pc-2)
	}
	return nil
}

// skipIf jumps over the following two-byte instruction when the predicate
// held.
func (m *VM) skipIf(cond bool) {
	if cond {
		m.pc += 2
	}
}

func (m *VM) call(addr uint16) error {
	if len(m.stack) >= StackDepth {
		return fmt.Errorf("%w: call depth %d", ErrStackOverflow, StackDepth)
	}
	m.stack = append(m.stack, m.pc)
	m.pc = addr
	return nil
}

func (m *VM) ret() error {
	if len(m.stack) == 0 {
		return fmt.Errorf("%w: return with no caller", ErrStackUnderflow)
	}
	m.pc = m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return nil
}

// add stores the low byte of Vx+Vy, then the carry into VF. The flag is
// written last so ADD VF, Vy leaves the flag, not the sum, in VF.
func (m *VM) add(x, y uint8) {
	sum := uint16(m.v[x]) + uint16(m.v[y])
	m.v[x] = byte(sum)
	if sum > 0xFF {
		m.v[0xF] = 1
	} else {
		m.v[0xF] = 0
	}
}

// sub stores a-b into Vx with mod-256 wrap on underflow, then VF = 1 when no
// borrow occurred (a > b). Covers both 8XY5 and 8XY7 by argument order, and
// like add it writes the flag after the result.
func (m *VM) sub(x, a, b uint8) {
	va, vb := m.v[a], m.v[b]
	m.v[x] = va - vb
	if va > vb {
		m.v[0xF] = 1
	} else {
		m.v[0xF] = 0
	}
}

// shiftRight puts the shifted-out low bit in VF before the result lands in
// Vx; with X = F the result wins.
func (m *VM) shiftRight(x, y uint8) {
	src := m.v[x]
	if m.quirks.ShiftUsesVY {
		src = m.v[y]
	}
	m.v[0xF] = src & 0x01
	m.v[x] = src >> 1
}

// shiftLeft writes the raw high bit to VF: 0x80 when set, not 1. Some ROMs
// only test VF for non-zero so both conventions work for them; this one is
// pinned by test.
func (m *VM) shiftLeft(x, y uint8) {
	src := m.v[x]
	if m.quirks.ShiftUsesVY {
		src = m.v[y]
	}
	m.v[0xF] = src & 0x80
	m.v[x] = src << 1
}

// draw reads the N-row sprite at I and hands it to the display, which owns
// the XOR blit, the start-coordinate wrap, and the edge clip. VF records
// whether any lit pixel was erased.
func (m *VM) draw(in Instruction) {
	sprite := make([]byte, in.N)
	for r := range sprite {
		sprite[r] = m.memory[(m.i+uint16(r))&AddressMask]
	}
	if m.display.Modify(sprite, m.v[in.X], m.v[in.Y]) {
		m.v[0xF] = 1
	} else {
		m.v[0xF] = 0
	}
}

// waitKey blocks cooperatively: with no key down it rewinds PC so the same
// instruction runs again next step, keeping Step itself non-suspending.
func (m *VM) waitKey(x uint8) {
	key, ok := m.keypad.PressedKey()
	if !ok {
		m.pc -= 2
		return
	}
	m.v[x] = key
}

func (m *VM) bcd(x uint8) {
	v := m.v[x]
	m.memory[m.i&AddressMask] = v / 100
	m.memory[(m.i+1)&AddressMask] = v / 10 % 10
	m.memory[(m.i+2)&AddressMask] = v % 10
}

func (m *VM) storeRegs(x uint8) {
	for r := uint16(0); r <= uint16(x); r++ {
		m.memory[(m.i+r)&AddressMask] = m.v[r]
	}
	if m.quirks.AdvanceIOnStore {
		m.i = (m.i + uint16(x) + 1) & AddressMask
	}
}

func (m *VM) loadRegs(x uint8) {
	for r := uint16(0); r <= uint16(x); r++ {
		m.v[r] = m.memory[(m.i+r)&AddressMask]
	}
	if m.quirks.AdvanceIOnStore {
		m.i = (m.i + uint16(x) + 1) & AddressMask
	}
}
