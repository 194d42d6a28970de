// Package cpu implements the 6502 CPU emulation for the NES, including the
// undocumented opcode subset needed for compatibility with the supported
// mapper/title set.
package cpu

// Status flags, matching the NES 6502's P register layout.
const (
	FlagC uint8 = 0x01 // Carry
	FlagZ uint8 = 0x02 // Zero
	FlagI uint8 = 0x04 // Interrupt disable
	FlagD uint8 = 0x08 // Decimal mode (unused on NES)
	FlagB uint8 = 0x10 // Break
	FlagU uint8 = 0x20 // Unused, always 1 on the stack
	FlagV uint8 = 0x40 // Overflow
	FlagN uint8 = 0x80 // Negative
)

const (
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	brkVector   = 0xFFFE
)

// IRQSource identifies a caller asserting or clearing the level-triggered
// IRQ line. Multiple sources may assert at once; the line is the OR of all
// of them.
type IRQSource uint8

const (
	IRQFrameCounter IRQSource = 1 << iota
	IRQDMC
	IRQMapper
)

// Bus is the per-tick interface the CPU drives. internal/bus's Bus type
// implements this; the CPU never references the bus package directly,
// matching the spec's "bus owns devices" design note.
type Bus interface {
	ReadCycle(addr uint16) uint8
	WriteCycle(addr uint16, v uint8)
}

// CPU is the 6502 core. It holds no reference to the bus; every method that
// needs to touch memory takes one as a parameter for the duration of the
// call, so the scheduler in internal/bus remains the sole owner of wiring.
type CPU struct {
	PC uint16
	SP uint8
	A  uint8
	X  uint8
	Y  uint8
	P  uint8

	nmiLine    bool
	irq        IRQSource
	irqPending bool
	halt       bool
	irqP2      bool
	nmiP2      bool
	nmiSignal  bool
}

// New returns a CPU with all registers zeroed; Reset must be called before
// Step to establish the PC from the reset vector.
func New() *CPU {
	return &CPU{}
}

// Halted reports whether the CPU is currently stalled for DMA.
func (c *CPU) Halted() bool {
	return c.halt
}

// SetHalt is called by the bus to stall/release the CPU during DMA.
func (c *CPU) SetHalt(halt bool) {
	c.halt = halt
}

// SetNMI sets the NMI input line level.
func (c *CPU) SetNMI(asserted bool) {
	c.nmiLine = asserted
}

// SetIRQ asserts or clears one IRQ source on the level-triggered IRQ line.
func (c *CPU) SetIRQ(source IRQSource, asserted bool) {
	if asserted {
		c.irq |= source
	} else {
		c.irq &^= source
	}
}

func testFlag(p uint8, mask uint8, set bool) uint8 {
	if set {
		return p | mask
	}
	return p &^ mask
}

func (c *CPU) setFlag(mask uint8, set bool) {
	c.P = testFlag(c.P, mask, set)
}

func (c *CPU) flag(mask uint8) bool {
	return c.P&mask != 0
}

func (c *CPU) evalZ(v uint8) {
	c.setFlag(FlagZ, v == 0)
}

func (c *CPU) evalN(v uint8) {
	c.setFlag(FlagN, v&0x80 != 0)
}

func (c *CPU) evalZN(v uint8) {
	c.evalZ(v)
	c.evalN(v)
}

// PollInterrupts runs the two-stage edge/level pipeline, one tick delayed
// from the actual line state: irqPending reflects the PREVIOUS tick's
// latches, not the current one. Called once per bus cycle by the bus after
// the cartridge/APU have had a chance to (de)assert their lines this tick.
func (c *CPU) PollInterrupts() {
	if c.halt {
		return
	}

	c.irqPending = c.irqP2 || c.nmiSignal
	c.irqP2 = c.irq != 0 && !c.flag(FlagI)
	c.nmiSignal = c.nmiSignal || (!c.nmiP2 && c.nmiLine)
	c.nmiP2 = c.nmiLine
}

// Reset performs the 6502 reset sequence: two dummy reads at the current PC,
// three cycles of suppressed stack writes, then PC loaded from the reset
// vector. Hard resets zero A/X/Y/P (with B and U set) and set SP=$FD; soft
// resets only decrement SP by 3. I is set in both cases.
func (c *CPU) Reset(bus Bus, hard bool) {
	c.irq = 0
	c.irqPending = false
	c.nmiLine = false
	c.irqP2 = false
	c.nmiP2 = false
	c.nmiSignal = false
	c.halt = false

	bus.ReadCycle(c.PC)
	bus.ReadCycle(c.PC)

	bus.ReadCycle(0)
	bus.ReadCycle(0)
	bus.ReadCycle(0)

	c.PC = c.read16(bus, resetVector)

	if hard {
		c.SP = 0xFD
		c.A, c.X, c.Y, c.P = 0, 0, 0, 0
		c.setFlag(FlagB, true)
		c.setFlag(FlagU, true)
	} else {
		c.SP -= 3
	}

	c.setFlag(FlagI, true)
}

func (c *CPU) read16(bus Bus, addr uint16) uint16 {
	lo := uint16(bus.ReadCycle(addr))
	hi := uint16(bus.ReadCycle(addr + 1))
	return hi<<8 | lo
}

func (c *CPU) readSP(bus Bus) uint8 {
	return bus.ReadCycle(0x0100 | uint16(c.SP))
}

func (c *CPU) pull(bus Bus) uint8 {
	c.SP++
	return c.readSP(bus)
}

func (c *CPU) push(bus Bus, v uint8) {
	bus.WriteCycle(0x0100|uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pull16(bus Bus) uint16 {
	lo := uint16(c.pull(bus))
	hi := uint16(c.pull(bus))
	return hi<<8 | lo
}

func (c *CPU) push16(bus Bus, v uint16) {
	c.push(bus, uint8(v>>8))
	c.push(bus, uint8(v))
}

// Step executes one instruction, servicing a pending interrupt afterward.
// It returns false on an unknown opcode byte, signaling the caller (the
// scheduler) to treat the cartridge as incompatible.
func (c *CPU) Step(bus Bus) bool {
	c.irqPending = false
	if !c.exec(bus) {
		return false
	}

	if c.irqPending {
		c.triggerInterrupt(bus)
	}

	return true
}

func (c *CPU) triggerInterrupt(bus Bus) {
	bus.ReadCycle(c.PC)
	bus.ReadCycle(c.PC)

	c.push16(bus, c.PC)

	vector := uint16(brkVector)
	if c.nmiSignal {
		vector = nmiVector
	}
	c.push(bus, (c.P&^FlagB)|FlagU)

	c.setFlag(FlagI, true)
	c.PC = c.read16(bus, vector)

	if vector == nmiVector {
		c.nmiSignal = false
	}
}

func pageCrossed(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

func (c *CPU) indexedDummyRead(bus Bus, io ioMode, pagex bool, addr uint16) {
	switch {
	case io == ioRMW || io == ioW:
		if pagex {
			bus.ReadCycle(addr - 0x0100)
		} else {
			bus.ReadCycle(addr)
		}
	case io == ioR && pagex:
		bus.ReadCycle(addr - 0x0100)
	}
}

func (c *CPU) operandAddress(bus Bus, mode addressMode, io ioMode) (addr uint16, pagex bool) {
	switch mode {
	case modeImplied, modeAccumulator:
		bus.ReadCycle(c.PC)

	case modeImmediate:
		addr = c.PC
		c.PC++

	case modeRelative, modeZeroPage:
		addr = uint16(bus.ReadCycle(c.PC))
		c.PC++

	case modeZeroPageX:
		iaddr := bus.ReadCycle(c.PC)
		c.PC++
		bus.ReadCycle(uint16(iaddr))
		addr = uint16(iaddr+c.X) & 0x00FF

	case modeZeroPageY:
		iaddr := bus.ReadCycle(c.PC)
		c.PC++
		bus.ReadCycle(uint16(iaddr))
		addr = uint16(iaddr+c.Y) & 0x00FF

	case modeAbsolute:
		addr = c.read16(bus, c.PC)
		c.PC += 2

	case modeAbsoluteX:
		base := c.read16(bus, c.PC)
		c.PC += 2
		addr = base + uint16(c.X)
		pagex = pageCrossed(base, addr)
		c.indexedDummyRead(bus, io, pagex, addr)

	case modeAbsoluteY:
		base := c.read16(bus, c.PC)
		c.PC += 2
		addr = base + uint16(c.Y)
		pagex = pageCrossed(base, addr)
		c.indexedDummyRead(bus, io, pagex, addr)

	case modeIndirect:
		iaddr := c.read16(bus, c.PC)
		c.PC += 2
		lo := uint16(bus.ReadCycle(iaddr))
		hi := uint16(bus.ReadCycle((iaddr & 0xFF00) | ((iaddr + 1) % 0x0100)))
		addr = lo | hi<<8

	case modeIndirectX:
		pointer := bus.ReadCycle(c.PC)
		c.PC++
		bus.ReadCycle(uint16(pointer))
		pointerx := pointer + c.X
		lo := uint16(bus.ReadCycle(uint16(pointerx)))
		hi := uint16(bus.ReadCycle(uint16(pointerx + 1)))
		addr = lo | hi<<8

	case modeIndirectY:
		pointer := bus.ReadCycle(c.PC)
		c.PC++
		lo := uint16(bus.ReadCycle(uint16(pointer)))
		hi := uint16(bus.ReadCycle(uint16(pointer + 1)))
		base := lo | hi<<8
		addr = base + uint16(c.Y)
		pagex = pageCrossed(base, addr)
		c.indexedDummyRead(bus, io, pagex, addr)
	}

	return addr, pagex
}

func (c *CPU) and(v uint8) {
	c.A &= v
	c.evalZN(c.A)
}

func (c *CPU) ora(v uint8) {
	c.A |= v
	c.evalZN(c.A)
}

func (c *CPU) eor(v uint8) {
	c.A ^= v
	c.evalZN(c.A)
}

func (c *CPU) adc(v uint8) {
	a := c.A
	carry := uint16(0)
	if c.flag(FlagC) {
		carry = 1
	}

	sum := uint16(a) + uint16(v) + carry
	c.A = uint8(sum)
	c.evalZN(c.A)

	c.setFlag(FlagC, sum > 0xFF)
	c.setFlag(FlagV, (a^v)&0x80 == 0 && (a^c.A)&0x80 != 0)
}

func (c *CPU) sbc(v uint8) {
	a := c.A
	borrow := uint8(1)
	if c.flag(FlagC) {
		borrow = 0
	}

	c.A = a - v - borrow
	c.evalZN(c.A)

	c.setFlag(FlagC, int16(a)-int16(v)-int16(borrow) >= 0)
	c.setFlag(FlagV, (a^v)&0x80 != 0 && (a^c.A)&0x80 != 0)
}

func (c *CPU) lsr(bus Bus, mode addressMode, addr uint16) uint8 {
	if mode == modeAccumulator {
		c.setFlag(FlagC, c.A&0x01 != 0)
		c.A >>= 1
		c.evalZN(c.A)
		return 0
	}

	v := bus.ReadCycle(addr)
	bus.WriteCycle(addr, v)
	c.setFlag(FlagC, v&0x01 != 0)
	v >>= 1
	bus.WriteCycle(addr, v)
	c.evalZN(v)
	return v
}

func (c *CPU) asl(bus Bus, mode addressMode, addr uint16) uint8 {
	if mode == modeAccumulator {
		c.setFlag(FlagC, c.A&0x80 != 0)
		c.A <<= 1
		c.evalZN(c.A)
		return 0
	}

	v := bus.ReadCycle(addr)
	bus.WriteCycle(addr, v)
	c.setFlag(FlagC, v&0x80 != 0)
	v <<= 1
	bus.WriteCycle(addr, v)
	c.evalZN(v)
	return v
}

func (c *CPU) rol(bus Bus, mode addressMode, addr uint16) uint8 {
	carry := uint8(0)
	if c.flag(FlagC) {
		carry = 1
	}

	if mode == modeAccumulator {
		c.setFlag(FlagC, c.A&0x80 != 0)
		c.A = c.A<<1 | carry
		c.evalZN(c.A)
		return 0
	}

	v := bus.ReadCycle(addr)
	bus.WriteCycle(addr, v)
	c.setFlag(FlagC, v&0x80 != 0)
	v = v<<1 | carry
	bus.WriteCycle(addr, v)
	c.evalZN(v)
	return v
}

func (c *CPU) ror(bus Bus, mode addressMode, addr uint16) uint8 {
	carry := uint8(0)
	if c.flag(FlagC) {
		carry = 0x80
	}

	if mode == modeAccumulator {
		c.setFlag(FlagC, c.A&0x01 != 0)
		c.A = c.A>>1 | carry
		c.evalZN(c.A)
		return 0
	}

	v := bus.ReadCycle(addr)
	bus.WriteCycle(addr, v)
	c.setFlag(FlagC, v&0x01 != 0)
	v = v>>1 | carry
	bus.WriteCycle(addr, v)
	c.evalZN(v)
	return v
}

func (c *CPU) inc(bus Bus, addr uint16) uint8 {
	v := bus.ReadCycle(addr)
	bus.WriteCycle(addr, v)
	v++
	bus.WriteCycle(addr, v)
	c.evalZN(v)
	return v
}

func (c *CPU) dec(bus Bus, addr uint16) uint8 {
	v := bus.ReadCycle(addr)
	bus.WriteCycle(addr, v)
	v--
	bus.WriteCycle(addr, v)
	c.evalZN(v)
	return v
}

func sxaSya(bus Bus, addr uint16, r uint8) {
	addrHigh := uint8(addr >> 8)
	v := r & (addrHigh + 1)
	bus.WriteCycle(uint16(v)<<8|(addr&0xFF), v)
}

func (c *CPU) branch(bus Bus, offset uint16) {
	irqWasPending := c.irqPending
	bus.ReadCycle(c.PC)

	targetPC := c.PC + uint16(int8(offset))
	newPC := (c.PC & 0xFF00) | (targetPC & 0x00FF)

	if targetPC != newPC {
		c.PC = newPC
		bus.ReadCycle(c.PC)
		c.PC = targetPC
	} else {
		c.PC = newPC
		c.irqPending = irqWasPending
	}
}

// exec fetches, decodes, and executes one instruction. It returns false if
// the opcode byte has no table entry.
func (c *CPU) exec(bus Bus) bool {
	code := bus.ReadCycle(c.PC)
	c.PC++
	op := opcodeTable[code]
	if op.name == opInvalid {
		return false
	}

	addr, _ := c.operandAddress(bus, op.mode, op.io)

	switch op.name {
	case opSEI:
		c.setFlag(FlagI, true)
	case opCLI:
		c.setFlag(FlagI, false)
	case opSED:
		c.setFlag(FlagD, true)
	case opCLD:
		c.setFlag(FlagD, false)
	case opSEC:
		c.setFlag(FlagC, true)
	case opCLC:
		c.setFlag(FlagC, false)
	case opCLV:
		c.setFlag(FlagV, false)

	case opLDA:
		c.A = bus.ReadCycle(addr)
		c.evalZN(c.A)
	case opSTA:
		bus.WriteCycle(addr, c.A)
	case opLDX:
		c.X = bus.ReadCycle(addr)
		c.evalZN(c.X)
	case opTXS:
		c.SP = c.X
	case opAND:
		c.and(bus.ReadCycle(addr))

	case opBEQ:
		if c.flag(FlagZ) {
			c.branch(bus, addr)
		}
	case opBVC:
		if !c.flag(FlagV) {
			c.branch(bus, addr)
		}
	case opBVS:
		if c.flag(FlagV) {
			c.branch(bus, addr)
		}
	case opBNE:
		if !c.flag(FlagZ) {
			c.branch(bus, addr)
		}
	case opBMI:
		if c.flag(FlagN) {
			c.branch(bus, addr)
		}
	case opBPL:
		if !c.flag(FlagN) {
			c.branch(bus, addr)
		}
	case opBCS:
		if c.flag(FlagC) {
			c.branch(bus, addr)
		}
	case opBCC:
		if !c.flag(FlagC) {
			c.branch(bus, addr)
		}

	case opLDY:
		c.Y = bus.ReadCycle(addr)
		c.evalZN(c.Y)
	case opSTY:
		bus.WriteCycle(addr, c.Y)
	case opDEY:
		c.Y--
		c.evalZN(c.Y)
	case opDEC:
		c.dec(bus, addr)

	case opJSR:
		c.readSP(bus)
		c.push16(bus, c.PC-1)
		c.PC = addr
	case opJMP:
		c.PC = addr

	case opPHA:
		c.push(bus, c.A)
	case opTXA:
		c.A = c.X
		c.evalZN(c.A)
	case opTYA:
		c.A = c.Y
		c.evalZN(c.A)

	case opCMP:
		v := bus.ReadCycle(addr)
		c.evalZN(c.A - v)
		c.setFlag(FlagC, c.A >= v)
	case opCPY:
		v := bus.ReadCycle(addr)
		c.evalZN(c.Y - v)
		c.setFlag(FlagC, c.Y >= v)
	case opCPX:
		v := bus.ReadCycle(addr)
		c.evalZN(c.X - v)
		c.setFlag(FlagC, c.X >= v)

	case opTAX:
		c.X = c.A
		c.evalZN(c.X)
	case opTAY:
		c.Y = c.A
		c.evalZN(c.Y)

	case opADC:
		c.adc(bus.ReadCycle(addr))
	case opSBC:
		c.sbc(bus.ReadCycle(addr))

	case opDEX:
		c.X--
		c.evalZN(c.X)
	case opINX:
		c.X++
		c.evalZN(c.X)
	case opINY:
		c.Y++
		c.evalZN(c.Y)

	case opRTS:
		c.readSP(bus)
		c.PC = c.pull16(bus) + 1
		bus.ReadCycle(c.PC)

	case opPLA:
		c.readSP(bus)
		c.A = c.pull(bus)
		c.evalZN(c.A)

	case opEOR:
		c.eor(bus.ReadCycle(addr))
	case opLSR:
		c.lsr(bus, op.mode, addr)
	case opASL:
		c.asl(bus, op.mode, addr)
	case opROR:
		c.ror(bus, op.mode, addr)
	case opROL:
		c.rol(bus, op.mode, addr)
	case opORA:
		c.ora(bus.ReadCycle(addr))
	case opSTX:
		bus.WriteCycle(addr, c.X)

	case opRTI:
		c.readSP(bus)
		c.P = (c.pull(bus) &^ FlagB) | FlagU
		c.PC = c.pull16(bus)

	case opPHP:
		c.push(bus, c.P|FlagB|FlagU)

	case opPLP:
		c.readSP(bus)
		c.P = (c.pull(bus) &^ FlagB) | FlagU

	case opINC:
		c.inc(bus, addr)

	case opBRK:
		c.PC++
		c.push16(bus, c.PC)

		vector := uint16(brkVector)
		if c.nmiSignal {
			vector = nmiVector
			c.nmiSignal = false
		}
		c.push(bus, c.P|FlagB|FlagU)

		c.setFlag(FlagI, true)
		c.PC = c.read16(bus, vector)
		c.irqPending = false

	case opTSX:
		c.X = c.SP
		c.evalZN(c.X)

	case opBIT:
		v := bus.ReadCycle(addr)
		c.setFlag(FlagV, v&0x40 != 0)
		c.evalZ(v & c.A)
		c.evalN(v)

	case opNOP:
		// no-op

	case opDOP, opTOP:
		bus.ReadCycle(addr)

	case opAAC:
		c.and(bus.ReadCycle(addr))
		c.setFlag(FlagC, c.A&0x80 != 0)

	case opASR:
		c.A &= bus.ReadCycle(addr)
		c.setFlag(FlagC, c.A&0x01 != 0)
		c.A >>= 1
		c.evalZN(c.A)

	case opARR:
		c.A &= bus.ReadCycle(addr)
		c.A >>= 1
		if c.flag(FlagC) {
			c.A |= 0x80
		}
		c.evalZN(c.A)

		switch {
		case c.A&0x60 == 0x60:
			c.setFlag(FlagC, true)
			c.setFlag(FlagV, false)
		case c.A&0x20 != 0:
			c.setFlag(FlagV, true)
			c.setFlag(FlagC, false)
		case c.A&0x40 != 0:
			c.setFlag(FlagV, true)
			c.setFlag(FlagC, true)
		default:
			c.setFlag(FlagC, false)
			c.setFlag(FlagV, false)
		}

	case opATX:
		c.X = bus.ReadCycle(addr)
		c.A = c.X
		c.evalZN(c.A)

	case opAXS:
		a, x := c.A, c.X
		b := bus.ReadCycle(addr)
		c.X = (a & x) - b
		c.evalZN(c.X)
		c.setFlag(FlagC, int16(a&x)-int16(b) >= 0)

	case opSLO:
		c.ora(c.asl(bus, op.mode, addr))
	case opRLA:
		c.and(c.rol(bus, op.mode, addr))
	case opSRE:
		c.eor(c.lsr(bus, op.mode, addr))
	case opRRA:
		c.adc(c.ror(bus, op.mode, addr))

	case opAAX:
		bus.WriteCycle(addr, c.A&c.X)

	case opLAX:
		c.A = bus.ReadCycle(addr)
		c.X = c.A
		c.evalZN(c.A)

	case opDCP:
		v := c.dec(bus, addr)
		c.evalZN(c.A - v)
		c.setFlag(FlagC, c.A >= v)

	case opISC:
		c.sbc(c.inc(bus, addr))

	case opSYA:
		sxaSya(bus, addr, c.Y)
	case opSXA:
		sxaSya(bus, addr, c.X)

	case opXAA:
		c.A = c.X & bus.ReadCycle(addr)
		c.evalZN(c.A)

	case opAXA:
		bus.WriteCycle(addr, c.A&c.X&(uint8(addr>>8)+1))

	case opLAR:
		c.SP &= bus.ReadCycle(addr)
		c.A, c.X = c.SP, c.SP
		c.evalZN(c.A)

	case opXAS:
		c.SP = c.A & c.X
		bus.WriteCycle(addr, c.SP&(uint8(addr>>8)+1))

	default:
		return false
	}

	return true
}

// State is the versioned, explicit byte-field serialization of the CPU.
type State struct {
	PC                        uint16
	SP, A, X, Y, P            uint8
	NMILine, IRQPending, Halt bool
	IRQ                       IRQSource
	IRQP2, NMIP2, NMISignal   bool
}

// GetState snapshots every CPU register and interrupt-pipeline flag.
func (c *CPU) GetState() State {
	return State{
		PC: c.PC, SP: c.SP, A: c.A, X: c.X, Y: c.Y, P: c.P,
		NMILine: c.nmiLine, IRQPending: c.irqPending, Halt: c.halt,
		IRQ: c.irq, IRQP2: c.irqP2, NMIP2: c.nmiP2, NMISignal: c.nmiSignal,
	}
}

// SetState restores a previously captured State.
func (c *CPU) SetState(s State) {
	c.PC, c.SP, c.A, c.X, c.Y, c.P = s.PC, s.SP, s.A, s.X, s.Y, s.P
	c.nmiLine, c.irqPending, c.halt = s.NMILine, s.IRQPending, s.Halt
	c.irq, c.irqP2, c.nmiP2, c.nmiSignal = s.IRQ, s.IRQP2, s.NMIP2, s.NMISignal
}
