// Package bus implements the NES system bus: the sole owner of the CPU,
// PPU, APU, cartridge, and input devices, and the single place address
// decoding happens. Every device is driven through the bus rather than
// holding pointers to its siblings.
package bus

import (
	"gones/internal/apu"
	"gones/internal/cartridge"
	"gones/internal/cpu"
	"gones/internal/input"
	"gones/internal/memory"
	"gones/internal/ppu"
)

// Bus wires the NES components together and drives them one CPU cycle at
// a time. It implements cpu.Bus, so the CPU never holds a reference back
// to it.
type Bus struct {
	CPU   *cpu.CPU
	PPU   *ppu.PPU
	APU   *apu.APU
	Cart  *cartridge.Cartridge
	Input *input.InputState

	ram [0x0800]uint8

	openBus uint8

	cpuCycles uint64

	dmaActive      bool
	dmaPage        uint8
	dmaIndex       int
	dmaAlignCycles int
	dmaWritePhase  bool
	dmaLatch       uint8

	oddCycle bool
}

// New creates a system bus with all components constructed, but no
// cartridge loaded yet.
func New() *Bus {
	b := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(),
		Input: input.NewInputState(),
	}
	b.CPU = cpu.New()

	b.PPU.SetNMICallback(func() {
		b.CPU.SetNMI(true)
	})

	return b
}

// LoadCartridge installs a cartridge, wires its CHR space into the PPU,
// and hard-resets the system.
func (b *Bus) LoadCartridge(cart *cartridge.Cartridge) {
	b.Cart = cart

	var mirror memory.MirrorMode
	switch cart.GetMirrorMode() {
	case cartridge.MirrorHorizontal:
		mirror = memory.MirrorHorizontal
	case cartridge.MirrorVertical:
		mirror = memory.MirrorVertical
	case cartridge.MirrorSingleScreen0:
		mirror = memory.MirrorSingleScreen0
	case cartridge.MirrorSingleScreen1:
		mirror = memory.MirrorSingleScreen1
	case cartridge.MirrorFourScreen:
		mirror = memory.MirrorFourScreen
	}
	b.PPU.SetMemory(memory.NewPPUMemory(cart, mirror))

	b.Reset(true)
}

// Reset hard- or soft-resets every component.
func (b *Bus) Reset(hard bool) {
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	b.dmaActive = false
	b.dmaIndex = 0
	b.CPU.Reset(b, hard)
}

// ReadCycle implements cpu.Bus: perform the read, then advance every
// other device by one CPU cycle's worth of work.
func (b *Bus) ReadCycle(addr uint16) uint8 {
	v := b.read(addr)
	b.tick()
	return v
}

// WriteCycle implements cpu.Bus.
func (b *Bus) WriteCycle(addr uint16, v uint8) {
	b.write(addr, v)
	b.tick()
}

// tick advances PPU (3 dots), APU (1 cycle), the cartridge's IRQ-capable
// mapper, and the CPU's interrupt pipeline by one CPU cycle. It also
// drives the OAM-DMA state machine, since DMA steals cycles between CPU
// memory accesses on real hardware.
func (b *Bus) tick() {
	b.cpuCycles++
	b.oddCycle = !b.oddCycle

	for i := 0; i < 3; i++ {
		b.PPU.Step()
	}
	b.APU.Step()

	if b.Cart != nil {
		mapper := b.Cart.Mapper()

		if mirrorSetter, ok := mapper.(cartridge.MirrorSetter); ok {
			if mode, changed := mirrorSetter.MirrorChanged(); changed {
				var mm memory.MirrorMode
				switch mode {
				case cartridge.MirrorHorizontal:
					mm = memory.MirrorHorizontal
				case cartridge.MirrorVertical:
					mm = memory.MirrorVertical
				case cartridge.MirrorSingleScreen0:
					mm = memory.MirrorSingleScreen0
				case cartridge.MirrorSingleScreen1:
					mm = memory.MirrorSingleScreen1
				case cartridge.MirrorFourScreen:
					mm = memory.MirrorFourScreen
				}
				b.PPU.SetMirroring(mm)
			}
		}

		if stepper, ok := mapper.(cartridge.Stepper); ok {
			stepper.Step()
		}

		if irqSource, ok := mapper.(cartridge.IRQSource); ok {
			b.CPU.SetIRQ(cpu.IRQMapper, irqSource.IRQAsserted())
		}

		if extAudio, ok := mapper.(cartridge.ExternalAudioSource); ok {
			b.APU.AddExternalSample(extAudio.ExternalAudioSample())
		}
	}

	b.CPU.SetIRQ(cpu.IRQFrameCounter, b.APU.GetFrameIRQ())
	b.CPU.SetIRQ(cpu.IRQDMC, b.APU.GetDMCIRQ())

	b.CPU.PollInterrupts()

	b.runDMAStep()
}

// runDMAStep advances one cycle of an in-progress OAM-DMA transfer: one
// alignment cycle (two on an odd CPU cycle), then alternating read/write
// half-cycles for each of the 256 bytes, for a 513 or 514 cycle total.
func (b *Bus) runDMAStep() {
	if !b.dmaActive {
		return
	}

	if b.dmaAlignCycles > 0 {
		b.dmaAlignCycles--
		return
	}

	if b.dmaIndex >= 256 {
		b.dmaActive = false
		b.CPU.SetHalt(false)
		return
	}

	if !b.dmaWritePhase {
		srcAddr := uint16(b.dmaPage)<<8 | uint16(b.dmaIndex)
		b.dmaLatch = b.read(srcAddr)
		b.dmaWritePhase = true
		return
	}

	b.PPU.WriteOAM(uint8(b.dmaIndex), b.dmaLatch)
	b.dmaWritePhase = false
	b.dmaIndex++
}

// startOAMDMA begins a 256-byte OAM-DMA transfer from the given CPU page.
func (b *Bus) startOAMDMA(page uint8) {
	b.dmaActive = true
	b.dmaPage = page
	b.dmaIndex = 0
	b.dmaWritePhase = false
	b.dmaAlignCycles = 1
	if b.oddCycle {
		b.dmaAlignCycles = 2
	}
	b.CPU.SetHalt(true)
}

// read decodes a CPU-visible address and returns its value, updating the
// open-bus latch for unmapped regions.
func (b *Bus) read(addr uint16) uint8 {
	var v uint8

	switch {
	case addr < 0x2000:
		v = b.ram[addr&0x07FF]

	case addr < 0x4000:
		v = b.PPU.ReadRegister(0x2000 + addr&0x0007)

	case addr == 0x4015:
		v = b.APU.ReadStatus()

	case addr == 0x4016, addr == 0x4017:
		v = b.Input.Read(addr)

	case addr < 0x4020:
		v = b.openBus

	case addr < 0x8000:
		// $4020-$5FFF is cartridge expansion space (used by the FDS's
		// own register block); $6000-$7FFF is the usual PRG-RAM window.
		if b.Cart != nil {
			v = b.Cart.ReadPRG(addr)
		} else {
			v = b.openBus
		}

	default:
		if b.Cart != nil {
			v = b.Cart.ReadPRG(addr)
		} else {
			v = b.openBus
		}
	}

	b.openBus = v
	return v
}

// write decodes a CPU-visible address and performs the write.
func (b *Bus) write(addr uint16, v uint8) {
	switch {
	case addr < 0x2000:
		b.ram[addr&0x07FF] = v

	case addr < 0x4000:
		b.PPU.WriteRegister(0x2000+addr&0x0007, v)

	case addr == 0x4014:
		b.startOAMDMA(v)

	case addr == 0x4016:
		b.Input.Write(addr, v)

	case addr >= 0x4000 && addr <= 0x4013, addr == 0x4015, addr == 0x4017:
		b.APU.WriteRegister(addr, v)

	case addr < 0x4020:
		// test-mode registers, ignored

	case addr < 0x8000:
		// $4020-$5FFF is cartridge expansion space (used by the FDS's
		// own register block); $6000-$7FFF is the usual PRG-RAM window.
		if b.Cart != nil {
			b.Cart.WritePRG(addr, v)
		}

	default:
		if b.Cart != nil {
			b.Cart.WritePRG(addr, v)
		}
	}

	b.openBus = v
}

// Step executes one CPU instruction (or, while a DMA is in progress, one
// stalled cycle), ticking every other device alongside it.
func (b *Bus) Step() {
	if b.CPU.Halted() {
		b.tick()
		return
	}
	b.CPU.Step(b)
}

// RunFrame runs the bus until the PPU reports a completed frame.
func (b *Bus) RunFrame() {
	target := b.PPU.GetFrameCount() + 1
	for b.PPU.GetFrameCount() < target {
		b.Step()
	}
}

// GetFrameBuffer returns the current PPU frame buffer.
func (b *Bus) GetFrameBuffer() [256 * 240]uint32 {
	return b.PPU.GetFrameBuffer()
}

// GetAudioSamples returns pending APU audio samples.
func (b *Bus) GetAudioSamples() []float32 {
	return b.APU.GetSamples()
}

// SetControllerButtons sets all button states for one controller (1 or 2).
func (b *Bus) SetControllerButtons(controller int, buttons [8]bool) {
	switch controller {
	case 1:
		b.Input.SetButtons1(buttons)
	case 2:
		b.Input.SetButtons2(buttons)
	}
}

// CycleCount returns the total number of CPU cycles executed.
func (b *Bus) CycleCount() uint64 {
	return b.cpuCycles
}

// Snapshot is the serializable system state for save states: CPU, APU,
// PPU, cartridge SRAM, work RAM and cycle bookkeeping, in that order.
// Controller shift registers, mapper bank/IRQ registers and an
// in-progress OAM-DMA are not included.
type Snapshot struct {
	CPU        cpu.State
	APU        apu.Snapshot
	PPU        ppu.Snapshot
	CartSRAM   []uint8
	RAM        [0x0800]uint8
	CPUCycles  uint64
	OddCycle   bool
}

// Snapshot captures the state listed on the Snapshot type. The
// cartridge's CHR/PRG ROM is not included: it is reloaded by the host
// from the same ROM image before SetState is called.
func (b *Bus) Snapshot() Snapshot {
	s := Snapshot{
		CPU: b.CPU.GetState(), APU: b.APU.Snapshot(), PPU: b.PPU.Snapshot(),
		RAM: b.ram, CPUCycles: b.cpuCycles, OddCycle: b.oddCycle,
	}
	if b.Cart != nil {
		s.CartSRAM = append([]uint8(nil), b.Cart.SRAM()...)
	}
	return s
}

// Restore installs a previously captured Snapshot. The same cartridge
// must already be loaded via LoadCartridge.
func (b *Bus) Restore(s Snapshot) {
	b.CPU.SetState(s.CPU)
	b.APU.Restore(s.APU)
	b.PPU.Restore(s.PPU)
	b.ram = s.RAM
	b.cpuCycles = s.CPUCycles
	b.oddCycle = s.OddCycle
	if b.Cart != nil && len(s.CartSRAM) > 0 {
		copy(b.Cart.SRAM(), s.CartSRAM)
	}
}

// GetFrameCount returns the number of frames the PPU has completed.
func (b *Bus) GetFrameCount() uint64 {
	return b.PPU.GetFrameCount()
}

// CPUState is a flattened snapshot of CPU registers and flags, for save
// states and debug UIs that shouldn't need to know about cpu.State.
type CPUState struct {
	PC     uint16
	A, X, Y, SP uint8
	Cycles uint64
	Flags  CPUFlags
}

// CPUFlags breaks the 6502 status register out into named bits.
type CPUFlags struct {
	N, V, B, D, I, Z, C bool
}

// GetCPUState snapshots the CPU for save states and debugging.
func (b *Bus) GetCPUState() CPUState {
	s := b.CPU.GetState()
	const (
		flagC = 1 << 0
		flagZ = 1 << 1
		flagI = 1 << 2
		flagD = 1 << 3
		flagB = 1 << 4
		flagV = 1 << 6
		flagN = 1 << 7
	)
	return CPUState{
		PC: s.PC, A: s.A, X: s.X, Y: s.Y, SP: s.SP,
		Cycles: b.cpuCycles,
		Flags: CPUFlags{
			N: s.P&flagN != 0, V: s.P&flagV != 0, B: s.P&flagB != 0,
			D: s.P&flagD != 0, I: s.P&flagI != 0, Z: s.P&flagZ != 0, C: s.P&flagC != 0,
		},
	}
}

// PPUState is a flattened snapshot of PPU timing and status, for save
// states and debug UIs.
type PPUState struct {
	Scanline    int
	Cycle       int
	FrameCount  uint64
	VBlankFlag  bool
	RenderingOn bool
	NMIEnabled  bool
}

// GetPPUState snapshots the PPU for save states and debugging.
func (b *Bus) GetPPUState() PPUState {
	return PPUState{
		Scanline:    b.PPU.GetScanline(),
		Cycle:       b.PPU.GetCycle(),
		FrameCount:  b.PPU.GetFrameCount(),
		VBlankFlag:  b.PPU.IsVBlank(),
		RenderingOn: b.PPU.IsRenderingEnabled(),
		NMIEnabled:  b.PPU.NMIEnabled(),
	}
}
