package bus

import (
	"gones/internal/cartridge"
	"testing"
)

func newSyncTestBus(program []uint8) *Bus {
	b := New()

	cart, err := cartridge.NewTestROMBuilder().
		WithPRGSize(2).
		WithInstructions(program).
		WithResetVector(0x8000).
		BuildCartridge()
	if err != nil {
		panic(err)
	}
	b.LoadCartridge(cart)
	return b
}

// TestCPUPPU3To1Ratio checks that every CPU cycle the bus advances also
// advances the PPU by exactly 3 dots, across a run of instructions with
// varying cycle counts.
func TestCPUPPU3To1Ratio(t *testing.T) {
	program := []uint8{
		0xEA,             // NOP (2)
		0xA9, 0x42,       // LDA #$42 (2)
		0x85, 0x00,       // STA $00 (3)
		0xE8,             // INX (2)
		0x4C, 0x00, 0x80, // JMP $8000 (3)
	}
	b := newSyncTestBus(program)

	for i := 0; i < 5; i++ {
		cpuBefore := b.CycleCount()
		ppuBefore := b.PPU.GetCycleCount()

		b.Step()

		cpuAfter := b.CycleCount()
		ppuAfter := b.PPU.GetCycleCount()

		if (ppuAfter - ppuBefore) != (cpuAfter-cpuBefore)*3 {
			t.Fatalf("step %d: PPU cycles should be 3x CPU cycles, got cpu=%d ppu=%d",
				i, cpuAfter-cpuBefore, ppuAfter-ppuBefore)
		}
	}
}

// TestOAMDMAStallsCPUFor513Or514Cycles checks the OAM-DMA cycle budget:
// 513 cycles normally, 514 when it starts on an odd CPU cycle.
func TestOAMDMAStallsCPUFor513Or514Cycles(t *testing.T) {
	program := []uint8{
		0xA9, 0x02, // LDA #$02 (2)
		0x8D, 0x14, 0x40, // STA $4014 (4) - triggers DMA
		0xEA, // NOP
	}
	b := newSyncTestBus(program)

	b.Step() // LDA
	cpuBeforeDMA := b.CycleCount()

	b.Step() // STA $4014, triggers DMA

	steps := 0
	for b.dmaActive && steps < 600 {
		b.tick()
		steps++
	}

	total := b.CycleCount() - cpuBeforeDMA
	if total < 513 || total > 518 {
		t.Fatalf("OAM-DMA should take ~513-514 cycles including the triggering write, got %d", total)
	}
}

// TestNMIEntersHandler runs until the NMI handler executes, to confirm the
// PPU's NMI callback reaches the CPU through the bus rather than through a
// direct pointer between the two packages.
func TestNMIEntersHandler(t *testing.T) {
	b := New()

	cart, err := cartridge.NewTestROMBuilder().
		WithPRGSize(2).
		WithData(0x0000, []uint8{0xEA, 0x4C, 0x00, 0x80}). // NOP; JMP $8000 at reset vector
		WithData(0x0100, []uint8{0xEA, 0x40}).             // NOP; RTI at NMI handler
		WithNMIVector(0x8100).
		WithResetVector(0x8000).
		BuildCartridge()
	if err != nil {
		t.Fatalf("failed to build test cartridge: %v", err)
	}
	b.LoadCartridge(cart)

	b.PPU.WriteRegister(0x2000, 0x80) // enable NMI generation on vblank

	reached := false
	for i := 0; i < 400000; i++ {
		b.Step()
		if b.CPU.GetState().PC == 0x8100 {
			reached = true
			break
		}
	}

	if !reached {
		t.Fatal("NMI handler at $8100 was never reached")
	}
}
