package bus

import (
	"gones/internal/cartridge"
	"testing"
)

func newMemTestBus(t *testing.T) *Bus {
	t.Helper()

	romBuilder := cartridge.NewTestROMBuilder().
		WithPRGSize(1).
		WithCHRSize(1).
		WithResetVector(0x8000).
		WithData(0x0000, []uint8{0xAA}).
		WithData(0x3FF0, []uint8{0xBB})

	cart, err := romBuilder.BuildCartridge()
	if err != nil {
		t.Fatalf("failed to build test cartridge: %v", err)
	}

	b := New()
	b.LoadCartridge(cart)
	return b
}

// TestROMAccessThroughBus checks that the CPU address decode reaches the
// cartridge for both ROM data and the reset vector.
func TestROMAccessThroughBus(t *testing.T) {
	b := newMemTestBus(t)

	if v := b.read(0x8000); v != 0xAA {
		t.Errorf("first PRG byte = 0x%02X, want 0xAA", v)
	}

	lo, hi := b.read(0xFFFC), b.read(0xFFFD)
	if reset := uint16(lo) | uint16(hi)<<8; reset != 0x8000 {
		t.Errorf("reset vector = 0x%04X, want 0x8000", reset)
	}
}

// TestNROM128Mirroring checks that a 16KB PRG ROM mirrors across
// $8000-$BFFF and $C000-$FFFF.
func TestNROM128Mirroring(t *testing.T) {
	b := newMemTestBus(t)

	if a, c := b.read(0x8000), b.read(0xC000); a != c {
		t.Errorf("NROM-128 mirroring failed: $8000=0x%02X $C000=0x%02X", a, c)
	}
	if a, c := b.read(0xBFF0), b.read(0xFFF0); a != c || a != 0xBB {
		t.Errorf("NROM-128 mirroring failed near bank end: $BFF0=0x%02X $FFF0=0x%02X", a, c)
	}
}

// TestRAMIsolatedFromROM checks that CPU work RAM writes never alias into
// cartridge-mapped address space.
func TestRAMIsolatedFromROM(t *testing.T) {
	b := newMemTestBus(t)

	b.write(0x0000, 0x11)
	if ram, rom := b.read(0x0000), b.read(0x8000); ram != 0x11 || ram == rom {
		t.Errorf("RAM and ROM should be isolated: ram=0x%02X rom=0x%02X", ram, rom)
	}
}

// TestRAMMirroring checks that the 2KB internal RAM mirrors four times
// across $0000-$1FFF.
func TestRAMMirroring(t *testing.T) {
	b := newMemTestBus(t)

	b.write(0x0001, 0x99)
	for _, addr := range []uint16{0x0801, 0x1001, 0x1801} {
		if v := b.read(addr); v != 0x99 {
			t.Errorf("RAM should mirror at 0x%04X, got 0x%02X", addr, v)
		}
	}
}

// TestResetLoadsPCFromVector checks that Bus.Reset drives the CPU through
// its reset sequence against the cartridge-provided vector.
func TestResetLoadsPCFromVector(t *testing.T) {
	b := newMemTestBus(t)

	b.Reset(true)
	if pc := b.CPU.GetState().PC; pc != 0x8000 {
		t.Errorf("PC after reset = 0x%04X, want 0x8000", pc)
	}
}

// TestCartridgeSwapReinitializesMemory checks that loading a second
// cartridge onto the same bus fully replaces the first's address space.
func TestCartridgeSwapReinitializesMemory(t *testing.T) {
	b := newMemTestBus(t)

	second := cartridge.NewTestROMBuilder().
		WithPRGSize(1).
		WithCHRSize(1).
		WithResetVector(0x8000).
		WithData(0x0000, []uint8{0xCC})

	cart2, err := second.BuildCartridge()
	if err != nil {
		t.Fatalf("failed to build second cartridge: %v", err)
	}

	b.LoadCartridge(cart2)
	if v := b.read(0x8000); v != 0xCC {
		t.Errorf("after cartridge swap, $8000 = 0x%02X, want 0xCC", v)
	}
}
