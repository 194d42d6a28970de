package cartridge

import "testing"

func newMMC3(id uint8, prgBanks, chrBanks int) (*Cartridge, *Mapper004) {
	cart := &Cartridge{prgROM: make([]uint8, prgBanks*0x2000), chrROM: make([]uint8, chrBanks*0x0400)}
	for i := range cart.prgROM {
		cart.prgROM[i] = uint8(i / 0x2000)
	}
	for i := range cart.chrROM {
		cart.chrROM[i] = uint8(i / 0x0400)
	}
	return cart, NewMapper004(cart, id)
}

func TestMapper004_PRGMode0FixesSecondToLastAt0xC000(t *testing.T) {
	_, m := newMMC3(4, 8, 8)
	m.WritePRG(0x8000, 0x06) // bankSelect=6 (R6, the $8000 swappable window), prgMode=0
	m.WritePRG(0x8001, 0x02) // R6 = bank 2

	if v := m.ReadPRG(0x8000); v != 2 {
		t.Errorf("ReadPRG(0x8000) = %d, want bank 2 (R6)", v)
	}
	if v := m.ReadPRG(0xC000); v != 6 {
		t.Errorf("ReadPRG(0xC000) = %d, want bank 6 (second-to-last, fixed)", v)
	}
	if v := m.ReadPRG(0xE000); v != 7 {
		t.Errorf("ReadPRG(0xE000) = %d, want bank 7 (last, always fixed)", v)
	}
}

func TestMapper004_PRGMode1SwapsWindows(t *testing.T) {
	_, m := newMMC3(4, 8, 8)
	m.WritePRG(0x8000, 0x46) // bankSelect=6, prgMode=1 (bit 6 set)
	m.WritePRG(0x8001, 0x02) // R6 = bank 2

	if v := m.ReadPRG(0x8000); v != 6 {
		t.Errorf("ReadPRG(0x8000) = %d, want bank 6 (second-to-last, fixed in mode 1)", v)
	}
	if v := m.ReadPRG(0xC000); v != 2 {
		t.Errorf("ReadPRG(0xC000) = %d, want bank 2 (R6, swappable in mode 1)", v)
	}
}

func TestMapper004_R7SelectsMiddleWindow(t *testing.T) {
	_, m := newMMC3(4, 8, 8)
	m.WritePRG(0x8000, 0x07) // bankSelect=7 (R7, the $A000 window)
	m.WritePRG(0x8001, 0x03)

	if v := m.ReadPRG(0xA000); v != 3 {
		t.Errorf("ReadPRG(0xA000) = %d, want bank 3 (R7)", v)
	}
}

func TestMapper004_CHRModeSwapsHalves(t *testing.T) {
	_, m := newMMC3(4, 4, 16)
	// R0/R1 are 2KB banks (bank index even, shifted right by one bank unit),
	// R2-R5 are 1KB banks.
	m.WritePRG(0x8000, 0x00)
	m.WritePRG(0x8001, 0x02) // R0 = 2 -> 2KB bank at CHR bank pair 1
	m.WritePRG(0x8000, 0x02)
	m.WritePRG(0x8001, 0x08) // R2 = 8 -> 1KB bank 8

	// chrMode=0: 2KB banks occupy $0000-$0FFF, 1KB banks occupy $1000-$1FFF.
	if v := m.ReadCHR(0x0000); v != 2 {
		t.Errorf("ReadCHR(0x0000) with chrMode=0 = %d, want 1KB bank 2 (start of pair 1)", v)
	}
	if v := m.ReadCHR(0x1000); v != 8 {
		t.Errorf("ReadCHR(0x1000) with chrMode=0 = %d, want bank 8", v)
	}

	m.WritePRG(0x8000, 0x80) // chrMode=1, bankSelect unchanged at 0
	if v := m.ReadCHR(0x0000); v != 8 {
		t.Errorf("ReadCHR(0x0000) with chrMode=1 = %d, want bank 8", v)
	}
	if v := m.ReadCHR(0x1000); v != 2 {
		t.Errorf("ReadCHR(0x1000) with chrMode=1 = %d, want 1KB bank 2 (start of pair 1)", v)
	}
}

func TestMapper004_MirroringBit(t *testing.T) {
	_, m := newMMC3(4, 2, 2)
	m.WritePRG(0xA000, 0x01)
	if mode, _ := m.MirrorChanged(); mode != MirrorHorizontal {
		t.Errorf("mirror = %v, want MirrorHorizontal", mode)
	}
	m.WritePRG(0xA000, 0x00)
	if mode, _ := m.MirrorChanged(); mode != MirrorVertical {
		t.Errorf("mirror = %v, want MirrorVertical", mode)
	}
}

func TestMapper004_PRGRAMEnableAndReadGating(t *testing.T) {
	_, m := newMMC3(4, 2, 2)
	m.WritePRG(0x6000, 0xAB)
	if v := m.ReadPRG(0x6000); v != 0xAB {
		t.Fatalf("ReadPRG(0x6000) = %#x, want 0xAB (RAM enabled by default)", v)
	}

	m.WritePRG(0xA001, 0xC0) // bit 7 keeps reads enabled, bit 6 set disables writes
	m.WritePRG(0x6000, 0xFF)
	if v := m.ReadPRG(0x6000); v != 0xAB {
		t.Errorf("write landed despite RAM write-disable, got %#x", v)
	}

	m.WritePRG(0xA001, 0x00) // bit 7 clear disables reads
	if v := m.ReadPRG(0x6000); v != 0 {
		t.Errorf("ReadPRG(0x6000) = %#x, want 0 while RAM read-disabled", v)
	}
}

func TestMapper004_IRQReloadAndCount(t *testing.T) {
	_, m := newMMC3(4, 8, 8)
	m.WritePRG(0xC000, 4) // irqPeriod = 4
	m.WritePRG(0xC001, 0) // request reload
	m.WritePRG(0xE001, 0) // enable IRQ

	// First clock after a reload request reloads the counter rather than
	// decrementing it, so it takes period+1 scanlines to reach zero.
	for i := 0; i < 5; i++ {
		for dot := 0; dot < 341; dot += 3 {
			m.Step()
		}
	}
	if !m.IRQAsserted() {
		t.Fatal("IRQ not asserted after counter reaches 0")
	}
}

func TestMapper004_IRQAckClearsAssertedAndDisables(t *testing.T) {
	_, m := newMMC3(4, 8, 8)
	m.WritePRG(0xC000, 0)
	m.WritePRG(0xC001, 0)
	m.WritePRG(0xE001, 0)
	for i := 0; i < 341; i += 3 {
		m.Step()
	}
	if !m.IRQAsserted() {
		t.Fatal("expected IRQ asserted with period 0")
	}

	m.WritePRG(0xE000, 0)
	if m.IRQAsserted() {
		t.Error("IRQ still asserted after $E000 acknowledge")
	}
}

func TestMapper004_Mapper206IgnoresPRGCHRModeBits(t *testing.T) {
	_, m := newMMC3(206, 8, 8)
	m.WritePRG(0x8000, 0x46) // would set prgMode=1 on real MMC3; mapper 206 ignores it
	if m.prgMode != 0 {
		t.Errorf("mapper 206 prgMode = %d, want 0 (fixed)", m.prgMode)
	}

	m.WritePRG(0x8000, 0x06)
	m.WritePRG(0x8001, 0xFF) // mapper 206 masks register writes to 6 bits
	if m.reg[6] != 0x3F {
		t.Errorf("mapper 206 reg[6] = %#x, want 0x3F (masked)", m.reg[6])
	}
}

func TestMapper004_Mapper206IgnoresWritesAbove0x9FFF(t *testing.T) {
	_, m := newMMC3(206, 8, 8)
	m.WritePRG(0x8000, 0x00)
	m.WritePRG(0x8001, 0x01)
	before := m.reg[0]

	m.WritePRG(0xC000, 99) // out of range for mapper 206
	if m.irqPeriod != 0 || m.reg[0] != before {
		t.Error("mapper 206 should ignore writes above 0x9FFF")
	}
}
