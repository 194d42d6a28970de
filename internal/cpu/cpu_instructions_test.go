package cpu

import "testing"

func TestStackPushPull(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.A = 0x42
	mem.SetByte(c.PC, 0x48) // PHA
	c.Step(mem)

	if mem.data[0x0100|uint16(0xFD)] != 0x42 {
		t.Fatalf("PHA did not write A to the stack")
	}

	c.A = 0x00
	mem.SetByte(c.PC, 0x68) // PLA
	c.Step(mem)

	if c.A != 0x42 {
		t.Fatalf("A = %#02x, want 0x42 after PLA", c.A)
	}
	if c.SP != 0xFD {
		t.Fatalf("SP = %#02x, want 0xFD after matching push/pull", c.SP)
	}
}

func TestJSRRTSRoundTrip(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	startPC := c.PC
	mem.SetBytes(c.PC, 0x20, 0x00, 0x90) // JSR $9000
	mem.SetByte(0x9000, 0x60)            // RTS
	c.Step(mem)

	if c.PC != 0x9000 {
		t.Fatalf("PC = %#04x, want 0x9000 after JSR", c.PC)
	}

	c.Step(mem)
	if c.PC != startPC+3 {
		t.Fatalf("PC = %#04x, want %#04x after RTS", c.PC, startPC+3)
	}
}

func TestBRKPushesStatusWithBSet(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	mem.SetBytes(nmiVector, 0x00, 0x00)
	mem.SetBytes(brkVector, 0x00, 0x40)
	mem.SetByte(c.PC, 0x00) // BRK
	c.Step(mem)

	if c.PC != 0x4000 {
		t.Fatalf("PC = %#04x, want 0x4000 (BRK vector)", c.PC)
	}
	pushedStatus := mem.data[0x0100|uint16(c.SP+1)]
	if pushedStatus&FlagB == 0 {
		t.Fatal("B flag not set in status pushed by BRK")
	}
	if !c.flag(FlagI) {
		t.Fatal("I not set after BRK")
	}
}

func TestUnofficialLAXLoadsBothAAndX(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	mem.SetBytes(c.PC, 0xA7, 0x10) // LAX $10
	mem.SetByte(0x0010, 0x77)
	c.Step(mem)

	if c.A != 0x77 || c.X != 0x77 {
		t.Fatalf("A=%#02x X=%#02x, want both 0x77", c.A, c.X)
	}
}

func TestUnofficialSAXStoresAAndAnd(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.A = 0xF0
	c.X = 0x0F
	mem.SetBytes(c.PC, 0x87, 0x10) // AAX $10 (SAX)
	c.Step(mem)

	if mem.data[0x0010] != 0x00 {
		t.Fatalf("AAX wrote %#02x, want 0x00 (A & X)", mem.data[0x0010])
	}
}

func TestUnofficialDCPCombinesDecAndCompare(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.A = 0x05
	mem.SetBytes(c.PC, 0xC7, 0x10) // DCP $10
	mem.SetByte(0x0010, 0x06)
	c.Step(mem)

	if mem.data[0x0010] != 0x05 {
		t.Fatalf("DCP decremented to %#02x, want 0x05", mem.data[0x0010])
	}
	if !c.flag(FlagZ) {
		t.Fatal("DCP should set Z when A equals the decremented value")
	}
}

func TestUnofficialISCCombinesIncAndSBC(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.A = 0x10
	c.setFlag(FlagC, true)
	mem.SetBytes(c.PC, 0xE7, 0x10) // ISC $10
	mem.SetByte(0x0010, 0x04)
	c.Step(mem)

	if mem.data[0x0010] != 0x05 {
		t.Fatalf("ISC incremented to %#02x, want 0x05", mem.data[0x0010])
	}
	if c.A != 0x0B {
		t.Fatalf("A = %#02x, want 0x0B (0x10 - 0x05)", c.A)
	}
}

func TestUnofficialSLOCombinesASLAndORA(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.A = 0x01
	mem.SetBytes(c.PC, 0x07, 0x10) // SLO $10
	mem.SetByte(0x0010, 0x81)
	c.Step(mem)

	if mem.data[0x0010] != 0x02 {
		t.Fatalf("SLO shifted to %#02x, want 0x02", mem.data[0x0010])
	}
	if !c.flag(FlagC) {
		t.Fatal("SLO should carry out bit 7 of the original value")
	}
	if c.A != 0x03 {
		t.Fatalf("A = %#02x, want 0x03 (0x01 | 0x02)", c.A)
	}
}

func TestINCDECWrapping(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	mem.SetBytes(c.PC, 0xE6, 0x10) // INC $10
	mem.SetByte(0x0010, 0xFF)
	c.Step(mem)

	if mem.data[0x0010] != 0x00 {
		t.Fatalf("INC result = %#02x, want 0x00", mem.data[0x0010])
	}
	if !c.flag(FlagZ) {
		t.Fatal("Z not set after INC wraps to zero")
	}
}
