package cpu

import "testing"

func TestADCSetsCarryAndOverflow(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.A = 0x50
	c.setFlag(FlagC, false)
	mem.SetBytes(c.PC, 0x69, 0x50) // ADC #$50 -> overflow (positive+positive=negative)
	c.Step(mem)

	if c.A != 0xA0 {
		t.Fatalf("A = %#02x, want 0xA0", c.A)
	}
	if !c.flag(FlagV) {
		t.Fatal("overflow flag not set for signed overflow")
	}
	if c.flag(FlagC) {
		t.Fatal("carry unexpectedly set")
	}
	if !c.flag(FlagN) {
		t.Fatal("negative flag not set")
	}
}

func TestADCCarryOut(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.A = 0xFF
	c.setFlag(FlagC, false)
	mem.SetBytes(c.PC, 0x69, 0x01)
	c.Step(mem)

	if c.A != 0x00 {
		t.Fatalf("A = %#02x, want 0x00", c.A)
	}
	if !c.flag(FlagC) {
		t.Fatal("carry not set on unsigned wraparound")
	}
	if !c.flag(FlagZ) {
		t.Fatal("zero flag not set")
	}
}

func TestSBCBorrow(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.A = 0x00
	c.setFlag(FlagC, true) // carry set means no borrow going in
	mem.SetBytes(c.PC, 0xE9, 0x01) // SBC #$01
	c.Step(mem)

	if c.A != 0xFF {
		t.Fatalf("A = %#02x, want 0xFF", c.A)
	}
	if c.flag(FlagC) {
		t.Fatal("carry should be clear after borrow")
	}
	if !c.flag(FlagN) {
		t.Fatal("negative flag not set")
	}
}

func TestCMPSetsCarryWhenAccGreaterOrEqual(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.A = 0x10
	mem.SetBytes(c.PC, 0xC9, 0x10) // CMP #$10
	c.Step(mem)

	if !c.flag(FlagC) {
		t.Fatal("carry should be set when A >= operand")
	}
	if !c.flag(FlagZ) {
		t.Fatal("zero should be set when A == operand")
	}
}

func TestBITTransfersBits6And7UnmodifiedByAnd(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.A = 0x00
	mem.SetBytes(c.PC, 0x24, 0x10) // BIT $10
	mem.SetByte(0x0010, 0xC0)      // bits 7 and 6 set
	c.Step(mem)

	if !c.flag(FlagN) || !c.flag(FlagV) {
		t.Fatal("N/V should mirror bits 7/6 of the operand")
	}
	if !c.flag(FlagZ) {
		t.Fatal("Z should be set since A & operand == 0")
	}
}

func TestFlagSetClearInstructions(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	mem.SetBytes(c.PC, 0x38) // SEC
	c.Step(mem)
	if !c.flag(FlagC) {
		t.Fatal("SEC did not set carry")
	}

	mem.SetBytes(c.PC, 0x18) // CLC
	c.Step(mem)
	if c.flag(FlagC) {
		t.Fatal("CLC did not clear carry")
	}

	mem.SetBytes(c.PC, 0x78) // SEI
	c.Step(mem)
	if !c.flag(FlagI) {
		t.Fatal("SEI did not set I")
	}
}

func TestTransferInstructionsSetZN(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.A = 0x00
	mem.SetByte(c.PC, 0xAA) // TAX
	c.Step(mem)

	if c.X != 0x00 {
		t.Fatalf("X = %#02x, want 0", c.X)
	}
	if !c.flag(FlagZ) {
		t.Fatal("Z not set after transferring zero")
	}
}
