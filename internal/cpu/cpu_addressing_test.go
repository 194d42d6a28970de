package cpu

import "testing"

// TestAbsoluteXPageCrossExtraCycle verifies that a read-mode absolute,X
// access only pays the extra dummy-read cycle when the index carries into
// a new page.
func TestAbsoluteXPageCrossExtraCycle(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	// LDA $2010,X with X=0x20 stays on the same page (no cross).
	c.X = 0x20
	mem.SetBytes(c.PC, 0xBD, 0x10, 0x20)
	mem.SetByte(0x2030, 0x77)
	c.Step(mem)
	if c.A != 0x77 {
		t.Fatalf("A = %#02x, want 0x77", c.A)
	}
	if mem.Cycles() != 4 {
		t.Fatalf("non-crossing LDA abs,X took %d cycles, want 4", mem.Cycles())
	}

	mem.cycles = 0
	c.PC = 0x8000
	c.X = 0xFF
	mem.SetBytes(c.PC, 0xBD, 0x01, 0x20)
	mem.SetByte(0x2100, 0x88)
	c.Step(mem)
	if c.A != 0x88 {
		t.Fatalf("A = %#02x, want 0x88", c.A)
	}
	if mem.Cycles() != 5 {
		t.Fatalf("crossing LDA abs,X took %d cycles, want 5", mem.Cycles())
	}
}

// TestAbsoluteXWriteAlwaysPaysDummyRead verifies that write-mode indexed
// addressing pays the dummy-read cycle unconditionally, even without a
// page cross (unlike the read-mode case above).
func TestAbsoluteXWriteAlwaysPaysDummyRead(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.X = 0x01
	c.A = 0x55
	mem.SetBytes(c.PC, 0x9D, 0x00, 0x20) // STA $2000,X
	c.Step(mem)

	if mem.data[0x2001] != 0x55 {
		t.Fatalf("STA abs,X wrote to wrong address")
	}
	if mem.Cycles() != 5 {
		t.Fatalf("STA abs,X took %d cycles, want 5", mem.Cycles())
	}
}

// TestZeroPageXWraps verifies zero-page,X indexing wraps within the zero
// page instead of crossing into page 1.
func TestZeroPageXWraps(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.X = 0xFF
	mem.SetBytes(c.PC, 0xB5, 0x80) // LDA $80,X -> $7F
	mem.SetByte(0x007F, 0x99)
	c.Step(mem)

	if c.A != 0x99 {
		t.Fatalf("A = %#02x, want 0x99 (wrapped zero page)", c.A)
	}
}

// TestIndirectXIndexesPointerInZeroPage verifies (zp,X) adds X to the
// pointer before the 16-bit indirection, wrapping in the zero page.
func TestIndirectXIndexesPointerInZeroPage(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.X = 0x04
	mem.SetBytes(c.PC, 0xA1, 0x20) // LDA ($20,X)
	mem.SetBytes(0x0024, 0x00, 0x30)
	mem.SetByte(0x3000, 0xAB)
	c.Step(mem)

	if c.A != 0xAB {
		t.Fatalf("A = %#02x, want 0xAB", c.A)
	}
}

// TestIndirectYAddsAfterIndirection verifies (zp),Y reads the pointer from
// zero page first, then adds Y to the resulting 16-bit base.
func TestIndirectYAddsAfterIndirection(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.Y = 0x10
	mem.SetBytes(c.PC, 0xB1, 0x20) // LDA ($20),Y
	mem.SetBytes(0x0020, 0x00, 0x30)
	mem.SetByte(0x3010, 0xCD)
	c.Step(mem)

	if c.A != 0xCD {
		t.Fatalf("A = %#02x, want 0xCD", c.A)
	}
}

// TestIndirectJMPBugWrapsWithinPage verifies the famous 6502 indirect-JMP
// bug: when the pointer's low byte is $FF, the high byte is fetched from
// the start of the same page rather than the next page.
func TestIndirectJMPBugWrapsWithinPage(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	mem.SetBytes(c.PC, 0x6C, 0xFF, 0x30) // JMP ($30FF)
	mem.SetByte(0x30FF, 0x00)
	mem.SetByte(0x3000, 0x40) // would be 0x3100 without the bug
	mem.SetByte(0x3100, 0x99)
	c.Step(mem)

	if c.PC != 0x4000 {
		t.Fatalf("PC = %#04x, want 0x4000 (page-wrap bug)", c.PC)
	}
}

// TestAccumulatorModeDoesNotTouchMemory verifies ASL A operates on the
// accumulator and issues no memory writes.
func TestAccumulatorModeDoesNotTouchMemory(t *testing.T) {
	mem := NewMockMemory()
	c := newTestCPU(mem)

	c.A = 0x81
	mem.SetByte(c.PC, 0x0A) // ASL A
	c.Step(mem)

	if c.A != 0x02 {
		t.Fatalf("A = %#02x, want 0x02", c.A)
	}
	if !c.flag(FlagC) {
		t.Fatal("carry not set from bit 7")
	}
	for addr, n := range mem.writeCount {
		if n > 0 {
			t.Fatalf("unexpected write to %#04x during ASL A", addr)
		}
	}
}
