package cpu

import "testing"

// BenchmarkStepNOP measures the steady-state cost of stepping a tight loop
// of single-cycle-fetch instructions, the CPU's hottest path during normal
// play.
func BenchmarkStepNOP(b *testing.B) {
	mem := NewMockMemory()
	c := newTestCPU(mem)
	mem.SetByte(c.PC, 0xEA) // NOP

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.PC--
		c.Step(mem)
	}
}

// BenchmarkStepIndexedRMW measures a read-modify-write instruction using
// indexed addressing, the most expensive single-instruction path.
func BenchmarkStepIndexedRMW(b *testing.B) {
	mem := NewMockMemory()
	c := newTestCPU(mem)
	c.X = 0x01
	mem.SetBytes(c.PC, 0x1E, 0x00, 0x20) // ASL $2000,X

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.PC -= 3
		c.Step(mem)
	}
}
