package memory

type fakeCart struct {
	chr [0x2000]uint8
}

func (f *fakeCart) ReadCHR(addr uint16) uint8     { return f.chr[addr] }
func (f *fakeCart) WriteCHR(addr uint16, v uint8) { f.chr[addr] = v }
