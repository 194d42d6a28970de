package cartridge

// Mapper085 implements VRC7 (mapper 85, used by Lagrange Point and
// Tiny Toon Adventures 2): three 8KB PRG windows, eight 1KB CHR banks,
// four-way mirroring, and a VRC-style IRQ. The board's signature
// feature, a 6-channel FM synth built from discrete register-to-operator
// tables, needs a dedicated OPLL-style synthesizer this emulator doesn't
// carry; its registers are latched here but produce silence.
type Mapper085 struct {
	cart *Cartridge

	prg [3]uint8
	chr [8]uint8

	irqLatch     uint8
	irqCounter   uint8
	irqEnable    bool
	irqAfterAck  bool
	irqCycleMode bool
	prescaler    int16
	irqPending   bool

	audioAddr uint8
	audioReg  [0x40]uint8

	prgBanks uint8
}

// NewMapper085 creates a new VRC7 mapper.
func NewMapper085(cart *Cartridge) *Mapper085 {
	m := &Mapper085{
		cart:      cart,
		prescaler: 341,
		prgBanks:  uint8(len(cart.prgROM) / 0x2000),
	}
	if m.prgBanks > 0 {
		m.prg[2] = m.prgBanks - 1
	}
	return m
}

// ReadPRG implements Mapper.
func (m *Mapper085) ReadPRG(address uint16) uint8 {
	switch {
	case address >= 0x6000 && address < 0x8000:
		return m.cart.sram[address-0x6000]
	case address >= 0xE000:
		return bankedRead(m.cart.prgROM, uint32(m.prgBanks-1)*0x2000+uint32(address-0xE000))
	case address >= 0xC000:
		return bankedRead(m.cart.prgROM, uint32(m.prg[2])*0x2000+uint32(address-0xC000))
	case address >= 0xA000:
		return bankedRead(m.cart.prgROM, uint32(m.prg[1])*0x2000+uint32(address-0xA000))
	case address >= 0x8000:
		return bankedRead(m.cart.prgROM, uint32(m.prg[0])*0x2000+uint32(address-0x8000))
	default:
		return 0
	}
}

// WritePRG implements Mapper.
func (m *Mapper085) WritePRG(address uint16, value uint8) {
	if address >= 0x6000 && address < 0x8000 {
		m.cart.sram[address-0x6000] = value
		return
	}

	switch address {
	case 0x8000:
		m.prg[0] = value & 0x3F
	case 0x8008, 0x8010:
		m.prg[1] = value & 0x3F
	case 0x9000:
		m.prg[2] = value & 0x3F
	case 0x9010, 0x9030:
		m.writeAudio(address, value)
	case 0xE000:
		switch value & 0x03 {
		case 0:
			m.cart.mirror = MirrorVertical
		case 1:
			m.cart.mirror = MirrorHorizontal
		case 2:
			m.cart.mirror = MirrorSingleScreen0
		case 3:
			m.cart.mirror = MirrorSingleScreen1
		}
	case 0xE008, 0xE010:
		m.irqLatch = value
	case 0xF000:
		m.irqAfterAck = value&0x01 != 0
		m.irqEnable = value&0x02 != 0
		m.irqCycleMode = value&0x04 != 0
		if m.irqEnable {
			m.irqCounter = m.irqLatch
			m.prescaler = 341
		}
		m.irqPending = false
	case 0xF008, 0xF010:
		m.irqPending = false
		m.irqEnable = m.irqAfterAck
	default:
		if address >= 0xA000 && address < 0xE000 {
			m.writeCHRBank(address, value)
		}
	}
}

func (m *Mapper085) writeCHRBank(address uint16, value uint8) {
	group := (address - 0xA000) / 0x1000
	half := uint16(0)
	if address&0xFF != 0 {
		half = 1
	}
	slot := group*2 + half
	if slot > 7 {
		return
	}
	m.chr[slot] = value
}

// writeAudio latches VRC7's FM-synth register address ($9010) and data
// ($9030) writes without driving an actual synthesizer.
func (m *Mapper085) writeAudio(address uint16, value uint8) {
	if address == 0x9010 {
		m.audioAddr = value & 0x3F
		return
	}
	m.audioReg[m.audioAddr] = value
}

// ReadCHR implements Mapper.
func (m *Mapper085) ReadCHR(address uint16) uint8 {
	bank := m.chr[address/0x400]
	return bankedRead(m.cart.chrROM, uint32(bank)*0x400+uint32(address&0x3FF))
}

// WriteCHR implements Mapper. CHR is always ROM on VRC7 carts.
func (m *Mapper085) WriteCHR(address uint16, value uint8) {}

// MirrorChanged implements MirrorSetter.
func (m *Mapper085) MirrorChanged() (MirrorMode, bool) {
	return m.cart.mirror, true
}

// IRQAsserted implements IRQSource.
func (m *Mapper085) IRQAsserted() bool {
	return m.irqPending
}

// Step implements Stepper.
func (m *Mapper085) Step() {
	if !m.irqEnable {
		return
	}
	clock := false
	if m.irqCycleMode {
		clock = true
	} else {
		m.prescaler -= 3
		if m.prescaler <= 0 {
			m.prescaler += 341
			clock = true
		}
	}
	if !clock {
		return
	}
	if m.irqCounter == 0xFF {
		m.irqCounter = m.irqLatch
		m.irqPending = true
	} else {
		m.irqCounter++
	}
}
