package cartridge

// Mapper009 implements MMC2 (mapper 9, used by Punch-Out!!) and its close
// relative MMC4 (mapper 10): both latch a CHR bank on specific pattern-
// table tile fetches rather than through a register write, so a game can
// swap a whole sprite/background sheet mid-frame just by drawing a
// sentinel tile. MMC2 fixes PRG to one swappable 8KB window plus three
// fixed 8KB windows; MMC4 instead swaps a 16KB window and fixes the rest.
type Mapper009 struct {
	cart  *Cartridge
	isMMC4 bool

	prgBank uint8

	chrBank  [4]uint8 // [0]=$B000 latch 0xFD, [1]=$C000 latch 0xFE, [2]=$D000 latch 0xFD, [3]=$E000 latch 0xFE
	latch0   uint8    // 0xFD or 0xFE, selects which of chrBank[0]/[1] is live for $0000-$0FFF
	latch1   uint8    // selects chrBank[2]/[3] for $1000-$1FFF

	prgBanks uint8
}

// NewMapper009 creates an MMC2 or MMC4 mapper, distinguished by isMMC4.
func NewMapper009(cart *Cartridge, isMMC4 bool) *Mapper009 {
	return &Mapper009{
		cart:     cart,
		isMMC4:   isMMC4,
		latch0:   0xFD,
		latch1:   0xFD,
		prgBanks: uint8(len(cart.prgROM) / 0x2000),
	}
}

func (m *Mapper009) lastBank() uint8 {
	if m.prgBanks == 0 {
		return 0
	}
	return m.prgBanks - 1
}

// ReadPRG implements Mapper.
func (m *Mapper009) ReadPRG(address uint16) uint8 {
	if address >= 0x6000 && address < 0x8000 {
		return m.cart.sram[address-0x6000]
	}
	if address < 0x8000 {
		return 0
	}

	offset := uint32(address & 0x1FFF)
	if !m.isMMC4 {
		switch {
		case address < 0xA000:
			return bankedRead(m.cart.prgROM, uint32(m.prgBank)*0x2000+offset)
		case address < 0xC000:
			return bankedRead(m.cart.prgROM, uint32(m.lastBank()-2)*0x2000+offset)
		case address < 0xE000:
			return bankedRead(m.cart.prgROM, uint32(m.lastBank()-1)*0x2000+offset)
		default:
			return bankedRead(m.cart.prgROM, uint32(m.lastBank())*0x2000+offset)
		}
	}

	// MMC4: 16KB swappable window at $8000, 16KB fixed at $C000.
	offset = uint32(address & 0x3FFF)
	if address < 0xC000 {
		return bankedRead(m.cart.prgROM, uint32(m.prgBank)*0x4000+offset)
	}
	return bankedRead(m.cart.prgROM, uint32(m.lastBank()/2)*0x4000+offset)
}

// WritePRG implements Mapper.
func (m *Mapper009) WritePRG(address uint16, value uint8) {
	if address >= 0x6000 && address < 0x8000 {
		if m.isMMC4 {
			m.cart.sram[address-0x6000] = value
		}
		return
	}
	if address < 0x8000 {
		return
	}

	switch address & 0xF000 {
	case 0xA000:
		m.prgBank = value & 0x0F
	case 0xB000:
		m.chrBank[0] = value & 0x1F
	case 0xC000:
		m.chrBank[1] = value & 0x1F
	case 0xD000:
		m.chrBank[2] = value & 0x1F
	case 0xE000:
		m.chrBank[3] = value & 0x1F
	case 0xF000:
		if value&0x01 != 0 {
			m.cart.mirror = MirrorHorizontal
		} else {
			m.cart.mirror = MirrorVertical
		}
	}
}

// latchBoundaries returns the top of each latch-triggering fetch range,
// which widens from a single tile (MMC2) to a full row of tiles (MMC4).
func (m *Mapper009) latchBoundaries() (hi0, hi1 uint16) {
	if m.isMMC4 {
		return 0x0FDF, 0x0FEF
	}
	return 0x0FD8, 0x0FE8
}

// ReadCHR implements Mapper. The fetch itself happens before the latch
// updates, matching the hardware's read-then-latch ordering.
func (m *Mapper009) ReadCHR(address uint16) uint8 {
	half := address / 0x1000
	offset := uint32(address & 0x0FFF)

	var bank uint8
	if half == 0 {
		if m.latch0 == 0xFD {
			bank = m.chrBank[0]
		} else {
			bank = m.chrBank[1]
		}
	} else {
		if m.latch1 == 0xFD {
			bank = m.chrBank[2]
		} else {
			bank = m.chrBank[3]
		}
	}
	value := bankedRead(m.cart.chrROM, uint32(bank)*0x1000+offset)

	hi0, hi1 := m.latchBoundaries()
	switch {
	case address >= 0x0FD8 && address <= hi0:
		m.latch0 = 0xFD
	case address >= 0x0FE8 && address <= hi1:
		m.latch0 = 0xFE
	case address >= 0x1FD8 && address <= 0x1000+hi0:
		m.latch1 = 0xFD
	case address >= 0x1FE8 && address <= 0x1000+hi1:
		m.latch1 = 0xFE
	}
	return value
}

// WriteCHR implements Mapper. CHR is always ROM on MMC2/MMC4 carts.
func (m *Mapper009) WriteCHR(address uint16, value uint8) {}

// MirrorChanged implements MirrorSetter.
func (m *Mapper009) MirrorChanged() (MirrorMode, bool) {
	return m.cart.mirror, true
}
