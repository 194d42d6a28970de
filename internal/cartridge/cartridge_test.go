package cartridge

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func createValidINESHeader(prgSize, chrSize uint8, mapperLo, flags6, flags7 uint8) []byte {
	header := make([]byte, 16)
	copy(header[0:4], "NES\x1A")
	header[4] = prgSize
	header[5] = chrSize
	header[6] = (mapperLo << 4) | (flags6 & 0x0F)
	header[7] = flags7
	return header
}

func createMinimalValidROM(prgSize, chrSize uint8) []byte {
	header := createValidINESHeader(prgSize, chrSize, 0, 0, 0)

	prgData := make([]byte, int(prgSize)*16384)
	for i := range prgData {
		prgData[i] = uint8(i % 256)
	}
	chrData := make([]byte, int(chrSize)*8192)
	for i := range chrData {
		chrData[i] = uint8((i + 128) % 256)
	}

	rom := append(header, prgData...)
	if chrSize > 0 {
		rom = append(rom, chrData...)
	}
	return rom
}

func TestLoadFromReader_ValidSizes(t *testing.T) {
	tests := []struct {
		name        string
		prgSize     uint8
		chrSize     uint8
		expectedPRG int
		expectedCHR int
	}{
		{"16KB PRG, 8KB CHR", 1, 1, 16384, 8192},
		{"32KB PRG, 8KB CHR", 2, 1, 32768, 8192},
		{"16KB PRG, CHR RAM", 1, 0, 16384, 8192},
		{"32KB PRG, 16KB CHR", 2, 2, 32768, 16384},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart, err := LoadFromReader(bytes.NewReader(createMinimalValidROM(tt.prgSize, tt.chrSize)))
			if err != nil {
				t.Fatalf("Expected successful load, got error: %v", err)
			}
			if len(cart.prgROM) != tt.expectedPRG {
				t.Errorf("PRG ROM size = %d, want %d", len(cart.prgROM), tt.expectedPRG)
			}
			if len(cart.chrROM) != tt.expectedCHR {
				t.Errorf("CHR ROM size = %d, want %d", len(cart.chrROM), tt.expectedCHR)
			}
		})
	}
}

func TestLoadFromReader_InvalidMagic(t *testing.T) {
	header := make([]byte, 16)
	copy(header[0:4], "ROM\x1A")
	header[4], header[5] = 1, 1
	romData := append(header, make([]byte, 16384+8192)...)

	_, err := LoadFromReader(bytes.NewReader(romData))
	if !errors.Is(err, ErrBadROM) {
		t.Fatalf("expected ErrBadROM, got %v", err)
	}
}

func TestLoadFromReader_MapperIdentification(t *testing.T) {
	tests := []struct {
		name           string
		flags6         uint8
		flags7         uint8
		expectedMapper uint16
	}{
		{"Mapper 0 (NROM)", 0x00, 0x00, 0},
		{"Mapper 1 (MMC1)", 0x10, 0x00, 1},
		{"Mapper 4 (MMC3)", 0x40, 0x00, 4},
		{"Mapper 16 from flags7", 0x00, 0x10, 16},
		{"Mapper 69 combined", 0x50, 0x40, 69},
		{"Mapper 210 combined", 0x20, 0xD0, 210},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := make([]byte, 16)
			copy(header[0:4], "NES\x1A")
			header[4], header[5] = 1, 1
			header[6] = tt.flags6
			header[7] = tt.flags7
			romData := append(header, make([]byte, 16384+8192)...)

			cart, err := LoadFromReader(bytes.NewReader(romData))
			if err != nil {
				t.Fatalf("Expected success, got error: %v", err)
			}
			if cart.mapperID != tt.expectedMapper {
				t.Errorf("mapperID = %d, want %d", cart.mapperID, tt.expectedMapper)
			}
		})
	}
}

// NES 2.0 headers (Flags7 bits 2-3 == 0b10) extend the mapper number with
// a high nibble and carry a submapper number in byte 8's high nibble.
func TestLoadFromReader_NES20MapperExtension(t *testing.T) {
	header := make([]byte, 16)
	copy(header[0:4], "NES\x1A")
	header[4], header[5] = 1, 1
	header[6] = 0x50       // mapper low nibble = 5
	header[7] = 0x08       // NES 2.0 identifier, mapper hi nibble = 0
	header[8] = 0x21       // mapper bits 8-11 = 1, submapper = 2
	romData := append(header, make([]byte, 16384+8192)...)

	// Mapper 0x105 (261) has no implementation, so the loader must reject
	// it, naming the extended number it decoded.
	_, err := LoadFromReader(bytes.NewReader(romData))
	if !errors.Is(err, ErrUnsupportedMapper) || !strings.Contains(err.Error(), "mapper 261") {
		t.Fatalf("Expected ErrUnsupportedMapper for mapper 0x105, got %v", err)
	}

	// With mapper bits 8-11 clear the same header selects MMC5 (mapper 5),
	// which loads, so the submapper number can be checked on the cartridge.
	romData[8] = 0x20 // mapper bits 8-11 = 0, submapper = 2
	cart, err := LoadFromReader(bytes.NewReader(romData))
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if cart.mapperID != 5 {
		t.Errorf("mapperID = %#x, want 0x5", cart.mapperID)
	}
	if cart.submapperID != 2 {
		t.Errorf("submapperID = %d, want 2", cart.submapperID)
	}
}

func TestLoadFromReader_MirroringModes(t *testing.T) {
	tests := []struct {
		name           string
		flags6         uint8
		expectedMirror MirrorMode
	}{
		{"Horizontal mirroring", 0x00, MirrorHorizontal},
		{"Vertical mirroring", 0x01, MirrorVertical},
		{"Four-screen mirroring", 0x08, MirrorFourScreen},
		{"Four-screen overrides vertical", 0x09, MirrorFourScreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := createValidINESHeader(1, 1, 0, tt.flags6, 0)
			romData := append(header, make([]byte, 16384+8192)...)

			cart, err := LoadFromReader(bytes.NewReader(romData))
			if err != nil {
				t.Fatalf("Expected success, got error: %v", err)
			}
			if cart.mirror != tt.expectedMirror {
				t.Errorf("mirror = %d, want %d", cart.mirror, tt.expectedMirror)
			}
		})
	}
}

func TestLoadFromReader_BatteryDetection(t *testing.T) {
	tests := []struct {
		name       string
		flags6     uint8
		hasBattery bool
	}{
		{"No battery", 0x00, false},
		{"Has battery", 0x02, true},
		{"Battery with other flags", 0x03, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := createValidINESHeader(1, 1, 0, tt.flags6, 0)
			romData := append(header, make([]byte, 16384+8192)...)

			cart, err := LoadFromReader(bytes.NewReader(romData))
			if err != nil {
				t.Fatalf("Expected success, got error: %v", err)
			}
			if cart.hasBattery != tt.hasBattery {
				t.Errorf("hasBattery = %v, want %v", cart.hasBattery, tt.hasBattery)
			}
		})
	}
}

func TestLoadFromReader_TrainerSkipped(t *testing.T) {
	header := createValidINESHeader(1, 1, 0, 0x04, 0)
	trainerData := bytes.Repeat([]byte{0xFF}, 512)
	prgData := make([]byte, 16384)
	for i := range prgData {
		prgData[i] = uint8(i % 256)
	}
	romData := append(header, trainerData...)
	romData = append(romData, prgData...)
	romData = append(romData, make([]byte, 8192)...)

	cart, err := LoadFromReader(bytes.NewReader(romData))
	if err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if cart.prgROM[0] != 0 || cart.prgROM[1] != 1 {
		t.Error("PRG ROM doesn't match expected pattern; trainer may not have been skipped")
	}
}

func TestLoadFromReader_TruncatedData(t *testing.T) {
	tests := []struct {
		name string
		rom  []byte
	}{
		{"incomplete header", []byte("NES\x1A\x01\x01")},
		{"incomplete PRG", append(createValidINESHeader(1, 1, 0, 0, 0), make([]byte, 8192)...)},
		{"incomplete CHR", append(append(createValidINESHeader(1, 1, 0, 0, 0), make([]byte, 16384)...), make([]byte, 4096)...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromReader(bytes.NewReader(tt.rom)); err == nil {
				t.Fatal("expected error for truncated ROM data")
			}
		})
	}
}

func TestLoadFromReader_ZeroPRGSize(t *testing.T) {
	header := createValidINESHeader(0, 1, 0, 0, 0)
	romData := append(header, make([]byte, 8192)...)

	if _, err := LoadFromReader(bytes.NewReader(romData)); !errors.Is(err, ErrBadROM) {
		t.Fatalf("expected ErrBadROM, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	romData := createMinimalValidROM(1, 1)
	dir := t.TempDir()
	filename := filepath.Join(dir, "test.nes")
	if err := os.WriteFile(filename, romData, 0644); err != nil {
		t.Fatalf("failed to write test ROM: %v", err)
	}

	cart, err := LoadFromFile(filename)
	if err != nil {
		t.Fatalf("Expected success loading from file, got error: %v", err)
	}
	if cart == nil {
		t.Fatal("Expected cartridge, got nil")
	}

	if _, err := LoadFromFile(filepath.Join(dir, "missing.nes")); err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestCartridge_PRGAndCHRDelegateToMapper(t *testing.T) {
	cart, err := LoadFromReader(bytes.NewReader(createMinimalValidROM(1, 1)))
	if err != nil {
		t.Fatalf("failed to load ROM: %v", err)
	}

	if v := cart.ReadPRG(0x8000); v != 0 {
		t.Errorf("ReadPRG(0x8000) = %d, want 0", v)
	}
	cart.WritePRG(0x6000, 0x42)
	if v := cart.ReadPRG(0x6000); v != 0x42 {
		t.Errorf("PRG RAM roundtrip = %#x, want 0x42", v)
	}

	if v := cart.ReadCHR(0x0000); v != 128 {
		t.Errorf("ReadCHR(0x0000) = %d, want 128", v)
	}
}

func TestCartridge_CHRRAMWritable(t *testing.T) {
	cart, err := LoadFromReader(bytes.NewReader(createMinimalValidROM(1, 0)))
	if err != nil {
		t.Fatalf("failed to load ROM: %v", err)
	}

	cart.WriteCHR(0x0000, 0x55)
	if v := cart.ReadCHR(0x0000); v != 0x55 {
		t.Errorf("CHR RAM roundtrip = %#x, want 0x55", v)
	}
}

func TestCreateMapper_UnsupportedMapperRejected(t *testing.T) {
	cart := &Cartridge{prgROM: make([]uint8, 16384), chrROM: make([]uint8, 8192)}

	mapper, err := createMapper(250, cart)
	if mapper != nil {
		t.Error("expected nil mapper for an unsupported id")
	}
	if !errors.Is(err, ErrUnsupportedMapper) {
		t.Fatalf("expected ErrUnsupportedMapper, got %v", err)
	}
}

func TestCreateMapper_KnownIDsConstructWithoutError(t *testing.T) {
	known := []uint16{0, 1, 2, 3, 4, 5, 7, 9, 10, 16, 18, 19, 21, 24, 69, 85, 159, 206, 210}
	for _, id := range known {
		cart := &Cartridge{prgROM: make([]uint8, 0x20000), chrROM: make([]uint8, 0x20000)}
		mapper, err := createMapper(id, cart)
		if err != nil {
			t.Errorf("mapper %d: unexpected error %v", id, err)
		}
		if mapper == nil {
			t.Errorf("mapper %d: got nil mapper", id)
		}
	}
}

func BenchmarkLoadFromReader_SmallROM(b *testing.B) {
	romData := createMinimalValidROM(1, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := LoadFromReader(bytes.NewReader(romData)); err != nil {
			b.Fatalf("failed to load ROM: %v", err)
		}
	}
}
