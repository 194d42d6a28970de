package cartridge

import (
	"errors"
	"testing"
)

func fdsTestImage(t *testing.T, numSides int) (bios, disks []byte) {
	t.Helper()
	bios = make([]byte, 0x2000)
	disks = make([]byte, fdsSideSizeFDS*numSides)
	return bios, disks
}

func TestNewFDSCartridge_RejectsShortBIOS(t *testing.T) {
	_, disks := fdsTestImage(t, 1)
	_, err := NewFDSCartridge(make([]byte, 100), disks)
	if !errors.Is(err, ErrBadDisk) {
		t.Fatalf("expected ErrBadDisk, got %v", err)
	}
}

func TestNewFDSCartridge_RejectsMisalignedDiskImage(t *testing.T) {
	bios, _ := fdsTestImage(t, 1)
	_, err := NewFDSCartridge(bios, make([]byte, 123))
	if !errors.Is(err, ErrBadDisk) {
		t.Fatalf("expected ErrBadDisk, got %v", err)
	}
}

func TestNewFDSCartridge_ValidImage(t *testing.T) {
	bios, disks := fdsTestImage(t, 2)
	cart, err := NewFDSCartridge(bios, disks)
	if err != nil {
		t.Fatalf("NewFDSCartridge failed: %v", err)
	}
	if cart.MapperID() != 20 {
		t.Errorf("MapperID() = %d, want 20", cart.MapperID())
	}

	disk, ok := cart.Mapper().(DiskSystem)
	if !ok {
		t.Fatal("FDS mapper should implement DiskSystem")
	}
	if disk.NumDisks() != 2 {
		t.Errorf("NumDisks() = %d, want 2", disk.NumDisks())
	}
}

func TestMapper020_SetDisk_OutOfRange(t *testing.T) {
	bios, disks := fdsTestImage(t, 1)
	cart, err := NewFDSCartridge(bios, disks)
	if err != nil {
		t.Fatalf("NewFDSCartridge failed: %v", err)
	}
	disk := cart.Mapper().(DiskSystem)

	if disk.SetDisk(1) {
		t.Error("SetDisk(1) should fail with only one side")
	}
	if !disk.SetDisk(0) {
		t.Error("SetDisk(0) should succeed with one side")
	}
}

func TestMapper020_BIOSReadAndRAMPersist(t *testing.T) {
	bios, disks := fdsTestImage(t, 1)
	bios[0x1FFC] = 0xAB
	cart, err := NewFDSCartridge(bios, disks)
	if err != nil {
		t.Fatalf("NewFDSCartridge failed: %v", err)
	}

	if v := cart.ReadPRG(0xFFFC); v != 0xAB {
		t.Errorf("ReadPRG(0xFFFC) = %#x, want 0xAB", v)
	}

	cart.WritePRG(0x6000, 0x42)
	if v := cart.ReadPRG(0x6000); v != 0x42 {
		t.Errorf("PRG RAM did not persist: got %#x, want 0x42", v)
	}
}

func TestMapper020_IRQEnableAndFire(t *testing.T) {
	bios, disks := fdsTestImage(t, 1)
	cart, err := NewFDSCartridge(bios, disks)
	if err != nil {
		t.Fatalf("NewFDSCartridge failed: %v", err)
	}

	cart.WritePRG(0x4023, 0x01) // master disk enable
	cart.WritePRG(0x4020, 0x02) // IRQ reload low byte
	cart.WritePRG(0x4021, 0x00)
	cart.WritePRG(0x4022, 0x03) // reload + enable

	irq := cart.Mapper().(IRQSource)
	stepper := cart.Mapper().(Stepper)

	fired := false
	for i := 0; i < 10; i++ {
		stepper.Step()
		if irq.IRQAsserted() {
			fired = true
			break
		}
	}
	if !fired {
		t.Error("IRQ should fire once the counter reaches zero")
	}
}

func TestMapper020_ExternalAudioProducesOutput(t *testing.T) {
	bios, disks := fdsTestImage(t, 1)
	cart, err := NewFDSCartridge(bios, disks)
	if err != nil {
		t.Fatalf("NewFDSCartridge failed: %v", err)
	}

	for i := range 64 {
		cart.WritePRG(0x4040+uint16(i), 20) // non-silent wavetable
	}
	cart.WritePRG(0x4089, 0x00) // max volume, wavetable write mode off
	cart.WritePRG(0x4080, 0x9F) // volume envelope disabled, gain latched to 31
	cart.WritePRG(0x4082, 0xFF) // high pitch
	cart.WritePRG(0x4083, 0x0F)

	source := cart.Mapper().(ExternalAudioSource)
	var last float32
	for i := 0; i < 200; i++ {
		last = source.ExternalAudioSample()
	}
	if last == 0 {
		t.Error("expected nonzero audio output from a non-silent wavetable")
	}
}
