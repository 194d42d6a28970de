// Package nes is the host-facing core API: the thin facade a frontend
// (cmd/gones, or any other host) drives instead of touching internal/bus
// directly. It owns nothing the bus doesn't already own; it exists to
// give the emulation core a single, stable entry point.
package nes

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"log"

	"gones/internal/bus"
	"gones/internal/cartridge"
)

// Sentinel errors a host can check with errors.Is.
var (
	// ErrUnsupportedMapper is returned by LoadCart when a cartridge names
	// a mapper ID no installed Mapper implementation recognizes and the
	// core was asked to reject rather than silently fall back to NROM.
	ErrUnsupportedMapper = errors.New("nes: unsupported mapper")
	// ErrStateRejected is returned by SetState when a state blob fails to
	// decode, or was produced by an incompatible core version.
	ErrStateRejected = errors.New("nes: state rejected")
)

// Palette selects one of the core's built-in NTSC palette variants. The
// core always renders through nesColorPalette internally; Palette is
// carried here as a host preference for future palette swaps, matching
// the Config record the spec describes.
type Palette int

const (
	PaletteKitrinx Palette = iota
	PaletteSmooth
	PaletteClassic
	PaletteComposite
	PalettePVMD93
	PalettePC10
	PaletteSonyCXA
	PaletteWavebeam
)

// Config mirrors the host-tunable knobs of the real core: palette choice,
// audio format, sprite rendering limits, and NMI timing slack.
type Config struct {
	Palette    Palette `json:"palette"`
	SampleRate uint32  `json:"sample_rate"`
	Channels   uint8   `json:"channels"` // bitmask: pulse1,pulse2,triangle,noise,dmc
	PreNMI     int     `json:"pre_nmi"`
	PostNMI    int     `json:"post_nmi"`
	MaxSprites int     `json:"max_sprites"`
	Stereo     bool    `json:"stereo"`
	HighPass   uint8   `json:"high_pass"` // shift 5..9
}

// DefaultConfig returns the core's out-of-the-box configuration.
func DefaultConfig() Config {
	return Config{
		Palette:    PaletteComposite,
		SampleRate: 44100,
		Channels:   0x1F,
		MaxSprites: 8,
		Stereo:     false,
		HighPass:   7,
	}
}

// VideoFunc receives one ARGB8888 256x240 frame per call.
type VideoFunc func(frame *[256 * 240]uint32)

// AudioFunc receives interleaved signed-16-bit PCM batches, flushed
// mid-frame by the core to keep audio latency low.
type AudioFunc func(samples []int16)

// LogFunc receives core diagnostic messages, in place of the package
// log.Logger a host might otherwise have to intercept.
type LogFunc func(format string, args ...any)

// Core is a single NES emulation instance: the host-facing analogue of
// the C API's opaque NES_Core*.
type Core struct {
	bus    *bus.Bus
	cart   *cartridge.Cartridge
	config Config
	logFn  LogFunc
}

// Create constructs a Core with the given configuration but no
// cartridge loaded.
func Create(config Config) *Core {
	c := &Core{
		bus:    bus.New(),
		config: config,
		logFn:  func(format string, args ...any) { log.Printf(format, args...) },
	}
	return c
}

// Destroy releases the core. It exists to mirror the C API's
// create/destroy pairing; there is nothing to free explicitly in Go.
func (c *Core) Destroy() {
	c.bus = nil
	c.cart = nil
}

// SetLogFunc installs a callback for core diagnostics, replacing the
// default which writes through log.Printf.
func (c *Core) SetLogFunc(fn LogFunc) {
	if fn == nil {
		fn = func(format string, args ...any) { log.Printf(format, args...) }
	}
	c.logFn = fn
}

// LoadCart parses an iNES/NES 2.0 image and installs it, hard-resetting
// the system. The descriptor argument is accepted for API symmetry with
// the C core's cart_descriptor but is currently unused: all descriptor
// fields are derived from the header itself.
func (c *Core) LoadCart(romBytes []byte, descriptor any) error {
	cart, err := cartridge.LoadFromReader(bytes.NewReader(romBytes))
	if err != nil {
		return fmt.Errorf("nes: load cart: %w", err)
	}
	c.cart = cart
	c.bus.LoadCartridge(cart)
	c.logFn("loaded cartridge: mapper=%d prg=%dB chr=%dB", cart.MapperID(), len(cart.PRGROM()), len(cart.CHRROM()))
	return nil
}

// Reset hard- or soft-resets the loaded cartridge's system state.
func (c *Core) Reset(hard bool) {
	c.bus.Reset(hard)
}

// LoadDisks installs a Family Computer Disk System BIOS plus one or more
// disk-side images, hard-resetting the system. No disk is inserted until
// a subsequent call to SetDisk.
func (c *Core) LoadDisks(biosBytes, disksBytes []byte) error {
	cart, err := cartridge.NewFDSCartridge(biosBytes, disksBytes)
	if err != nil {
		return fmt.Errorf("nes: load disks: %w", err)
	}
	c.cart = cart
	c.bus.LoadCartridge(cart)
	c.logFn("loaded FDS disk image: %d side(s)", numDisks(cart))
	return nil
}

// SetDisk swaps in the given disk side (0-indexed), simulating an
// eject-and-reinsert. It returns false if the side is out of range or
// the loaded cartridge isn't an FDS image.
func (c *Core) SetDisk(side int) bool {
	if c.cart == nil {
		return false
	}
	disks, ok := c.cart.Mapper().(cartridge.DiskSystem)
	if !ok {
		return false
	}
	return disks.SetDisk(side)
}

// GetDisk returns the currently inserted disk side, or -1 if the loaded
// cartridge isn't an FDS image or no disk is inserted.
func (c *Core) GetDisk() int {
	if c.cart == nil {
		return -1
	}
	disks, ok := c.cart.Mapper().(cartridge.DiskSystem)
	if !ok {
		return -1
	}
	return disks.GetDisk()
}

// NumDisks returns the number of disk sides available, or 0 if the
// loaded cartridge isn't an FDS image.
func (c *Core) NumDisks() int {
	return numDisks(c.cart)
}

func numDisks(cart *cartridge.Cartridge) int {
	if cart == nil {
		return 0
	}
	disks, ok := cart.Mapper().(cartridge.DiskSystem)
	if !ok {
		return 0
	}
	return disks.NumDisks()
}

// ControllerState sets the full 8-button mask for one player (0 or 1).
// Bit order matches spec §6: A, B, Select, Start, Up, Down, Left, Right.
func (c *Core) ControllerState(player int, buttonMask uint8) {
	var buttons [8]bool
	for i := 0; i < 8; i++ {
		buttons[i] = buttonMask&(1<<uint(i)) != 0
	}
	c.bus.SetControllerButtons(player+1, buttons)
}

// SetConfig updates the core's tunable configuration. Audio format
// changes take effect on the next NextFrame call.
func (c *Core) SetConfig(config Config) {
	c.config = config
	c.bus.APU.SetSampleRate(int(config.SampleRate))
}

// GetSRAMSize returns the size in bytes of the cartridge's battery-backed
// work RAM, or 0 if no battery-backed cartridge is loaded.
func (c *Core) GetSRAMSize() int {
	if c.cart == nil || !c.cart.HasBattery() {
		return 0
	}
	return len(c.cart.SRAM())
}

// GetSRAM returns the cartridge's battery-backed work RAM for the host
// to persist to disk, or nil if none is present.
func (c *Core) GetSRAM() []uint8 {
	if c.GetSRAMSize() == 0 {
		return nil
	}
	return c.cart.SRAM()
}

// NextFrame runs the system until one video frame completes, delivering
// it through videoCB, and flushes pending audio through audioCB. It
// returns the number of CPU cycles the frame advanced.
func (c *Core) NextFrame(videoCB VideoFunc, audioCB AudioFunc) uint64 {
	before := c.bus.CycleCount()
	c.bus.RunFrame()

	if videoCB != nil {
		frame := c.bus.GetFrameBuffer()
		videoCB(&frame)
	}
	if audioCB != nil {
		samples := c.bus.GetAudioSamples()
		if len(samples) > 0 {
			pcm := make([]int16, len(samples))
			for i, s := range samples {
				pcm[i] = floatToPCM16(s)
			}
			audioCB(pcm)
		}
	}

	return c.bus.CycleCount() - before
}

func floatToPCM16(s float32) int16 {
	v := s * 32767
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	return int16(v)
}

// GetStateSize returns the size in bytes of the opaque blob GetState
// would currently produce.
func (c *Core) GetStateSize() int {
	blob, err := c.GetState()
	if err != nil {
		return 0
	}
	return len(blob)
}

// GetState serializes the system state held in a bus.Snapshot (cpu, apu,
// ppu, cart sram, ram and cycle counters — in that order) into an opaque
// blob. Controller latches and mapper registers are not included.
func (c *Core) GetState() ([]byte, error) {
	snap := c.bus.Snapshot()
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&snap); err != nil {
		return nil, fmt.Errorf("nes: encode state: %w", err)
	}
	return buf.Bytes(), nil
}

// SetState restores a blob previously produced by GetState. The same
// cartridge must already be loaded via LoadCart.
func (c *Core) SetState(blob []byte) error {
	var snap bus.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&snap); err != nil {
		return fmt.Errorf("%w: %v", ErrStateRejected, err)
	}
	c.bus.Restore(snap)
	return nil
}
