package bus

// Test helper methods for bus testing.

// SetFrameBufferForTesting installs a known frame buffer, for tests that
// check compositing/rendering output without running a full frame.
func (b *Bus) SetFrameBufferForTesting(frameBuffer [256 * 240]uint32) {
	if b.PPU != nil {
		b.PPU.SetFrameBufferForTesting(frameBuffer)
	}
}

// StepWithError runs one Step and always returns nil; it exists so table-
// driven tests written against an error-returning step function don't need
// two code paths.
func (b *Bus) StepWithError() error {
	b.Step()
	return nil
}
