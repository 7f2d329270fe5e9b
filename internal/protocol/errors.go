package protocol

import "fmt"

// Validation errors raised by the command stage. Each is reported to the
// UI as a CommandError event; the offending command is discarded and
// later commands are unaffected.
var (
	ErrRowOutOfBounds    = fmt.Errorf("row out of bounds")
	ErrInvalidOctave     = fmt.Errorf("invalid octave")
	ErrInvalidVelocity   = fmt.Errorf("invalid velocity")
	ErrInvalidVolume     = fmt.Errorf("invalid volume")
	ErrUnknownInstrument = fmt.Errorf("unknown instrument")
	ErrInvalidNote       = fmt.Errorf("invalid note")
)

// Fatal errors. DeviceOpenFailed aborts startup; ChannelClosed
// propagates to shutdown.
var (
	ErrDeviceOpenFailed = fmt.Errorf("failed to open output device")
	ErrChannelClosed    = fmt.Errorf("channel counterpart has exited")
)
