// Package device adapts the output ring to the operating system's audio
// service through PortAudio. The stream callback is the real-time edge of
// the pipeline: it only pops the lock-free ring, writes the hardware
// buffer and bumps the underrun counter. It must never allocate, lock,
// log or block.
package device

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/lbarasti/graphsynth/internal/protocol"
	"github.com/lbarasti/graphsynth/internal/ring"
	"github.com/lbarasti/graphsynth/internal/state"
)

// Output owns the PortAudio stream feeding the default output device.
type Output struct {
	stream *portaudio.Stream
	out    *ring.SPSC[float32]
	shared *state.Shared
	name   string
}

// Open initializes PortAudio, opens the default output device at the
// shared sample rate and starts the stream. bufferSize is the callback
// buffer length in samples.
func Open(out *ring.SPSC[float32], shared *state.Shared, bufferSize int) (*Output, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", protocol.ErrDeviceOpenFailed, err)
	}
	info, err := portaudio.DefaultOutputDevice()
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", protocol.ErrDeviceOpenFailed, err)
	}
	o := &Output{out: out, shared: shared, name: info.Name}
	stream, err := portaudio.OpenDefaultStream(
		0, 1, float64(shared.SampleRate()), bufferSize, o.callback)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", protocol.ErrDeviceOpenFailed, err)
	}
	o.stream = stream
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", protocol.ErrDeviceOpenFailed, err)
	}
	return o, nil
}

// callback fills the hardware buffer. Empty-ring slots become silence
// and count as underruns; after shutdown it keeps producing silence
// until the stream is torn down.
func (o *Output) callback(outBuf []float32) {
	if o.shared.ShuttingDown() {
		for i := range outBuf {
			outBuf[i] = 0
		}
		return
	}
	for i := range outBuf {
		v, ok := o.out.Pop()
		if !ok {
			outBuf[i] = 0
			o.shared.ReportUnderrun()
			continue
		}
		// Final safety clamp at the hardware boundary.
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		outBuf[i] = v
	}
}

// Name returns the opened device's name.
func (o *Output) Name() string { return o.name }

// Close stops the stream and tears PortAudio down.
func (o *Output) Close() error {
	if o.stream == nil {
		return nil
	}
	stopErr := o.stream.Stop()
	closeErr := o.stream.Close()
	termErr := portaudio.Terminate()
	o.stream = nil
	if stopErr != nil {
		return stopErr
	}
	if closeErr != nil {
		return closeErr
	}
	return termErr
}

// List returns the names of every output-capable device.
func List() ([]string, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", protocol.ErrDeviceOpenFailed, err)
	}
	defer func() { _ = portaudio.Terminate() }()
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, info := range infos {
		if info.MaxOutputChannels > 0 {
			names = append(names, info.Name)
		}
	}
	return names, nil
}
