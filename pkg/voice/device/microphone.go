// Package device provides microphone capture and speaker playback backed
// by the host audio stack (malgo in, oto out).
package device

import (
	"context"
	"encoding/binary"
	"math"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/Brighttier/renova-voice/pkg/voice/live"
)

// Microphone captures float32 samples from the default capture device.
type Microphone struct {
	format live.AudioFormat

	mu      sync.Mutex
	malgoCt *malgo.AllocatedContext
	device  *malgo.Device
	samples chan []float32
	closed  bool
}

// NewMicrophone prepares a microphone for the given format. No device is
// opened until Acquire is called.
func NewMicrophone(format live.AudioFormat) *Microphone {
	return &Microphone{format: format}
}

// Acquire opens the capture device and starts streaming. The returned
// channel stays open until Release is called; when the hardware stalls or
// the process cannot keep up, the oldest pending block is dropped rather
// than blocking the device callback.
func (m *Microphone) Acquire(ctx context.Context) (<-chan []float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, live.NewMisuseError("microphone already released")
	}
	if m.device != nil {
		return nil, live.NewMisuseError("microphone already acquired")
	}

	ctxConfig := malgo.ContextConfig{}
	ctxConfig.ThreadPriority = malgo.ThreadPriorityRealtime
	malgoCtx, err := malgo.InitContext(nil, ctxConfig, nil)
	if err != nil {
		return nil, live.NewInitializationError(live.CodeCapabilityUnavailable, "audio context init failed")
	}

	samples := make(chan []float32, 16)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(m.format.Channels)
	deviceConfig.SampleRate = uint32(m.format.SampleRateHz)
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, _ uint32) {
			block := decodeF32LE(pInput)
			if len(block) == 0 {
				return
			}
			select {
			case samples <- block:
			default:
				// Device callback must never block; shed the oldest
				// block and keep the newest.
				select {
				case <-samples:
				default:
				}
				select {
				case samples <- block:
				default:
				}
			}
		},
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, callbacks)
	if err != nil {
		malgoCtx.Uninit()
		return nil, live.NewDeviceError("microphone init failed", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		malgoCtx.Uninit()
		return nil, live.NewDeviceError("microphone start failed", err)
	}

	m.malgoCt = malgoCtx
	m.device = device
	m.samples = samples
	return samples, nil
}

// Release stops the capture device and closes the sample channel. Safe to
// call more than once.
func (m *Microphone) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if m.device != nil {
		m.device.Stop()
		m.device.Uninit()
		m.device = nil
	}
	if m.malgoCt != nil {
		m.malgoCt.Uninit()
		m.malgoCt = nil
	}
	if m.samples != nil {
		close(m.samples)
		m.samples = nil
	}
	return nil
}

// decodeF32LE reinterprets little-endian IEEE 754 bytes as samples.
func decodeF32LE(data []byte) []float32 {
	n := len(data) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(data[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out
}
