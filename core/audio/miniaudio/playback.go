//go:build cgo

// Package miniaudio provides a playback sink backed by the miniaudio library.
package miniaudio

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/voxaline/live-core/core/audio"
)

// DefaultSampleRate matches the rate remote services commonly synthesize
// speech at.
const DefaultSampleRate = 24000

// Sink plays scheduled PCM buffers on the default output device and exposes a
// sample-accurate output clock driven by the device callback.
type Sink struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	encodingInfo audio.EncodingInfo

	mu       sync.Mutex
	queue    []*scheduledBuffer
	playhead int64 // samples rendered since the device started
	closed   bool
}

type scheduledBuffer struct {
	start  int64 // sample offset on the output clock
	data   []byte
	onDone func()
}

type SinkOption func(*Sink)

// WithSampleRate overrides the output sample rate.
func WithSampleRate(sampleRate int) SinkOption {
	return func(s *Sink) {
		s.encodingInfo.SampleRate = sampleRate
	}
}

func NewSink(opts ...SinkOption) (*Sink, error) {
	sink := &Sink{
		encodingInfo: audio.EncodingInfo{SampleRate: DefaultSampleRate, Format: audio.EncodingLinear16},
	}
	for _, opt := range opts {
		opt(sink)
	}

	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}
	sink.audioContext = audioCtx

	sampleRate := uint32(sink.encodingInfo.SampleRate)
	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.SampleRate = sampleRate
	config.Playback.Format = format
	config.Playback.Channels = uint32(channels)
	config.Alsa.NoMMap = 1
	config.PeriodSizeInFrames = sampleRate / 10 // ~100ms of audio
	config.Periods = 4

	sink.device, err = malgo.InitDevice(audioCtx.Context, config, malgo.DeviceCallbacks{
		Data: sink.render(bytesPerFrame),
	})
	if err != nil {
		sink.Close()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := sink.device.Start(); err != nil {
		sink.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	return sink, nil
}

func (s *Sink) EncodingInfo() audio.EncodingInfo { return s.encodingInfo }

func (s *Sink) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samplesToDuration(s.playhead)
}

func (s *Sink) Schedule(pcm []byte, at time.Duration, onDone func()) (audio.PlaybackHandle, error) {
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("truncated pcm payload: %d bytes", len(pcm))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("sink closed")
	}

	buffer := &scheduledBuffer{
		start:  int64(s.encodingInfo.Samples(at)),
		data:   pcm,
		onDone: onDone,
	}
	s.queue = append(s.queue, buffer)
	sort.SliceStable(s.queue, func(i, j int) bool { return s.queue[i].start < s.queue[j].start })

	return &bufferHandle{sink: s, buffer: buffer}, nil
}

func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.queue = nil
	s.mu.Unlock()

	if s.device != nil {
		s.device.Uninit()
		s.device = nil
	}
	if s.audioContext != nil {
		if err := s.audioContext.Uninit(); err != nil {
			return fmt.Errorf("failed to uninitialize audio context: %w", err)
		}
		s.audioContext.Free()
		s.audioContext = nil
	}
	return nil
}

// render fills device periods from the scheduled queue. Regions no buffer
// covers stay silent (zeroed by malgo). Completion callbacks run off the
// device callback goroutine.
func (s *Sink) render(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		frames := int64(frameCount)
		if frames == 0 {
			return
		}

		s.mu.Lock()
		windowStart := s.playhead
		windowEnd := windowStart + frames

		var finished []func()
		remaining := s.queue[:0]
		for _, buffer := range s.queue {
			bufferLen := int64(len(buffer.data) / bytesPerFrame)
			bufferEnd := buffer.start + bufferLen

			overlapStart := max(windowStart, buffer.start)
			overlapEnd := min(windowEnd, bufferEnd)
			if overlapStart < overlapEnd {
				src := buffer.data[(overlapStart-buffer.start)*int64(bytesPerFrame) : (overlapEnd-buffer.start)*int64(bytesPerFrame)]
				copy(pOutput[(overlapStart-windowStart)*int64(bytesPerFrame):], src)
			}

			if bufferEnd <= windowEnd {
				if buffer.onDone != nil {
					finished = append(finished, buffer.onDone)
				}
				continue
			}
			remaining = append(remaining, buffer)
		}
		s.queue = remaining
		s.playhead = windowEnd
		s.mu.Unlock()

		if len(finished) > 0 {
			go func() {
				for _, onDone := range finished {
					onDone()
				}
			}()
		}
	}
}

func (s *Sink) samplesToDuration(samples int64) time.Duration {
	return time.Duration(float64(samples) / float64(s.encodingInfo.SampleRate) * float64(time.Second))
}

type bufferHandle struct {
	sink   *Sink
	buffer *scheduledBuffer
}

// Stop removes the buffer from the queue. Buffers that already finished are
// gone from the queue, so stopping them is a no-op.
func (h *bufferHandle) Stop() {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()

	for i, buffer := range h.sink.queue {
		if buffer == h.buffer {
			h.sink.queue = append(h.sink.queue[:i], h.sink.queue[i+1:]...)
			return
		}
	}
}
