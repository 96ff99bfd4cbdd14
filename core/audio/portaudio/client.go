//go:build cgo

// Package portaudio provides a microphone capture client backed by PortAudio.
package portaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/voxaline/live-core/core/audio"
)

// Client captures mono floating-point blocks from the default input device.
type Client struct {
	blockSize  int
	sampleRate int

	mu     sync.Mutex
	stream *portaudio.Stream
	in     []float32
	closed bool
}

type Option func(*Client)

// WithBlockSize overrides the capture block size in samples.
func WithBlockSize(blockSize int) Option {
	return func(c *Client) { c.blockSize = blockSize }
}

// WithSampleRate overrides the requested capture rate. The device may grant a
// different rate; EncodingInfo reports what was actually granted.
func WithSampleRate(sampleRate int) Option {
	return func(c *Client) { c.sampleRate = sampleRate }
}

func NewClient(opts ...Option) (*Client, error) {
	client := &Client{
		blockSize:  audio.DefaultBlockSize,
		sampleRate: audio.DefaultSampleRate,
	}
	for _, opt := range opts {
		opt(client)
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	client.in = make([]float32, client.blockSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(client.sampleRate), client.blockSize, client.in)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open capture stream: %w", err)
	}
	client.stream = stream

	// The device may grant a rate other than the requested one; encoding
	// must report the granted rate.
	if info := stream.Info(); info != nil && info.SampleRate > 0 {
		client.sampleRate = int(info.SampleRate)
	}

	return client, nil
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{SampleRate: c.sampleRate, Format: audio.EncodingLinear16}
}

// Stream captures blocks until the context is cancelled or a device error
// occurs. Each block is handed to onBlock as an owned copy together with the
// granted sample rate.
func (c *Client) Stream(ctx context.Context, onBlock func(samples []float32, sampleRate int)) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("capture client closed")
	}
	stream := c.stream
	c.mu.Unlock()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start capture stream: %w", err)
	}
	defer stream.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			if err := stream.Read(); err != nil {
				return fmt.Errorf("failed to read capture block: %w", err)
			}

			block := make([]float32, len(c.in))
			copy(block, c.in)
			onBlock(block, c.sampleRate)
		}
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var errs error
	if c.stream != nil {
		if err := c.stream.Close(); err != nil {
			errs = fmt.Errorf("failed to close capture stream: %w", err)
		}
		c.stream = nil
	}
	if err := portaudio.Terminate(); err != nil && errs == nil {
		errs = fmt.Errorf("failed to terminate portaudio: %w", err)
	}
	return errs
}
