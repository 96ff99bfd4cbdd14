package audio

import "time"

const (
	DefaultSampleRate = 16000
	DefaultFormat     = "linear16"

	// DefaultBlockSize is the capture block size in samples (~256ms at 16kHz).
	DefaultBlockSize = 4096
)

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Format: encodingFormat(DefaultFormat)}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// Duration reports how long the given payload plays at this encoding.
func (e EncodingInfo) Duration(payload []byte) time.Duration {
	if e.IsZero() || len(payload) == 0 {
		return 0
	}

	samples := len(payload) / e.Format.ByteSize()
	return time.Duration(float64(samples) / float64(e.SampleRate) * float64(time.Second))
}

// Samples reports how many samples fit in the given play duration.
func (e EncodingInfo) Samples(duration time.Duration) int {
	if e.IsZero() {
		return 0
	}

	return int(float64(duration) / float64(time.Second) * float64(e.SampleRate))
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
