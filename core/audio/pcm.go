package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodePCM16 converts floating-point samples in [-1, 1] to little-endian
// signed 16-bit PCM. Samples outside the range are clamped. Negative samples
// scale by 32768 and non-negative ones by 32767 so both extremes map onto
// valid int16 values.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, sample := range samples {
		s := float64(sample)
		if s < -1 {
			s = -1
		} else if s > 1 {
			s = 1
		}

		var value int16
		if s < 0 {
			value = int16(s * 32768)
		} else {
			value = int16(s * 32767)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(value))
	}
	return out
}

// DecodePCM16 converts little-endian signed 16-bit PCM back into samples.
// Payloads with an odd byte count are malformed.
func DecodePCM16(payload []byte) ([]int16, error) {
	if len(payload)%2 != 0 {
		return nil, fmt.Errorf("truncated pcm payload: %d bytes", len(payload))
	}

	samples := make([]int16, len(payload)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(payload[i*2:]))
	}
	return samples, nil
}

// RMS computes the root-mean-square loudness of a block of samples.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}

	sum := 0.0
	for _, sample := range samples {
		sum += float64(sample) * float64(sample)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
