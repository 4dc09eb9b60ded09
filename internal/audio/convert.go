package audio

import (
	"encoding/binary"
	"math"
)

// EncodePCM16 converts normalized float samples to 16-bit signed PCM.
// Samples are clamped to [-1.0, 1.0] and mapped so that -1.0 becomes -32768
// and 1.0 becomes 32767, rounding to nearest.
func EncodePCM16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}

		var v float64
		if s < 0 {
			v = math.Round(float64(s) * 32768.0)
		} else {
			v = math.Round(float64(s) * 32767.0)
		}

		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out
}

// PCM16Bytes serializes samples as little-endian bytes, the wire format for
// outbound audio frames.
func PCM16Bytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func PCM16FromBytes(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return samples
}

func Float32FromPCM16(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}
