package live

import "math"

// EncodeSample converts one floating-point sample in [-1.0, 1.0] to signed
// 16-bit fixed point. Input is clamped first; negative values scale by 32768
// and non-negative values by 32767 so that +1.0 cannot overflow.
func EncodeSample(f float32) int16 {
	if f < -1.0 {
		f = -1.0
	} else if f > 1.0 {
		f = 1.0
	}
	if f < 0 {
		return int16(f * 32768)
	}
	return int16(f * 32767)
}

// EncodePCM16 converts floating-point samples to 16-bit little-endian PCM.
func EncodePCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, f := range samples {
		s := EncodeSample(f)
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}

// DecodePCM16 converts 16-bit little-endian PCM to int16 samples.
// The trailing odd byte, if any, is ignored.
func DecodePCM16(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
	}
	return samples
}

// RMSEnergy computes the root-mean-square energy of 16-bit little-endian
// PCM audio. Returns a value between 0.0 and 1.0.
func RMSEnergy(pcm []byte) float64 {
	n := len(pcm) / 2
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < len(pcm)-1; i += 2 {
		sample := int16(pcm[i]) | int16(pcm[i+1])<<8
		normalized := float64(sample) / 32768.0
		sum += normalized * normalized
	}

	return math.Sqrt(sum / float64(n))
}
