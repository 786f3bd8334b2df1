package live

import (
	"math"
	"testing"
)

func TestEncodeSample(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   float32
		want int16
	}{
		{"negative full scale", -1.0, -32768},
		{"positive full scale", 1.0, 32767},
		{"silence", 0.0, 0},
		{"half positive", 0.5, 16383},
		{"half negative", -0.5, -16384},
		{"clamps below", -2.5, -32768},
		{"clamps above", 1.7, 32767},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeSample(tt.in); got != tt.want {
				t.Errorf("EncodeSample(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodePCM16LittleEndian(t *testing.T) {
	t.Parallel()
	got := EncodePCM16([]float32{-1.0, 0.0, 1.0})
	want := []byte{0x00, 0x80, 0x00, 0x00, 0xFF, 0x7F}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d = %#x, want %#x", i, got[i], want[i])
		}
	}
}

func TestDecodePCM16RoundTrip(t *testing.T) {
	t.Parallel()
	samples := []float32{-1.0, -0.25, 0.0, 0.25, 1.0}
	decoded := DecodePCM16(EncodePCM16(samples))
	for i, f := range samples {
		if got, want := decoded[i], EncodeSample(f); got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
}

func TestDecodePCM16IgnoresTrailingByte(t *testing.T) {
	t.Parallel()
	if got := DecodePCM16([]byte{0x01, 0x00, 0xFF}); len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
}

func TestRMSEnergy(t *testing.T) {
	t.Parallel()
	if got := RMSEnergy(nil); got != 0 {
		t.Errorf("RMSEnergy(nil) = %v, want 0", got)
	}
	silence := EncodePCM16(make([]float32, 480))
	if got := RMSEnergy(silence); got != 0 {
		t.Errorf("RMSEnergy(silence) = %v, want 0", got)
	}
	loud := EncodePCM16([]float32{-1, -1, -1, -1})
	if got := RMSEnergy(loud); math.Abs(got-1.0) > 0.001 {
		t.Errorf("RMSEnergy(full scale) = %v, want ~1.0", got)
	}
}
