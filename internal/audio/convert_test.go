package audio

import (
	"bytes"
	"testing"
)

func TestEncodePCM16_Endpoints(t *testing.T) {
	got := EncodePCM16([]float32{-1.0, 0.0, 1.0})
	want := []int16{-32768, 0, 32767}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestEncodePCM16_Clamps(t *testing.T) {
	got := EncodePCM16([]float32{-2.5, 1.7})

	if got[0] != -32768 {
		t.Errorf("expected -32768 for underflow, got %d", got[0])
	}
	if got[1] != 32767 {
		t.Errorf("expected 32767 for overflow, got %d", got[1])
	}
}

func TestEncodePCM16_RoundsToNearest(t *testing.T) {
	got := EncodePCM16([]float32{0.5, -0.5})

	if got[0] != 16384 { // round(0.5 * 32767) = round(16383.5)
		t.Errorf("expected 16384, got %d", got[0])
	}
	if got[1] != -16384 {
		t.Errorf("expected -16384, got %d", got[1])
	}
}

func TestPCM16Bytes_LittleEndian(t *testing.T) {
	got := PCM16Bytes([]int16{0x0102, -1})
	want := []byte{0x02, 0x01, 0xFF, 0xFF}

	if !bytes.Equal(got, want) {
		t.Errorf("expected % X, got % X", want, got)
	}
}

func TestPCM16RoundTrip(t *testing.T) {
	in := []int16{-32768, -1, 0, 1, 32767}
	out := PCM16FromBytes(PCM16Bytes(in))

	if len(out) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("sample %d: expected %d, got %d", i, in[i], out[i])
		}
	}
}

func TestFloat32FromPCM16(t *testing.T) {
	out := Float32FromPCM16([]int16{-32768, 0, 16384})

	if out[0] != -1.0 {
		t.Errorf("expected -1.0, got %f", out[0])
	}
	if out[1] != 0.0 {
		t.Errorf("expected 0.0, got %f", out[1])
	}
	if out[2] != 0.5 {
		t.Errorf("expected 0.5, got %f", out[2])
	}
}
