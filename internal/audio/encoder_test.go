package audio

import "testing"

func TestEncoder_ExactThreshold(t *testing.T) {
	enc := NewEncoder(8000)

	chunks := enc.Push(make([]float32, 8000))

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if len(chunks[0]) != 8000*2 {
		t.Errorf("expected %d bytes, got %d", 8000*2, len(chunks[0]))
	}
	if enc.Buffered() != 0 {
		t.Errorf("expected empty remainder, got %d", enc.Buffered())
	}
}

func TestEncoder_Remainder(t *testing.T) {
	enc := NewEncoder(8000)

	chunks := enc.Push(make([]float32, 8001))

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if enc.Buffered() != 1 {
		t.Errorf("expected remainder of 1, got %d", enc.Buffered())
	}
}

func TestEncoder_BelowThresholdBuffers(t *testing.T) {
	enc := NewEncoder(8000)

	chunks := enc.Push(make([]float32, 7999))

	if len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
	if enc.Buffered() != 7999 {
		t.Errorf("expected 7999 buffered, got %d", enc.Buffered())
	}
}

func TestEncoder_AccumulatesAcrossBlocks(t *testing.T) {
	enc := NewEncoder(100)

	for i := 0; i < 9; i++ {
		if chunks := enc.Push(make([]float32, 10)); len(chunks) != 0 {
			t.Fatalf("unexpected chunk after %d samples", (i+1)*10)
		}
	}

	chunks := enc.Push(make([]float32, 10))
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk at threshold, got %d", len(chunks))
	}
}

func TestEncoder_MultipleChunksFromOneBlock(t *testing.T) {
	enc := NewEncoder(100)

	chunks := enc.Push(make([]float32, 250))

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if enc.Buffered() != 50 {
		t.Errorf("expected 50 buffered, got %d", enc.Buffered())
	}
}

func TestEncoder_OldestFirst(t *testing.T) {
	enc := NewEncoder(4)

	block := []float32{0.0, 0.0, 0.0, 0.0, 1.0, 1.0, 1.0, 1.0}
	chunks := enc.Push(block)

	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	first := PCM16FromBytes(chunks[0])
	second := PCM16FromBytes(chunks[1])
	if first[0] != 0 {
		t.Errorf("first chunk should hold oldest samples, got %d", first[0])
	}
	if second[0] != 32767 {
		t.Errorf("second chunk should hold newest samples, got %d", second[0])
	}
}

func TestEncoder_Reset(t *testing.T) {
	enc := NewEncoder(100)
	enc.Push(make([]float32, 50))
	enc.Reset()

	if enc.Buffered() != 0 {
		t.Errorf("expected empty buffer after reset, got %d", enc.Buffered())
	}
}
