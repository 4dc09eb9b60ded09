package audio

// Encoder accumulates normalized samples and cuts them into fixed-size PCM16
// chunks. A chunk always holds exactly threshold samples; anything below the
// threshold stays buffered for the next block.
type Encoder struct {
	threshold int
	buf       []float32
}

func NewEncoder(threshold int) *Encoder {
	if threshold <= 0 {
		threshold = DefaultChunkThreshold
	}
	return &Encoder{
		threshold: threshold,
		buf:       make([]float32, 0, threshold*2),
	}
}

// Push appends a block and returns every full chunk it completes, oldest
// first, already serialized as little-endian PCM16.
func (e *Encoder) Push(block []float32) [][]byte {
	e.buf = append(e.buf, block...)

	var chunks [][]byte
	for len(e.buf) >= e.threshold {
		window := e.buf[:e.threshold]
		chunks = append(chunks, PCM16Bytes(EncodePCM16(window)))

		rem := len(e.buf) - e.threshold
		copy(e.buf, e.buf[e.threshold:])
		e.buf = e.buf[:rem]
	}
	return chunks
}

func (e *Encoder) Buffered() int {
	return len(e.buf)
}

func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

func (e *Encoder) Threshold() int {
	return e.threshold
}
