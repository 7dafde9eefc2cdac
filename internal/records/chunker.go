package records

import "fmt"

// Chunk is a bounded, order-preserving batch of records.
type Chunk []Record

// Chunker groups a Scanner's record stream into chunks of at most size
// records. Only the chunk being assembled is held in memory.
type Chunker struct {
	scanner *Scanner
	size    int
	current Chunk
}

// NewChunker wraps a Scanner. size must be positive; the pipeline rejects
// non-positive sizes during configuration validation, this guard catches
// programmatic misuse.
func NewChunker(scanner *Scanner, size int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	return &Chunker{scanner: scanner, size: size}, nil
}

// Next assembles the next chunk. It returns false once the stream is
// exhausted or the scanner failed; check Err afterwards.
func (c *Chunker) Next() bool {
	if c.scanner.Err() != nil {
		c.current = nil
		return false
	}
	chunk := make(Chunk, 0, c.size)
	for len(chunk) < c.size && c.scanner.Next() {
		chunk = append(chunk, c.scanner.Record())
	}
	if len(chunk) == 0 {
		c.current = nil
		return false
	}
	c.current = chunk
	return true
}

// Chunk returns the chunk produced by the last successful Next call.
func (c *Chunker) Chunk() Chunk { return c.current }

// Err reports the underlying scanner failure, if any.
func (c *Chunker) Err() error { return c.scanner.Err() }
