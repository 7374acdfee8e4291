package runtime

import (
	"io"
	"sync"
)

// Reader that closes its drained channel once the wrapped reader reports
// [io.EOF]. Safe for use from multiple goroutines.
type eofReader struct {
	io.Reader
	drained chan struct{}
	once    sync.Once
}

func newEOFReader(r io.Reader) *eofReader {
	return &eofReader{Reader: r, drained: make(chan struct{})}
}

func (r *eofReader) Read(p []byte) (int, error) {
	n, err := r.Reader.Read(p)
	if err == io.EOF {
		r.once.Do(func() { close(r.drained) })
	}
	return n, err
}
