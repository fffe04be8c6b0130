package runner

import (
	"bufio"
	"context"
	"io"
	"sync"
)

// lineReader reads lines on a background goroutine so that a blocked read can
// be abandoned when the context is canceled. After close the goroutine exits
// once its pending read returns; it cannot interrupt that read.
type lineReader struct {
	reader    *bufio.Reader
	lines     chan lineResult
	done      chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

type lineResult struct {
	text string
	err  error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{
		reader: bufio.NewReader(r),
		lines:  make(chan lineResult),
		done:   make(chan struct{}),
	}
}

func (l *lineReader) pump() {
	defer close(l.lines)
	for {
		text, err := l.reader.ReadString('\n')
		// A final line without a newline is still delivered.
		if text != "" && !l.send(lineResult{text: text}) {
			return
		}
		if err != nil {
			if err != io.EOF {
				l.send(lineResult{err: err})
			}
			return
		}
	}
}

func (l *lineReader) send(res lineResult) bool {
	select {
	case l.lines <- res:
		return true
	case <-l.done:
		return false
	}
}

// next returns the next raw line, io.EOF when the source is exhausted or the
// reader is closed, or the context error.
func (l *lineReader) next(ctx context.Context) (string, error) {
	select {
	case <-l.done:
		return "", io.EOF
	default:
	}
	l.startOnce.Do(func() { go l.pump() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-l.done:
		return "", io.EOF
	case res, ok := <-l.lines:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}

// close releases the pump goroutine. It is safe to call more than once.
func (l *lineReader) close() {
	l.closeOnce.Do(func() { close(l.done) })
}
