package vapi

import (
	"bytes"
	"strings"
	"sync"

	"github.com/smallnest/ringbuffer"
)

// payloadLog keeps the most recent raw app messages of a call, one per line.
// Whole entries are evicted, oldest first, once the buffer is full. An entry
// longer than the buffer keeps its tail only.
type payloadLog struct {
	mu sync.Mutex
	rb *ringbuffer.RingBuffer
}

func newPayloadLog(size int) *payloadLog {
	return &payloadLog{rb: ringbuffer.New(size)}
}

func (l *payloadLog) Append(payload []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := make([]byte, 0, len(payload)+1)
	entry = append(entry, bytes.ReplaceAll(payload, []byte("\n"), []byte(`\n`))...)
	entry = append(entry, '\n')

	if c := l.rb.Capacity(); len(entry) > c {
		entry = entry[len(entry)-c:]
	}

	// drop old entries until the new one fits
	for l.rb.Free() < len(entry) {
		b, err := l.rb.ReadByte()
		if err != nil {
			break
		}
		for b != '\n' {
			if b, err = l.rb.ReadByte(); err != nil {
				break
			}
		}
	}

	_, _ = l.rb.Write(entry)
}

// Entries returns the logged payloads, oldest first.
func (l *payloadLog) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.rb.Length()
	if n == 0 {
		return nil
	}
	buf := make([]byte, n)
	if _, err := l.rb.Read(buf); err != nil {
		return nil
	}
	_, _ = l.rb.Write(buf)

	return strings.Split(strings.TrimSuffix(string(buf), "\n"), "\n")
}

func (l *payloadLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rb.Reset()
}
