// Package model contains domain records passed between layers.
package model

import (
	"strings"
	"sync"
	"unicode"
)

// Transcript is a frozen answer transcript. It may be empty.
type Transcript string

// TranscriptBuffer accumulates transcript chunks for the answer in
// progress. It is safe for concurrent use.
type TranscriptBuffer struct {
	mu sync.Mutex
	sb strings.Builder
}

// NewTranscriptBuffer returns an empty buffer.
func NewTranscriptBuffer() *TranscriptBuffer {
	return &TranscriptBuffer{}
}

// Append adds a recognised chunk, separating words with a single space.
func (b *TranscriptBuffer) Append(chunk string) {
	if strings.TrimSpace(chunk) == "" {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	cur := b.sb.String()
	if len(cur) > 0 && !endsWithSpace(cur) && !startsWithSpace(chunk) {
		b.sb.WriteByte(' ')
	}
	b.sb.WriteString(chunk)
}

// Freeze returns an immutable snapshot of the buffer. Later appends do
// not affect the returned value.
func (b *TranscriptBuffer) Freeze() Transcript {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Transcript(strings.TrimSpace(b.sb.String()))
}

// Reset empties the buffer.
func (b *TranscriptBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sb.Reset()
}

// Len returns the number of buffered bytes.
func (b *TranscriptBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sb.Len()
}

func endsWithSpace(s string) bool {
	r := []rune(s)
	return unicode.IsSpace(r[len(r)-1])
}

func startsWithSpace(s string) bool {
	for _, r := range s {
		return unicode.IsSpace(r)
	}
	return false
}
