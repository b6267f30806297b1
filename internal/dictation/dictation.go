// Package dictation turns speech-recognition transcripts into session edits.
//
// A Source produces Chunks; Feed drains a Source into a Sink, appending each
// final, non-blank chunk. Interim (non-final) chunks are dropped.
package dictation

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
)

// Chunk is one transcript fragment.
type Chunk struct {
	Text  string
	Final bool

	// ClientID identifies the connection that produced the chunk, if any.
	ClientID string

	ack func(revision uint64)
}

// Source produces chunks until it returns io.EOF.
type Source interface {
	Next(ctx context.Context) (Chunk, error)
}

// Sink receives final transcript text.
type Sink interface {
	AppendDictation(text string) (revision uint64)
}

// Applies reports whether Feed would append c.
func (c Chunk) Applies() bool {
	return c.Final && strings.TrimSpace(c.Text) != ""
}

// Feed appends chunks from src to sink until src is exhausted or ctx is
// canceled. It returns the number of chunks applied. Exhaustion is not an
// error.
func Feed(ctx context.Context, src Source, sink Sink) (int, error) {
	applied := 0
	for {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		c, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return applied, nil
		}
		if err != nil {
			return applied, err
		}
		if !c.Applies() {
			continue
		}
		rev := sink.AppendDictation(c.Text)
		applied++
		if c.ack != nil {
			c.ack(rev)
		}
	}
}

// LineSource reads newline-delimited final chunks from a reader.
type LineSource struct {
	scanner *bufio.Scanner
}

// NewLineSource creates a LineSource reading from r.
func NewLineSource(r io.Reader) *LineSource {
	return &LineSource{scanner: bufio.NewScanner(r)}
}

// Next returns the next line as a final chunk.
func (s *LineSource) Next(ctx context.Context) (Chunk, error) {
	if err := ctx.Err(); err != nil {
		return Chunk{}, err
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return Chunk{}, err
		}
		return Chunk{}, io.EOF
	}
	return Chunk{Text: strings.TrimRight(s.scanner.Text(), "\r"), Final: true}, nil
}
