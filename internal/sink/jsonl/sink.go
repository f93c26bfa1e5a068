// Package jsonl writes normalized records to a JSON-lines file.
package jsonl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pricepulse/alkoteka-crawler/internal/catalog"
)

// Sink appends one JSON object per record to a single output file.
type Sink struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
}

// New opens (or truncates) the output file, creating parent directories.
func New(path string) (*Sink, error) {
	if path == "" {
		return nil, fmt.Errorf("output path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create output dir %s: %w", dir, err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file %s: %w", path, err)
	}
	return &Sink{
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

// Emit writes one record as a JSON line.
func (s *Sink) Emit(ctx context.Context, record catalog.Record) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.writer.Write(payload); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := s.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write record terminator: %w", err)
	}
	return nil
}

// Close flushes buffered records and closes the file.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writer.Flush(); err != nil {
		return fmt.Errorf("flush records: %w", err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}
