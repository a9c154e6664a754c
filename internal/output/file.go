package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSink writes structured output to a file, delegating encoding to an
// EmitSink over the open file handle.
type FileSink struct {
	file *os.File
	emit *EmitSink
}

func NewFileSink(path string, format string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("output path required")
	}

	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".json":
			format = "json"
		case ".ndjson", ".jsonl":
			format = "ndjson"
		default:
			return nil, fmt.Errorf("cannot infer output format from file extension %q", ext)
		}
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	emit, err := NewEmitSink(f, format)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &FileSink{file: f, emit: emit}, nil
}

func (s *FileSink) Write(e Event) error {
	return s.emit.Write(e)
}

func (s *FileSink) Close() error {
	if err := s.emit.Close(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
