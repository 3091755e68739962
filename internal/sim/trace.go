package sim

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// TraceWriter writes zstd-compressed JSON lines.
type TraceWriter struct {
	mu  sync.Mutex
	c   io.Closer // Underlying file, if owned
	enc *zstd.Encoder
	w   *bufio.Writer
}

type traceTask struct {
	Type string `json:"type"`
	TaskOutcome
}

type traceSummary struct {
	Type    string  `json:"type"`
	RunID   string  `json:"run_id"`
	Score   int     `json:"score"`
	Metrics Metrics `json:"metrics"`
}

// NewTraceWriter compresses onto w. Closing the writer does not close w.
func NewTraceWriter(w io.Writer) (*TraceWriter, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	return &TraceWriter{enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}, nil
}

// CreateTraceFile creates path (and its directory) and writes a trace into it.
func CreateTraceFile(path string) (*TraceWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace: %w", err)
	}
	tw, err := NewTraceWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	tw.c = f
	return tw, nil
}

// Write appends one record.
func (t *TraceWriter) Write(v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.enc == nil {
		return fmt.Errorf("trace writer closed")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := t.w.Write(b); err != nil {
		return err
	}
	return t.w.WriteByte('\n')
}

// Close flushes and finalises the zstd frame.
func (t *TraceWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.enc == nil {
		return nil
	}
	err := t.w.Flush()
	if cerr := t.enc.Close(); err == nil {
		err = cerr
	}
	t.enc = nil
	t.w = nil
	if t.c != nil {
		if cerr := t.c.Close(); err == nil {
			err = cerr
		}
		t.c = nil
	}
	return err
}

// ReadTrace decodes every record of a trace into maps.
func ReadTrace(r io.Reader) ([]map[string]any, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []map[string]any
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var rec map[string]any
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}
