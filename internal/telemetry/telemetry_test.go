package telemetry

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

var fixed = time.Date(2024, 3, 9, 22, 30, 0, 0, time.UTC)

func newBufferEmitter() (*Emitter, *bytes.Buffer) {
	var buf bytes.Buffer
	em := NewWriterEmitter(&buf)
	em.now = func() time.Time { return fixed }
	return em, &buf
}

func decodeLines(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestEmit_Encoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		evt  Event
		want map[string]any
	}{
		{
			name: "conversion",
			evt:  Event{Kind: KindConversion, RequestID: "r1", Input: "5pm in tokyo", Data: map[string]int{"locations": 1}},
			want: map[string]any{
				"ts": "2024-03-09T22:30:00Z", "kind": "conversion", "request_id": "r1",
				"input": "5pm in tokyo", "data": map[string]any{"locations": float64(1)},
			},
		},
		{
			name: "bare event omits optional fields",
			evt:  Event{Kind: KindServerStop},
			want: map[string]any{"ts": "2024-03-09T22:30:00Z", "kind": "server_stop"},
		},
		{
			name: "explicit timestamp kept",
			evt:  Event{Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Kind: KindGazetteerReload},
			want: map[string]any{"ts": "2025-01-01T00:00:00Z", "kind": "gazetteer_reload"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			em, buf := newBufferEmitter()
			if err := em.Emit(tt.evt); err != nil {
				t.Fatalf("Emit: %v", err)
			}
			got := decodeLines(t, buf.Bytes())
			if len(got) != 1 {
				t.Fatalf("got %d lines, want 1", len(got))
			}
			if len(got[0]) != len(tt.want) {
				t.Errorf("fields = %v, want %v", got[0], tt.want)
			}
			for k, v := range tt.want {
				gv, _ := json.Marshal(got[0][k])
				wv, _ := json.Marshal(v)
				if string(gv) != string(wv) {
					t.Errorf("%s = %s, want %s", k, gv, wv)
				}
			}
		})
	}
}

func TestEmit_Concurrent(t *testing.T) {
	t.Parallel()
	em, buf := newBufferEmitter()

	const n = 64
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := em.Emit(Event{Kind: KindRateLimited, Data: map[string]int{"i": i}}); err != nil {
				t.Errorf("Emit: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := len(decodeLines(t, buf.Bytes())); got != n {
		t.Fatalf("got %d lines, want %d", got, n)
	}
}

func TestNewEmitter_File(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "events.jsonl")

	for _, kind := range []string{KindServerStart, KindServerStop} {
		em, err := NewEmitter(path)
		if err != nil {
			t.Fatalf("NewEmitter: %v", err)
		}
		if err := em.Emit(Event{Kind: kind}); err != nil {
			t.Fatalf("Emit: %v", err)
		}
		if err := em.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := decodeLines(t, data)
	if len(lines) != 2 || lines[0]["kind"] != KindServerStart || lines[1]["kind"] != KindServerStop {
		t.Errorf("reopened file should append, got %v", lines)
	}
}

func TestNewEmitter_BadPath(t *testing.T) {
	t.Parallel()
	_, err := NewEmitter(filepath.Join(t.TempDir(), "missing", "events.jsonl"))
	if err == nil || !strings.Contains(err.Error(), "telemetry: open") {
		t.Fatalf("err = %v, want wrapped open error", err)
	}
}

func TestEmitter_NilIsNoOp(t *testing.T) {
	t.Parallel()
	var em *Emitter
	if err := em.Emit(Event{Kind: KindConversion}); err != nil {
		t.Errorf("Emit: %v", err)
	}
	if err := em.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestWriterEmitter_CloseLeavesWriter(t *testing.T) {
	t.Parallel()
	em, buf := newBufferEmitter()
	if err := em.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := em.Emit(Event{Kind: KindConversionError}); err != nil {
		t.Fatalf("Emit after Close: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("writer should stay usable after Close")
	}
}
