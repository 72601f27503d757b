package analyses

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"meeting-backend/internal/analysis"
	"meeting-backend/internal/heuristics"
	local "meeting-backend/internal/shared/storage/object/local"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const sampleTranscript = "Alice: What should we decide about the budget?\n" +
	"Bob: I think we need a new tool for the team.\n" +
	"Alice: Great, I will follow up with the vendor."

// buildDocx wraps each line in its own paragraph.
func buildDocx(t *testing.T, lines ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, line := range lines {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		body.WriteString(line)
		body.WriteString(`</w:t></w:r></w:p>`)
	}
	if len(lines) == 0 {
		body.WriteString(`<w:p/>`)
	}
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() +
		`</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range []struct{ name, content string }{
		{"[Content_Types].xml", contentTypesXML},
		{"word/document.xml", document},
	} {
		w, err := zw.Create(entry.name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := io.WriteString(w, entry.content); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// stubEngine returns a canned reply or error and counts calls.
type stubEngine struct {
	name  string
	model string
	reply json.RawMessage
	err   error

	mu    sync.Mutex
	calls int
}

func (e *stubEngine) Name() string  { return e.name }
func (e *stubEngine) Model() string { return e.model }

func (e *stubEngine) Analyze(ctx context.Context, _ string) (json.RawMessage, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return nil, e.err
	}
	return e.reply, nil
}

func (e *stubEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// memCache is an in-process cache.Cache.
type memCache struct {
	mu     sync.Mutex
	values map[string][]byte
	ttls   map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	c.ttls[key] = ttl
	return nil
}

// stepClock starts at a fixed instant and advances one minute per call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.now
	c.now = c.now.Add(time.Minute)
	return current
}

var fixedTime = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	svc        *Service
	repo       *MemoryRepo
	llm        *stubEngine
	uploadsDir string
	outputsDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	uploadsDir := filepath.Join(root, "uploads")
	outputsDir := filepath.Join(root, "outputs")

	reply, err := json.Marshal(heuristics.AnalyzeText(sampleTranscript))
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	llmEngine := &stubEngine{name: analysis.EngineLLM, model: "google/gemini-2.5-flash", reply: reply}
	repo := NewMemoryRepo()
	ids := 0

	svc := &Service{
		Engines: map[string]analysis.Engine{
			analysis.EngineHeuristic: heuristics.NewEngine(),
			analysis.EngineLLM:       llmEngine,
		},
		DefaultEngine: analysis.EngineHeuristic,
		Uploads:       local.New(uploadsDir),
		Outputs:       local.New(outputsDir),
		Repo:          repo,
		Now:           func() time.Time { return fixedTime },
		NewID: func() string {
			ids++
			return "id-" + strings.Repeat("x", ids)
		},
	}
	return &testEnv{svc: svc, repo: repo, llm: llmEngine, uploadsDir: uploadsDir, outputsDir: outputsDir}
}
