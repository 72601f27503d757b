package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"meeting-backend/internal/analysis"
	"meeting-backend/internal/extract"
	"meeting-backend/internal/shared/cache"
	"meeting-backend/internal/shared/metrics"
	"meeting-backend/internal/shared/storage/object"
	"meeting-backend/internal/shared/telemetry"
	"meeting-backend/internal/shared/util"
	"meeting-backend/internal/transcript"
)

// outputTimeLayout mirrors an ISO-8601 UTC timestamp with ':' replaced by '-'
// and the fractional seconds dropped.
const outputTimeLayout = "2006-01-02T15-04-05"

// Service runs analyses and manages saved outputs.
type Service struct {
	Engines       map[string]analysis.Engine
	DefaultEngine string

	// Uploads holds uploaded documents for the duration of one request. Optional.
	Uploads object.ObjectStore
	Outputs object.ObjectStore
	Repo    Repo

	Cache    cache.Cache
	CacheTTL time.Duration

	Now   func() time.Time
	NewID func() string
}

// Upload is a document received from a client.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Outcome is a finished analysis.
type Outcome struct {
	Analysis   json.RawMessage
	OutputFile OutputFile
	Engine     string
	Model      string
	Cached     bool
	Saved      bool
}

// Engine resolves an engine by name; an empty name selects the default.
func (s *Service) Engine(name string) (analysis.Engine, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = s.DefaultEngine
	}
	eng, ok := s.Engines[name]
	if !ok || eng == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
	return eng, nil
}

// AnalyzeUpload stages the upload, extracts its text and analyzes it. The
// staged copy is removed on every path.
func (s *Service) AnalyzeUpload(ctx context.Context, engineName string, up Upload) (Outcome, error) {
	eng, err := s.Engine(engineName)
	if err != nil {
		return Outcome{}, err
	}
	if len(up.Data) == 0 {
		return Outcome{}, ErrNoFile
	}
	if err := CheckUploadType(up.ContentType, up.Name); err != nil {
		return Outcome{}, err
	}
	metrics.ObserveUpload(int64(len(up.Data)))

	extractCtx, span := telemetry.StartSpan(ctx, "analysis.extract",
		trace.WithAttributes(attribute.String("file.name", up.Name), attribute.Int("file.size", len(up.Data))))
	text, err := s.extract(extractCtx, up)
	endSpan(span, err)
	if err != nil {
		return Outcome{}, &extractionError{cause: err}
	}
	return s.analyze(ctx, eng, text, up.Name)
}

// CheckUploadType accepts an upload whose content type or file name marks it
// as a .docx document.
func CheckUploadType(contentType, name string) error {
	if !extract.IsDocx(contentType, name) {
		return fmt.Errorf("%w: %q", ErrInvalidFileType, name)
	}
	return nil
}

// AnalyzeText analyzes transcript text directly.
func (s *Service) AnalyzeText(ctx context.Context, engineName, text, sourceName string) (Outcome, error) {
	eng, err := s.Engine(engineName)
	if err != nil {
		return Outcome{}, err
	}
	return s.analyze(ctx, eng, text, sourceName)
}

func (s *Service) extract(ctx context.Context, up Upload) (string, error) {
	if s.Uploads == nil {
		return extract.ExtractTextFromBytes(ctx, up.Data, up.Name)
	}
	key := s.newID() + strings.ToLower(filepath.Ext(up.Name))
	if _, err := s.Uploads.Put(ctx, key, up.ContentType, bytes.NewReader(up.Data)); err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	defer func() {
		if err := s.Uploads.Delete(context.WithoutCancel(ctx), key); err != nil {
			telemetry.Warn("upload.cleanup_failed", map[string]any{
				"request_id": requestIDFromContext(ctx),
				"key":        key,
				"err":        err,
			})
		}
	}()
	return extract.ExtractText(ctx, s.Uploads, key, up.Name)
}

func (s *Service) analyze(ctx context.Context, eng analysis.Engine, text, sourceName string) (Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return Outcome{}, ErrEmptyDocument
	}

	ctx, span := telemetry.StartSpan(ctx, "analysis.run",
		trace.WithAttributes(attribute.String("analysis.engine", eng.Name()), attribute.String("analysis.model", eng.Model())))
	defer span.End()

	requestID := requestIDFromContext(ctx)
	hash := util.HashText(text)
	cacheKey := cache.Key(eng.Name(), eng.Model(), hash)
	started := s.now()

	raw, cached := s.cached(ctx, cacheKey)
	if !cached {
		var err error
		raw, err = eng.Analyze(ctx, text)
		if err != nil {
			metrics.ObserveAnalysis(eng.Name(), metrics.OutcomeFailure, s.now().Sub(started))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			telemetry.Error("analysis.failed", map[string]any{
				"request_id": requestID,
				"engine":     eng.Name(),
				"model":      eng.Model(),
				"err":        err,
			})
			return Outcome{}, err
		}
		if err := s.cacheOrNop().Set(ctx, cacheKey, raw, s.CacheTTL); err != nil {
			telemetry.Warn("cache.set_failed", map[string]any{"request_id": requestID, "key": cacheKey, "err": err})
		}
	}

	outcome := Outcome{
		Analysis: raw,
		Engine:   eng.Name(),
		Model:    eng.Model(),
		Cached:   cached,
	}
	outcome.OutputFile, outcome.Saved = s.save(ctx, raw)
	if outcome.Saved {
		s.record(ctx, outcome, text, hash, sourceName)
	}

	if cached {
		metrics.ObserveAnalysis(eng.Name(), metrics.OutcomeCached, 0)
	} else {
		metrics.ObserveAnalysis(eng.Name(), metrics.OutcomeSuccess, s.now().Sub(started))
	}
	telemetry.Info("analysis.completed", map[string]any{
		"request_id":  requestID,
		"engine":      eng.Name(),
		"model":       eng.Model(),
		"cached":      cached,
		"output_file": outcome.OutputFile.Filename,
		"duration_ms": s.now().Sub(started).Milliseconds(),
	})
	return outcome, nil
}

func (s *Service) cached(ctx context.Context, key string) (json.RawMessage, bool) {
	value, ok, err := s.cacheOrNop().Get(ctx, key)
	if err != nil {
		telemetry.Warn("cache.get_failed", map[string]any{"request_id": requestIDFromContext(ctx), "key": key, "err": err})
		return nil, false
	}
	if !ok || !json.Valid(value) {
		return nil, false
	}
	return value, true
}

// save writes the indented result to the outputs store. Failures are logged
// and the analysis is still returned to the caller.
func (s *Service) save(ctx context.Context, raw json.RawMessage) (OutputFile, bool) {
	timestamp := s.now().UTC().Format(outputTimeLayout)
	filename := "analysis_" + timestamp + ".json"
	file := OutputFile{
		Filename:  filename,
		Path:      filename,
		URL:       "/api/download?file=" + url.QueryEscape(filename),
		Timestamp: timestamp,
	}
	if s.Outputs == nil {
		return file, false
	}
	file.Path = s.Outputs.Location(filename)

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		telemetry.Warn("output.save_failed", map[string]any{"request_id": requestIDFromContext(ctx), "file": filename, "err": err})
		return file, false
	}
	if _, err := s.Outputs.Put(ctx, filename, "application/json", &pretty); err != nil {
		telemetry.Warn("output.save_failed", map[string]any{"request_id": requestIDFromContext(ctx), "file": filename, "err": err})
		return file, false
	}
	telemetry.Info("output.saved", map[string]any{"request_id": requestIDFromContext(ctx), "path": file.Path})
	return file, true
}

func (s *Service) record(ctx context.Context, outcome Outcome, text, hash, sourceName string) {
	if s.Repo == nil {
		return
	}
	utterances := transcript.Parse(text)
	rec := OutputRecord{
		ID:             s.newID(),
		Filename:       outcome.OutputFile.Filename,
		StorageKey:     outcome.OutputFile.Filename,
		Engine:         outcome.Engine,
		Model:          outcome.Model,
		SourceName:     sourceName,
		Speakers:       len(transcript.Speakers(utterances)),
		Utterances:     len(utterances),
		TranscriptHash: hash,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.Repo.Insert(ctx, rec); err != nil {
		telemetry.Warn("catalog.insert_failed", map[string]any{"request_id": requestIDFromContext(ctx), "file": rec.Filename, "err": err})
	}
}

// OpenOutput opens a saved analysis by its bare file name.
func (s *Service) OpenOutput(ctx context.Context, filename string) (io.ReadCloser, error) {
	if filename == "" {
		return nil, ErrNoFileName
	}
	if err := util.CheckPlainFileName(filename); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPathTraversal, err)
	}
	if s.Outputs == nil {
		return nil, ErrDownloadNotFound
	}
	body, err := s.Outputs.Open(ctx, filename)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) || errors.Is(err, object.ErrInvalidKey) {
			return nil, fmt.Errorf("%w: %s", ErrDownloadNotFound, filename)
		}
		return nil, err
	}
	return body, nil
}

// List returns catalog entries newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]OutputRecord, error) {
	if s.Repo == nil {
		return []OutputRecord{}, nil
	}
	return s.Repo.List(ctx, limit, offset)
}

func (s *Service) cacheOrNop() cache.Cache {
	if s.Cache == nil {
		return cache.Nop{}
	}
	return s.Cache
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
