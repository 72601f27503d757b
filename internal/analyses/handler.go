package analyses

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"meeting-backend/internal/shared/server/middleware"
	"meeting-backend/internal/shared/server/respond"
	"meeting-backend/internal/shared/telemetry"
	"meeting-backend/internal/shared/util"
)

// multipartOverhead is allowed on top of MaxUploadBytes for form boundaries and headers.
const multipartOverhead = 64 << 10

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64

	// Reported by the health endpoint.
	OpenRouterConfigured bool
	Model                string
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, maxUploadBytes int64, openRouterConfigured bool, model string) *Handler {
	return &Handler{
		Svc:                  svc,
		MaxUploadBytes:       maxUploadBytes,
		OpenRouterConfigured: openRouterConfigured,
		Model:                model,
	}
}

// RegisterRoutes attaches the API routes. analyzeMW runs only on the analyze endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, analyzeMW ...gin.HandlerFunc) {
	chain := func(final gin.HandlerFunc) []gin.HandlerFunc {
		handlers := make([]gin.HandlerFunc, 0, len(analyzeMW)+1)
		return append(append(handlers, analyzeMW...), final)
	}
	rg.POST("/analyze", chain(h.analyzeUpload)...)
	rg.POST("/analyze/text", chain(h.analyzeText)...)
	rg.GET("/download", h.download)
	rg.GET("/health", h.health)
	rg.GET("/analyses", h.listAnalyses)
}

func (h *Handler) analyzeUpload(c *gin.Context) {
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+multipartOverhead)
	}
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		respond.Error(c, http.StatusBadRequest, msgNoFile)
		return
	}
	if h.MaxUploadBytes > 0 && header.Size > h.MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, msgTooLarge)
		return
	}
	if err := CheckUploadType(header.Header.Get("Content-Type"), header.Filename); err != nil {
		h.writeOutcome(c, Outcome{}, err)
		return
	}

	f, err := header.Open()
	if err != nil {
		respond.Failure(c, http.StatusInternalServerError, msgGenericFailure)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respond.Failure(c, http.StatusInternalServerError, msgGenericFailure)
		return
	}

	name, err := util.SanitizeFileName(filepath.Base(header.Filename))
	if err != nil {
		name = "upload.docx"
	}
	engine := c.Query("engine")
	if engine == "" {
		engine = c.PostForm("engine")
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	telemetry.Info("analysis.upload", map[string]any{
		"request_id": requestIDFromContext(ctx),
		"file_name":  name,
		"size":       len(data),
		"engine":     engine,
	})
	outcome, err := h.Svc.AnalyzeUpload(ctx, engine, Upload{
		Name:        name,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	h.writeOutcome(c, outcome, err)
}

func (h *Handler) analyzeText(c *gin.Context) {
	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respond.Error(c, http.StatusBadRequest, msgNoText)
		return
	}
	engine := req.Engine
	if engine == "" {
		engine = c.Query("engine")
	}

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	outcome, err := h.Svc.AnalyzeText(ctx, engine, req.Text, "")
	h.writeOutcome(c, outcome, err)
}

func (h *Handler) writeOutcome(c *gin.Context, outcome Outcome, err error) {
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownEngine):
			respond.Error(c, http.StatusBadRequest, fmt.Sprintf("Unknown analysis engine. Use %q or %q", "heuristic", "llm"))
		case errors.Is(err, ErrNoFile):
			respond.Error(c, http.StatusBadRequest, msgNoFile)
		case errors.Is(err, ErrInvalidFileType):
			respond.Error(c, http.StatusBadRequest, msgInvalidType)
		default:
			respond.Failure(c, http.StatusInternalServerError, failureMessage(err))
		}
		return
	}

	c.Set("engine", outcome.Engine)
	c.Set("outputFile", outcome.OutputFile.Filename)
	respond.OK(c, AnalyzeResponse{
		Success:    true,
		Analysis:   outcome.Analysis,
		OutputFile: outcome.OutputFile,
	})
}

func (h *Handler) download(c *gin.Context) {
	filename := c.Query("file")
	body, err := h.Svc.OpenOutput(c.Request.Context(), filename)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoFileName):
			respond.Error(c, http.StatusBadRequest, msgNoFileName)
		case errors.Is(err, ErrPathTraversal):
			respond.Error(c, http.StatusBadRequest, msgInvalidName)
		case errors.Is(err, ErrDownloadNotFound):
			respond.Error(c, http.StatusNotFound, msgFileNotFound)
		default:
			respond.Error(c, http.StatusInternalServerError, msgDownloadFailed)
		}
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, -1, "application/json", body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s"`, filename),
	})
}

func (h *Handler) health(c *gin.Context) {
	respond.OK(c, HealthResponse{
		Status:               "ok",
		OpenRouterConfigured: h.OpenRouterConfigured,
		Model:                h.Model,
		Engine:               h.Svc.DefaultEngine,
	})
}

func (h *Handler) listAnalyses(c *gin.Context) {
	limit := defaultListLimit
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to list analyses")
		return
	}
	respond.OK(c, ListResponse{Items: items, Limit: limit, Offset: offset})
}
