package analyses

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/extract"
	"resume-matcher/internal/llm"
	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/server/respond"
)

const defaultMaxUploadBytes = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
}

// NewHandler constructs a Handler. A non-positive limit falls back to 10MB.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyzeUpload)
	rg.POST("/analyze/text", h.analyzeText)
}

func (h *Handler) analyzeUpload(c *gin.Context) {
	// Multipart overhead is small next to the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes+1<<20)

	fileHeader, err := c.FormFile("resume_file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge, "resume file is too large", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "resume_file is required", nil)
		return
	}
	if fileHeader.Size > h.MaxUploadBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, ErrorCodeTooLarge, "resume file is too large", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "unable to read resume file", nil)
		return
	}
	defer file.Close()

	result, err := h.Svc.AnalyzeUpload(c.Request.Context(), Upload{
		FileName: fileHeader.Filename,
		Body:     file,
	}, c.PostForm("job_description"))
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeResult(c, result)
}

type analyzeTextRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

func (h *Handler) analyzeText(c *gin.Context) {
	var req analyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "invalid request body", nil)
		return
	}

	result, err := h.Svc.AnalyzeText(c.Request.Context(), req.ResumeText, req.JobDescription)
	if err != nil {
		writeError(c, err)
		return
	}
	h.writeResult(c, result)
}

func (h *Handler) writeResult(c *gin.Context, result Result) {
	c.Set(middleware.StatusTransitionKey, string(StageHighlighting)+"->"+string(StageDone))
	respond.OK(c, result)
}

func writeError(c *gin.Context, err error) {
	message := "Unexpected error while analyzing the resume."
	var perr *PipelineError
	if errors.As(err, &perr) {
		c.Set(middleware.StatusTransitionKey, perr.Transition())
		message = perr.Message
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, message, nil)
	case errors.Is(err, extract.ErrUnsupportedFormat):
		respond.Error(c, http.StatusUnsupportedMediaType, ErrorCodeUnsupportedFormat, message, nil)
	case errors.Is(err, ErrEmptyResume):
		respond.Error(c, http.StatusUnprocessableEntity, ErrorCodeEmptyResume, message, nil)
	case errors.Is(err, llm.ErrConfiguration):
		respond.Error(c, http.StatusInternalServerError, ErrorCodeLLMNotConfigured, message, nil)
	case errors.Is(err, llm.ErrUpstreamUnavailable):
		respond.Error(c, http.StatusBadGateway, ErrorCodeLLMUnavailable, message, nil)
	case errors.Is(err, ErrMalformedAnalysis):
		respond.Error(c, http.StatusBadGateway, ErrorCodeMalformedAnalysis, message, nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, ErrorCodeCancelled, message, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, message, nil)
	}
}
