package assist

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/llm"
	"resume-matcher/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the auxiliary generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate_questions", h.questions)
	rg.POST("/generate_cover_letter", h.coverLetter)
	rg.POST("/rewrite_bullet", h.rewriteBullet)
}

type pairRequest struct {
	JobDescription string `json:"job_description" binding:"required"`
	ResumeText     string `json:"resume_text" binding:"required"`
}

type bulletRequest struct {
	BulletText string `json:"bullet_text"`
}

type htmlResponse struct {
	HTML string `json:"html"`
}

func (h *Handler) questions(c *gin.Context) {
	var req pairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "job_description and resume_text are required", nil)
		return
	}
	html, err := h.Svc.InterviewQuestions(c.Request.Context(), req.JobDescription, req.ResumeText)
	writeResult(c, html, err)
}

func (h *Handler) coverLetter(c *gin.Context) {
	var req pairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "job_description and resume_text are required", nil)
		return
	}
	html, err := h.Svc.CoverLetter(c.Request.Context(), req.JobDescription, req.ResumeText)
	writeResult(c, html, err)
}

func (h *Handler) rewriteBullet(c *gin.Context) {
	var req bulletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No text provided", nil)
		return
	}
	html, err := h.Svc.RewriteBullet(c.Request.Context(), req.BulletText)
	writeResult(c, html, err)
}

func writeResult(c *gin.Context, html string, err error) {
	if err == nil {
		respond.OK(c, htmlResponse{HTML: html})
		return
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": "), nil)
	case errors.Is(err, llm.ErrConfiguration):
		respond.Error(c, http.StatusInternalServerError, "llm_not_configured", "The AI service is not configured.", nil)
	case errors.Is(err, llm.ErrUpstreamUnavailable):
		respond.Error(c, http.StatusBadGateway, "llm_unavailable", "Failed to get response from AI.", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "request_cancelled", "The request was cancelled.", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "Failed to generate content.", nil)
	}
}
