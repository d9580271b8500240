package analyses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"resume-matcher/internal/extract"
	"resume-matcher/internal/llm"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/storage/object"
	"resume-matcher/internal/shared/telemetry"
	"resume-matcher/internal/shared/util"
)

const stagingNamespace = "analyses"

// Stage is a step of the analysis workflow.
type Stage string

const (
	StageIdle         Stage = "idle"
	StageExtracting   Stage = "extracting"
	StageGenerating   Stage = "generating"
	StageNormalizing  Stage = "normalizing"
	StageParsing      Stage = "parsing"
	StageHighlighting Stage = "highlighting"
	StageDone         Stage = "done"
	StageError        Stage = "error"
)

// PipelineError reports the stage that failed and a message safe to show to users.
type PipelineError struct {
	Stage   Stage
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("analysis failed while %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Transition renders the final state change, e.g. "parsing->error".
func (e *PipelineError) Transition() string {
	return string(e.Stage) + "->" + string(StageError)
}

// TextExtractor turns an uploaded file into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, formatHint string) (string, error)
}

// Upload is a résumé file received from a client.
type Upload struct {
	FileName string
	Body     io.Reader
}

// Service runs the analysis workflow.
type Service struct {
	LLM       llm.Generator
	Store     object.ObjectStore
	Extractor TextExtractor
}

// AnalyzeUpload stages the upload, extracts its text and analyzes it against the job description.
// The staged file is deleted on every exit path.
func (s *Service) AnalyzeUpload(ctx context.Context, up Upload, jobDescription string) (Result, error) {
	r := s.begin()
	if err := validateJobDescription(jobDescription); err != nil {
		return Result{}, r.fail(err)
	}
	if _, err := util.SanitizeFileName(up.FileName); err != nil {
		return Result{}, r.fail(fmt.Errorf("%w: %v", ErrInvalidInput, err))
	}
	if _, err := extract.DetectFormat(up.FileName); err != nil {
		return Result{}, r.fail(err)
	}

	r.advance(StageExtracting)
	text, err := s.extractUpload(ctx, up)
	if err != nil {
		return Result{}, r.fail(err)
	}
	return s.analyze(ctx, r, text, jobDescription)
}

// AnalyzeText analyzes résumé text that was already extracted.
func (s *Service) AnalyzeText(ctx context.Context, resumeText, jobDescription string) (Result, error) {
	r := s.begin()
	if err := validateJobDescription(jobDescription); err != nil {
		return Result{}, r.fail(err)
	}
	if strings.TrimSpace(resumeText) == "" {
		return Result{}, r.fail(fmt.Errorf("%w: resume text is required", ErrInvalidInput))
	}
	return s.analyze(ctx, r, resumeText, jobDescription)
}

func (s *Service) analyze(ctx context.Context, r *run, resumeText, jobDescription string) (Result, error) {
	r.advance(StageGenerating)
	raw, err := s.LLM.Generate(ctx, llm.Request{
		UserQuery:    buildAnalysisQuery(jobDescription, resumeText),
		SystemPrompt: analysisSystemPrompt,
		Mode:         llm.OutputJSON,
	})
	if err != nil {
		return Result{}, r.fail(err)
	}

	r.advance(StageNormalizing)
	cleaned := llm.Normalize(raw)

	r.advance(StageParsing)
	analysis, err := ParseAnalysis(cleaned)
	if err != nil {
		telemetry.Warn("analysis.malformed", map[string]any{
			"error":       err.Error(),
			"raw_preview": preview(raw, 200),
		})
		return Result{}, r.fail(err)
	}

	r.advance(StageHighlighting)
	highlighted := Highlight(resumeText, analysis.MatchedKeywords)

	r.done(analysis.MatchScore)
	return Result{
		Analysis:        analysis,
		HighlightedHTML: highlighted,
		ResumeText:      resumeText,
		JobDescription:  jobDescription,
	}, nil
}

func (s *Service) extractUpload(ctx context.Context, up Upload) (string, error) {
	key, size, mimeType, err := s.Store.Save(ctx, stagingNamespace, up.FileName, up.Body)
	if err != nil {
		return "", fmt.Errorf("stage upload: %w", err)
	}
	defer func() {
		// Cleanup must run even when the request context is already cancelled.
		if err := s.Store.Delete(context.WithoutCancel(ctx), key); err != nil {
			telemetry.Error("analysis.cleanup_failed", map[string]any{"storage_key": key, "error": err.Error()})
		}
	}()
	telemetry.Debug("analysis.staged", map[string]any{"storage_key": key, "size_bytes": size, "mime_type": mimeType})

	body, err := s.Store.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("open staged upload: %w", err)
	}
	data, err := io.ReadAll(body)
	_ = body.Close()
	if err != nil {
		return "", fmt.Errorf("read staged upload: %w", err)
	}

	text, err := s.Extractor.Extract(ctx, data, up.FileName)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResume
	}
	return text, nil
}

func validateJobDescription(jobDescription string) error {
	if strings.TrimSpace(jobDescription) == "" {
		return fmt.Errorf("%w: job description is required", ErrInvalidInput)
	}
	return nil
}

// run tracks one pass through the state machine.
type run struct {
	stage   Stage
	started time.Time
}

func (s *Service) begin() *run {
	metrics.IncAnalysisStarted()
	return &run{stage: StageIdle, started: time.Now()}
}

func (r *run) advance(next Stage) {
	r.stage = next
}

func (r *run) elapsedMs() float64 {
	return float64(time.Since(r.started).Microseconds()) / 1000.0
}

func (r *run) done(score int) {
	telemetry.Info("analysis.complete", map[string]any{
		"status_transition": string(r.stage) + "->" + string(StageDone),
		"match_score":       score,
		"duration_ms":       r.elapsedMs(),
	})
	r.stage = StageDone
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(r.elapsedMs())
}

func (r *run) fail(err error) error {
	perr := &PipelineError{Stage: r.stage, Message: userMessage(err), Err: err}
	telemetry.Warn("analysis.failed", map[string]any{
		"status_transition": perr.Transition(),
		"error":             err.Error(),
		"duration_ms":       r.elapsedMs(),
	})
	r.stage = StageError
	metrics.IncAnalysisFailed()
	metrics.ObserveAnalysisDurationMs(r.elapsedMs())
	return perr
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return strings.TrimPrefix(err.Error(), ErrInvalidInput.Error()+": ")
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return "Unsupported file type. Upload a PDF, DOCX or TXT file."
	case errors.Is(err, ErrEmptyResume):
		return "No text could be extracted from the resume."
	case errors.Is(err, llm.ErrConfiguration):
		return "The AI service is not configured."
	case errors.Is(err, llm.ErrUpstreamUnavailable):
		return "Failed to get response from AI."
	case errors.Is(err, ErrMalformedAnalysis):
		return "AI response error."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was cancelled."
	default:
		return "Unexpected error while analyzing the resume."
	}
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
