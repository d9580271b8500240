package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resume-matcher/internal/llm"
	"resume-matcher/internal/shared/markdown"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/telemetry"
)

// ErrInvalidInput marks requests missing required text.
var ErrInvalidInput = errors.New("invalid input")

// Kind names an auxiliary generation.
type Kind string

const (
	KindQuestions     Kind = "interview_questions"
	KindCoverLetter   Kind = "cover_letter"
	KindRewriteBullet Kind = "rewrite_bullet"
)

// Service produces the auxiliary free-text generations.
type Service struct {
	LLM llm.Generator
}

// InterviewQuestions drafts technical and behavioral questions for the candidate.
func (s *Service) InterviewQuestions(ctx context.Context, jobDescription, resumeText string) (string, error) {
	if err := requirePair(jobDescription, resumeText); err != nil {
		return "", err
	}
	return s.generate(ctx, KindQuestions, llm.Request{
		UserQuery:    questionsQuery(jobDescription, resumeText),
		SystemPrompt: interviewerPrompt,
		Mode:         llm.OutputText,
	})
}

// CoverLetter drafts a cover letter for the job from the résumé.
func (s *Service) CoverLetter(ctx context.Context, jobDescription, resumeText string) (string, error) {
	if err := requirePair(jobDescription, resumeText); err != nil {
		return "", err
	}
	return s.generate(ctx, KindCoverLetter, llm.Request{
		UserQuery:    coverLetterQuery(jobDescription, resumeText),
		SystemPrompt: careerCoachPrompt,
		Mode:         llm.OutputText,
	})
}

// RewriteBullet proposes three rewrites of a single résumé bullet.
func (s *Service) RewriteBullet(ctx context.Context, bullet string) (string, error) {
	if strings.TrimSpace(bullet) == "" {
		return "", fmt.Errorf("%w: No text provided", ErrInvalidInput)
	}
	return s.generate(ctx, KindRewriteBullet, llm.Request{
		UserQuery:    rewriteBulletQuery(bullet),
		SystemPrompt: resumeWriterPrompt,
		Mode:         llm.OutputText,
	})
}

func (s *Service) generate(ctx context.Context, kind Kind, req llm.Request) (string, error) {
	raw, err := s.LLM.Generate(ctx, req)
	if err != nil {
		metrics.IncAssistFailed()
		telemetry.Warn("assist.failed", map[string]any{"kind": string(kind), "error": err.Error()})
		return "", err
	}

	// Text replies are often wrapped in ```html or ```markdown fences.
	html, err := markdown.ToHTMLWithRawHTML(llm.StripOuterFence(raw))
	if err != nil {
		metrics.IncAssistFailed()
		return "", fmt.Errorf("render %s: %w", kind, err)
	}
	metrics.IncAssistGenerated()
	telemetry.Info("assist.complete", map[string]any{"kind": string(kind), "html_bytes": len(html)})
	return html, nil
}

func requirePair(jobDescription, resumeText string) error {
	if strings.TrimSpace(jobDescription) == "" {
		return fmt.Errorf("%w: job_description is required", ErrInvalidInput)
	}
	if strings.TrimSpace(resumeText) == "" {
		return fmt.Errorf("%w: resume_text is required", ErrInvalidInput)
	}
	return nil
}
