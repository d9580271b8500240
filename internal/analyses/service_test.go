package analyses

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"resume-matcher/internal/extract"
	"resume-matcher/internal/llm"
	"resume-matcher/internal/shared/storage/object/local"
	"resume-matcher/internal/shared/telemetry"
)

type fakeGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	requests []llm.Request
}

func (f *fakeGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

const fencedAnalysis = "```json\n" + `{
  "match_score": 78,
  "analysis_markdown": "**Strengths**: Go services",
  "matched_keywords": ["Go", "Kubernetes"],
  "missing_keywords": ["Terraform"]
}` + "\n```"

func newTestService(t *testing.T, gen llm.Generator) (*Service, string) {
	t.Helper()
	telemetry.SetOutput(io.Discard)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })

	dir := t.TempDir()
	return &Service{
		LLM:       gen,
		Store:     local.New(dir),
		Extractor: extract.Extractor{},
	}, dir
}

func assertNoStagedFiles(t *testing.T, dir string) {
	t.Helper()
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk staging dir: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected staged files to be released, found %v", files)
	}
}

func TestAnalyzeUploadHappyPath(t *testing.T) {
	gen := &fakeGenerator{response: fencedAnalysis}
	svc, dir := newTestService(t, gen)

	res, err := svc.AnalyzeUpload(context.Background(), Upload{
		FileName: "resume.txt",
		Body:     strings.NewReader("Go engineer\nRunning Kubernetes clusters"),
	}, "Looking for Go and Terraform")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if res.MatchScore != 78 {
		t.Fatalf("expected score 78, got %d", res.MatchScore)
	}
	if !strings.Contains(res.AnalysisHTML, "<strong>Strengths</strong>") {
		t.Fatalf("expected rendered markdown, got %q", res.AnalysisHTML)
	}
	want := mark("Go") + " engineer<br>Running " + mark("Kubernetes") + " clusters"
	if res.HighlightedHTML != want {
		t.Fatalf("unexpected highlight\n got: %s\nwant: %s", res.HighlightedHTML, want)
	}
	if res.JobDescription != "Looking for Go and Terraform" {
		t.Fatalf("unexpected job description %q", res.JobDescription)
	}

	if gen.calls() != 1 {
		t.Fatalf("expected one generation call, got %d", gen.calls())
	}
	req := gen.requests[0]
	if req.Mode != llm.OutputJSON {
		t.Fatalf("expected JSON mode, got %s", req.Mode)
	}
	if req.SystemPrompt != analysisSystemPrompt {
		t.Fatalf("unexpected system prompt %q", req.SystemPrompt)
	}
	if !strings.Contains(req.UserQuery, "Running Kubernetes clusters") || !strings.Contains(req.UserQuery, "Looking for Go and Terraform") {
		t.Fatalf("query missing inputs: %q", req.UserQuery)
	}
	assertNoStagedFiles(t, dir)
}

func TestAnalyzeUploadUnsupportedFormat(t *testing.T) {
	gen := &fakeGenerator{response: fencedAnalysis}
	svc, dir := newTestService(t, gen)

	_, err := svc.AnalyzeUpload(context.Background(), Upload{
		FileName: "resume.exe",
		Body:     strings.NewReader("MZ"),
	}, "Go developer")

	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if !errors.Is(err, extract.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if perr.Stage != StageIdle {
		t.Fatalf("expected failure before extracting, got stage %s", perr.Stage)
	}
	if gen.calls() != 0 {
		t.Fatalf("expected no generation calls")
	}
	assertNoStagedFiles(t, dir)
}

func TestAnalyzeUploadEmptyResume(t *testing.T) {
	gen := &fakeGenerator{response: fencedAnalysis}
	svc, dir := newTestService(t, gen)

	_, err := svc.AnalyzeUpload(context.Background(), Upload{
		FileName: "resume.txt",
		Body:     strings.NewReader("  \n\t "),
	}, "Go developer")

	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Stage != StageExtracting {
		t.Fatalf("expected extracting failure, got %v", err)
	}
	if !errors.Is(err, ErrEmptyResume) {
		t.Fatalf("expected ErrEmptyResume, got %v", err)
	}
	if gen.calls() != 0 {
		t.Fatalf("expected no generation calls")
	}
	assertNoStagedFiles(t, dir)
}

func TestAnalyzeUploadReleasesStagingOnLLMFailure(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("%w: status 503", llm.ErrUpstreamUnavailable)}
	svc, dir := newTestService(t, gen)

	_, err := svc.AnalyzeUpload(context.Background(), Upload{
		FileName: "resume.txt",
		Body:     strings.NewReader("Go engineer"),
	}, "Go developer")

	var perr *PipelineError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PipelineError, got %v", err)
	}
	if perr.Stage != StageGenerating {
		t.Fatalf("expected generating stage, got %s", perr.Stage)
	}
	if perr.Message != "Failed to get response from AI." {
		t.Fatalf("unexpected message %q", perr.Message)
	}
	if perr.Transition() != "generating->error" {
		t.Fatalf("unexpected transition %q", perr.Transition())
	}
	assertNoStagedFiles(t, dir)
}

func TestAnalyzeTextMalformedResponse(t *testing.T) {
	gen := &fakeGenerator{response: "I could not produce JSON for this one."}
	svc, _ := newTestService(t, gen)

	_, err := svc.AnalyzeText(context.Background(), "Go engineer", "Go developer")
	var perr *PipelineError
	if !errors.As(err, &perr) || perr.Stage != StageParsing {
		t.Fatalf("expected parsing failure, got %v", err)
	}
	if !errors.Is(err, ErrMalformedAnalysis) {
		t.Fatalf("expected ErrMalformedAnalysis, got %v", err)
	}
	if perr.Message != "AI response error." {
		t.Fatalf("unexpected message %q", perr.Message)
	}
}

func TestAnalyzeTextValidation(t *testing.T) {
	gen := &fakeGenerator{response: fencedAnalysis}
	svc, _ := newTestService(t, gen)

	cases := []struct {
		name, resume, jd, message string
	}{
		{"blank job description", "Go engineer", "   ", "job description is required"},
		{"blank resume", "", "Go developer", "resume text is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AnalyzeText(context.Background(), tc.resume, tc.jd)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var perr *PipelineError
			if !errors.As(err, &perr) || perr.Message != tc.message {
				t.Fatalf("unexpected pipeline error %v", err)
			}
		})
	}
	if gen.calls() != 0 {
		t.Fatalf("expected no generation calls")
	}
}

func TestAnalyzeTextMissingKeywordsStillHighlights(t *testing.T) {
	gen := &fakeGenerator{response: `{"match_score": 10}`}
	svc, _ := newTestService(t, gen)

	res, err := svc.AnalyzeText(context.Background(), "line one\nline two", "Go developer")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.HighlightedHTML != "line one<br>line two" {
		t.Fatalf("unexpected highlight %q", res.HighlightedHTML)
	}
	if res.MatchedKeywords == nil || res.MissingKeywords == nil {
		t.Fatalf("expected empty keyword slices, got nil")
	}
}

func TestAnalyzeTextConfigurationError(t *testing.T) {
	gen := &fakeGenerator{err: llm.ErrConfiguration}
	svc, _ := newTestService(t, gen)

	_, err := svc.AnalyzeText(context.Background(), "Go engineer", "Go developer")
	if !errors.Is(err, llm.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
