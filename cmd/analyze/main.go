package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"resume-matcher/internal/analyses"
	"resume-matcher/internal/bootstrap"
	"resume-matcher/internal/extract"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()

	resumePath := flag.String("resume", "", "Path to resume file (pdf, docx or txt)")
	jdPath := flag.String("jd", "", "Path to job description file")
	outPath := flag.String("out", "", "Path to write JSON output (optional)")
	model := flag.String("model", cfg.LLMModel, "LLM model")
	flag.Parse()

	if strings.TrimSpace(*resumePath) == "" {
		exitErr("resume path is required")
	}
	if strings.TrimSpace(*jdPath) == "" {
		exitErr("job description path is required")
	}
	telemetry.SetOutput(os.Stderr)
	telemetry.SetLevel(cfg.LogLevel)

	ctx := context.Background()
	resumeText, err := extract.File(ctx, *resumePath, "")
	if err != nil {
		exitErr(fmt.Sprintf("extract resume text: %v", err))
	}
	jdBytes, err := os.ReadFile(*jdPath)
	if err != nil {
		exitErr(fmt.Sprintf("read job description: %v", err))
	}

	cfg.LLMModel = *model
	app, err := bootstrap.Build(cfg)
	if err != nil {
		exitErr(fmt.Sprintf("bootstrap: %v", err))
	}

	result, err := app.AnalysesService.AnalyzeText(ctx, resumeText, string(jdBytes))
	if err != nil {
		exitErr(describe(err))
	}

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		exitErr(fmt.Sprintf("format json: %v", err))
	}
	pretty = append(pretty, '\n')

	if *outPath != "" {
		if err := os.WriteFile(*outPath, pretty, 0o644); err != nil {
			exitErr(fmt.Sprintf("write output: %v", err))
		}
	}
	if _, err := os.Stdout.Write(pretty); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func describe(err error) string {
	var perr *analyses.PipelineError
	if errors.As(err, &perr) {
		return fmt.Sprintf("%s (%s): %v", perr.Message, perr.Transition(), perr.Err)
	}
	return err.Error()
}

func exitErr(msg string) {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
