package analyses

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"resume-matcher/internal/shared/markdown"
)

const (
	minScore = 0
	maxScore = 100
)

// Analysis is the structured verdict decoded from the model output.
type Analysis struct {
	MatchScore       int      `json:"matchScore"`
	AnalysisMarkdown string   `json:"analysisMarkdown"`
	AnalysisHTML     string   `json:"analysisHtml"`
	MatchedKeywords  []string `json:"matchedKeywords"`
	MissingKeywords  []string `json:"missingKeywords"`
}

// Result is the rendering-ready output of one analysis.
type Result struct {
	Analysis
	HighlightedHTML string `json:"highlightedHtml"`
	ResumeText      string `json:"resumeText"`
	JobDescription  string `json:"jobDescription"`
}

// ParseAnalysis decodes a normalized model payload.
//
// The payload must be a JSON object. Missing or mistyped fields fall back to zero values;
// match_score is clamped to [0,100].
func ParseAnalysis(normalized string) (Analysis, error) {
	if !gjson.Valid(normalized) {
		return Analysis{}, fmt.Errorf("%w: not valid JSON", ErrMalformedAnalysis)
	}
	root := gjson.Parse(normalized)
	if !root.IsObject() {
		return Analysis{}, fmt.Errorf("%w: expected a JSON object", ErrMalformedAnalysis)
	}

	md := ""
	if v := root.Get("analysis_markdown"); v.Type == gjson.String {
		md = v.Str
	}
	html, err := markdown.ToHTML(md)
	if err != nil {
		return Analysis{}, err
	}

	return Analysis{
		MatchScore:       parseScore(root.Get("match_score")),
		AnalysisMarkdown: md,
		AnalysisHTML:     html,
		MatchedKeywords:  stringList(root.Get("matched_keywords")),
		MissingKeywords:  stringList(root.Get("missing_keywords")),
	}, nil
}

// parseScore accepts numbers and numeric strings such as "85" or "85%".
func parseScore(v gjson.Result) int {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v.Str), "%")), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	f = math.Max(minScore, math.Min(maxScore, f))
	return int(math.Round(f))
}

func stringList(v gjson.Result) []string {
	out := []string{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		if item.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(item.Str); s != "" {
			out = append(out, s)
		}
	}
	return out
}
