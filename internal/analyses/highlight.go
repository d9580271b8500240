package analyses

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	highlightOpen  = `<span class="bg-green-200 text-green-800 font-semibold px-1 rounded">`
	highlightClose = `</span>`
	lineBreak      = "<br>"
)

// Highlight HTML-escapes text, wraps every case-insensitive occurrence of the keywords and
// converts newlines to <br> as the last step.
//
// Longer keywords are tried first at each position, so "JavaScript" is marked as one unit
// even when "Java" is also a keyword. Matches are found on the raw text in a single pass;
// neither escaped text nor inserted markup is ever scanned again.
func Highlight(text string, keywords []string) string {
	var b strings.Builder
	last := 0
	if re := keywordPattern(keywords); re != nil {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			b.WriteString(html.EscapeString(text[last:loc[0]]))
			b.WriteString(highlightOpen)
			b.WriteString(html.EscapeString(text[loc[0]:loc[1]]))
			b.WriteString(highlightClose)
			last = loc[1]
		}
	}
	b.WriteString(html.EscapeString(text[last:]))
	return strings.ReplaceAll(b.String(), "\n", lineBreak)
}

func keywordPattern(keywords []string) *regexp.Regexp {
	terms := orderKeywords(keywords)
	if len(terms) == 0 {
		return nil
	}
	quoted := make([]string, len(terms))
	for i, term := range terms {
		quoted[i] = regexp.QuoteMeta(term)
	}
	// RE2 alternation is leftmost-first, so list order decides ties at a position.
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

// orderKeywords trims, drops blanks and case-insensitive duplicates, then sorts longest first.
func orderKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	terms := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, kw)
	}
	sort.SliceStable(terms, func(i, j int) bool {
		return utf8.RuneCountInString(terms[i]) > utf8.RuneCountInString(terms[j])
	})
	return terms
}
