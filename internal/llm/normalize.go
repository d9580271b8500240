package llm

import "strings"

const fence = "```"

// Normalize isolates a structured payload from conversational wrapping.
//
// The first fence tagged json wins; otherwise the first generic fence pair; otherwise the
// trimmed input. An unclosed fence runs to the end of the text.
func Normalize(raw string) string {
	if body, ok := taggedFenceBody(raw, "json"); ok {
		return strings.TrimSpace(body)
	}
	if body, ok := genericFenceBody(raw); ok {
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(raw)
}

// StripOuterFence removes a fence only when it wraps the whole response,
// leaving fenced snippets inside prose untouched.
func StripOuterFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, fence) || !strings.HasSuffix(trimmed, fence) || len(trimmed) < 2*len(fence) {
		return trimmed
	}
	inner := trimmed[len(fence) : len(trimmed)-len(fence)]
	if strings.Contains(inner, fence) {
		return trimmed
	}
	return strings.TrimSpace(dropInfoString(inner))
}

func taggedFenceBody(raw, tag string) (string, bool) {
	lower := asciiLower(raw)
	open := fence + tag
	from := 0
	for {
		idx := strings.Index(lower[from:], open)
		if idx < 0 {
			return "", false
		}
		start := from + idx + len(open)
		// ```jsonc or ```json5 are different tags.
		if start < len(raw) && isTagChar(raw[start]) {
			from = start
			continue
		}
		return untilFence(raw[start:]), true
	}
}

func genericFenceBody(raw string) (string, bool) {
	idx := strings.Index(raw, fence)
	if idx < 0 {
		return "", false
	}
	rest := raw[idx+len(fence):]
	body := untilFence(rest)
	return dropInfoString(body), true
}

func untilFence(s string) string {
	if end := strings.Index(s, fence); end >= 0 {
		return s[:end]
	}
	return s
}

// dropInfoString strips a language tag sitting alone on the opening fence line.
func dropInfoString(body string) string {
	nl := strings.IndexByte(body, '\n')
	if nl <= 0 {
		return body
	}
	first := strings.TrimSpace(body[:nl])
	if first == "" {
		return body
	}
	for i := 0; i < len(first); i++ {
		if !isTagChar(first[i]) {
			return body
		}
	}
	return body[nl+1:]
}

func isTagChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '-' || b == '_' || b == '+'
}

// asciiLower lowercases ASCII letters only so byte offsets match the input.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
