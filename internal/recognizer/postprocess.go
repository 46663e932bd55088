package recognizer

import (
	"regexp"
	"strings"
)

var (
	// bulletPattern matches "- " or "* " list markers at the start of a line
	bulletPattern = regexp.MustCompile(`(^|\n)([-*])\s+`)
	// headerBodyPattern matches a marker heading with trailing content on the
	// same line, e.g. "## a) Proof"
	headerBodyPattern = regexp.MustCompile(`(?m)^(#+\s*[a-zA-Z0-9]+\))\s+(.+)$`)
)

// Clean applies the transcript cleanups every engine output needs before the
// conversion pipeline sees it. Each step is a pure string transform.
func Clean(content string) string {
	content = StripCodeFences(content)
	content = NormalizePercent(content)
	content = FixDefinitionSign(content)
	content = BulletsToQuotes(content)
	content = SplitHeaderBody(content)
	return content
}

// StripCodeFences removes a surrounding markdown code fence. Models often
// wrap the whole transcript in one despite instructions.
func StripCodeFences(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// NormalizePercent forces a single escaping convention for percent signs:
// unescape any "\%" first, then escape every "%". Mixed conventions in one
// transcript otherwise survive into the LaTeX output.
func NormalizePercent(content string) string {
	content = strings.ReplaceAll(content, `\%`, "%")
	return strings.ReplaceAll(content, "%", `\%`)
}

// FixDefinitionSign collapses the ": =" whitespace misreading into ":=".
func FixDefinitionSign(content string) string {
	return strings.ReplaceAll(content, ": =", ":=")
}

// BulletsToQuotes rewrites "-" and "*" list markers into the "> " quote
// markers the structure builder expects, spacing items apart.
func BulletsToQuotes(content string) string {
	return bulletPattern.ReplaceAllString(content, "$1\n\n> ")
}

// SplitHeaderBody moves trailing content off marker heading lines, so
// "## a) Proof" becomes a heading plus a body line.
func SplitHeaderBody(content string) string {
	return headerBodyPattern.ReplaceAllString(content, "$1\n$2")
}
