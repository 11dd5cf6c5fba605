// Package langdetect guesses the programming language of a text snippet so
// pasted code can be fenced with the right info string.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Text is returned when no language is recognised.
const Text = "text"

// Fence tags produced by the pattern rules.
const (
	langGo         = "go"
	langPython     = "python"
	langJavaScript = "javascript"
	langJSON       = "json"
	langYAML       = "yaml"
	langHTML       = "html"
	langSQL        = "sql"
	langRust       = "rust"
	langDockerfile = "dockerfile"
	langBash       = "bash"
)

// rule reports a language for content, or "" when it does not apply.
type rule func(content, trimmed []byte) string

// rules are tried in order of specificity before the classifier.
//
//nolint:gochecknoglobals // Read-only rule table.
var rules = []rule{
	detectGo,
	detectPython,
	detectHTML,
	detectJSON,
	detectDockerfile,
	detectSQL,
	detectRust,
	detectJavaScript,
	detectYAML,
}

//nolint:gochecknoglobals // Read-only classifier candidate list.
var candidates = []string{
	"Go", "Python", "Shell", "JavaScript", "TypeScript",
	"Ruby", "Rust", "Java", "C", "C++", "SQL", "JSON",
	"YAML", "HTML", "CSS", "Dockerfile",
}

// Detect returns the fence tag for content, or Text when unsure.
// A shebang wins over the pattern rules, which win over the classifier.
func Detect(content []byte) string {
	if len(content) == 0 {
		return Text
	}

	if lang, safe := enry.GetLanguageByShebang(content); safe {
		return normalize(lang)
	}

	trimmed := bytes.TrimSpace(content)
	for _, r := range rules {
		if lang := r(content, trimmed); lang != "" {
			return lang
		}
	}

	if lang, safe := enry.GetLanguageByClassifier(content, candidates); safe && lang != "" {
		return normalize(lang)
	}

	return Text
}

// DetectCode reports the language of content when it looks like source code
// rather than prose. ok is false for single lines, prose and unknown languages.
func DetectCode(content []byte) (string, bool) {
	if !LooksLikeCode(content) {
		return "", false
	}
	lang := Detect(content)
	if lang == Text {
		return "", false
	}
	return lang, true
}

// LooksLikeCode reports whether most non-blank lines of content end or start
// the way source lines do. Content needs at least two non-blank lines.
func LooksLikeCode(content []byte) bool {
	if _, safe := enry.GetLanguageByShebang(content); safe {
		return true
	}

	total, code := 0, 0
	for _, line := range bytes.Split(content, []byte("\n")) {
		line = bytes.TrimRight(line, " \t\r")
		if len(line) == 0 {
			continue
		}
		total++
		if isCodeLine(line) {
			code++
		}
	}

	return total >= 2 && code*2 >= total
}

func isCodeLine(line []byte) bool {
	if line[0] == '\t' || bytes.HasPrefix(line, []byte("    ")) {
		return true
	}

	trimmed := bytes.TrimSpace(line)
	switch trimmed[len(trimmed)-1] {
	case ';', '{', '}', '(', ')', '[', ']', ':', ',', '>':
		return true
	}
	for _, prefix := range []string{"//", "#", "--", "<", "}", "import ", "def ", "func ", "SELECT ", "FROM "} {
		if bytes.HasPrefix(trimmed, []byte(prefix)) {
			return true
		}
	}
	return false
}

func detectGo(_, trimmed []byte) string {
	if bytes.HasPrefix(trimmed, []byte("package ")) {
		return langGo
	}
	return ""
}

func detectPython(content, _ []byte) string {
	s := string(content)
	switch {
	case strings.Contains(s, "def ") && strings.Contains(s, "):"):
		return langPython
	case strings.Contains(s, "import ") && !strings.Contains(s, "import (") &&
		(strings.Contains(s, "from ") || strings.HasPrefix(strings.TrimSpace(s), "import ")):
		// Go uses "import (", so only the bare forms count.
		return langPython
	case strings.Contains(s, "__name__") || strings.Contains(s, "__main__"):
		return langPython
	}
	return ""
}

func detectHTML(_, trimmed []byte) string {
	lower := bytes.ToLower(trimmed)
	for _, marker := range []string{"<!doctype html", "<html", "<head>", "<body>"} {
		if bytes.Contains(lower, []byte(marker)) {
			return langHTML
		}
	}
	return ""
}

func detectJSON(_, trimmed []byte) string {
	if (bytes.HasPrefix(trimmed, []byte("{")) || bytes.HasPrefix(trimmed, []byte("["))) &&
		bytes.Contains(trimmed, []byte(`"`)) {
		return langJSON
	}
	return ""
}

func detectDockerfile(content, trimmed []byte) string {
	if bytes.HasPrefix(trimmed, []byte("FROM ")) ||
		(bytes.Contains(content, []byte("\nFROM ")) && bytes.Contains(content, []byte("\nRUN "))) ||
		(bytes.Contains(content, []byte("WORKDIR ")) && bytes.Contains(content, []byte("COPY "))) {
		return langDockerfile
	}
	return ""
}

func detectSQL(_, trimmed []byte) string {
	upper := strings.ToUpper(string(trimmed))
	for _, keyword := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
		if strings.HasPrefix(upper, keyword) {
			return langSQL
		}
	}
	return ""
}

func detectRust(content, _ []byte) string {
	s := string(content)
	if strings.Contains(s, "fn main()") || strings.Contains(s, "println!") || strings.Contains(s, "let mut ") {
		return langRust
	}
	return ""
}

func detectJavaScript(content, _ []byte) string {
	s := string(content)
	for _, marker := range []string{"=>", "const ", "let ", "console.log"} {
		if strings.Contains(s, marker) {
			return langJavaScript
		}
	}
	return ""
}

// detectYAML needs at least two key: value pairs or root list items.
func detectYAML(content, _ []byte) string {
	keys := 0
	for _, line := range bytes.Split(content, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || bytes.HasPrefix(line, []byte("#")) {
			continue
		}
		if bytes.Contains(line, []byte(": ")) &&
			!bytes.Contains(line, []byte("(")) &&
			!bytes.Contains(line, []byte("{")) &&
			!bytes.HasPrefix(line, []byte(`"`)) {
			keys++
		}
		if bytes.HasPrefix(line, []byte("- ")) {
			keys++
		}
	}

	if keys >= 2 {
		return langYAML
	}
	return ""
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	if lang == "Shell" {
		return langBash
	}
	return strings.ToLower(lang)
}
