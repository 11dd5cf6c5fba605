package loadsave

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/mdedit/pkg/fsutil"
	"github.com/yaklabco/mdedit/pkg/parser/goldmark"
)

// ContentPlaceholder marks where rendered HTML goes in a template.
const ContentPlaceholder = "{{content}}"

// SplitFrontMatter separates a leading YAML front matter block, delimited by
// "---" and "---" or "...", from the body. ok is false when there is none.
func SplitFrontMatter(text string) (front, body string, ok bool) {
	rest, found := cutLine(text, "---")
	if !found {
		return "", text, false
	}

	offset := 0
	for offset <= len(rest) {
		line, next, more := strings.Cut(rest[offset:], "\n")
		if trimmed := strings.TrimRight(line, "\r \t"); trimmed == "---" || trimmed == "..." {
			body := ""
			if more {
				body = next
			}
			return rest[:offset], body, true
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}
	return "", text, false
}

// cutLine removes a first line equal to want, ignoring trailing whitespace.
func cutLine(text, want string) (string, bool) {
	line, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimRight(line, "\r \t") != want {
		return "", false
	}
	return rest, true
}

// RemoveFrontMatter returns text without its YAML front matter.
func RemoveFrontMatter(text string) string {
	_, body, _ := SplitFrontMatter(text)
	return body
}

// ToHTML renders markdown, minus front matter, as an HTML fragment.
func ToHTML(markdown, flavor string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.NewMarkdown(flavor).Convert([]byte(RemoveFrontMatter(markdown)), &buf); err != nil {
		return "", fmt.Errorf("rendering HTML: %w", err)
	}
	return buf.String(), nil
}

// ApplyTemplate inserts html into template at ContentPlaceholder. An empty
// template returns html unchanged.
func ApplyTemplate(template, html string) string {
	if template == "" {
		return html
	}
	return strings.ReplaceAll(template, ContentPlaceholder, html)
}

// SaveAsHTML renders markdown and writes it to path, wrapped in template.
func SaveAsHTML(ctx context.Context, markdown, path string, opts Options) error {
	html, err := ToHTML(markdown, opts.Flavor)
	if err != nil {
		return err
	}
	if _, err := fsutil.WriteFile(ctx, path, []byte(ApplyTemplate(opts.HTMLTemplate, html)), fsutil.WriteOptions{
		Backup: opts.Backup,
	}); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// SuggestFilenameFromTitle derives a file name from the front matter title
// or the first ATX heading. It returns "" when the document has neither.
func SuggestFilenameFromTitle(text string) string {
	title := frontMatterTitle(text)
	if title == "" {
		title = firstHeading(RemoveFrontMatter(text))
	}

	name := sanitizeFilename(title)
	if name == "" {
		return ""
	}
	return name + ".md"
}

func frontMatterTitle(text string) string {
	front, _, ok := SplitFrontMatter(text)
	if !ok {
		return ""
	}
	var meta struct {
		Title string `yaml:"title"`
	}
	if err := yaml.Unmarshal([]byte(front), &meta); err != nil {
		return ""
	}
	return meta.Title
}

func firstHeading(text string) string {
	for line := range strings.Lines(text) {
		trimmed := strings.TrimLeft(line, " ")
		if len(line)-len(trimmed) > 3 || !strings.HasPrefix(trimmed, "#") {
			continue
		}
		hashes := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
		rest := trimmed[hashes:]
		if hashes > 6 || (rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != '\r' && rest[0] != '\n') {
			continue
		}
		rest = strings.TrimSpace(rest)
		rest = strings.TrimSpace(strings.TrimRight(rest, "#"))
		if rest != "" {
			return rest
		}
	}
	return ""
}

// sanitizeFilename drops characters file systems reject and collapses runs
// of whitespace.
func sanitizeFilename(title string) string {
	var sb strings.Builder
	space := false
	for _, r := range title {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r) || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			space = sb.Len() > 0
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.WriteRune(r)
	}

	name := strings.Trim(sb.String(), ". ")
	if len(name) > 0 && filepath.Base(name) != name {
		return ""
	}
	return name
}
