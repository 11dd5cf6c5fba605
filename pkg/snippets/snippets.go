// Package snippets expands short trigger words into longer text templates.
//
// A snippet file holds one snippet per line: a trigger word, whitespace, and
// the expansion. Blank lines and lines starting with '#' are ignored. The
// expansion may use \n, \t and \\ escapes and these placeholders:
//
//	$END$        caret position after expansion
//	$DATE$       current date (2006-01-02)
//	$TIME$       current time (15:04)
//	$SELECTION$  the selected text the expansion replaces
package snippets

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/yaklabco/mdedit/pkg/fsutil"
)

// Placeholders recognised in expansions.
const (
	PlaceholderEnd       = "$END$"
	PlaceholderDate      = "$DATE$"
	PlaceholderTime      = "$TIME$"
	PlaceholderSelection = "$SELECTION$"
)

// ErrInvalidSnippet is returned for snippet lines without an expansion.
var ErrInvalidSnippet = errors.New("invalid snippet")

// Snippet maps a trigger word to its expansion template.
type Snippet struct {
	Trigger   string
	Expansion string
}

// Expansion is the result of expanding a snippet: replace the bytes
// [Start, End) with Text and place the caret at Caret.
type Expansion struct {
	Start int
	End   int
	Text  string
	Caret int
}

// Manager holds a snippet set. It is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	snippets map[string]string
}

// New creates a manager holding snippets. Later duplicates win.
func New(snippets ...Snippet) *Manager {
	m := &Manager{snippets: make(map[string]string, len(snippets))}
	for _, s := range snippets {
		m.snippets[s.Trigger] = s.Expansion
	}
	return m
}

// Default returns a manager holding the built-in snippets.
func Default() *Manager {
	return New(Builtin()...)
}

// Builtin returns the snippets written by "mdedit init".
func Builtin() []Snippet {
	return []Snippet{
		{Trigger: "code", Expansion: "```$END$\n$SELECTION$\n```\n"},
		{Trigger: "date", Expansion: "$DATE$$END$"},
		{Trigger: "img", Expansion: "![$SELECTION$]($END$)"},
		{Trigger: "link", Expansion: "[$SELECTION$]($END$)"},
		{Trigger: "now", Expansion: "$DATE$ $TIME$$END$"},
		{Trigger: "table", Expansion: "| $END$ |  |\n|---|---|\n|  |  |\n"},
		{Trigger: "task", Expansion: "- [ ] $END$"},
	}
}

// Parse reads snippets from r.
func Parse(r io.Reader) ([]Snippet, error) {
	var snippets []Snippet

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexFunc(line, unicode.IsSpace)
		if idx < 0 {
			return nil, fmt.Errorf("line %d: %w: %q has no expansion", lineNum, ErrInvalidSnippet, line)
		}

		snippets = append(snippets, Snippet{
			Trigger:   line[:idx],
			Expansion: unescape(strings.TrimLeftFunc(line[idx:], unicode.IsSpace)),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading snippets: %w", err)
	}

	return snippets, nil
}

// LoadFile reads a snippet file into a new manager.
func LoadFile(ctx context.Context, path string) (*Manager, error) {
	data, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading snippets: %w", err)
	}

	snippets, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return New(snippets...), nil
}

// Format renders snippets in the file format, sorted by trigger.
func Format(snippets []Snippet) string {
	sorted := make([]Snippet, len(snippets))
	copy(sorted, snippets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Trigger < sorted[j].Trigger })

	var sb strings.Builder
	sb.WriteString("# mdedit snippets: <trigger> <expansion>\n")
	sb.WriteString("# Placeholders: $END$ $DATE$ $TIME$ $SELECTION$\n")
	for _, s := range sorted {
		sb.WriteString(s.Trigger)
		sb.WriteByte(' ')
		sb.WriteString(escape(s.Expansion))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Lookup returns the expansion template for trigger.
func (m *Manager) Lookup(trigger string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	expansion, ok := m.snippets[trigger]
	return expansion, ok
}

// Add registers or replaces a snippet.
func (m *Manager) Add(s Snippet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snippets[s.Trigger] = s.Expansion
}

// Triggers returns the sorted trigger words.
func (m *Manager) Triggers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	triggers := make([]string, 0, len(m.snippets))
	for trigger := range m.snippets {
		triggers = append(triggers, trigger)
	}
	sort.Strings(triggers)
	return triggers
}

// Len returns the number of snippets.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snippets)
}

// Expand expands the word ending at caret. selection is the selected text
// starting at caret; it is replaced along with the trigger word. ok is false
// when no trigger matches.
func (m *Manager) Expand(text string, caret int, selection string, now time.Time) (Expansion, bool) {
	if caret < 0 || caret > len(text) {
		return Expansion{}, false
	}

	start := WordStart(text, caret)
	if start == caret {
		return Expansion{}, false
	}

	template, ok := m.Lookup(text[start:caret])
	if !ok {
		return Expansion{}, false
	}

	replacer := strings.NewReplacer(
		PlaceholderDate, now.Format("2006-01-02"),
		PlaceholderTime, now.Format("15:04"),
		PlaceholderSelection, selection,
	)

	// Without $END$ the caret lands after the whole expansion.
	before, after, _ := strings.Cut(template, PlaceholderEnd)
	head := replacer.Replace(before)
	tail := replacer.Replace(strings.ReplaceAll(after, PlaceholderEnd, ""))

	return Expansion{
		Start: start,
		End:   min(caret+len(selection), len(text)),
		Text:  head + tail,
		Caret: start + len(head),
	}, true
}

// WordStart returns the start of the run of non-space bytes ending at offset.
func WordStart(text string, offset int) int {
	start := offset
	for start > 0 {
		c := text[start-1]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		start--
	}
	return start
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case '\\':
			sb.WriteByte('\\')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\t", `\t`).Replace(s)
}
