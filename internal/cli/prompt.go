package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/yaklabco/mdedit/pkg/loadsave"
)

// linePrompter answers save prompts from lines of input.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

// ConfirmSave implements loadsave.Prompter. Anything but yes or no cancels.
func (p *linePrompter) ConfirmSave(name string) loadsave.Answer {
	fmt.Fprintf(p.out, "Save changes to %s? [y/n/c] ", name)

	switch strings.ToLower(p.readLine()) {
	case "y", "yes":
		return loadsave.AnswerYes
	case "n", "no":
		return loadsave.AnswerNo
	default:
		return loadsave.AnswerCancel
	}
}

// SavePath implements loadsave.Prompter. An empty answer takes the
// suggestion; with no suggestion it cancels.
func (p *linePrompter) SavePath(suggested string) (string, loadsave.Kind, bool) {
	if suggested != "" {
		fmt.Fprintf(p.out, "Save as [%s]: ", suggested)
	} else {
		fmt.Fprint(p.out, "Save as: ")
	}

	path := p.readLine()
	if path == "" {
		path = suggested
	}
	if path == "" {
		return "", loadsave.KindMarkdown, false
	}
	return path, loadsave.KindForPath(path), true
}

func (p *linePrompter) readLine() string {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}
