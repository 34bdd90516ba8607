package parser

import (
	"bufio"
	"io"

	"github.com/dgallion1/docnav/internal/doctree"
)

// TextParser handles plain text files. Numbered lines like "2. Scope"
// open sections.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	b := newBuilder()
	addLines(b, lines)
	return b.build(baseTitle(filename)), nil
}
