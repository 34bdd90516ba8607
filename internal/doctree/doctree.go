// Package doctree is the parsed, format-independent shape of a document:
// a title and a tree of headed sections.
package doctree

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     // Document title (from metadata or filename)
	Children []*DocNode // Top-level sections, possibly led by an untitled preamble
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     // Section heading (empty for a preamble)
	Text     string     // Body text; paragraphs separated by blank lines
	Page     int        // Source page the section starts on (0 if N/A)
	Children []*DocNode // Subsections
}

// CountSections returns how many titled nodes the tree holds.
func (t *DocTree) CountSections() int {
	var count func([]*DocNode) int
	count = func(nodes []*DocNode) int {
		n := 0
		for _, c := range nodes {
			if c.Title != "" {
				n++
			}
			n += count(c.Children)
		}
		return n
	}
	return count(t.Children)
}
