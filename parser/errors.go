package parser

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/podhmo/swiftflow/token"
)

// Error is a lexical or syntax error at a source position.
type Error struct {
	Filename string
	Pos      token.Pos
	Msg      string
}

func (e *Error) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s:%s: %s", e.Filename, e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// ErrorList is every error found in one source file.
type ErrorList []*Error

// Add appends an error.
func (p *ErrorList) Add(filename string, pos token.Pos, msg string) {
	*p = append(*p, &Error{Filename: filename, Pos: pos, Msg: msg})
}

func (p ErrorList) Len() int      { return len(p) }
func (p ErrorList) Swap(i, j int) { p[i], p[j] = p[j], p[i] }
func (p ErrorList) Less(i, j int) bool {
	a, b := p[i].Pos, p[j].Pos
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Column < b.Column
}

// Sort sorts the list by position. Errors at the same position keep their order.
func (p ErrorList) Sort() { sort.Stable(p) }

// Error joins the messages, one per line.
func (p ErrorList) Error() string {
	switch len(p) {
	case 0:
		return "no errors"
	case 1:
		return p[0].Error()
	}
	lines := make([]string, len(p))
	for i, e := range p {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// Err returns an error equivalent to this list, or nil if the list is empty.
func (p ErrorList) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

// IsIncomplete reports whether err only says that the source ended too
// early, so that more input could complete it.
func IsIncomplete(err error) bool {
	var list ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		return false
	}
	for _, e := range list {
		if !strings.HasSuffix(e.Msg, "found "+token.Token{Kind: token.EOF}.String()) {
			return false
		}
	}
	return true
}
