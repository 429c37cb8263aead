package parser

import (
	"strings"
	"time"

	"importguard/internal/core/errors"
)

type File struct {
	Path     string
	Language string
	Imports  []Import
	Syntax   *SyntaxError // Set when the tree contains ERROR or MISSING nodes
	ParsedAt time.Time
}

// ImportKind tags the two Python import forms.
type ImportKind int

const (
	// ImportAbsolute is `import a.b [as c]`; one Import per imported module.
	ImportAbsolute ImportKind = iota
	// ImportFrom is `from [.]a.b import x [as y], ...`.
	ImportFrom
)

func (k ImportKind) String() string {
	if k == ImportFrom {
		return "from"
	}
	return "import"
}

type ImportedName struct {
	Name  string
	Alias string
}

type Import struct {
	Kind     ImportKind
	Module   string         // Dotted module path; empty for `from . import x`
	Alias    string         // ImportAbsolute only
	Level    int            // Leading dots of a from-import
	Names    []ImportedName // ImportFrom only; "*" for wildcard imports
	Location Location
}

type SyntaxError struct {
	Line    int
	Column  int
	Message string
}

// Err reports the syntax error as a coded error carrying its location.
func (s *SyntaxError) Err(path string) error {
	err := errors.AddContext(errors.New(errors.CodeSyntax, s.Message), errors.CtxPath, path)
	return errors.AddContext(err, errors.CtxLine, s.Line)
}

type Location struct {
	File   string
	Line   int
	Column int
}

func (i Import) IsRelative() bool {
	return i.Kind == ImportFrom && i.Level > 0
}

// Segments splits the dotted module path. An empty module has no segments.
func (i Import) Segments() []string {
	if i.Module == "" {
		return nil
	}
	return strings.Split(i.Module, ".")
}

// Statement renders the import back to a single-line canonical form.
func (i Import) Statement() string {
	return i.render(strings.Repeat(".", i.Level) + i.Module)
}

// StatementWithPrefix renders the absolute form of the import with prefix
// inserted before the first module segment.
func (i Import) StatementWithPrefix(prefix string) string {
	module := i.Module
	if prefix != "" {
		module = prefix + "." + module
	}
	return i.render(module)
}

func (i Import) render(module string) string {
	if i.Kind == ImportAbsolute {
		out := "import " + module
		if i.Alias != "" {
			out += " as " + i.Alias
		}
		return out
	}

	names := make([]string, 0, len(i.Names))
	for _, n := range i.Names {
		if n.Alias != "" {
			names = append(names, n.Name+" as "+n.Alias)
			continue
		}
		names = append(names, n.Name)
	}
	list := strings.Join(names, ", ")
	if list == "" {
		list = "..."
	}
	return "from " + module + " import " + list
}
