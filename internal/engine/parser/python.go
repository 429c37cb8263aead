package parser

import (
	"sort"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type PythonExtractor struct{}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{
		Path:     filePath,
		Language: "python",
		ParsedAt: time.Now(),
	}

	ctx := &ExtractionContext{Source: source, File: file}
	var depths []int
	track := func(handler NodeHandler) NodeHandler {
		return func(ctx *ExtractionContext, node *sitter.Node) bool {
			stop := handler(ctx, node)
			depth := statementDepth(node)
			for len(depths) < len(ctx.File.Imports) {
				depths = append(depths, depth)
			}
			return stop
		}
	}
	engine := NewExtractorEngine(map[string]NodeHandler{
		"import_statement":      track(e.extractImport),
		"import_from_statement": track(e.extractFromImport),
	})
	engine.Walk(ctx, root)

	file.Imports = orderByDepth(file.Imports, depths)
	return file, nil
}

// orderByDepth reorders imports breadth first: shallower statements come
// first and document order breaks ties.
func orderByDepth(imports []Import, depths []int) []Import {
	idx := make([]int, len(imports))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return depths[idx[a]] < depths[idx[b]]
	})
	out := make([]Import, len(imports))
	for i, j := range idx {
		out[i] = imports[j]
	}
	return out
}

// statementDepth is the nesting depth the statement has in the Python AST.
// An elif is an If nested in the orelse of the previous branch, so every
// elif adds a level and an else shares the level of the last elif body.
func statementDepth(node *sitter.Node) int {
	depth := 0
	child := node
	for parent := node.Parent(); parent != nil; child, parent = parent, parent.Parent() {
		switch parent.Kind() {
		case "function_definition", "class_definition", "for_statement", "while_statement",
			"try_statement", "with_statement", "match_statement", "except_clause",
			"except_group_clause", "case_clause":
			depth++
		case "if_statement":
			depth++
			switch child.Kind() {
			case "elif_clause":
				depth += elifIndex(parent, child)
			case "else_clause":
				depth += elifIndex(parent, nil)
			}
		}
	}
	return depth
}

// elifIndex counts the elif clauses of ifStmt up to and including target.
// A nil target counts all of them.
func elifIndex(ifStmt, target *sitter.Node) int {
	n := 0
	for i := uint(0); i < ifStmt.ChildCount(); i++ {
		c := ifStmt.Child(i)
		if c == nil || c.Kind() != "elif_clause" {
			continue
		}
		n++
		if target != nil && c.StartByte() == target.StartByte() {
			break
		}
	}
	return n
}

// extractImport records one ImportAbsolute per imported module. All of them
// carry the statement's location.
func (e *PythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	loc := ctx.Location(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}

		switch child.Kind() {
		case "dotted_name":
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Kind:     ImportAbsolute,
				Module:   ctx.CompactText(child),
				Location: loc,
			})
		case "aliased_import":
			name, alias := e.aliasedParts(ctx, child)
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Kind:     ImportAbsolute,
				Module:   name,
				Alias:    alias,
				Location: loc,
			})
		}
	}
	return true
}

func (e *PythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node) bool {
	imp := Import{
		Kind:     ImportFrom,
		Location: ctx.Location(node),
	}

	seenImport := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}

		switch child.Kind() {
		case "import":
			seenImport = true
		case "relative_import":
			imp.Level, imp.Module = e.relativeParts(ctx, child)
		case "dotted_name":
			if !seenImport {
				imp.Module = ctx.CompactText(child)
				continue
			}
			imp.Names = append(imp.Names, ImportedName{Name: ctx.CompactText(child)})
		case "aliased_import":
			name, alias := e.aliasedParts(ctx, child)
			imp.Names = append(imp.Names, ImportedName{Name: name, Alias: alias})
		case "wildcard_import":
			imp.Names = append(imp.Names, ImportedName{Name: "*"})
		}
	}

	ctx.File.Imports = append(ctx.File.Imports, imp)
	return true
}

func (e *PythonExtractor) relativeParts(ctx *ExtractionContext, node *sitter.Node) (int, string) {
	level := 0
	module := ""
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "import_prefix":
			level += strings.Count(ctx.Text(child), ".")
		case "dotted_name":
			module = ctx.CompactText(child)
		}
	}
	return level, module
}

func (e *PythonExtractor) aliasedParts(ctx *ExtractionContext, node *sitter.Node) (string, string) {
	var name, alias string
	if n := node.ChildByFieldName("name"); n != nil {
		name = ctx.CompactText(n)
	}
	if a := node.ChildByFieldName("alias"); a != nil {
		alias = ctx.Text(a)
	}
	if name != "" {
		return name, alias
	}

	// Field lookup failed; fall back to positional children.
	for i := uint(0); i < node.ChildCount(); i++ {
		sub := node.Child(i)
		if sub == nil {
			continue
		}
		if sub.Kind() == "dotted_name" || sub.Kind() == "identifier" {
			if name == "" {
				name = ctx.CompactText(sub)
			} else {
				alias = ctx.Text(sub)
			}
		}
	}
	return name, alias
}
