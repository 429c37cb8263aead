package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// The grammar is error tolerant and still accepts several Python 2 forms.
// Those are rejected here so a file only yields imports when Python 3
// itself would compile it.
const (
	msgInvalidSyntax    = "invalid syntax"
	msgUnexpectedIndent = "unexpected indent"
	msgExpectedIndent   = "expected an indented block"
	msgLegacyOctal      = "leading zeros in decimal integer literals are not permitted; use an 0o prefix for octal integers"
	msgLongSuffix       = "invalid decimal literal"
	msgExceptComma      = "multiple exception types must be parenthesized"
	msgDefaultOrder     = "non-default argument follows default argument"
)

type syntaxCandidate struct {
	offset  uint
	line    int
	column  int
	message string
}

func (c *syntaxCandidate) before(other *syntaxCandidate) bool {
	return other == nil || c.offset < other.offset
}

func nodeCandidate(node *sitter.Node, msg string) *syntaxCandidate {
	return &syntaxCandidate{
		offset:  node.StartByte(),
		line:    int(node.StartPosition().Row) + 1,
		column:  int(node.StartPosition().Column) + 1,
		message: msg,
	}
}

// locateSyntaxError returns the first position, in source order, that a
// Python 3 compiler rejects. It returns nil for a valid module.
func locateSyntaxError(root *sitter.Node, source []byte) *SyntaxError {
	var first *syntaxCandidate
	if root.HasError() {
		if node := firstErrorNode(root); node != nil {
			first = nodeCandidate(node, errorNodeMessage(node))
		} else {
			first = &syntaxCandidate{line: 1, column: 1, message: msgInvalidSyntax}
		}
	}
	if c := firstInvalidConstruct(root, source); c != nil && c.before(first) {
		first = c
	}
	if c := firstStrayCharacter(root, source); c != nil && c.before(first) {
		first = c
	}
	if first == nil {
		return nil
	}
	return &SyntaxError{Line: first.line, Column: first.column, Message: first.message}
}

func errorNodeMessage(node *sitter.Node) string {
	if node.IsMissing() {
		return fmt.Sprintf("%s: missing %q", msgInvalidSyntax, node.Kind())
	}
	return msgInvalidSyntax
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

func firstInvalidConstruct(node *sitter.Node, source []byte) *syntaxCandidate {
	if node == nil {
		return nil
	}
	if c := checkConstruct(node, source); c != nil {
		return c
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if c := firstInvalidConstruct(node.Child(i), source); c != nil {
			return c
		}
	}
	return nil
}

func checkConstruct(node *sitter.Node, source []byte) *syntaxCandidate {
	switch node.Kind() {
	case "print_statement":
		// `print >>f, x` is a valid Python 3 expression statement.
		if directChild(node, "chevron") == nil {
			return nodeCandidate(node, "Missing parentheses in call to 'print'. Did you mean print(...)?")
		}
	case "exec_statement":
		return nodeCandidate(node, "Missing parentheses in call to 'exec'. Did you mean exec(...)?")
	case "except_clause":
		if child := directChild(node, ","); child != nil {
			return nodeCandidate(child, msgExceptComma)
		}
	case "comparison_operator":
		if child := directChild(node, "<>"); child != nil {
			return nodeCandidate(child, msgInvalidSyntax)
		}
	case "integer":
		if msg := checkInteger(nodeText(node, source)); msg != "" {
			return nodeCandidate(node, msg)
		}
	case "string":
		if !validStringPrefix(node, source) {
			return nodeCandidate(node, msgInvalidSyntax)
		}
	case "module":
		return checkIndentation(node, 0)
	case "block":
		return checkBlock(node)
	case "parameters", "lambda_parameters":
		return checkParameterOrder(node)
	}
	return nil
}

func directChild(node *sitter.Node, kind string) *sitter.Node {
	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

// checkInteger rejects the Python 2 long suffix and leading-zero octals.
// Zero itself may be written with any number of zeros.
func checkInteger(text string) string {
	digits := strings.ReplaceAll(text, "_", "")
	if digits == "" {
		return ""
	}
	switch digits[len(digits)-1] {
	case 'l', 'L':
		return msgLongSuffix
	case 'j', 'J':
		return ""
	}
	if len(digits) > 1 && digits[0] == '0' && strings.Trim(digits, "0123456789") == "" {
		if strings.Trim(digits, "0") != "" {
			return msgLegacyOctal
		}
	}
	return ""
}

// validStringPrefix rejects backtick repr and a u prefix combined with any
// other prefix letter.
func validStringPrefix(node *sitter.Node, source []byte) bool {
	start := directChild(node, "string_start")
	if start == nil {
		return true
	}
	text := nodeText(start, source)
	if strings.ContainsRune(text, '`') {
		return false
	}
	prefix := strings.ToLower(strings.TrimRight(text, `'"`))
	return !strings.Contains(prefix, "u") || len(prefix) == 1
}

func checkBlock(node *sitter.Node) *syntaxCandidate {
	statements := statementChildren(node)
	if len(statements) == 0 {
		return nodeCandidate(node, msgExpectedIndent)
	}
	return checkIndentation(node, int(statements[0].StartPosition().Column))
}

// checkIndentation requires every statement that starts a new line to begin
// at the container's indentation. Statements after a semicolon share a line
// and are skipped.
func checkIndentation(node *sitter.Node, column int) *syntaxCandidate {
	var prevEnd uint
	for i, stmt := range statementChildren(node) {
		start := stmt.StartPosition()
		newLine := i == 0 || start.Row > prevEnd
		prevEnd = stmt.EndPosition().Row
		if !newLine {
			continue
		}
		if int(start.Column) != column {
			return nodeCandidate(stmt, msgUnexpectedIndent)
		}
	}
	return nil
}

func statementChildren(node *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "comment", "line_continuation":
			continue
		}
		out = append(out, child)
	}
	return out
}

// checkParameterOrder rejects a positional parameter without a default
// after one with a default, up to the first star separator.
func checkParameterOrder(node *sitter.Node) *syntaxCandidate {
	seenDefault := false
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "default_parameter", "typed_default_parameter":
			seenDefault = true
		case "list_splat_pattern", "dictionary_splat_pattern", "keyword_separator", "*", "**":
			return nil
		case "typed_parameter":
			if inner := child.NamedChild(0); inner != nil {
				switch inner.Kind() {
				case "list_splat_pattern", "dictionary_splat_pattern":
					return nil
				}
			}
			if seenDefault {
				return nodeCandidate(child, msgDefaultOrder)
			}
		case "identifier", "tuple_pattern":
			if seenDefault {
				return nodeCandidate(child, msgDefaultOrder)
			}
		}
	}
	return nil
}

// strayCharacters are skipped as whitespace by the grammar but rejected by
// the Python 3 tokenizer outside strings and comments.
var strayCharacters = map[rune]string{
	'\uFEFF': "invalid non-printable character U+FEFF",
	'\u2060': "invalid non-printable character U+2060",
	'\u200B': "invalid non-printable character U+200B",
}

func firstStrayCharacter(root *sitter.Node, source []byte) *syntaxCandidate {
	line, column := 1, 1
	for offset := 0; offset < len(source); {
		r, size := utf8.DecodeRune(source[offset:])
		if msg, ok := strayCharacters[r]; ok && !insideLiteral(root, uint(offset), uint(offset+size)) {
			return &syntaxCandidate{offset: uint(offset), line: line, column: column, message: msg}
		}
		if r == '\n' {
			line++
			column = 1
		} else {
			column += size
		}
		offset += size
	}
	return nil
}

func insideLiteral(root *sitter.Node, start, end uint) bool {
	for node := root.DescendantForByteRange(start, end); node != nil; node = node.Parent() {
		switch node.Kind() {
		case "string", "string_content", "comment":
			return true
		}
	}
	return false
}
