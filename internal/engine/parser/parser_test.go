package parser

import (
	"strings"
	"testing"

	"importguard/internal/core/errors"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewPythonParser()
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestPythonExtraction(t *testing.T) {
	p := newTestParser(t)

	code := `import os
import sys as system, core.foo
from auth.utils import login as auth_login, logout
from . import local_mod
from ..parent.core import (
    a,
    b as bee,
)
from utils import *

def nested():
    import pages.home
`
	file, err := p.ParseFile("test.py", []byte(code))
	if err != nil {
		t.Fatal(err)
	}
	if file.Language != "python" {
		t.Fatalf("Expected python, got %s", file.Language)
	}
	if file.Syntax != nil {
		t.Fatalf("unexpected syntax error: %+v", file.Syntax)
	}

	want := []Import{
		{Kind: ImportAbsolute, Module: "os", Location: Location{File: "test.py", Line: 1, Column: 1}},
		{Kind: ImportAbsolute, Module: "sys", Alias: "system", Location: Location{File: "test.py", Line: 2, Column: 1}},
		{Kind: ImportAbsolute, Module: "core.foo", Location: Location{File: "test.py", Line: 2, Column: 1}},
		{Kind: ImportFrom, Module: "auth.utils", Names: []ImportedName{{Name: "login", Alias: "auth_login"}, {Name: "logout"}}, Location: Location{File: "test.py", Line: 3, Column: 1}},
		{Kind: ImportFrom, Level: 1, Names: []ImportedName{{Name: "local_mod"}}, Location: Location{File: "test.py", Line: 4, Column: 1}},
		{Kind: ImportFrom, Level: 2, Module: "parent.core", Names: []ImportedName{{Name: "a"}, {Name: "b", Alias: "bee"}}, Location: Location{File: "test.py", Line: 5, Column: 1}},
		{Kind: ImportFrom, Module: "utils", Names: []ImportedName{{Name: "*"}}, Location: Location{File: "test.py", Line: 9, Column: 1}},
		{Kind: ImportAbsolute, Module: "pages.home", Location: Location{File: "test.py", Line: 12, Column: 5}},
	}
	if diff := cmp.Diff(want, file.Imports, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("imports mismatch (-want +got):\n%s", diff)
	}
}

func TestFutureImportIsIgnored(t *testing.T) {
	p := newTestParser(t)
	file, err := p.ParseFile("f.py", []byte("from __future__ import annotations\n"))
	if err != nil {
		t.Fatal(err)
	}
	for _, imp := range file.Imports {
		if imp.Module == "__future__" {
			t.Fatalf("future import should not be extracted: %+v", imp)
		}
	}
}

func TestParseFile_SyntaxError(t *testing.T) {
	p := newTestParser(t)
	code := "import core\n\nprint((1, 2)\nx = 3\n"
	file, err := p.ParseFile("broken.py", []byte(code))
	if err != nil {
		t.Fatalf("syntax errors must not be returned as errors: %v", err)
	}
	if file.Syntax == nil {
		t.Fatal("expected syntax error")
	}
	if file.Syntax.Line < 3 {
		t.Fatalf("expected error at or after line 3, got %d", file.Syntax.Line)
	}
	if len(file.Imports) != 0 {
		t.Fatalf("malformed files must not yield imports, got %d", len(file.Imports))
	}
}

func TestParseFile_RejectsNonSource(t *testing.T) {
	p := newTestParser(t)

	if _, err := p.ParseFile("notes.txt", []byte("import core")); !errors.IsCode(err, errors.CodeNotSupported) {
		t.Fatalf("expected NOT_SUPPORTED, got %v", err)
	}
	if _, err := p.ParseFile("bad.py", []byte{0xff, 0xfe, 'x'}); !errors.IsCode(err, errors.CodeEncoding) {
		t.Fatalf("expected ENCODING_ERROR for invalid utf-8, got %v", err)
	}
	if _, err := p.ParseFile("nul.py", []byte("import os\x00\n")); !errors.IsCode(err, errors.CodeEncoding) {
		t.Fatalf("expected ENCODING_ERROR for NUL byte, got %v", err)
	}
}

func TestParseFile_RejectsLegacySyntax(t *testing.T) {
	p := newTestParser(t)
	tests := []struct {
		name string
		code string
		line int
		msg  string
	}{
		{"print statement", "print 'x'\n", 2, "Missing parentheses in call to 'print'"},
		{"exec statement", "exec 'x'\n", 2, "Missing parentheses in call to 'exec'"},
		{"except comma", "try:\n    pass\nexcept E, e:\n    pass\n", 4, msgExceptComma},
		{"diamond operator", "x = 1 <> 2\n", 2, msgInvalidSyntax},
		{"backtick repr", "x = `1`\n", 2, msgInvalidSyntax},
		{"legacy octal", "x = 0777\n", 2, msgLegacyOctal},
		{"long suffix", "x = 10L\n", 2, msgLongSuffix},
		{"unicode raw prefix", "x = ur'a'\n", 2, msgInvalidSyntax},
		{"unexpected indent", "x = 1\n    y = 2\n", 3, ""},
		{"unexpected indent in block", "def f():\n    x = 1\n        y = 2\n", 4, ""},
		{"default order", "def f(a=1, b):\n    pass\n", 2, msgDefaultOrder},
		{"lambda default order", "g = lambda a=1, b: a\n", 2, msgDefaultOrder},
		{"empty body", "def f():\n", 0, ""},
		{"zero width space", "x = 1\u200b\n", 2, "U+200B"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			file, err := p.ParseFile("legacy.py", []byte("import core.foo\n"+tc.code))
			if err != nil {
				t.Fatalf("syntax errors must not be returned as errors: %v", err)
			}
			if file.Syntax == nil {
				t.Fatal("expected syntax error")
			}
			if tc.line > 0 && file.Syntax.Line != tc.line {
				t.Errorf("line = %d, want %d", file.Syntax.Line, tc.line)
			}
			if !strings.Contains(file.Syntax.Message, tc.msg) {
				t.Errorf("message = %q, want it to contain %q", file.Syntax.Message, tc.msg)
			}
			if len(file.Imports) != 0 {
				t.Errorf("malformed files must not yield imports, got %d", len(file.Imports))
			}
		})
	}
}

func TestParseFile_AcceptsModernForms(t *testing.T) {
	p := newTestParser(t)
	tests := map[string]string{
		"print chevron":        "print >>f, x\n",
		"zero":                 "x = 0\n",
		"repeated zero":        "x = 00\n",
		"imaginary":            "x = 0j + 07j\n",
		"octal":                "x = 0o777 + 0x1F + 1_000\n",
		"unicode prefix":       "x = u'a'\n",
		"bytes prefix":         "x = rb'a' + Rb'b' + f'{x}'\n",
		"parameter order":      "def f(a, b=1, *c, d, e=2, **k):\n    pass\n",
		"keyword only":         "def f(a=1, *, b):\n    pass\n",
		"positional only":      "def f(a, /, b=1):\n    pass\n",
		"semicolons":           "import a; import b\n",
		"odd comment":          "def f():\n        # aside\n    return 1\n",
		"continuation":         "x = 1 + \\\n        2\n",
		"nested blocks":        "class A:\n    def f(self):\n        if x:\n            pass\n        else:\n            return 2\n",
		"bom inside string":    "x = '\ufeff'\n# \u200b\n",
		"parenthesized except": "try:\n    pass\nexcept (E, F) as e:\n    pass\n",
		"not equal":            "x = 1 != 2\n",
	}
	for name, code := range tests {
		t.Run(name, func(t *testing.T) {
			file, err := p.ParseFile("modern.py", []byte("import core.foo\n"+code))
			if err != nil {
				t.Fatal(err)
			}
			if file.Syntax != nil {
				t.Fatalf("unexpected syntax error: %+v", file.Syntax)
			}
			if len(file.Imports) == 0 || file.Imports[0].Module != "core.foo" {
				t.Fatalf("unexpected imports: %+v", file.Imports)
			}
		})
	}
}

func TestParseFile_RejectsBOM(t *testing.T) {
	p := newTestParser(t)
	file, err := p.ParseFile("bom.py", append([]byte{0xEF, 0xBB, 0xBF}, []byte("import core\n")...))
	if err != nil {
		t.Fatal(err)
	}
	if file.Syntax == nil {
		t.Fatal("expected a syntax error for the byte order mark")
	}
	if file.Syntax.Line != 1 || file.Syntax.Column != 1 {
		t.Errorf("position = %d:%d, want 1:1", file.Syntax.Line, file.Syntax.Column)
	}
	if !strings.Contains(file.Syntax.Message, "U+FEFF") {
		t.Errorf("unexpected message %q", file.Syntax.Message)
	}
	if len(file.Imports) != 0 {
		t.Fatalf("unexpected imports: %+v", file.Imports)
	}
}

func TestPythonExtraction_BreadthFirstOrder(t *testing.T) {
	p := newTestParser(t)
	tests := []struct {
		name string
		code string
		want []string
	}{
		{
			name: "function body after module level",
			code: "def f():\n    import core.a\nimport core.b\n",
			want: []string{"core.b", "core.a"},
		},
		{
			name: "elif chains nest",
			code: `import core.top
if x:
    import core.a1
elif y:
    import core.a2
else:
    import core.a3
try:
    import core.t1
except ImportError:
    import core.t2
`,
			want: []string{"core.top", "core.a1", "core.t1", "core.a2", "core.a3", "core.t2"},
		},
		{
			name: "same depth keeps source order",
			code: "class A:\n    import core.x\ndef g():\n    import core.y\n",
			want: []string{"core.x", "core.y"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			file, err := p.ParseFile("order.py", []byte(tc.code))
			if err != nil {
				t.Fatal(err)
			}
			if file.Syntax != nil {
				t.Fatalf("unexpected syntax error: %+v", file.Syntax)
			}
			got := make([]string, 0, len(file.Imports))
			for _, imp := range file.Imports {
				got = append(got, imp.Module)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestImportStatementRendering(t *testing.T) {
	tests := []struct {
		name     string
		imp      Import
		plain    string
		prefixed string
	}{
		{
			name:     "absolute",
			imp:      Import{Kind: ImportAbsolute, Module: "core.foo"},
			plain:    "import core.foo",
			prefixed: "import abra.core.foo",
		},
		{
			name:     "absolute alias",
			imp:      Import{Kind: ImportAbsolute, Module: "core.foo", Alias: "cf"},
			plain:    "import core.foo as cf",
			prefixed: "import abra.core.foo as cf",
		},
		{
			name:     "from",
			imp:      Import{Kind: ImportFrom, Module: "utils.bar", Names: []ImportedName{{Name: "baz"}}},
			plain:    "from utils.bar import baz",
			prefixed: "from abra.utils.bar import baz",
		},
		{
			name:     "relative drops level when prefixed",
			imp:      Import{Kind: ImportFrom, Level: 2, Module: "core.sub", Names: []ImportedName{{Name: "x"}, {Name: "y", Alias: "z"}}},
			plain:    "from ..core.sub import x, y as z",
			prefixed: "from abra.core.sub import x, y as z",
		},
		{
			name:     "no names",
			imp:      Import{Kind: ImportFrom, Module: "core"},
			plain:    "from core import ...",
			prefixed: "from abra.core import ...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.imp.Statement(); got != tt.plain {
				t.Fatalf("Statement() = %q, want %q", got, tt.plain)
			}
			if got := tt.imp.StatementWithPrefix("abra"); got != tt.prefixed {
				t.Fatalf("StatementWithPrefix() = %q, want %q", got, tt.prefixed)
			}
		})
	}
}

func TestSupportedExtensions(t *testing.T) {
	p := newTestParser(t)
	if diff := cmp.Diff([]string{".py"}, p.SupportedExtensions()); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
	if !p.IsSupportedPath("abra/core/x.PY") {
		t.Fatal("extension matching should be case-insensitive")
	}
}
