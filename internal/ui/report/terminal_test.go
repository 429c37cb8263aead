package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"importguard/internal/engine/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func critical(file string, line int, code, fix string) validator.Issue {
	return validator.Issue{File: file, Line: line, Severity: validator.SeverityCritical, Kind: validator.KindImport, Code: code, Fix: fix}
}

func TestRender_Success(t *testing.T) {
	var buf bytes.Buffer
	code, err := NewTerminal(PlainStyler{}, "abra").Render(&buf, validator.Result{FilesChecked: 4})
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	banner := strings.Repeat("=", 80)
	want := strings.Join([]string{
		banner,
		"ABRA - VALIDADOR DE IMPORTS",
		banner,
		"",
		"Archivos revisados: 4",
		"",
		banner,
		"✅ TODOS LOS IMPORTS SON CORRECTOS",
		banner,
		"",
		"✓ 4 archivos verificados",
		"✓ 0 problemas críticos",
		"✓ Listo para deployment",
		"",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestRender_WarningsOnly(t *testing.T) {
	result := validator.Result{
		FilesChecked: 2,
		Warnings: []validator.Issue{
			{File: "abra/ui/a.py", Line: 3, Severity: validator.SeverityWarning, Kind: validator.KindRelativeImport, Code: "from .core import x", Note: validator.NoteRelativeImport},
			{File: "abra/ui/b.py", Line: 0, Severity: validator.SeverityError, Kind: validator.KindParseError, Code: "boom"},
		},
	}
	var buf bytes.Buffer
	code, err := NewTerminal(PlainStyler{}, "abra").Render(&buf, result)
	require.NoError(t, err)
	assert.Equal(t, 0, code, "warnings never block")

	out := buf.String()
	assert.Contains(t, out, "⚠️  2 ADVERTENCIAS\n")
	assert.Contains(t, out, "📄 abra/ui/a.py (línea 3)\n  from .core import x\n  Nota: Los imports relativos pueden causar problemas en deployment\n\n")
	assert.Contains(t, out, "📄 abra/ui/b.py (línea 0)\n  boom\n\n", "note line is omitted when empty")
	assert.Contains(t, out, "✅ TODOS LOS IMPORTS SON CORRECTOS")
}

func TestRender_Blocked(t *testing.T) {
	result := validator.Result{
		FilesChecked: 3,
		Critical: []validator.Issue{
			critical("abra/pages/z.py", 12, "import core", "import abra.core"),
			critical("abra/pages/a.py", 7, "from utils.x import y", "from abra.utils.x import y"),
			critical("abra/pages/z.py", 2, "import ui", "import abra.ui"),
		},
		Warnings: []validator.Issue{{File: "w.py", Line: 1, Severity: validator.SeverityWarning, Code: "from . import core"}},
	}
	var buf bytes.Buffer
	code, err := NewTerminal(PlainStyler{}, "abra").Render(&buf, result)
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	out := buf.String()
	assert.Contains(t, out, "❌ ENCONTRADOS 3 PROBLEMAS CRÍTICOS\n")
	assert.Contains(t, out, "📄 abra/pages/a.py\n"+strings.Repeat("-", 80)+"\n  Línea    7: from utils.x import y\n  Fix:        from abra.utils.x import y\n\n")
	assert.Contains(t, out, "  Línea    2: import ui\n  Fix:        import abra.ui\n\n  Línea   12: import core\n")
	assert.Less(t, strings.Index(out, "📄 abra/pages/a.py"), strings.Index(out, "📄 abra/pages/z.py"))
	assert.Contains(t, out, "DEPLOYMENT BLOQUEADO - Corrige estos imports primero\n")
	assert.Contains(t, out, "CÓMO ARREGLAR:\n\nReemplaza cada import incorrecto con su versión correcta:\n\n  ❌ import core\n  ✅ import abra.core\n")
	assert.NotContains(t, out, "ADVERTENCIAS", "warnings are hidden when blocked")
	assert.NotContains(t, out, "TODOS LOS IMPORTS SON CORRECTOS")
	assert.NotContains(t, out, "... y")
}

func TestRender_FixSectionIsCapped(t *testing.T) {
	result := validator.Result{FilesChecked: 1}
	for i := 1; i <= 7; i++ {
		result.Critical = append(result.Critical, critical("a.py", i, fmt.Sprintf("import core.m%d", i), fmt.Sprintf("import abra.core.m%d", i)))
	}
	var buf bytes.Buffer
	_, err := NewTerminal(PlainStyler{}, "abra").Render(&buf, result)
	require.NoError(t, err)

	out := buf.String()
	fixSection := out[strings.Index(out, "CÓMO ARREGLAR:"):]
	assert.Equal(t, 5, strings.Count(fixSection, "  ❌ "))
	assert.Contains(t, fixSection, "  ✅ import abra.core.m5\n")
	assert.NotContains(t, fixSection, "m6")
	assert.True(t, strings.HasSuffix(out, "  ... y 2 más\n\n"))
}

func TestRender_TitleFollowsPrefix(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewTerminal(nil, "shop").Render(&buf, validator.Result{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "SHOP - VALIDADOR DE IMPORTS")
}

func TestNewStyler(t *testing.T) {
	var buf bytes.Buffer
	_, isPlain := NewStyler(ColorNever, &buf).(PlainStyler)
	assert.True(t, isPlain)

	colored := NewStyler(ColorAlways, &buf)
	red := colored.Red("hola")
	assert.Contains(t, red, "\x1b[91m")
	assert.Contains(t, red, "hola")
	assert.Contains(t, colored.Green("ok"), "\x1b[92m")

	// A bytes.Buffer is not a terminal.
	_, isPlain = NewStyler(ColorAuto, &buf).(PlainStyler)
	assert.True(t, isPlain)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestRender_PropagatesWriteError(t *testing.T) {
	code, err := NewTerminal(PlainStyler{}, "abra").Render(failingWriter{}, validator.Result{Critical: []validator.Issue{critical("a.py", 1, "import core", "import abra.core")}})
	assert.Error(t, err)
	assert.Equal(t, 1, code)
}
