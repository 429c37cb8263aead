package validator

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
)

type Kind string

const (
	KindImportFrom     Kind = "ImportFrom"
	KindImport         Kind = "Import"
	KindRelativeImport Kind = "RelativeImport"
	KindSyntaxError    Kind = "SyntaxError"
	KindParseError     Kind = "ParseError"
)

const (
	NoteRelativeImport = "Los imports relativos pueden causar problemas en deployment"
	NoteSyntaxError    = "Este archivo tiene errores de sintaxis"
	NoteParseError     = "No se pudo analizar este archivo"
)

// Issue is a single finding. It is never mutated after creation.
type Issue struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"type"`
	Module   string   `json:"module,omitempty"`
	Level    int      `json:"level,omitempty"`
	Code     string   `json:"code"`
	Fix      string   `json:"fix,omitempty"`
	Note     string   `json:"note,omitempty"`
}

func (i Issue) Blocking() bool {
	return i.Severity == SeverityCritical
}
