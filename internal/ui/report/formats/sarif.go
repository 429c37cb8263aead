package formats

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"importguard/internal/engine/validator"
	"importguard/internal/shared/version"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDImport         = "IMPG001"
	ruleIDImportFrom     = "IMPG002"
	ruleIDRelativeImport = "IMPG003"
	ruleIDSyntaxError    = "IMPG004"
	ruleIDParseError     = "IMPG005"
)

// sarifReport is the top-level SARIF document.
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine int `json:"startLine,omitempty"`
}

var sarifRules = map[validator.Kind]sarifRule{
	validator.KindImport: {
		ID:               ruleIDImport,
		Name:             "UnprefixedImport",
		ShortDescription: sarifMessage{Text: "Internal module imported without the package prefix."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
	},
	validator.KindImportFrom: {
		ID:               ruleIDImportFrom,
		Name:             "UnprefixedFromImport",
		ShortDescription: sarifMessage{Text: "Names imported from an internal module without the package prefix."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "error"},
	},
	validator.KindRelativeImport: {
		ID:               ruleIDRelativeImport,
		Name:             "RelativeInternalImport",
		ShortDescription: sarifMessage{Text: "Relative import of an internal module."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
	},
	validator.KindSyntaxError: {
		ID:               ruleIDSyntaxError,
		Name:             "SyntaxError",
		ShortDescription: sarifMessage{Text: "File could not be analyzed because of a syntax error."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
	},
	validator.KindParseError: {
		ID:               ruleIDParseError,
		Name:             "ParseError",
		ShortDescription: sarifMessage{Text: "File could not be read or decoded."},
		DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
	},
}

// rule order in the driver section
var sarifRuleOrder = []validator.Kind{
	validator.KindImport,
	validator.KindImportFrom,
	validator.KindRelativeImport,
	validator.KindSyntaxError,
	validator.KindParseError,
}

// SARIFWriter renders a run as a SARIF v2.1.0 document.
// All file URIs are made relative to ProjectRoot; absolute paths are never
// included so that reports are safe to share.
type SARIFWriter struct {
	ProjectRoot string
}

func NewSARIFWriter(projectRoot string) *SARIFWriter {
	return &SARIFWriter{ProjectRoot: projectRoot}
}

func (w *SARIFWriter) Name() string { return "sarif" }

func (w *SARIFWriter) Generate(result validator.Result) (string, error) {
	data, err := GenerateSARIF(w.ProjectRoot, result)
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

// GenerateSARIF builds a SARIF document. Critical records come first, then
// warnings, each in analysis order.
func GenerateSARIF(projectRoot string, result validator.Result) ([]byte, error) {
	used := make(map[validator.Kind]bool)
	results := make([]sarifResult, 0, len(result.Critical)+len(result.Warnings))

	all := make([]validator.Issue, 0, len(result.Critical)+len(result.Warnings))
	all = append(all, result.Critical...)
	all = append(all, result.Warnings...)

	for _, issue := range all {
		rule, ok := sarifRules[issue.Kind]
		if !ok {
			return nil, fmt.Errorf("no sarif rule for issue kind %q", issue.Kind)
		}
		used[issue.Kind] = true

		res := sarifResult{
			RuleID:  rule.ID,
			Level:   severityToLevel(issue.Severity),
			Message: sarifMessage{Text: issueMessage(issue)},
		}
		if issue.File != "" {
			loc := sarifLocation{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{
						URI:       relativeURI(projectRoot, issue.File),
						URIBaseID: "%SRCROOT%",
					},
				},
			}
			if issue.Line > 0 {
				loc.PhysicalLocation.Region = &sarifRegion{StartLine: issue.Line}
			}
			res.Locations = []sarifLocation{loc}
		}
		results = append(results, res)
	}

	rules := make([]sarifRule, 0, len(used))
	for _, kind := range sarifRuleOrder {
		if used[kind] {
			rules = append(rules, sarifRules[kind])
		}
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "importguard",
						Version: version.Version,
						Rules:   rules,
					},
				},
				Results: results,
			},
		},
	}

	return json.MarshalIndent(report, "", "  ")
}

func issueMessage(issue validator.Issue) string {
	switch {
	case issue.Fix != "":
		return fmt.Sprintf("%s -> %s", issue.Code, issue.Fix)
	case issue.Note != "":
		return fmt.Sprintf("%s (%s)", issue.Code, issue.Note)
	default:
		return issue.Code
	}
}

func severityToLevel(severity validator.Severity) string {
	switch severity {
	case validator.SeverityCritical:
		return "error"
	case validator.SeverityWarning, validator.SeverityError:
		return "warning"
	default:
		return "note"
	}
}

// relativeURI converts an absolute file path to a forward-slash relative URI
// anchored at projectRoot. If the path is already relative or projectRoot is
// empty, the original path (with forward slashes) is returned.
func relativeURI(projectRoot, filePath string) string {
	if projectRoot != "" && filepath.IsAbs(filePath) {
		rel, err := filepath.Rel(projectRoot, filePath)
		if err == nil {
			filePath = rel
		}
	}
	return filepath.ToSlash(filePath)
}
