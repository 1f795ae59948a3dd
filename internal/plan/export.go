package plan

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ExportFormat represents supported export formats
type ExportFormat string

const (
	FormatJSON ExportFormat = "json"
)

// ExportMetadata describes where a plan came from.
type ExportMetadata struct {
	Provider    string
	Model       string
	GeneratedAt time.Time
}

// CommandExport is a single command in exported form.
type CommandExport struct {
	Argv []string `json:"argv"`
	Line string   `json:"line"`
}

// PlanExport is the serialized form of a plan.
type PlanExport struct {
	Provider    string          `json:"provider,omitempty"`
	Model       string          `json:"model,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	Apply       bool            `json:"apply"`
	Commands    []CommandExport `json:"commands"`
}

// ExportPlan writes the plan in the given format. Only json is supported.
func ExportPlan(p Plan, meta ExportMetadata, format string, writer io.Writer) error {
	exportFormat := ExportFormat(strings.ToLower(format))
	if exportFormat != FormatJSON {
		return errors.Newf("unsupported export format: %s (supported: json)", format)
	}

	export := PlanExport{
		Provider:    meta.Provider,
		Model:       meta.Model,
		GeneratedAt: meta.GeneratedAt,
		Apply:       p.Apply,
		Commands:    make([]CommandExport, len(p.Commands)),
	}
	for i, c := range p.Commands {
		export.Commands[i] = CommandExport{
			Argv: append([]string(nil), c...),
			Line: c.String(),
		}
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}
