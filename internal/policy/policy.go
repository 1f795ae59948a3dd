// Package policy decides which proposed commands may run. Commands are executed
// without a shell, so the policy also flags lines whose meaning depends on shell
// features that will not be honored (operators, redirects, substitutions).
package policy

import (
	"fmt"
	"strings"

	"github.com/Yates-Labs/gitmeup/internal/plan"
	"github.com/cockroachdb/errors"
)

var (
	ErrNotAllowed   = errors.New("command not allowed")
	ErrShellSyntax  = errors.New("command relies on shell syntax")
	ErrPolicyFailed = errors.New("proposed commands rejected by policy")
)

// Severity ranks a finding.
type Severity int

const (
	// SeverityWarning is reported but does not stop apply mode.
	SeverityWarning Severity = iota
	// SeverityError blocks apply mode before any command runs.
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Finding is one policy observation about a proposed command.
type Finding struct {
	// Index is the position of the command in the plan
	Index    int
	Line     string
	Severity Severity
	Message  string
	Err      error
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: command %d (%s): %s", f.Severity, f.Index+1, f.Line, f.Message)
}

// DefaultAllowed lists the command prefixes the model is instructed to emit.
func DefaultAllowed() []plan.Command {
	return []plan.Command{
		{"git", "add"},
		{"git", "rm"},
		{"git", "mv"},
		{"git", "commit"},
		{"git", "restore", "--staged"},
	}
}

// Policy checks commands against an allow-list of argv prefixes.
type Policy struct {
	// Allowed holds argv prefixes; a command is allowed if it starts with one
	Allowed []plan.Command

	// Unrestricted disables the allow-list. Shell syntax errors still block.
	Unrestricted bool
}

// Default returns the policy used unless --unrestricted is given.
func Default() *Policy {
	return &Policy{Allowed: DefaultAllowed()}
}

// Allows reports whether cmd starts with one of the allowed prefixes.
func (p *Policy) Allows(cmd plan.Command) bool {
	if p.Unrestricted {
		return true
	}
	for _, prefix := range p.Allowed {
		if hasPrefix(cmd, prefix) {
			return true
		}
	}
	return false
}

func hasPrefix(cmd, prefix plan.Command) bool {
	if len(prefix) == 0 || len(cmd) < len(prefix) {
		return false
	}
	for i := range prefix {
		if cmd[i] != prefix[i] {
			return false
		}
	}
	return true
}

// Report collects findings for a whole plan.
type Report struct {
	Findings []Finding
}

// Blocking returns the findings that must stop apply mode.
func (r Report) Blocking() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Err returns an error describing every blocking finding, or nil.
func (r Report) Err() error {
	blocking := r.Blocking()
	if len(blocking) == 0 {
		return nil
	}

	msgs := make([]string, len(blocking))
	for i, f := range blocking {
		msgs[i] = f.String()
	}
	err := errors.Wrapf(ErrPolicyFailed, "%d command(s) rejected:\n  %s",
		len(blocking), strings.Join(msgs, "\n  "))
	return errors.WithHint(err, "review the proposal, or re-run with --unrestricted to skip the command allow-list")
}

// Review checks every parsed entry and returns the combined report.
func (p *Policy) Review(entries []plan.Entry) Report {
	var report Report

	for i, e := range entries {
		line := e.Command.String()

		if !p.Allows(e.Command) {
			report.Findings = append(report.Findings, Finding{
				Index:    i,
				Line:     line,
				Severity: SeverityError,
				Message:  "not in the allowed command list (" + allowedSummary(p.Allowed) + ")",
				Err:      ErrNotAllowed,
			})
		}

		for _, lf := range Lint(e.Source) {
			lf.Index = i
			lf.Line = line
			report.Findings = append(report.Findings, lf)
		}
	}

	return report
}

func allowedSummary(allowed []plan.Command) string {
	parts := make([]string, len(allowed))
	for i, a := range allowed {
		parts[i] = strings.Join(a, " ")
	}
	return strings.Join(parts, ", ")
}
