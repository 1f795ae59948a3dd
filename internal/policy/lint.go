package policy

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Lint parses a raw proposed line as POSIX shell and reports constructs whose
// meaning would change when the line is run as a plain argument vector.
// Operators, redirects and substitutions are errors: the program would receive
// them as literal arguments. Expansions and comments are warnings: they are
// passed through unexpanded.
func Lint(line string) []Finding {
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX), syntax.KeepComments(true))
	file, err := parser.Parse(strings.NewReader(line), "")
	if err != nil {
		return []Finding{warning("not valid POSIX shell syntax (" + err.Error() + "); arguments are taken literally")}
	}

	var findings []Finding

	if len(file.Stmts) > 1 {
		findings = append(findings, shellError("contains multiple statements separated by ';'"))
	}

	for _, stmt := range file.Stmts {
		if stmt.Background {
			findings = append(findings, shellError("runs in the background with '&'"))
		}
		if stmt.Negated {
			findings = append(findings, shellError("negates the exit status with '!'"))
		}
		if len(stmt.Redirs) > 0 {
			findings = append(findings, shellError("uses output or input redirection"))
		}

		switch cmd := stmt.Cmd.(type) {
		case *syntax.CallExpr:
			if len(cmd.Assigns) > 0 {
				findings = append(findings, shellError("sets environment variables before the program name"))
			}
		case *syntax.BinaryCmd:
			findings = append(findings, shellError("chains commands with '"+cmd.Op.String()+"'"))
		case nil:
		default:
			findings = append(findings, shellError("uses a compound shell command"))
		}
	}

	seen := make(map[string]bool)
	add := func(f Finding) {
		if !seen[f.Message] {
			seen[f.Message] = true
			findings = append(findings, f)
		}
	}

	hasComment := len(file.Last) > 0
	for _, stmt := range file.Stmts {
		hasComment = hasComment || len(stmt.Comments) > 0
	}
	if hasComment {
		add(warning("contains '#' text that a shell would treat as a comment"))
	}

	syntax.Walk(file, func(node syntax.Node) bool {
		switch node.(type) {
		case *syntax.CmdSubst:
			add(shellError("uses command substitution"))
		case *syntax.ProcSubst:
			add(shellError("uses process substitution"))
		case *syntax.ParamExp:
			add(warning("contains a parameter expansion that will be passed literally"))
		case *syntax.ArithmExp:
			add(warning("contains an arithmetic expansion that will be passed literally"))
		}
		return true
	})

	return findings
}

func shellError(msg string) Finding {
	return Finding{Severity: SeverityError, Message: msg, Err: ErrShellSyntax}
}

func warning(msg string) Finding {
	return Finding{Severity: SeverityWarning, Message: msg, Err: ErrShellSyntax}
}
