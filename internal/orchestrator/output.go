package orchestrator

import (
	"fmt"

	"github.com/Yates-Labs/gitmeup/internal/gitctx"
	"github.com/Yates-Labs/gitmeup/internal/policy"
)

// commitsSince returns the prefix of recent (newest first) that precedes
// oldHead. An empty oldHead means the branch was unborn, so every commit is
// new. If oldHead is not in recent nothing can be said and nil is returned.
func commitsSince(recent []gitctx.Commit, oldHead string) []gitctx.Commit {
	if oldHead == "" {
		return recent
	}
	for i, c := range recent {
		if c.Hash == oldHead {
			return recent[:i]
		}
	}
	return nil
}

// printFindings writes every policy finding to stderr as a warning line.
func (p *Pipeline) printFindings(report policy.Report) {
	for _, f := range report.Findings {
		style := p.deps.Styles.Warning
		if f.Severity == policy.SeverityError {
			style = p.deps.Styles.Error
		}
		fmt.Fprintln(p.deps.Err, style.Render("gitmeup: "+f.String()))
	}
}

func (p *Pipeline) printNewCommits(commits []gitctx.Commit) {
	if len(commits) == 0 {
		return
	}
	p.println(p.deps.Styles.Header.Render("New commits:"))
	for i := len(commits) - 1; i >= 0; i-- {
		c := commits[i]
		p.printf("  %s %s\n", p.deps.Styles.Muted.Render(c.ShortHash), c.MessageSubject)
	}
}

func (p *Pipeline) printf(format string, args ...any) {
	fmt.Fprintf(p.deps.Out, format, args...)
}

func (p *Pipeline) println(line string) {
	fmt.Fprintln(p.deps.Out, line)
}
