package proposal

import (
	"strings"

	"github.com/Yates-Labs/gitmeup/internal/gitctx"
)

// Placeholders used when a snapshot view is empty.
const (
	NoDiffStat    = "(no diff stat)"
	NoStatus      = "(no status)"
	NoTextualDiff = "(no textual diff)"
)

// SystemPrompt is the fixed behavioral policy sent with every request. It
// governs commit-message style and the output format the plan package parses.
const SystemPrompt = `You are a Conventional Commits writer. You generate precise commit messages that follow Conventional Commits 1.0.0:

<type>[optional scope]: <description>

Valid types include: feat, fix, chore, docs, style, refactor, perf, test, ci, and revert.
Use "!" or a BREAKING CHANGE footer for breaking changes.
Avoid non-standard types.
Suggest splitting changes into multiple commits when appropriate, and reflect that by outputting multiple git commit commands.

You receive:
- A ` + "`git diff --stat`" + ` output
- A ` + "`git status`" + ` output
- A ` + "`git diff`" + ` output where binary/image formats may have been excluded from the diff body

RULES FOR DECIDING COMMITS:
- Keep each commit atomic and semantically focused (feature, refactor, docs, locales, tests, CI, assets, etc.).
- Never invent files; operate only on files that appear in the provided git status or diff.
- If staged vs unstaged is unclear, assume everything is unstaged and must be added.
- If the changes are heterogeneous, split them into multiple commits and multiple batches.

STRICT PATH QUOTING (MANDATORY):
You output git commands that the user will paste directly in a POSIX shell.

For every path in git add/rm/mv:
- Quote the path with double quotes only if it contains characters outside the safe set [A-Za-z0-9._/\-].
- Always quote paths containing: space, tab, (, ), [, ], {, }, &, |, ;, *, ?, !, ~, $, ` + "`" + `, ', ", <, >, #, %, or any non-ASCII character.
- Never quote safe paths unnecessarily.
- Do not invent or "fix" paths; use exactly the paths you see, correctly quoted.

COMMAND GROUPING AND ORDER:
- Group files into small, meaningful batches.
- For each batch:
  - First output one or more git add/rm/mv commands.
  - Immediately after those, output one git commit -m "type[optional scope]: description" for that batch.
- Do not include git push or any remote-related commands.

OUTPUT FORMAT (VERY IMPORTANT):
- Respond with one fenced code block with language "bash".
- Inside that block, output only executable commands, one per line.
- No prose or comments.
- You may separate batches with a single blank line between them.

STYLE OF COMMIT MESSAGES:
- Descriptions are short, imperative, and specific.
`

// AssemblePrompt formats the three working tree views into the request text.
// Each view is trimmed and placed under its own heading; an empty view is
// replaced by a placeholder. Content is embedded as-is, without escaping.
func AssemblePrompt(diffStat, status, diff string) string {
	var b strings.Builder

	b.WriteString("# git diff --stat\n")
	b.WriteString(orPlaceholder(diffStat, NoDiffStat))
	b.WriteString("\n\n")

	b.WriteString("# git status --short\n")
	b.WriteString(orPlaceholder(status, NoStatus))
	b.WriteString("\n\n")

	b.WriteString("# git diff (images/binaries may be excluded)\n")
	b.WriteString(orPlaceholder(diff, NoTextualDiff))
	b.WriteString("\n\n")

	b.WriteString("# TASK\n")
	b.WriteString("Based on the changes above, propose git add/rm/mv and git commit commands as per the instructions.")

	return b.String()
}

// AssembleSnapshotPrompt is AssemblePrompt for a collected snapshot.
func AssembleSnapshotPrompt(snap *gitctx.Snapshot) string {
	if snap == nil {
		return AssemblePrompt("", "", "")
	}
	return AssemblePrompt(snap.DiffStat, snap.Status, snap.Diff)
}

func orPlaceholder(text, placeholder string) string {
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		return trimmed
	}
	return placeholder
}
