package proposal

import (
	"strings"
	"testing"

	"github.com/Yates-Labs/gitmeup/internal/gitctx"
)

func TestAssemblePrompt_Smoke(t *testing.T) {
	prompt := AssemblePrompt(
		" a.go | 2 +-\n 1 file changed\n",
		" M a.go\n",
		"diff --git a/a.go b/a.go\n-old\n+new\n",
	)

	want := "# git diff --stat\n" +
		"a.go | 2 +-\n 1 file changed\n\n" +
		"# git status --short\n" +
		"M a.go\n\n" +
		"# git diff (images/binaries may be excluded)\n" +
		"diff --git a/a.go b/a.go\n-old\n+new\n\n" +
		"# TASK\n" +
		"Based on the changes above, propose git add/rm/mv and git commit commands as per the instructions."

	if prompt != want {
		t.Errorf("unexpected prompt:\n%s\n--- want ---\n%s", prompt, want)
	}
}

func TestAssemblePrompt_Placeholders(t *testing.T) {
	prompt := AssemblePrompt("", "  \n\t", "\n")

	for _, placeholder := range []string{NoDiffStat, NoStatus, NoTextualDiff} {
		if !strings.Contains(prompt, placeholder) {
			t.Errorf("missing placeholder %q", placeholder)
		}
	}
}

func TestAssemblePrompt_NoEscaping(t *testing.T) {
	diff := "+fmt.Println(\"```bash\")\n+// $HOME <tag> & 'quote'"
	prompt := AssemblePrompt("x", "y", diff)

	if !strings.Contains(prompt, diff) {
		t.Error("diff should be embedded verbatim")
	}
}

func TestAssemblePrompt_Deterministic(t *testing.T) {
	a := AssemblePrompt("stat", "status", "diff")
	b := AssemblePrompt("stat", "status", "diff")
	if a != b {
		t.Fatal("prompt assembly is not deterministic")
	}
}

func TestAssembleSnapshotPrompt(t *testing.T) {
	snap := &gitctx.Snapshot{DiffStat: "s", Status: "?? new.txt", Diff: ""}
	prompt := AssembleSnapshotPrompt(snap)

	if !strings.Contains(prompt, "?? new.txt") {
		t.Error("missing status")
	}
	if !strings.Contains(prompt, NoTextualDiff) {
		t.Error("missing diff placeholder")
	}

	if AssembleSnapshotPrompt(nil) != AssemblePrompt("", "", "") {
		t.Error("nil snapshot should render placeholders")
	}
}

func TestSystemPrompt(t *testing.T) {
	for _, want := range []string{"Conventional Commits", "language \"bash\"", "Do not include git push"} {
		if !strings.Contains(SystemPrompt, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}
