package gitctx

import "time"

// Snapshot holds the three read-only views of the working tree that are sent
// to the model.
type Snapshot struct {
	// DiffStat is the output of git diff --stat
	DiffStat string `json:"diff_stat"`

	// Status is the output of git status --short
	Status string `json:"status"`

	// Diff is the textual diff with image formats excluded
	Diff string `json:"diff"`
}

// RepoInfo describes the repository found by Probe.
type RepoInfo struct {
	// Branch is the short name of the checked-out branch; empty when detached
	Branch string `json:"branch"`

	// HeadHash is the commit HEAD points to; empty on an unborn branch
	HeadHash string `json:"head_hash,omitempty"`

	Detached bool `json:"detached"`
}

// Author represents Git author information
type Author struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	When  time.Time `json:"when"`
}

// Commit is the summary of a commit shown after apply mode.
type Commit struct {
	Hash           string `json:"hash"`
	ShortHash      string `json:"short_hash"` // First 8 chars for display
	Author         Author `json:"author"`
	MessageSubject string `json:"message_subject"`
	IsMerge        bool   `json:"is_merge"`
}
