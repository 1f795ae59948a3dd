package gitctx

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
)

var (
	ErrNotRepository = errors.New("not inside a git repository")
	errStopIteration = errors.New("stop iteration")
)

// OpenRepository opens the repository containing path, searching parent
// directories the same way git does.
func OpenRepository(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, errors.WithHint(ErrNotRepository, "run gitmeup from inside a git working tree")
		}
		return nil, errors.Wrapf(err, "open repository at %s", path)
	}
	return repo, nil
}

// Probe checks that path is inside a non-bare working tree and reports where
// HEAD points.
func Probe(path string) (*git.Repository, *RepoInfo, error) {
	repo, err := OpenRepository(path)
	if err != nil {
		return nil, nil, err
	}

	if _, err := repo.Worktree(); err != nil {
		if errors.Is(err, git.ErrIsBareRepository) {
			return nil, nil, errors.Wrap(ErrNotRepository, "repository is bare")
		}
		return nil, nil, errors.Wrap(err, "open worktree")
	}

	info := &RepoInfo{}
	head, err := repo.Head()
	switch {
	case err == nil:
		info.HeadHash = head.Hash().String()
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		} else {
			info.Detached = true
		}
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		// Unborn branch: no commits yet. Read the symbolic target instead.
		if ref, refErr := repo.Reference(plumbing.HEAD, false); refErr == nil {
			info.Branch = ref.Target().Short()
		}
	default:
		return nil, nil, errors.Wrap(err, "resolve HEAD")
	}

	return repo, info, nil
}

// ParseAuthor converts go-git Signature to Author
func ParseAuthor(sig object.Signature) Author {
	return Author{
		Name:  sig.Name,
		Email: sig.Email,
		When:  sig.When,
	}
}

// parseSubject returns the first line of a commit message
func parseSubject(message string) string {
	lines := strings.SplitN(message, "\n", 2)
	return strings.TrimSpace(lines[0])
}

// RecentCommits returns up to n commits reachable from HEAD, newest first.
// An unborn branch yields no commits and no error.
func RecentCommits(repo *git.Repository, n int) ([]Commit, error) {
	if n <= 0 {
		return nil, nil
	}

	ref, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "get HEAD")
	}

	commitIter, err := repo.Log(&git.LogOptions{From: ref.Hash()})
	if err != nil {
		return nil, errors.Wrap(err, "get log")
	}
	defer commitIter.Close()

	commits := make([]Commit, 0, n)
	err = commitIter.ForEach(func(c *object.Commit) error {
		if len(commits) >= n {
			return errStopIteration
		}
		hash := c.Hash.String()
		commits = append(commits, Commit{
			Hash:           hash,
			ShortHash:      hash[:8],
			Author:         ParseAuthor(c.Author),
			MessageSubject: parseSubject(c.Message),
			IsMerge:        c.NumParents() > 1,
		})
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, errors.Wrap(err, "iterate commits")
	}

	return commits, nil
}
