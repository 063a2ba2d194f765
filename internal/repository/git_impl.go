package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// shortHashLength matches git's default abbreviation.
const shortHashLength = 7

// gitRepository describes the working tree through go-git, without a git binary.
type gitRepository struct {
	repo *git.Repository
}

// NewGitRepository opens the repository containing dir.
func NewGitRepository(dir string) (GitRepository, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	return &gitRepository{repo: repo}, nil
}

// Describe renders TAG-COMMITS-gHASH[-dirty] for the nearest tag reachable from HEAD.
func (r *gitRepository) Describe(ctx context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	tags, err := r.tagsByCommit()
	if err != nil {
		return "", err
	}
	tag, distance, err := r.nearestTag(ctx, head.Hash(), tags)
	if err != nil {
		return "", err
	}
	dirty, err := r.isDirty()
	if err != nil {
		return "", err
	}
	out := fmt.Sprintf("%s-%d-g%s", tag, distance, head.Hash().String()[:shortHashLength])
	if dirty {
		out += "-dirty"
	}
	return out, nil
}

// tagsByCommit maps commit hashes to the names of the tags pointing at them.
// Lightweight and annotated tags are both included.
func (r *gitRepository) tagsByCommit() (map[plumbing.Hash][]string, error) {
	tagRefs, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	tags := make(map[plumbing.Hash][]string)
	if err := tagRefs.ForEach(func(ref *plumbing.Reference) error {
		hash, ok := r.resolveTagCommit(ref)
		if !ok {
			return nil // Skip tags that do not point at a commit
		}
		tags[hash] = append(tags[hash], ref.Name().Short())
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}

// resolveTagCommit resolves a tag reference to its commit hash.
func (r *gitRepository) resolveTagCommit(tagRef *plumbing.Reference) (plumbing.Hash, bool) {
	// Try as lightweight tag first
	if commit, err := r.repo.CommitObject(tagRef.Hash()); err == nil {
		return commit.Hash, true
	}
	// Try as annotated tag
	if tagObj, err := r.repo.TagObject(tagRef.Hash()); err == nil {
		if commit, err := tagObj.Commit(); err == nil {
			return commit.Hash, true
		}
	}
	return plumbing.ZeroHash, false
}

// nearestTag picks the tag reachable from HEAD with the fewest commits in
// tag..HEAD, which is the distance git describe reports. Ties go to pickTag.
func (r *gitRepository) nearestTag(
	ctx context.Context,
	from plumbing.Hash,
	tags map[plumbing.Hash][]string,
) (string, int, error) {
	if len(tags) == 0 {
		return "", 0, ErrNoTags
	}
	head, err := r.repo.CommitObject(from)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get HEAD commit: %w", err)
	}
	reachable, err := r.ancestors(ctx, head, nil)
	if err != nil {
		return "", 0, err
	}
	var best string
	bestDistance := -1
	for hash, names := range tags {
		if !reachable[hash] {
			continue
		}
		tagCommit, err := r.repo.CommitObject(hash)
		if err != nil {
			return "", 0, fmt.Errorf("failed to get tagged commit %s: %w", hash, err)
		}
		base, err := r.ancestors(ctx, tagCommit, nil)
		if err != nil {
			return "", 0, err
		}
		ahead, err := r.ancestors(ctx, head, base)
		if err != nil {
			return "", 0, err
		}
		name := pickTag(names)
		distance := len(ahead)
		if bestDistance < 0 || distance < bestDistance ||
			(distance == bestDistance && pickTag([]string{best, name}) == name) {
			best = name
			bestDistance = distance
		}
	}
	if bestDistance < 0 {
		return "", 0, ErrNoTags
	}
	return best, bestDistance, nil
}

// ancestors returns every commit reachable from start, start included,
// without walking into commits present in exclude.
func (r *gitRepository) ancestors(
	ctx context.Context,
	start *object.Commit,
	exclude map[plumbing.Hash]bool,
) (map[plumbing.Hash]bool, error) {
	seen := make(map[plumbing.Hash]bool)
	err := object.NewCommitPreorderIter(start, exclude, nil).ForEach(func(c *object.Commit) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		seen[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}
	return seen, nil
}

// pickTag chooses among tags on the same commit: highest semantic version
// first, then the lexically greatest name.
func pickTag(names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, errI := semver.NewVersion(sorted[i])
		vj, errJ := semver.NewVersion(sorted[j])
		switch {
		case errI == nil && errJ == nil:
			if c := vi.Compare(vj); c != 0 {
				return c > 0
			}
		case errI == nil:
			return true
		case errJ == nil:
			return false
		}
		return sorted[i] > sorted[j]
	})
	return sorted[0]
}

// isDirty reports tracked changes against HEAD. Untracked files are ignored.
func (r *gitRepository) isDirty() (bool, error) {
	w, err := r.repo.Worktree()
	if errors.Is(err, git.ErrIsBareRepository) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := w.Status()
	if err != nil {
		return false, fmt.Errorf("failed to get status: %w", err)
	}
	for _, s := range status {
		if s.Worktree == git.Untracked && s.Staging == git.Untracked {
			continue
		}
		if s.Worktree != git.Unmodified || s.Staging != git.Unmodified {
			return true, nil
		}
	}
	return false, nil
}
