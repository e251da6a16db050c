// Package gitrepo wraps go-git as the version-control backend: handle
// lifecycle, status, clone/fetch/pull, checkout with remote-tracking branch
// creation, revision enumeration, and submodule updates.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pipeforge/domain"
)

// ErrRevisionNotFound marks a local checkout target that does not exist; the
// caller may recover by falling back to a remote-tracking branch.
var ErrRevisionNotFound = errors.New("revision not found")

// errClosed guards use of a released handle.
var errClosed = errors.New("repository handle is closed")

// Auth carries basic credentials for transport operations. A nil *Auth means
// anonymous access.
type Auth struct {
	User     string
	Password string
}

func (a *Auth) method() *githttp.BasicAuth {
	if a == nil || a.Password == "" {
		return nil
	}
	user := a.User
	if user == "" {
		// Token-style auth still requires a non-empty username over HTTP.
		user = "git"
	}
	return &githttp.BasicAuth{Username: user, Password: a.Password}
}

// Repository is an exclusively-owned handle on a local checkout. It is not
// safe for concurrent use; callers serialize access or use separate handles.
type Repository struct {
	path string
	repo *git.Repository
}

// Open opens the repository at path.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %q: %w", path, err)
	}
	return &Repository{path: path, repo: repo}, nil
}

// CloneContext clones url into dir, optionally starting at branch, and
// returns an open handle on the result.
func CloneContext(ctx context.Context, url, dir string, auth *Auth, branch string) (*Repository, error) {
	opts := &git.CloneOptions{URL: url}
	if a := auth.method(); a != nil {
		opts.Auth = a
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}

	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to clone %q: %w", url, err)
	}
	logger.Debugf("Cloned %s into %s", url, dir)
	return &Repository{path: dir, repo: repo}, nil
}

// Path returns the checkout directory.
func (r *Repository) Path() string { return r.path }

// Close releases the handle. It is idempotent; a released handle can be
// reopened through Open.
func (r *Repository) Close() {
	r.repo = nil
}

// Closed reports whether the handle has been released.
func (r *Repository) Closed() bool { return r.repo == nil }

// IsClean reports whether the working tree has no staged, unstaged, or
// untracked differences against HEAD.
func (r *Repository) IsClean() (bool, error) {
	if r.repo == nil {
		return false, errClosed
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("failed to access working tree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read working tree status: %w", err)
	}
	return status.IsClean(), nil
}

// CurrentRevision resolves HEAD to a display name: the branch short name for
// a symbolic HEAD, a tag name for a tagged detached commit, the full object
// id otherwise, or "(unknown)" when HEAD is absent.
func (r *Repository) CurrentRevision() string {
	if r.repo == nil {
		return domain.UnknownRevision
	}
	head, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return domain.UnknownRevision
	}
	if head.Type() == plumbing.SymbolicReference {
		return head.Target().Short()
	}
	if name, ok := r.tagFor(head.Hash()); ok {
		return name
	}
	return head.Hash().String()
}

// tagFor reverse-looks-up a commit among refs/tags/*, peeling annotated tags.
func (r *Repository) tagFor(hash plumbing.Hash) (string, bool) {
	iter, err := r.repo.Tags()
	if err != nil {
		return "", false
	}
	defer iter.Close()

	var found string
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if tag, tagErr := r.repo.TagObject(ref.Hash()); tagErr == nil {
			target = tag.Target
		}
		if target == hash {
			found = ref.Name().Short()
		}
		return nil
	})
	return found, found != ""
}

// Branches enumerates local and origin remote-tracking branches, deduplicated
// by short name with the remote prefix stripped, sorted by name.
func (r *Repository) Branches() ([]domain.RevisionRef, error) {
	if r.repo == nil {
		return nil, errClosed
	}

	seen := make(map[string]bool)
	var out []domain.RevisionRef

	locals, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	_ = locals.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if !seen[name] {
			seen[name] = true
			out = append(out, domain.RevisionRef{
				Name: name, Kind: domain.BranchRef, ObjectID: ref.Hash().String(),
			})
		}
		return nil
	})

	const remotePrefix = "refs/remotes/origin/"
	refs, err := r.repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	_ = refs.ForEach(func(ref *plumbing.Reference) error {
		full := ref.Name().String()
		if !strings.HasPrefix(full, remotePrefix) {
			return nil
		}
		name := strings.TrimPrefix(full, remotePrefix)
		if name == "HEAD" || seen[name] {
			return nil
		}
		seen[name] = true
		out = append(out, domain.RevisionRef{
			Name: name, Kind: domain.BranchRef, ObjectID: ref.Hash().String(),
		})
		return nil
	})

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Tags enumerates tag refs with annotated tags peeled to their target commit.
func (r *Repository) Tags() ([]domain.RevisionRef, error) {
	if r.repo == nil {
		return nil, errClosed
	}
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer iter.Close()

	var out []domain.RevisionRef
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		target := ref.Hash()
		if tag, tagErr := r.repo.TagObject(ref.Hash()); tagErr == nil {
			target = tag.Target
		}
		out = append(out, domain.RevisionRef{
			Name: ref.Name().Short(), Kind: domain.TagRef, ObjectID: target.String(),
		})
		return nil
	})
	return out, nil
}

// Checkout switches the working tree to revision, which may be a local
// branch, a tag, or a commit id. A missing revision yields
// ErrRevisionNotFound so the caller can attempt the remote-tracking fallback.
func (r *Repository) Checkout(revision string) error {
	if r.repo == nil {
		return errClosed
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to access working tree: %w", err)
	}

	branchRef := plumbing.NewBranchReferenceName(revision)
	if _, refErr := r.repo.Reference(branchRef, true); refErr == nil {
		if checkoutErr := wt.Checkout(&git.CheckoutOptions{Branch: branchRef}); checkoutErr != nil {
			return fmt.Errorf("failed to checkout %q: %w", revision, checkoutErr)
		}
		return nil
	}

	hash, resolveErr := r.repo.ResolveRevision(plumbing.Revision(revision))
	if resolveErr != nil {
		return fmt.Errorf("%w: %q", ErrRevisionNotFound, revision)
	}
	if checkoutErr := wt.Checkout(&git.CheckoutOptions{Hash: *hash}); checkoutErr != nil {
		return fmt.Errorf("failed to checkout %q: %w", revision, checkoutErr)
	}
	return nil
}

// CheckoutTracking fetches from origin and checks out a new local branch
// tracking origin/<revision>.
func (r *Repository) CheckoutTracking(revision string, auth *Auth) error {
	if r.repo == nil {
		return errClosed
	}
	if err := r.Fetch(auth); err != nil {
		return err
	}

	remoteRef, err := r.repo.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, revision), true)
	if err != nil {
		return fmt.Errorf("%w: %q has no local or remote-tracking ref", ErrRevisionNotFound, revision)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to access working tree: %w", err)
	}
	branchRef := plumbing.NewBranchReferenceName(revision)
	if checkoutErr := wt.Checkout(&git.CheckoutOptions{
		Branch: branchRef,
		Create: true,
		Hash:   remoteRef.Hash(),
	}); checkoutErr != nil {
		return fmt.Errorf("failed to checkout tracking branch %q: %w", revision, checkoutErr)
	}

	trackErr := r.repo.CreateBranch(&gitconfig.Branch{
		Name:   revision,
		Remote: git.DefaultRemoteName,
		Merge:  branchRef,
	})
	if trackErr != nil && !errors.Is(trackErr, git.ErrBranchExists) {
		logger.Debugf("Could not record upstream for %q: %v", revision, trackErr)
	}
	logger.Debugf("Created local branch %q tracking origin/%s", revision, revision)
	return nil
}

// Fetch updates remote-tracking refs and tags from origin. An already
// up-to-date remote is not an error.
func (r *Repository) Fetch(auth *Auth) error {
	if r.repo == nil {
		return errClosed
	}
	opts := &git.FetchOptions{RemoteName: git.DefaultRemoteName, Tags: git.AllTags}
	if a := auth.method(); a != nil {
		opts.Auth = a
	}
	err := r.repo.Fetch(opts)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	return nil
}

// Pull merges origin into the current branch and describes the outcome.
// Merge problems are surfaced in the returned error for display; they are
// never auto-resolved.
func (r *Repository) Pull(auth *Auth) (string, error) {
	if r.repo == nil {
		return "", errClosed
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to access working tree: %w", err)
	}

	opts := &git.PullOptions{RemoteName: git.DefaultRemoteName}
	// Pull the checked-out branch; an empty ReferenceName would resolve to
	// the remote's HEAD instead.
	if head, headErr := r.repo.Reference(plumbing.HEAD, false); headErr == nil &&
		head.Type() == plumbing.SymbolicReference {
		opts.ReferenceName = head.Target()
	}
	if a := auth.method(); a != nil {
		opts.Auth = a
	}
	err = wt.Pull(opts)
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return "already up to date", nil
	}
	if err != nil {
		return "", fmt.Errorf("pull did not complete: %w", err)
	}
	return "updated", nil
}

// RemoteURL returns the first URL configured for origin.
func (r *Repository) RemoteURL() (string, error) {
	if r.repo == nil {
		return "", errClosed
	}
	remote, err := r.repo.Remote(git.DefaultRemoteName)
	if err != nil {
		return "", fmt.Errorf("failed to read remote %q: %w", git.DefaultRemoteName, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %q has no URL", git.DefaultRemoteName)
	}
	return urls[0], nil
}

// UpdateSubmodules initializes and updates the submodules admitted by the
// filter, returning the updated paths.
func (r *Repository) UpdateSubmodules(auth *Auth, filter *domain.SubmoduleFilter) ([]string, error) {
	if r.repo == nil {
		return nil, errClosed
	}
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to access working tree: %w", err)
	}
	subs, err := wt.Submodules()
	if err != nil {
		return nil, fmt.Errorf("failed to list submodules: %w", err)
	}

	var updated []string
	for _, sub := range subs {
		path := sub.Config().Path
		if !filter.Matches(path) {
			logger.Debugf("Skipping submodule %q (filtered)", path)
			continue
		}
		opts := &git.SubmoduleUpdateOptions{Init: true}
		if a := auth.method(); a != nil {
			opts.Auth = a
		}
		if updateErr := sub.Update(opts); updateErr != nil {
			return updated, fmt.Errorf("failed to update submodule %q: %w", path, updateErr)
		}
		updated = append(updated, path)
	}
	return updated, nil
}
