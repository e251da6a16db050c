package gitrepo_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pipeforge/domain"
	"github.com/rios0rios0/pipeforge/infrastructure/gitrepo"
)

// requireFileTransport skips tests that sync over file URLs, which shell out
// to the git-upload-pack binary.
func requireFileTransport(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git-upload-pack"); err != nil {
		t.Skip("git-upload-pack binary not available")
	}
}

type fixture struct {
	path string
	raw  *git.Repository
	head plumbing.Hash
}

// newFixture initializes a repository on "main" with one commit.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	path := t.TempDir()
	raw, err := git.PlainInitWithOptions(path, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	require.NoError(t, err)

	f := &fixture{path: path, raw: raw}
	f.head = f.commit(t, "first")
	return f
}

func (f *fixture) commit(t *testing.T, content string) plumbing.Hash {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.path, "main.nf"), []byte(content), 0o644))
	wt, err := f.raw.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("main.nf")
	require.NoError(t, err)
	hash, err := wt.Commit(content, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash
}

// branch creates name at the current head and returns to main.
func (f *fixture) branch(t *testing.T, name string) {
	t.Helper()
	wt, err := f.raw.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	}))
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Branch: plumbing.Main}))
}

// advance commits on the named branch and returns to main.
func (f *fixture) advance(t *testing.T, branch, content string) {
	t.Helper()
	wt, err := f.raw.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(branch)}))
	f.head = f.commit(t, content)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Branch: plumbing.Main}))
}

func (f *fixture) clone(t *testing.T) *gitrepo.Repository {
	t.Helper()
	repo, err := gitrepo.CloneContext(context.Background(), "file://"+f.path, t.TempDir(), nil, "")
	require.NoError(t, err)
	return repo
}

func (f *fixture) open(t *testing.T) *gitrepo.Repository {
	t.Helper()
	repo, err := gitrepo.Open(f.path)
	require.NoError(t, err)
	return repo
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("should fail on a directory without a repository", func(t *testing.T) {
		t.Parallel()

		// given
		dir := t.TempDir()

		// when
		_, err := gitrepo.Open(dir)

		// then
		require.Error(t, err)
	})
}

func TestClose(t *testing.T) {
	t.Parallel()

	t.Run("should be idempotent and mark the handle closed", func(t *testing.T) {
		t.Parallel()

		// given
		repo := newFixture(t).open(t)

		// when
		repo.Close()
		repo.Close()

		// then
		assert.True(t, repo.Closed())
		assert.Equal(t, domain.UnknownRevision, repo.CurrentRevision())
		_, err := repo.IsClean()
		require.Error(t, err)
	})
}

func TestIsClean(t *testing.T) {
	t.Parallel()

	t.Run("should report a fresh checkout as clean", func(t *testing.T) {
		t.Parallel()

		// given
		repo := newFixture(t).open(t)

		// when
		clean, err := repo.IsClean()

		// then
		require.NoError(t, err)
		assert.True(t, clean)
	})

	t.Run("should report an edited file as dirty", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		require.NoError(t, os.WriteFile(filepath.Join(f.path, "main.nf"), []byte("edited"), 0o644))
		repo := f.open(t)

		// when
		clean, err := repo.IsClean()

		// then
		require.NoError(t, err)
		assert.False(t, clean)
	})

	t.Run("should report an untracked file as dirty", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		require.NoError(t, os.WriteFile(filepath.Join(f.path, "extra.txt"), []byte("x"), 0o644))
		repo := f.open(t)

		// when
		clean, err := repo.IsClean()

		// then
		require.NoError(t, err)
		assert.False(t, clean)
	})
}

func TestCurrentRevision(t *testing.T) {
	t.Parallel()

	t.Run("should name the checked-out branch", func(t *testing.T) {
		t.Parallel()

		// given
		repo := newFixture(t).open(t)

		// when
		revision := repo.CurrentRevision()

		// then
		assert.Equal(t, "main", revision)
	})

	t.Run("should name the tag of a tagged detached commit", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		_, err := f.raw.CreateTag("v1.0", f.head, nil)
		require.NoError(t, err)
		wt, err := f.raw.Worktree()
		require.NoError(t, err)
		require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: f.head}))
		repo := f.open(t)

		// when
		revision := repo.CurrentRevision()

		// then
		assert.Equal(t, "v1.0", revision)
	})

	t.Run("should peel an annotated tag on a detached commit", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		_, err := f.raw.CreateTag("v2.0", f.head, &git.CreateTagOptions{
			Tagger:  &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
			Message: "release",
		})
		require.NoError(t, err)
		wt, err := f.raw.Worktree()
		require.NoError(t, err)
		require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: f.head}))
		repo := f.open(t)

		// when
		revision := repo.CurrentRevision()

		// then
		assert.Equal(t, "v2.0", revision)
	})

	t.Run("should fall back to the object id when detached without a tag", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		wt, err := f.raw.Worktree()
		require.NoError(t, err)
		require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: f.head}))
		repo := f.open(t)

		// when
		revision := repo.CurrentRevision()

		// then
		assert.Equal(t, f.head.String(), revision)
	})
}

func TestBranches(t *testing.T) {
	t.Parallel()

	t.Run("should merge local and remote-tracking branches without duplicates", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		for _, name := range []string{
			"refs/remotes/origin/main",
			"refs/remotes/origin/feature",
			"refs/remotes/origin/HEAD",
		} {
			ref := plumbing.NewHashReference(plumbing.ReferenceName(name), f.head)
			require.NoError(t, f.raw.Storer.SetReference(ref))
		}
		repo := f.open(t)

		// when
		branches, err := repo.Branches()

		// then
		require.NoError(t, err)
		names := make([]string, 0, len(branches))
		for _, ref := range branches {
			assert.Equal(t, domain.BranchRef, ref.Kind)
			names = append(names, ref.Name)
		}
		assert.Equal(t, []string{"feature", "main"}, names)
	})
}

func TestTags(t *testing.T) {
	t.Parallel()

	t.Run("should peel annotated tags to their target commit", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		_, err := f.raw.CreateTag("v0.9", f.head, nil)
		require.NoError(t, err)
		_, err = f.raw.CreateTag("v1.0", f.head, &git.CreateTagOptions{
			Tagger:  &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
			Message: "release",
		})
		require.NoError(t, err)
		repo := f.open(t)

		// when
		tags, err := repo.Tags()

		// then
		require.NoError(t, err)
		require.Len(t, tags, 2)
		for _, tag := range tags {
			assert.Equal(t, domain.TagRef, tag.Kind)
			assert.Equal(t, f.head.String(), tag.ObjectID)
		}
	})
}

func TestCheckout(t *testing.T) {
	t.Parallel()

	t.Run("should switch to an existing local branch", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		wt, err := f.raw.Worktree()
		require.NoError(t, err)
		require.NoError(t, wt.Checkout(&git.CheckoutOptions{
			Branch: plumbing.NewBranchReferenceName("dev"),
			Create: true,
		}))
		require.NoError(t, wt.Checkout(&git.CheckoutOptions{Branch: plumbing.Main}))
		repo := f.open(t)

		// when
		err = repo.Checkout("dev")

		// then
		require.NoError(t, err)
		assert.Equal(t, "dev", repo.CurrentRevision())
	})

	t.Run("should detach onto a tag", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		_, err := f.raw.CreateTag("v1.0", f.head, nil)
		require.NoError(t, err)
		repo := f.open(t)

		// when
		err = repo.Checkout("v1.0")

		// then
		require.NoError(t, err)
		assert.Equal(t, "v1.0", repo.CurrentRevision())
	})

	t.Run("should detach onto a commit id", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		second := f.commit(t, "second")
		repo := f.open(t)

		// when
		err := repo.Checkout(f.head.String())

		// then
		require.NoError(t, err)
		assert.Equal(t, f.head.String(), repo.CurrentRevision())
		assert.NotEqual(t, second.String(), repo.CurrentRevision())
	})

	t.Run("should report an unknown revision", func(t *testing.T) {
		t.Parallel()

		// given
		repo := newFixture(t).open(t)

		// when
		err := repo.Checkout("no-such-thing")

		// then
		require.ErrorIs(t, err, gitrepo.ErrRevisionNotFound)
	})
}

func TestRemoteURL(t *testing.T) {
	t.Parallel()

	t.Run("should return the first configured origin URL", func(t *testing.T) {
		t.Parallel()

		// given
		f := newFixture(t)
		_, err := f.raw.CreateRemote(&gitconfig.RemoteConfig{
			Name: git.DefaultRemoteName,
			URLs: []string{"https://github.com/acme/demo.git"},
		})
		require.NoError(t, err)
		repo := f.open(t)

		// when
		url, err := repo.RemoteURL()

		// then
		require.NoError(t, err)
		assert.Equal(t, "https://github.com/acme/demo.git", url)
	})

	t.Run("should fail without an origin remote", func(t *testing.T) {
		t.Parallel()

		// given
		repo := newFixture(t).open(t)

		// when
		_, err := repo.RemoteURL()

		// then
		require.Error(t, err)
	})
}

func TestCheckoutTracking(t *testing.T) {
	t.Parallel()

	t.Run("should land on a local branch tracking a remote-only branch", func(t *testing.T) {
		t.Parallel()
		requireFileTransport(t)

		// given
		origin := newFixture(t)
		origin.branch(t, "dev")
		clone := origin.clone(t)

		// when
		err := clone.CheckoutTracking("dev", nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, "dev", clone.CurrentRevision())
		require.NoError(t, clone.Checkout("main"))
		require.NoError(t, clone.Checkout("dev"))
	})

	t.Run("should fail on a branch the remote does not have either", func(t *testing.T) {
		t.Parallel()
		requireFileTransport(t)

		// given
		origin := newFixture(t)
		clone := origin.clone(t)

		// when
		err := clone.CheckoutTracking("no-such-thing", nil)

		// then
		require.ErrorIs(t, err, gitrepo.ErrRevisionNotFound)
	})
}

func TestPull(t *testing.T) {
	t.Parallel()

	t.Run("should report an unchanged checkout as up to date", func(t *testing.T) {
		t.Parallel()
		requireFileTransport(t)

		// given
		origin := newFixture(t)
		clone := origin.clone(t)

		// when
		outcome, err := clone.Pull(nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, "already up to date", outcome)
	})

	t.Run("should fast-forward the checked-out branch", func(t *testing.T) {
		t.Parallel()
		requireFileTransport(t)

		// given
		origin := newFixture(t)
		clone := origin.clone(t)
		origin.advance(t, "main", "second")

		// when
		outcome, err := clone.Pull(nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, "updated", outcome)
	})

	t.Run("should leave an up-to-date non-default branch untouched", func(t *testing.T) {
		t.Parallel()
		requireFileTransport(t)

		// given
		origin := newFixture(t)
		origin.branch(t, "dev")
		clone := origin.clone(t)
		require.NoError(t, clone.CheckoutTracking("dev", nil))
		pinned := origin.head
		origin.advance(t, "main", "second")

		// when
		outcome, err := clone.Pull(nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, "already up to date", outcome)
		assert.Equal(t, "dev", clone.CurrentRevision())
		ref, err := gitrepoHeadHash(clone.Path())
		require.NoError(t, err)
		assert.Equal(t, pinned.String(), ref)
	})
}

// gitrepoHeadHash resolves HEAD of the checkout at path to its commit id.
func gitrepoHeadHash(path string) (string, error) {
	raw, err := git.PlainOpen(path)
	if err != nil {
		return "", err
	}
	head, err := raw.Head()
	if err != nil {
		return "", err
	}
	return head.Hash().String(), nil
}
