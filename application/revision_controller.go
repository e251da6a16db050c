package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/mod/semver"

	"github.com/rios0rios0/pipeforge/domain"
	"github.com/rios0rios0/pipeforge/infrastructure/gitrepo"
	"github.com/rios0rios0/pipeforge/infrastructure/manifest"
	"github.com/rios0rios0/pipeforge/infrastructure/store"
)

// submoduleMarker is the marker file gating submodule updates.
const submoduleMarker = ".gitmodules"

// RevisionController exposes revision state and transitions for one
// project's checkout. It reflects repository state on each call; nothing is
// cached across calls.
type RevisionController struct {
	store    *store.AssetStore
	project  domain.Project
	manifest *manifest.Reader
	auth     *gitrepo.Auth
}

// NewRevisionController creates a controller bound to one project.
func NewRevisionController(
	assets *store.AssetStore,
	project domain.Project,
	reader *manifest.Reader,
	auth *gitrepo.Auth,
) *RevisionController {
	return &RevisionController{store: assets, project: project, manifest: reader, auth: auth}
}

// CurrentRevision resolves the checkout's HEAD to a display name.
func (c *RevisionController) CurrentRevision() string {
	repo, err := c.store.OpenRepo(c.project)
	if err != nil {
		return domain.UnknownRevision
	}
	return repo.CurrentRevision()
}

// ListRevisions renders branches (local and remote-tracking, deduplicated)
// followed by tags in descending version order. Detail levels: 0 names only,
// 1 abbreviated commit ids, 2 full ids.
func (c *RevisionController) ListRevisions(ctx context.Context, detail int) ([]string, error) {
	repo, err := c.store.OpenRepo(c.project)
	if err != nil {
		return nil, err
	}

	current := repo.CurrentRevision()
	defaultBranch := c.manifest.Read(ctx).DefaultBranchOrDefault()

	branches, err := repo.Branches()
	if err != nil {
		return nil, err
	}
	tags, err := repo.Tags()
	if err != nil {
		return nil, err
	}
	sortTags(tags)

	lines := make([]string, 0, len(branches)+len(tags))
	for _, ref := range branches {
		lines = append(lines, ref.Format(current, defaultBranch, detail))
	}
	for _, ref := range tags {
		lines = append(lines, ref.Format(current, defaultBranch, detail))
	}
	return lines, nil
}

// sortTags orders semver tags descending, then everything else by name.
func sortTags(tags []domain.RevisionRef) {
	canonical := func(name string) string {
		if !strings.HasPrefix(name, "v") {
			return "v" + name
		}
		return name
	}
	sort.SliceStable(tags, func(i, j int) bool {
		a, b := tags[i], tags[j]
		va, vb := canonical(a.Name), canonical(b.Name)
		validA, validB := semver.IsValid(va), semver.IsValid(vb)
		switch {
		case validA && validB:
			return semver.Compare(va, vb) > 0
		case validA:
			return true
		case validB:
			return false
		default:
			return a.Name < b.Name
		}
	})
}

// Checkout switches the checkout to revision. With no revision it is only
// legal while the checkout sits on the default branch; a pinned checkout
// demands an explicit revision. Any actual change requires a clean tree and
// falls back to a remote-tracking branch when the ref is missing locally.
func (c *RevisionController) Checkout(ctx context.Context, revision string) error {
	repo, err := c.store.OpenRepo(c.project)
	if err != nil {
		return err
	}

	current := repo.CurrentRevision()
	defaultBranch := c.manifest.Read(ctx).DefaultBranchOrDefault()

	if current != defaultBranch {
		if revision == "" {
			return fmt.Errorf(
				"pipeline %s is pinned to revision %s, specify one explicitly with -r",
				c.project, current,
			)
		}
	} else if revision == "" || revision == current {
		return nil
	}

	clean, err := repo.IsClean()
	if err != nil {
		return err
	}
	if !clean {
		return &domain.DirtyWorkingTreeError{Project: c.project.String(), Path: repo.Path()}
	}

	checkoutErr := repo.Checkout(revision)
	if errors.Is(checkoutErr, gitrepo.ErrRevisionNotFound) {
		logger.Debugf("Revision %q not found locally, trying origin/%s", revision, revision)
		return repo.CheckoutTracking(revision, c.auth)
	}
	return checkoutErr
}

// UpdateSubmodules initializes and updates submodules. It is a no-op when
// the marker file is absent or empty, or when the manifest disables
// submodule updating; a manifest path filter restricts the updated set.
func (c *RevisionController) UpdateSubmodules(ctx context.Context) error {
	markerPath := filepath.Join(c.store.PathFor(c.project), submoduleMarker)
	info, err := os.Stat(markerPath)
	if err != nil || info.Size() == 0 {
		return nil
	}

	filter := c.manifest.Read(ctx).Submodules
	if filter != nil && filter.Disabled {
		logger.Debugf("Submodule updates disabled by manifest for %s", c.project)
		return nil
	}

	repo, err := c.store.OpenRepo(c.project)
	if err != nil {
		return err
	}
	updated, err := repo.UpdateSubmodules(c.auth, filter)
	if err != nil {
		return err
	}
	logger.Debugf("Updated %d submodules for %s", len(updated), c.project)
	return nil
}
