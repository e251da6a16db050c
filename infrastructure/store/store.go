// Package store owns the local cache layout: assets are checked out at
// root/organization/repository, and existence of that path is the sole
// signal that a pipeline is installed.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pipeforge/domain"
	"github.com/rios0rios0/pipeforge/infrastructure/gitrepo"
)

// AssetStore lays out and inspects the local cache. It also owns the
// lazily-opened repository handle for the project currently being managed;
// the handle is not safe for concurrent use by multiple goroutines.
type AssetStore struct {
	root     string
	repo     *gitrepo.Repository
	repoPath string
}

// New creates a store rooted at root. The directory may not exist yet.
func New(root string) *AssetStore {
	return &AssetStore{root: root}
}

// Root returns the cache root directory.
func (s *AssetStore) Root() string { return s.root }

// PathFor computes the deterministic local path of a project.
func (s *AssetStore) PathFor(project domain.Project) string {
	return filepath.Join(s.root, project.Organization, project.Repository)
}

// IsLocal reports whether the project is installed locally.
func (s *AssetStore) IsLocal(project domain.Project) bool {
	info, err := os.Stat(s.PathFor(project))
	return err == nil && info.IsDir()
}

// List enumerates installed assets as canonical organization/repository
// names. An absent root yields an empty list.
func (s *AssetStore) List() []string {
	orgs, err := os.ReadDir(s.root)
	if err != nil {
		return nil
	}

	var names []string
	for _, org := range orgs {
		if !org.IsDir() || org.Name()[0] == '.' {
			continue
		}
		repos, readErr := os.ReadDir(filepath.Join(s.root, org.Name()))
		if readErr != nil {
			logger.Debugf("Cannot read assets under %q: %v", org.Name(), readErr)
			continue
		}
		for _, repo := range repos {
			if !repo.IsDir() || repo.Name()[0] == '.' {
				continue
			}
			names = append(names, org.Name()+"/"+repo.Name())
		}
	}
	return names
}

// OpenRepo returns the repository handle for the project, opening it on
// first use. The handle is shared until Close releases it; re-opening after
// a close is legal.
func (s *AssetStore) OpenRepo(project domain.Project) (*gitrepo.Repository, error) {
	path := s.PathFor(project)
	if s.repo != nil && !s.repo.Closed() && s.repoPath == path {
		return s.repo, nil
	}

	repo, err := gitrepo.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline %s has no usable checkout: %w", project, err)
	}
	s.repo = repo
	s.repoPath = path
	return repo, nil
}

// Close releases the cached repository handle. Safe to call repeatedly.
func (s *AssetStore) Close() {
	if s.repo != nil {
		s.repo.Close()
		s.repo = nil
		s.repoPath = ""
	}
}

// Drop deletes the project's local checkout and releases the handle if it
// points there.
func (s *AssetStore) Drop(project domain.Project) error {
	path := s.PathFor(project)
	if s.repoPath == path {
		s.Close()
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to remove %q: %w", path, err)
	}
	return nil
}
