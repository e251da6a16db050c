package application

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pipeforge/config"
	"github.com/rios0rios0/pipeforge/domain"
	"github.com/rios0rios0/pipeforge/infrastructure/gitrepo"
	"github.com/rios0rios0/pipeforge/infrastructure/manifest"
	"github.com/rios0rios0/pipeforge/infrastructure/provider"
	"github.com/rios0rios0/pipeforge/infrastructure/store"
)

// Options tune how a manager is bound to a project.
type Options struct {
	Hub      string // Explicit provider name; empty means infer or default
	User     string // Credential overrides applied to the bound provider
	Password string
}

// ManagerFactory builds AssetManager instances. Project identity and the
// bound provider are fixed at build time.
type ManagerFactory struct {
	settings config.Settings
	configs  *config.Store
	registry *provider.Registry
	assets   *store.AssetStore
	resolver *Resolver
}

// NewManagerFactory wires the factory from its collaborators.
func NewManagerFactory(
	settings config.Settings,
	configs *config.Store,
	registry *provider.Registry,
	assets *store.AssetStore,
	resolver *Resolver,
) *ManagerFactory {
	return &ManagerFactory{
		settings: settings,
		configs:  configs,
		registry: registry,
		assets:   assets,
		resolver: resolver,
	}
}

// Build resolves identifier and binds a manager to the result.
func (f *ManagerFactory) Build(identifier string, opts Options) (*AssetManager, error) {
	resolution, err := f.resolver.Resolve(identifier)
	if err != nil {
		return nil, err
	}
	project := resolution.Project

	cfg, err := f.selectProvider(resolution, opts)
	if err != nil {
		return nil, err
	}
	if opts.Password != "" {
		cfg.User = opts.User
		cfg.Password = opts.Password
	}

	hosting, err := f.registry.Get(cfg)
	if err != nil {
		return nil, err
	}
	if opts.Password != "" {
		hosting.SetCredentials(opts.User, opts.Password)
	}

	reader := manifest.NewReader(f.assets.PathFor(project), project, hosting)
	var auth *gitrepo.Auth
	if cfg.HasCredentials() {
		auth = &gitrepo.Auth{User: cfg.User, Password: cfg.Password}
	}

	return &AssetManager{
		project:   project,
		provider:  hosting,
		cfg:       cfg,
		assets:    f.assets,
		manifest:  reader,
		revisions: NewRevisionController(f.assets, project, reader, auth),
		auth:      auth,
	}, nil
}

// selectProvider picks the provider configuration: a synthesized local
// provider from the identifier itself, then an explicit request, then
// inference from the installed checkout's remote URL, then the default.
func (f *ManagerFactory) selectProvider(resolution domain.Resolution, opts Options) (config.ProviderConfig, error) {
	if s := resolution.Provider; s != nil {
		return config.ProviderConfig{Name: s.Name, Type: config.TypeLocal, Server: s.Path}, nil
	}
	if opts.Hub != "" {
		return f.configs.Select(opts.Hub)
	}
	if f.assets.IsLocal(resolution.Project) {
		if repo, err := f.assets.OpenRepo(resolution.Project); err == nil {
			if remote, remoteErr := repo.RemoteURL(); remoteErr == nil {
				if cfg, ok := f.configs.MatchServer(remote); ok {
					logger.Debugf("Inferred provider %q from remote %q", cfg.Name, remote)
					return cfg, nil
				}
			}
		}
	}
	return f.configs.Select(f.settings.Hub)
}

// AssetManager orchestrates download, clone, and checkout for one project.
// Instances are not safe for concurrent use; callers serialize access or
// build separate instances.
type AssetManager struct {
	project   domain.Project
	provider  domain.HostingProvider
	cfg       config.ProviderConfig
	assets    *store.AssetStore
	manifest  *manifest.Reader
	revisions *RevisionController
	auth      *gitrepo.Auth
}

// Project returns the bound project identity.
func (m *AssetManager) Project() domain.Project { return m.project }

// Provider returns the bound hosting provider.
func (m *AssetManager) Provider() domain.HostingProvider { return m.provider }

// Revisions returns the revision controller for the bound project.
func (m *AssetManager) Revisions() *RevisionController { return m.revisions }

// Manifest re-reads the project manifest.
func (m *AssetManager) Manifest(ctx context.Context) domain.Manifest {
	return m.manifest.Read(ctx)
}

// IsLocal reports whether the project is installed.
func (m *AssetManager) IsLocal() bool { return m.assets.IsLocal(m.project) }

// Close releases the repository handle. Idempotent.
func (m *AssetManager) Close() { m.assets.Close() }

// IsDirty reports whether the installed checkout holds uncommitted changes.
func (m *AssetManager) IsDirty() (bool, error) {
	repo, err := m.assets.OpenRepo(m.project)
	if err != nil {
		return false, err
	}
	clean, err := repo.IsClean()
	if err != nil {
		return false, err
	}
	return !clean, nil
}

// Drop deletes the project's local checkout.
func (m *AssetManager) Drop() error {
	return m.assets.Drop(m.project)
}

// Download installs the project or brings an installed checkout up to date,
// returning a short status description. A first-time download validates the
// remote project, then clones; an installed one requires a clean tree and
// either checks out the requested revision or pulls.
func (m *AssetManager) Download(ctx context.Context, revision string) (string, error) {
	if !m.assets.IsLocal(m.project) {
		return m.downloadFresh(ctx, revision)
	}

	repo, err := m.assets.OpenRepo(m.project)
	if err != nil {
		return "", err
	}
	clean, err := repo.IsClean()
	if err != nil {
		return "", err
	}
	if !clean {
		return "", &domain.DirtyWorkingTreeError{Project: m.project.String(), Path: repo.Path()}
	}

	if revision != "" && revision != repo.CurrentRevision() {
		if checkoutErr := m.revisions.Checkout(ctx, revision); checkoutErr != nil {
			return "", checkoutErr
		}
		return fmt.Sprintf("checked out revision %s", revision), nil
	}

	outcome, err := repo.Pull(m.auth)
	if err != nil {
		return "", err
	}
	return outcome, nil
}

func (m *AssetManager) downloadFresh(ctx context.Context, revision string) (string, error) {
	path := m.assets.PathFor(m.project)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	script := m.scriptName(ctx)
	if err := m.provider.Validate(ctx, m.project, script); err != nil {
		return "", err
	}

	cloneURL, err := m.provider.CloneURL(ctx, m.project)
	if err != nil {
		return "", err
	}

	logger.Infof("Downloading %s from %s", m.project, m.provider.Name())
	repo, err := gitrepo.CloneContext(ctx, cloneURL, path, m.auth, "")
	if err != nil {
		return "", err
	}
	repo.Close()

	if revision != "" {
		if checkoutErr := m.revisions.Checkout(ctx, revision); checkoutErr != nil {
			return "", checkoutErr
		}
	}
	return "downloaded " + m.project.String(), nil
}

// CloneTo clones the project into an arbitrary directory, independent of the
// managed cache, optionally starting at a branch.
func (m *AssetManager) CloneTo(ctx context.Context, dir, revision string) error {
	cloneURL, err := m.CloneURL(ctx)
	if err != nil {
		return err
	}
	if cloneURL == "" {
		return fmt.Errorf("cannot determine clone URL for %s", m.project)
	}

	repo, err := gitrepo.CloneContext(ctx, cloneURL, dir, m.auth, revision)
	if err != nil {
		return err
	}
	repo.Close()
	return nil
}

// CloneURL resolves where the project is cloned from: the installed
// checkout's own location when present (so a cached asset can be re-cloned
// offline), otherwise the bound provider.
func (m *AssetManager) CloneURL(ctx context.Context) (string, error) {
	if m.assets.IsLocal(m.project) {
		return "file://" + m.assets.PathFor(m.project), nil
	}
	return m.provider.CloneURL(ctx, m.project)
}

// MainScriptFile returns the on-disk path of the resolved main script.
func (m *AssetManager) MainScriptFile(ctx context.Context) (string, error) {
	if !m.assets.IsLocal(m.project) {
		return "", &domain.MissingLocalAssetError{Name: m.project.String()}
	}

	script := m.scriptName(ctx)
	full := filepath.Join(m.assets.PathFor(m.project), script)
	if _, err := os.Stat(full); err != nil {
		return "", fmt.Errorf("pipeline %s has no script file %q: %w", m.project, script, err)
	}
	return full, nil
}

// scriptName resolves the main script: the pinned path from the identifier,
// then the manifest declaration, then the system default.
func (m *AssetManager) scriptName(ctx context.Context) string {
	if m.project.MainScript != "" {
		return m.project.MainScript
	}
	return m.manifest.Read(ctx).MainScriptOrDefault()
}
