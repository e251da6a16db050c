package gitlab

import (
	"context"
	"fmt"
	"strings"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/pipeforge/config"
	"github.com/rios0rios0/pipeforge/domain"
)

const publicHost = "gitlab.com"

// Provider implements domain.HostingProvider for GitLab, including
// self-hosted instances.
type Provider struct {
	cfg      config.ProviderConfig
	user     string
	password string
	client   *gl.Client
}

// New creates a GitLab provider from its configuration.
func New(cfg config.ProviderConfig) (domain.HostingProvider, error) {
	p := &Provider{cfg: cfg, user: cfg.User, password: cfg.Password}
	if err := p.rebuildClient(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) rebuildClient() error {
	var opts []gl.ClientOptionFunc
	if p.cfg.Host() != publicHost {
		opts = append(opts, gl.WithBaseURL(strings.TrimSuffix(p.cfg.Server, "/")+"/api/v4"))
	}
	client, err := gl.NewClient(p.password, opts...)
	if err != nil {
		return fmt.Errorf("failed to build gitlab client for %q: %w", p.cfg.Server, err)
	}
	p.client = client
	return nil
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) HasCredentials() bool { return p.password != "" }

func (p *Provider) SetCredentials(user, password string) {
	p.user = user
	p.password = password
	_ = p.rebuildClient()
}

func (p *Provider) CloneURL(ctx context.Context, project domain.Project) (string, error) {
	proj, _, err := p.client.Projects.GetProject(project.String(), nil, gl.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to resolve clone URL for %s: %w", project, err)
	}
	return proj.HTTPURLToRepo, nil
}

func (p *Provider) HomePage(project domain.Project) string {
	return strings.TrimSuffix(p.cfg.Server, "/") + "/" + project.String()
}

func (p *Provider) ReadText(ctx context.Context, project domain.Project, path, revision string) (string, error) {
	opts := &gl.GetRawFileOptions{}
	if revision != "" {
		opts.Ref = gl.Ptr(revision)
	}
	raw, _, err := p.client.RepositoryFiles.GetRawFile(project.String(), path, opts, gl.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to read %q from %s: %w", path, project, err)
	}
	return string(raw), nil
}

func (p *Provider) Validate(ctx context.Context, project domain.Project, scriptPath string) error {
	if _, _, err := p.client.Projects.GetProject(project.String(), nil, gl.WithContext(ctx)); err != nil {
		return &domain.MissingRemoteProjectError{
			Project: project.String(), Provider: p.cfg.Name, Err: err,
		}
	}
	if _, err := p.ReadText(ctx, project, scriptPath, ""); err != nil {
		return &domain.MissingRemoteProjectError{
			Project:  project.String(),
			Provider: p.cfg.Name,
			Err:      fmt.Errorf("script %q not found: %w", scriptPath, err),
		}
	}
	return nil
}
