package bitbucket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/rios0rios0/pipeforge/config"
	"github.com/rios0rios0/pipeforge/domain"
)

const publicAPI = "https://api.bitbucket.org/2.0"

// Provider implements domain.HostingProvider over the Bitbucket 2.0 REST API.
type Provider struct {
	cfg      config.ProviderConfig
	user     string
	password string
	api      string
	client   *retryablehttp.Client
}

// New creates a Bitbucket provider from its configuration.
func New(cfg config.ProviderConfig) (domain.HostingProvider, error) {
	client := retryablehttp.NewClient()
	client.Logger = nil

	api := publicAPI
	if cfg.Host() != "bitbucket.org" {
		// Bitbucket Server exposes its REST API under the configured endpoint.
		api = strings.TrimSuffix(cfg.Server, "/") + "/rest/api/2.0"
	}

	return &Provider{
		cfg:      cfg,
		user:     cfg.User,
		password: cfg.Password,
		api:      api,
		client:   client,
	}, nil
}

func (p *Provider) Name() string { return p.cfg.Name }

func (p *Provider) HasCredentials() bool { return p.user != "" && p.password != "" }

func (p *Provider) SetCredentials(user, password string) {
	p.user = user
	p.password = password
}

// repoResource is the subset of the repository resource we consume.
type repoResource struct {
	Links struct {
		Clone []struct {
			Name string `json:"name"`
			Href string `json:"href"`
		} `json:"clone"`
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
	} `json:"links"`
	MainBranch struct {
		Name string `json:"name"`
	} `json:"mainbranch"`
}

func (p *Provider) get(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %q: %w", url, err)
	}
	if p.HasCredentials() {
		req.SetBasicAuth(p.user, p.password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %q failed: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request to %q returned status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %q: %w", url, err)
	}
	return body, nil
}

func (p *Provider) repository(ctx context.Context, project domain.Project) (*repoResource, error) {
	body, err := p.get(ctx, fmt.Sprintf("%s/repositories/%s", p.api, project))
	if err != nil {
		return nil, err
	}
	var repo repoResource
	if unmarshalErr := json.Unmarshal(body, &repo); unmarshalErr != nil {
		return nil, fmt.Errorf("unexpected repository payload for %s: %w", project, unmarshalErr)
	}
	return &repo, nil
}

func (p *Provider) CloneURL(ctx context.Context, project domain.Project) (string, error) {
	repo, err := p.repository(ctx, project)
	if err != nil {
		return "", fmt.Errorf("failed to resolve clone URL for %s: %w", project, err)
	}
	for _, link := range repo.Links.Clone {
		if link.Name == "https" {
			return link.Href, nil
		}
	}
	return "", fmt.Errorf("no https clone link for %s", project)
}

func (p *Provider) HomePage(project domain.Project) string {
	return strings.TrimSuffix(p.cfg.Server, "/") + "/" + project.String()
}

func (p *Provider) ReadText(ctx context.Context, project domain.Project, path, revision string) (string, error) {
	if revision == "" {
		repo, err := p.repository(ctx, project)
		if err != nil {
			return "", fmt.Errorf("failed to read %q from %s: %w", path, project, err)
		}
		revision = repo.MainBranch.Name
	}
	body, err := p.get(ctx, fmt.Sprintf("%s/repositories/%s/src/%s/%s", p.api, project, revision, path))
	if err != nil {
		return "", fmt.Errorf("failed to read %q from %s: %w", path, project, err)
	}
	return string(body), nil
}

func (p *Provider) Validate(ctx context.Context, project domain.Project, scriptPath string) error {
	if _, err := p.repository(ctx, project); err != nil {
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
