// Package testdoubles provides test doubles (spies, stubs, dummies) for
// domain interfaces. These are hand-crafted implementations, no mock
// frameworks.
package testdoubles

import (
	"context"
	"fmt"

	"github.com/rios0rios0/pipeforge/domain"
)

// ---------------------------------------------------------------------------
// SpyProvider
// ---------------------------------------------------------------------------

// SpyProvider implements domain.HostingProvider as a configurable spy.
// Configure the response fields for the methods your test exercises, then
// inspect the call-tracking fields to verify behavior.
type SpyProvider struct {
	// --- identity ---
	ProviderName string

	// --- CloneURL ---
	CloneURLResult string
	CloneURLErr    error

	// --- HomePage ---
	HomePageResult string

	// --- ReadText ---
	FileContents map[string]string // path -> content
	ReadTextErr  error
	// spy: paths that were requested
	ReadPaths []string

	// --- Validate ---
	ValidateErr error
	// spy: scripts that were validated
	ValidatedScripts []string

	// --- credentials ---
	Credentials bool
	// spy: credentials received
	SetUser     string
	SetPassword string
}

func (s *SpyProvider) Name() string { return s.ProviderName }

func (s *SpyProvider) CloneURL(_ context.Context, _ domain.Project) (string, error) {
	return s.CloneURLResult, s.CloneURLErr
}

func (s *SpyProvider) HomePage(_ domain.Project) string { return s.HomePageResult }

func (s *SpyProvider) ReadText(_ context.Context, _ domain.Project, path, _ string) (string, error) {
	s.ReadPaths = append(s.ReadPaths, path)
	if s.ReadTextErr != nil {
		return "", s.ReadTextErr
	}
	content, ok := s.FileContents[path]
	if !ok {
		return "", fmt.Errorf("no such file: %s", path)
	}
	return content, nil
}

func (s *SpyProvider) Validate(_ context.Context, _ domain.Project, scriptPath string) error {
	s.ValidatedScripts = append(s.ValidatedScripts, scriptPath)
	return s.ValidateErr
}

func (s *SpyProvider) HasCredentials() bool { return s.Credentials }

func (s *SpyProvider) SetCredentials(user, password string) {
	s.SetUser = user
	s.SetPassword = password
	s.Credentials = password != ""
}

// ---------------------------------------------------------------------------
// DummyProvider
// ---------------------------------------------------------------------------

// DummyProvider satisfies domain.HostingProvider with inert behavior, for
// tests that only need something to pass around.
type DummyProvider struct{}

func (d *DummyProvider) Name() string { return "dummy" }

func (d *DummyProvider) CloneURL(context.Context, domain.Project) (string, error) {
	return "", nil
}

func (d *DummyProvider) HomePage(domain.Project) string { return "" }

func (d *DummyProvider) ReadText(context.Context, domain.Project, string, string) (string, error) {
	return "", fmt.Errorf("dummy provider has no files")
}

func (d *DummyProvider) Validate(context.Context, domain.Project, string) error { return nil }

func (d *DummyProvider) HasCredentials() bool { return false }

func (d *DummyProvider) SetCredentials(string, string) {}
