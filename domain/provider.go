package domain

import "context"

// HostingProvider abstracts a Git hosting backend (GitHub, GitLab, Bitbucket,
// local filesystem). One concrete variant exists per backend, selected by the
// provider-configuration name at manager construction time.
type HostingProvider interface {
	// Name returns the configured provider name (e.g. "github").
	Name() string

	// CloneURL resolves the URL the project is cloned from.
	CloneURL(ctx context.Context, project Project) (string, error)

	// HomePage returns the human-facing URL of the project.
	HomePage(project Project) string

	// ReadText fetches a file from the hosted project as raw text.
	// An empty revision means the project's default branch.
	ReadText(ctx context.Context, project Project, path, revision string) (string, error)

	// Validate checks that the project exists remotely and contains the given
	// script. It fails before the first clone ever happens.
	Validate(ctx context.Context, project Project, scriptPath string) error

	// HasCredentials reports whether the provider holds credentials usable
	// for clone and pull.
	HasCredentials() bool

	// SetCredentials overrides the configured credentials.
	SetCredentials(user, password string)
}
