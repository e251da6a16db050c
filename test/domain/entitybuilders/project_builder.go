//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/rios0rios0/pipeforge/domain"
)

// ProjectBuilder helps create test projects with a fluent interface.
type ProjectBuilder struct {
	*testkit.BaseBuilder
	organization string
	repository   string
	mainScript   string
}

// NewProjectBuilder creates a new project builder with sensible defaults.
func NewProjectBuilder() *ProjectBuilder {
	return &ProjectBuilder{
		BaseBuilder:  testkit.NewBaseBuilder(),
		organization: "acme",
		repository:   "demo",
		mainScript:   "",
	}
}

// WithOrganization sets the organization.
func (b *ProjectBuilder) WithOrganization(org string) *ProjectBuilder {
	b.organization = org
	return b
}

// WithRepository sets the repository name.
func (b *ProjectBuilder) WithRepository(repo string) *ProjectBuilder {
	b.repository = repo
	return b
}

// WithMainScript pins the main script path.
func (b *ProjectBuilder) WithMainScript(script string) *ProjectBuilder {
	b.mainScript = script
	return b
}

// Build creates the project (satisfies testkit.Builder interface).
func (b *ProjectBuilder) Build() interface{} {
	return b.BuildProject()
}

// BuildProject creates the project with a concrete return type.
func (b *ProjectBuilder) BuildProject() domain.Project {
	return domain.Project{
		Organization: b.organization,
		Repository:   b.repository,
		MainScript:   b.mainScript,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *ProjectBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.organization = "acme"
	b.repository = "demo"
	b.mainScript = ""
	return b
}

// Clone creates a deep copy of the ProjectBuilder.
func (b *ProjectBuilder) Clone() testkit.Builder {
	return &ProjectBuilder{
		BaseBuilder:  b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		organization: b.organization,
		repository:   b.repository,
		mainScript:   b.mainScript,
	}
}
