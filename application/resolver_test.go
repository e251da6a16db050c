package application_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/pipeforge/application"
	"github.com/rios0rios0/pipeforge/config"
	"github.com/rios0rios0/pipeforge/domain"
	"github.com/rios0rios0/pipeforge/infrastructure/store"
)

func newResolver(t *testing.T, installed ...string) *application.Resolver {
	t.Helper()
	root := t.TempDir()
	for _, name := range installed {
		require.NoError(t, os.MkdirAll(filepath.Join(root, filepath.FromSlash(name)), 0o755))
	}
	settings := config.Settings{Root: root, Organization: "pipeforge-io", Hub: "github"}
	return application.NewResolver(store.New(root), settings)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("should return two-segment names unchanged", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t)

		// when
		res, err := resolver.Resolve("acme/demo")

		// then
		require.NoError(t, err)
		assert.Equal(t, "acme/demo", res.Project.String())
		assert.Empty(t, res.Project.MainScript)
		assert.Nil(t, res.Provider)
	})

	t.Run("should strip a pinned script path", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t)

		// when
		res, err := resolver.Resolve("acme/demo/scripts/run.nf")

		// then
		require.NoError(t, err)
		assert.Equal(t, "acme/demo", res.Project.String())
		assert.Equal(t, "scripts/run.nf", res.Project.MainScript)
	})

	t.Run("should strip a single-segment script name", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t)

		// when
		res, err := resolver.Resolve("acme/demo/run.nf")

		// then
		require.NoError(t, err)
		assert.Equal(t, "acme/demo", res.Project.String())
		assert.Equal(t, "run.nf", res.Project.MainScript)
	})

	t.Run("should reject a script without an owner", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t)

		// when
		_, err := resolver.Resolve("demo/run.nf")

		// then
		var invalidErr *domain.InvalidNameError
		require.ErrorAs(t, err, &invalidErr)
	})

	t.Run("should reject more than two segments without a script", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t)

		// when
		_, err := resolver.Resolve("acme/demo/extra")

		// then
		var invalidErr *domain.InvalidNameError
		require.ErrorAs(t, err, &invalidErr)
	})

	t.Run("should reject an empty identifier", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t)

		// when
		_, err := resolver.Resolve("   ")

		// then
		var invalidErr *domain.InvalidNameError
		require.ErrorAs(t, err, &invalidErr)
	})
}

func TestResolveShortName(t *testing.T) {
	t.Parallel()

	t.Run("should synthesize the default organization with no matches", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t)

		// when
		res, err := resolver.Resolve("foo")

		// then
		require.NoError(t, err)
		assert.Equal(t, "pipeforge-io/foo", res.Project.String())
	})

	t.Run("should return the single installed match", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t, "acme/foo")

		// when
		res, err := resolver.Resolve("foo")

		// then
		require.NoError(t, err)
		assert.Equal(t, "acme/foo", res.Project.String())
	})

	t.Run("should prefer an exact match over a prefix match", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t, "acme/foo", "acme/foobar")

		// when
		res, err := resolver.Resolve("foo")

		// then
		require.NoError(t, err)
		assert.Equal(t, "acme/foo", res.Project.String())
	})

	t.Run("should resolve a prefix match when no exact match exists", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t, "acme/foobar")

		// when
		res, err := resolver.Resolve("foo")

		// then
		require.NoError(t, err)
		assert.Equal(t, "acme/foobar", res.Project.String())
	})

	t.Run("should fail with all candidates on an ambiguous name", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t, "a/foo", "b/foo")

		// when
		_, err := resolver.Resolve("foo")

		// then
		var ambiguousErr *domain.AmbiguousNameError
		require.ErrorAs(t, err, &ambiguousErr)
		assert.ElementsMatch(t, []string{"a/foo", "b/foo"}, ambiguousErr.Candidates)
	})
}

func TestResolveCloneURL(t *testing.T) {
	t.Parallel()

	t.Run("should take the project path from an https clone URL", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t)

		// when
		res, err := resolver.Resolve("https://github.com/acme/demo.git")

		// then
		require.NoError(t, err)
		assert.Equal(t, "acme/demo", res.Project.String())
		assert.Nil(t, res.Provider)
	})

	t.Run("should normalize scp-like ssh syntax", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t)

		// when
		res, err := resolver.Resolve("git@github.com:acme/demo.git")

		// then
		require.NoError(t, err)
		assert.Equal(t, "acme/demo", res.Project.String())
	})

	t.Run("should synthesize a local provider from a file URL", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t)

		// when
		res, err := resolver.Resolve("file:///opt/repos/pipe.git")

		// then
		require.NoError(t, err)
		assert.Equal(t, "local/pipe", res.Project.String())
		require.NotNil(t, res.Provider)
		assert.Equal(t, "/opt/repos", res.Provider.Path)
		assert.Equal(t, "file:/opt/repos", res.Provider.Name)
	})

	t.Run("should treat a bare path ending in .git as local", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t)

		// when
		res, err := resolver.Resolve("/opt/repos/pipe.git")

		// then
		require.NoError(t, err)
		assert.Equal(t, "local/pipe", res.Project.String())
		require.NotNil(t, res.Provider)
	})

	t.Run("should anchor a relative local path to the working directory", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t)
		cwd, err := os.Getwd()
		require.NoError(t, err)

		// when
		res, err := resolver.Resolve("repos/demo.git")

		// then
		require.NoError(t, err)
		assert.Equal(t, "local/demo", res.Project.String())
		require.NotNil(t, res.Provider)
		assert.Equal(t, filepath.Join(cwd, "repos"), res.Provider.Path)
	})

	t.Run("should reject a clone URL without a project path", func(t *testing.T) {
		t.Parallel()

		// given
		resolver := newResolver(t)

		// when
		_, err := resolver.Resolve("https://github.com/demo.git")

		// then
		var invalidErr *domain.InvalidNameError
		require.ErrorAs(t, err, &invalidErr)
	})
}
