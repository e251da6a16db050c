// Package application composes the resolution, revision, and lifecycle
// layers into the operations the execution engine consumes.
package application

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pipeforge/config"
	"github.com/rios0rios0/pipeforge/domain"
	"github.com/rios0rios0/pipeforge/infrastructure/store"
)

const gitSuffix = ".git"

// scpLikePattern matches user@host:path clone syntax.
var scpLikePattern = regexp.MustCompile(`^([^@/]+)@([^:/]+):(.+)$`)

// Resolver turns a raw identifier into a canonical organization/repository
// project, consulting the installed assets for short-name disambiguation.
type Resolver struct {
	store    *store.AssetStore
	settings config.Settings
}

// NewResolver creates a resolver over the local asset store.
func NewResolver(assets *store.AssetStore, settings config.Settings) *Resolver {
	return &Resolver{store: assets, settings: settings}
}

// Resolve canonicalizes identifier. Clone URLs (ending in .git) are parsed;
// a file-scheme URL additionally synthesizes a request-scoped local provider.
// Plain identifiers are split on "/", a trailing script path is stripped into
// the pinned main script, and bare short names are disambiguated against the
// installed assets.
func (r *Resolver) Resolve(identifier string) (domain.Resolution, error) {
	name := strings.TrimSpace(identifier)
	if name == "" {
		return domain.Resolution{}, &domain.InvalidNameError{Name: identifier, Reason: "empty identifier"}
	}

	if strings.HasSuffix(name, gitSuffix) {
		return r.resolveCloneURL(name)
	}

	parts := strings.Split(name, "/")
	var script string
	if domain.HasScriptExtension(parts[len(parts)-1]) {
		if len(parts) < 3 {
			return domain.Resolution{}, &domain.InvalidNameError{
				Name:   name,
				Reason: "a script path needs an organization/repository prefix",
			}
		}
		script = strings.Join(parts[2:], "/")
		parts = parts[:2]
	}

	switch len(parts) {
	case 2:
		return domain.Resolution{Project: domain.Project{
			Organization: parts[0],
			Repository:   parts[1],
			MainScript:   script,
		}}, nil
	case 1:
		return r.resolveShortName(parts[0])
	default:
		return domain.Resolution{}, &domain.InvalidNameError{
			Name:   name,
			Reason: "expected organization/repository",
		}
	}
}

// resolveShortName disambiguates a bare repository name against the
// installed assets. An exact match on the repository segment wins over a
// prefix match; multiple candidates in the winning tier are never guessed at.
func (r *Resolver) resolveShortName(short string) (domain.Resolution, error) {
	var exact, prefixed []string
	for _, installed := range r.store.List() {
		segments := strings.SplitN(installed, "/", 2)
		if len(segments) != 2 {
			continue
		}
		switch {
		case segments[1] == short:
			exact = append(exact, installed)
		case strings.HasPrefix(segments[1], short):
			prefixed = append(prefixed, installed)
		}
	}

	winners := exact
	if len(winners) == 0 {
		winners = prefixed
	}

	switch len(winners) {
	case 0:
		logger.Debugf("No installed pipeline matches %q, assuming %s/%s", short, r.settings.Organization, short)
		return domain.Resolution{Project: domain.Project{
			Organization: r.settings.Organization,
			Repository:   short,
		}}, nil
	case 1:
		segments := strings.SplitN(winners[0], "/", 2)
		return domain.Resolution{Project: domain.Project{
			Organization: segments[0],
			Repository:   segments[1],
		}}, nil
	default:
		return domain.Resolution{}, &domain.AmbiguousNameError{Name: short, Candidates: winners}
	}
}

// resolveCloneURL parses a clone URL. The project path becomes the canonical
// name regardless of other rules; a file-scheme URL synthesizes a one-off
// local provider scoped to this resolution.
func (r *Resolver) resolveCloneURL(raw string) (domain.Resolution, error) {
	normalized := raw
	if !strings.Contains(normalized, "://") {
		if m := scpLikePattern.FindStringSubmatch(normalized); m != nil {
			normalized = "ssh://" + m[1] + "@" + m[2] + "/" + m[3]
		} else {
			// A bare path is a local repository.
			normalized = "file://" + normalized
		}
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return domain.Resolution{}, &domain.InvalidNameError{Name: raw, Reason: "unparseable clone URL"}
	}

	if parsed.Scheme == "file" {
		// A relative path lands its first segment in Host; reassemble before
		// deriving parent and base.
		repoDir := strings.TrimSuffix(parsed.Host+parsed.Path, gitSuffix)
		if abs, absErr := filepath.Abs(repoDir); absErr == nil {
			repoDir = abs
		}
		base := filepath.Base(repoDir)
		parent := filepath.Dir(repoDir)
		synthetic := &domain.SyntheticProvider{Name: "file:" + parent, Path: parent}
		logger.Debugf("Synthesized local provider %s for %q", synthetic, raw)
		return domain.Resolution{
			Project:  domain.Project{Organization: "local", Repository: strings.TrimSuffix(base, gitSuffix)},
			Provider: synthetic,
		}, nil
	}

	trimmed := strings.TrimSuffix(strings.Trim(parsed.Path, "/"), gitSuffix)
	segments := strings.Split(trimmed, "/")
	if len(segments) < 2 {
		return domain.Resolution{}, &domain.InvalidNameError{
			Name:   raw,
			Reason: "clone URL has no organization/repository path",
		}
	}
	return domain.Resolution{Project: domain.Project{
		Organization: segments[len(segments)-2],
		Repository:   segments[len(segments)-1],
	}}, nil
}
