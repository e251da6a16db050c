package manifest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/pipeforge/domain"
)

// Reader resolves manifest metadata for one project. The source text comes
// from the local checkout when installed, otherwise from the bound hosting
// provider. Values are re-read on every call so they always reflect the
// current checked-out revision.
type Reader struct {
	localPath string
	project   domain.Project
	provider  domain.HostingProvider
}

// NewReader creates a reader bound to the project's local path and provider.
// Either source may be unavailable; Read degrades accordingly.
func NewReader(localPath string, project domain.Project, provider domain.HostingProvider) *Reader {
	return &Reader{localPath: localPath, project: project, provider: provider}
}

// Read returns the project manifest. Any I/O or parse failure is logged at
// debug level and converted into an empty manifest; metadata lookups never
// fail for this reason.
func (r *Reader) Read(ctx context.Context) domain.Manifest {
	src, err := r.source(ctx)
	if err != nil {
		logger.Debugf("Manifest for %s not available: %v", r.project, err)
		return domain.Manifest{}
	}

	m, parseErr := Parse(FileName, src)
	if parseErr != nil {
		logger.Debugf("Manifest for %s not parseable: %v", r.project, parseErr)
		return domain.Manifest{}
	}
	return m
}

func (r *Reader) source(ctx context.Context) ([]byte, error) {
	if r.localPath != "" {
		local := filepath.Join(r.localPath, FileName)
		if _, statErr := os.Stat(local); statErr == nil {
			return os.ReadFile(local)
		}
		if _, statErr := os.Stat(r.localPath); statErr == nil {
			// Installed checkout without a manifest file: do not fall back to
			// the remote, the local state is authoritative.
			return nil, fmt.Errorf("no %s in %s", FileName, r.localPath)
		}
	}
	if r.provider == nil {
		return nil, errors.New("no manifest source available")
	}
	text, err := r.provider.ReadText(ctx, r.project, FileName, "")
	if err != nil {
		return nil, err
	}
	return []byte(text), nil
}
