package domain

import (
	"fmt"
	"strings"
)

const (
	// DefaultMainScript is the entry script assumed when the manifest does not declare one.
	DefaultMainScript = "main.nf"

	// DefaultBranch is the branch assumed when the manifest does not declare one.
	DefaultBranch = "main"

	// UnknownRevision is reported when a repository has no resolvable HEAD.
	UnknownRevision = "(unknown)"
)

// ScriptExtensions are the recognized pipeline-script file extensions.
var ScriptExtensions = []string{".nf", ".nxf"}

// Project identifies a pipeline asset as organization/repository, optionally
// pinned to a specific main script inside the repository.
type Project struct {
	Organization string
	Repository   string
	MainScript   string // Pinned script path; empty means manifest-declared or default
}

// String returns the canonical two-segment name.
func (p Project) String() string {
	return p.Organization + "/" + p.Repository
}

// IsZero reports whether the project identity is unset.
func (p Project) IsZero() bool {
	return p.Organization == "" && p.Repository == ""
}

// HasScriptExtension reports whether name ends with a recognized
// pipeline-script extension.
func HasScriptExtension(name string) bool {
	for _, ext := range ScriptExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// RefKind distinguishes branch refs from tag refs.
type RefKind int

const (
	BranchRef RefKind = iota
	TagRef
)

// RevisionRef is a transient view of a branch or tag produced by enumeration.
// It is never persisted.
type RevisionRef struct {
	Name     string // Short name, remote-tracking prefix stripped
	Kind     RefKind
	ObjectID string // Target commit id; annotated tags are peeled
}

// Format renders the ref the way revision listings display it:
// a leading marker, an optional (abbreviated) commit id, the short name,
// and a trailing tag/default annotation.
func (r RevisionRef) Format(current, defaultBranch string, detail int) string {
	var b strings.Builder
	if r.Name == current {
		b.WriteString("*")
	} else {
		b.WriteString(" ")
	}
	switch {
	case detail >= 2:
		b.WriteString(" " + r.ObjectID)
	case detail == 1:
		b.WriteString(" " + abbreviate(r.ObjectID))
	}
	b.WriteString(" " + r.Name)
	if r.Kind == TagRef {
		b.WriteString(" [t]")
	} else if r.Name == defaultBranch {
		b.WriteString(" (default)")
	}
	return b.String()
}

const abbrevLen = 10

func abbreviate(id string) string {
	if len(id) <= abbrevLen {
		return id
	}
	return id[:abbrevLen]
}

// Resolution is the outcome of resolving a raw identifier. Provider is only
// set when the identifier was a local-filesystem clone URL, in which case it
// carries a one-off provider configuration scoped to this resolution.
type Resolution struct {
	Project  Project
	Provider *SyntheticProvider
}

// SyntheticProvider is a provider configuration synthesized mid-resolution
// from a file-scheme clone URL. It never enters the shared provider store.
type SyntheticProvider struct {
	Name string
	Path string // Directory containing the repository
}

func (s SyntheticProvider) String() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Path)
}
