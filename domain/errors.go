package domain

import (
	"fmt"
	"strings"
)

// InvalidNameError reports a malformed pipeline identifier.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("not a valid pipeline name %q: %s", e.Name, e.Reason)
}

// AmbiguousNameError reports a short name that matches more than one
// installed pipeline. The candidates are listed so the caller can retry
// with a fully qualified name; a match is never auto-selected.
type AmbiguousNameError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousNameError) Error() string {
	return fmt.Sprintf(
		"which one do you mean? pipeline name %q matches: %s",
		e.Name, strings.Join(e.Candidates, ", "),
	)
}

// UnknownProviderError reports a requested or inferred provider name with no
// matching configuration.
type UnknownProviderError struct {
	Name  string
	Known []string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf(
		"unknown provider %q, known providers: %s",
		e.Name, strings.Join(e.Known, ", "),
	)
}

// DirtyWorkingTreeError reports a checkout or pull attempted while the local
// checkout holds uncommitted changes.
type DirtyWorkingTreeError struct {
	Project string
	Path    string
}

func (e *DirtyWorkingTreeError) Error() string {
	where := e.Project
	if e.Path != "" {
		where += " at " + e.Path
	}
	return fmt.Sprintf("pipeline %s contains uncommitted changes, commit or stash them first", where)
}

// MissingRemoteProjectError reports a remote validation failure before the
// first clone.
type MissingRemoteProjectError struct {
	Project  string
	Provider string
	Err      error
}

func (e *MissingRemoteProjectError) Error() string {
	return fmt.Sprintf(
		"cannot find pipeline %s on provider %s: %v",
		e.Project, e.Provider, e.Err,
	)
}

func (e *MissingRemoteProjectError) Unwrap() error { return e.Err }

// MissingLocalAssetError reports an operation requiring an installed project
// run against one that is not installed.
type MissingLocalAssetError struct {
	Name string
}

func (e *MissingLocalAssetError) Error() string {
	return fmt.Sprintf("pipeline %s is not installed, run pull first", e.Name)
}
