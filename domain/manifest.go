package domain

// Manifest is the project-declared metadata read from the manifest file.
// Every field is optional; absence falls back to a system default at the
// point of use. A manifest that fails to parse behaves as entirely empty.
type Manifest struct {
	MainScript    string
	DefaultBranch string
	Description   string
	HomePage      string
	Submodules    *SubmoduleFilter // nil means update all submodules
}

// MainScriptOrDefault returns the declared main script or the system default.
func (m Manifest) MainScriptOrDefault() string {
	if m.MainScript != "" {
		return m.MainScript
	}
	return DefaultMainScript
}

// DefaultBranchOrDefault returns the declared default branch or the system default.
func (m Manifest) DefaultBranchOrDefault() string {
	if m.DefaultBranch != "" {
		return m.DefaultBranch
	}
	return DefaultBranch
}

// SubmoduleFilter controls which submodules are initialized and updated.
// A nil *SubmoduleFilter admits everything; Disabled turns updating off
// entirely; a non-empty Paths set restricts updates to the named paths.
type SubmoduleFilter struct {
	Disabled bool
	Paths    []string
}

// Matches reports whether the submodule at path passes the filter.
func (f *SubmoduleFilter) Matches(path string) bool {
	if f == nil {
		return true
	}
	if f.Disabled {
		return false
	}
	if len(f.Paths) == 0 {
		return true
	}
	for _, p := range f.Paths {
		if p == path {
			return true
		}
	}
	return false
}
