package workspace

import "strings"

// Filter holds optional filter criteria for listing workspaces.
// Zero-value fields mean "no filter" for that dimension.
type Filter struct {
	ActiveOnly bool
	NamePrefix string
}

// Matches reports whether the workspace satisfies every set criterion.
func (f Filter) Matches(w *Workspace) bool {
	if f.ActiveOnly && !w.Active {
		return false
	}
	if f.NamePrefix != "" && !strings.HasPrefix(w.Name, f.NamePrefix) {
		return false
	}
	return true
}
