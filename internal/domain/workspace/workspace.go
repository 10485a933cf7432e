// Package workspace defines the workspace aggregate: an isolated root
// directory plus a configuration scope under which pipelines execute.
package workspace

import (
	"strings"
	"time"

	"github.com/writeit-dev/writeit/internal/domain"
	"github.com/writeit-dev/writeit/internal/domain/configset"
)

// Workspace is an isolated directory and configuration scope for pipeline
// execution. At most one workspace is active at a time; activation is
// enforced by the repository layer.
type Workspace struct {
	ID          string
	Name        string
	Root        string
	Description string
	Active      bool
	Settings    configset.Settings
	Metadata    map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks business rules for the Workspace entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (w *Workspace) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(w.Name) == "" {
		fields["name"] = domain.MsgRequired
	} else if err := ValidateName(w.Name); err != nil {
		fields["name"] = err.Error()
	}

	if strings.TrimSpace(w.Root) == "" {
		fields["root"] = domain.MsgRequired
	} else if _, err := NormalizeRoot(w.Root); err != nil {
		fields["root"] = err.Error()
	}

	for key := range w.Metadata {
		if strings.TrimSpace(key) == "" {
			fields["metadata"] = "keys must not be blank"
			break
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Clone returns a deep copy of the workspace. Settings and Metadata maps are
// copied so that mutations on the clone do not leak back into the original.
func (w *Workspace) Clone() *Workspace {
	c := *w
	c.Settings = w.Settings.Clone()
	if w.Metadata != nil {
		c.Metadata = make(map[string]string, len(w.Metadata))
		for k, v := range w.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
