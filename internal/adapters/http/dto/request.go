package dto

import (
	"strings"

	"github.com/writeit-dev/writeit/internal/domain"
)

const (
	msgRequired     = "is required"
	msgMustNotEmpty = "must not be empty"
)

// CreateWorkspaceRequest represents the JSON body for creating a workspace.
// Root is optional; when omitted, a root is derived from the configured base
// directory and the workspace name.
type CreateWorkspaceRequest struct {
	Name        string            `json:"name"`
	Root        string            `json:"root,omitempty"`
	Description string            `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Validate checks that required fields are present.
// Returns a *domain.ValidationError if any checks fail.
func (r *CreateWorkspaceRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = msgRequired
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// UpdateWorkspaceRequest represents the JSON body for updating a workspace.
// All fields are optional; nil means "do not change this field".
type UpdateWorkspaceRequest struct {
	Name        *string           `json:"name,omitempty"`
	Description *string           `json:"description,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Validate checks that any provided fields have valid values.
// Returns a *domain.ValidationError if any checks fail.
func (r *UpdateWorkspaceRequest) Validate() error {
	fields := make(map[string]string)

	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		fields["name"] = msgMustNotEmpty
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// SetSettingRequest represents the JSON body for writing one setting. The
// value's final type is decided by schema coercion, so any JSON value is
// accepted here.
type SetSettingRequest struct {
	Value any `json:"value"`
}

// Validate checks that a value was provided.
func (r *SetSettingRequest) Validate() error {
	if r.Value == nil {
		return &domain.ValidationError{Fields: map[string]string{"value": msgRequired}}
	}
	return nil
}

// StepRequest represents one pipeline step in create/update bodies.
type StepRequest struct {
	Name      string `json:"name"`
	Prompt    string `json:"prompt"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// CreatePipelineRequest represents the JSON body for creating a pipeline.
type CreatePipelineRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Steps       []StepRequest `json:"steps"`
}

// Validate checks that required fields are present. Step-level rules
// (unique names, non-empty prompts) are enforced by the domain entity.
func (r *CreatePipelineRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = msgRequired
	}
	if len(r.Steps) == 0 {
		fields["steps"] = "must contain at least one step"
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// UpdatePipelineRequest represents the JSON body for updating a pipeline.
// All fields are optional; nil means "do not change this field". A non-nil
// Steps slice replaces the step list wholesale.
type UpdatePipelineRequest struct {
	Name        *string       `json:"name,omitempty"`
	Description *string       `json:"description,omitempty"`
	Steps       []StepRequest `json:"steps,omitempty"`
}

// Validate checks that any provided fields have valid values.
func (r *UpdatePipelineRequest) Validate() error {
	fields := make(map[string]string)

	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		fields["name"] = msgMustNotEmpty
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// RunPipelineRequest represents the JSON body for executing a pipeline.
// Input may be empty for pipelines whose prompts do not reference it.
type RunPipelineRequest struct {
	Input string `json:"input"`
}

// Validate always passes; present for symmetry with the other request DTOs.
func (r *RunPipelineRequest) Validate() error {
	return nil
}
