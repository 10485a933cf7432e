package app

import (
	"errors"
	"testing"

	"github.com/writeit-dev/writeit/internal/domain"
)

func TestRenderPrompt(t *testing.T) {
	t.Parallel()

	outputs := map[string]string{
		"outline": "I. Intro\nII. Body",
	}

	tests := []struct {
		name    string
		tmpl    string
		want    string
		wantErr bool
	}{
		{
			name: "input placeholder",
			tmpl: "Write about {{input}}.",
			want: "Write about coffee.",
		},
		{
			name: "step placeholder",
			tmpl: "Expand: {{steps.outline}}",
			want: "Expand: I. Intro\nII. Body",
		},
		{
			name: "interior whitespace tolerated",
			tmpl: "Expand: {{ steps.outline }} for {{ input }}",
			want: "Expand: I. Intro\nII. Body for coffee",
		},
		{
			name: "no placeholders",
			tmpl: "A static prompt.",
			want: "A static prompt.",
		},
		{
			name: "repeated placeholder",
			tmpl: "{{input}} and {{input}}",
			want: "coffee and coffee",
		},
		{
			name:    "unknown placeholder",
			tmpl:    "Use {{workspace}} here",
			wantErr: true,
		},
		{
			name:    "unproduced step reference",
			tmpl:    "Use {{steps.draft}} here",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := RenderPrompt(tt.tmpl, "coffee", outputs)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("RenderPrompt() error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("RenderPrompt() error = %v, want nil", err)
			}
			if got != tt.want {
				t.Errorf("RenderPrompt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderPromptCollectsAllFailures(t *testing.T) {
	t.Parallel()

	_, err := RenderPrompt("{{bogus}} {{steps.missing}}", "x", nil)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("RenderPrompt() error = %v, want *ValidationError", err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("ValidationError.Fields = %v, want 2 entries", verr.Fields)
	}
}
