package exitcode

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/felixgeelhaar/smartplan/internal/errors"
)

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"Success", Success, 0},
		{"GeneralError", GeneralError, 1},
		{"UsageError", UsageError, 2},
		{"StructuralError", StructuralError, 3},
		{"ValidationError", ValidationError, 4},
		{"ConfigError", ConfigError, 5},
		{"IOError", IOError, 6},
		{"GenerationError", GenerationError, 7},
		{"Interrupted", Interrupted, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.expected {
				t.Errorf("Exit code %s = %d, want %d", tt.name, tt.code, tt.expected)
			}
		})
	}
}

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error returns success", nil, Success},
		{"cycle", errors.NewCycleError([]string{"a", "b", "a"}), StructuralError},
		{"missing dependency", errors.NewMissingDependencyError("a", "ghost"), StructuralError},
		{"wrapped order violation", fmt.Errorf("schedule: %w", errors.New(errors.ErrCodeGraphOrderViolated, "x")), StructuralError},
		{"task invalid", errors.NewTaskInvalidError("a", "est_hours is required"), ValidationError},
		{"goal required", errors.New(errors.ErrCodeGoalRequired, "goal is required"), ValidationError},
		{"preference invalid", errors.NewPreferenceInvalidError("work_per_day_hours", 0), ValidationError},
		{"config", errors.NewConfigInvalidError("port out of range"), ConfigError},
		{"file not found", errors.NewFileNotFoundError("tasks.yaml"), IOError},
		{"generation", errors.NewGenerationError("static", stderrors.New("boom")), GenerationError},
		{"interrupted", fmt.Errorf("plan: %w", context.Canceled), Interrupted},
		{"unknown flag", stderrors.New("unknown flag: --bogus"), UsageError},
		{"unknown command", stderrors.New(`unknown command "frobnicate" for "smartplan"`), UsageError},
		{"required flag", stderrors.New(`required flag(s) "in" not set`), UsageError},
		{"arg count", stderrors.New("accepts 0 arg(s), received 1"), UsageError},
		{"anything else", stderrors.New("disk on fire"), GeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.expected {
				t.Errorf("DetermineExitCode(%v) = %d, want %d", tt.err, got, tt.expected)
			}
		})
	}
}

func TestGetExitCodeDescription(t *testing.T) {
	for _, code := range []int{Success, GeneralError, UsageError, StructuralError, ValidationError, ConfigError, IOError, GenerationError, Interrupted} {
		if desc := GetExitCodeDescription(code); desc == "" || desc == "Unknown error" {
			t.Errorf("GetExitCodeDescription(%d) = %q", code, desc)
		}
	}
	if got := GetExitCodeDescription(99); got != "Unknown error" {
		t.Errorf("GetExitCodeDescription(99) = %q, want Unknown error", got)
	}
}
