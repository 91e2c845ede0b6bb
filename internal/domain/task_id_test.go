package domain

import (
	"strings"
	"testing"
)

func TestNewTaskID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{
			name:    "valid simple ID",
			value:   "task-001",
			wantErr: false,
		},
		{
			name:    "single letter",
			value:   "a",
			wantErr: false,
		},
		{
			name:    "generator style ID",
			value:   "t1",
			wantErr: false,
		},
		{
			name:    "mixed case and punctuation",
			value:   "Design_Assets.v2",
			wantErr: false,
		},
		{
			name:    "empty ID",
			value:   "",
			wantErr: true,
		},
		{
			name:    "ID with space",
			value:   "task one",
			wantErr: true,
		},
		{
			name:    "ID with tab",
			value:   "task\tone",
			wantErr: true,
		},
		{
			name:    "ID with control character",
			value:   "task\x00",
			wantErr: true,
		},
		{
			name:    "ID at max length",
			value:   strings.Repeat("a", maxTaskIDLength),
			wantErr: false,
		},
		{
			name:    "ID too long",
			value:   strings.Repeat("a", maxTaskIDLength+1),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewTaskID(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTaskID(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
				return
			}
			if !tt.wantErr && id.String() != tt.value {
				t.Errorf("NewTaskID(%q) = %q", tt.value, id)
			}
		})
	}
}
