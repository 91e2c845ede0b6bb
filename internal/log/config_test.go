package log

import (
	"os"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"text", FormatText, false},
		{"console", FormatText, false},
		{"xml", FormatJSON, true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatString(t *testing.T) {
	if FormatJSON.String() != "json" || FormatText.String() != "text" {
		t.Errorf("unexpected format names: %s, %s", FormatJSON, FormatText)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != LevelInfo || cfg.Format != FormatText {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.ServiceName != "smartplan" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.writer() != os.Stderr {
		t.Error("default output should be stderr")
	}
}

func TestFromStrings(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		format     string
		wantLevel  Level
		wantFormat Format
		wantErr    bool
	}{
		{name: "empty keeps defaults", wantLevel: LevelInfo, wantFormat: FormatText},
		{name: "overrides", level: "debug", format: "json", wantLevel: LevelDebug, wantFormat: FormatJSON},
		{name: "bad level", level: "loud", wantErr: true},
		{name: "bad format", format: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := FromStrings(tt.level, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromStrings() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg.Level != tt.wantLevel || cfg.Format != tt.wantFormat {
				t.Errorf("FromStrings() = %v/%v, want %v/%v", cfg.Level, cfg.Format, tt.wantLevel, tt.wantFormat)
			}
		})
	}
}
