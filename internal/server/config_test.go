package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/minesite-tools/water-balance/pkg/constants"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "server-config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Errorf("Address = %q, want %q", cfg.Address, constants.DefaultServerAddress)
	}
	if cfg.UploadSizeBytes() != constants.DefaultMaxUploadSizeBytes {
		t.Errorf("UploadSizeBytes() = %d, want %d", cfg.UploadSizeBytes(), constants.DefaultMaxUploadSizeBytes)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server-config.yaml")
	content := "address: \":9090\"\nmaxUploadSize: 1M\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != ":9090" {
		t.Errorf("Address = %q, want :9090", cfg.Address)
	}
	if cfg.UploadSizeBytes() != 1024*1024 {
		t.Errorf("UploadSizeBytes() = %d, want %d", cfg.UploadSizeBytes(), 1024*1024)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      int64
		wantError bool
	}{
		{
			name:  "Plain bytes",
			input: "1024",
			want:  1024,
		},
		{
			name:  "Kilobytes",
			input: "256K",
			want:  256 * 1024,
		},
		{
			name:  "Megabytes lowercase",
			input: "10m",
			want:  10 * 1024 * 1024,
		},
		{
			name:  "Gigabytes",
			input: "1G",
			want:  1024 * 1024 * 1024,
		},
		{
			name:  "Empty string falls back to default",
			input: "",
			want:  constants.DefaultMaxUploadSizeBytes,
		},
		{
			name:      "Garbage",
			input:     "lots",
			wantError: true,
		},
		{
			name:      "Suffix only",
			input:     "K",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantError {
				if err == nil {
					t.Errorf("ParseSize(%q) expected error but got none", tt.input)
				}
				return
			}
			if err != nil {
				t.Errorf("ParseSize(%q) error = %v", tt.input, err)
				return
			}
			if got != tt.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
