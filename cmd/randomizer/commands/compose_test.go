// ABOUTME: Tests for the compose command
// ABOUTME: Covers explicit picks, skipped picks and argument errors
package commands

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewComposeCmd(t *testing.T) {
	cmd := NewComposeCmd()

	if !strings.HasPrefix(cmd.Use, "compose ") {
		t.Errorf("Use = %q, want compose prefix", cmd.Use)
	}
	if cmd.Long == "" {
		t.Error("Long description should not be empty")
	}
	if cmd.Flags().Lookup("library") == nil {
		t.Error("--library flag not found")
	}
}

func TestCompose_Picks(t *testing.T) {
	_, lib := writeFixture(t)

	tests := []struct {
		name  string
		picks []string
		want  string
	}{
		{"defaults only", nil, "sky"},
		{"first chunk", []string{"mood=0"}, "sky bright"},
		{"colon syntax", []string{"mood:1"}, "sky dark"},
		{"out of range skipped", []string{"mood=7"}, "sky"},
		{"unknown slot skipped", []string{"weather=0", "mood=1"}, "sky dark"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"compose", "--library", lib, "sky.yaml"}, tt.picks...)
			out, _, err := runCLI(t, args...)
			if err != nil {
				t.Fatalf("compose failed: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("compose = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompose_JSONReportsSkipped(t *testing.T) {
	_, lib := writeFixture(t)

	out, stderr, err := runCLI(t, "--format", "json", "compose", "--library", lib, "sky.yaml", "mood=9", "mood=0")
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	var got struct {
		Prompt  string   `json:"prompt"`
		Skipped []string `json:"skipped"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Prompt != "sky bright" {
		t.Errorf("prompt = %q, want %q", got.Prompt, "sky bright")
	}
	if len(got.Skipped) != 1 || !strings.Contains(got.Skipped[0], "sky.yaml") {
		t.Errorf("skipped = %v, want one entry naming sky.yaml", got.Skipped)
	}
	if !strings.Contains(stderr, "wrong chunk") {
		t.Errorf("stderr should warn about the wrong chunk, got %q", stderr)
	}
}

func TestCompose_Errors(t *testing.T) {
	_, lib := writeFixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no group", []string{"compose"}},
		{"bad pick", []string{"compose", "--library", lib, "sky.yaml", "mood"}},
		{"missing group", []string{"compose", "--library", lib, "clouds.yaml"}},
		{"escaping group", []string{"compose", "--library", lib, "../template.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := runCLI(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCompose_QuietKeepsSkippedWarning(t *testing.T) {
	_, lib := writeFixture(t)

	out, stderr, err := runCLI(t, "--quiet", "compose", "--library", lib, "sky.yaml", "mood=9")
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if strings.TrimSpace(out) != "sky" {
		t.Errorf("prompt = %q, want sky", out)
	}
	if !strings.Contains(stderr, "wrong chunk") || !strings.Contains(stderr, "mood") {
		t.Errorf("--quiet should still warn about the skipped pick, stderr = %q", stderr)
	}
}
