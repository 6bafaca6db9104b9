// ABOUTME: Tests for the randomize command over a temp chunk library
// ABOUTME: Covers seeded output, JSON output and Stable Diffusion submission
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/harper/prompt-randomizer/internal/config"
	"github.com/harper/prompt-randomizer/internal/diffusion"
)

type fakeImages struct {
	requests []diffusion.GenerateRequest
	err      error
}

func (f *fakeImages) GenerateImage(ctx context.Context, req diffusion.GenerateRequest) (*diffusion.GenerateResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &diffusion.GenerateResponse{
		Status: "success",
		ID:     int64(len(f.requests)),
		Output: []string{"https://images.test/" + strings.ReplaceAll(req.Prompt, ", ", "-") + ".png"},
	}, nil
}

func useFakeImages(t *testing.T, f *fakeImages) {
	t.Helper()
	original := newImageGenerator
	newImageGenerator = func(cfg *config.Config, logger *log.Logger) (imageGenerator, error) {
		return f, nil
	}
	t.Cleanup(func() { newImageGenerator = original })
}

func TestNewRandomizeCmd(t *testing.T) {
	cmd := NewRandomizeCmd()

	if cmd.Use != "randomize [template]" {
		t.Errorf("Use = %q, want %q", cmd.Use, "randomize [template]")
	}

	tests := []struct {
		flagName string
		defValue string
	}{
		{"library", ""},
		{"seed", "0"},
		{"count", "1"},
		{"submit", "false"},
	}
	for _, tt := range tests {
		flag := cmd.Flags().Lookup(tt.flagName)
		if flag == nil {
			t.Fatalf("--%s flag not found", tt.flagName)
		}
		if flag.DefValue != tt.defValue {
			t.Errorf("--%s default = %q, want %q", tt.flagName, flag.DefValue, tt.defValue)
		}
	}
}

func TestRandomize_TextOutput(t *testing.T) {
	tmpl, lib := writeFixture(t)

	out, _, err := runCLI(t, "randomize", tmpl, "--library", lib, "--count", "5", "--seed", "11")
	if err != nil {
		t.Fatalf("randomize failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5:\n%s", len(lines), out)
	}
	for _, line := range lines {
		if !fixturePrompts[line] {
			t.Errorf("unexpected prompt %q", line)
		}
	}
}

func TestRandomize_SeedIsReproducible(t *testing.T) {
	tmpl, lib := writeFixture(t)

	first, _, err := runCLI(t, "randomize", tmpl, "--library", lib, "--count", "8", "--seed", "42")
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := runCLI(t, "randomize", tmpl, "--library", lib, "--count", "8", "--seed", "42")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("seeded runs differ:\n%s\n---\n%s", first, second)
	}
}

func TestRandomize_EnvironmentDefaults(t *testing.T) {
	tmpl, lib := writeFixture(t)
	t.Setenv("RANDOMIZER_TEMPLATE", tmpl)
	t.Setenv("RANDOMIZER_LIBRARY", lib)
	t.Setenv("RANDOMIZER_SEED", "42")

	fromEnv, _, err := runCLI(t, "randomize", "--count", "4")
	if err != nil {
		t.Fatalf("randomize failed: %v", err)
	}
	fromFlags, _, err := runCLI(t, "randomize", tmpl, "--library", lib, "--count", "4", "--seed", "42")
	if err != nil {
		t.Fatal(err)
	}
	if fromEnv != fromFlags {
		t.Errorf("RANDOMIZER_SEED should seed like --seed:\n%s\n---\n%s", fromEnv, fromFlags)
	}
}

func TestRandomize_JSONOutput(t *testing.T) {
	tmpl, lib := writeFixture(t)

	out, _, err := runCLI(t, "--format", "json", "randomize", tmpl, "--library", lib, "--count", "3")
	if err != nil {
		t.Fatalf("randomize failed: %v", err)
	}

	var results []randomizeOutput
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, r := range results {
		if !fixturePrompts[r.Prompt] {
			t.Errorf("unexpected prompt %q", r.Prompt)
		}
		light := r.Selection.Choices["light"]
		if light != "day" && light != "night" {
			t.Errorf("light choice = %q", light)
		}
		if (light == "day") != strings.HasSuffix(r.Prompt, "daylight") {
			t.Errorf("selection %q does not match prompt %q", light, r.Prompt)
		}
		if idx, ok := r.Selection.Slots["base.yaml#style"]; !ok || idx < 0 || idx > 1 {
			t.Errorf("style slot = %d, %v", idx, ok)
		}
	}
}

func TestRandomize_Errors(t *testing.T) {
	tmpl, lib := writeFixture(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"zero count", []string{"randomize", tmpl, "--library", lib, "--count", "0"}, "count must be positive"},
		{"no template", []string{"randomize", "--library", lib}, "no template"},
		{"missing template", []string{"randomize", tmpl + ".missing", "--library", lib}, "template.yaml.missing"},
		{"wrong library", []string{"randomize", tmpl, "--library", t.TempDir()}, "base.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestRandomize_Submit(t *testing.T) {
	tmpl, lib := writeFixture(t)
	images := &fakeImages{}
	useFakeImages(t, images)

	out, _, err := runCLI(t, "randomize", tmpl, "--library", lib, "--count", "2", "--submit")
	if err != nil {
		t.Fatalf("randomize --submit failed: %v", err)
	}

	if len(images.requests) != 2 {
		t.Fatalf("got %d image requests, want 2", len(images.requests))
	}
	for _, req := range images.requests {
		if !fixturePrompts[req.Prompt] {
			t.Errorf("submitted unexpected prompt %q", req.Prompt)
		}
		if req.NegativePrompt != config.DefaultNegativePrompt {
			t.Errorf("negative prompt = %q, want default", req.NegativePrompt)
		}
		if !strings.Contains(out, "https://images.test/") {
			t.Errorf("output should list image urls, got:\n%s", out)
		}
	}
}

func TestRandomize_SubmitFailure(t *testing.T) {
	tmpl, lib := writeFixture(t)
	useFakeImages(t, &fakeImages{err: errors.New("queue full")})

	_, _, err := runCLI(t, "randomize", tmpl, "--library", lib, "--submit")
	if err == nil || !strings.Contains(err.Error(), "queue full") {
		t.Fatalf("error = %v, want queue full", err)
	}
	if !strings.Contains(err.Error(), "prompt 1") {
		t.Errorf("error should name the prompt number, got %v", err)
	}
}

func TestRandomize_SubmitNeedsKey(t *testing.T) {
	tmpl, lib := writeFixture(t)
	t.Setenv("STABLE_DIFFUSION_API_KEY", "")

	_, _, err := runCLI(t, "randomize", tmpl, "--library", lib, "--submit")
	if err == nil {
		t.Fatal("expected error without a Stable Diffusion key")
	}
	if !strings.Contains(err.Error(), "stable diffusion") {
		t.Errorf("error = %v", err)
	}
}
