// ABOUTME: Shared fixtures for CLI command tests
// ABOUTME: Writes a small chunk library and runs the root command with captured output
package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const fixtureTemplate = `
- uri: base.yaml
- name: light
  choices:
    day: light/day.yaml
    night: light/night.yaml
`

var fixtureLibrary = map[string]string{
	"base.yaml": `
defaults:
  - prompt: portrait
    pos: 10
variants:
  style:
    - prompt: oil
      pos: 9
    - prompt: ink
      pos: 9
`,
	"light/day.yaml": `
defaults:
  - prompt: daylight
    pos: 5
`,
	"light/night.yaml": `
defaults:
  - prompt: moonlight
    pos: 5
`,
	"sky.yaml": `
defaults:
  - prompt: sky
    pos: 1
variants:
  mood:
    - prompt: bright
      pos: 1
      sub_pos: 0
    - prompt: dark
      pos: 1
      sub_pos: 1
`,
}

// fixturePrompts lists every render the fixture template can produce
var fixturePrompts = map[string]bool{
	"portrait, oil, daylight":  true,
	"portrait, oil, moonlight": true,
	"portrait, ink, daylight":  true,
	"portrait, ink, moonlight": true,
}

// isolateEnv blanks the variables the CLI reads so the host environment cannot leak in
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"RANDOMIZER_LIBRARY", "RANDOMIZER_TEMPLATE", "RANDOMIZER_SEED", "RANDOMIZER_LOG_LEVEL",
		"SD_ENDPOINT", "SD_WIDTH", "SD_HEIGHT", "SD_STEPS", "SD_GUIDANCE", "SD_TIMEOUT", "SD_NEGATIVE_PROMPT",
		"OPENAI_API_KEY", "GUY_OPENAI_MODEL", "OPENAI_MAX_RETRIES",
		"CHARM_HOST", "CHARM_DB", "CHARM_AUTO_SYNC", "DEFAULT_GUY",
	} {
		t.Setenv(k, "")
	}
}

// writeFixture lays out the fixture library and returns the template path and library dir
func writeFixture(t *testing.T) (string, string) {
	t.Helper()
	isolateEnv(t)
	root := t.TempDir()
	lib := filepath.Join(root, "chunks")
	for rel, content := range fixtureLibrary {
		path := filepath.Join(lib, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	tmpl := filepath.Join(root, "template.yaml")
	if err := os.WriteFile(tmpl, []byte(fixtureTemplate), 0644); err != nil {
		t.Fatal(err)
	}
	return tmpl, lib
}

// runCLI executes the root command and returns stdout and stderr separately
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
