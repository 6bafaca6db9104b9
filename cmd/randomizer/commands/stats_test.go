// ABOUTME: Tests for the stats command
// ABOUTME: Checks that counts add up and cover every alternative and chunk
package commands

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStats_JSON(t *testing.T) {
	tmpl, lib := writeFixture(t)

	out, _, err := runCLI(t, "--format", "json", "stats", tmpl, "--library", lib, "--runs", "400", "--seed", "3")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}

	var got struct {
		Runs  int        `json:"runs"`
		Picks []pickStat `json:"picks"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Runs != 400 {
		t.Errorf("runs = %d, want 400", got.Runs)
	}

	totals := map[string]int{}
	seen := map[string]bool{}
	for _, p := range got.Picks {
		totals[p.Choice] += p.Count
		seen[p.Choice+"/"+p.Option] = true
		if p.Uniform != 0.5 {
			t.Errorf("%s/%s uniform = %f, want 0.5", p.Choice, p.Option, p.Uniform)
		}
		// 400 draws at p=0.5
		if p.Share < 0.35 || p.Share > 0.65 {
			t.Errorf("%s/%s share = %f, far from uniform", p.Choice, p.Option, p.Share)
		}
	}

	for _, key := range []string{"light/day", "light/night", "base.yaml#style/0", "base.yaml#style/1"} {
		if !seen[key] {
			t.Errorf("missing pick %s in %+v", key, got.Picks)
		}
	}
	if totals["light"] != 400 || totals["base.yaml#style"] != 400 {
		t.Errorf("totals = %v, want 400 each", totals)
	}
}

func TestStats_Text(t *testing.T) {
	tmpl, lib := writeFixture(t)

	out, _, err := runCLI(t, "stats", tmpl, "--library", lib, "--runs", "10")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	for _, want := range []string{"CHOICE", "light", "base.yaml#style", "10 run(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
}

func TestStats_InvalidRuns(t *testing.T) {
	tmpl, lib := writeFixture(t)

	_, _, err := runCLI(t, "stats", tmpl, "--library", lib, "--runs", "0")
	if err == nil || !strings.Contains(err.Error(), "runs") {
		t.Errorf("error = %v, want runs validation error", err)
	}
}
