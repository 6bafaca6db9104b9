// ABOUTME: Tests for sync commands
// ABOUTME: Runs each subcommand against a fake charm client
package commands

import (
	"errors"
	"strings"
	"testing"

	"github.com/harper/prompt-randomizer/internal/config"
)

type fakeSync struct {
	idErr   error
	syncErr error
	keys    string
	guys    []string
	synced  bool
	reset   bool
	closed  bool
}

func (f *fakeSync) ID() (string, error) {
	if f.idErr != nil {
		return "", f.idErr
	}
	return "user-123", nil
}

func (f *fakeSync) Host() string { return "charm.test" }

func (f *fakeSync) ListKeys(prefix string) ([]string, error) { return f.guys, nil }

func (f *fakeSync) Sync() error {
	f.synced = true
	return f.syncErr
}

func (f *fakeSync) Reset() error {
	f.reset = true
	return nil
}

func (f *fakeSync) GetAuthorizedKeys() (string, error) { return f.keys, nil }

func (f *fakeSync) Close() error {
	f.closed = true
	return nil
}

func useFakeSync(t *testing.T, f *fakeSync) {
	t.Helper()
	isolateEnv(t)
	original := openSyncClient
	openSyncClient = func(cfg *config.Config) (syncClient, error) {
		return f, nil
	}
	t.Cleanup(func() { openSyncClient = original })
}

func TestNewSyncCmd(t *testing.T) {
	cmd := NewSyncCmd()

	if cmd.Use != "sync" {
		t.Errorf("Use = %q, want %q", cmd.Use, "sync")
	}
	if !strings.Contains(cmd.Long, "Charm") {
		t.Error("Long description should mention Charm")
	}

	for _, name := range []string{"status", "now", "wipe", "keys"} {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Use == name {
				found = sub.RunE != nil
			}
		}
		if !found {
			t.Errorf("Subcommand %q not found or has no RunE", name)
		}
	}
}

func TestSyncStatus(t *testing.T) {
	f := &fakeSync{guys: []string{"guy:a", "guy:b"}}
	useFakeSync(t, f)

	out, _, err := runCLI(t, "sync", "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	for _, want := range []string{"Status: Connected", "User ID: user-123", "Host: charm.test", "Guys stored: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}
	if !f.closed {
		t.Error("client should be closed")
	}
}

func TestSyncStatus_NotConnected(t *testing.T) {
	useFakeSync(t, &fakeSync{idErr: errors.New("no keys")})

	out, _, err := runCLI(t, "sync", "status")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out, "Not connected") {
		t.Errorf("output = %s", out)
	}
}

func TestSyncNow(t *testing.T) {
	f := &fakeSync{}
	useFakeSync(t, f)

	out, _, err := runCLI(t, "sync", "now")
	if err != nil {
		t.Fatalf("now failed: %v", err)
	}
	if !f.synced || !strings.Contains(out, "Sync complete") {
		t.Errorf("synced = %v, output = %s", f.synced, out)
	}

	useFakeSync(t, &fakeSync{syncErr: errors.New("offline")})
	if _, _, err := runCLI(t, "sync", "now"); err == nil || !strings.Contains(err.Error(), "offline") {
		t.Errorf("error = %v, want offline", err)
	}
}

func TestSyncWipe_RequiresConfirm(t *testing.T) {
	f := &fakeSync{}
	useFakeSync(t, f)

	out, _, err := runCLI(t, "sync", "wipe")
	if err != nil {
		t.Fatal(err)
	}
	if f.reset || !strings.Contains(out, "--confirm") {
		t.Errorf("wipe without --confirm should not reset (reset=%v): %s", f.reset, out)
	}

	if _, _, err := runCLI(t, "sync", "wipe", "--confirm"); err != nil {
		t.Fatal(err)
	}
	if !f.reset {
		t.Error("wipe --confirm should reset")
	}
}

func TestSyncKeys(t *testing.T) {
	useFakeSync(t, &fakeSync{})
	out, _, err := runCLI(t, "sync", "keys")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No authorized keys found") {
		t.Errorf("output = %s", out)
	}

	useFakeSync(t, &fakeSync{keys: "ssh-ed25519 AAAA laptop"})
	out, _, err = runCLI(t, "sync", "keys")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "ssh-ed25519 AAAA laptop") {
		t.Errorf("output = %s", out)
	}
}
