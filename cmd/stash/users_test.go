package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperengineering/stash/internal/actor"
)

// executeUsersCmd executes a users subcommand with captured output.
// --root isolates filesystem state per test.
func executeUsersCmd(t *testing.T, rootPath string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	// Reset package-level flag variables. Cobra parses into these, so stale
	// values from previous tests would leak if not reset.
	usersRootOverride = ""
	usersJSONOutput = false
	deleteForce = false

	fullArgs := append([]string{"users"}, args...)
	fullArgs = append(fullArgs, "--root", rootPath)

	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)

	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(errBuf)
	rootCmd.SetArgs(fullArgs)

	err = rootCmd.Execute()

	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetArgs(nil)

	return outBuf.String(), errBuf.String(), err
}

// executeUsersCmdWithStdin executes a users subcommand with piped stdin.
func executeUsersCmdWithStdin(t *testing.T, rootPath string, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	usersRootOverride = ""
	usersJSONOutput = false
	deleteForce = false

	fullArgs := append([]string{"users"}, args...)
	fullArgs = append(fullArgs, "--root", rootPath)

	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)

	rootCmd.SetOut(outBuf)
	rootCmd.SetErr(errBuf)
	rootCmd.SetArgs(fullArgs)
	rootCmd.SetIn(strings.NewReader(stdin))

	err = rootCmd.Execute()

	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetArgs(nil)
	rootCmd.SetIn(nil)

	return outBuf.String(), errBuf.String(), err
}

// provisionUser creates a user store under root by touching its actor.
func provisionUser(t *testing.T, root, userID string) {
	t.Helper()

	mgr, err := actor.NewManager(root)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, err := mgr.Actor(context.Background(), userID); err != nil {
		t.Fatalf("provision %s: %v", userID, err)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("manager close: %v", err)
	}
}

func TestUsersList_Empty(t *testing.T) {
	root := t.TempDir()

	stdout, _, err := executeUsersCmd(t, root, "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "No user stores found.") {
		t.Errorf("stdout = %q, want empty-list message", stdout)
	}
}

func TestUsersList_ShowsProvisionedUsers(t *testing.T) {
	root := t.TempDir()
	provisionUser(t, root, "alice")
	provisionUser(t, root, "bob")

	stdout, _, err := executeUsersCmd(t, root, "list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "alice") || !strings.Contains(stdout, "bob") {
		t.Errorf("stdout = %q, want both users listed", stdout)
	}
}

func TestUsersList_JSON(t *testing.T) {
	root := t.TempDir()
	provisionUser(t, root, "alice")

	stdout, _, err := executeUsersCmd(t, root, "list", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp struct {
		Users []actor.UserInfo `json:"users"`
		Total int              `json:"total"`
	}
	if err := json.Unmarshal([]byte(stdout), &resp); err != nil {
		t.Fatalf("invalid JSON output %q: %v", stdout, err)
	}
	if resp.Total != 1 || len(resp.Users) != 1 {
		t.Fatalf("total = %d, users = %d, want 1 each", resp.Total, len(resp.Users))
	}
	if resp.Users[0].UserID != "alice" {
		t.Errorf("user_id = %q, want alice", resp.Users[0].UserID)
	}
}

func TestUsersInfo(t *testing.T) {
	root := t.TempDir()
	provisionUser(t, root, "alice")

	stdout, _, err := executeUsersCmd(t, root, "info", "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "alice") {
		t.Errorf("stdout = %q, want user ID", stdout)
	}
	if !strings.Contains(stdout, "Size:") {
		t.Errorf("stdout = %q, want size line", stdout)
	}
}

func TestUsersInfo_UnknownUser(t *testing.T) {
	root := t.TempDir()

	_, _, err := executeUsersCmd(t, root, "info", "ghost")
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestUsersDelete_Force(t *testing.T) {
	root := t.TempDir()
	provisionUser(t, root, "alice")

	stdout, _, err := executeUsersCmd(t, root, "delete", "alice", "--force")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, `Deleted user "alice"`) {
		t.Errorf("stdout = %q, want deletion confirmation", stdout)
	}

	if _, err := os.Stat(filepath.Join(root, "alice")); !os.IsNotExist(err) {
		t.Error("user directory still exists after delete")
	}
}

func TestUsersDelete_ConfirmationMismatchAborts(t *testing.T) {
	root := t.TempDir()
	provisionUser(t, root, "alice")

	_, stderr, err := executeUsersCmdWithStdin(t, root, "wrong\n", "delete", "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr, "Aborted") {
		t.Errorf("stderr = %q, want abort message", stderr)
	}

	if _, err := os.Stat(filepath.Join(root, "alice")); err != nil {
		t.Error("user directory should still exist after aborted delete")
	}
}

func TestUsersDelete_InvalidUserID(t *testing.T) {
	root := t.TempDir()

	_, _, err := executeUsersCmd(t, root, "delete", "_bad_", "--force")
	if err == nil {
		t.Fatal("expected error for invalid user ID")
	}
}
