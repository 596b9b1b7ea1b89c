package main

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/sosinaesayas/prompt-tracker-admin-dashboard/internal/config"
)

// runRemote invokes a remote subcommand's RunE and returns its output.
func runRemote(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	t.Cleanup(func() { cmd.SetOut(nil) })
	err := cmd.RunE(cmd, args)
	return buf.String(), err
}

func savedProfiles(t *testing.T) *config.Profiles {
	t.Helper()
	p, _, err := loadProfiles()
	if err != nil {
		t.Fatalf("loadProfiles: %v", err)
	}
	return p
}

func TestStoreToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	name, err := storeToken("http://localhost:3000", "tok-1")
	if err != nil {
		t.Fatalf("storeToken: %v", err)
	}
	if name != config.DefaultProfile {
		t.Errorf("name = %q, want %q", name, config.DefaultProfile)
	}
	if _, prof, ok := savedProfiles(t).Current(); !ok || prof.Token != "tok-1" {
		t.Errorf("active = %+v, %v", prof, ok)
	}

	if _, err := storeToken("", ""); err != nil {
		t.Fatal(err)
	}
	if _, prof, _ := savedProfiles(t).Current(); prof.Token != "" {
		t.Error("logout should clear the token")
	}
}

func TestRemoteLifecycle(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	for _, args := range [][]string{
		{"local", "http://localhost:3000"},
		{"local", "http://localhost:3000"},
		{"staging", "https://staging.example.com"},
	} {
		if _, err := runRemote(t, remoteAddCmd, args...); err != nil {
			t.Fatalf("add %v: %v", args, err)
		}
	}
	if _, err := runRemote(t, remoteUseCmd, "local"); err != nil {
		t.Fatal(err)
	}

	out, err := runRemote(t, remoteListCmd)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "* local") {
		t.Errorf("list missing active marker:\n%s", out)
	}
	if strings.Index(out, "local") > strings.Index(out, "staging") {
		t.Errorf("list not sorted:\n%s", out)
	}

	out, err = runRemote(t, remoteShowCmd)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "http://localhost:3000") || !strings.Contains(out, "(active)") {
		t.Errorf("show output:\n%s", out)
	}

	if _, err := runRemote(t, remoteRemoveCmd, "local"); err != nil {
		t.Fatal(err)
	}
	p := savedProfiles(t)
	if _, ok := p.Entries["local"]; ok || p.Active != "" {
		t.Errorf("after remove: %+v", p)
	}

	if _, err := runRemote(t, remoteUseCmd); err != nil {
		t.Fatal(err)
	}
}

func TestRemoteAdd_RejectsBadURL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := runRemote(t, remoteAddCmd, "prod", "admin.example.com"); err == nil {
		t.Fatal("expected invalid URL error")
	}
	if len(savedProfiles(t).Entries) != 0 {
		t.Error("nothing should be saved on error")
	}
}

func TestRemoteTokenMasking(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := remoteAddCmd.Flags().Set("token", "tok_verylongsecret"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = remoteAddCmd.Flags().Set("token", "") })

	if _, err := runRemote(t, remoteAddCmd, "prod", "https://prod.example.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := runRemote(t, remoteUseCmd, "prod"); err != nil {
		t.Fatal(err)
	}

	out, _ := runRemote(t, remoteListCmd)
	if strings.Contains(out, "tok_verylongsecret") || !strings.Contains(out, "tok_very...") {
		t.Errorf("list should truncate the token:\n%s", out)
	}
	out, _ = runRemote(t, remoteShowCmd)
	if !strings.Contains(out, "tok_very**********") {
		t.Errorf("show should mask the token:\n%s", out)
	}
}

func TestRemoteErrors(t *testing.T) {
	for _, tc := range []struct {
		name    string
		cmd     *cobra.Command
		args    []string
		unknown bool
	}{
		{"UseUnknown", remoteUseCmd, []string{"ghost"}, true},
		{"RemoveUnknown", remoteRemoveCmd, []string{"ghost"}, true},
		{"ShowUnknown", remoteShowCmd, []string{"ghost"}, true},
		{"ShowNoActive", remoteShowCmd, nil, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			tc.cmd.SetOut(io.Discard)
			err := tc.cmd.RunE(tc.cmd, tc.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.unknown && !errors.Is(err, config.ErrUnknownProfile) {
				t.Errorf("err = %v, want ErrUnknownProfile", err)
			}
		})
	}
}

func TestMaskToken(t *testing.T) {
	if got := maskToken("short"); got != "short" {
		t.Errorf("maskToken(short) = %q", got)
	}
	if got := maskToken("0123456789"); got != "01234567**" {
		t.Errorf("maskToken = %q", got)
	}
}
