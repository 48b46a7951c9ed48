package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// useStateDir points the remotes file at a fresh directory.
func useStateDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	return dir
}

func TestRemotesFileRoundTrip(t *testing.T) {
	useStateDir(t)

	in := &remotesFile{
		Active: "prod",
		Remotes: map[string]Remote{
			"prod":  {URL: "https://sgc.example.com", Token: "tok_abc", User: "user-1"},
			"local": {URL: "http://localhost:8080"},
		},
	}
	if err := in.save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := readRemotes()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Active != "prod" {
		t.Errorf("Active = %q, want %q", got.Active, "prod")
	}
	if prod := got.Remotes["prod"]; prod != in.Remotes["prod"] {
		t.Errorf("prod remote = %+v, want %+v", prod, in.Remotes["prod"])
	}
	if names := got.names(); strings.Join(names, ",") != "local,prod" {
		t.Errorf("names = %v", names)
	}
}

func TestReadRemotes_NoFile(t *testing.T) {
	useStateDir(t)

	rf, err := readRemotes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rf.Active != "" || rf.Remotes == nil || len(rf.Remotes) != 0 {
		t.Errorf("expected empty file, got %+v", rf)
	}
}

func TestRemotesPath_HomeFallback(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", "")

	got, err := remotesPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".local", "state", "sgc", "remotes.toml"); got != want {
		t.Errorf("remotesPath = %q, want %q", got, want)
	}
}

func TestRemotesFile_Permissions(t *testing.T) {
	useStateDir(t)

	if err := (&remotesFile{Remotes: map[string]Remote{}}).save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	path, _ := remotesPath()
	for p, want := range map[string]os.FileMode{path: 0o600, filepath.Dir(path): 0o700} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s: %v", p, err)
		}
		if got := info.Mode().Perm(); got != want {
			t.Errorf("%s permissions = %04o, want %04o", p, got, want)
		}
	}
}

func TestConnDefaults(t *testing.T) {
	useStateDir(t)
	t.Setenv("SGC_URL", "")
	t.Setenv("SGC_TOKEN", "")
	t.Setenv("SGC_USER", "")

	if url, tok, usr := connDefaults(); url != "http://localhost:8080" || tok != "" || usr != "" {
		t.Fatalf("no remotes: got %q %q %q", url, tok, usr)
	}

	rf := &remotesFile{
		Active:  "prod",
		Remotes: map[string]Remote{"prod": {URL: "https://sgc.example.com", Token: "tok", User: "u1"}},
	}
	if err := rf.save(); err != nil {
		t.Fatal(err)
	}
	if url, tok, usr := connDefaults(); url != "https://sgc.example.com" || tok != "tok" || usr != "u1" {
		t.Fatalf("active remote: got %q %q %q", url, tok, usr)
	}

	t.Setenv("SGC_USER", "u2")
	if _, _, usr := connDefaults(); usr != "u2" {
		t.Errorf("SGC_USER should win over the remote, got %q", usr)
	}
}

func TestRemoteLifecycle(t *testing.T) {
	useStateDir(t)

	mustRun := func(fn func() error) {
		t.Helper()
		if err := fn(); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	remoteAddCmd.SetOut(&buf)
	remoteUseCmd.SetOut(&buf)
	remoteRemoveCmd.SetOut(&buf)

	mustRun(func() error { return remoteAddCmd.RunE(remoteAddCmd, []string{"local", "http://localhost:8080"}) })
	mustRun(func() error { return remoteAddCmd.RunE(remoteAddCmd, []string{"local", "http://localhost:8080"}) }) // upsert
	mustRun(func() error { return remoteUseCmd.RunE(remoteUseCmd, []string{"local"}) })

	rf, _ := readRemotes()
	if rf.Active != "local" || len(rf.Remotes) != 1 {
		t.Fatalf("unexpected remotes %+v", rf)
	}

	buf.Reset()
	remoteListCmd.SetOut(&buf)
	mustRun(func() error { return remoteListCmd.RunE(remoteListCmd, nil) })
	if !strings.Contains(buf.String(), "* local") {
		t.Errorf("list missing active marker; got:\n%s", buf.String())
	}

	buf.Reset()
	remoteShowCmd.SetOut(&buf)
	mustRun(func() error { return remoteShowCmd.RunE(remoteShowCmd, nil) })
	if out := buf.String(); !strings.Contains(out, "http://localhost:8080") || !strings.Contains(out, "(active)") {
		t.Errorf("show missing expected content; got:\n%s", out)
	}

	mustRun(func() error { return remoteRemoveCmd.RunE(remoteRemoveCmd, []string{"local"}) })
	rf, _ = readRemotes()
	if _, ok := rf.Remotes["local"]; ok || rf.Active != "" {
		t.Errorf("remove should drop the remote and clear active, got %+v", rf)
	}
}

func TestMaskToken(t *testing.T) {
	for _, tc := range []struct {
		tok, fill, want string
	}{
		{"short", "", "short"},
		{"tok_verylongsecret", "", "tok_very..."},
		{"tok_verylongsecret", "*", "tok_very**********"},
	} {
		if got := maskToken(tc.tok, tc.fill); got != tc.want {
			t.Errorf("maskToken(%q, %q) = %q, want %q", tc.tok, tc.fill, got, tc.want)
		}
	}
}

func TestRemoteErrorCases(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"use unknown", func() error { return remoteUseCmd.RunE(remoteUseCmd, []string{"ghost"}) }},
		{"remove unknown", func() error { return remoteRemoveCmd.RunE(remoteRemoveCmd, []string{"ghost"}) }},
		{"show no active", func() error { return remoteShowCmd.RunE(remoteShowCmd, nil) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			useStateDir(t)
			if err := tc.fn(); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
