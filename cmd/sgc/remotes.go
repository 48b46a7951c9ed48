package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// Remote is a saved connection to an SGC server.
type Remote struct {
	URL   string `toml:"url"`
	Token string `toml:"token,omitempty"`
	User  string `toml:"user,omitempty"`
}

// remotesFile is the TOML document at remotesPath. Active names the remote
// whose settings become the defaults of --url, --token and --user.
type remotesFile struct {
	Active  string            `toml:"active"`
	Remotes map[string]Remote `toml:"remotes"`
}

// remotesPath is $XDG_STATE_HOME/sgc/remotes.toml, falling back to
// ~/.local/state when XDG_STATE_HOME is unset.
func remotesPath() (string, error) {
	state := os.Getenv("XDG_STATE_HOME")
	if state == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locate remotes file: %w", err)
		}
		state = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(state, "sgc", "remotes.toml"), nil
}

// readRemotes loads the remotes file. A missing file reads as empty.
func readRemotes() (*remotesFile, error) {
	path, err := remotesPath()
	if err != nil {
		return nil, err
	}
	f := &remotesFile{}
	if _, err := toml.DecodeFile(path, f); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if f.Remotes == nil {
		f.Remotes = map[string]Remote{}
	}
	return f, nil
}

// save replaces the remotes file. Tokens live in it, so the file is 0600
// inside a 0700 directory.
func (f *remotesFile) save() error {
	path, err := remotesPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".remotes-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := toml.NewEncoder(tmp).Encode(f); err != nil {
		tmp.Close()
		return fmt.Errorf("encode remotes: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (f *remotesFile) get(name string) (Remote, error) {
	r, ok := f.Remotes[name]
	if !ok {
		return Remote{}, fmt.Errorf("remote %q not found", name)
	}
	return r, nil
}

// names returns the remote names in order.
func (f *remotesFile) names() []string {
	out := make([]string, 0, len(f.Remotes))
	for name := range f.Remotes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
