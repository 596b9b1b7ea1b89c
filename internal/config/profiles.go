package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultProfile is the profile login creates when none is active.
const DefaultProfile = "default"

// ErrUnknownProfile is returned for operations on a profile that does not
// exist.
var ErrUnknownProfile = errors.New("unknown remote")

// Profile is a named API endpoint with its saved session.
type Profile struct {
	URL         string `toml:"url"`
	Token       string `toml:"token,omitempty"`
	NATSURL     string `toml:"nats_url,omitempty"`
	Description string `toml:"description,omitempty"`
}

// Profiles is the set of remotes a user switches between. It is stored as
// TOML with the token in clear, so the file is private to the user.
type Profiles struct {
	Active  string             `toml:"active"`
	Entries map[string]Profile `toml:"remotes"`
}

// ProfilesPath is ~/.local/state/ptadmin/remotes.toml.
func ProfilesPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating remotes file: %w", err)
	}
	return filepath.Join(home, ".local", "state", "ptadmin", "remotes.toml"), nil
}

// LoadProfiles reads path. A missing file is an empty set.
func LoadProfiles(path string) (*Profiles, error) {
	p := &Profiles{}
	if _, err := toml.DecodeFile(path, p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if p.Entries == nil {
		p.Entries = map[string]Profile{}
	}
	if _, ok := p.Entries[p.Active]; !ok {
		p.Active = ""
	}
	return p, nil
}

// Save writes the set to path through a temp file, creating the directory
// with owner-only permissions.
func (p *Profiles) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, ".remotes-*.toml")
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	defer os.Remove(f.Name())

	if err := f.Chmod(0o600); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := toml.NewEncoder(f).Encode(p); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return os.Rename(f.Name(), path)
}

// Put adds or replaces a profile.
func (p *Profiles) Put(name string, prof Profile) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("remote name is empty")
	}
	if u, err := url.Parse(prof.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("remote %q: invalid URL %q", name, prof.URL)
	}
	p.Entries[name] = prof
	return nil
}

// Remove deletes a profile, deactivating it first if needed.
func (p *Profiles) Remove(name string) error {
	if _, ok := p.Entries[name]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownProfile, name)
	}
	delete(p.Entries, name)
	if p.Active == name {
		p.Active = ""
	}
	return nil
}

// Use activates a profile. An empty name deactivates the current one.
func (p *Profiles) Use(name string) error {
	if name != "" {
		if _, ok := p.Entries[name]; !ok {
			return fmt.Errorf("%w %q", ErrUnknownProfile, name)
		}
	}
	p.Active = name
	return nil
}

// Current returns the active profile.
func (p *Profiles) Current() (string, Profile, bool) {
	prof, ok := p.Entries[p.Active]
	if p.Active == "" || !ok {
		return "", Profile{}, false
	}
	return p.Active, prof, true
}

// Names lists the profiles alphabetically.
func (p *Profiles) Names() []string {
	names := make([]string, 0, len(p.Entries))
	for name := range p.Entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// SetToken saves token on the active profile and returns its name. With no
// active profile it creates and activates DefaultProfile at apiURL. An empty
// token logs out.
func (p *Profiles) SetToken(apiURL, token string) string {
	name, prof, ok := p.Current()
	if !ok {
		name, prof = DefaultProfile, Profile{URL: apiURL}
		p.Active = name
	}
	prof.Token = token
	p.Entries[name] = prof
	return name
}
