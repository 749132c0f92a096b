package vm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is the parsed contents of a wisp.toml project file: which
// snapshot or source the run command should load, and what to name it.
type Manifest struct {
	Path   string
	Root   string
	Config ManifestConfig
}

type ManifestConfig struct {
	Package PackageConfig `toml:"package"`
	Run     RunConfig     `toml:"run"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type RunConfig struct {
	// Entry is the snapshot or bytecode file the run command loads,
	// relative to the manifest's directory.
	Entry string `toml:"entry"`
	// Watch, if set, makes `wisp run` default to the live Bubble Tea view
	// instead of plain log output.
	Watch bool `toml:"watch"`
}

// FindManifest searches startDir and its ancestors for a wisp.toml,
// stopping at the first filesystem root it reaches without finding one.
func FindManifest(startDir string) (path string, found bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "wisp.toml")
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, true, nil
		} else if !errors.Is(statErr, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, statErr)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// LoadManifest locates and parses the nearest wisp.toml above startDir.
func LoadManifest(startDir string) (*Manifest, error) {
	path, found, err := FindManifest(startDir)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.New("no wisp.toml found; pass a snapshot path explicitly")
	}
	var cfg ManifestConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") || strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	if !meta.IsDefined("run") || strings.TrimSpace(cfg.Run.Entry) == "" {
		return nil, fmt.Errorf("%s: missing [run].entry", path)
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

// EntryPath resolves the manifest's [run].entry against its own directory.
func (m *Manifest) EntryPath() string {
	return filepath.Join(m.Root, filepath.FromSlash(m.Config.Run.Entry))
}
