package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Version of the manifest layout written by Save.
const Version = 1

// Source is the recorded state of one scanned source file.
type Source struct {
	File    string   `yaml:"file" json:"file"`
	Hash    string   `yaml:"hash" json:"hash"`
	Outputs []string `yaml:"outputs,omitempty" json:"outputs,omitempty"`
}

// Manifest tracks what the previous pass saw and wrote. Paths are slash
// separated and relative to the module root.
type Manifest struct {
	Version int      `yaml:"version" json:"version"`
	Sources []Source `yaml:"sources" json:"sources"`
}

// Load reads a manifest from the provided path. If the file does not exist,
// an empty manifest is returned.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Manifest{Version: Version}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "unmarshal manifest")
	}
	if m.Version > Version {
		return nil, errors.WithHint(
			errors.Newf("manifest version %d is newer than %d", m.Version, Version),
			"delete the manifest to force a full pass",
		)
	}
	return &m, nil
}

// Save writes the manifest to the provided path, creating parent directories as needed.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create manifest directory")
	}
	m.Version = Version
	sort.Slice(m.Sources, func(i, j int) bool { return m.Sources[i].File < m.Sources[j].File })

	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "marshal manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write manifest")
	}
	return nil
}

// Source returns the entry for file, if present.
func (m *Manifest) Source(file string) (Source, bool) {
	for _, s := range m.Sources {
		if s.File == file {
			return s, true
		}
	}
	return Source{}, false
}

// Record stores the hash and outputs of file, replacing any earlier entry.
func (m *Manifest) Record(file, hash string, outputs []string) {
	outputs = slices.Clone(outputs)
	sort.Strings(outputs)
	s := Source{File: file, Hash: hash, Outputs: outputs}
	for i := range m.Sources {
		if m.Sources[i].File == file {
			m.Sources[i] = s
			return
		}
	}
	m.Sources = append(m.Sources, s)
}

// Forget drops file and returns the outputs it had.
func (m *Manifest) Forget(file string) []string {
	for i, s := range m.Sources {
		if s.File == file {
			m.Sources = slices.Delete(m.Sources, i, i+1)
			return s.Outputs
		}
	}
	return nil
}

// Changed returns, sorted, the files of hashes that are new or whose hash
// differs, followed by recorded files missing from hashes.
func (m *Manifest) Changed(hashes map[string]string) []string {
	var changed, gone []string
	for file, hash := range hashes {
		if s, ok := m.Source(file); !ok || s.Hash != hash {
			changed = append(changed, file)
		}
	}
	for _, s := range m.Sources {
		if _, ok := hashes[s.File]; !ok {
			gone = append(gone, s.File)
		}
	}
	sort.Strings(changed)
	sort.Strings(gone)
	return append(changed, gone...)
}

// HashFile returns the hex sha256 of the file at path.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "hash %s", path)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
