// Package config loads pdepp.toml, the per-sketch (or per-sketchbook)
// preprocessor configuration.
package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/codeanticode/processing-openjdk/internal/prefs"
)

// FileName is the name of the configuration file looked up by Find.
const FileName = "pdepp.toml"

// Config is the decoded form of pdepp.toml.
type Config struct {
	Preprocessor Preprocessor `toml:"preprocessor"`
	Preferences  Preferences  `toml:"preferences"`
	Output       Output       `toml:"output"`
}

// Preprocessor holds the inputs of the header synthesizer.
type Preprocessor struct {
	Indent            int      `toml:"indent"`
	Banner            bool     `toml:"banner"`
	CoreImports       []string `toml:"core_imports"`
	DefaultImports    []string `toml:"default_imports"`
	CodeFolderImports []string `toml:"code_folder_imports"`
	// CodeFolder is scanned for jars, relative to the sketch directory.
	CodeFolder     string `toml:"code_folder"`
	ScanCodeFolder bool   `toml:"scan_code_folder"`
}

// Preferences points at a Processing preferences.txt and carries inline
// overrides.
type Preferences struct {
	File   string            `toml:"file"`
	Values map[string]string `toml:"values"`
}

// Output controls where and how results are written.
type Output struct {
	Dir       string `toml:"dir"`
	Extension string `toml:"extension"`
	Cache     bool   `toml:"cache"`
}

// Manifest is a located and decoded configuration file.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Default returns the configuration used when no pdepp.toml exists.
func Default() Config {
	return Config{
		Preprocessor: Preprocessor{
			Indent: 2,
			Banner: true,
			CoreImports: []string{
				"processing.core.*",
				"processing.data.*",
				"processing.event.*",
				"processing.opengl.*",
			},
			DefaultImports: []string{
				"java.util.HashMap",
				"java.util.ArrayList",
				"java.io.File",
				"java.io.BufferedReader",
				"java.io.PrintWriter",
				"java.io.InputStream",
				"java.io.OutputStream",
				"java.io.IOException",
			},
			CodeFolder:     "code",
			ScanCodeFolder: true,
		},
		Output: Output{
			Extension: ".java",
			Cache:     true,
		},
	}
}

// Find walks up from startDir to locate pdepp.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and decodes the configuration for startDir. When no file
// exists the manifest carries Default() and ok is false.
func Load(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		root, absErr := filepath.Abs(startDir)
		if absErr != nil {
			root = startDir
		}
		return &Manifest{Root: root, Config: Default()}, false, nil
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadFile decodes path over the defaults. Keys missing from the file keep
// their default values; unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Preprocessor.Indent < 0 || c.Preprocessor.Indent > 16 {
		return fmt.Errorf("[preprocessor].indent must be between 0 and 16, got %d", c.Preprocessor.Indent)
	}
	for _, group := range [][]string{c.Preprocessor.CoreImports, c.Preprocessor.DefaultImports, c.Preprocessor.CodeFolderImports} {
		for _, imp := range group {
			if strings.TrimSpace(imp) == "" || strings.ContainsAny(imp, "; \t\n") {
				return fmt.Errorf("invalid import %q", imp)
			}
		}
	}
	if ext := c.Output.Extension; ext != "" && !strings.HasPrefix(ext, ".") {
		return fmt.Errorf("[output].extension must start with a dot, got %q", ext)
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Fingerprint is a stable digest of every setting that affects output.
func (c Config) Fingerprint() string {
	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return ""
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

// WriteDefault creates dir/pdepp.toml with the default configuration.
// An existing file is only replaced when force is set.
func WriteDefault(dir string, force bool) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil && !force {
		return path, fmt.Errorf("%s already exists", path)
	}
	var buf bytes.Buffer
	buf.WriteString("# pdepp configuration\n\n")
	if err := Default().Encode(&buf); err != nil {
		return path, fmt.Errorf("%s: failed to encode TOML: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { // #nosec G306 -- config is not secret
		return path, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// ResolvePrefs loads the preferences referenced by the manifest, relative
// to its root, and applies inline overrides.
func (m *Manifest) ResolvePrefs() (*prefs.Prefs, error) {
	p := prefs.Defaults()
	if file := m.Config.Preferences.File; file != "" {
		if !filepath.IsAbs(file) {
			file = filepath.Join(m.Root, file)
		}
		loaded, err := prefs.Load(file)
		if err != nil {
			return nil, err
		}
		p = loaded
	}
	if len(m.Config.Preferences.Values) > 0 {
		if err := p.Override(m.Config.Preferences.Values); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// CodeFolderPath returns the absolute code folder for a sketch directory.
func (m *Manifest) CodeFolderPath(sketchDir string) string {
	folder := m.Config.Preprocessor.CodeFolder
	if folder == "" {
		return ""
	}
	if filepath.IsAbs(folder) {
		return folder
	}
	return filepath.Join(sketchDir, folder)
}

// OutputPath returns where the rewritten unit is written, or "" for stdout.
func (m *Manifest) OutputPath(unitName string) string {
	dir := m.Config.Output.Dir
	if dir == "" {
		return ""
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(m.Root, dir)
	}
	ext := m.Config.Output.Extension
	if ext == "" {
		ext = ".java"
	}
	return filepath.Join(dir, unitName+ext)
}
