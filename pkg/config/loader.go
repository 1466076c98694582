package config

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/afero"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/arthur-debert/genx/pkg/errors"
	"github.com/arthur-debert/genx/pkg/types"
)

const (
	// DefaultEnvPrefix selects the environment variables merged into the configuration
	DefaultEnvPrefix = "GENX_"

	// envNestingSeparator separates nested keys in variable names, e.g. GENX_settings__level
	envNestingSeparator = "__"
)

// Extensions lists the recognised file extensions in lookup order
var Extensions = []string{".yaml", ".yml", ".toml"}

// reservedEnvKeys are prefixed variables that configure the process rather than the container
var reservedEnvKeys = map[string]bool{"ENV": true}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// FileLoader implements types.ConfigLoader over layered files
type FileLoader struct {
	// Fs is the file system to read from. Nil means the OS file system.
	Fs afero.Fs

	// Files replaces the layered lookup with an explicit list of files,
	// lowest precedence first. Relative paths are relative to the config path.
	Files []string

	// EnvPrefix defaults to DefaultEnvPrefix
	EnvPrefix string

	// DisableEnv skips the environment layer
	DisableEnv bool

	// Environ supplies variables for the environment layer; nil means os.Environ
	Environ func() []string
}

var _ types.ConfigLoader = (*FileLoader)(nil)

// NewFileLoader creates a layered loader reading from fs
func NewFileLoader(fs afero.Fs) *FileLoader {
	return &FileLoader{Fs: fs}
}

// Load implements types.ConfigLoader
func (l *FileLoader) Load(ctx context.Context, vars types.ConfigVars) (*types.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paths, err := l.paths(vars)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	var order []string
	seen := make(map[string]bool)

	for _, path := range paths {
		data, err := afero.ReadFile(l.fs(), path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read config file %s", path).
				WithDetail("path", path)
		}

		if err := k.Load(l.provider(path, data), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path).
				WithDetail("path", path)
		}

		if isYAML(path) {
			keys, err := topLevelKeys(data)
			if err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path).
					WithDetail("path", path)
			}
			for _, key := range keys {
				if !seen[key] {
					seen[key] = true
					order = append(order, key)
				}
			}
		}
	}

	if !l.DisableEnv {
		if err := k.Load(l.envProvider(), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
		}
	}

	return types.ConfigFromOrdered(k.Raw(), order), nil
}

// paths returns the files to load, lowest precedence first
func (l *FileLoader) paths(vars types.ConfigVars) ([]string, error) {
	if len(l.Files) > 0 {
		out := make([]string, 0, len(l.Files))
		for _, f := range l.Files {
			if !filepath.IsAbs(f) {
				f = filepath.Join(vars.ConfigPath, f)
			}
			if !l.exists(f) {
				return nil, errors.Newf(errors.ErrConfigLoad, "config file %s does not exist", f).
					WithDetail("path", f)
			}
			out = append(out, f)
		}
		return out, nil
	}

	var out []string
	for _, base := range LayerNames(vars.ConfigName, vars.Env) {
		for _, ext := range Extensions {
			path := filepath.Join(vars.ConfigPath, base+ext)
			if l.exists(path) {
				out = append(out, path)
			}
		}
	}
	return out, nil
}

// LayerNames returns the base names of the config layers for name and env
func LayerNames(name, env string) []string {
	layers := []string{name + ".default"}
	if env != "" {
		layers = append(layers, name+"."+env)
	}
	return layers
}

func (l *FileLoader) fs() afero.Fs {
	if l.Fs == nil {
		return afero.NewOsFs()
	}
	return l.Fs
}

func (l *FileLoader) exists(path string) bool {
	info, err := l.fs().Stat(path)
	return err == nil && !info.IsDir()
}

func (l *FileLoader) provider(path string, data []byte) koanf.Provider {
	if l.Fs == nil {
		return file.Provider(path)
	}
	return &rawBytesProvider{bytes: data}
}

func (l *FileLoader) envProvider() koanf.Provider {
	prefix := l.EnvPrefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}

	if l.Environ != nil {
		values := make(map[string]interface{})
		for _, kv := range l.Environ() {
			name, value, ok := strings.Cut(kv, "=")
			if !ok || !strings.HasPrefix(name, prefix) {
				continue
			}
			if key := envKey(prefix, name); key != "" {
				values[key] = value
			}
		}
		return confmap.Provider(values, ".")
	}

	return env.Provider(prefix, ".", func(s string) string {
		return envKey(prefix, s)
	})
}

func envKey(prefix, name string) string {
	key := strings.TrimPrefix(name, prefix)
	if key == "" || reservedEnvKeys[key] {
		return ""
	}
	return strings.ReplaceAll(key, envNestingSeparator, ".")
}

func parserFor(path string) koanf.Parser {
	if isYAML(path) {
		return yaml.Parser()
	}
	return toml.Parser()
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// topLevelKeys returns the keys of a YAML mapping document in order
func topLevelKeys(data []byte) ([]string, error) {
	var doc yamlv3.Node
	if err := yamlv3.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yamlv3.MappingNode {
		return nil, nil
	}

	mapping := doc.Content[0]
	keys := make([]string, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keys = append(keys, mapping.Content[i].Value)
	}
	return keys, nil
}

// Exists reports whether any layer file for name and env exists in dir
func Exists(fs afero.Fs, dir, name, env string) bool {
	l := &FileLoader{Fs: fs}
	paths, _ := l.paths(types.ConfigVars{ConfigPath: dir, ConfigName: name, Env: env})
	return len(paths) > 0
}
