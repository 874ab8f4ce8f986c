package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// ErrNoConfig is returned by DiscoverConfig when no interface document is found.
var ErrNoConfig = errors.New("no interface configuration found")

// configFileNames is the discovery order used by DiscoverConfig.
var configFileNames = []string{"interface.json", "interface.yaml", "interface.yml"}

// Load reads the interface document at path and builds a Registry from it.
// The default rulebase is the interfaceRules directory next to the file.
func Load(path string, opts ...Option) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading interface profiles: %w", err)
	}
	return LoadBytes(data, isYAMLPath(path), filepath.Dir(path), opts...)
}

// LoadBytes builds a Registry from raw document bytes. Relative rulebase and
// include paths are resolved against baseDir.
func LoadBytes(data []byte, isYAML bool, baseDir string, opts ...Option) (*Registry, error) {
	doc, err := ParseDocument(data, isYAML)
	if err != nil {
		return nil, err
	}

	for i, pattern := range doc.Include {
		included, err := loadIncludes(pattern, baseDir)
		if err != nil {
			return nil, fmt.Errorf("include[%d] (%s): %w", i, pattern, err)
		}
		doc.Interfaces = append(doc.Interfaces, included...)
	}

	return NewRegistry(doc, baseDir, opts...)
}

// ParseDocument expands environment references in data, validates it against
// the document schema and decodes it.
func ParseDocument(data []byte, isYAML bool) (*Document, error) {
	normalized, err := decodeNormalized([]byte(ExpandEnvVars(string(data))), isYAML)
	if err != nil {
		return nil, fmt.Errorf("interface profiles have a syntax error: %w", err)
	}

	if err := ValidateDocument(normalized); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("re-encoding document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return &doc, nil
}

// decodeNormalized parses JSON or YAML into plain JSON values
// (map[string]any, []any, float64, string, bool, nil).
func decodeNormalized(data []byte, isYAML bool) (any, error) {
	var v any
	if isYAML {
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		// yaml.v3 produces int and time values; round-trip through JSON so
		// every consumer sees the same types.
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		v = nil
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// loadIncludes expands pattern and returns the interfaces of every matching
// document, in lexical file order. Only the interfaces of included documents
// are used.
func loadIncludes(pattern, baseDir string) ([]*Profile, error) {
	matches, err := expandGlob(ResolvePath(baseDir, pattern))
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}
	sort.Strings(matches)

	var profiles []*Profile
	for _, match := range matches {
		data, err := os.ReadFile(match)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", match, err)
		}
		doc, err := ParseDocument(data, isYAMLPath(match))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", match, err)
		}
		profiles = append(profiles, doc.Interfaces...)
	}
	return profiles, nil
}

// expandGlob expands a glob pattern to a list of matching file paths.
// Uses doublestar for ** support, falls back to filepath.Glob for simple patterns.
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return doublestar.FilepathGlob(pattern)
	}
	return filepath.Glob(pattern)
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars replaces ${VAR} and ${VAR:-default} references with values
// from the environment. Unset variables without a default expand to "".
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		if val := os.Getenv(submatch[1]); val != "" {
			return val
		}
		if len(submatch) >= 3 {
			return submatch[2]
		}
		return ""
	})
}

// ResolvePath resolves targetPath against basePath. Absolute paths are
// returned unchanged and a leading ~/ expands to the home directory.
func ResolvePath(basePath, targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	if strings.HasPrefix(targetPath, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, targetPath[2:])
		}
	}
	return filepath.Join(basePath, targetPath)
}

// DiscoverConfig returns explicit when set, otherwise the first of
// interface.json, interface.yaml, interface.yml found in dir.
func DiscoverConfig(explicit, dir string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("interface configuration %s: %w", explicit, err)
		}
		return explicit, nil
	}
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w in %s (looked for %s)", ErrNoConfig, dir, strings.Join(configFileNames, ", "))
}
