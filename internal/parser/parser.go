package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"

	"github.com/YadongOfficial/pkgx/internal/core"
)

// ErrFieldNotFound is returned when the requested field is absent from an
// otherwise well-formed document. Callers that treat missing metadata as
// optional match it with errors.Is.
var ErrFieldNotFound = errors.New("field not found")

// Reader provides value reading capabilities for multiple file formats.
type Reader struct {
	fs core.FileSystem
}

// NewReader creates a new Reader with the given filesystem.
func NewReader(fs core.FileSystem) *Reader {
	return &Reader{fs: fs}
}

// ReadString reads a string-valued field from a file based on the provided
// configuration. For FormatRaw the whole trimmed file content is returned.
func (r *Reader) ReadString(ctx context.Context, cfg FileConfig) (string, error) {
	data, err := r.load(ctx, cfg)
	if err != nil {
		return "", err
	}

	switch cfg.Format {
	case FormatJSON, FormatJSONC:
		result, err := r.jsonField(data, cfg)
		if err != nil {
			return "", err
		}
		if result.Type != gjson.String {
			return "", fmt.Errorf("field %q in %q is not a string", cfg.Field, cfg.Path)
		}
		return result.String(), nil

	case FormatYAML:
		var obj map[string]any
		if err := yaml.Unmarshal(data, &obj); err != nil {
			return "", fmt.Errorf("failed to parse YAML in %q: %w", cfg.Path, err)
		}
		return stringField(obj, cfg)

	case FormatTOML:
		var obj map[string]any
		if err := toml.Unmarshal(data, &obj); err != nil {
			return "", fmt.Errorf("failed to parse TOML in %q: %w", cfg.Path, err)
		}
		return stringField(obj, cfg)

	case FormatRaw:
		return strings.TrimSpace(string(data)), nil

	default:
		return "", fmt.Errorf("unsupported format: %s", cfg.Format)
	}
}

// ReadMap reads an object-valued field from a file. A missing field or a
// field holding a non-object value yields (nil, nil): callers treat such
// metadata as simply absent. For JSON and JSONC, nested objects decode as
// yaml.MapSlice so member order survives.
func (r *Reader) ReadMap(ctx context.Context, cfg FileConfig) (map[string]any, error) {
	data, err := r.load(ctx, cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Format {
	case FormatJSON, FormatJSONC:
		result, err := r.jsonField(data, cfg)
		if err != nil {
			if errors.Is(err, ErrFieldNotFound) {
				return nil, nil
			}
			return nil, err
		}
		if !result.IsObject() {
			return nil, nil
		}
		obj := make(map[string]any)
		result.ForEach(func(k, v gjson.Result) bool {
			obj[k.String()] = orderedValue(v)
			return true
		})
		return obj, nil

	case FormatYAML:
		var obj map[string]any
		if err := yaml.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("failed to parse YAML in %q: %w", cfg.Path, err)
		}
		value, err := getNestedValue(obj, cfg.Field)
		if err != nil {
			return nil, nil
		}
		m, _ := value.(map[string]any)
		return m, nil

	case FormatTOML:
		var obj map[string]any
		if err := toml.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("failed to parse TOML in %q: %w", cfg.Path, err)
		}
		value, err := getNestedValue(obj, cfg.Field)
		if err != nil {
			return nil, nil
		}
		m, _ := value.(map[string]any)
		return m, nil

	default:
		return nil, fmt.Errorf("unsupported format for map read: %s", cfg.Format)
	}
}

func (r *Reader) load(ctx context.Context, cfg FileConfig) ([]byte, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("file path is required")
	}
	if !cfg.Format.IsValid() {
		return nil, fmt.Errorf("invalid format: %s", cfg.Format)
	}

	data, err := r.fs.ReadFile(ctx, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", cfg.Path, err)
	}
	return data, nil
}

// orderedValue converts a gjson result into a Go value, decoding nested
// objects as yaml.MapSlice so document order survives. gjson's ForEach
// iterates object members in the order they appear in the document.
func orderedValue(v gjson.Result) any {
	switch {
	case v.IsObject():
		var slice yaml.MapSlice
		v.ForEach(func(k, item gjson.Result) bool {
			slice = append(slice, yaml.MapItem{Key: k.String(), Value: orderedValue(item)})
			return true
		})
		return slice
	case v.IsArray():
		var items []any
		v.ForEach(func(_, item gjson.Result) bool {
			items = append(items, orderedValue(item))
			return true
		})
		return items
	default:
		return v.Value()
	}
}

// jsonField extracts a field from JSON or JSONC data using dot notation.
func (r *Reader) jsonField(data []byte, cfg FileConfig) (gjson.Result, error) {
	if cfg.Field == "" {
		return gjson.Result{}, fmt.Errorf("field is required for %s format", cfg.Format)
	}
	if cfg.Format == FormatJSONC {
		data = jsonc.ToJSON(data)
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("failed to parse JSON in %q", cfg.Path)
	}
	result := gjson.GetBytes(data, cfg.Field)
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("field %q in %q: %w", cfg.Field, cfg.Path, ErrFieldNotFound)
	}
	return result, nil
}

func stringField(obj map[string]any, cfg FileConfig) (string, error) {
	value, err := getNestedValue(obj, cfg.Field)
	if err != nil {
		return "", fmt.Errorf("in file %q: %w", cfg.Path, err)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("field %q in %q is not a string", cfg.Field, cfg.Path)
	}
	return s, nil
}

// getNestedValue retrieves a value from a nested map using dot notation.
// Example: "runs.using" accesses obj["runs"]["using"]
func getNestedValue(obj map[string]any, field string) (any, error) {
	if field == "" {
		return nil, fmt.Errorf("field path cannot be empty")
	}

	parts := strings.Split(field, ".")
	current := any(obj)

	for i, part := range parts {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q is not an object at path %q", strings.Join(parts[:i], "."), part)
		}

		value, exists := currentMap[part]
		if !exists {
			return nil, fmt.Errorf("field %q: %w", field, ErrFieldNotFound)
		}

		current = value
	}

	return current, nil
}
