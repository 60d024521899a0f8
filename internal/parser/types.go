package parser

// Format represents the supported file formats for value extraction.
type Format string

const (
	// FormatJSON is for JSON files (package.json, etc.).
	FormatJSON Format = "json"

	// FormatJSONC is for JSON-with-comments files (deno.jsonc, etc.).
	FormatJSONC Format = "jsonc"

	// FormatYAML is for YAML files (action.yml, etc.).
	FormatYAML Format = "yaml"

	// FormatTOML is for TOML files (Cargo.toml, pyproject.toml, etc.).
	FormatTOML Format = "toml"

	// FormatRaw is for plain text files where the entire content is the value.
	FormatRaw Format = "raw"
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known valid format.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatJSONC, FormatYAML, FormatTOML, FormatRaw:
		return true
	default:
		return false
	}
}

// FileConfig describes how to read a value from a specific file.
type FileConfig struct {
	// Path is the file path (absolute or relative).
	Path string

	// Format specifies the file format.
	Format Format

	// Field is the dot-notation path to the target field (for structured formats).
	// Example: "version", "runs.using", "tea".
	Field string
}
