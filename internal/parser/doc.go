// Package parser provides a unified interface for reading values out of
// manifest files in various formats including JSON, JSONC, YAML, TOML, and
// raw text. It is used by the marker probes to pull version fields and
// metadata objects out of ecosystem manifests.
package parser
