// Package frontmatter parses the structured metadata fragment (package
// requirements plus environment entries) that projects declare either in a
// dedicated YAML document (tea.yml), in a "tea" field of a JSON manifest, or
// embedded inside an otherwise foreign-format file such as go.mod or
// Cargo.toml.
package frontmatter

import (
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/YadongOfficial/pkgx/internal/pkgs"
)

// FrontMatter is a parsed metadata fragment.
type FrontMatter struct {
	// Requirements preserves the declared order.
	Requirements []pkgs.Requirement

	// Env maps environment-variable names to raw (unexpanded) values.
	Env map[string]string
}

// IsEmpty reports whether the fragment carries no signals at all.
func (fm *FrontMatter) IsEmpty() bool {
	return fm == nil || (len(fm.Requirements) == 0 && len(fm.Env) == 0)
}

// document mirrors the YAML shape of a front-matter fragment.
// Dependencies is decoded as a MapSlice so declared order survives;
// it may also be a plain list of "project@constraint" strings.
type document struct {
	Dependencies any            `yaml:"dependencies"`
	Env          map[string]any `yaml:"env"`
}

// Parse parses a native YAML front-matter document.
func Parse(data []byte) (*FrontMatter, error) {
	var doc document
	// UseOrderedMap keeps the dependency mapping in declared order.
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("failed to parse front matter: %w", err)
	}
	return fromDocument(doc)
}

// FromMap adapts an already-decoded JSON object (e.g. the "tea" field of
// package.json or deno.json) into a front-matter fragment. Nested objects
// arrive as yaml.MapSlice from the parser, so dependency entries keep their
// document order.
func FromMap(m map[string]any) (*FrontMatter, error) {
	doc := document{Dependencies: m["dependencies"]}
	switch env := m["env"].(type) {
	case map[string]any:
		doc.Env = env
	case yaml.MapSlice:
		doc.Env = make(map[string]any, len(env))
		for _, item := range env {
			doc.Env[fmt.Sprintf("%v", item.Key)] = item.Value
		}
	}
	return fromDocument(doc)
}

func fromDocument(doc document) (*FrontMatter, error) {
	fm := &FrontMatter{Env: make(map[string]string)}

	reqs, err := parseDependencies(doc.Dependencies)
	if err != nil {
		return nil, err
	}
	fm.Requirements = reqs

	for k, v := range doc.Env {
		fm.Env[k] = fmt.Sprintf("%v", v)
	}
	return fm, nil
}

// parseDependencies accepts the shapes front matter uses in the wild:
// a mapping of project -> constraint, or a sequence of requirement strings.
func parseDependencies(deps any) ([]pkgs.Requirement, error) {
	switch d := deps.(type) {
	case nil:
		return nil, nil

	case yaml.MapSlice:
		reqs := make([]pkgs.Requirement, 0, len(d))
		for _, item := range d {
			req, err := requirementFromPair(fmt.Sprintf("%v", item.Key), item.Value)
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, req)
		}
		return reqs, nil

	case map[string]any:
		// Only TOML tables decode this way; go-toml maps are unordered,
		// so keys are sorted for determinism.
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		reqs := make([]pkgs.Requirement, 0, len(keys))
		for _, k := range keys {
			req, err := requirementFromPair(k, d[k])
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, req)
		}
		return reqs, nil

	case []any:
		reqs := make([]pkgs.Requirement, 0, len(d))
		for _, item := range d {
			req, err := pkgs.Parse(fmt.Sprintf("%v", item))
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, req)
		}
		return reqs, nil

	default:
		return nil, fmt.Errorf("front matter dependencies must be a mapping or a sequence, got %T", deps)
	}
}

func requirementFromPair(project string, constraint any) (pkgs.Requirement, error) {
	spec := fmt.Sprintf("%v", constraint)
	if constraint == nil {
		spec = "*"
	}
	return pkgs.Parse(project + "@" + spec)
}
