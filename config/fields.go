package config

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"sort"
	"strings"
)

type fieldMode int

const (
	optional fieldMode = iota
	required
)

type ConfigError struct {
	Violations []string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + strings.Join(e.Violations, "; ")
}

type field interface {
	key() string
	mode() fieldMode
	decode(node *yaml.Node) error
}

type scalarField[T any] struct {
	name  string
	m     fieldMode
	dst   *T
	check func(T) error
}

func (f *scalarField[T]) key() string {
	return f.name
}

func (f *scalarField[T]) mode() fieldMode {
	return f.m
}

func (f *scalarField[T]) decode(node *yaml.Node) error {
	var v T
	if err := node.Decode(&v); err != nil {
		return err
	}
	if f.check != nil {
		if err := f.check(v); err != nil {
			return err
		}
	}
	*f.dst = v
	return nil
}

// addScalar binds a document key to dst. The value already held by dst is the default.
func addScalar[T any](name string, dst *T, m fieldMode, check func(T) error) field {
	return &scalarField[T]{name: name, dst: dst, m: m, check: check}
}

func parseFields(raw []byte, fields []field) []string {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return []string{fmt.Sprintf("malformed document: %v", err)}
	}

	values := make(map[string]*yaml.Node)
	if len(root.Content) > 0 {
		doc := root.Content[0]
		switch {
		case doc.Kind == yaml.MappingNode:
			for i := 0; i+1 < len(doc.Content); i += 2 {
				values[doc.Content[i].Value] = doc.Content[i+1]
			}
		case doc.Kind == yaml.ScalarNode && doc.Tag == "!!null":
		default:
			return []string{"document must be a mapping"}
		}
	}

	violations := make([]string, 0)
	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[f.key()] = struct{}{}
		node, ok := values[f.key()]
		if !ok {
			if f.mode() == required {
				violations = append(violations, fmt.Sprintf("%s: required field is missing", f.key()))
			}
			continue
		}
		if err := f.decode(node); err != nil {
			violations = append(violations, fmt.Sprintf("%s: %v", f.key(), err))
		}
	}

	unknown := make([]string, 0)
	for k := range values {
		if _, ok := known[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	for _, k := range unknown {
		violations = append(violations, fmt.Sprintf("%s: unknown field", k))
	}

	return violations
}

func positiveInt(v int) error {
	if v <= 0 {
		return fmt.Errorf("must be positive, got %d", v)
	}
	return nil
}

func nonNegativeInt(v int) error {
	if v < 0 {
		return fmt.Errorf("must not be negative, got %d", v)
	}
	return nil
}

func positiveFloat(v float32) error {
	if !(v > 0) {
		return fmt.Errorf("must be positive, got %v", v)
	}
	return nil
}

func unitInterval(v float32) error {
	if !(v >= 0 && v <= 1) {
		return fmt.Errorf("must be within [0, 1], got %v", v)
	}
	return nil
}

func positiveFloats(v []float32) error {
	if len(v) == 0 {
		return fmt.Errorf("must not be empty")
	}
	for i, x := range v {
		if !(x > 0) {
			return fmt.Errorf("element %d must be positive, got %v", i, x)
		}
	}
	return nil
}

func uniqueNames(v []string) error {
	if len(v) == 0 {
		return fmt.Errorf("must not be empty")
	}
	seen := make(map[string]struct{}, len(v))
	for _, name := range v {
		if name == "" {
			return fmt.Errorf("label names must not be empty")
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("duplicate label %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
