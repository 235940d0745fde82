package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// YAMLConfig is a kong.ConfigurationLoader that resolves flags from a YAML
// document. Keys match flag names with dashes or underscores; a nested
// mapping under a command name scopes its keys to that command:
//
//	verbose: true
//	index:
//	  mode: batch
//	  per-minute: 300
func YAMLConfig(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && err != io.EOF {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var f kong.ResolverFunc = func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		scope := values
		if parent != nil && parent.Command != nil {
			for _, name := range commandPath(parent.Command) {
				nested, ok := scope[name].(map[string]any)
				if !ok {
					scope = nil
					break
				}
				scope = nested
			}
		}
		if v, ok := lookup(scope, flag.Name); ok {
			return v, nil
		}
		if v, ok := lookup(values, flag.Name); ok {
			return v, nil
		}
		return nil, nil
	}
	return f, nil
}

// commandPath returns the names from the root command down to node.
func commandPath(node *kong.Node) []string {
	var names []string
	for n := node; n != nil && n.Type == kong.CommandNode; n = n.Parent {
		names = append([]string{n.Name}, names...)
	}
	return names
}

// lookup finds a flag value by its dashed or underscored name. Scalars are
// returned as strings and lists as comma-separated strings so kong's
// mappers decode them the same way as command-line values.
func lookup(values map[string]any, name string) (any, bool) {
	if values == nil {
		return nil, false
	}
	raw, ok := values[name]
	if !ok {
		raw, ok = values[strings.ReplaceAll(name, "-", "_")]
	}
	if !ok || raw == nil {
		return nil, false
	}
	switch v := raw.(type) {
	case map[string]any:
		return nil, false
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ","), true
	default:
		return fmt.Sprint(v), true
	}
}
