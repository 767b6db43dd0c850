// Package openapi renders a settings catalog as an OpenAPI document so remote
// editors can build forms without linking the catalog.
package openapi

import (
	"fmt"
	"sort"

	settings "github.com/goliatone/go-settings"
)

// Generator renders catalogs.
type Generator struct {
	config generatorConfig
}

// NewGenerator constructs an OpenAPI generator.
func NewGenerator(opts ...GeneratorOption) Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return Generator{config: cfg}
}

// Generate builds the document for catalog. The request body schema has one
// property per option, typed by its native value.
func (g Generator) Generate(catalog *settings.Catalog) (map[string]any, error) {
	if catalog == nil {
		return nil, fmt.Errorf("openapi: catalog cannot be nil")
	}
	dependsOn, err := dependencies(catalog, g.config.rules)
	if err != nil {
		return nil, err
	}
	properties := make(map[string]any, catalog.Len())
	for _, id := range catalog.IDs() {
		d, _ := catalog.Lookup(id)
		schema, err := optionSchema(d)
		if err != nil {
			return nil, err
		}
		if deps := dependsOn[id]; len(deps) > 0 {
			schema["x-depends-on"] = deps
		}
		properties[id] = schema
	}
	root := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
		"x-groups":             groups(catalog),
	}
	return newDocumentBuilder(g.config, root).build()
}

func optionSchema(d settings.Descriptor) (map[string]any, error) {
	schema := map[string]any{}
	if d.Title != "" {
		schema["title"] = d.Title
	}
	if d.Description != "" {
		schema["description"] = d.Description
	}
	if d.Group != "" {
		schema["x-group"] = d.Group
	}
	def := d.DefaultValue()
	switch d.Kind {
	case settings.KindBool:
		schema["type"] = "boolean"
		schema["default"] = def.Bool()
	case settings.KindInt:
		schema["type"] = "integer"
		schema["minimum"] = d.Min
		schema["maximum"] = d.Max
		if d.Step > 1 {
			schema["multipleOf"] = d.Step
		}
		if d.Scale > 1 {
			schema["x-scale"] = d.Scale
		}
		if d.Unit != "" {
			schema["x-unit"] = d.Unit
		}
		if len(d.Labels) > 0 {
			schema["x-labels"] = intLabels(d.Labels)
		}
		schema["default"] = def.Int
	case settings.KindEnum:
		values := make([]int, len(d.Members))
		labels := make([]string, len(d.Members))
		for i, m := range d.Members {
			values[i] = m.Value
			labels[i] = m.Label
		}
		schema["type"] = "integer"
		schema["enum"] = values
		schema["x-enum-labels"] = labels
		schema["default"] = def.Int
	case settings.KindText:
		schema["type"] = "string"
		schema["default"] = def.Text
	default:
		return nil, fmt.Errorf("openapi: option %q has unsupported kind %s", d.ID, d.Kind)
	}
	if d.ConfirmOn {
		schema["x-confirm"] = true
	}
	if d.RestartOnChange || d.RebootPrompt != "" {
		schema["x-restart"] = true
	}
	return schema, nil
}

func intLabels(labels map[int]string) map[string]string {
	out := make(map[string]string, len(labels))
	for value, label := range labels {
		out[fmt.Sprint(value)] = label
	}
	return out
}

func groups(catalog *settings.Catalog) []map[string]any {
	out := make([]map[string]any, 0, len(catalog.Groups()))
	for _, name := range catalog.Groups() {
		members := catalog.Group(name)
		ids := make([]string, len(members))
		for i, d := range members {
			ids[i] = d.ID
		}
		out = append(out, map[string]any{"name": name, "options": ids})
	}
	return out
}

// dependencies maps each rule target to the sorted union of its triggers.
// Rules are bound first so expression triggers are known.
func dependencies(catalog *settings.Catalog, rules *settings.RuleSet) (map[string][]string, error) {
	if rules == nil {
		return nil, nil
	}
	evaluator := settings.NewExprEvaluator()
	sets := map[string]map[string]struct{}{}
	for _, rule := range rules.Rules() {
		bound, err := rule.Bind(catalog, evaluator)
		if err != nil {
			return nil, fmt.Errorf("openapi: %w", err)
		}
		for _, target := range bound.Targets() {
			for _, trigger := range bound.Triggers() {
				if trigger == target {
					continue
				}
				if sets[target] == nil {
					sets[target] = map[string]struct{}{}
				}
				sets[target][trigger] = struct{}{}
			}
		}
	}
	out := make(map[string][]string, len(sets))
	for id, set := range sets {
		deps := make([]string, 0, len(set))
		for dep := range set {
			deps = append(deps, dep)
		}
		sort.Strings(deps)
		out[id] = deps
	}
	return out, nil
}
