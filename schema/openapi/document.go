package openapi

import (
	"fmt"
	"sort"
	"strings"

	settings "github.com/goliatone/go-settings"
)

const refPrefix = "#/components/schemas/"

// documentBuilder lays out the settings API around the catalog schema: read
// and patch the stored values, read the projection, settle confirmations.
type documentBuilder struct {
	config generatorConfig
	values map[string]any
}

func newDocumentBuilder(config generatorConfig, values map[string]any) *documentBuilder {
	return &documentBuilder{config: config, values: values}
}

func (b *documentBuilder) build() (map[string]any, error) {
	if b.values == nil {
		return nil, fmt.Errorf("openapi: settings schema cannot be nil")
	}
	info := map[string]any{
		"title":   b.config.title,
		"version": b.config.version,
	}
	if b.config.description != "" {
		info["description"] = b.config.description
	}
	document := map[string]any{
		"openapi": b.config.openAPIVersion,
		"info":    info,
		"paths":   b.paths(),
		"components": map[string]any{
			"schemas": b.schemas(),
		},
	}
	if err := validateDocument(document); err != nil {
		return nil, err
	}
	return document, nil
}

func (b *documentBuilder) paths() map[string]any {
	base := b.config.basePath
	paths := map[string]any{
		base: map[string]any{
			"get": map[string]any{
				"operationId": "getSettings",
				"summary":     "Stored values with defaults applied",
				"responses": map[string]any{
					"200": b.response("Current values", "Settings"),
				},
			},
			"patch": map[string]any{
				"operationId": "patchSettings",
				"summary":     "Change options and re-resolve",
				"requestBody": map[string]any{
					"required": true,
					"content":  b.content("Settings"),
				},
				"responses": map[string]any{
					"200": b.response("Settled projection", "Projection"),
					"409": b.response("Option hidden, disabled or locked", "Problem"),
					"422": b.response("Value outside the option's domain", "Problem"),
				},
			},
		},
		base + "/projection": map[string]any{
			"get": map[string]any{
				"operationId": "getProjection",
				"responses": map[string]any{
					"200": b.response("Visibility, enabled state and effective value of every option", "Projection"),
					"409": b.response("Projection is stale", "Problem"),
				},
			},
		},
	}
	if b.config.confirmations {
		paths[base+"/confirmations/{token}"] = map[string]any{
			"post": map[string]any{
				"operationId": "settleConfirmation",
				"parameters": []map[string]any{{
					"name":     "token",
					"in":       "path",
					"required": true,
					"schema":   map[string]any{"type": "string", "format": "uuid"},
				}},
				"requestBody": map[string]any{
					"required": true,
					"content":  b.content("Confirmation"),
				},
				"responses": map[string]any{
					"204": map[string]any{"description": "Confirmation settled"},
					"404": b.response("Unknown confirmation", "Problem"),
				},
			},
		}
	}
	return paths
}

func (b *documentBuilder) schemas() map[string]any {
	schemas := map[string]any{
		"Settings": b.values,
		"Entry": map[string]any{
			"type":     "object",
			"required": []string{"id", "visible", "enabled", "value", "source"},
			"properties": map[string]any{
				"id":      map[string]any{"type": "string"},
				"visible": map[string]any{"type": "boolean"},
				"enabled": map[string]any{"type": "boolean"},
				"value":   map[string]any{"description": "Native value: boolean, integer or string"},
				"display": map[string]any{"type": "string"},
				"source": map[string]any{
					"type": "string",
					"enum": []string{
						string(settings.SourceDefault),
						string(settings.SourceStored),
						string(settings.SourceCoerced),
						string(settings.SourceForced),
					},
				},
				"reason": map[string]any{"type": "string"},
				"locked": map[string]any{"type": "boolean"},
			},
		},
		"Projection": map[string]any{
			"type":     "object",
			"required": []string{"generation", "entries"},
			"properties": map[string]any{
				"generation": map[string]any{"type": "integer", "minimum": 0},
				"entries": map[string]any{
					"type":  "array",
					"items": map[string]any{"$ref": refPrefix + "Entry"},
				},
			},
		},
		"Problem": map[string]any{
			"type":     "object",
			"required": []string{"error"},
			"properties": map[string]any{
				"option": map[string]any{"type": "string"},
				"error":  map[string]any{"type": "string"},
			},
		},
	}
	if b.config.confirmations {
		schemas["Confirmation"] = map[string]any{
			"type":       "object",
			"required":   []string{"accepted"},
			"properties": map[string]any{"accepted": map[string]any{"type": "boolean"}},
		}
	}
	return schemas
}

func (b *documentBuilder) content(schema string) map[string]any {
	return map[string]any{
		b.config.contentType: map[string]any{
			"schema": map[string]any{"$ref": refPrefix + schema},
		},
	}
}

func (b *documentBuilder) response(description, schema string) map[string]any {
	return map[string]any{
		"description": description,
		"content":     b.content(schema),
	}
}

// validateDocument checks the required sections and that every $ref names a
// declared component schema.
func validateDocument(document map[string]any) error {
	if v, _ := document["openapi"].(string); v == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	if len(paths) == 0 {
		return fmt.Errorf("openapi: document must define at least one path")
	}
	components, _ := document["components"].(map[string]any)
	schemas, _ := components["schemas"].(map[string]any)

	var refs []string
	collectRefs(document, &refs)
	sort.Strings(refs)
	for _, ref := range refs {
		name, ok := strings.CutPrefix(ref, refPrefix)
		if !ok {
			return fmt.Errorf("openapi: unsupported reference %q", ref)
		}
		if _, ok := schemas[name]; !ok {
			return fmt.Errorf("openapi: reference %q has no schema", ref)
		}
	}
	return nil
}

func collectRefs(node any, refs *[]string) {
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			if ref, ok := child.(string); ok && key == "$ref" {
				*refs = append(*refs, ref)
				continue
			}
			collectRefs(child, refs)
		}
	case []map[string]any:
		for _, child := range v {
			collectRefs(child, refs)
		}
	case []any:
		for _, child := range v {
			collectRefs(child, refs)
		}
	}
}
