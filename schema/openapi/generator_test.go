package openapi

import (
	"encoding/json"
	"slices"
	"testing"

	settings "github.com/goliatone/go-settings"
	"github.com/goliatone/go-settings/pkg/builtin"
)

func TestNewGeneratorOptions(t *testing.T) {
	g := NewGenerator(
		WithOpenAPIVersion("3.1.0"),
		WithInfo("Vehicle Settings", "2.0.0", WithInfoDescription("driver assistance options")),
		WithBasePath("vehicle/settings/"),
		WithContentType("application/merge-patch+json"),
		WithoutConfirmations(),
	)
	cfg := g.config
	if cfg.openAPIVersion != "3.1.0" || cfg.title != "Vehicle Settings" || cfg.version != "2.0.0" {
		t.Fatalf("unexpected info config %+v", cfg)
	}
	if cfg.description != "driver assistance options" {
		t.Fatalf("expected description, got %q", cfg.description)
	}
	if cfg.basePath != "/vehicle/settings" {
		t.Fatalf("expected normalized base path, got %q", cfg.basePath)
	}
	if cfg.contentType != "application/merge-patch+json" || cfg.confirmations {
		t.Fatalf("unexpected body config %+v", cfg)
	}

	kept := NewGenerator(WithInfo("", ""), WithBasePath("  "), WithContentType("")).config
	if kept.title != "Settings Catalog" || kept.basePath != "/settings" || kept.contentType != "application/json" {
		t.Fatalf("expected defaults kept, got %+v", kept)
	}
}

func TestGenerateLaysOutSettingsEndpoints(t *testing.T) {
	catalog := settings.MustCatalog(settings.Descriptor{ID: "A", Kind: settings.KindBool})

	doc, err := NewGenerator(WithBasePath("/v1/settings")).Generate(catalog)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	paths := doc["paths"].(map[string]any)
	for _, path := range []string{"/v1/settings", "/v1/settings/projection", "/v1/settings/confirmations/{token}"} {
		if _, ok := paths[path]; !ok {
			t.Fatalf("expected path %s, got %v", path, paths)
		}
	}
	patch := paths["/v1/settings"].(map[string]any)["patch"].(map[string]any)
	responses := patch["responses"].(map[string]any)
	for _, status := range []string{"200", "409", "422"} {
		if _, ok := responses[status]; !ok {
			t.Fatalf("expected %s response on patch", status)
		}
	}
	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	entry := schemas["Entry"].(map[string]any)["properties"].(map[string]any)
	source := entry["source"].(map[string]any)["enum"].([]string)
	if !slices.Equal(source, []string{"default", "stored", "coerced", "forced"}) {
		t.Fatalf("unexpected source enum %v", source)
	}

	doc, err = NewGenerator(WithoutConfirmations()).Generate(catalog)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, ok := doc["paths"].(map[string]any)["/settings/confirmations/{token}"]; ok {
		t.Fatalf("expected confirmation endpoint omitted")
	}
	if _, ok := doc["components"].(map[string]any)["schemas"].(map[string]any)["Confirmation"]; ok {
		t.Fatalf("expected confirmation schema omitted")
	}
}

func TestValidateDocumentRejectsDanglingReferences(t *testing.T) {
	document := map[string]any{
		"openapi": "3.0.3",
		"info":    map[string]any{"title": "t", "version": "1"},
		"paths": map[string]any{
			"/settings": map[string]any{
				"get": map[string]any{"responses": map[string]any{
					"200": map[string]any{"content": map[string]any{
						"application/json": map[string]any{"schema": map[string]any{"$ref": refPrefix + "Missing"}},
					}},
				}},
			},
		},
		"components": map[string]any{"schemas": map[string]any{}},
	}
	if err := validateDocument(document); err == nil {
		t.Fatalf("expected dangling reference error")
	}
	document["components"] = map[string]any{"schemas": map[string]any{"Missing": map[string]any{}}}
	if err := validateDocument(document); err != nil {
		t.Fatalf("validate: %v", err)
	}
	delete(document, "paths")
	if err := validateDocument(document); err == nil {
		t.Fatalf("expected error without paths")
	}
}

func TestGenerateBuiltinCatalog(t *testing.T) {
	catalog, err := builtin.NewCatalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	doc, err := NewGenerator(WithRules(builtin.Rules())).Generate(catalog)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := json.Marshal(doc); err != nil {
		t.Fatalf("document must encode as JSON: %v", err)
	}

	paths := doc["paths"].(map[string]any)
	operation := paths["/settings"].(map[string]any)["patch"].(map[string]any)
	if operation["operationId"] != "patchSettings" {
		t.Fatalf("unexpected operation %+v", operation)
	}

	root := doc["components"].(map[string]any)["schemas"].(map[string]any)["Settings"].(map[string]any)
	properties := root["properties"].(map[string]any)
	if len(properties) != catalog.Len() {
		t.Fatalf("expected %d properties, got %d", catalog.Len(), len(properties))
	}

	maxLat := properties[builtin.TorqueMaxLatAccel].(map[string]any)
	if maxLat["type"] != "integer" || maxLat["minimum"] != 1 || maxLat["maximum"] != 500 || maxLat["x-scale"] != 100 {
		t.Fatalf("unexpected range schema %+v", maxLat)
	}
	if maxLat["default"] != 250 {
		t.Fatalf("expected default 250, got %v", maxLat["default"])
	}
	if deps := maxLat["x-depends-on"].([]string); !slices.Equal(deps, []string{builtin.CustomTorqueLateral}) {
		t.Fatalf("unexpected dependencies %v", deps)
	}

	brightness := properties[builtin.BrightnessControl].(map[string]any)
	if brightness["multipleOf"] != 5 {
		t.Fatalf("expected step 5, got %v", brightness["multipleOf"])
	}

	profile := properties[builtin.DynamicLaneProfile].(map[string]any)
	if !slices.Equal(profile["enum"].([]int), []int{0, 1, 2}) {
		t.Fatalf("unexpected enum %v", profile["enum"])
	}

	mads := properties[builtin.EnableMads].(map[string]any)
	if mads["type"] != "boolean" || mads["default"] != false || mads["x-confirm"] != true {
		t.Fatalf("unexpected toggle schema %+v", mads)
	}

	valueOffset := properties[builtin.SpeedLimitValueOffset].(map[string]any)
	deps := valueOffset["x-depends-on"].([]string)
	if !slices.Equal(deps, []string{builtin.SpeedLimitOffsetType, builtin.SpeedLimitPercOffset}) {
		t.Fatalf("expected expression and cascade triggers, got %v", deps)
	}

	car := properties[builtin.CarModel].(map[string]any)
	if car["type"] != "string" {
		t.Fatalf("expected string schema for car model, got %v", car["type"])
	}

	groups := root["x-groups"].([]map[string]any)
	if len(groups) != 4 || groups[0]["name"] != builtin.GroupGeneral {
		t.Fatalf("unexpected groups %+v", groups)
	}
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	if _, err := NewGenerator().Generate(nil); err == nil {
		t.Fatalf("expected error for nil catalog")
	}
	catalog := settings.MustCatalog(settings.Descriptor{ID: "A", Kind: settings.KindBool})
	rules := settings.NewRuleSet(settings.Cascade("A", "Missing"))
	if _, err := NewGenerator(WithRules(rules)).Generate(catalog); err == nil {
		t.Fatalf("expected error for rules outside the catalog")
	}
}
