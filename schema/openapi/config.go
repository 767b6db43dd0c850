package openapi

import (
	"strings"

	settings "github.com/goliatone/go-settings"
)

type generatorConfig struct {
	openAPIVersion string
	title          string
	version        string
	description    string
	basePath       string
	contentType    string
	confirmations  bool
	rules          *settings.RuleSet
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		openAPIVersion: "3.0.3",
		title:          "Settings Catalog",
		version:        "1.0.0",
		basePath:       "/settings",
		contentType:    "application/json",
		confirmations:  true,
	}
}

// GeneratorOption configures the OpenAPI generator.
type GeneratorOption func(*generatorConfig)

// WithOpenAPIVersion overrides the OpenAPI version string (default: 3.0.3).
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if version != "" {
			cfg.openAPIVersion = version
		}
	}
}

// InfoOption configures optional fields on the info section.
type InfoOption func(*generatorConfig)

// WithInfoDescription sets the info description.
func WithInfoDescription(description string) InfoOption {
	return func(cfg *generatorConfig) {
		cfg.description = description
	}
}

// WithInfo sets the document title and version. Empty strings keep the
// defaults.
func WithInfo(title, version string, opts ...InfoOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.title = title
		}
		if version != "" {
			cfg.version = version
		}
		for _, opt := range opts {
			if opt != nil {
				opt(cfg)
			}
		}
	}
}

// WithBasePath mounts the settings endpoints under path (default: /settings).
func WithBasePath(path string) GeneratorOption {
	return func(cfg *generatorConfig) {
		path = strings.TrimRight(strings.TrimSpace(path), "/")
		if path == "" {
			return
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		cfg.basePath = path
	}
}

// WithContentType sets the media type of request and response bodies.
func WithContentType(contentType string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if contentType != "" {
			cfg.contentType = contentType
		}
	}
}

// WithoutConfirmations omits the confirmation endpoint for hosts that confirm
// locally.
func WithoutConfirmations() GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.confirmations = false
	}
}

// WithRules annotates each option with the options its visibility and value
// depend on.
func WithRules(rules *settings.RuleSet) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.rules = rules
	}
}
