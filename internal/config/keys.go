package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Key describes a configuration key.
type Key struct {
	Key         string   // Full key name (e.g., "github.token")
	Description string   // Human-readable description
	EnvVars     []string // Extra env vars read after BOARDSYNC_<KEY>, in order
	Secret      bool     // Masked when listed
	Default     string   // Default value (empty = no default)
	Validate    func(string) error
}

// Keys defines every configuration key boardsync reads.
var Keys = []Key{
	// GitHub
	{
		Key:         "github.token",
		Description: "GitHub token with repo and project scopes",
		EnvVars:     []string{"GITHUB_TOKEN", "GH_TOKEN"},
		Secret:      true,
	},
	{
		Key:         "github.repository",
		Description: "Repository as owner/name (set by GitHub Actions)",
		EnvVars:     []string{"GITHUB_REPOSITORY"},
		Validate:    validateRepository,
	},
	{
		Key:         "github.owner",
		Description: "Repository owner (overrides github.repository)",
	},
	{
		Key:         "github.repo",
		Description: "Repository name (overrides github.repository)",
	},
	{
		Key:         "github.api-url",
		Description: "REST API base URL",
		EnvVars:     []string{"GITHUB_API_URL"},
		Default:     "https://api.github.com",
	},
	{
		Key:         "github.graphql-url",
		Description: "GraphQL endpoint",
		EnvVars:     []string{"GITHUB_GRAPHQL_URL"},
		Default:     "https://api.github.com/graphql",
	},
	{
		Key:         "github.requests-per-second",
		Description: "Client-side request rate limit (0 disables)",
		Default:     "0",
		Validate:    validateNonNegativeFloat,
	},
	// Board
	{
		Key:         "schema",
		Description: "Board schema file (.yaml, .yml or .toml); empty uses the built-in board",
	},
	{
		Key:         "dry-run",
		Description: "Log writes instead of sending them",
		Default:     "false",
		Validate:    validateBool,
	},
	{
		Key:         "strip-body",
		Description: "Remove form sections from initiative bodies after syncing",
		Default:     "true",
		Validate:    validateBool,
	},
	// Logging
	{
		Key:         "log.level",
		Description: "Log level (debug, info, warn, error)",
		Default:     "info",
		Validate:    validateLogLevel,
	},
	{
		Key:         "log.format",
		Description: "Log format (text, json)",
		Default:     "text",
		Validate:    validateLogFormat,
	},
	// Webhook
	{
		Key:         "webhook.addr",
		Description: "Webhook server listen address",
		Default:     ":8080",
	},
	{
		Key:         "webhook.secret",
		Description: "Webhook HMAC secret",
		EnvVars:     []string{"GITHUB_WEBHOOK_SECRET"},
		Secret:      true,
	},
	{
		Key:         "webhook.queue-size",
		Description: "Events buffered before the server answers 503",
		Default:     "64",
		Validate:    validatePositiveInt,
	},
	// Resync
	{
		Key:         "resync.concurrency",
		Description: "Issues processed at once by resync",
		Default:     "4",
		Validate:    validatePositiveInt,
	},
	{
		Key:         "resync.since",
		Description: "Default --since for resync (24h, 7d, yesterday, 2006-01-02 or RFC3339)",
		Default:     "24h",
	},
}

// keyMap is a lookup table built from Keys.
var keyMap map[string]*Key

func init() {
	keyMap = make(map[string]*Key, len(Keys))
	for i := range Keys {
		keyMap[Keys[i].Key] = &Keys[i]
	}
}

// LookupKey returns the Key definition, or nil if key is unknown.
func LookupKey(key string) *Key {
	return keyMap[key]
}

// ValidateKey checks whether a key is known and the value is valid.
func ValidateKey(key, value string) error {
	k := keyMap[key]
	if k == nil {
		known := make([]string, 0, len(Keys))
		for _, k := range Keys {
			known = append(known, k.Key)
		}
		return fmt.Errorf("unknown key %q; valid keys: %s", key, strings.Join(known, ", "))
	}
	if k.Validate != nil && value != "" {
		if err := k.Validate(value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
	}
	return nil
}

// EnvVarsFor returns every env var read for key, the BOARDSYNC_ one first.
func EnvVarsFor(key string) []string {
	name := "BOARDSYNC_" + strings.ToUpper(envReplacer.Replace(key))
	vars := []string{name}
	if k := keyMap[key]; k != nil {
		vars = append(vars, k.EnvVars...)
	}
	return vars
}

// Validation helpers

func validateLogLevel(value string) error {
	switch strings.ToLower(value) {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("must be one of: debug, info, warn, error; got %q", value)
	}
}

func validateLogFormat(value string) error {
	switch strings.ToLower(value) {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("must be text or json, got %q", value)
	}
}

func validateBool(value string) error {
	switch strings.ToLower(value) {
	case "true", "false", "1", "0", "yes", "no":
		return nil
	default:
		return fmt.Errorf("must be true or false, got %q", value)
	}
}

func validatePositiveInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("must be a number, got %q", value)
	}
	if n < 1 {
		return fmt.Errorf("must be at least 1, got %d", n)
	}
	return nil
}

func validateNonNegativeFloat(value string) error {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("must be a number, got %q", value)
	}
	if f < 0 {
		return fmt.Errorf("must not be negative, got %v", f)
	}
	return nil
}

func validateRepository(value string) error {
	owner, repo, ok := strings.Cut(value, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return fmt.Errorf("must be owner/name, got %q", value)
	}
	return nil
}
