// Package config loads boardsync settings from flags, BOARDSYNC_* env vars
// and an optional boardsync.yaml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var v *viper.Viper

var envReplacer = strings.NewReplacer(".", "_", "-", "_")

// Initialize sets up viper with defaults, env bindings and the config file
// found in the working directory or $HOME/.config/boardsync.
func Initialize() error {
	return InitializeWithFile("")
}

// InitializeWithFile is Initialize with an explicit config file. An empty
// path searches the default locations; a missing default file is fine, a
// missing explicit file is not.
func InitializeWithFile(path string) error {
	v = viper.New()
	v.SetEnvPrefix("BOARDSYNC")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	for _, k := range Keys {
		if k.Default != "" {
			v.SetDefault(k.Key, k.Default)
		}
		if len(k.EnvVars) > 0 {
			if err := v.BindEnv(append([]string{k.Key}, EnvVarsFor(k.Key)...)...); err != nil {
				return fmt.Errorf("failed to bind env for %s: %w", k.Key, err)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("boardsync")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "boardsync"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// ConfigFileUsed returns the config file that was read, if any.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// BindFlag makes a command-line flag override key when it is set.
func BindFlag(key string, flag *pflag.Flag) error {
	if v == nil || flag == nil {
		return nil
	}
	return v.BindPFlag(key, flag)
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt retrieves an integer configuration value
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetFloat64 retrieves a float configuration value
func GetFloat64(key string) float64 {
	if v == nil {
		return 0
	}
	return v.GetFloat64(key)
}

// GetDuration retrieves a duration configuration value
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set sets a configuration value
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// Entry is a key with its effective value, for listing.
type Entry struct {
	Key    string
	Value  string
	Secret bool
}

// Entries returns every known key with its effective value. Secret values
// are masked.
func Entries() []Entry {
	entries := make([]Entry, 0, len(Keys))
	for _, k := range Keys {
		val := GetString(k.Key)
		if k.Secret && val != "" {
			val = "********"
		}
		entries = append(entries, Entry{Key: k.Key, Value: val, Secret: k.Secret})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// GitHubSettings are the GitHub connection settings.
type GitHubSettings struct {
	Token             string
	Owner             string
	Repo              string
	APIURL            string
	GraphQLURL        string
	RequestsPerSecond float64
}

// WebhookSettings configure `boardsync serve`.
type WebhookSettings struct {
	Addr      string
	Secret    string
	QueueSize int
}

// Settings is the validated configuration for one command invocation.
type Settings struct {
	GitHub            GitHubSettings
	SchemaPath        string
	DryRun            bool
	StripBody         bool
	LogLevel          string
	LogFormat         string
	Webhook           WebhookSettings
	ResyncConcurrency int
	ResyncSince       string
}

// Load validates every key and returns the effective settings.
func Load() (*Settings, error) {
	var problems []string
	for _, k := range Keys {
		if err := ValidateKey(k.Key, GetString(k.Key)); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration:\n  %s", strings.Join(problems, "\n  "))
	}

	s := &Settings{
		GitHub: GitHubSettings{
			Token:             GetString("github.token"),
			Owner:             GetString("github.owner"),
			Repo:              GetString("github.repo"),
			APIURL:            GetString("github.api-url"),
			GraphQLURL:        GetString("github.graphql-url"),
			RequestsPerSecond: GetFloat64("github.requests-per-second"),
		},
		SchemaPath: GetString("schema"),
		DryRun:     GetBool("dry-run"),
		StripBody:  GetBool("strip-body"),
		LogLevel:   GetString("log.level"),
		LogFormat:  GetString("log.format"),
		Webhook: WebhookSettings{
			Addr:      GetString("webhook.addr"),
			Secret:    GetString("webhook.secret"),
			QueueSize: GetInt("webhook.queue-size"),
		},
		ResyncConcurrency: GetInt("resync.concurrency"),
		ResyncSince:       GetString("resync.since"),
	}

	if full := GetString("github.repository"); full != "" {
		owner, repo, _ := strings.Cut(full, "/")
		if s.GitHub.Owner == "" {
			s.GitHub.Owner = owner
		}
		if s.GitHub.Repo == "" {
			s.GitHub.Repo = repo
		}
	}
	return s, nil
}

// RequireGitHub reports which GitHub settings a remote command is missing.
func (s *Settings) RequireGitHub() error {
	var missing []string
	if s.GitHub.Token == "" {
		missing = append(missing, "github.token (GITHUB_TOKEN)")
	}
	if s.GitHub.Owner == "" || s.GitHub.Repo == "" {
		missing = append(missing, "github.repository (GITHUB_REPOSITORY) or github.owner and github.repo")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
