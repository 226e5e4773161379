package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/ledgr/internal/notion"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Content sources.
const (
	SourceNotion = "notion"
	SourceExport = "export"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Notion  NotionConfig      `yaml:"notion"`
	Content ContentConfig     `yaml:"content"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if c.Content.Source == SourceNotion {
		if err := c.Notion.Validate(); err != nil {
			return fmt.Errorf("notion: %w", err)
		}
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// NotionConfig holds the document-store connection. The client built from
// it is created once at startup and never changed.
type NotionConfig struct {
	APIKey          string        `yaml:"api_key"`
	DatabaseID      string        `yaml:"database_id"`
	Version         string        `yaml:"version"`
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	StatusProperty  string        `yaml:"status_property"`
	StatusPublished string        `yaml:"status_published"`
}

// Validate validates the document-store configuration.
func (c *NotionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIKey, validation.Required),
		validation.Field(&c.DatabaseID, validation.Required),
		validation.Field(&c.BaseURL, is.URL),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// Options converts the section into client options.
func (c *NotionConfig) Options() notion.Options {
	return notion.Options{
		APIKey:          c.APIKey,
		DatabaseID:      c.DatabaseID,
		Version:         c.Version,
		BaseURL:         c.BaseURL,
		Timeout:         c.Timeout,
		StatusProperty:  c.StatusProperty,
		StatusPublished: c.StatusPublished,
	}
}

// ContentConfig selects where articles come from and how long the list
// snapshot stays fresh.
//
// Source is "notion" (live API) or "export" (a local directory of exported
// pages, watched for changes).
type ContentConfig struct {
	Source     string        `yaml:"source"`
	ExportDir  string        `yaml:"export_dir"`
	Revalidate time.Duration `yaml:"revalidate"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	if c.Source == "" {
		c.Source = SourceNotion
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Source, validation.Required, validation.In(SourceNotion, SourceExport)),
		validation.Field(&c.ExportDir, validation.When(c.Source == SourceExport, validation.Required)),
		validation.Field(&c.Revalidate, validation.Min(time.Duration(0))),
	)
}

// AuthConfig holds authentication configuration for admin routes.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Notion: NotionConfig{
			Version:         notion.DefaultVersion,
			BaseURL:         notion.DefaultBaseURL,
			Timeout:         15 * time.Second,
			StatusProperty:  "Status",
			StatusPublished: "발행하기",
		},
		Content: ContentConfig{
			Source:     SourceNotion,
			ExportDir:  "./export",
			Revalidate: 60 * time.Second,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
