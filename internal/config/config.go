package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rpggio/statusboard/internal/domain/project"
	"gopkg.in/yaml.v3"
)

// Transport modes.
const (
	ModeHTTP  = "http"
	ModeStdio = "stdio"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig                `yaml:"server"`
	DB        DBConfig                    `yaml:"db"`
	Log       LogConfig                   `yaml:"log"`
	Transport TransportConfig             `yaml:"transport"`
	Session   SessionConfig               `yaml:"session"`
	Ingest    IngestConfig                `yaml:"ingest"`
	Fetch     FetchConfig                 `yaml:"fetch"`
	Sources   []SourceConfig              `yaml:"sources"`
	Details   map[string]RepositoryConfig `yaml:"details"`
	Aliases   map[string]string           `yaml:"aliases"`
}

type ServerConfig struct {
	Host string `yaml:"host" env:"STATUSBOARD_SERVER_HOST"`
	Port int    `yaml:"port" env:"STATUSBOARD_SERVER_PORT"`
	// Token, when set, is required as a bearer token by the HTTP API.
	Token string `yaml:"token" env:"STATUSBOARD_API_TOKEN"`
}

type DBConfig struct {
	Path string `yaml:"path" env:"STATUSBOARD_DB_PATH"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"STATUSBOARD_LOG_LEVEL"`
	Path  string `yaml:"path" env:"STATUSBOARD_LOG_PATH"`
}

type TransportConfig struct {
	Mode string `yaml:"mode" env:"STATUSBOARD_TRANSPORT"`
}

type SessionConfig struct {
	ID string `yaml:"id" env:"STATUSBOARD_SESSION_ID"`
}

type IngestConfig struct {
	RawBaseURL  string   `yaml:"raw_base_url" env:"STATUSBOARD_RAW_BASE_URL"`
	CatalogURL  string   `yaml:"catalog_url" env:"STATUSBOARD_CATALOG_URL"`
	Concurrency int      `yaml:"concurrency" env:"STATUSBOARD_INGEST_CONCURRENCY"`
	Candidates  []string `yaml:"candidates" env:"STATUSBOARD_DETAIL_CANDIDATES" envSeparator:","`
}

type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"STATUSBOARD_FETCH_TIMEOUT"`
}

// RepositoryConfig names a repository and the document inside it.
type RepositoryConfig struct {
	Owner  string `yaml:"owner"`
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
	Path   string `yaml:"path"`
}

// SourceConfig is a repository ingested at startup.
type SourceConfig struct {
	Name             string `yaml:"name"`
	RepositoryConfig `yaml:",inline"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "statusboard.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: ModeHTTP,
		},
		Session: SessionConfig{
			ID: "default",
		},
		Ingest: IngestConfig{
			RawBaseURL:  project.DefaultRawBaseURL,
			Concurrency: project.DefaultConcurrency,
			Candidates:  append([]string(nil), project.DefaultCandidates...),
		},
		Fetch: FetchConfig{
			Timeout: 15 * time.Second,
		},
		Sources: []SourceConfig{
			{Name: "DIYapp", RepositoryConfig: RepositoryConfig{Owner: "Anickzs", Repo: "DIYapp", Branch: "main", Path: "ProjectDetails.md"}},
			{Name: "BusinessLoclAi", RepositoryConfig: RepositoryConfig{Owner: "Anickzs", Repo: "BusinessLoclAi", Branch: "main", Path: "ProjectDetails.md"}},
		},
		Details: map[string]RepositoryConfig{
			"at-home-diy-project-statistics-status": {Owner: "Anickzs", Repo: "DIYapp", Branch: "main"},
			"businesslocalai-project-details":       {Owner: "Anickzs", Repo: "BusinessLoclAi", Branch: "main"},
		},
		Aliases: project.DefaultCommonAliases(),
	}
}

// Load reads configuration from an optional YAML file and environment variables.
// An explicit path wins over STATUSBOARD_CONFIG_PATH.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("STATUSBOARD_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Validate reports every configuration problem found.
func (c Config) Validate() error {
	var errs []error

	switch c.Transport.Mode {
	case ModeHTTP, ModeStdio:
	default:
		errs = append(errs, fmt.Errorf("transport.mode: unknown mode %q", c.Transport.Mode))
	}
	if c.Ingest.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("ingest.concurrency: must be positive, got %d", c.Ingest.Concurrency))
	}
	if c.Transport.Mode == ModeHTTP && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		errs = append(errs, fmt.Errorf("server.port: out of range: %d", c.Server.Port))
	}
	if strings.TrimSpace(c.Session.ID) == "" {
		errs = append(errs, errors.New("session.id: required"))
	}
	for i, src := range c.Sources {
		if src.Owner == "" || src.Repo == "" {
			errs = append(errs, fmt.Errorf("sources[%d]: owner and repo are required", i))
		}
	}
	for id, d := range c.Details {
		if d.Owner == "" || d.Repo == "" {
			errs = append(errs, fmt.Errorf("details[%s]: owner and repo are required", id))
		}
	}

	return errors.Join(errs...)
}

// ProjectOptions converts the ingestion settings for project.NewService.
func (c Config) ProjectOptions() project.Options {
	opts := project.Options{
		Sources:       make([]project.Source, 0, len(c.Sources)),
		Details:       make(map[string]project.Descriptor, len(c.Details)),
		CommonAliases: make(map[string]string, len(c.Aliases)),
		Candidates:    append([]string(nil), c.Ingest.Candidates...),
		RawBaseURL:    c.Ingest.RawBaseURL,
		CatalogURL:    c.Ingest.CatalogURL,
		Concurrency:   c.Ingest.Concurrency,
		SessionID:     c.Session.ID,
	}
	for _, src := range c.Sources {
		name := src.Name
		if name == "" {
			name = src.Repo
		}
		opts.Sources = append(opts.Sources, project.Source{Name: name, Descriptor: src.descriptor()})
	}
	for id, d := range c.Details {
		opts.Details[id] = d.descriptor()
	}
	for alias, id := range c.Aliases {
		opts.CommonAliases[alias] = id
	}
	return opts
}

func (r RepositoryConfig) descriptor() project.Descriptor {
	return project.Descriptor{Owner: r.Owner, Repo: r.Repo, Branch: r.Branch, Path: r.Path}
}
