package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"querychat/internal/models"
	"querychat/internal/summary"
)

const (
	defaultServerAddress  = ":8090"
	defaultBackendAddress = ":8000"
	defaultBackendURL     = "http://127.0.0.1:8000/ask"
	defaultPersistenceKey = "chat_history"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig  BasicConfig               `json:"basic_config"`
	Backend      BackendConfig             `json:"backend"`
	Channels     []ChannelConfig           `json:"channels"`
	Persistence  PersistenceConfig         `json:"persistence"`
	Databases    map[string]DatabaseConfig `json:"databases"`
	Redis        RedisConfig               `json:"redis"`
	Providers    map[string]ProviderConfig `json:"providers"`
	SQLGenerator SQLGeneratorConfig        `json:"sql_generator"`
}

type BasicConfig struct {
	ServerAddress  string `json:"server_address"`
	BackendAddress string `json:"backend_address"`
	LogLevel       string `json:"log_level"`
	LogFormat      string `json:"log_format"`
	QueueSize      int    `json:"queue_size"`
	NodeID         int64  `json:"node_id"`
}

// BackendConfig points the chat engine at the query service.
type BackendConfig struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type ChannelConfig struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Domain      string `json:"domain"`
}

// PersistenceConfig selects where chat history snapshots go. Driver is
// empty (in-memory only), a key of Databases, or "redis".
type PersistenceConfig struct {
	Driver string `json:"driver"`
	Key    string `json:"key"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"dbname"`
	Params   string `json:"params"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

// SQLGeneratorConfig selects the chat model used by the ask service and
// the database it queries.
type SQLGeneratorConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Database string `json:"database"`
}

var providerKeyEnv = map[string]string{
	"openai": "OPENAI_API_KEY",
	"claude": "ANTHROPIC_API_KEY",
	"gemini": "GEMINI_API_KEY",
}

// Load reads configuration from the provided path (defaults to config.json).
// A .env file next to the working directory is loaded first; it never
// overrides variables that are already set.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}
	_ = godotenv.Load()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	for name, db := range cfg.Databases {
		if isSQLite(name) && db.DSN != "" && db.DSN != ":memory:" && !filepath.IsAbs(db.DSN) && !strings.HasPrefix(db.DSN, "file:") {
			db.DSN = filepath.Join(filepath.Dir(absPath), db.DSN)
			cfg.Databases[name] = db
		}
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if url := os.Getenv("QUERYCHAT_BACKEND_URL"); url != "" {
		c.Backend.URL = url
	}
	for name, env := range providerKeyEnv {
		key := os.Getenv(env)
		if key == "" {
			continue
		}
		if c.Providers == nil {
			c.Providers = make(map[string]ProviderConfig)
		}
		p := c.Providers[name]
		if p.APIKey == "" {
			p.APIKey = key
			c.Providers[name] = p
		}
	}
}

func (c *Config) applyDefaults() {
	if c.BasicConfig.ServerAddress == "" {
		c.BasicConfig.ServerAddress = defaultServerAddress
	}
	if c.BasicConfig.BackendAddress == "" {
		c.BasicConfig.BackendAddress = defaultBackendAddress
	}
	if c.BasicConfig.LogLevel == "" {
		c.BasicConfig.LogLevel = "info"
	}
	if c.Backend.URL == "" {
		c.Backend.URL = defaultBackendURL
	}
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = 30
	}
	if len(c.Channels) == 0 {
		c.Channels = DefaultChannels()
	}
	if c.Persistence.Key == "" {
		c.Persistence.Key = defaultPersistenceKey
	}
	if c.SQLGenerator.Provider == "" {
		c.SQLGenerator.Provider = "openai"
	}
	if c.SQLGenerator.Database == "" {
		c.SQLGenerator.Database = "sqlite3"
	}
}

func (c *Config) validate() error {
	if c.BasicConfig.NodeID < 0 || c.BasicConfig.NodeID > 1023 {
		return fmt.Errorf("node_id must be between 0 and 1023, got %d", c.BasicConfig.NodeID)
	}
	for _, ch := range c.Channels {
		if _, ok := summary.ParseDomain(ch.Domain); !ok && ch.Domain != "" {
			log.Warn().Str("channel", ch.ID).Str("domain", ch.Domain).Msg("unknown channel domain, using generic")
		}
	}
	switch driver := c.Persistence.Driver; {
	case driver == "", driver == "redis":
	default:
		if _, ok := c.Databases[driver]; !ok {
			return fmt.Errorf("persistence driver %s has no database config", driver)
		}
	}
	return nil
}

// DefaultChannels is the registry used when the config lists none.
func DefaultChannels() []ChannelConfig {
	return []ChannelConfig{
		{ID: "general", DisplayName: "Allgemein", Domain: "generic"},
		{ID: "sales", DisplayName: "Verkäufe", Domain: "sales"},
		{ID: "product", DisplayName: "Produkte", Domain: "product"},
		{ID: "team", DisplayName: "Team", Domain: "team"},
		{ID: "customer", DisplayName: "Kunden", Domain: "customer"},
	}
}

// ChannelModels converts the channel registry for the session store.
func (c *Config) ChannelModels() []models.Channel {
	out := make([]models.Channel, 0, len(c.Channels))
	for _, ch := range c.Channels {
		domain, _ := summary.ParseDomain(ch.Domain)
		out = append(out, models.Channel{ID: ch.ID, DisplayName: ch.DisplayName, Domain: domain})
	}
	return out
}

func isSQLite(name string) bool {
	n := strings.ToLower(name)
	return n == "sqlite" || n == "sqlite3"
}
