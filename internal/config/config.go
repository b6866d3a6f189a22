package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	LLM       LLMConfig       `mapstructure:"llm"`
	YouTube   YouTubeConfig   `mapstructure:"youtube"`
	Export    ExportConfig    `mapstructure:"export"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig describes browser origins allowed to call the API: every
// port of OriginHost in [PortStart, PortEnd] plus ExtraOrigins.
type CORSConfig struct {
	OriginHost   string   `mapstructure:"origin_host"`
	PortStart    int      `mapstructure:"port_start"`
	PortEnd      int      `mapstructure:"port_end"`
	ExtraOrigins []string `mapstructure:"extra_origins"`
}

// AllowedOrigins expands the port range into explicit origins.
func (c CORSConfig) AllowedOrigins() []string {
	size := len(c.ExtraOrigins)
	if c.PortStart > 0 && c.PortEnd >= c.PortStart {
		size += c.PortEnd - c.PortStart + 1
	}
	origins := make([]string, 0, size)
	for port := c.PortStart; port > 0 && port <= c.PortEnd; port++ {
		origins = append(origins, fmt.Sprintf("%s:%d", c.OriginHost, port))
	}
	return append(origins, c.ExtraOrigins...)
}

// DatabaseConfig selects the document store.
// Driver is one of "sqlite", "postgres" or "mongodb".
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	URI             string        `mapstructure:"uri"`
	Name            string        `mapstructure:"name"`
	Collection      string        `mapstructure:"collection"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the gorm connection string for SQL drivers.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return c.URI
	}
	return c.Path
}

type QdrantConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Collection string `mapstructure:"collection"`
	APIKey     string `mapstructure:"api_key"`
	UseTLS     bool   `mapstructure:"use_tls"`
	Metric     string `mapstructure:"metric"`
}

type LLMConfig struct {
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type YouTubeConfig struct {
	OEmbedURL          string        `mapstructure:"oembed_url"`
	WatchURL           string        `mapstructure:"watch_url"`
	TranscriptLanguage string        `mapstructure:"transcript_language"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// ExportConfig configures where offline export files are written.
// StorageType is "local", "s3", "r2" or "s3compatible".
type ExportConfig struct {
	StorageType string `mapstructure:"storage_type"`
	Dir         string `mapstructure:"dir"`
	Endpoint    string `mapstructure:"endpoint"`
	AccessKey   string `mapstructure:"access_key"`
	SecretKey   string `mapstructure:"secret_key"`
	UseSSL      bool   `mapstructure:"use_ssl"`
	Bucket      string `mapstructure:"bucket"`
	Region      string `mapstructure:"region"`
	PublicURL   string `mapstructure:"public_url"`
	Prefix      string `mapstructure:"prefix"`
}

type IngestConfig struct {
	Workers       int     `mapstructure:"workers"`
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets and connection strings come from well-known variables
	v.BindEnv("database.uri", "DOCUMENT_STORE_URI")
	v.BindEnv("database.driver", "DOCUMENT_STORE_DRIVER")
	v.BindEnv("qdrant.host", "QDRANT_HOST")
	v.BindEnv("qdrant.port", "QDRANT_PORT")
	v.BindEnv("qdrant.api_key", "QDRANT_API_KEY")
	v.BindEnv("qdrant.collection", "VECTOR_INDEX_NAME")
	v.BindEnv("embedding.model", "EMBEDDING_MODEL")
	v.BindEnv("embedding.api_key", "EMBEDDING_API_KEY")
	v.BindEnv("embedding.base_url", "EMBEDDING_BASE_URL")
	v.BindEnv("llm.api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.model", "LLM_MODEL")
	v.BindEnv("export.access_key", "EXPORT_ACCESS_KEY")
	v.BindEnv("export.secret_key", "EXPORT_SECRET_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.origin_host", "http://localhost")
	v.SetDefault("server.cors.port_start", 5173)
	v.SetDefault("server.cors.port_end", 6200)
	v.SetDefault("server.cors.extra_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/videos.db")
	v.SetDefault("database.name", "real_estate_tours")
	v.SetDefault("database.collection", "snippets")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("qdrant.host", "localhost")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("qdrant.collection", DefaultIndexName)
	v.SetDefault("qdrant.metric", MetricCosine)

	v.SetDefault("embedding.provider", ProviderTEI)
	v.SetDefault("embedding.model", DefaultEmbeddingModel)
	v.SetDefault("embedding.base_url", "http://localhost:8081")
	v.SetDefault("embedding.dimensions", DefaultEmbeddingDimensions)
	v.SetDefault("embedding.timeout", time.Minute)

	v.SetDefault("llm.model", "gemini-1.5-flash")
	v.SetDefault("llm.base_url", "https://generativelanguage.googleapis.com/v1beta/openai/")
	v.SetDefault("llm.timeout", time.Minute)

	v.SetDefault("youtube.oembed_url", "https://www.youtube.com/oembed")
	v.SetDefault("youtube.watch_url", "https://www.youtube.com/watch")
	v.SetDefault("youtube.transcript_language", "en")
	v.SetDefault("youtube.timeout", 30*time.Second)

	v.SetDefault("export.storage_type", "local")
	v.SetDefault("export.dir", "./Playlist_Folder")
	v.SetDefault("export.use_ssl", true)

	v.SetDefault("ingest.workers", 2)
	v.SetDefault("ingest.rate_per_second", 1.0)
	v.SetDefault("ingest.burst", 1)
}

// Validate checks the settings that cannot be defaulted away.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "mongodb":
	default:
		return fmt.Errorf("database: unknown driver %q", c.Database.Driver)
	}
	if c.Database.Driver != "sqlite" && c.Database.URI == "" {
		return fmt.Errorf("database: uri is required for driver %q", c.Database.Driver)
	}
	if c.Qdrant.Metric != MetricCosine {
		return fmt.Errorf("qdrant: unsupported metric %q (only %q)", c.Qdrant.Metric, MetricCosine)
	}
	if c.Qdrant.Collection == "" {
		return fmt.Errorf("qdrant: collection is required")
	}
	if err := c.Embedding.Validate(); err != nil {
		return err
	}
	if c.Server.CORS.PortEnd < c.Server.CORS.PortStart {
		return fmt.Errorf("server.cors: port_end %d is before port_start %d",
			c.Server.CORS.PortEnd, c.Server.CORS.PortStart)
	}
	return nil
}
