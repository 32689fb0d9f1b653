package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port       int    `yaml:"port"`
		PublicHost string `yaml:"publicHost"` // base URL for the local fallback, e.g. http://localhost:3001
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // sqlite | mysql | postgres
		Path     string `yaml:"path"`   // sqlite file
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"database"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Imgur struct {
		ClientID string `yaml:"clientId"`
	} `yaml:"imgur"`

	Classifier struct {
		Mode           string   `yaml:"mode"` // engine | openai
		Command        []string `yaml:"command"`
		WorkDir        string   `yaml:"workDir"`
		TimeoutSeconds int      `yaml:"timeoutSeconds"`
		OpenAI         struct {
			APIKey string `yaml:"apiKey"`
			Model  string `yaml:"model"`
		} `yaml:"openai"`
	} `yaml:"classifier"`

	Watcher struct {
		Dirs        []string `yaml:"dirs"`
		QuietMillis int      `yaml:"quietMillis"`
	} `yaml:"watcher"`

	Retention struct {
		SweepMinutes int `yaml:"sweepMinutes"`
	} `yaml:"retention"`

	Uploads struct {
		Dir string `yaml:"dir"`
	} `yaml:"uploads"`

	Rules struct {
		File string `yaml:"file"` // optional markdown ruleset override
	} `yaml:"rules"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		path = env
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3001
	}
	if c.Server.PublicHost == "" {
		c.Server.PublicHost = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "scan_results.db"
	}
	if c.Classifier.Mode == "" {
		c.Classifier.Mode = "engine"
	}
	if c.Classifier.TimeoutSeconds == 0 {
		c.Classifier.TimeoutSeconds = 120
	}
	if c.Watcher.QuietMillis == 0 {
		c.Watcher.QuietMillis = 1000
	}
	if c.Retention.SweepMinutes == 0 {
		c.Retention.SweepMinutes = 60
	}
	if c.Uploads.Dir == "" {
		c.Uploads.Dir = "uploads"
	}
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds the lib/pq connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// ClassifierTimeout as a duration
func (c *Config) ClassifierTimeout() time.Duration {
	return time.Duration(c.Classifier.TimeoutSeconds) * time.Second
}

// QuietPeriod as a duration
func (c *Config) QuietPeriod() time.Duration {
	return time.Duration(c.Watcher.QuietMillis) * time.Millisecond
}

// SweepInterval as a duration
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Retention.SweepMinutes) * time.Minute
}

// RulesText returns the ruleset in force: the configured markdown file when
// present, the built-in default otherwise.
func (c *Config) RulesText() (string, error) {
	if c.Rules.File == "" {
		return DefaultRules, nil
	}
	data, err := os.ReadFile(c.Rules.File)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
