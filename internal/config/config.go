package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/automaton-port/internal/infra/executor/docker"
)

type Config struct {
	Server struct {
		Port   int    `yaml:"port"`
		APIKey string `yaml:"apiKey"`
	} `yaml:"server"`

	Check struct {
		Image   string   `yaml:"image"`
		Mount   string   `yaml:"mount"`
		Command []string `yaml:"command"`
	} `yaml:"check"`

	AI struct {
		Model        string `yaml:"model"`
		APIKey       string `yaml:"apiKey"`
		MaxFixRounds int    `yaml:"maxFixRounds"`
	} `yaml:"ai"`

	Database struct {
		Driver   string `yaml:"driver"`
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
}

// Default returns a config with the pinned toolchain defaults and no
// journal, archive or server configured.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
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
		c.Server.Port = 8080
	}
	if c.Check.Image == "" {
		c.Check.Image = docker.DefaultImage
	}
	if c.Check.Mount == "" {
		c.Check.Mount = docker.DefaultMount
	}
	if len(c.Check.Command) == 0 {
		c.Check.Command = docker.DefaultCommand
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

// Helper untuk build DSN PostgreSQL
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}
