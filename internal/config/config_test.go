package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/automaton-port/internal/infra/executor/docker"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, docker.DefaultImage, cfg.Check.Image)
	assert.Equal(t, docker.DefaultMount, cfg.Check.Mount)
	assert.Equal(t, docker.DefaultCommand, cfg.Check.Command)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Empty(t, cfg.Database.Driver)
	assert.Empty(t, cfg.Minio.Endpoint)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9000
check:
  image: rust:1.79.0-slim
  command: ["cargo", "check", "--all-targets"]
database:
  driver: mysql
  host: db.local
  port: 3306
  user: porter
  password: secret
  name: checks
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "rust:1.79.0-slim", cfg.Check.Image)
	assert.Equal(t, []string{"cargo", "check", "--all-targets"}, cfg.Check.Command)
	// defaults still fill the gaps
	assert.Equal(t, docker.DefaultMount, cfg.Check.Mount)

	assert.Equal(t,
		"porter:secret@tcp(db.local:3306)/checks?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.MySQLDSN())
	assert.Equal(t,
		"host=db.local port=3306 user=porter password=secret dbname=checks sslmode=disable",
		cfg.PostgresDSN())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
