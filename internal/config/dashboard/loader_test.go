package dashboard_config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
app:
  env: production
db:
  driver: sqlite
  dsn: /tmp/status.db
preview:
  max_redirects: 2
projects:
  - slug: acme
    base_url: https://acme.example.com
    routes: ["/", "/api/items/[id]"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "dashboard.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.True(t, cfg.App.IsProduction())
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "/tmp/status.db", cfg.DB.DSN)
	assert.Equal(t, 10*time.Second, cfg.DB.QueryTimeout)

	assert.Equal(t, 2, cfg.Preview.MaxRedirects)
	assert.Equal(t, "Website-Monitor-Preview/1.0", cfg.Preview.UserAgent)
	assert.Equal(t, 3*time.Second, cfg.Preview.RedirectDelayMin)
	assert.Equal(t, 300, cfg.Preview.CacheSeconds)
	assert.Equal(t, "Website-Monitor/1.0", cfg.Probe.UserAgent)

	require.Len(t, cfg.Projects, 1)
	assert.Equal(t, "acme", cfg.Projects[0].Slug)
	assert.Equal(t, "https://acme.example.com", cfg.Projects[0].BaseURL)
	assert.Equal(t, []string{"/", "/api/items/[id]"}, cfg.Projects[0].Routes)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PREVIEW_WAIT_FOR_FULL_LOAD", "true")
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)
	assert.True(t, cfg.Preview.WaitForFullLoad)
}

func TestLoadValidation(t *testing.T) {
	_, err := Load(writeConfig(t, "db:\n  driver: mysql\n"))
	assert.ErrorIs(t, err, ErrBadDriver)

	_, err = Load(writeConfig(t, "db:\n  driver: sqlite\n  dsn: x.db\n"))
	assert.ErrorIs(t, err, ErrNoProjects)
}
