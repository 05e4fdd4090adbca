package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SCORING_TIMEOUT", "")
	t.Setenv("IDENTITY_PROVIDER", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "jwt", cfg.IdentityProvider)
	assert.Equal(t, 30*time.Second, cfg.ScoringTimeout)
	assert.Empty(t, cfg.RedisURL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("CATALOG_CACHE_TTL", "90s")
	t.Setenv("EVENTS_ENABLED", "false")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 90*time.Second, cfg.CatalogCacheTTL)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.GetKafkaBrokers())
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string][2]string{
		"bad duration":    {"SCORING_TIMEOUT", "soon"},
		"bad bool":        {"EVENTS_ENABLED", "maybe"},
		"bad driver":      {"DATABASE_DRIVER", "mysql"},
		"bad provider":    {"IDENTITY_PROVIDER", "ldap"},
		"casdoor missing": {"IDENTITY_PROVIDER", "casdoor"},
	}

	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(kv[0], kv[1])
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestCreateEventPublisher_DisabledUsesMock(t *testing.T) {
	c := EventConfig{Enabled: false, Publisher: "kafka"}

	p, err := c.CreateEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.IsType(t, &events.MockEventPublisher{}, p)
}
