package configs

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv removes key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

// cleanEnv unsets every variable the tests rely on defaults for.
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PORT", "JWT_SECRET", "DATABASE_URL", "AI_PROVIDER", "AI_RATE_PER_SEC", "AI_BURST", "SQLITE_PATH"} {
		unsetenv(t, key)
	}
}

func TestLoadConfigDevelopmentDefaults(t *testing.T) {
	cleanEnv(t)
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("ADMIN_EMAILS", " Admin@AlumniLink.com , ,ops@alumnilink.com")
	t.Setenv("STORE_DRIVER", DriverMemory)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"Admin@AlumniLink.com", "ops@alumnilink.com"}, cfg.AdminEmails)
	assert.True(t, cfg.IsAdminEmail(" admin@alumnilink.COM"))
	assert.False(t, cfg.IsAdminEmail(""))
	assert.False(t, cfg.IsAdminEmail("evelyn.reed@example.com"))
}

func TestLoadConfigRejects(t *testing.T) {
	cleanEnv(t)

	t.Run("production without secret", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("STORE_DRIVER", DriverMemory)

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "development")
		t.Setenv("STORE_DRIVER", DriverPostgres)

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("privileged port", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "development")
		t.Setenv("STORE_DRIVER", DriverMemory)
		t.Setenv("PORT", "80")

		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "development")
		t.Setenv("STORE_DRIVER", DriverMemory)
		t.Setenv("AI_PROVIDER", "claude")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "AI_PROVIDER")
	})
}

func TestProviderAndUploadSettings(t *testing.T) {
	cfg := &AppConfig{AIProvider: ProviderGemini, GeminiAPIKey: "g", OpenAIAPIKey: "o"}
	assert.Equal(t, "g", cfg.AIAPIKey())

	cfg.AIProvider = ProviderOpenAI
	assert.Equal(t, "o", cfg.AIAPIKey())

	assert.False(t, cfg.UploadsEnabled())
	cfg.S3BucketName, cfg.S3Endpoint, cfg.S3AccessKeyID, cfg.S3SecretAccessKey = "b", "https://s3.example.com", "k", "s"
	assert.True(t, cfg.UploadsEnabled())
}
