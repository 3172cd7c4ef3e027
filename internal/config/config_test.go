package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("CFG_TEST_STR", "set")
	assert.Equal(t, "set", getEnvOrDefault("CFG_TEST_STR", "default"))
	assert.Equal(t, "default", getEnvOrDefault("CFG_TEST_STR_UNSET", "default"))
}

func TestGetIntOrDefault(t *testing.T) {
	t.Setenv("CFG_TEST_INT", "42")
	assert.Equal(t, 42, getIntOrDefault("CFG_TEST_INT", 7))
	assert.Equal(t, 7, getIntOrDefault("CFG_TEST_INT_UNSET", 7))

	t.Setenv("CFG_TEST_INT_BAD", "not-a-number")
	assert.Equal(t, 7, getIntOrDefault("CFG_TEST_INT_BAD", 7))
}

func TestGetBoolOrDefault(t *testing.T) {
	t.Setenv("CFG_TEST_BOOL", "false")
	assert.Equal(t, false, getBoolOrDefault("CFG_TEST_BOOL", true))
	assert.Equal(t, true, getBoolOrDefault("CFG_TEST_BOOL_UNSET", true))

	t.Setenv("CFG_TEST_BOOL_BAD", "maybe")
	assert.Equal(t, true, getBoolOrDefault("CFG_TEST_BOOL_BAD", true))
}

func TestGetDurationOrDefault(t *testing.T) {
	t.Setenv("CFG_TEST_DURATION", "30s")
	assert.Equal(t, 30*time.Second, getDurationOrDefault("CFG_TEST_DURATION", time.Minute))
	assert.Equal(t, time.Minute, getDurationOrDefault("CFG_TEST_DURATION_UNSET", time.Minute))

	t.Setenv("CFG_TEST_DURATION_BAD", "not-a-duration")
	assert.Equal(t, time.Minute, getDurationOrDefault("CFG_TEST_DURATION_BAD", time.Minute))
}

func TestConfig_Validate_RequiresMySQLDSN(t *testing.T) {
	c := &Config{}
	c.Database.MongoDB.URI = "mongodb://localhost"
	c.Auth.JWTSecret = "secret"
	err := c.Validate()
	assert.ErrorContains(t, err, "MYSQL_DSN")
}

func TestConfig_Validate_RequiresMongoURI(t *testing.T) {
	c := &Config{}
	c.Database.MySQL.DSN = "user:pass@tcp(localhost:3306)/db"
	c.Auth.JWTSecret = "secret"
	err := c.Validate()
	assert.ErrorContains(t, err, "MONGO_URI")
}

func TestConfig_Validate_RequiresJWTSecret(t *testing.T) {
	c := &Config{}
	c.Database.MySQL.DSN = "user:pass@tcp(localhost:3306)/db"
	c.Database.MongoDB.URI = "mongodb://localhost"
	err := c.Validate()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestConfig_Validate_PassesWithAllRequiredFields(t *testing.T) {
	c := &Config{}
	c.Database.MySQL.DSN = "user:pass@tcp(localhost:3306)/db"
	c.Database.MongoDB.URI = "mongodb://localhost"
	c.Auth.JWTSecret = "secret"
	assert.NoError(t, c.Validate())
}
