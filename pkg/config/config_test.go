package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_KnowledgeConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("CLINICAL_ENTITIES_CONFIG", "/etc/intake/entities.json")
	os.Setenv("WORKUP_RULESETS_CONFIG", "/etc/intake/rulesets.json")
	defer func() {
		os.Unsetenv("CLINICAL_ENTITIES_CONFIG")
		os.Unsetenv("WORKUP_RULESETS_CONFIG")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "/etc/intake/entities.json", cfg.Knowledge.ClinicalEntitiesPath)
	assert.Equal(t, "/etc/intake/rulesets.json", cfg.Knowledge.WorkupRulesetsPath)
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("CLINICAL_ENTITIES_CONFIG")
	os.Unsetenv("DB_NAME")
	os.Unsetenv("SERVER_PORT")

	cfg, err := Load()
	assert.NoError(t, err)

	// Built-in tables are the default: no path configured
	assert.Equal(t, "", cfg.Knowledge.ClinicalEntitiesPath)
	assert.Equal(t, "clinical_intake", cfg.Database.Database)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "intake",
		Password: "secret",
		Database: "clinical_intake",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db port=5433 user=intake password=secret dbname=clinical_intake sslmode=require",
		cfg.DatabaseDSN(),
	)
}
