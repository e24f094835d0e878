package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xelth-com/ongoingwms/internal/config"
)

func TestIsEmbedded(t *testing.T) {
	assert.True(t, IsEmbedded(config.DatabaseConfig{Host: "localhost"}))
	assert.False(t, IsEmbedded(config.DatabaseConfig{Host: "localhost", Password: "x"}))
	assert.False(t, IsEmbedded(config.DatabaseConfig{Host: "db.internal"}))
}

func TestDSNDefaultsSSLMode(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: "5432", Username: "u", Password: "p", Database: "wms"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=wms sslmode=disable", dsn)

	dsn = DSN(config.DatabaseConfig{Host: "db", Port: "5432", Username: "u", Database: "wms", SSLMode: "require"})
	assert.Contains(t, dsn, "sslmode=require")
}
