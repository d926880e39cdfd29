package database

import (
	"testing"

	"allowance/internal/config"

	"github.com/stretchr/testify/assert"
	gormlogger "gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	dsn := DSN(&config.MySQLConfig{
		Host:     "db.local",
		Port:     3307,
		User:     "app",
		Password: "pw",
		Database: "allowance",
	})
	assert.Equal(t, "app:pw@tcp(db.local:3307)/allowance?charset=utf8mb4&parseTime=True&loc=Local", dsn)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"ERROR":  gormlogger.Error,
		"info":   gormlogger.Info,
		"warn":   gormlogger.Warn,
		"":       gormlogger.Warn,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}
