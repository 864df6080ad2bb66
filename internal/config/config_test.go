package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"MONGO_DB", "HTTP_ADDR", "METRICS_ADDR", "MQTT_BROKER_URL",
		"MQTT_TOPIC", "NATS_URL", "TICK_INTERVAL_MS", "LIVE_FRESHNESS_MS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "keralarides", cfg.MongoDB)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.MetricsAddr)
	assert.Empty(t, cfg.MQTTBrokerURL)
	assert.Equal(t, "kerala-rides/live/+", cfg.MQTTTopic)
	assert.Empty(t, cfg.NATSURL)
	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, 15*time.Second, cfg.LiveWindow)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MONGO_DB", "ridesdev")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("TICK_INTERVAL_MS", "1000")
	t.Setenv("LIVE_FRESHNESS_MS", "30000")
	t.Setenv("TZ", "Asia/Kolkata")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ridesdev", cfg.MongoDB)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, time.Second, cfg.TickInterval)
	assert.Equal(t, 30*time.Second, cfg.LiveWindow)
	assert.Equal(t, "Asia/Kolkata", cfg.Location.String())
}

func TestLoad_BadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non numeric tick", "TICK_INTERVAL_MS", "fast"},
		{"zero tick", "TICK_INTERVAL_MS", "0"},
		{"negative freshness", "LIVE_FRESHNESS_MS", "-1"},
		{"unknown timezone", "TZ", "Mars/Olympus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
