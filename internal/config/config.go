package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the tracker needs from the environment.
// MONGO_URI is read by db.ConnectMongo after godotenv has loaded .env.
type Config struct {
	MongoDB       string
	HTTPAddr      string
	MetricsAddr   string // empty disables the metrics server
	MQTTBrokerURL string // empty disables the MQTT live-GPS subscriber
	MQTTTopic     string
	NATSURL       string // empty disables the snapshot publisher
	TickInterval  time.Duration
	LiveWindow    time.Duration
	Location      *time.Location
}

// Load reads .env (if present) and the environment. Missing values get
// defaults; malformed numeric values are errors.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		MongoDB:       getenvDefault("MONGO_DB", "keralarides"),
		HTTPAddr:      getenvDefault("HTTP_ADDR", ":8080"),
		MetricsAddr:   os.Getenv("METRICS_ADDR"),
		MQTTBrokerURL: os.Getenv("MQTT_BROKER_URL"),
		MQTTTopic:     getenvDefault("MQTT_TOPIC", "kerala-rides/live/+"),
		NATSURL:       os.Getenv("NATS_URL"),
	}

	tickMS, err := envInt("TICK_INTERVAL_MS", 5000)
	if err != nil {
		return nil, err
	}
	cfg.TickInterval = time.Duration(tickMS) * time.Millisecond

	liveMS, err := envInt("LIVE_FRESHNESS_MS", 15000)
	if err != nil {
		return nil, err
	}
	cfg.LiveWindow = time.Duration(liveMS) * time.Millisecond

	if tzName := os.Getenv("TZ"); tzName != "" {
		loc, err := time.LoadLocation(tzName)
		if err != nil {
			return nil, fmt.Errorf("invalid TZ: %v", err)
		}
		cfg.Location = loc
	} else {
		cfg.Location = time.Local
	}

	return cfg, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
