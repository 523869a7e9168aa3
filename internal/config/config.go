package config

import (
	"os"
	"strconv"
)

// Config holds the process configuration, loaded once at startup.
type Config struct {
	Port               string
	DBPath             string
	JWTSecret          string
	AccuracyThresholdM float64 // GPS fixes worse than this are dropped
	DailyStepGoal      int
	PausePolicy        string // "included" or "excluded"
}

// Load reads configuration from the environment, with defaults for
// local development.
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/steptracker.db"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	accuracy := envFloat("GPS_ACCURACY_THRESHOLD_M", 50)
	goal := envInt("DAILY_STEP_GOAL", 10000)

	policy := os.Getenv("PAUSE_POLICY")
	if policy == "" {
		policy = "included"
	}

	return &Config{
		Port:               port,
		DBPath:             dbPath,
		JWTSecret:          jwtSecret,
		AccuracyThresholdM: accuracy,
		DailyStepGoal:      goal,
		PausePolicy:        policy,
	}
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
