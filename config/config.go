package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	DefaultUploadsSubDir = "uploads"
)

const (
	defaultStoreOpTimeoutSeconds    = 10
	defaultClassifierTimeoutSeconds = 30
)

type Config struct {
	// database path
	DatabasePath string

	// media storage configuration
	MediaStoragePath string // primary root for stored artifacts
	UploadsPath      string // full-calculated path for uploaded image artifacts

	// external classifier settings
	ClassifierURL     string
	ClassifierTimeout time.Duration

	// per-operation deadline applied to every record store call
	StoreOpTimeout time.Duration
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "images.db")

	mediaStorage := getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	uploadsSubDir := getEnvOrDefault("UPLOADS_SUBDIR", DefaultUploadsSubDir)
	absUploadsPath := filepath.Join(absMediaStorage, uploadsSubDir)

	classifierURL := getEnvOrDefault("CLASSIFIER_URL", "http://localhost:8501/predict")
	classifierTimeout := getEnvIntOrDefault("CLASSIFIER_TIMEOUT_SECONDS", defaultClassifierTimeoutSeconds)

	storeOpTimeout := getEnvIntOrDefault("STORE_OP_TIMEOUT_SECONDS", defaultStoreOpTimeoutSeconds)

	cfg := Config{
		DatabasePath:      dbPath,
		MediaStoragePath:  absMediaStorage,
		UploadsPath:       absUploadsPath,
		ClassifierURL:     classifierURL,
		ClassifierTimeout: time.Duration(classifierTimeout) * time.Second,
		StoreOpTimeout:    time.Duration(storeOpTimeout) * time.Second,
	}

	return cfg, nil
}
