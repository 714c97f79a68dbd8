package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort              string
	Environment             string
	FirebaseProject         string
	FirebaseApiKey          string
	StorageBucket           string
	CloudinaryCloudName     string
	CloudinaryUploadPreset  string
	ServiceAccountJSON      string
	ServiceAccountPath      string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		Environment:            getEnv("ENVIRONMENT", "development"),
		FirebaseProject:        getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:         getEnv("FIREBASE_API_KEY", ""),
		StorageBucket:          getEnv("STORAGE_BUCKET", ""),
		CloudinaryCloudName:    getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryUploadPreset: getEnv("CLOUDINARY_UPLOAD_PRESET", ""),
		ServiceAccountJSON:     getEnv("FIREBASE_SERVICE_ACCOUNT_JSON", ""),
		ServiceAccountPath:     getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
