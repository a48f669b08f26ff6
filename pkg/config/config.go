package config

import "os"

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresUrl             string
	MongoURI                string
	RedisURL                string
	AIServiceURL            string
	FrontendURL             string
	EmailHost               string
	EmailPort               string
	EmailUser               string
	EmailPass               string
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		PostgresUrl:             getEnv("POSTGRES_CONN_STR", ""),
		MongoURI:                getEnv("MONGO_URI", ""),
		RedisURL:                getEnv("REDIS_URL", ""),
		AIServiceURL:            getEnv("AI_SERVICE_URL", "http://localhost:8000"),
		FrontendURL:             getEnv("FRONTEND_URL", "http://localhost:5173"),
		EmailHost:               getEnv("EMAIL_HOST", "smtp.gmail.com"),
		EmailPort:               getEnv("EMAIL_PORT", "587"),
		EmailUser:               getEnv("EMAIL_USER", ""),
		EmailPass:               getEnv("EMAIL_PASS", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
