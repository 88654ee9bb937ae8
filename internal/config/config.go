// Package config resolves runtime configuration from the environment,
// with working defaults for a local data/ layout.
package config

import (
	"os"
	"strconv"
)

// Config holds everything the CLI wires together.
type Config struct {
	Model          string
	EmbeddingModel string
	APIKey         string

	FacultyDataDir string
	SyllabusDBPath string
	VectorDBPath   string
	TranscriptPath string

	MongoURI      string
	MongoDatabase string
	SessionID     string

	MaxToolIterations int
	Debug             bool
}

// FromEnv builds a Config from environment variables, applying defaults
// for anything unset.
func FromEnv() Config {
	return Config{
		Model:          getEnv("LLM_MODEL", "gemini-2.5-flash"),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "gemini-embedding-001"),
		APIKey:         os.Getenv("GEMINI_API_KEY"),

		FacultyDataDir: getEnv("FACULTY_DATA_DIR", "data/faculty-data"),
		SyllabusDBPath: getEnv("SYLLABUS_DB", "data/syllabus.db"),
		VectorDBPath:   getEnv("VECTOR_DB", "data/ordinance.db"),
		TranscriptPath: getEnv("TRANSCRIPT_PATH", "data/history.txt"),

		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getEnv("MONGODB_DB", "campus_assistant"),
		SessionID:     os.Getenv("SESSION_ID"),

		MaxToolIterations: getEnvInt("MAX_TOOL_ITERATIONS", 8),
		Debug:             os.Getenv("DEBUG") != "",
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}

	return n
}
