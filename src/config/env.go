package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Env carries the process-level options that live in .env rather than in
// the settings file.
type Env struct {
	EnableFileLogging bool
	ConfigPath        string
}

// LoadEnv loads .env from the executable directory, or from the file named by
// MOUSE_OVERLAY_ENV, into the process environment and returns the options.
func LoadEnv() Env {
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}
	return Env{
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		ConfigPath:        os.Getenv(ConfigEnvVar),
	}
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv("MOUSE_OVERLAY_ENV"); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}
