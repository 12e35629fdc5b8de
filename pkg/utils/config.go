package utils

import (
	"os"
	"strings"
)

type Config struct {
	Port    string
	APIKeys []string
	DataDir string
	LogDir  string
}

// LoadConfig reads the few external configuration points from the
// environment, with dev defaults.
func LoadConfig() Config {
	port := os.Getenv("BOOKHUB_PORT")
	if port == "" {
		port = "3000"
	}

	dataDir := os.Getenv("BOOKHUB_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	logDir := os.Getenv("BOOKHUB_LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	return Config{
		Port:    port,
		APIKeys: SplitKeys(os.Getenv("BOOKHUB_API_KEYS")),
		DataDir: dataDir,
		LogDir:  logDir,
	}
}

// SplitKeys parses a comma-separated key list, dropping blanks.
func SplitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
