package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Keys holds all API credentials loaded from the environment. YouTube carries
// a rotation list: quota exhaustion on one key moves the caller to the next.
type Keys struct {
	YouTube []string
	OpenAI  string
	Groq    string
}

// LoadEnv loads environment variables from a .env file if one exists nearby.
// Absence is not an error; keys may be set system-wide.
func LoadEnv() error {
	envPaths := []string{
		".env",
		".env.local",
		"../.env",
		"../../.env",
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}
	return nil
}

// GetKeys reads API keys from the environment. YOUTUBE_API_KEY is the primary
// key; YOUTUBE_API_KEY_2, YOUTUBE_API_KEY_3, ... extend the rotation list.
func GetKeys() (*Keys, error) {
	keys := &Keys{
		OpenAI: strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		Groq:   strings.TrimSpace(os.Getenv("GROQ_API_KEY")),
	}

	if primary := strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY")); primary != "" {
		keys.YouTube = append(keys.YouTube, primary)
	}
	for i := 2; ; i++ {
		k := strings.TrimSpace(os.Getenv("YOUTUBE_API_KEY_" + strconv.Itoa(i)))
		if k == "" {
			break
		}
		keys.YouTube = append(keys.YouTube, k)
	}

	if keys.OpenAI != "" && !strings.HasPrefix(keys.OpenAI, "sk-") {
		return nil, fmt.Errorf("invalid OPENAI_API_KEY format: must start with 'sk-'")
	}

	return keys, nil
}

// RequireYouTubeKeys fails fast when discovery is started without any key.
func RequireYouTubeKeys(keys *Keys) error {
	if len(keys.YouTube) == 0 {
		return fmt.Errorf("discovery requires YOUTUBE_API_KEY (and optionally YOUTUBE_API_KEY_2, ...) in environment or .env file")
	}
	return nil
}

// InitializeKeys loads the .env file and reads every configured credential.
func InitializeKeys() (*Keys, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	return GetKeys()
}
