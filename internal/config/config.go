package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	APIPrefix string
	AppName   string

	MoviesAPIKey string
	MoviesURL    string

	IdentityAPIKey  string
	ToolkitURL      string
	SecureTokenURL  string
	CertsURL        string
	CredentialsFile string
	ProjectID       string

	UpstreamTimeout  time.Duration
	GuardMovieRoutes bool

	LogLevel  string
	LogFormat string
}

// Load reads the environment (and .env when present). Every missing
// required key is reported; the server must not start when Load fails.
func Load() (Config, error) {
	// coba load .env, kalau gak ada ya di-skip
	_ = godotenv.Load()

	cfg := Config{
		Port:             getEnv("PORT", "3000"),
		APIPrefix:        strings.Trim(getEnv("API_PREFIX", "apis"), "/"),
		AppName:          getEnv("APPLICATION_NAME", "movie-bff"),
		MoviesAPIKey:     strings.TrimSpace(os.Getenv("API_KEY_MOVIES")),
		MoviesURL:        getEnv("TMDB_BASE_URL", ""),
		IdentityAPIKey:   strings.TrimSpace(os.Getenv("APIKEY")),
		ToolkitURL:       getEnv("IDENTITY_TOOLKIT_URL", ""),
		SecureTokenURL:   getEnv("SECURE_TOKEN_URL", ""),
		CertsURL:         getEnv("IDENTITY_CERTS_URL", ""),
		CredentialsFile:  strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),
		ProjectID:        strings.TrimSpace(os.Getenv("FIREBASE_PROJECT_ID")),
		GuardMovieRoutes: getEnvBool("GUARD_MOVIE_ROUTES", false),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	var errs []error
	timeout, err := time.ParseDuration(getEnv("UPSTREAM_TIMEOUT", "15s"))
	if err != nil || timeout <= 0 {
		errs = append(errs, fmt.Errorf("UPSTREAM_TIMEOUT must be a positive duration"))
	}
	cfg.UpstreamTimeout = timeout

	if cfg.MoviesAPIKey == "" {
		errs = append(errs, errors.New("API_KEY_MOVIES is not defined in the environment variables"))
	}
	if cfg.IdentityAPIKey == "" {
		errs = append(errs, errors.New("APIKEY is not defined in the environment variables"))
	}
	if cfg.CredentialsFile == "" {
		errs = append(errs, errors.New("GOOGLE_APPLICATION_CREDENTIALS is not defined in the environment variables"))
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		errs = append(errs, fmt.Errorf("PORT %q is not a number", cfg.Port))
	}
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return b
	}
	return fallback
}
