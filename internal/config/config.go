package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	// Config holds configuration settings for the AirDraw server
	Config struct {
		// API Server
		APIHost     string
		APIPort     int
		LogLevel    string
		Debug       bool
		CORSOrigins []string

		// Storage
		AirflowHome    string
		DAGStoreURL    string
		DAGStorePrefix string

		// Discovery
		Namespace      string
		SearchPath     []string
		PythonBin      string
		ScanWorkers    int
		ParamCacheSize int
		ReflectTimeout time.Duration

		ShutdownTimeout time.Duration
	}
)

const (
	DefaultAPIPort = 8000
	DefaultAPIHost = "0.0.0.0"
	MaxTCPPort     = 65535

	DefaultEnvFile         = ".env"
	DefaultCORSOrigin      = "http://localhost:5173"
	DefaultNamespace       = "airflow.providers"
	DefaultPythonBin       = "python3"
	DefaultDAGStorePrefix  = "airdraw"
	DefaultScanWorkers     = 8
	DefaultParamCacheSize  = 1024
	DefaultReflectTimeout  = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	MaxScanWorkers    = 256
	MaxParamCacheSize = 1_000_000

	// DAGsDir is the directory under AIRFLOW_HOME holding saved DAGs
	DAGsDir = ".airdraw/dags"
)

var (
	ErrInvalidAPIPort        = errors.New("invalid API port")
	ErrInvalidScanWorkers    = errors.New("scan workers must be positive")
	ErrInvalidParamCacheSize = errors.New("param cache size must be positive")
	ErrInvalidReflectTimeout = errors.New(
		"reflect timeout cannot be negative",
	)
	ErrInvalidNamespace  = errors.New("provider namespace is required")
	ErrInvalidPythonBin  = errors.New("python interpreter is required")
	ErrAirflowHomeNotSet = errors.New("AIRFLOW_HOME is not set")
)

// NewDefaultConfig creates a configuration with sensible defaults for all
// server, discovery, and storage settings
func NewDefaultConfig() *Config {
	return &Config{
		APIPort:         DefaultAPIPort,
		APIHost:         DefaultAPIHost,
		LogLevel:        "info",
		CORSOrigins:     []string{DefaultCORSOrigin},
		DAGStorePrefix:  DefaultDAGStorePrefix,
		Namespace:       DefaultNamespace,
		PythonBin:       DefaultPythonBin,
		ScanWorkers:     DefaultScanWorkers,
		ParamCacheSize:  DefaultParamCacheSize,
		ReflectTimeout:  DefaultReflectTimeout,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables and
// an optional .env file in the working directory
func (c *Config) LoadFromEnv() error {
	return c.Load(DefaultEnvFile)
}

// Load populates configuration values from the named env file, if it exists,
// and the process environment. Environment variables take precedence.
// Returns an error if any value cannot be parsed
func (c *Config) Load(envFile string) error {
	v := viper.New()
	v.AutomaticEnv()
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil &&
			!errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("invalid env file %s: %w", envFile, err)
		}
	}

	loadString(v, "API_HOST", &c.APIHost)
	loadString(v, "LOG_LEVEL", &c.LogLevel)
	loadString(v, "AIRFLOW_HOME", &c.AirflowHome)
	loadString(v, "DAG_STORE_URL", &c.DAGStoreURL)
	loadString(v, "DAG_STORE_PREFIX", &c.DAGStorePrefix)
	loadString(v, "PROVIDER_NAMESPACE", &c.Namespace)
	loadString(v, "AIRDRAW_PYTHON", &c.PythonBin)

	if s := v.GetString("CORS_ORIGINS"); s != "" {
		c.CORSOrigins = splitList(s, ",")
	}
	if s := v.GetString("AIRDRAW_SEARCH_PATH"); s != "" {
		c.SearchPath = splitList(s, string(os.PathListSeparator))
	}

	if err := loadBool(v, "DEBUG", &c.Debug); err != nil {
		return err
	}
	if err := loadInt(v, "API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadInt(
		v, "SCAN_WORKERS", &c.ScanWorkers, 0, MaxScanWorkers,
	); err != nil {
		return err
	}
	if err := loadInt(
		v, "PARAM_CACHE_SIZE", &c.ParamCacheSize, 0, MaxParamCacheSize,
	); err != nil {
		return err
	}
	if err := loadDuration(v, "REFLECT_TIMEOUT", &c.ReflectTimeout); err != nil {
		return err
	}
	if err := loadDuration(
		v, "SHUTDOWN_TIMEOUT", &c.ShutdownTimeout,
	); err != nil {
		return err
	}
	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}

	if c.ScanWorkers <= 0 {
		return ErrInvalidScanWorkers
	}

	if c.ParamCacheSize <= 0 {
		return ErrInvalidParamCacheSize
	}

	if c.ReflectTimeout < 0 {
		return ErrInvalidReflectTimeout
	}

	if strings.TrimSpace(c.Namespace) == "" {
		return ErrInvalidNamespace
	}

	if strings.TrimSpace(c.PythonBin) == "" {
		return ErrInvalidPythonBin
	}

	return nil
}

// DAGStoreLocation returns the URL of the bucket that receives normalized
// DAG documents. An explicit DAG_STORE_URL wins; otherwise the location is
// derived from AIRFLOW_HOME, which must then be set
func (c *Config) DAGStoreLocation() (string, error) {
	if c.DAGStoreURL != "" {
		return c.DAGStoreURL, nil
	}
	if c.AirflowHome == "" {
		return "", ErrAirflowHomeNotSet
	}

	dir, err := filepath.Abs(filepath.Join(c.AirflowHome, DAGsDir))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAirflowHomeNotSet, err)
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(dir),
		RawQuery: "create_dir=1&metadata=skip",
	}
	return u.String(), nil
}

func loadString(v *viper.Viper, key string, dst *string) {
	if s := v.GetString(key); s != "" {
		*dst = s
	}
}

func loadBool(v *viper.Viper, key string, dst *bool) error {
	s := strings.ToLower(strings.TrimSpace(v.GetString(key)))
	switch s {
	case "":
		return nil
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	default:
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	return nil
}

// loadInt reads key, parses it as an integer, and sets *dst if the value is
// in the range (min, max]. Returns an error if the value cannot be parsed or
// falls outside the valid range
func loadInt(v *viper.Viper, key string, dst *int, min, max int) error {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	if n <= min || n > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, n, min+1, max)
	}
	*dst = n
	return nil
}

func loadDuration(v *viper.Viper, key string, dst *time.Duration) error {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	*dst = d
	return nil
}

func splitList(s, sep string) []string {
	var res []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			res = append(res, p)
		}
	}
	return res
}
