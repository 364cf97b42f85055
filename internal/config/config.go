package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"parking-console/internal/logger"
)

const (
	configName = ".parking-console"
	envPrefix  = "PARKING"

	KeyBaseURL         = "base_url"
	KeySheetID         = "sheet_id"
	KeySheetAPIKey     = "sheet_api_key"
	KeySheetEndpoint   = "sheet_endpoint"
	KeyPollInterval    = "poll_interval"
	KeyRecordsInterval = "records_interval"
	KeyPollTimeout     = "poll_timeout"
	KeyPreviewSize     = "preview_size"
	KeySessionToken    = "session_token"
	KeySessionSecret   = "session_secret"
	KeySessionTTL      = "session_ttl"
	KeyOperatorEmail   = "operator.email"
	KeyOperatorHash    = "operator.password_hash"
	KeyExporterPort    = "exporter.port"
	KeyLog             = "log"
)

// Settings is the typed view of the configuration.
type Settings struct {
	BaseURL         string
	SheetID         string
	SheetAPIKey     string
	SheetEndpoint   string
	PollInterval    time.Duration
	RecordsInterval time.Duration
	PollTimeout     time.Duration
	PreviewSize     int
	SessionSecret   string
	SessionTTL      time.Duration
	OperatorEmail   string
	OperatorHash    string
	ExporterPort    string
	Log             logger.Config
}

func setDefaults() {
	viper.SetDefault(KeyBaseURL, "http://localhost:5000")
	viper.SetDefault(KeyPollInterval, "5s")
	viper.SetDefault(KeyRecordsInterval, "1m")
	viper.SetDefault(KeyPollTimeout, "10s")
	viper.SetDefault(KeyPreviewSize, 20)
	viper.SetDefault(KeySessionTTL, "24h")
	viper.SetDefault(KeyExporterPort, "9100")
	viper.SetDefault("log.level", "info")
}

// InitConfig reads .env, the config file and PARKING_* environment variables.
func InitConfig(cfgFile string) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log := logger.WithComponent("config")
		log.Warn().Err(err).Msg("Could not load .env file")
	}

	setDefaults()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search config in home directory with name ".parking-console" (without extension).
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(configName)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log := logger.WithComponent("config")
			log.Warn().Err(err).Msg("Could not read config file")
		}
	}
}

// Load snapshots the current configuration.
func Load() Settings {
	return Settings{
		BaseURL:         strings.TrimRight(viper.GetString(KeyBaseURL), "/"),
		SheetID:         viper.GetString(KeySheetID),
		SheetAPIKey:     viper.GetString(KeySheetAPIKey),
		SheetEndpoint:   viper.GetString(KeySheetEndpoint),
		PollInterval:    viper.GetDuration(KeyPollInterval),
		RecordsInterval: viper.GetDuration(KeyRecordsInterval),
		PollTimeout:     viper.GetDuration(KeyPollTimeout),
		PreviewSize:     viper.GetInt(KeyPreviewSize),
		SessionSecret:   viper.GetString(KeySessionSecret),
		SessionTTL:      viper.GetDuration(KeySessionTTL),
		OperatorEmail:   viper.GetString(KeyOperatorEmail),
		OperatorHash:    viper.GetString(KeyOperatorHash),
		ExporterPort:    viper.GetString(KeyExporterPort),
		Log: logger.Config{
			Level:      viper.GetString("log.level"),
			Debug:      viper.GetBool("log.debug"),
			Output:     viper.GetString("log.output"),
			TimeFormat: viper.GetString("log.time_format"),
			Pretty:     viper.GetBool("log.pretty"),
		},
	}
}

// Set stores a value and writes the config file.
func Set(key string, value interface{}) error {
	viper.Set(key, value)
	return write()
}

func write() error {
	// Ensure the file exists before writing
	if err := viper.WriteConfig(); err != nil {
		// If file doesn't exist, create it
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return viper.SafeWriteConfig()
		}
		// If it exists but failed to write, try writing to default path
		home, _ := os.UserHomeDir()
		path := filepath.Join(home, configName+".yaml")
		return viper.WriteConfigAs(path)
	}
	return nil
}

// TokenStore persists the session token in the config file.
type TokenStore struct{}

func (TokenStore) LoadToken() string { return viper.GetString(KeySessionToken) }

func (TokenStore) SaveToken(token string) error { return Set(KeySessionToken, token) }

func (TokenStore) ClearToken() error { return Set(KeySessionToken, "") }
