package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/pkg/errors"
)

var ServiceName = "bookings"

// Default locations used when no explicit paths are given on the command line.
var (
	DefaultConfigPath = "/etc/mentorhub/bookings/config.yaml"
	DefaultDotEnvPath = ".env"
)

// Specification defines the configuration settings for the booking service.
type Specification struct {
	DatabaseURI         string
	RunSchemaMigrations bool
	ReinitDB            bool
	ListenPort          int
	CalAPIBaseURL       string
	CalAPIKey           string
	CalWebhookSecret    string
	DefaultSessionCap   int
	ResetCheckInterval  int
}

// load initializes a koanf instance from the optional config file, the optional
// dotenv file, and the environment. Environment variables take precedence over
// settings from the configuration file.
func load(envPrefix, configPath, dotEnvPath string) (*koanf.Koanf, error) {
	k := koanf.New(".")

	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrap(err, "unable to load the dotenv file")
		}
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, "unable to load the configuration file")
		}
	}

	err := k.Load(
		env.Provider(envPrefix, ".",
			func(s string) string {
				return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", -1)
			},
		),
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load settings from the environment")
	}

	return k, nil
}

// LoadConfig loads the configuration for the booking service.
func LoadConfig(envPrefix, configPath, dotEnvPath string) (*Specification, error) {
	k, err := load(envPrefix, configPath, dotEnvPath)
	if err != nil {
		return nil, err
	}

	var s Specification

	s.DatabaseURI = k.String("database.uri")
	if s.DatabaseURI == "" {
		return nil, errors.New("database.uri or BOOKINGS_DATABASE_URI must be set")
	}

	s.RunSchemaMigrations = k.Bool("database.migrate")
	s.ReinitDB = k.Bool("reinit.db")

	s.ListenPort = k.Int("listen.port")
	if s.ListenPort == 0 {
		s.ListenPort = 9000
	}

	s.CalAPIBaseURL = k.String("calcom.base.url")
	if s.CalAPIBaseURL == "" {
		s.CalAPIBaseURL = "https://api.cal.com/v1"
	}

	s.CalAPIKey = k.String("calcom.api.key")
	if s.CalAPIKey == "" {
		return nil, errors.New("calcom.api.key must be set in the configuration file")
	}

	s.CalWebhookSecret = k.String("calcom.webhook.secret")
	if s.CalWebhookSecret == "" {
		return nil, errors.New("calcom.webhook.secret must be set in the configuration file")
	}

	s.DefaultSessionCap = k.Int("quota.default.cap")
	if s.DefaultSessionCap == 0 {
		s.DefaultSessionCap = 1
	}

	s.ResetCheckInterval = k.Int("reset.check.interval")
	if s.ResetCheckInterval == 0 {
		s.ResetCheckInterval = 60
	}

	return &s, nil
}
