package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// dateLayout is the wire format for DATE_START / DATE_END.
const dateLayout = "2006-01-02"

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the status server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`
	// StatusServerEnabled mounts the status HTTP API when true.
	StatusServerEnabled bool `mapstructure:"STATUS_SERVER_ENABLED" default:"true"`

	// Scheduler holds the upstream scheduler API settings.
	Scheduler SchedulerConfig `mapstructure:",squash"`
	// Scan holds the date range, filter and fetch-engine settings.
	Scan ScanConfig `mapstructure:",squash"`
	// Slack holds the Slack notification sink settings.
	Slack SlackConfig `mapstructure:",squash"`
	// Output holds the export sink settings.
	Output OutputConfig `mapstructure:",squash"`
	// Cache holds the optional upstream response cache settings.
	Cache CacheConfig `mapstructure:",squash"`
}

// SchedulerConfig holds the upstream appointment scheduler API settings.
type SchedulerConfig struct {
	// URL is the base URL of the scheduler API.
	URL string `mapstructure:"SCHEDULER_API_URL" default:"https://ttp.cbp.dhs.gov/schedulerapi"`
	// ServiceName is the appointment service queried for availability.
	ServiceName string `mapstructure:"SCHEDULER_SERVICE_NAME" default:"Global Entry"`
	// FetchTimeoutSeconds bounds each individual fetch attempt.
	FetchTimeoutSeconds int `mapstructure:"FETCH_TIMEOUT_SECONDS" default:"10"`
}

// ScanConfig holds the date range, region filter and fetch-engine settings.
type ScanConfig struct {
	// DateStart is the first search date (YYYY-MM-DD). Empty means today.
	DateStart string `mapstructure:"DATE_START"`
	// DateEnd is the last search date (YYYY-MM-DD). Empty means Dec 31 of
	// the current year.
	DateEnd string `mapstructure:"DATE_END"`
	// SearchStates is a comma-separated list of 2-letter region codes.
	SearchStates string `mapstructure:"SEARCH_STATES" required:"true"`
	// RateLimitSeconds is the minimum spacing between fetch attempts,
	// shared across all workers. 0 disables throttling.
	RateLimitSeconds float64 `mapstructure:"RATE_LIMIT_SECONDS" default:"0.25"`
	// MaxConcurrentFetches bounds simultaneously in-flight fetches.
	MaxConcurrentFetches int `mapstructure:"MAX_CONCURRENT_FETCHES" default:"4"`
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int `mapstructure:"MAX_RETRIES" default:"3"`
	// FetchIntervalMinutes is the pause between cycles; 0 runs once.
	FetchIntervalMinutes int `mapstructure:"FETCH_INTERVAL_MINUTES" default:"0"`
}

// SlackConfig holds the Slack notification sink settings.
type SlackConfig struct {
	// Enabled routes cycle results to Slack instead of the CSV export.
	Enabled bool `mapstructure:"ENABLE_SLACK" default:"false"`
	// Token is the static bearer credential for the Slack API.
	Token string `mapstructure:"SLACK_TOKEN"`
	// ChannelID is the destination channel.
	ChannelID string `mapstructure:"SLACK_CHANNEL_ID"`
}

// OutputConfig holds the export sink settings.
type OutputConfig struct {
	// CSVPath is the destination file for the tabular export.
	CSVPath string `mapstructure:"CSV_OUTPUT_PATH" default:"appointments.csv"`
	// SinkErrorsFatal stops the cycle loop on the first sink failure.
	SinkErrorsFatal bool `mapstructure:"SINK_ERRORS_FATAL" default:"false"`
}

// CacheConfig holds the optional upstream response cache settings.
type CacheConfig struct {
	// RedisURL enables the response cache when set
	// (redis://[:password@]host[:port][/database]).
	RedisURL string `mapstructure:"REDIS_URL"`
	// TTLSeconds is the lifetime of cached upstream responses.
	TTLSeconds int `mapstructure:"CACHE_TTL_SECONDS" default:"60"`
}

// States returns the parsed list of region codes from SearchStates.
func (s ScanConfig) States() []string {
	parts := strings.Split(s.SearchStates, ",")
	states := make([]string, 0, len(parts))
	for _, p := range parts {
		if code := strings.TrimSpace(p); code != "" {
			states = append(states, code)
		}
	}
	return states
}

// Dates resolves the configured date bounds relative to now. An empty start
// means today; an empty end means Dec 31 of the current year.
func (s ScanConfig) Dates(now time.Time) (time.Time, time.Time, error) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(now.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)

	var err error
	if s.DateStart != "" {
		start, err = time.Parse(dateLayout, s.DateStart)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid DATE_START %q: %w", s.DateStart, err)
		}
	}
	if s.DateEnd != "" {
		end, err = time.Parse(dateLayout, s.DateEnd)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid DATE_END %q: %w", s.DateEnd, err)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("DATE_END %s precedes DATE_START %s",
			end.Format(dateLayout), start.Format(dateLayout))
	}
	return start, end, nil
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks domain constraints beyond required-field presence.
// Violations are fatal at startup, before any fetch begins.
func (c *AppConfig) Validate() error {
	states := c.Scan.States()
	if len(states) == 0 {
		return errors.New("SEARCH_STATES must list at least one region code")
	}
	for _, code := range states {
		if !isRegionCode(code) {
			return fmt.Errorf("invalid region code %q: expected a 2-letter uppercase code", code)
		}
	}

	if _, _, err := c.Scan.Dates(time.Now()); err != nil {
		return err
	}

	if c.Scan.RateLimitSeconds < 0 {
		return errors.New("RATE_LIMIT_SECONDS must not be negative")
	}
	if c.Scan.MaxConcurrentFetches < 1 {
		return errors.New("MAX_CONCURRENT_FETCHES must be at least 1")
	}
	if c.Scan.MaxRetries < 0 {
		return errors.New("MAX_RETRIES must not be negative")
	}
	if c.Scan.FetchIntervalMinutes < 0 {
		return errors.New("FETCH_INTERVAL_MINUTES must not be negative")
	}
	if c.Scheduler.FetchTimeoutSeconds < 1 {
		return errors.New("FETCH_TIMEOUT_SECONDS must be at least 1")
	}
	if c.Cache.TTLSeconds < 0 {
		return errors.New("CACHE_TTL_SECONDS must not be negative")
	}

	if c.Slack.Enabled && (c.Slack.Token == "" || c.Slack.ChannelID == "") {
		return errors.New("ENABLE_SLACK requires SLACK_TOKEN and SLACK_CHANNEL_ID")
	}

	return nil
}

// isRegionCode reports whether code is a 2-letter uppercase region code.
func isRegionCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// processTags iterates over the struct fields and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			v.BindEnv(key)
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		required := field.Tag.Get("required")
		if required == "true" {
			value := val.Field(i)
			if isZero(value) {
				key := field.Tag.Get("mapstructure")
				return fmt.Errorf("missing required configuration: %s", key)
			}
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
