package config

import (
	"encoding/json"
	"os"

	"github.com/mlebedeva/projectdock/internal/flagx"
	"github.com/mlebedeva/projectdock/internal/timex"
)

// JsonConfig is the intermediate DTO for reading JSON configuration files.
// It uses timex.Duration for interval fields, which parses both string
// values such as "30m" and integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config struct.
type JsonConfig struct {
	EndpointAddr                string         `json:"endpoint_addr"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	S3AccessKey                 string         `json:"s3_access_key"`
	S3SecretKey                 string         `json:"s3_secret_key"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	S3DocumentBucket            string         `json:"s3_document_bucket"`
	S3LogoBucket                string         `json:"s3_logo_bucket"`
	LoginRatePerMinute          int            `json:"login_rate_per_minute"`
	LoginRateBurst              int            `json:"login_rate_burst"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config. The file path comes from the -c/-config command-line flags; when
// neither is set, no JSON file is loaded. An unreadable or invalid file
// panics: a config file that was asked for but cannot be used is a startup
// error, not something to silently skip.
func parseJson(config *Config) {
	fileName := flagx.JsonConfigFlags()
	if fileName == "" {
		return
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		panic(err)
	}

	jc := &JsonConfig{}
	if err := json.Unmarshal(data, jc); err != nil {
		panic(err)
	}

	if jc.EndpointAddr != "" {
		config.EndpointAddr = jc.EndpointAddr
	}
	if jc.DatabaseDSN != "" {
		config.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.SecretKey != "" {
		config.SecretKey = jc.SecretKey
	}
	if jc.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = jc.AccessTokenValidityDuration.Duration
	}
	if jc.S3AccessKey != "" {
		config.S3AccessKey = jc.S3AccessKey
	}
	if jc.S3SecretKey != "" {
		config.S3SecretKey = jc.S3SecretKey
	}
	if jc.S3Region != "" {
		config.S3Region = jc.S3Region
	}
	if jc.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = jc.S3BaseEndpoint
	}
	if jc.S3DocumentBucket != "" {
		config.S3DocumentBucket = jc.S3DocumentBucket
	}
	if jc.S3LogoBucket != "" {
		config.S3LogoBucket = jc.S3LogoBucket
	}
	if jc.LoginRatePerMinute != 0 {
		config.LoginRatePerMinute = jc.LoginRatePerMinute
	}
	if jc.LoginRateBurst != 0 {
		config.LoginRateBurst = jc.LoginRateBurst
	}
}
