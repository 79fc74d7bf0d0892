/*
Copyright © 2026 yardgoats-tracker contributors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package conf

// This source file contains definition of data type named ConfigStruct that
// represents configuration of the notification service. This source file
// also contains function named LoadConfiguration that can be used to load
// configuration from provided configuration file and/or from environment
// variables. Additionally several specific functions named
// GetStorageConfiguration, GetLoggingConfiguration, GetScheduleConfiguration
// etc. are to be used to return specific configuration options.

// Default name of configuration file is config.toml
// It can be changed via environment variable
// YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE

// An example of configuration file that can be used in devel environment:
//
// [storage]
// db_driver = "sqlite3"
// sqlite_db_file = "data/yardgoats.db"
//
// [logging]
// debug = true
// log_level = "info"
//
// [notifications]
// lead_time_days = 5
// staleness_threshold = "48h"

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// ConfigStruct is a structure holding the whole notification service
// configuration
type ConfigStruct struct {
	Logging       LoggingConfiguration       `mapstructure:"logging" toml:"logging"`
	Storage       StorageConfiguration       `mapstructure:"storage" toml:"storage"`
	Schedule      ScheduleConfiguration      `mapstructure:"schedule" toml:"schedule"`
	Promotions    PromotionsConfiguration    `mapstructure:"promotions" toml:"promotions"`
	Notifications NotificationsConfiguration `mapstructure:"notifications" toml:"notifications"`
	SMS           SMSConfiguration           `mapstructure:"sms" toml:"sms"`
	Email         EmailConfiguration         `mapstructure:"email" toml:"email"`
	Audit         AuditConfiguration         `mapstructure:"audit" toml:"audit"`
	Metrics       MetricsConfiguration       `mapstructure:"metrics" toml:"metrics"`
	Cleaner       CleanerConfiguration       `mapstructure:"cleaner" toml:"cleaner"`
	Processing    ProcessingConfiguration    `mapstructure:"processing" toml:"processing"`
}

// LoggingConfiguration represents configuration for logging in general
type LoggingConfiguration struct {
	// Debug enables pretty colored logging
	Debug bool `mapstructure:"debug" toml:"debug"`

	// LogLevel sets logging level to show. Possible values are:
	// "debug"
	// "info"
	// "warn", "warning"
	// "error"
	// "fatal"
	//
	// logging level won't be changed if value is not one of listed above
	LogLevel string `mapstructure:"log_level" toml:"log_level"`
}

// StorageConfiguration represents configuration of the data storage. Both
// PostgreSQL (production) and SQLite (local/CI) drivers are supported.
type StorageConfiguration struct {
	Driver        string `mapstructure:"db_driver"       toml:"db_driver"`
	SQLiteDBFile  string `mapstructure:"sqlite_db_file"  toml:"sqlite_db_file"`
	PGUsername    string `mapstructure:"pg_username"     toml:"pg_username"`
	PGPassword    string `mapstructure:"pg_password"     toml:"pg_password"`
	PGHost        string `mapstructure:"pg_host"         toml:"pg_host"`
	PGPort        int    `mapstructure:"pg_port"         toml:"pg_port"`
	PGDBName      string `mapstructure:"pg_db_name"      toml:"pg_db_name"`
	PGParams      string `mapstructure:"pg_params"       toml:"pg_params"`
	LogSQLQueries bool   `mapstructure:"log_sql_queries" toml:"log_sql_queries"`
}

// ScheduleConfiguration represents configuration of the schedule source (the
// MLB Stats API) and of the normalization applied to fetched entries.
type ScheduleConfiguration struct {
	APIURL    string        `mapstructure:"api_url"    toml:"api_url"`
	TeamID    int           `mapstructure:"team_id"    toml:"team_id"`
	SportID   int           `mapstructure:"sport_id"   toml:"sport_id"`
	GameType  string        `mapstructure:"game_type"  toml:"game_type"`
	Timezone  string        `mapstructure:"timezone"   toml:"timezone"`
	TicketURL string        `mapstructure:"ticket_url" toml:"ticket_url"`
	Timeout   time.Duration `mapstructure:"timeout"    toml:"timeout"`
}

// PromotionsConfiguration represents configuration of the promotions page
// source.
type PromotionsConfiguration struct {
	URL     string        `mapstructure:"url"     toml:"url"`
	Timeout time.Duration `mapstructure:"timeout" toml:"timeout"`
}

// NotificationsConfiguration represents the configuration specific to the
// alert selection and the data-freshness guard.
type NotificationsConfiguration struct {
	LeadTimeDays       int           `mapstructure:"lead_time_days"      toml:"lead_time_days"`
	StalenessThreshold time.Duration `mapstructure:"staleness_threshold" toml:"staleness_threshold"`
}

// SMSConfiguration represents configuration of the Twilio SMS provider
type SMSConfiguration struct {
	Enabled    bool          `mapstructure:"enabled"     toml:"enabled"`
	AccountSID string        `mapstructure:"account_sid" toml:"account_sid"`
	AuthToken  string        `mapstructure:"auth_token"  toml:"auth_token"`
	FromNumber string        `mapstructure:"from_number" toml:"from_number"`
	Timeout    time.Duration `mapstructure:"timeout"     toml:"timeout"`
}

// EmailConfiguration represents configuration of the SMTP email provider
type EmailConfiguration struct {
	Enabled     bool   `mapstructure:"enabled"      toml:"enabled"`
	SMTPHost    string `mapstructure:"smtp_host"    toml:"smtp_host"`
	SMTPPort    int    `mapstructure:"smtp_port"    toml:"smtp_port"`
	Username    string `mapstructure:"username"     toml:"username"`
	Password    string `mapstructure:"password"     toml:"password"`
	FromAddress string `mapstructure:"from_address" toml:"from_address"`
}

// AuditConfiguration represents configuration of the Kafka topic that
// receives one event per delivery attempt. Disabled by default.
type AuditConfiguration struct {
	Enabled          bool          `mapstructure:"enabled"           toml:"enabled"`
	Address          string        `mapstructure:"address"           toml:"address"`
	Topic            string        `mapstructure:"topic"             toml:"topic"`
	Timeout          time.Duration `mapstructure:"timeout"           toml:"timeout"`
	SecurityProtocol string        `mapstructure:"security_protocol" toml:"security_protocol"`
	CertPath         string        `mapstructure:"cert_path"         toml:"cert_path"`
	SaslMechanism    string        `mapstructure:"sasl_mechanism"    toml:"sasl_mechanism"`
	SaslUsername     string        `mapstructure:"sasl_username"     toml:"sasl_username"`
	SaslPassword     string        `mapstructure:"sasl_password"     toml:"sasl_password"`
}

// MetricsConfiguration holds metrics related configuration
type MetricsConfiguration struct {
	Job              string        `mapstructure:"job_name" toml:"job_name"`
	Namespace        string        `mapstructure:"namespace" toml:"namespace"`
	Subsystem        string        `mapstructure:"subsystem" toml:"subsystem"`
	GatewayURL       string        `mapstructure:"gateway_url" toml:"gateway_url"`
	GatewayAuthToken string        `mapstructure:"gateway_auth_token" toml:"gateway_auth_token"`
	Retries          int           `mapstructure:"retries" toml:"retries"`
	RetryAfter       time.Duration `mapstructure:"retry_after" toml:"retry_after"`
}

// CleanerConfiguration represents configuration for the main cleaner
type CleanerConfiguration struct {
	// MaxAge is specification of max age for records to be cleaned
	MaxAge string `mapstructure:"max_age" toml:"max_age"`
}

// ProcessingConfiguration represents configuration used during alert
// dispatching: recipients can be explicitly allowed or blocked by name.
type ProcessingConfiguration struct {
	FilterAllowedRecipients bool     `mapstructure:"filter_allowed_recipients" toml:"filter_allowed_recipients"`
	AllowedRecipients       []string `mapstructure:"allowed_recipients"        toml:"allowed_recipients"`
	FilterBlockedRecipients bool     `mapstructure:"filter_blocked_recipients" toml:"filter_blocked_recipients"`
	BlockedRecipients       []string `mapstructure:"blocked_recipients"        toml:"blocked_recipients"`
}

// LoadConfiguration loads configuration from defaultConfigFile, file set in
// configFileEnvVariableName or from env
func LoadConfiguration(configFileEnvVariableName, defaultConfigFile string) (ConfigStruct, error) {
	var config ConfigStruct

	// env. variable holding name of configuration file
	configFile, specified := os.LookupEnv(configFileEnvVariableName)
	if specified {
		// we need to separate the directory name and filename without
		// extension
		directory, basename := filepath.Split(configFile)
		file := strings.TrimSuffix(basename, filepath.Ext(basename))
		// parse the configuration
		viper.SetConfigName(file)
		viper.AddConfigPath(directory)
	} else {
		log.Info().Str("filename", defaultConfigFile).Msg("Parsing configuration file")
		// parse the configuration
		viper.SetConfigName(defaultConfigFile)
		viper.AddConfigPath(".")
	}

	// try to read the whole configuration
	err := viper.ReadInConfig()
	if _, isNotFoundError := err.(viper.ConfigFileNotFoundError); !specified && isNotFoundError {
		// If config file is not present (which might be correct in
		// some environment) we need to read configuration from
		// environment variables. The problem is that Viper is not smart
		// enough to understand the structure of config by itself, so
		// we need to read fake config file
		fakeTomlConfigWriter := new(bytes.Buffer)

		err := toml.NewEncoder(fakeTomlConfigWriter).Encode(config)
		if err != nil {
			return config, err
		}

		fakeTomlConfig := fakeTomlConfigWriter.String()

		viper.SetConfigType("toml")

		err = viper.ReadConfig(strings.NewReader(fakeTomlConfig))
		if err != nil {
			return config, err
		}
	} else if err != nil {
		// error is processed on caller side
		return config, fmt.Errorf("fatal error config file: %s", err)
	}

	// override config from env if there's variable in env

	const envPrefix = "YARDGOATS_NOTIFICATION_SERVICE_"

	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "__"))

	err = viper.Unmarshal(&config)
	return config, err
}

// GetStorageConfiguration returns storage configuration
func GetStorageConfiguration(config ConfigStruct) StorageConfiguration {
	return config.Storage
}

// GetLoggingConfiguration returns logging configuration
func GetLoggingConfiguration(config ConfigStruct) LoggingConfiguration {
	return config.Logging
}

// GetScheduleConfiguration returns schedule source configuration
func GetScheduleConfiguration(config ConfigStruct) ScheduleConfiguration {
	return config.Schedule
}

// GetPromotionsConfiguration returns promotions source configuration
func GetPromotionsConfiguration(config ConfigStruct) PromotionsConfiguration {
	return config.Promotions
}

// GetNotificationsConfiguration returns configuration related to alert
// selection and freshness checking
func GetNotificationsConfiguration(config ConfigStruct) NotificationsConfiguration {
	return config.Notifications
}

// GetSMSConfiguration returns the Twilio SMS provider configuration
func GetSMSConfiguration(config ConfigStruct) SMSConfiguration {
	return config.SMS
}

// GetEmailConfiguration returns the SMTP email provider configuration
func GetEmailConfiguration(config ConfigStruct) EmailConfiguration {
	return config.Email
}

// GetAuditConfiguration returns the audit stream configuration
func GetAuditConfiguration(config ConfigStruct) AuditConfiguration {
	return config.Audit
}

// GetMetricsConfiguration returns metrics configuration
func GetMetricsConfiguration(config ConfigStruct) MetricsConfiguration {
	return config.Metrics
}

// GetCleanerConfiguration returns cleaner configuration
func GetCleanerConfiguration(config ConfigStruct) CleanerConfiguration {
	return config.Cleaner
}

// GetProcessingConfiguration returns processing configuration
func GetProcessingConfiguration(config ConfigStruct) ProcessingConfiguration {
	return config.Processing
}
