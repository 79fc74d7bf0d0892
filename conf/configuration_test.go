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

package conf_test

import (
	"os"
	"time"

	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	conf "github.com/yardgoats-tracker/notification-service/conf"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

func mustLoadConfiguration(envVar string) {
	_, err := conf.LoadConfiguration(envVar, "../tests/config1")
	if err != nil {
		panic(err)
	}
}

func mustSetEnv(t *testing.T, key, val string) {
	t.Setenv(key, val)
}

// TestLoadDefaultConfiguration loads a configuration file for testing
func TestLoadDefaultConfiguration(t *testing.T) {
	os.Clearenv()
	mustLoadConfiguration("nonExistingEnvVar")
}

// TestLoadConfigurationFromEnvVariable tests loading the config. file for testing from an environment variable
func TestLoadConfigurationFromEnvVariable(t *testing.T) {
	os.Clearenv()

	mustSetEnv(t, "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE", "../tests/config2")
	mustLoadConfiguration("YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE")
}

// TestLoadConfigurationNonEnvVarUnknownConfigFile tests loading an unexisting config file when no environment variable is provided
func TestLoadConfigurationNonEnvVarUnknownConfigFile(t *testing.T) {
	_, err := conf.LoadConfiguration("", "foobar")
	assert.Nil(t, err)
}

// TestLoadConfigurationBadConfigFile tests loading a broken config file when no environment variable is provided
func TestLoadConfigurationBadConfigFile(t *testing.T) {
	_, err := conf.LoadConfiguration("", "../tests/config3")
	assert.Contains(t, err.Error(), `fatal error config file: While parsing config:`)
}

// TestLoadingConfigurationEnvVariableBadValueNoDefaultConfig tests loading a non-existent configuration file set in environment
func TestLoadingConfigurationEnvVariableBadValueNoDefaultConfig(t *testing.T) {
	os.Clearenv()

	mustSetEnv(t, "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE", "non existing file")

	_, err := conf.LoadConfiguration("YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE", "")
	assert.Contains(t, err.Error(), `fatal error config file: Config File "non existing file" Not Found in`)
}

// TestLoadingConfigurationEnvVariableBadValueDefaultConfigFailure tests that if env var is provided, it must point to a valid config file
func TestLoadingConfigurationEnvVariableBadValueDefaultConfigFailure(t *testing.T) {
	os.Clearenv()

	mustSetEnv(t, "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE", "non existing file")

	_, err := conf.LoadConfiguration("YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE", "../tests/config1")
	assert.Contains(t, err.Error(), `fatal error config file: Config File "non existing file" Not Found in`)
}

// TestLoadConfigurationFromEnvOnly tests loading the configuration from environment variables when no config file exists
func TestLoadConfigurationFromEnvOnly(t *testing.T) {
	os.Clearenv()

	mustSetEnv(t, "YARDGOATS_NOTIFICATION_SERVICE__STORAGE__DB_DRIVER", "sqlite3")
	mustSetEnv(t, "YARDGOATS_NOTIFICATION_SERVICE__NOTIFICATIONS__LEAD_TIME_DAYS", "7")

	config, err := conf.LoadConfiguration("", "foobar")
	assert.Nil(t, err)

	assert.Equal(t, "sqlite3", conf.GetStorageConfiguration(config).Driver)
	assert.Equal(t, 7, conf.GetNotificationsConfiguration(config).LeadTimeDays)
}

// TestLoadStorageConfiguration tests loading the storage configuration sub-tree
func TestLoadStorageConfiguration(t *testing.T) {
	envVar := "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE"

	mustSetEnv(t, envVar, "../tests/config2")
	config, err := conf.LoadConfiguration(envVar, "")
	assert.Nil(t, err, "Failed loading configuration file from env var!")

	storageCfg := conf.GetStorageConfiguration(config)

	assert.Equal(t, "postgres", storageCfg.Driver)
	assert.Equal(t, "tester", storageCfg.PGUsername)
	assert.Equal(t, "secret", storageCfg.PGPassword)
	assert.Equal(t, "database", storageCfg.PGHost)
	assert.Equal(t, 5433, storageCfg.PGPort)
	assert.Equal(t, "yardgoats_test", storageCfg.PGDBName)
	assert.Equal(t, true, storageCfg.LogSQLQueries)
}

// TestLoadScheduleConfiguration tests loading the schedule source configuration sub-tree
func TestLoadScheduleConfiguration(t *testing.T) {
	envVar := "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE"
	expectedTimeout, _ := time.ParseDuration("5s")

	mustSetEnv(t, envVar, "../tests/config2")
	config, err := conf.LoadConfiguration(envVar, "")
	assert.Nil(t, err, "Failed loading configuration file from env var!")

	scheduleCfg := conf.GetScheduleConfiguration(config)

	assert.Equal(t, "http://localhost:8080/api/v1/schedule", scheduleCfg.APIURL)
	assert.Equal(t, 538, scheduleCfg.TeamID)
	assert.Equal(t, 12, scheduleCfg.SportID)
	assert.Equal(t, "R", scheduleCfg.GameType)
	assert.Equal(t, "America/New_York", scheduleCfg.Timezone)
	assert.Equal(t, expectedTimeout, scheduleCfg.Timeout)
}

// TestLoadPromotionsConfiguration tests loading the promotions source configuration sub-tree
func TestLoadPromotionsConfiguration(t *testing.T) {
	envVar := "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE"
	expectedTimeout, _ := time.ParseDuration("5s")

	mustSetEnv(t, envVar, "../tests/config2")
	config, err := conf.LoadConfiguration(envVar, "")
	assert.Nil(t, err, "Failed loading configuration file from env var!")

	promotionsCfg := conf.GetPromotionsConfiguration(config)

	assert.Equal(t, "http://localhost:8080/promotions", promotionsCfg.URL)
	assert.Equal(t, expectedTimeout, promotionsCfg.Timeout)
}

// TestLoadNotificationsConfiguration tests loading the notifications configuration sub-tree
func TestLoadNotificationsConfiguration(t *testing.T) {
	envVar := "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE"
	expectedThreshold, _ := time.ParseDuration("24h")

	mustSetEnv(t, envVar, "../tests/config2")
	config, err := conf.LoadConfiguration(envVar, "")
	assert.Nil(t, err, "Failed loading configuration file from env var!")

	notificationsCfg := conf.GetNotificationsConfiguration(config)

	assert.Equal(t, 3, notificationsCfg.LeadTimeDays)
	assert.Equal(t, expectedThreshold, notificationsCfg.StalenessThreshold)
}

// TestLoadSMSConfiguration tests loading the SMS provider configuration sub-tree
func TestLoadSMSConfiguration(t *testing.T) {
	envVar := "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE"

	mustSetEnv(t, envVar, "../tests/config2")
	config, err := conf.LoadConfiguration(envVar, "")
	assert.Nil(t, err, "Failed loading configuration file from env var!")

	smsCfg := conf.GetSMSConfiguration(config)

	assert.True(t, smsCfg.Enabled)
	assert.Equal(t, "ACtest", smsCfg.AccountSID)
	assert.Equal(t, "+18605550000", smsCfg.FromNumber)
}

// TestLoadEmailConfiguration tests loading the email provider configuration sub-tree
func TestLoadEmailConfiguration(t *testing.T) {
	envVar := "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE"

	mustSetEnv(t, envVar, "../tests/config2")
	config, err := conf.LoadConfiguration(envVar, "")
	assert.Nil(t, err, "Failed loading configuration file from env var!")

	emailCfg := conf.GetEmailConfiguration(config)

	assert.True(t, emailCfg.Enabled)
	assert.Equal(t, "mail.example.com", emailCfg.SMTPHost)
	assert.Equal(t, 587, emailCfg.SMTPPort)
	assert.Equal(t, "alerts@example.com", emailCfg.FromAddress)
}

// TestLoadAuditConfiguration tests loading the audit stream configuration sub-tree
func TestLoadAuditConfiguration(t *testing.T) {
	envVar := "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE"
	expectedTimeout, _ := time.ParseDuration("20s")

	mustSetEnv(t, envVar, "../tests/config2")
	config, err := conf.LoadConfiguration(envVar, "")
	assert.Nil(t, err, "Failed loading configuration file from env var!")

	auditCfg := conf.GetAuditConfiguration(config)

	assert.True(t, auditCfg.Enabled)
	assert.Equal(t, "localhost:29092", auditCfg.Address)
	assert.Equal(t, "yardgoats_test_audit", auditCfg.Topic)
	assert.Equal(t, expectedTimeout, auditCfg.Timeout)
}

// TestLoadMetricsConfiguration tests loading the metrics configuration sub-tree
func TestLoadMetricsConfiguration(t *testing.T) {
	envVar := "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE"

	mustSetEnv(t, envVar, "../tests/config2")
	config, err := conf.LoadConfiguration(envVar, "")
	assert.Nil(t, err, "Failed loading configuration file from env var!")

	metricsCfg := conf.GetMetricsConfiguration(config)

	assert.Equal(t, "yardgoats_test", metricsCfg.Job)
	assert.Equal(t, "yardgoats", metricsCfg.Namespace)
	assert.Equal(t, "http://localhost:9091", metricsCfg.GatewayURL)
	assert.Equal(t, 2, metricsCfg.Retries)
}

// TestLoadCleanerConfiguration tests loading the cleaner configuration sub-tree
func TestLoadCleanerConfiguration(t *testing.T) {
	envVar := "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE"

	mustSetEnv(t, envVar, "../tests/config2")
	config, err := conf.LoadConfiguration(envVar, "")
	assert.Nil(t, err, "Failed loading configuration file from env var!")

	cleanerCfg := conf.GetCleanerConfiguration(config)

	assert.Equal(t, "30 days", cleanerCfg.MaxAge)
}

// TestLoadProcessingConfiguration tests loading the processing configuration sub-tree
func TestLoadProcessingConfiguration(t *testing.T) {
	envVar := "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE"

	mustSetEnv(t, envVar, "../tests/config2")
	config, err := conf.LoadConfiguration(envVar, "")
	assert.Nil(t, err, "Failed loading configuration file from env var!")

	processingCfg := conf.GetProcessingConfiguration(config)

	assert.True(t, processingCfg.FilterAllowedRecipients)
	assert.Equal(t, []string{"Dad", "Mom"}, processingCfg.AllowedRecipients)
	assert.True(t, processingCfg.FilterBlockedRecipients)
	assert.Equal(t, []string{"Grandpa"}, processingCfg.BlockedRecipients)
}

// TestLoadLoggingConfiguration tests loading the logging configuration sub-tree
func TestLoadLoggingConfiguration(t *testing.T) {
	envVar := "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE"

	mustSetEnv(t, envVar, "../tests/config2")
	config, err := conf.LoadConfiguration(envVar, "")
	assert.Nil(t, err, "Failed loading configuration file from env var!")

	loggingCfg := conf.GetLoggingConfiguration(config)

	assert.False(t, loggingCfg.Debug)
	assert.Equal(t, "debug", loggingCfg.LogLevel)
}

// TestLoadConfigurationOverrideFromEnv tests overriding configuration by env variables
func TestLoadConfigurationOverrideFromEnv(t *testing.T) {
	os.Clearenv()

	const configPath = "../tests/config1"

	config, err := conf.LoadConfiguration("", configPath)
	assert.NoError(t, err)

	storageCfg := conf.GetStorageConfiguration(config)
	assert.Equal(t, "sqlite3", storageCfg.Driver)

	mustSetEnv(t, "YARDGOATS_NOTIFICATION_SERVICE__STORAGE__DB_DRIVER", "postgres")
	mustSetEnv(t, "YARDGOATS_NOTIFICATION_SERVICE__STORAGE__PG_PASSWORD", "some password")

	config, err = conf.LoadConfiguration("", configPath)
	assert.NoError(t, err)

	storageCfg = conf.GetStorageConfiguration(config)
	assert.Equal(t, "postgres", storageCfg.Driver)
	assert.Equal(t, "some password", storageCfg.PGPassword)
}
