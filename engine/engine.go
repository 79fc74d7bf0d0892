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

// Package engine contains the whole notification pipeline: storage access,
// schedule and promotions ingestion, game selection, payload rendering and
// delivery dispatching. The service runs as a batch job, typically twice a
// day from a scheduler: once with -run-ingest, once with -run-alerts.
package engine

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yardgoats-tracker/notification-service/conf"
	"github.com/yardgoats-tracker/notification-service/producer"
	"github.com/yardgoats-tracker/notification-service/producer/disabled"
	"github.com/yardgoats-tracker/notification-service/producer/kafka"
	"github.com/yardgoats-tracker/notification-service/producer/smtp"
	"github.com/yardgoats-tracker/notification-service/producer/twilio"
	"github.com/yardgoats-tracker/notification-service/types"
)

// Configuration-related constants
const (
	configFileEnvVariableName = "YARDGOATS_NOTIFICATION_SERVICE_CONFIG_FILE"
	defaultConfigFileName     = "config"
)

// Exit codes
const (
	// ExitStatusOK means that the tool finished with success
	ExitStatusOK = iota
	// ExitStatusConfiguration is an error code related to program configuration
	ExitStatusConfiguration
	// ExitStatusError is a general error code
	ExitStatusError
	// ExitStatusStorageError is returned in case of any storage-related error
	ExitStatusStorageError
	// ExitStatusFetchError is returned in case schedule or promotions cannot be fetched correctly
	ExitStatusFetchError
	// ExitStatusProducerError is returned when a delivery channel cannot be initialized
	ExitStatusProducerError
	// ExitStatusKafkaBrokerError is for kafka broker connection establishment errors
	ExitStatusKafkaBrokerError
	// ExitStatusCleanerError is raised when clean operation is not successful
	ExitStatusCleanerError
	// ExitStatusMetricsError is raised when prometheus metrics cannot be pushed
	ExitStatusMetricsError
	// ExitStatusRecipientFilterError is raised when recipient filter is not set correctly
	ExitStatusRecipientFilterError
)

// Messages
const (
	serviceName              = "Yard Goats Notification Service"
	versionMessage           = "Yard Goats notification service version 1.0"
	authorsMessage           = "yardgoats-tracker contributors"
	separator                = "------------------------------------------------------------"
	operationFailedMessage   = "Operation failed"
	metricsPushFailedMessage = "Couldn't push prometheus metrics"
)

// showVersion function displays version information.
func showVersion() {
	fmt.Println(versionMessage)
}

// showAuthors function displays information about authors.
func showAuthors() {
	fmt.Println(authorsMessage)
}

// showConfiguration function displays actual configuration.
func showConfiguration(config conf.ConfigStruct) {
	storageConfig := conf.GetStorageConfiguration(config)
	log.Info().
		Str("Driver", storageConfig.Driver).
		Str("SQLite file", storageConfig.SQLiteDBFile).
		Str("DB Name", storageConfig.PGDBName).
		Str("Username", storageConfig.PGUsername). // password is omitted on purpose
		Str("Host", storageConfig.PGHost).
		Int("Port", storageConfig.PGPort).
		Bool("LogSQLQueries", storageConfig.LogSQLQueries).
		Msg("Storage configuration")

	scheduleConfig := conf.GetScheduleConfiguration(config)
	log.Info().
		Str("API URL", scheduleConfig.APIURL).
		Int("Team ID", scheduleConfig.TeamID).
		Int("Sport ID", scheduleConfig.SportID).
		Str("Game type", scheduleConfig.GameType).
		Str("Timezone", scheduleConfig.Timezone).
		Str("Ticket URL", scheduleConfig.TicketURL).
		Str("Timeout", scheduleConfig.Timeout.String()).
		Msg("Schedule configuration")

	promotionsConfig := conf.GetPromotionsConfiguration(config)
	log.Info().
		Str("URL", promotionsConfig.URL).
		Str("Timeout", promotionsConfig.Timeout.String()).
		Msg("Promotions configuration")

	notificationConfig := conf.GetNotificationsConfiguration(config)
	log.Info().
		Int("Lead time days", notificationConfig.LeadTimeDays).
		Str("Staleness threshold", notificationConfig.StalenessThreshold.String()).
		Msg("Notifications configuration")

	smsConfig := conf.GetSMSConfiguration(config)
	log.Info().
		Bool("Enabled", smsConfig.Enabled).
		Str("Account SID", smsConfig.AccountSID). // auth token is omitted on purpose
		Str("From number", smsConfig.FromNumber).
		Msg("SMS configuration")

	emailConfig := conf.GetEmailConfiguration(config)
	log.Info().
		Bool("Enabled", emailConfig.Enabled).
		Str("SMTP host", emailConfig.SMTPHost).
		Int("SMTP port", emailConfig.SMTPPort).
		Str("Username", emailConfig.Username). // password is omitted on purpose
		Str("From address", emailConfig.FromAddress).
		Msg("Email configuration")

	auditConfig := conf.GetAuditConfiguration(config)
	log.Info().
		Bool("Enabled", auditConfig.Enabled).
		Str("Address", auditConfig.Address).
		Str("SecurityProtocol", auditConfig.SecurityProtocol).
		Str("SaslMechanism", auditConfig.SaslMechanism).
		Str("Topic", auditConfig.Topic).
		Str("Timeout", auditConfig.Timeout.String()).
		Msg("Audit stream configuration")

	loggingConfig := conf.GetLoggingConfiguration(config)
	log.Info().
		Str("Level", loggingConfig.LogLevel).
		Bool("Pretty colored debug logging", loggingConfig.Debug).
		Msg("Logging configuration")

	metricsConfig := conf.GetMetricsConfiguration(config)

	// Authentication token value is omitted on purpose
	log.Info().
		Str("Job", metricsConfig.Job).
		Str("Namespace", metricsConfig.Namespace).
		Str("Subsystem", metricsConfig.Subsystem).
		Str("Push Gateway", metricsConfig.GatewayURL).
		Int("Retries", metricsConfig.Retries).
		Str("Retry after", metricsConfig.RetryAfter.String()).
		Msg("Metrics configuration")

	processingConfig := conf.GetProcessingConfiguration(config)
	log.Info().
		Bool("Filter allowed recipients", processingConfig.FilterAllowedRecipients).
		Strs("Allowed recipients", processingConfig.AllowedRecipients).
		Bool("Filter blocked recipients", processingConfig.FilterBlockedRecipients).
		Strs("Blocked recipients", processingConfig.BlockedRecipients).
		Msg("Processing configuration")
}

// checkArgs function handles command line options passed to the process
func checkArgs(args *types.CliFlags) {
	switch {
	case args.ShowVersion:
		showVersion()
		os.Exit(ExitStatusOK)
	case args.ShowAuthors:
		showAuthors()
		os.Exit(ExitStatusOK)
	case args.ShowConfiguration:
		// config not loaded yet, just skip the rest of function for
		// now
		return
	case args.InitDatabase:
		// DB only operation, no need for additional args
		return
	case args.PrintOldGamesForCleanup,
		args.PerformOldGamesCleanup,
		args.PrintDeliveryLogForCleanup,
		args.PerformDeliveryLogCleanup:
		// DB only operations, no need for additional args
		return
	default:
	}

	// check if at least one pipeline stage is specified on command line
	if !args.RunIngest && !args.RunAlerts {
		log.Error().Msg("Pipeline stage needs to be specified on command line (-run-ingest and/or -run-alerts)")
		os.Exit(ExitStatusConfiguration)
	}
}

// parseTodayFlag resolves the reference day for the run. The -date flag
// overrides the wall clock, which is how past or future runs are replayed.
func parseTodayFlag(value string) time.Time {
	if value == "" {
		return time.Now()
	}

	today, err := time.Parse(time.DateOnly, value)
	if err != nil {
		log.Error().Err(err).Str("date", value).Msg("Unable to parse -date flag, expected YYYY-MM-DD")
		os.Exit(ExitStatusConfiguration)
	}
	return today
}

// convertLogLevel function converts log level specified in configuration
// file into proper zerolog value
func convertLogLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	}

	return zerolog.DebugLevel
}

// registerMetrics registers metrics using the provided namespace, if any
func registerMetrics(metricsConfig conf.MetricsConfiguration) {
	if metricsConfig.Namespace != "" {
		log.Info().Str("namespace", metricsConfig.Namespace).Msg("Setting metrics namespace")
		AddMetricsWithNamespaceAndSubsystem(
			metricsConfig.Namespace,
			metricsConfig.Subsystem)
	}
}

func closeStorage(storage Storage) error {
	err := storage.Close()
	if err != nil {
		log.Err(err).Msg(operationFailedMessage)
		return err
	}
	return nil
}

func closeNotifier(notifier producer.Notifier) error {
	err := notifier.Close()
	if err != nil {
		log.Err(err).Msg(operationFailedMessage)
		return err
	}
	return nil
}

func pushMetrics(metricsConf conf.MetricsConfiguration) {
	err := PushMetrics(metricsConf)
	if err != nil {
		log.Err(err).Msg(metricsPushFailedMessage)
		if metricsConf.RetryAfter == 0 || metricsConf.Retries == 0 {
			os.Exit(ExitStatusMetricsError)
		}
		for i := metricsConf.Retries; i > 0; i-- {
			time.Sleep(metricsConf.RetryAfter)
			log.Info().Msgf("Push metrics. Retrying (%d/%d attempts left)", i, metricsConf.Retries)
			err = PushMetrics(metricsConf)
			if err == nil {
				log.Info().Msg("Metrics pushed successfully. Terminating notification service successfully.")
				return
			}
			log.Err(err).Msg(metricsPushFailedMessage)
		}
		os.Exit(ExitStatusMetricsError)
	}
	log.Info().Msg("Metrics pushed successfully. Terminating notification service successfully.")
}

func deleteOperationSpecified(cliFlags types.CliFlags) bool {
	return cliFlags.PrintOldGamesForCleanup ||
		cliFlags.PerformOldGamesCleanup ||
		cliFlags.PrintDeliveryLogForCleanup ||
		cliFlags.PerformDeliveryLogCleanup
}

// PerformCleanupOnStartup function cleans up old games and old delivery
// records before the pipeline starts
func PerformCleanupOnStartup(storage Storage, cliFlags types.CliFlags) error {
	affected, err := storage.CleanupOldGames(cliFlags.MaxAge)
	if err != nil {
		log.Error().Err(err).Msg(databaseCleanupOldGamesOperationFailedMessage)
		return err
	}
	log.Info().Int(rowsDeletedMessage, affected).Msg("Cleanup `games` on startup finished")

	affected, err = storage.CleanupDeliveryLog(cliFlags.MaxAge)
	if err != nil {
		log.Error().Err(err).Msg(databaseCleanupDeliveryLogOperationFailedMessage)
		return err
	}
	log.Info().Int(rowsDeletedMessage, affected).Msg("Cleanup `alerts_sent` on startup finished")

	return nil
}

// assertNotificationChannel aborts when the alert stage is requested with
// every channel switched off and dry run not set
func assertNotificationChannel(config conf.ConfigStruct, cliFlags types.CliFlags) {
	if cliFlags.DryRun {
		return
	}
	if !conf.GetSMSConfiguration(config).Enabled && !conf.GetEmailConfiguration(config).Enabled {
		log.Error().Msg("No known delivery channel configured. Aborting.")
		os.Exit(ExitStatusConfiguration)
	}
}

// setupSMSNotifier function creates the SMS delivery channel using the
// provided configuration
func setupSMSNotifier(config conf.ConfigStruct) producer.Notifier {
	// channel enable/disable is very important information, let's inform
	// admins about the state
	if !conf.GetSMSConfiguration(config).Enabled {
		log.Info().Msg("SMS channel is disabled")
		return &disabled.Notifier{}
	}
	log.Info().Msg("SMS channel is enabled")

	smsNotifier, err := twilio.New(&config)
	if err != nil {
		ProducerSetupErrors.Inc()
		log.Error().Err(err).Msg("Couldn't initialize SMS channel with the provided config.")
		os.Exit(ExitStatusProducerError)
	}
	return smsNotifier
}

// setupEmailNotifier function creates the email delivery channel using the
// provided configuration
func setupEmailNotifier(config conf.ConfigStruct) producer.Notifier {
	if !conf.GetEmailConfiguration(config).Enabled {
		log.Info().Msg("Email channel is disabled")
		return &disabled.Notifier{}
	}
	log.Info().Msg("Email channel is enabled")

	emailNotifier, err := smtp.New(&config)
	if err != nil {
		ProducerSetupErrors.Inc()
		log.Error().Err(err).Msg("Couldn't initialize email channel with the provided config.")
		os.Exit(ExitStatusProducerError)
	}
	return emailNotifier
}

// setupAuditProducer function creates the delivery audit event producer
// using the provided configuration
func setupAuditProducer(config conf.ConfigStruct) producer.AuditProducer {
	if !conf.GetAuditConfiguration(config).Enabled {
		log.Info().Msg("Audit stream is disabled")
		return &disabled.Producer{}
	}
	log.Info().Msg("Audit stream is enabled")

	auditProducer, err := kafka.New(&config)
	if err != nil {
		ProducerSetupErrors.Inc()
		log.Error().Err(err).Msg("Couldn't initialize Kafka producer with the provided config.")
		os.Exit(ExitStatusKafkaBrokerError)
	}
	return auditProducer
}

// runIngest executes the ingestion stage of the pipeline
func runIngest(config conf.ConfigStruct, storage Storage, cliFlags types.CliFlags, today time.Time) {
	log.Info().Msg(separator)
	log.Info().Msg("Ingestion stage started")

	scheduleFetcher, err := NewScheduleFetcher(conf.GetScheduleConfiguration(config))
	if err != nil {
		os.Exit(ExitStatusConfiguration)
	}
	promotionsFetcher := NewPromotionsFetcher(conf.GetPromotionsConfiguration(config))

	season := cliFlags.Season
	if season == 0 {
		season = today.Year()
	}

	ingestor := NewIngestor(storage, scheduleFetcher, promotionsFetcher)
	stats, err := ingestor.Run(season, today, cliFlags.DryRun)
	if err != nil {
		var fetchErr *ScheduleFetchError
		if errors.As(err, &fetchErr) {
			ScheduleFetchErrors.Inc()
			os.Exit(ExitStatusFetchError)
		}
		log.Err(err).Msg(operationFailedMessage)
		os.Exit(ExitStatusStorageError)
	}

	log.Info().
		Int("games fetched", stats.GamesFetched).
		Int("games stored", stats.GamesStored).
		Int("promotions stored", stats.PromotionsStored).
		Msg("Ingestion stage finished")
}

// runAlerts executes the delivery stage of the pipeline
func runAlerts(config conf.ConfigStruct, storage Storage, cliFlags types.CliFlags, today time.Time) {
	log.Info().Msg(separator)
	log.Info().Msg("Delivery stage started")

	assertNotificationChannel(config, cliFlags)

	filter, err := NewRecipientFilter(conf.GetProcessingConfiguration(config))
	if err != nil {
		log.Err(err).Msg("Recipient filter not set correctly")
		os.Exit(ExitStatusRecipientFilterError)
	}

	smsNotifier := setupSMSNotifier(config)
	emailNotifier := setupEmailNotifier(config)
	auditProducer := setupAuditProducer(config)

	dispatcher := NewDispatcher(
		storage,
		smsNotifier,
		emailNotifier,
		auditProducer,
		filter,
		conf.GetNotificationsConfiguration(config),
		conf.GetScheduleConfiguration(config).TicketURL,
		cliFlags.DryRun,
	)

	stats, err := dispatcher.Run(today)

	if closeErr := closeNotifier(smsNotifier); closeErr != nil {
		defer os.Exit(ExitStatusProducerError)
	}
	if closeErr := closeNotifier(emailNotifier); closeErr != nil {
		defer os.Exit(ExitStatusProducerError)
	}
	if closeErr := auditProducer.Close(); closeErr != nil {
		log.Err(closeErr).Msg(operationFailedMessage)
		defer os.Exit(ExitStatusKafkaBrokerError)
	}

	if err != nil {
		var staleErr *StaleDataError
		if errors.As(err, &staleErr) {
			// nothing was sent; the next fresh ingestion unblocks the pipeline
			log.Warn().Err(err).Msg("Stale data, skipping delivery run")
			return
		}
		log.Err(err).Msg(operationFailedMessage)
		os.Exit(ExitStatusStorageError)
	}

	log.Info().
		Int("games checked", stats.GamesChecked).
		Int("alerts sent", stats.AlertsSent).
		Int("sms sent", stats.SMSSent).
		Int("email sent", stats.EmailSent).
		Int("sms failed", stats.SMSFailed).
		Int("email failed", stats.EmailFailed).
		Int("skipped", stats.Skipped).
		Msg("Delivery stage finished")
}

// Run function is entry point to the notification service
func Run() {
	var cliFlags types.CliFlags

	// define and parse all command line options
	flag.BoolVar(&cliFlags.RunIngest, "run-ingest", false, "fetch schedule and promotions and store them")
	flag.BoolVar(&cliFlags.RunAlerts, "run-alerts", false, "send notifications for qualifying games")
	flag.BoolVar(&cliFlags.DryRun, "dry-run", false, "fetch and render but send nothing and write nothing")
	flag.StringVar(&cliFlags.Today, "date", "", "override today's date (YYYY-MM-DD)")
	flag.IntVar(&cliFlags.Season, "season", 0, "season year to ingest (default: current year)")
	flag.BoolVar(&cliFlags.InitDatabase, "init-db", false, "initialize the database schema and exit")
	flag.BoolVar(&cliFlags.ShowVersion, "show-version", false, "show version and exit")
	flag.BoolVar(&cliFlags.ShowAuthors, "show-authors", false, "show authors and exit")
	flag.BoolVar(&cliFlags.ShowConfiguration, "show-configuration", false, "show configuration and exit")
	flag.BoolVar(&cliFlags.PrintOldGamesForCleanup, "print-old-games-for-cleanup", false, "print old games to be cleaned up")
	flag.BoolVar(&cliFlags.PerformOldGamesCleanup, "old-games-cleanup", false, "perform old games clean up")
	flag.BoolVar(&cliFlags.PrintDeliveryLogForCleanup, "print-delivery-log-for-cleanup", false, "print old delivery records to be cleaned up")
	flag.BoolVar(&cliFlags.PerformDeliveryLogCleanup, "delivery-log-cleanup", false, "perform delivery log clean up")
	flag.BoolVar(&cliFlags.CleanupOnStartup, "cleanup-on-startup", false, "perform database clean up on startup")
	flag.BoolVar(&cliFlags.Verbose, "verbose", false, "verbose logs")
	flag.StringVar(&cliFlags.MaxAge, "max-age", "", "max age for displaying/cleaning old records")
	flag.Parse()
	checkArgs(&cliFlags)

	// config has exactly the same structure as *.toml file
	config, err := conf.LoadConfiguration(configFileEnvVariableName, defaultConfigFileName)
	if err != nil {
		log.Err(err).Msg("Load configuration")
		os.Exit(ExitStatusConfiguration)
	}

	// configuration is loaded, so it would be possible to display it if
	// asked by user
	if cliFlags.ShowConfiguration {
		showConfiguration(config)
		os.Exit(ExitStatusOK)
	}

	// override default value by one read from configuration file
	if cliFlags.MaxAge == "" {
		cliFlags.MaxAge = config.Cleaner.MaxAge
	}

	if config.Logging.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.SetGlobalLevel(convertLogLevel(config.Logging.LogLevel))

	// prepare the storage
	storageConfiguration := conf.GetStorageConfiguration(config)
	storage, err := NewStorage(storageConfiguration)
	if err != nil {
		StorageSetupErrors.Inc()
		log.Err(err).Msg(operationFailedMessage)
		os.Exit(ExitStatusStorageError)
	}

	if cliFlags.InitDatabase {
		err := storage.InitSchema()
		if err != nil {
			os.Exit(ExitStatusStorageError)
		}
		os.Exit(ExitStatusOK)
	}

	if deleteOperationSpecified(cliFlags) {
		err := PerformCleanupOperation(storage, cliFlags)
		if err != nil {
			os.Exit(ExitStatusCleanerError)
		} else {
			os.Exit(ExitStatusOK)
		}
	}

	// perform database cleanup on startup if specified on command line
	if cliFlags.CleanupOnStartup {
		err := PerformCleanupOnStartup(storage, cliFlags)
		if err != nil {
			os.Exit(ExitStatusCleanerError)
		}
		// if previous operation is correct, just continue
	}

	log.Info().Msg(serviceName + " started")
	if cliFlags.Verbose {
		showConfiguration(config)
	}
	registerMetrics(conf.GetMetricsConfiguration(config))

	today := parseTodayFlag(cliFlags.Today)

	if cliFlags.RunIngest {
		runIngest(config, storage, cliFlags, today)
	}
	if cliFlags.RunAlerts {
		runAlerts(config, storage, cliFlags, today)
	}

	log.Info().Msg(separator)
	if err := closeStorage(storage); err != nil {
		defer os.Exit(ExitStatusStorageError)
	}

	if conf.GetMetricsConfiguration(config).GatewayURL != "" {
		log.Info().Msg("Pushing metrics to the configured prometheus gateway.")
		pushMetrics(conf.GetMetricsConfiguration(config))
	}
	log.Info().Msg(separator)
}
