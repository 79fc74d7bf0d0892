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

package engine

// File metrics contains all metrics that needs to be exposed to Prometheus
// and indirectly to Grafana. The service is a batch job, so metrics are
// pushed to a Prometheus push gateway at the end of each run rather than
// scraped.

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"

	"github.com/yardgoats-tracker/notification-service/conf"
)

// Metrics names
const (
	ScheduleFetchErrorsName           = "schedule_fetch_errors"
	PromotionsFetchErrorsName         = "promotions_fetch_errors"
	StorageSetupErrorsName            = "storage_setup_errors"
	ProducerSetupErrorsName           = "producer_setup_errors"
	GamesIngestedName                 = "games_ingested"
	PromotionsIngestedName            = "promotions_ingested"
	NotificationSentName              = "notification_sent"
	NotificationNotSentDuplicateName  = "notification_not_sent_duplicate"
	NotificationNotSentErrorStateName = "notification_not_sent_error_state"
	StaleDataRunsSkippedName          = "stale_data_runs_skipped"
)

// Metrics helps
const (
	ScheduleFetchErrorsHelp           = "The total number of errors when fetching the schedule feed"
	PromotionsFetchErrorsHelp         = "The total number of errors when fetching the promotions page"
	StorageSetupErrorsHelp            = "The total number of errors when setting up storage connection"
	ProducerSetupErrorsHelp           = "The total number of errors when setting up delivery channels"
	GamesIngestedHelp                 = "The total number of games stored during ingestion"
	PromotionsIngestedHelp            = "The total number of promotions stored during ingestion"
	NotificationSentHelp              = "The total number of notifications delivered"
	NotificationNotSentDuplicateHelp  = "The total number of notifications skipped because the same alert was already delivered"
	NotificationNotSentErrorStateHelp = "The total number of notifications not delivered because of a channel error"
	StaleDataRunsSkippedHelp          = "The total number of notification runs aborted by the data freshness guard"
)

// PushGatewayClient is a simple wrapper over http.Client so that prometheus
// can do HTTP requests with the given authentication header
type PushGatewayClient struct {
	AuthToken string

	httpClient http.Client
}

// Do is a simple wrapper over http.Client.Do method that includes
// the authentication header configured in the PushGatewayClient instance
func (pgc *PushGatewayClient) Do(request *http.Request) (*http.Response, error) {
	if pgc.AuthToken != "" {
		log.Debug().Msg("Adding authorization header to HTTP request")
		request.Header.Set("Authorization", "Basic "+pgc.AuthToken)
	} else {
		log.Debug().Msg("No authorization token provided. Making HTTP request without credentials.")
	}
	log.Debug().Str("request", request.URL.String()).Str("method", request.Method).Msg("Pushing metrics to Prometheus push gateway")
	resp, err := pgc.httpClient.Do(request)
	if resp != nil {
		log.Debug().Int("code", resp.StatusCode).Msg("Returned status code")
	}
	return resp, err
}

// ScheduleFetchErrors shows number of errors when fetching the schedule feed
var ScheduleFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: ScheduleFetchErrorsName,
	Help: ScheduleFetchErrorsHelp,
})

// PromotionsFetchErrors shows number of errors when fetching the promotions page
var PromotionsFetchErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: PromotionsFetchErrorsName,
	Help: PromotionsFetchErrorsHelp,
})

// StorageSetupErrors shows number of errors when setting up storage
var StorageSetupErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: StorageSetupErrorsName,
	Help: StorageSetupErrorsHelp,
})

// ProducerSetupErrors shows number of errors when setting up delivery channels
var ProducerSetupErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: ProducerSetupErrorsName,
	Help: ProducerSetupErrorsHelp,
})

// GamesIngested shows number of games stored during ingestion
var GamesIngested = promauto.NewCounter(prometheus.CounterOpts{
	Name: GamesIngestedName,
	Help: GamesIngestedHelp,
})

// PromotionsIngested shows number of promotions stored during ingestion
var PromotionsIngested = promauto.NewCounter(prometheus.CounterOpts{
	Name: PromotionsIngestedName,
	Help: PromotionsIngestedHelp,
})

// NotificationSent shows number of notifications delivered over any channel
var NotificationSent = promauto.NewCounter(prometheus.CounterOpts{
	Name: NotificationSentName,
	Help: NotificationSentHelp,
})

// NotificationNotSentDuplicate shows number of notifications skipped because
// the same alert was already delivered
var NotificationNotSentDuplicate = promauto.NewCounter(prometheus.CounterOpts{
	Name: NotificationNotSentDuplicateName,
	Help: NotificationNotSentDuplicateHelp,
})

// NotificationNotSentErrorState shows number of notifications not delivered
// because of a channel error
var NotificationNotSentErrorState = promauto.NewCounter(prometheus.CounterOpts{
	Name: NotificationNotSentErrorStateName,
	Help: NotificationNotSentErrorStateHelp,
})

// StaleDataRunsSkipped shows number of notification runs aborted by the data
// freshness guard
var StaleDataRunsSkipped = promauto.NewCounter(prometheus.CounterOpts{
	Name: StaleDataRunsSkippedName,
	Help: StaleDataRunsSkippedHelp,
})

// counterOpts builds CounterOpts for given metric within the configured
// namespace and subsystem
func counterOpts(namespace, subsystem, name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}
}

// AddMetricsWithNamespaceAndSubsystem registers the desired metrics using a
// given namespace and subsystem
func AddMetricsWithNamespaceAndSubsystem(namespace, subsystem string) {
	// Unregister all metrics and register them again
	prometheus.Unregister(ScheduleFetchErrors)
	prometheus.Unregister(PromotionsFetchErrors)
	prometheus.Unregister(StorageSetupErrors)
	prometheus.Unregister(ProducerSetupErrors)
	prometheus.Unregister(GamesIngested)
	prometheus.Unregister(PromotionsIngested)
	prometheus.Unregister(NotificationSent)
	prometheus.Unregister(NotificationNotSentDuplicate)
	prometheus.Unregister(NotificationNotSentErrorState)
	prometheus.Unregister(StaleDataRunsSkipped)

	ScheduleFetchErrors = promauto.NewCounter(counterOpts(namespace, subsystem, ScheduleFetchErrorsName, ScheduleFetchErrorsHelp))
	PromotionsFetchErrors = promauto.NewCounter(counterOpts(namespace, subsystem, PromotionsFetchErrorsName, PromotionsFetchErrorsHelp))
	StorageSetupErrors = promauto.NewCounter(counterOpts(namespace, subsystem, StorageSetupErrorsName, StorageSetupErrorsHelp))
	ProducerSetupErrors = promauto.NewCounter(counterOpts(namespace, subsystem, ProducerSetupErrorsName, ProducerSetupErrorsHelp))
	GamesIngested = promauto.NewCounter(counterOpts(namespace, subsystem, GamesIngestedName, GamesIngestedHelp))
	PromotionsIngested = promauto.NewCounter(counterOpts(namespace, subsystem, PromotionsIngestedName, PromotionsIngestedHelp))
	NotificationSent = promauto.NewCounter(counterOpts(namespace, subsystem, NotificationSentName, NotificationSentHelp))
	NotificationNotSentDuplicate = promauto.NewCounter(counterOpts(namespace, subsystem, NotificationNotSentDuplicateName, NotificationNotSentDuplicateHelp))
	NotificationNotSentErrorState = promauto.NewCounter(counterOpts(namespace, subsystem, NotificationNotSentErrorStateName, NotificationNotSentErrorStateHelp))
	StaleDataRunsSkipped = promauto.NewCounter(counterOpts(namespace, subsystem, StaleDataRunsSkippedName, StaleDataRunsSkippedHelp))
}

// PushMetrics function pushes the metrics to the configured prometheus push
// gateway
func PushMetrics(metricsConf conf.MetricsConfiguration) error {
	client := PushGatewayClient{metricsConf.GatewayAuthToken, http.Client{}}

	// Creates a pusher to the gateway "$PUSHGW_URL/metrics/job/$(job_name)
	return push.New(metricsConf.GatewayURL, metricsConf.Job).
		Collector(ScheduleFetchErrors).
		Collector(PromotionsFetchErrors).
		Collector(StorageSetupErrors).
		Collector(ProducerSetupErrors).
		Collector(GamesIngested).
		Collector(PromotionsIngested).
		Collector(NotificationSent).
		Collector(NotificationNotSentDuplicate).
		Collector(NotificationNotSentErrorState).
		Collector(StaleDataRunsSkipped).
		Client(&client).
		Push()
}
