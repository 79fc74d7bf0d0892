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

package engine_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yardgoats-tracker/notification-service/conf"
	"github.com/yardgoats-tracker/notification-service/engine"
)

// TestAddMetricsWithNamespaceAndSubsystem function checks the basic behaviour
// of function AddMetricsWithNamespaceAndSubsystem from `metrics.go`
func TestAddMetricsWithNamespaceAndSubsystem(t *testing.T) {
	// add all metrics into the namespace "foobar"
	engine.AddMetricsWithNamespaceAndSubsystem("foo", "bar")

	// check the registration
	assert.NotNil(t, engine.ScheduleFetchErrors)
	assert.NotNil(t, engine.PromotionsFetchErrors)
	assert.NotNil(t, engine.StorageSetupErrors)
	assert.NotNil(t, engine.ProducerSetupErrors)
	assert.NotNil(t, engine.GamesIngested)
	assert.NotNil(t, engine.PromotionsIngested)
	assert.NotNil(t, engine.NotificationSent)
	assert.NotNil(t, engine.NotificationNotSentDuplicate)
	assert.NotNil(t, engine.NotificationNotSentErrorState)
	assert.NotNil(t, engine.StaleDataRunsSkipped)
}

func TestPushMetrics(t *testing.T) {
	var (
		pushes     int
		authHeader string
	)

	testServer := httptest.NewServer(
		http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			pushes++
			authHeader = request.Header.Get("Authorization")
			writer.WriteHeader(http.StatusOK)
		}),
	)
	defer testServer.Close()

	metricsConf := conf.MetricsConfiguration{
		Job:              "yardgoats_notification_service",
		Namespace:        "yardgoats",
		GatewayURL:       testServer.URL,
		GatewayAuthToken: "dG9rZW4=",
	}

	err := engine.PushMetrics(metricsConf)
	assert.NoError(t, err)

	assert.Equal(t, 1, pushes)
	assert.Equal(t, "Basic dG9rZW4=", authHeader)
}

func TestPushMetricsGatewayFailure(t *testing.T) {
	testServer := httptest.NewServer(
		http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusBadGateway)
		}),
	)
	defer testServer.Close()

	metricsConf := conf.MetricsConfiguration{
		Job:        "yardgoats_notification_service",
		GatewayURL: testServer.URL,
	}

	err := engine.PushMetrics(metricsConf)
	assert.Error(t, err)
}
