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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yardgoats-tracker/notification-service/conf"
	"github.com/yardgoats-tracker/notification-service/engine"
	"github.com/yardgoats-tracker/notification-service/tests/mocks"
	"github.com/yardgoats-tracker/notification-service/types"
)

const ingestScheduleFixture = `{
	"dates": [
		{
			"games": [
				{
					"gamePk": 1001,
					"gameDate": "2026-06-05T23:05:00Z",
					"teams": {
						"home": {"team": {"id": 538, "name": "Hartford Yard Goats"}},
						"away": {"team": {"id": 541, "name": "Somerset Patriots"}}
					}
				}
			]
		}
	]
}`

const ingestPromotionsFixture = `<html><body><table>
	<tr><td>June 5, 2026</td><td>Post-Game Fireworks &amp; $1 Hot Dogs</td></tr>
</table></body></html>`

// newTestIngestor wires an ingestor over mocked storage and two test servers
// serving canned schedule and promotions payloads.
func newTestIngestor(t *testing.T, storage engine.Storage, scheduleHandler, promotionsHandler http.HandlerFunc) (*engine.Ingestor, func()) {
	scheduleServer := httptest.NewServer(scheduleHandler)
	promotionsServer := httptest.NewServer(promotionsHandler)

	schedule, err := engine.NewScheduleFetcher(conf.ScheduleConfiguration{
		APIURL:    scheduleServer.URL,
		TeamID:    538,
		SportID:   12,
		GameType:  "R",
		Timezone:  "America/New_York",
		TicketURL: "https://www.milb.com/hartford/tickets",
	})
	require.NoError(t, err)

	promotions := engine.NewPromotionsFetcher(conf.PromotionsConfiguration{
		URL: promotionsServer.URL,
	})
	promotions.Now = func() time.Time {
		return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	}

	cleanup := func() {
		scheduleServer.Close()
		promotionsServer.Close()
	}

	return engine.NewIngestor(storage, schedule, promotions), cleanup
}

func serveFixture(fixture string) http.HandlerFunc {
	return func(writer http.ResponseWriter, _ *http.Request) {
		_, _ = writer.Write([]byte(fixture))
	}
}

func serveStatus(status int) http.HandlerFunc {
	return func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(status)
	}
}

func TestIngestorRunStoresGamesAndPromotions(t *testing.T) {
	storage := mocks.Storage{}
	storage.On("UpsertGame", mock.Anything, mock.Anything).Return(types.GameID(7), nil)
	storage.On("ReplacePromotions", types.GameID(7), mock.Anything).Return(nil)

	ingestor, cleanup := newTestIngestor(t, &storage,
		serveFixture(ingestScheduleFixture), serveFixture(ingestPromotionsFixture))
	defer cleanup()

	stats, err := ingestor.Run(2026, time.Now(), false)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.GamesFetched)
	assert.Equal(t, 1, stats.GamesStored)
	assert.Equal(t, 1, stats.PromotionDates)
	assert.Equal(t, 2, stats.PromotionsStored)
	assert.Equal(t, 0, stats.PromotionsUnmatched)

	storage.AssertExpectations(t)
}

func TestIngestorRunFailsOnEmptySchedule(t *testing.T) {
	storage := mocks.Storage{}

	ingestor, cleanup := newTestIngestor(t, &storage,
		serveFixture(`{"dates": []}`), serveFixture(ingestPromotionsFixture))
	defer cleanup()

	_, err := ingestor.Run(2026, time.Now(), false)
	assert.Error(t, err)

	var fetchError *engine.ScheduleFetchError
	assert.ErrorAs(t, err, &fetchError)

	storage.AssertNotCalled(t, "UpsertGame", mock.Anything, mock.Anything)
}

func TestIngestorRunPromotionsFailureIsNotFatal(t *testing.T) {
	storage := mocks.Storage{}
	storage.On("UpsertGame", mock.Anything, mock.Anything).Return(types.GameID(7), nil)

	ingestor, cleanup := newTestIngestor(t, &storage,
		serveFixture(ingestScheduleFixture), serveStatus(http.StatusInternalServerError))
	defer cleanup()

	stats, err := ingestor.Run(2026, time.Now(), false)
	assert.NoError(t, err)
	assert.Equal(t, 1, stats.GamesStored)
	assert.Equal(t, 0, stats.PromotionsStored)

	storage.AssertNotCalled(t, "ReplacePromotions", mock.Anything, mock.Anything)
}

func TestIngestorRunDryRunWritesNothing(t *testing.T) {
	storage := mocks.Storage{}

	ingestor, cleanup := newTestIngestor(t, &storage,
		serveFixture(ingestScheduleFixture), serveFixture(ingestPromotionsFixture))
	defer cleanup()

	stats, err := ingestor.Run(2026, time.Now(), true)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.GamesFetched)
	assert.Equal(t, 0, stats.GamesStored)
	assert.Equal(t, 0, stats.PromotionsStored)

	storage.AssertNotCalled(t, "UpsertGame", mock.Anything, mock.Anything)
	storage.AssertNotCalled(t, "ReplacePromotions", mock.Anything, mock.Anything)
}

func TestIngestorRunSkipsUnmatchedPromotionDates(t *testing.T) {
	const offDayPromotionsFixture = `<html><body><table>
		<tr><td>June 5, 2026</td><td>Post-Game Fireworks</td></tr>
		<tr><td>June 19, 2026</td><td>Road Trip Watch Party</td></tr>
	</table></body></html>`

	storage := mocks.Storage{}
	storage.On("UpsertGame", mock.Anything, mock.Anything).Return(types.GameID(7), nil)
	storage.On("ReplacePromotions", types.GameID(7), mock.Anything).Return(nil)

	ingestor, cleanup := newTestIngestor(t, &storage,
		serveFixture(ingestScheduleFixture), serveFixture(offDayPromotionsFixture))
	defer cleanup()

	stats, err := ingestor.Run(2026, time.Now(), false)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.PromotionsStored)
	assert.Equal(t, 1, stats.PromotionsUnmatched)

	storage.AssertExpectations(t)
}
