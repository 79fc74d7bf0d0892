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

// This source file contains the client for the MLB Stats API schedule feed.
// The feed reports game times in UTC; they are converted to the ballpark's
// local time zone before storage, and the day of week is always recomputed
// from the converted date rather than taken from the feed.

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yardgoats-tracker/notification-service/conf"
	"github.com/yardgoats-tracker/notification-service/types"
)

const scheduleUserAgent = "Mozilla/5.0 (compatible; YardGoatsTracker/1.0; +https://github.com/yardgoats-tracker/notification-service)"

// season window: regular season games fall between these month/day bounds
const (
	seasonStartMonth = time.April
	seasonStartDay   = 1
	seasonEndMonth   = time.September
	seasonEndDay     = 30
)

// scheduleResponse covers the part of the /schedule payload this service
// reads. Everything else in the feed is ignored.
type scheduleResponse struct {
	Dates []scheduleDate `json:"dates"`
}

type scheduleDate struct {
	Games []scheduleGame `json:"games"`
}

type scheduleGame struct {
	GamePk   int    `json:"gamePk"`
	GameDate string `json:"gameDate"`
	Teams    struct {
		Home scheduleTeamSide `json:"home"`
		Away scheduleTeamSide `json:"away"`
	} `json:"teams"`
}

type scheduleTeamSide struct {
	Team struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
}

// ScheduleFetcher retrieves home games for one season from the stats API
type ScheduleFetcher struct {
	Configuration conf.ScheduleConfiguration
	Client        *http.Client
	location      *time.Location
}

// NewScheduleFetcher constructs a schedule fetcher for given configuration.
// The configured time zone name must be resolvable via the system tz
// database.
func NewScheduleFetcher(configuration conf.ScheduleConfiguration) (*ScheduleFetcher, error) {
	location, err := time.LoadLocation(configuration.Timezone)
	if err != nil {
		log.Error().Err(err).Str("timezone", configuration.Timezone).Msg("Unable to load time zone")
		return nil, err
	}

	return &ScheduleFetcher{
		Configuration: configuration,
		Client: &http.Client{
			Timeout: configuration.Timeout,
		},
		location: location,
	}, nil
}

// FetchSeason fetches the regular season schedule for given year and
// returns the home games as storage-ready entries. Away games and
// malformed entries are skipped.
func (fetcher *ScheduleFetcher) FetchSeason(season int) ([]types.GameEntry, error) {
	requestURL, err := fetcher.buildRequestURL(season)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequest(http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	request.Header.Set("User-Agent", scheduleUserAgent)

	response, err := fetcher.Client.Do(request)
	if err != nil {
		log.Error().Err(err).Msg("Schedule feed request failed")
		return nil, &ScheduleFetchError{Msg: err.Error()}
	}
	defer func() {
		err := response.Body.Close()
		if err != nil {
			log.Error().Err(err).Msg("Unable to close response body")
		}
	}()

	if response.StatusCode != http.StatusOK {
		err := fmt.Errorf("schedule feed returned unexpected status %s", response.Status)
		log.Error().Err(err).Msg("Schedule feed request failed")
		return nil, &ScheduleFetchError{Msg: err.Error()}
	}

	var payload scheduleResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		log.Error().Err(err).Msg("Unable to decode schedule feed response")
		return nil, &ScheduleFetchError{Msg: err.Error()}
	}

	return fetcher.parseResponse(payload), nil
}

// buildRequestURL assembles the /schedule query for one season
func (fetcher *ScheduleFetcher) buildRequestURL(season int) (string, error) {
	base, err := url.Parse(fetcher.Configuration.APIURL)
	if err != nil {
		return "", err
	}

	startDate := time.Date(season, seasonStartMonth, seasonStartDay, 0, 0, 0, 0, time.UTC)
	endDate := time.Date(season, seasonEndMonth, seasonEndDay, 0, 0, 0, 0, time.UTC)

	query := url.Values{}
	query.Set("sportId", strconv.Itoa(fetcher.Configuration.SportID))
	query.Set("teamId", strconv.Itoa(fetcher.Configuration.TeamID))
	query.Set("startDate", startDate.Format(time.DateOnly))
	query.Set("endDate", endDate.Format(time.DateOnly))
	query.Set("gameType", fetcher.Configuration.GameType)
	query.Set("hydrate", "team")

	base.RawQuery = query.Encode()
	return base.String(), nil
}

// parseResponse flattens the feed's dates/games nesting into home game
// entries
func (fetcher *ScheduleFetcher) parseResponse(payload scheduleResponse) []types.GameEntry {
	var entries = make([]types.GameEntry, 0)

	for _, dateEntry := range payload.Dates {
		for _, game := range dateEntry.Games {
			entry, ok := fetcher.parseGame(game)
			if ok {
				entries = append(entries, entry)
			}
		}
	}

	return entries
}

// parseGame converts one feed entry into a storage-ready game entry. The
// second return value is false for away games and entries that can not be
// parsed.
func (fetcher *ScheduleFetcher) parseGame(game scheduleGame) (types.GameEntry, bool) {
	var entry types.GameEntry

	if game.Teams.Home.Team.ID != fetcher.Configuration.TeamID {
		// away game
		return entry, false
	}

	startUTC, err := time.Parse(time.RFC3339, game.GameDate)
	if err != nil {
		log.Warn().
			Int("game", game.GamePk).
			Str("game date", game.GameDate).
			Msg("Skipping malformed game entry")
		return entry, false
	}

	startLocal := startUTC.In(fetcher.location)

	entry.Date = types.GameDate(startLocal.Format(time.DateOnly))
	// the feed's own day-of-week field is not trusted; always derived here
	entry.DayOfWeek = startLocal.Weekday().String()
	entry.StartTime = startLocal.Format("3:04 PM")
	entry.Opponent = game.Teams.Away.Team.Name
	entry.IsHome = true
	entry.TicketURL = fetcher.Configuration.TicketURL

	return entry, true
}
