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

// This source file contains the ingestion pipeline: the season schedule is
// fetched and upserted first, then the promotions calendar is scraped and
// each game's promotion set is replaced. A promotions failure is not fatal
// because stored games can still trigger notifications without promotions.

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yardgoats-tracker/notification-service/types"
)

// IngestStatistics accumulates counters for one ingestion run
type IngestStatistics struct {
	GamesFetched        int
	GamesStored         int
	PromotionDates      int
	PromotionsStored    int
	PromotionsUnmatched int
}

// Ingestor runs the schedule and promotions ingestion pipeline
type Ingestor struct {
	Storage    Storage
	Schedule   *ScheduleFetcher
	Promotions *PromotionsFetcher
}

// NewIngestor constructs an ingestor over given storage and fetchers
func NewIngestor(storage Storage, schedule *ScheduleFetcher, promotions *PromotionsFetcher) *Ingestor {
	return &Ingestor{
		Storage:    storage,
		Schedule:   schedule,
		Promotions: promotions,
	}
}

// Run executes the full ingestion pipeline for given season. In dry run
// mode data is fetched and parsed but nothing is written to storage.
func (ingestor *Ingestor) Run(season int, now time.Time, dryRun bool) (IngestStatistics, error) {
	var stats IngestStatistics

	runID := uuid.New().String()
	log.Info().
		Str("run id", runID).
		Int("season", season).
		Bool("dry run", dryRun).
		Msg("Starting ingestion run")

	entries, err := ingestor.Schedule.FetchSeason(season)
	if err != nil {
		log.Error().Err(err).Msg("Schedule fetch failed")
		return stats, err
	}
	stats.GamesFetched = len(entries)

	if len(entries) == 0 {
		err := &ScheduleFetchError{Msg: "no games returned by the schedule feed"}
		log.Error().Err(err).Int("season", season).Msg("Schedule fetch failed")
		return stats, err
	}

	gameIDs := make(map[types.GameDate]types.GameID, len(entries))

	for _, entry := range entries {
		if dryRun {
			log.Info().
				Str("date", string(entry.Date)).
				Str("day", entry.DayOfWeek).
				Str("opponent", entry.Opponent).
				Msg("Would store game")
			continue
		}

		gameID, err := ingestor.Storage.UpsertGame(entry, now)
		if err != nil {
			log.Error().Err(err).Str("date", string(entry.Date)).Msg("Unable to store game")
			return stats, err
		}
		gameIDs[entry.Date] = gameID
		stats.GamesStored++
	}
	GamesIngested.Add(float64(stats.GamesStored))

	log.Info().Int("games", stats.GamesStored).Msg("Schedule ingestion finished")

	promotions, err := ingestor.Promotions.Fetch()
	if err != nil {
		PromotionsFetchErrors.Inc()
		// stored games still trigger notifications without promotions
		log.Warn().Err(err).Msg("Promotions fetch failed, keeping previously stored promotions")
		return stats, nil
	}
	stats.PromotionDates = len(promotions)

	for date, entries := range promotions {
		if dryRun {
			log.Info().
				Str("date", string(date)).
				Int("promotions", len(entries)).
				Msg("Would store promotions")
			continue
		}

		gameID, found := gameIDs[date]
		if !found {
			// the calendar sometimes lists dates with no scheduled game
			log.Warn().Str("date", string(date)).Msg("Promotions date does not match any stored game")
			stats.PromotionsUnmatched++
			continue
		}

		if err := ingestor.Storage.ReplacePromotions(gameID, entries); err != nil {
			log.Error().Err(err).Str("date", string(date)).Msg("Unable to store promotions")
			return stats, err
		}
		stats.PromotionsStored += len(entries)
	}
	PromotionsIngested.Add(float64(stats.PromotionsStored))

	log.Info().
		Str("run id", runID).
		Int("promotion dates", stats.PromotionDates).
		Int("promotions", stats.PromotionsStored).
		Int("unmatched dates", stats.PromotionsUnmatched).
		Msg("Ingestion run finished")

	return stats, nil
}
