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

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yardgoats-tracker/notification-service/types"
)

// weekend days qualify for notifications
var weekendDays = map[time.Weekday]bool{
	time.Friday:   true,
	time.Saturday: true,
	time.Sunday:   true,
}

// Selector picks the games that should trigger notifications on a given
// day. A game qualifies when it is a home game played exactly LeadTimeDays
// from the reference date and falls on a Friday, Saturday or Sunday.
type Selector struct {
	Storage      Storage
	LeadTimeDays int
}

// NewSelector constructs a selector over given storage
func NewSelector(storage Storage, leadTimeDays int) *Selector {
	return &Selector{
		Storage:      storage,
		LeadTimeDays: leadTimeDays,
	}
}

// TargetDate returns the game date notifications sent today refer to
func (selector *Selector) TargetDate(today time.Time) types.GameDate {
	target := today.AddDate(0, 0, selector.LeadTimeDays)
	return types.GameDate(target.Format(time.DateOnly))
}

// QualifyingGames returns the home games on the target date that fall on a
// weekend day. The day of week is always derived from the stored date; a
// stored day name that disagrees with the date is reported but the derived
// value wins. More than one game on one date violates the date-uniqueness
// invariant and aborts the run.
func (selector *Selector) QualifyingGames(today time.Time) ([]types.Game, error) {
	targetDate := selector.TargetDate(today)

	games, err := selector.Storage.ReadHomeGamesOnDate(targetDate)
	if err != nil {
		return nil, err
	}

	if len(games) > 1 {
		return nil, &DataIntegrityError{
			Msg: fmt.Sprintf("found %d games stored for date %s, expected at most one", len(games), targetDate),
		}
	}

	var qualifying = make([]types.Game, 0, len(games))

	for _, game := range games {
		weekday, err := game.Date.Weekday()
		if err != nil {
			return nil, &DataIntegrityError{
				Msg: fmt.Sprintf("stored game %d has unparseable date %q", game.ID, game.Date),
			}
		}

		if game.DayOfWeek != weekday.String() {
			log.Warn().
				Int("game", int(game.ID)).
				Str("stored day", game.DayOfWeek).
				Str("derived day", weekday.String()).
				Msg("Stored day of week disagrees with game date")
		}

		if !weekendDays[weekday] {
			log.Debug().
				Int("game", int(game.ID)).
				Str("day", weekday.String()).
				Msg("Game does not fall on a weekend day")
			continue
		}

		qualifying = append(qualifying, game)
	}

	return qualifying, nil
}
