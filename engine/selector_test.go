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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yardgoats-tracker/notification-service/engine"
	"github.com/yardgoats-tracker/notification-service/tests/mocks"
	"github.com/yardgoats-tracker/notification-service/types"
)

func TestSelectorTargetDate(t *testing.T) {
	selector := engine.NewSelector(&mocks.Storage{}, 5)

	today := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, types.GameDate("2026-06-06"), selector.TargetDate(today))
}

func TestSelectorQualifyingGamesWeekendGame(t *testing.T) {
	// 2026-06-05 is a Friday
	game := types.Game{
		ID:        7,
		Date:      "2026-06-05",
		DayOfWeek: "Friday",
		Opponent:  "Somerset Patriots",
		IsHome:    true,
	}

	storage := mocks.Storage{}
	storage.On("ReadHomeGamesOnDate", types.GameDate("2026-06-05")).
		Return([]types.Game{game}, nil)

	selector := engine.NewSelector(&storage, 5)

	today := time.Date(2026, 5, 31, 9, 0, 0, 0, time.UTC)
	games, err := selector.QualifyingGames(today)
	require.NoError(t, err)

	require.Len(t, games, 1)
	assert.Equal(t, types.GameID(7), games[0].ID)

	storage.AssertExpectations(t)
}

func TestSelectorQualifyingGamesWeekdayGameExcluded(t *testing.T) {
	// 2026-06-02 is a Tuesday
	game := types.Game{
		ID:        8,
		Date:      "2026-06-02",
		DayOfWeek: "Tuesday",
		IsHome:    true,
	}

	storage := mocks.Storage{}
	storage.On("ReadHomeGamesOnDate", types.GameDate("2026-06-02")).
		Return([]types.Game{game}, nil)

	selector := engine.NewSelector(&storage, 5)

	today := time.Date(2026, 5, 28, 9, 0, 0, 0, time.UTC)
	games, err := selector.QualifyingGames(today)
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestSelectorQualifyingGamesDerivedDayWins(t *testing.T) {
	// the stored day name is wrong; the date itself is a Sunday
	game := types.Game{
		ID:        9,
		Date:      "2026-06-07",
		DayOfWeek: "Monday",
		IsHome:    true,
	}

	storage := mocks.Storage{}
	storage.On("ReadHomeGamesOnDate", types.GameDate("2026-06-07")).
		Return([]types.Game{game}, nil)

	selector := engine.NewSelector(&storage, 5)

	today := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	games, err := selector.QualifyingGames(today)
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestSelectorQualifyingGamesDuplicateDate(t *testing.T) {
	games := []types.Game{
		{ID: 7, Date: "2026-06-05"},
		{ID: 8, Date: "2026-06-05"},
	}

	storage := mocks.Storage{}
	storage.On("ReadHomeGamesOnDate", types.GameDate("2026-06-05")).
		Return(games, nil)

	selector := engine.NewSelector(&storage, 5)

	today := time.Date(2026, 5, 31, 9, 0, 0, 0, time.UTC)
	_, err := selector.QualifyingGames(today)
	assert.Error(t, err)

	var integrityError *engine.DataIntegrityError
	assert.ErrorAs(t, err, &integrityError)
}

func TestSelectorQualifyingGamesUnparseableDate(t *testing.T) {
	storage := mocks.Storage{}
	storage.On("ReadHomeGamesOnDate", types.GameDate("2026-06-05")).
		Return([]types.Game{{ID: 7, Date: "June fifth"}}, nil)

	selector := engine.NewSelector(&storage, 5)

	today := time.Date(2026, 5, 31, 9, 0, 0, 0, time.UTC)
	_, err := selector.QualifyingGames(today)
	assert.Error(t, err)

	var integrityError *engine.DataIntegrityError
	assert.ErrorAs(t, err, &integrityError)
}

func TestSelectorQualifyingGamesStorageError(t *testing.T) {
	storage := mocks.Storage{}
	storage.On("ReadHomeGamesOnDate", types.GameDate("2026-06-05")).
		Return([]types.Game{}, errors.New("read failed"))

	selector := engine.NewSelector(&storage, 5)

	today := time.Date(2026, 5, 31, 9, 0, 0, 0, time.UTC)
	_, err := selector.QualifyingGames(today)
	assert.Error(t, err)
}
