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
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/yardgoats-tracker/notification-service/types"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

func TestConvertLogLevel(t *testing.T) {
	testCases := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"", zerolog.DebugLevel},
		{"unknown", zerolog.DebugLevel},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.expected, convertLogLevel(testCase.level),
			"level: %q", testCase.level)
	}
}

func TestDeleteOperationSpecified(t *testing.T) {
	assert.False(t, deleteOperationSpecified(types.CliFlags{}))
	assert.True(t, deleteOperationSpecified(types.CliFlags{PrintOldGamesForCleanup: true}))
	assert.True(t, deleteOperationSpecified(types.CliFlags{PerformOldGamesCleanup: true}))
	assert.True(t, deleteOperationSpecified(types.CliFlags{PrintDeliveryLogForCleanup: true}))
	assert.True(t, deleteOperationSpecified(types.CliFlags{PerformDeliveryLogCleanup: true}))
}

func TestParseTodayFlagEmptyValueMeansNow(t *testing.T) {
	before := time.Now()
	today := parseTodayFlag("")
	after := time.Now()

	assert.False(t, today.Before(before))
	assert.False(t, today.After(after))
}

func TestParseTodayFlagValidDate(t *testing.T) {
	today := parseTodayFlag("2026-06-01")
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), today)
}

func TestGetPrintableStatement(t *testing.T) {
	statement := "\n\t\tDELETE\n\t\t  FROM games\n"
	assert.Equal(t, "DELETE   FROM games", getPrintableStatement(statement))
}

func TestToNullString(t *testing.T) {
	filled := toNullString("https://www.milb.com/hartford/tickets")
	assert.True(t, filled.Valid)
	assert.Equal(t, "https://www.milb.com/hartford/tickets", filled.String)

	empty := toNullString("")
	assert.False(t, empty.Valid)
}
