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

	"github.com/stretchr/testify/assert"

	"github.com/yardgoats-tracker/notification-service/engine"
	"github.com/yardgoats-tracker/notification-service/tests/mocks"
	"github.com/yardgoats-tracker/notification-service/types"
)

func TestPerformCleanupOperationPrintOldGames(t *testing.T) {
	storage := mocks.Storage{}
	storage.On("PrintOldGamesForCleanup", "90 days").Return(nil)

	err := engine.PerformCleanupOperation(&storage, types.CliFlags{
		PrintOldGamesForCleanup: true,
		MaxAge:                  "90 days",
	})
	assert.NoError(t, err)

	storage.AssertExpectations(t)
}

func TestPerformCleanupOperationOldGamesCleanup(t *testing.T) {
	storage := mocks.Storage{}
	storage.On("CleanupOldGames", "90 days").Return(3, nil)

	err := engine.PerformCleanupOperation(&storage, types.CliFlags{
		PerformOldGamesCleanup: true,
		MaxAge:                 "90 days",
	})
	assert.NoError(t, err)

	storage.AssertExpectations(t)
}

func TestPerformCleanupOperationPrintDeliveryLog(t *testing.T) {
	storage := mocks.Storage{}
	storage.On("PrintDeliveryLogForCleanup", "30 days").Return(nil)

	err := engine.PerformCleanupOperation(&storage, types.CliFlags{
		PrintDeliveryLogForCleanup: true,
		MaxAge:                     "30 days",
	})
	assert.NoError(t, err)

	storage.AssertExpectations(t)
}

func TestPerformCleanupOperationDeliveryLogCleanup(t *testing.T) {
	storage := mocks.Storage{}
	storage.On("CleanupDeliveryLog", "30 days").Return(5, nil)

	err := engine.PerformCleanupOperation(&storage, types.CliFlags{
		PerformDeliveryLogCleanup: true,
		MaxAge:                    "30 days",
	})
	assert.NoError(t, err)

	storage.AssertExpectations(t)
}

func TestPerformCleanupOperationOnStorageError(t *testing.T) {
	storage := mocks.Storage{}
	storage.On("CleanupOldGames", "90 days").Return(0, errors.New("cleanup failed"))

	err := engine.PerformCleanupOperation(&storage, types.CliFlags{
		PerformOldGamesCleanup: true,
		MaxAge:                 "90 days",
	})
	assert.Error(t, err)
}

func TestPerformCleanupOperationUnknownOperation(t *testing.T) {
	storage := mocks.Storage{}

	err := engine.PerformCleanupOperation(&storage, types.CliFlags{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown operation")
}
