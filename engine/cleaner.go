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
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/yardgoats-tracker/notification-service/types"
)

// Messages
const (
	databasePrintOldGamesForCleanupFailedMessage     = "Print records from `games` table prepared for cleanup failed"
	databasePrintDeliveryLogForCleanupFailedMessage  = "Print records from `alerts_sent` table prepared for cleanup failed"
	databaseCleanupOldGamesOperationFailedMessage    = "Cleanup records from `games` table failed"
	databaseCleanupDeliveryLogOperationFailedMessage = "Cleanup records from `alerts_sent` table failed"
	rowsDeletedMessage                               = "Rows deleted"
)

// PerformCleanupOperation function performs selected cleanup operation
func PerformCleanupOperation(storage Storage, cliFlags types.CliFlags) error {
	switch {
	case cliFlags.PrintOldGamesForCleanup:
		return printOldGamesForCleanup(storage, cliFlags)
	case cliFlags.PerformOldGamesCleanup:
		return performOldGamesCleanup(storage, cliFlags)
	case cliFlags.PrintDeliveryLogForCleanup:
		return printDeliveryLogForCleanup(storage, cliFlags)
	case cliFlags.PerformDeliveryLogCleanup:
		return performDeliveryLogCleanup(storage, cliFlags)
	default:
		return errors.New("Unknown operation selected")
	}
}

// printOldGamesForCleanup function prints all games older than the
// specified max age.
func printOldGamesForCleanup(storage Storage, cliFlags types.CliFlags) error {
	err := storage.PrintOldGamesForCleanup(cliFlags.MaxAge)
	if err != nil {
		log.Error().Err(err).Msg(databasePrintOldGamesForCleanupFailedMessage)
		return err
	}

	return nil
}

// performOldGamesCleanup function deletes all games older than the
// specified max age. Their promotions are removed by the cascade rule.
func performOldGamesCleanup(storage Storage, cliFlags types.CliFlags) error {
	affected, err := storage.CleanupOldGames(cliFlags.MaxAge)
	if err != nil {
		log.Error().Err(err).Msg(databaseCleanupOldGamesOperationFailedMessage)
		return err
	}
	log.Info().Int(rowsDeletedMessage, affected).Msg("Cleanup `games` finished")

	return nil
}

// printDeliveryLogForCleanup function prints all delivery records older
// than the specified max age.
func printDeliveryLogForCleanup(storage Storage, cliFlags types.CliFlags) error {
	err := storage.PrintDeliveryLogForCleanup(cliFlags.MaxAge)
	if err != nil {
		log.Error().Err(err).Msg(databasePrintDeliveryLogForCleanupFailedMessage)
		return err
	}

	return nil
}

// performDeliveryLogCleanup function deletes all delivery records older
// than the specified max age.
func performDeliveryLogCleanup(storage Storage, cliFlags types.CliFlags) error {
	affected, err := storage.CleanupDeliveryLog(cliFlags.MaxAge)
	if err != nil {
		log.Error().Err(err).Msg(databaseCleanupDeliveryLogOperationFailedMessage)
		return err
	}
	log.Info().Int(rowsDeletedMessage, affected).Msg("Cleanup `alerts_sent` finished")

	return nil
}
