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

	"github.com/rs/zerolog/log"

	"github.com/yardgoats-tracker/notification-service/types"
)

// DDL statements for PostgreSQL.
//
// Promotions are owned by their game, so deleting a game cascades. The
// delivery log carries a uniqueness constraint over the full
// (game, recipient, channel) triple, which is what makes repeated runs
// idempotent at the database level.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id          SERIAL PRIMARY KEY,
		game_date   VARCHAR NOT NULL UNIQUE,
		day_of_week VARCHAR NOT NULL,
		start_time  VARCHAR NOT NULL,
		opponent    VARCHAR NOT NULL,
		is_home     BOOLEAN NOT NULL,
		ticket_url  VARCHAR,
		updated_at  TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS promotions (
		id          SERIAL PRIMARY KEY,
		game_id     INTEGER NOT NULL REFERENCES games (id) ON DELETE CASCADE,
		promo_type  VARCHAR NOT NULL CHECK (promo_type IN
			('giveaway', 'fireworks', 'discount', 'theme', 'heritage', 'special')),
		description VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS recipients (
		id     SERIAL PRIMARY KEY,
		name   VARCHAR NOT NULL,
		phone  VARCHAR,
		email  VARCHAR,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		CHECK (phone IS NOT NULL OR email IS NOT NULL)
	)`,
	`CREATE TABLE IF NOT EXISTS alerts_sent (
		id           SERIAL PRIMARY KEY,
		game_id      INTEGER NOT NULL REFERENCES games (id) ON DELETE CASCADE,
		recipient_id INTEGER NOT NULL REFERENCES recipients (id) ON DELETE CASCADE,
		channel      VARCHAR NOT NULL CHECK (channel IN ('sms', 'email')),
		status       VARCHAR NOT NULL,
		sent_at      TIMESTAMP NOT NULL,
		UNIQUE (game_id, recipient_id, channel)
	)`,
}

// DDL statements for SQLite, used by local deployments and tests.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		game_date   TEXT NOT NULL UNIQUE,
		day_of_week TEXT NOT NULL,
		start_time  TEXT NOT NULL,
		opponent    TEXT NOT NULL,
		is_home     INTEGER NOT NULL,
		ticket_url  TEXT,
		updated_at  TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS promotions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id     INTEGER NOT NULL REFERENCES games (id) ON DELETE CASCADE,
		promo_type  TEXT NOT NULL CHECK (promo_type IN
			('giveaway', 'fireworks', 'discount', 'theme', 'heritage', 'special')),
		description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS recipients (
		id     INTEGER PRIMARY KEY AUTOINCREMENT,
		name   TEXT NOT NULL,
		phone  TEXT,
		email  TEXT,
		active INTEGER NOT NULL DEFAULT 1,
		CHECK (phone IS NOT NULL OR email IS NOT NULL)
	)`,
	`CREATE TABLE IF NOT EXISTS alerts_sent (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id      INTEGER NOT NULL REFERENCES games (id) ON DELETE CASCADE,
		recipient_id INTEGER NOT NULL REFERENCES recipients (id) ON DELETE CASCADE,
		channel      TEXT NOT NULL CHECK (channel IN ('sms', 'email')),
		status       TEXT NOT NULL,
		sent_at      TIMESTAMP NOT NULL,
		UNIQUE (game_id, recipient_id, channel)
	)`,
}

// InitSchema method creates all tables used by the service if they don't
// exist already. It is triggered by the -init-db command line flag.
func (storage DBStorage) InitSchema() error {
	var statements []string

	switch storage.dbDriverType {
	case types.DBDriverPostgres:
		statements = postgresSchema
	case types.DBDriverSQLite3:
		statements = sqliteSchema
	default:
		return fmt.Errorf("schema initialization is not supported for driver %v", storage.dbDriverType)
	}

	for _, statement := range statements {
		if _, err := storage.connection.Exec(statement); err != nil {
			log.Error().Err(err).Msg("Unable to initialize database schema")
			return err
		}
	}

	log.Info().Msg("Database schema initialized")
	return nil
}
