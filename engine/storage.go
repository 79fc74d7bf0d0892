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

// This source file contains an implementation of interface between Go code and
// (almost any) SQL database like PostgreSQL or SQLite.
//
// It is possible to configure connection to selected database by using
// StorageConfiguration structure. Currently that structure contains two
// configurable parameter:
//
// Driver - a SQL driver, like "sqlite3", "postgres" etc.
// DataSource - specification of data source. The content of this parameter depends on the database used.

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL database driver
	_ "github.com/mattn/go-sqlite3" // SQLite database driver

	"github.com/rs/zerolog/log"

	"github.com/yardgoats-tracker/notification-service/conf"
	"github.com/yardgoats-tracker/notification-service/types"
)

// Storage represents an interface to almost any database or storage system
type Storage interface {
	Close() error
	UpsertGame(entry types.GameEntry, updatedAt time.Time) (types.GameID, error)
	ReadHomeGamesOnDate(date types.GameDate) ([]types.Game, error)
	ReplacePromotions(gameID types.GameID, promotions []types.PromoEntry) error
	ReadPromotionsForGame(gameID types.GameID) ([]types.Promotion, error)
	ReadActiveRecipients() ([]types.Recipient, error)
	ReadLastSyncTime() (time.Time, error)
	ReadDeliveryRecord(
		gameID types.GameID, recipientID types.RecipientID, channel types.Channel) (
		types.DeliveryRecord, bool, error)
	WriteDeliveryRecord(record types.DeliveryRecord) error
	PrintOldGamesForCleanup(maxAge string) error
	CleanupOldGames(maxAge string) (int, error)
	PrintDeliveryLogForCleanup(maxAge string) error
	CleanupDeliveryLog(maxAge string) (int, error)
}

// DBStorage is an implementation of Storage interface that use selected SQL like database
// like SQLite, PostgreSQL, MariaDB, RDS etc. That implementation is based on the standard
// sql package. It is possible to configure connection via Configuration structure.
type DBStorage struct {
	connection   *sql.DB
	dbDriverType types.DBDriver
}

// error messages
const (
	unableToCloseDBRowsHandle = "Unable to close DB rows handle"
	unableToRollbackMessage   = "Unable to rollback transaction"
)

// other messages
const (
	GameDateMessage  = "Game date"
	OpponentMessage  = "Opponent"
	UpdatedAtMessage = "Updated at"
	AgeMessage       = "Age"
	MaxAgeAttribute  = "max age"
	DeleteStatement  = "delete statement"
)

// SQL statements
const (
	// Read the surrogate key of a game by its natural key. Part of the
	// explicit upsert: the read and the subsequent write share one
	// transaction.
	selectGameIDByDate = `
		SELECT id
		  FROM games
		 WHERE game_date = $1
`

	insertGameStatement = `
		INSERT INTO games
		(game_date, day_of_week, start_time, opponent, is_home, ticket_url, updated_at)
		VALUES
		($1, $2, $3, $4, $5, $6, $7)
`

	updateGameStatement = `
		UPDATE games
		   SET day_of_week = $1,
		       start_time = $2,
		       opponent = $3,
		       is_home = $4,
		       ticket_url = $5,
		       updated_at = $6
		 WHERE id = $7
`

	deletePromotionsForGameStatement = `
		DELETE
		  FROM promotions
		 WHERE game_id = $1
`

	insertPromotionStatement = `
		INSERT INTO promotions (game_id, promo_type, description)
		VALUES ($1, $2, $3)
`

	readPromotionsForGameQuery = `
		SELECT id, game_id, promo_type, description
		  FROM promotions
		 WHERE game_id = $1
		 ORDER BY id
`

	readHomeGamesOnDateQuery = `
		SELECT id, game_date, day_of_week, start_time, opponent, is_home, ticket_url, updated_at
		  FROM games
		 WHERE game_date = $1 AND is_home = $2
		 ORDER BY id
`

	readActiveRecipientsQuery = `
		SELECT id, name, phone, email, active
		  FROM recipients
		 WHERE active = $1
		 ORDER BY id
`

	readLastSyncTimeQuery = `
		SELECT MAX(updated_at) FROM games
`

	readDeliveryRecordQuery = `
		SELECT status, sent_at
		  FROM alerts_sent
		 WHERE game_id = $1 AND recipient_id = $2 AND channel = $3
`

	insertDeliveryRecordStatement = `
		INSERT INTO alerts_sent (game_id, recipient_id, channel, status, sent_at)
		VALUES ($1, $2, $3, $4, $5)
`

	updateDeliveryRecordStatement = `
		UPDATE alerts_sent
		   SET status = $1,
		       sent_at = $2
		 WHERE game_id = $3 AND recipient_id = $4 AND channel = $5
`

	// Delete older records from games table; promotions cascade
	deleteOldRecordsFromGamesTable = `
		DELETE
		  FROM games
		 WHERE updated_at < NOW() - $1::INTERVAL
`

	// Delete older records from alerts_sent table
	deleteOldRecordsFromDeliveryLogTable = `
		DELETE
		  FROM alerts_sent
		 WHERE sent_at < NOW() - $1::INTERVAL
`

	// Display older records from games table
	displayOldRecordsFromGamesTable = `
		SELECT game_date, opponent, updated_at
		  FROM games
		 WHERE updated_at < NOW() - $1::INTERVAL
		 ORDER BY updated_at
`

	// Display older records from alerts_sent table
	displayOldRecordsFromDeliveryLogTable = `
		SELECT game_id, recipient_id, channel, status, sent_at
		  FROM alerts_sent
		 WHERE sent_at < NOW() - $1::INTERVAL
		 ORDER BY sent_at
`
)

// NewStorage function creates and initializes a new instance of Storage interface
func NewStorage(configuration conf.StorageConfiguration) (*DBStorage, error) {
	driverType, driverName, dataSource, err := initAndGetDriver(configuration)
	if err != nil {
		return nil, err
	}

	log.Info().Msgf(
		"Making connection to data storage, driver=%s",
		driverName,
	)

	connection, err := sql.Open(driverName, dataSource)
	if err != nil {
		log.Error().Err(err).Msg("Can not connect to data storage")
		return nil, err
	}

	return NewFromConnection(connection, driverType), nil
}

// NewFromConnection function creates and initializes a new instance of Storage interface from prepared connection
func NewFromConnection(connection *sql.DB, dbDriverType types.DBDriver) *DBStorage {
	return &DBStorage{
		connection:   connection,
		dbDriverType: dbDriverType,
	}
}

// initAndGetDriver initializes driver, checks if it's supported and returns
// driver type, driver name, dataSource and error
func initAndGetDriver(configuration conf.StorageConfiguration) (driverType types.DBDriver, driverName, dataSource string, err error) {
	driverName = configuration.Driver

	switch driverName {
	case "sqlite3":
		driverType = types.DBDriverSQLite3
		dataSource = configuration.SQLiteDBFile + "?_foreign_keys=on"
	case "postgres":
		driverType = types.DBDriverPostgres
		dataSource = fmt.Sprintf(
			"postgresql://%v:%v@%v:%v/%v?%v",
			configuration.PGUsername,
			configuration.PGPassword,
			configuration.PGHost,
			configuration.PGPort,
			configuration.PGDBName,
			configuration.PGParams,
		)
	default:
		err = fmt.Errorf("driver %v is not supported", driverName)
		return
	}

	return
}

// Close method closes the connection to database. Needs to be called at the end of application lifecycle.
func (storage DBStorage) Close() error {
	log.Info().Msg("Closing connection to data storage")
	if storage.connection != nil {
		err := storage.connection.Close()
		if err != nil {
			log.Error().Err(err).Msg("Can not close connection to data storage")
			return err
		}
	}
	return nil
}

// rollback function tries to roll back a transaction, logging any secondary
// failure, and returns the original error.
func rollback(tx *sql.Tx, err error) error {
	if rollbackErr := tx.Rollback(); rollbackErr != nil {
		log.Error().Err(rollbackErr).Msg(unableToRollbackMessage)
	}
	return err
}

// UpsertGame method inserts a new game keyed by its date, or overwrites all
// mutable fields of the existing game with that date. The read and the write
// share one transaction so a concurrent run can not produce two rows for one
// date. Returns the game's surrogate key.
func (storage DBStorage) UpsertGame(entry types.GameEntry, updatedAt time.Time) (types.GameID, error) {
	tx, err := storage.connection.Begin()
	if err != nil {
		return 0, err
	}

	var gameID types.GameID
	err = tx.QueryRow(selectGameIDByDate, string(entry.Date)).Scan(&gameID)

	switch {
	case err == sql.ErrNoRows:
		_, err = tx.Exec(insertGameStatement,
			string(entry.Date), entry.DayOfWeek, entry.StartTime,
			entry.Opponent, entry.IsHome, toNullString(entry.TicketURL), updatedAt)
		if err != nil {
			return 0, rollback(tx, err)
		}
		// surrogate key of the freshly inserted row
		err = tx.QueryRow(selectGameIDByDate, string(entry.Date)).Scan(&gameID)
		if err != nil {
			return 0, rollback(tx, err)
		}
	case err != nil:
		return 0, rollback(tx, err)
	default:
		_, err = tx.Exec(updateGameStatement,
			entry.DayOfWeek, entry.StartTime, entry.Opponent,
			entry.IsHome, toNullString(entry.TicketURL), updatedAt, int(gameID))
		if err != nil {
			return 0, rollback(tx, err)
		}
	}

	return gameID, tx.Commit()
}

// ReplacePromotions method replaces the whole promotion set owned by given
// game with the freshly parsed one. Delete and inserts run in one
// transaction, so concurrent readers never observe a half-replaced set.
func (storage DBStorage) ReplacePromotions(gameID types.GameID, promotions []types.PromoEntry) error {
	for _, promotion := range promotions {
		if !promotion.Type.Valid() {
			return fmt.Errorf("promotion type %q is not in the allowed set", promotion.Type)
		}
	}

	tx, err := storage.connection.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Exec(deletePromotionsForGameStatement, int(gameID))
	if err != nil {
		return rollback(tx, err)
	}

	for _, promotion := range promotions {
		_, err = tx.Exec(insertPromotionStatement,
			int(gameID), string(promotion.Type), promotion.Description)
		if err != nil {
			return rollback(tx, err)
		}
	}

	return tx.Commit()
}

// ReadPromotionsForGame method reads the current promotion set for one game.
func (storage DBStorage) ReadPromotionsForGame(gameID types.GameID) ([]types.Promotion, error) {
	var promotions = make([]types.Promotion, 0)

	rows, err := storage.connection.Query(readPromotionsForGameQuery, int(gameID))
	if err != nil {
		return promotions, err
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error().Err(err).Msg(unableToCloseDBRowsHandle)
		}
	}()

	for rows.Next() {
		var (
			promotion   types.Promotion
			promoType   string
			description sql.NullString
		)

		if err := rows.Scan(&promotion.ID, &promotion.GameID, &promoType, &description); err != nil {
			return promotions, err
		}
		promotion.Type = types.PromoType(promoType)
		promotion.Description = description.String
		promotions = append(promotions, promotion)
	}

	return promotions, nil
}

// ReadHomeGamesOnDate method reads all home games stored for given calendar
// date. The date-uniqueness invariant means at most one row is expected;
// callers treat more than one as a data integrity failure.
func (storage DBStorage) ReadHomeGamesOnDate(date types.GameDate) ([]types.Game, error) {
	var games = make([]types.Game, 0)

	rows, err := storage.connection.Query(readHomeGamesOnDateQuery, string(date), true)
	if err != nil {
		return games, err
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error().Err(err).Msg(unableToCloseDBRowsHandle)
		}
	}()

	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return games, err
		}
		games = append(games, game)
	}

	return games, nil
}

// scanGame function reads one row from the games table into a Game value.
func scanGame(rows *sql.Rows) (types.Game, error) {
	var (
		game      types.Game
		gameDate  string
		ticketURL sql.NullString
		updatedAt time.Time
	)

	err := rows.Scan(&game.ID, &gameDate, &game.DayOfWeek, &game.StartTime,
		&game.Opponent, &game.IsHome, &ticketURL, &updatedAt)
	if err != nil {
		return game, err
	}

	game.Date = types.GameDate(gameDate)
	game.TicketURL = ticketURL.String
	game.UpdatedAt = types.Timestamp(updatedAt)
	return game, nil
}

// ReadActiveRecipients method reads all recipients with the active flag set.
func (storage DBStorage) ReadActiveRecipients() ([]types.Recipient, error) {
	var recipients = make([]types.Recipient, 0)

	rows, err := storage.connection.Query(readActiveRecipientsQuery, true)
	if err != nil {
		return recipients, err
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error().Err(err).Msg(unableToCloseDBRowsHandle)
		}
	}()

	for rows.Next() {
		var (
			recipient types.Recipient
			phone     sql.NullString
			email     sql.NullString
		)

		if err := rows.Scan(&recipient.ID, &recipient.Name, &phone, &email, &recipient.Active); err != nil {
			return recipients, err
		}
		recipient.Phone = phone.String
		recipient.Email = email.String
		recipients = append(recipients, recipient)
	}

	return recipients, nil
}

// ReadLastSyncTime method returns the most recent updated_at timestamp
// across all games. It serves as the "last successful sync" marker used by
// the data-freshness guard. A zero time means the store holds no games.
func (storage DBStorage) ReadLastSyncTime() (time.Time, error) {
	var lastSync sql.NullTime

	err := storage.connection.QueryRow(readLastSyncTimeQuery).Scan(&lastSync)
	if err != nil {
		return time.Time{}, err
	}

	if !lastSync.Valid {
		return time.Time{}, nil
	}
	return lastSync.Time, nil
}

// ReadDeliveryRecord method reads the delivery record stored for given
// (game, recipient, channel) triple. The second return value reports whether
// such record exists at all.
func (storage DBStorage) ReadDeliveryRecord(
	gameID types.GameID, recipientID types.RecipientID, channel types.Channel,
) (types.DeliveryRecord, bool, error) {
	record := types.DeliveryRecord{
		GameID:      gameID,
		RecipientID: recipientID,
		Channel:     channel,
	}

	var (
		status string
		sentAt time.Time
	)

	err := storage.connection.QueryRow(
		readDeliveryRecordQuery, int(gameID), int(recipientID), string(channel),
	).Scan(&status, &sentAt)

	if err == sql.ErrNoRows {
		return record, false, nil
	}
	if err != nil {
		return record, false, err
	}

	record.Status = types.DeliveryStatus(status)
	record.SentAt = types.Timestamp(sentAt)
	return record, true, nil
}

// WriteDeliveryRecord method records the outcome of one delivery attempt.
// The first attempt for a triple inserts a row; a retry of a previously
// failed triple updates it in place. The read and the write share one
// transaction so the triple-uniqueness constraint can not be raced.
func (storage DBStorage) WriteDeliveryRecord(record types.DeliveryRecord) error {
	tx, err := storage.connection.Begin()
	if err != nil {
		return err
	}

	var existingStatus string
	err = tx.QueryRow(
		readDeliveryRecordQuery,
		int(record.GameID), int(record.RecipientID), string(record.Channel),
	).Scan(&existingStatus, new(time.Time))

	switch {
	case err == sql.ErrNoRows:
		_, err = tx.Exec(insertDeliveryRecordStatement,
			int(record.GameID), int(record.RecipientID), string(record.Channel),
			string(record.Status), time.Time(record.SentAt))
		if err != nil {
			return rollback(tx, err)
		}
	case err != nil:
		return rollback(tx, err)
	default:
		if types.DeliveryStatus(existingStatus) == types.StatusDelivered {
			// the triple was already delivered; never overwrite that fact
			return rollback(tx, fmt.Errorf(
				"delivery record for game %d, recipient %d, channel %s already delivered",
				record.GameID, record.RecipientID, record.Channel))
		}
		_, err = tx.Exec(updateDeliveryRecordStatement,
			string(record.Status), time.Time(record.SentAt),
			int(record.GameID), int(record.RecipientID), string(record.Channel))
		if err != nil {
			return rollback(tx, err)
		}
	}

	return tx.Commit()
}

// getPrintableStatement returns SQL statement in form prepared for logging
func getPrintableStatement(sqlStatement string) string {
	s := strings.ReplaceAll(sqlStatement, "\n", " ")
	s = strings.ReplaceAll(s, "\t", "")
	return strings.Trim(s, " ")
}

// PrintOldGamesForCleanup method prints all games older than specified
// relative time
func (storage DBStorage) PrintOldGamesForCleanup(maxAge string) error {
	log.Info().
		Str(MaxAgeAttribute, maxAge).
		Str("select statement", getPrintableStatement(displayOldRecordsFromGamesTable)).
		Msg("PrintOldGamesForCleanup operation")

	rows, err := storage.connection.Query(displayOldRecordsFromGamesTable, maxAge)
	if err != nil {
		return err
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error().Err(err).Msg(unableToCloseDBRowsHandle)
		}
	}()

	// used to compute a real record age
	now := time.Now()

	for rows.Next() {
		var (
			gameDate  string
			opponent  string
			updatedAt time.Time
		)

		if err := rows.Scan(&gameDate, &opponent, &updatedAt); err != nil {
			return err
		}

		age := int(math.Ceil(now.Sub(updatedAt).Hours() / 24)) // in days

		log.Info().
			Str(GameDateMessage, gameDate).
			Str(OpponentMessage, opponent).
			Str(UpdatedAtMessage, updatedAt.Format(time.RFC3339)).
			Int(AgeMessage, age).
			Msg("Old record from `games` table")
	}
	return nil
}

// PrintDeliveryLogForCleanup method prints all delivery records older than
// specified relative time
func (storage DBStorage) PrintDeliveryLogForCleanup(maxAge string) error {
	log.Info().
		Str(MaxAgeAttribute, maxAge).
		Str("select statement", getPrintableStatement(displayOldRecordsFromDeliveryLogTable)).
		Msg("PrintDeliveryLogForCleanup operation")

	rows, err := storage.connection.Query(displayOldRecordsFromDeliveryLogTable, maxAge)
	if err != nil {
		return err
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			log.Error().Err(err).Msg(unableToCloseDBRowsHandle)
		}
	}()

	for rows.Next() {
		var (
			gameID      int
			recipientID int
			channel     string
			status      string
			sentAt      time.Time
		)

		if err := rows.Scan(&gameID, &recipientID, &channel, &status, &sentAt); err != nil {
			return err
		}

		log.Info().
			Int("game", gameID).
			Int("recipient", recipientID).
			Str("channel", channel).
			Str("status", status).
			Str("sent at", sentAt.Format(time.RFC3339)).
			Msg("Old record from `alerts_sent` table")
	}
	return nil
}

// cleanup method deletes all records older than specified relative time
// using the given delete statement.
func (storage DBStorage) cleanup(maxAge, statement string) (int, error) {
	log.Info().
		Str(MaxAgeAttribute, maxAge).
		Str(DeleteStatement, getPrintableStatement(statement)).
		Msg("Cleanup operation")

	result, err := storage.connection.Exec(statement, maxAge)
	if err != nil {
		return 0, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// CleanupOldGames method deletes all games older than specified relative
// time. Their promotions are removed by the cascade rule.
func (storage DBStorage) CleanupOldGames(maxAge string) (int, error) {
	return storage.cleanup(maxAge, deleteOldRecordsFromGamesTable)
}

// CleanupDeliveryLog method deletes all delivery records older than
// specified relative time
func (storage DBStorage) CleanupDeliveryLog(maxAge string) (int, error) {
	return storage.cleanup(maxAge, deleteOldRecordsFromDeliveryLogTable)
}

// toNullString converts an empty string into SQL NULL.
func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
