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

package types

// This source file contains definitions of all data types shared between the
// engine, the configuration layer, and the delivery providers: games,
// promotions, recipients, delivery records, and the small enums (channel,
// promotion type, delivery status) that the database schema constrains.

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamp represents any timestamp in a form gathered from database
type Timestamp time.Time

// GameID represents the surrogate key of one row in the `games` table.
type GameID int

// RecipientID represents the surrogate key of one row in the `recipients` table.
type RecipientID int

// GameDate is a calendar date in ISO format (YYYY-MM-DD). It is the natural
// key of the `games` table: at most one game exists per date.
type GameDate string

// Time function parses the game date into a time.Time value.
func (d GameDate) Time() (time.Time, error) {
	return time.Parse("2006-01-02", string(d))
}

// Weekday function derives the day of week from the date itself. The source
// schedule also carries day names, but those are never trusted.
func (d GameDate) Weekday() (time.Weekday, error) {
	t, err := d.Time()
	if err != nil {
		return time.Sunday, err
	}
	return t.Weekday(), nil
}

// DBDriver type for db driver enum
type DBDriver int

const (
	// DBDriverSQLite3 shows that db driver is sqlite
	DBDriverSQLite3 DBDriver = iota
	// DBDriverPostgres shows that db driver is postgres
	DBDriverPostgres
	// DBDriverGeneral general sql (used for mock now)
	DBDriverGeneral
)

// Channel represents one delivery channel for a recipient.
type Channel string

// All delivery channels recorded in the `alerts_sent` table.
const (
	ChannelSMS   Channel = "sms"
	ChannelEmail Channel = "email"
)

// PromoType is the closed set of promotion classifications.
type PromoType string

// Promotion types as stored in the `promotions` table. The set is closed;
// anything the classifier cannot match falls back to PromoSpecial.
const (
	PromoGiveaway  PromoType = "giveaway"
	PromoFireworks PromoType = "fireworks"
	PromoDiscount  PromoType = "discount"
	PromoTheme     PromoType = "theme"
	PromoHeritage  PromoType = "heritage"
	PromoSpecial   PromoType = "special"
)

// Valid function checks the promotion type against the closed enum.
func (p PromoType) Valid() bool {
	switch p {
	case PromoGiveaway, PromoFireworks, PromoDiscount, PromoTheme, PromoHeritage, PromoSpecial:
		return true
	}
	return false
}

// DeliveryStatus represents the outcome recorded for one delivery triple.
type DeliveryStatus string

// Delivery statuses as stored in the `alerts_sent` table.
const (
	StatusDelivered DeliveryStatus = "delivered"
	StatusFailed    DeliveryStatus = "failed"
	StatusPending   DeliveryStatus = "pending"
)

// Game represents one record from the `games` table. The date is unique;
// the schedule ingestor overwrites all other fields on every run.
type Game struct {
	ID        GameID
	Date      GameDate
	DayOfWeek string
	StartTime string
	Opponent  string
	IsHome    bool
	TicketURL string
	UpdatedAt Timestamp
}

// StartHour method converts the stored start time ("7:05 PM") into an hour
// of day in 24h form. Returns an error for unparseable values ("TBD").
func (g Game) StartHour() (int, error) {
	fields := strings.Fields(g.StartTime)
	if len(fields) != 2 {
		return 0, fmt.Errorf("unparseable start time %q", g.StartTime)
	}
	clock := strings.SplitN(fields[0], ":", 2)
	hour, err := strconv.Atoi(clock[0])
	if err != nil || hour < 1 || hour > 12 {
		return 0, fmt.Errorf("unparseable start time %q", g.StartTime)
	}
	switch strings.ToUpper(fields[1]) {
	case "AM":
		return hour % 12, nil
	case "PM":
		return hour%12 + 12, nil
	}
	return 0, fmt.Errorf("unparseable start time %q", g.StartTime)
}

// GameEntry represents one normalized schedule entry as produced by the
// schedule source client, ready to be upserted keyed by date.
type GameEntry struct {
	Date      GameDate
	DayOfWeek string
	StartTime string
	Opponent  string
	IsHome    bool
	TicketURL string
}

// Promotion represents one record from the `promotions` table. Promotions
// are owned by exactly one game and replaced as a set on every ingestion run.
type Promotion struct {
	ID          int
	GameID      GameID
	Type        PromoType
	Description string
}

// PromoEntry is one freshly parsed (type, description) pair from the
// promotions source, before it is attached to a game.
type PromoEntry struct {
	Type        PromoType
	Description string
}

// Recipient represents one record from the `recipients` table. The core
// pipeline reads recipients, it never writes them.
type Recipient struct {
	ID     RecipientID
	Name   string
	Phone  string
	Email  string
	Active bool
}

// HasPhone reports whether the recipient can be reached over SMS.
func (r Recipient) HasPhone() bool {
	return r.Phone != ""
}

// HasEmail reports whether the recipient can be reached over email.
func (r Recipient) HasEmail() bool {
	return r.Email != ""
}

// Validate method checks the invariant that each recipient has at least
// one destination. A violation is a data integrity failure, not a skip.
func (r Recipient) Validate() error {
	if !r.HasPhone() && !r.HasEmail() {
		return fmt.Errorf("recipient %d (%s) has neither phone nor email", r.ID, r.Name)
	}
	return nil
}

// DeliveryRecord structure represents one record stored in the `alerts_sent`
// table. The (game, recipient, channel) triple is unique and is the
// deduplication mechanism for at-most-once delivery.
type DeliveryRecord struct {
	GameID      GameID
	RecipientID RecipientID
	Channel     Channel
	Status      DeliveryStatus
	SentAt      Timestamp
}

// NotificationPayload is the flattened, channel-agnostic structure built
// from one qualifying game and its promotion set. The same payload feeds
// both the SMS and the email renderers.
type NotificationPayload struct {
	GameID       GameID
	GameDate     GameDate
	DisplayDate  string
	Day          string
	StartTime    string
	Opponent     string
	TicketURL    string
	PromoSummary string
	Promotions   []Promotion
	HasPromos    bool
}

// ProducerMessage represents a message to be produced to the audit stream
type ProducerMessage []byte

// AuditEvent is the JSON structure published to the audit topic for every
// delivery attempt, so that outcomes can be inspected outside the database.
type AuditEvent struct {
	RunID       string         `json:"run_id"`
	GameDate    GameDate       `json:"game_date"`
	RecipientID RecipientID    `json:"recipient_id"`
	Channel     Channel        `json:"channel"`
	Status      DeliveryStatus `json:"status"`
	Timestamp   string         `json:"timestamp"`
}

// CliFlags represents structure holding all command line arguments/flags.
type CliFlags struct {
	RunIngest                  bool
	RunAlerts                  bool
	DryRun                     bool
	Today                      string
	Season                     int
	InitDatabase               bool
	ShowVersion                bool
	ShowAuthors                bool
	ShowConfiguration          bool
	PrintOldGamesForCleanup    bool
	PerformOldGamesCleanup     bool
	PrintDeliveryLogForCleanup bool
	PerformDeliveryLogCleanup  bool
	CleanupOnStartup           bool
	Verbose                    bool
	MaxAge                     string
}
