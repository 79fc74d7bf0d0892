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

// This source file contains the delivery pipeline. One run walks the
// qualifying games and the active recipients, checks the delivery log so no
// (game, recipient, channel) triple is ever delivered twice, sends over SMS
// and email, and records every attempt. A stale store aborts the whole run
// before anything is sent.

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yardgoats-tracker/notification-service/conf"
	"github.com/yardgoats-tracker/notification-service/producer"
	"github.com/yardgoats-tracker/notification-service/types"
)

// DispatchStatistics accumulates counters for one delivery run
type DispatchStatistics struct {
	GamesChecked int
	AlertsSent   int
	SMSSent      int
	EmailSent    int
	SMSFailed    int
	EmailFailed  int
	Skipped      int
}

// Dispatcher coordinates one delivery run across all channels
type Dispatcher struct {
	Storage          Storage
	SMS              producer.Notifier
	Email            producer.Notifier
	Audit            producer.AuditProducer
	Filter           *RecipientFilter
	Configuration    conf.NotificationsConfiguration
	DefaultTicketURL string
	DryRun           bool

	// Now is overridable in tests
	Now func() time.Time
}

// NewDispatcher constructs a dispatcher over given storage, channels and
// audit stream
func NewDispatcher(
	storage Storage,
	sms, email producer.Notifier,
	audit producer.AuditProducer,
	filter *RecipientFilter,
	configuration conf.NotificationsConfiguration,
	defaultTicketURL string,
	dryRun bool,
) *Dispatcher {
	return &Dispatcher{
		Storage:          storage,
		SMS:              sms,
		Email:            email,
		Audit:            audit,
		Filter:           filter,
		Configuration:    configuration,
		DefaultTicketURL: defaultTicketURL,
		DryRun:           dryRun,
		Now:              time.Now,
	}
}

// Run executes the full delivery pipeline for a given reference day
func (dispatcher *Dispatcher) Run(today time.Time) (DispatchStatistics, error) {
	var stats DispatchStatistics

	runID := uuid.New().String()

	if err := dispatcher.checkDataFreshness(); err != nil {
		StaleDataRunsSkipped.Inc()
		return stats, err
	}

	selector := NewSelector(dispatcher.Storage, dispatcher.Configuration.LeadTimeDays)
	targetDate := selector.TargetDate(today)

	log.Info().
		Str("run id", runID).
		Str("today", today.Format(time.DateOnly)).
		Str("target date", string(targetDate)).
		Bool("dry run", dispatcher.DryRun).
		Msg("Starting delivery run")

	games, err := selector.QualifyingGames(today)
	if err != nil {
		return stats, err
	}
	stats.GamesChecked = len(games)

	if len(games) == 0 {
		log.Info().Str("target date", string(targetDate)).Msg("No qualifying games, nothing to send")
		return stats, nil
	}

	recipients, err := dispatcher.loadRecipients()
	if err != nil {
		return stats, err
	}
	if len(recipients) == 0 {
		log.Warn().Msg("No active recipients configured")
		return stats, nil
	}

	log.Info().
		Int("games", len(games)).
		Int("recipients", len(recipients)).
		Msg("Delivery targets resolved")

	for _, game := range games {
		if err := dispatcher.processGame(game, recipients, runID, &stats); err != nil {
			return stats, err
		}
	}

	log.Info().
		Str("run id", runID).
		Int("sent", stats.AlertsSent).
		Int("sms", stats.SMSSent).
		Int("email", stats.EmailSent).
		Int("failed", stats.SMSFailed+stats.EmailFailed).
		Int("skipped", stats.Skipped).
		Msg("Delivery run finished")

	return stats, nil
}

// checkDataFreshness aborts the run when the stored schedule is older than
// the configured staleness threshold. Notifying from stale data is worse
// than not notifying at all.
func (dispatcher *Dispatcher) checkDataFreshness() error {
	lastSync, err := dispatcher.Storage.ReadLastSyncTime()
	if err != nil {
		return err
	}

	if lastSync.IsZero() {
		return &StaleDataError{Msg: "no game data found in storage"}
	}

	age := dispatcher.Now().Sub(lastSync)
	if age > dispatcher.Configuration.StalenessThreshold {
		return &StaleDataError{
			Msg: fmt.Sprintf(
				"stored schedule is %.1f hours old, limit is %.1f hours",
				age.Hours(), dispatcher.Configuration.StalenessThreshold.Hours()),
		}
	}
	return nil
}

// loadRecipients reads the active recipients, validates each one and
// applies the configured allow and block lists
func (dispatcher *Dispatcher) loadRecipients() ([]types.Recipient, error) {
	recipients, err := dispatcher.Storage.ReadActiveRecipients()
	if err != nil {
		return nil, err
	}

	for _, recipient := range recipients {
		if err := recipient.Validate(); err != nil {
			return nil, &DataIntegrityError{
				Msg: fmt.Sprintf("recipient %d is invalid: %v", recipient.ID, err),
			}
		}
	}

	filtered, filterStats := dispatcher.Filter.Apply(recipients)
	if filterStats.Input != len(filtered) {
		log.Info().
			Int("input", filterStats.Input).
			Int("allowed", filterStats.Allowed).
			Int("blocked", filterStats.Blocked).
			Msg("Recipient filter applied")
	}
	return filtered, nil
}

// processGame renders one game's payload and delivers it to every recipient
// over every channel the recipient can receive
func (dispatcher *Dispatcher) processGame(
	game types.Game, recipients []types.Recipient, runID string, stats *DispatchStatistics,
) error {
	promotions, err := dispatcher.Storage.ReadPromotionsForGame(game.ID)
	if err != nil {
		return err
	}

	payload := BuildNotificationPayload(game, promotions, dispatcher.DefaultTicketURL)
	smsBody := FormatSMSMessage(payload)
	subject := FormatEmailSubject(payload)
	emailBody, err := RenderEmailBody(payload)
	if err != nil {
		return err
	}

	log.Info().
		Str("date", string(payload.GameDate)).
		Str("opponent", payload.Opponent).
		Str("promotions", payload.PromoSummary).
		Msg("Processing game")

	for _, recipient := range recipients {
		if recipient.HasPhone() {
			message := producer.Message{Destination: recipient.Phone, Body: smsBody}
			err := dispatcher.deliver(payload, recipient, types.ChannelSMS, dispatcher.SMS, message, runID, stats)
			if err != nil {
				return err
			}
		}

		if recipient.HasEmail() {
			message := producer.Message{Destination: recipient.Email, Subject: subject, Body: emailBody}
			err := dispatcher.deliver(payload, recipient, types.ChannelEmail, dispatcher.Email, message, runID, stats)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// deliver sends one message to one recipient over one channel. In dry run
// mode nothing is sent, recorded or deduplicated; otherwise the delivery
// log is checked first and the attempt's outcome is always recorded.
// Returned errors are storage failures; a failed send is counted, recorded
// and does not stop the run.
func (dispatcher *Dispatcher) deliver(
	payload types.NotificationPayload,
	recipient types.Recipient,
	channel types.Channel,
	notifier producer.Notifier,
	message producer.Message,
	runID string,
	stats *DispatchStatistics,
) error {
	if dispatcher.DryRun {
		log.Info().
			Str("channel", string(channel)).
			Str("recipient", recipient.Name).
			Msg("Would send notification")
		dispatcher.countSent(channel, stats)
		return nil
	}

	record, found, err := dispatcher.Storage.ReadDeliveryRecord(payload.GameID, recipient.ID, channel)
	if err != nil {
		return err
	}
	if found && record.Status == types.StatusDelivered {
		log.Debug().
			Int("game", int(payload.GameID)).
			Int("recipient", int(recipient.ID)).
			Str("channel", string(channel)).
			Msg("Notification already delivered")
		stats.Skipped++
		NotificationNotSentDuplicate.Inc()
		return nil
	}

	status := types.StatusDelivered
	sendErr := notifier.Send(message)
	if sendErr != nil {
		status = types.StatusFailed
		sendErr = &DeliveryError{Channel: string(channel), Err: sendErr}
	}

	now := dispatcher.Now()
	err = dispatcher.Storage.WriteDeliveryRecord(types.DeliveryRecord{
		GameID:      payload.GameID,
		RecipientID: recipient.ID,
		Channel:     channel,
		Status:      status,
		SentAt:      types.Timestamp(now),
	})
	if err != nil {
		return err
	}

	dispatcher.publishAuditEvent(payload, recipient, channel, status, runID, now)

	if sendErr != nil {
		log.Error().
			Err(sendErr).
			Str("channel", string(channel)).
			Str("recipient", recipient.Name).
			Msg("Notification delivery failed")
		dispatcher.countFailed(channel, stats)
		NotificationNotSentErrorState.Inc()
		return nil
	}

	log.Info().
		Str("channel", string(channel)).
		Str("recipient", recipient.Name).
		Msg("Notification delivered")
	dispatcher.countSent(channel, stats)
	NotificationSent.Inc()
	return nil
}

func (dispatcher *Dispatcher) countSent(channel types.Channel, stats *DispatchStatistics) {
	stats.AlertsSent++
	switch channel {
	case types.ChannelSMS:
		stats.SMSSent++
	case types.ChannelEmail:
		stats.EmailSent++
	}
}

func (dispatcher *Dispatcher) countFailed(channel types.Channel, stats *DispatchStatistics) {
	switch channel {
	case types.ChannelSMS:
		stats.SMSFailed++
	case types.ChannelEmail:
		stats.EmailFailed++
	}
}

// publishAuditEvent reports one delivery attempt to the audit stream. A
// broken audit stream never fails the delivery itself.
func (dispatcher *Dispatcher) publishAuditEvent(
	payload types.NotificationPayload,
	recipient types.Recipient,
	channel types.Channel,
	status types.DeliveryStatus,
	runID string,
	now time.Time,
) {
	event := types.AuditEvent{
		RunID:       runID,
		GameDate:    payload.GameDate,
		RecipientID: recipient.ID,
		Channel:     channel,
		Status:      status,
		Timestamp:   now.UTC().Format(time.RFC3339),
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Unable to encode audit event")
		return
	}

	_, _, err = dispatcher.Audit.ProduceMessage(types.ProducerMessage(encoded))
	if err != nil {
		log.Error().Err(err).Msg("Unable to publish audit event")
	}
}
