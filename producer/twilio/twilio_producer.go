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

// Package twilio contains an implementation of Notifier interface that
// delivers SMS messages through the Twilio REST API.
package twilio

import (
	"time"

	twiliosdk "github.com/twilio/twilio-go"
	twilioAPI "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/rs/zerolog/log"

	"github.com/yardgoats-tracker/notification-service/conf"
	"github.com/yardgoats-tracker/notification-service/producer"
)

const (
	// maxMessageLength is the hard SMS body limit; longer bodies are
	// truncated with an ellipsis
	maxMessageLength = 320

	maxRetries     = 3
	retryBaseDelay = 2 * time.Second
)

// messageCreator is the subset of the Twilio API client used by this
// producer. The SDK client satisfies it; tests inject their own.
type messageCreator interface {
	CreateMessage(params *twilioAPI.CreateMessageParams) (*twilioAPI.ApiV2010Message, error)
}

// Producer is an implementation of Notifier interface for the SMS channel
type Producer struct {
	Configuration conf.SMSConfiguration
	API           messageCreator
}

// New constructs new implementation of Notifier interface
func New(config *conf.ConfigStruct) (*Producer, error) {
	smsConfig := conf.GetSMSConfiguration(*config)

	client := twiliosdk.NewRestClientWithParams(twiliosdk.ClientParams{
		Username: smsConfig.AccountSID,
		Password: smsConfig.AuthToken,
	})

	return &Producer{
		Configuration: smsConfig,
		API:           client.Api,
	}, nil
}

// Send delivers one SMS message. Transient failures are retried with
// exponential backoff before the delivery is reported as failed.
func (p *Producer) Send(msg producer.Message) error {
	body := truncateMessage(msg.Body)

	params := &twilioAPI.CreateMessageParams{}
	params.SetTo(msg.Destination)
	params.SetFrom(p.Configuration.FromNumber)
	params.SetBody(body)

	var err error
	delay := retryBaseDelay

	for attempt := 1; attempt <= maxRetries; attempt++ {
		var response *twilioAPI.ApiV2010Message
		response, err = p.API.CreateMessage(params)
		if err == nil {
			status := "sent"
			if response != nil && response.Status != nil {
				status = *response.Status
			}
			log.Info().
				Str("to", producer.MaskPhone(msg.Destination)).
				Str("status", status).
				Msg("SMS sent")
			return nil
		}

		if attempt < maxRetries {
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("delay", delay).
				Str("to", producer.MaskPhone(msg.Destination)).
				Msg("SMS delivery failed, retrying")
			time.Sleep(delay)
			delay *= 2
		}
	}

	log.Error().
		Err(err).
		Int("attempts", maxRetries).
		Str("to", producer.MaskPhone(msg.Destination)).
		Msg("SMS delivery failed")
	return err
}

// Close closes Notifier (in case of Twilio implementation, it does not do anything)
func (p *Producer) Close() error {
	return nil
}

// truncateMessage cuts the body down to the SMS length limit. The limit is
// counted in runes so multi-byte characters are never split.
func truncateMessage(body string) string {
	runes := []rune(body)
	if len(runes) <= maxMessageLength {
		return body
	}
	log.Warn().Int("length", len(runes)).Msg("SMS body over length limit, truncating")
	return string(runes[:maxMessageLength-3]) + "..."
}
