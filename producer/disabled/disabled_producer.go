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

// Package disabled contains no-op implementations used when a channel or
// the audit stream is switched off in configuration.
package disabled

import (
	"github.com/rs/zerolog/log"

	"github.com/yardgoats-tracker/notification-service/producer"
	"github.com/yardgoats-tracker/notification-service/types"
)

// Notifier is an implementation of Notifier interface where no message is sent
type Notifier struct {
}

// Send logs the message instead of delivering it anywhere
func (notifier *Notifier) Send(msg producer.Message) error {
	log.Info().
		Str("destination", msg.Destination).
		Str("subject", msg.Subject).
		Msg("Notifications are disabled, message not sent")
	return nil
}

// Close return nil
func (notifier *Notifier) Close() error {
	return nil
}

// Producer is an implementation of AuditProducer interface where no message is sent
type Producer struct {
}

// ProduceMessage doesn't publish any message.
func (producer *Producer) ProduceMessage(msg types.ProducerMessage) (int32, int64, error) {
	return 0, -1, nil
}

// Close return nil
func (producer *Producer) Close() error {
	return nil
}
