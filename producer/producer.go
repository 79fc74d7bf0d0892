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

// Package producer contains interfaces for the delivery side of the service:
// notifiers that carry rendered alerts to recipients over a single channel,
// and producers of delivery audit events.
package producer

import (
	"strings"

	"github.com/yardgoats-tracker/notification-service/types"
)

// Message represents one rendered notification addressed to one destination.
// Subject is empty for channels that have no subject concept.
type Message struct {
	Destination string
	Subject     string
	Body        string
}

// Notifier represents any channel over which a notification can be delivered
type Notifier interface {
	Send(msg Message) error
	Close() error
}

// AuditProducer represents any producer of delivery audit events
type AuditProducer interface {
	ProduceMessage(msg types.ProducerMessage) (int32, int64, error)
	Close() error
}

// MaskPhone masks a phone number for safe logging, e.g. +1860***0001
func MaskPhone(phone string) string {
	if len(phone) < 6 {
		return "***"
	}
	return phone[:5] + "***" + phone[len(phone)-4:]
}

// MaskEmail masks an email address for safe logging, e.g. al***@example.com
func MaskEmail(email string) string {
	local, domain, found := strings.Cut(email, "@")
	if !found {
		return "***"
	}
	if len(local) > 2 {
		return local[:2] + "***@" + domain
	}
	return "***@" + domain
}
