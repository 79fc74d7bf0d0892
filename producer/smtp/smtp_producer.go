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

// Package smtp contains an implementation of Notifier interface that
// delivers HTML email through a plain SMTP relay.
package smtp

import (
	"fmt"
	"mime"
	netsmtp "net/smtp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yardgoats-tracker/notification-service/conf"
	"github.com/yardgoats-tracker/notification-service/producer"
)

const fromName = "Yard Goats Alerts"

// sendMailFunc matches net/smtp.SendMail; tests inject their own.
type sendMailFunc func(addr string, auth netsmtp.Auth, from string, to []string, msg []byte) error

// Producer is an implementation of Notifier interface for the email channel
type Producer struct {
	Configuration conf.EmailConfiguration
	SendMail      sendMailFunc
}

// New constructs new implementation of Notifier interface
func New(config *conf.ConfigStruct) (*Producer, error) {
	emailConfig := conf.GetEmailConfiguration(*config)

	return &Producer{
		Configuration: emailConfig,
		SendMail:      netsmtp.SendMail,
	}, nil
}

// Send delivers one HTML email message
func (p *Producer) Send(msg producer.Message) error {
	addr := fmt.Sprintf("%s:%d", p.Configuration.SMTPHost, p.Configuration.SMTPPort)

	var auth netsmtp.Auth
	if p.Configuration.Username != "" {
		auth = netsmtp.PlainAuth("", p.Configuration.Username, p.Configuration.Password, p.Configuration.SMTPHost)
	}

	payload := buildMIMEMessage(p.Configuration.FromAddress, msg)

	err := p.SendMail(addr, auth, p.Configuration.FromAddress, []string{msg.Destination}, payload)
	if err != nil {
		log.Error().
			Err(err).
			Str("to", producer.MaskEmail(msg.Destination)).
			Msg("Email delivery failed")
		return err
	}

	log.Info().
		Str("to", producer.MaskEmail(msg.Destination)).
		Str("subject", msg.Subject).
		Msg("Email sent")
	return nil
}

// Close closes Notifier (in case of SMTP implementation, it does not do anything)
func (p *Producer) Close() error {
	return nil
}

// buildMIMEMessage assembles the full RFC 5322 message. The subject can
// carry non-ASCII characters so it is Q-encoded.
func buildMIMEMessage(from string, msg producer.Message) []byte {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("From: %s <%s>\r\n", fromName, from))
	builder.WriteString(fmt.Sprintf("To: %s\r\n", msg.Destination))
	builder.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject)))
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(msg.Body)

	return []byte(builder.String())
}
