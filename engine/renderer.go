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

// This source file contains the rendering of notification payloads into
// channel-specific messages. A payload is self-contained: the recipient
// needs no click-through to decide whether to attend.

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/yardgoats-tracker/notification-service/types"
)

const (
	// smsLengthLimit is the self-contained SMS budget; the promotion
	// summary is truncated first to stay under it
	smsLengthLimit = 320

	// promoDescriptionLimit applies inside the promotion summary
	promoDescriptionLimit = 35

	// subjectPromoLimit applies to the top promotion in the email subject
	subjectPromoLimit = 40

	noPromotionsPlaceholder = "No promotions scheduled"

	fallbackSubjectLabel = "Upcoming Game"
)

// icons shown in front of promotion descriptions
var promoIcons = map[types.PromoType]string{
	types.PromoGiveaway:  "🎁",
	types.PromoFireworks: "🎆",
	types.PromoDiscount:  "💰",
	types.PromoTheme:     "🎭",
	types.PromoHeritage:  "⚾",
	types.PromoSpecial:   "⭐",
}

// BuildNotificationPayload flattens one game and its promotion set into the
// channel-agnostic payload both renderers consume. The day of week is
// derived from the game date.
func BuildNotificationPayload(game types.Game, promotions []types.Promotion, defaultTicketURL string) types.NotificationPayload {
	payload := types.NotificationPayload{
		GameID:     game.ID,
		GameDate:   game.Date,
		Day:        game.DayOfWeek,
		StartTime:  game.StartTime,
		Opponent:   game.Opponent,
		TicketURL:  game.TicketURL,
		Promotions: promotions,
		HasPromos:  len(promotions) > 0,
	}

	if gameTime, err := game.Date.Time(); err == nil {
		payload.Day = gameTime.Weekday().String()
		payload.DisplayDate = gameTime.Format("Mon Jan 2")
	} else {
		payload.DisplayDate = string(game.Date)
	}

	if payload.StartTime == "" {
		payload.StartTime = "TBD"
	}
	if payload.TicketURL == "" {
		payload.TicketURL = defaultTicketURL
	}

	if payload.HasPromos {
		payload.PromoSummary = formatPromoSummary(promotions)
	} else {
		payload.PromoSummary = noPromotionsPlaceholder
	}

	return payload
}

// formatPromoSummary formats promotions into a concise one-line summary,
// for example "🎁 Cowboy Hat Giveaway | 🎆 Post-Game Fireworks"
func formatPromoSummary(promotions []types.Promotion) string {
	parts := make([]string, 0, len(promotions))

	for _, promotion := range promotions {
		icon, known := promoIcons[promotion.Type]
		if !known {
			icon = promoIcons[types.PromoSpecial]
		}
		// jersey promotions always show the giveaway icon; the stored
		// type is left alone
		if strings.Contains(strings.ToLower(promotion.Description), "jersey") {
			icon = promoIcons[types.PromoGiveaway]
		}
		parts = append(parts, icon+" "+truncate(promotion.Description, promoDescriptionLimit))
	}

	return strings.Join(parts, " | ")
}

// FormatSMSMessage renders the payload into a self-contained SMS body. When
// the full message would exceed the length limit, the promotion summary is
// cut down so the rest of the message survives intact.
func FormatSMSMessage(payload types.NotificationPayload) string {
	message := composeSMS(payload, payload.PromoSummary)

	length := len([]rune(message))
	if length <= smsLengthLimit {
		return message
	}

	summaryRunes := []rune(payload.PromoSummary)
	budget := smsLengthLimit - length + len(summaryRunes)
	if budget < 4 {
		budget = 4
	}

	truncated := string(summaryRunes[:budget-3]) + "..."
	return composeSMS(payload, truncated)
}

func composeSMS(payload types.NotificationPayload, promoSummary string) string {
	return fmt.Sprintf(
		"🎯 Yard Goats %s %s @ %s\nvs %s\n%s\nTickets: %s\nReply STOP to unsubscribe",
		payload.Day,
		payload.DisplayDate,
		payload.StartTime,
		payload.Opponent,
		promoSummary,
		payload.TicketURL,
	)
}

// FormatEmailSubject renders the payload into the email subject line. The
// top promotion serves as the subject label when one exists.
func FormatEmailSubject(payload types.NotificationPayload) string {
	label := fallbackSubjectLabel
	if payload.HasPromos && len(payload.Promotions) > 0 {
		label = truncate(payload.Promotions[0].Description, subjectPromoLimit)
	}

	return fmt.Sprintf(
		"🎯 Yard Goats %s — %s vs %s | %s",
		payload.Day,
		payload.DisplayDate,
		payload.Opponent,
		label,
	)
}

// truncate cuts a string down to limit runes, marking the cut with an
// ellipsis
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

var emailTemplate = template.Must(template.New("game_card").Parse(emailBodyTemplate))

// RenderEmailBody renders the payload into the HTML game card email body
func RenderEmailBody(payload types.NotificationPayload) (string, error) {
	var builder strings.Builder
	if err := emailTemplate.Execute(&builder, payload); err != nil {
		return "", err
	}
	return builder.String(), nil
}

const emailBodyTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Arial, Helvetica, sans-serif; background: #f4f4f4; margin: 0; padding: 16px; }
  .card { max-width: 520px; margin: 0 auto; background: #ffffff; border-radius: 8px; overflow: hidden; }
  .header { background: #00447c; color: #ffffff; padding: 20px 24px; }
  .header h1 { margin: 0; font-size: 20px; }
  .header p { margin: 4px 0 0; color: #9bc3e6; }
  .body { padding: 20px 24px; color: #333333; }
  .promos ul { padding-left: 20px; }
  .promos li { margin: 6px 0; }
  .badge-none { color: #888888; font-style: italic; }
  .cta { display: inline-block; margin-top: 16px; padding: 12px 28px;
         background: #e4002b; color: #ffffff; text-decoration: none;
         border-radius: 4px; font-weight: bold; }
  .footer { padding: 12px 24px; color: #999999; font-size: 12px; }
</style>
</head>
<body>
  <div class="card">
    <div class="header">
      <h1>🎯 Yard Goats {{.Day}}, {{.DisplayDate}}</h1>
      <p>vs {{.Opponent}} &middot; {{.StartTime}}</p>
    </div>
    <div class="body">
      <div class="promos">
        {{if .HasPromos}}
        <ul>
          {{range .Promotions}}
          <li class="badge-{{.Type}}">{{.Description}}</li>
          {{end}}
        </ul>
        {{else}}
        <p class="badge-none">No promotions scheduled</p>
        {{end}}
      </div>
      <a class="cta" href="{{.TicketURL}}">Get Tickets</a>
    </div>
    <div class="footer">
      You receive these alerts because you are on the family alert list.
    </div>
  </div>
</body>
</html>
`
