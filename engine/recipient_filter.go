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
	"github.com/rs/zerolog/log"

	"github.com/yardgoats-tracker/notification-service/conf"
	"github.com/yardgoats-tracker/notification-service/types"
)

// FilterStatistics counts how the recipient list was narrowed down by the
// configured allow and block lists
type FilterStatistics struct {
	Input   int
	Allowed int
	Blocked int
}

// RecipientFilter narrows the active recipient list down using the
// configured allow and block lists. Recipients are matched by name.
type RecipientFilter struct {
	filterAllowed bool
	allowed       map[string]bool
	filterBlocked bool
	blocked       map[string]bool
}

// NewRecipientFilter constructs a recipient filter from the processing
// configuration. A recipient appearing on both lists is an error.
func NewRecipientFilter(configuration conf.ProcessingConfiguration) (*RecipientFilter, error) {
	filter := RecipientFilter{
		filterAllowed: configuration.FilterAllowedRecipients,
		allowed:       make(map[string]bool, len(configuration.AllowedRecipients)),
		filterBlocked: configuration.FilterBlockedRecipients,
		blocked:       make(map[string]bool, len(configuration.BlockedRecipients)),
	}

	for _, name := range configuration.AllowedRecipients {
		filter.allowed[name] = true
	}
	for _, name := range configuration.BlockedRecipients {
		filter.blocked[name] = true
	}

	if filter.filterAllowed && filter.filterBlocked {
		for name := range filter.allowed {
			if filter.blocked[name] {
				return nil, &RecipientFilterError{
					Msg: "recipient " + name + " is on both the allow list and the block list",
				}
			}
		}
	}

	return &filter, nil
}

// Apply returns the recipients that survive both lists, together with
// statistics about what was dropped
func (filter *RecipientFilter) Apply(recipients []types.Recipient) ([]types.Recipient, FilterStatistics) {
	stats := FilterStatistics{Input: len(recipients)}
	result := make([]types.Recipient, 0, len(recipients))

	for _, recipient := range recipients {
		if filter.filterAllowed && !filter.allowed[recipient.Name] {
			log.Debug().Str("recipient", recipient.Name).Msg("Recipient not on allow list")
			continue
		}
		if filter.filterBlocked && filter.blocked[recipient.Name] {
			log.Debug().Str("recipient", recipient.Name).Msg("Recipient on block list")
			stats.Blocked++
			continue
		}
		stats.Allowed++
		result = append(result, recipient)
	}

	return result, stats
}
