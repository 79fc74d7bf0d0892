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

package producer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yardgoats-tracker/notification-service/producer"
)

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "+1860***0001", producer.MaskPhone("+18605550001"))
	assert.Equal(t, "12345***6789", producer.MaskPhone("123455556789"))
}

func TestMaskPhoneShortInput(t *testing.T) {
	assert.Equal(t, "***", producer.MaskPhone("12345"))
	assert.Equal(t, "***", producer.MaskPhone(""))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "da***@example.com", producer.MaskEmail("dad@example.com"))
	assert.Equal(t, "al***@example.com", producer.MaskEmail("alerts@example.com"))
}

func TestMaskEmailShortLocalPart(t *testing.T) {
	assert.Equal(t, "***@example.com", producer.MaskEmail("me@example.com"))
}

func TestMaskEmailNoAtSign(t *testing.T) {
	assert.Equal(t, "***", producer.MaskEmail("not an email"))
}
