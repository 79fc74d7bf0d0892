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

package mocks

import (
	time "time"

	mock "github.com/stretchr/testify/mock"

	types "github.com/yardgoats-tracker/notification-service/types"
)

// Storage is a mock type for the Storage type
type Storage struct {
	mock.Mock
}

// Close provides a mock function with given fields:
func (_m *Storage) Close() error {
	ret := _m.Called()

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// UpsertGame provides a mock function with given fields: entry, updatedAt
func (_m *Storage) UpsertGame(entry types.GameEntry, updatedAt time.Time) (types.GameID, error) {
	ret := _m.Called(entry, updatedAt)

	var r0 types.GameID
	if rf, ok := ret.Get(0).(func(types.GameEntry, time.Time) types.GameID); ok {
		r0 = rf(entry, updatedAt)
	} else {
		r0 = ret.Get(0).(types.GameID)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(types.GameEntry, time.Time) error); ok {
		r1 = rf(entry, updatedAt)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ReadHomeGamesOnDate provides a mock function with given fields: date
func (_m *Storage) ReadHomeGamesOnDate(date types.GameDate) ([]types.Game, error) {
	ret := _m.Called(date)

	var r0 []types.Game
	if rf, ok := ret.Get(0).(func(types.GameDate) []types.Game); ok {
		r0 = rf(date)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]types.Game)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(types.GameDate) error); ok {
		r1 = rf(date)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ReplacePromotions provides a mock function with given fields: gameID, promotions
func (_m *Storage) ReplacePromotions(gameID types.GameID, promotions []types.PromoEntry) error {
	ret := _m.Called(gameID, promotions)

	var r0 error
	if rf, ok := ret.Get(0).(func(types.GameID, []types.PromoEntry) error); ok {
		r0 = rf(gameID, promotions)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// ReadPromotionsForGame provides a mock function with given fields: gameID
func (_m *Storage) ReadPromotionsForGame(gameID types.GameID) ([]types.Promotion, error) {
	ret := _m.Called(gameID)

	var r0 []types.Promotion
	if rf, ok := ret.Get(0).(func(types.GameID) []types.Promotion); ok {
		r0 = rf(gameID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]types.Promotion)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(types.GameID) error); ok {
		r1 = rf(gameID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ReadActiveRecipients provides a mock function with given fields:
func (_m *Storage) ReadActiveRecipients() ([]types.Recipient, error) {
	ret := _m.Called()

	var r0 []types.Recipient
	if rf, ok := ret.Get(0).(func() []types.Recipient); ok {
		r0 = rf()
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]types.Recipient)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func() error); ok {
		r1 = rf()
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ReadLastSyncTime provides a mock function with given fields:
func (_m *Storage) ReadLastSyncTime() (time.Time, error) {
	ret := _m.Called()

	var r0 time.Time
	if rf, ok := ret.Get(0).(func() time.Time); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(time.Time)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func() error); ok {
		r1 = rf()
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ReadDeliveryRecord provides a mock function with given fields: gameID, recipientID, channel
func (_m *Storage) ReadDeliveryRecord(gameID types.GameID, recipientID types.RecipientID, channel types.Channel) (types.DeliveryRecord, bool, error) {
	ret := _m.Called(gameID, recipientID, channel)

	var r0 types.DeliveryRecord
	if rf, ok := ret.Get(0).(func(types.GameID, types.RecipientID, types.Channel) types.DeliveryRecord); ok {
		r0 = rf(gameID, recipientID, channel)
	} else {
		r0 = ret.Get(0).(types.DeliveryRecord)
	}

	var r1 bool
	if rf, ok := ret.Get(1).(func(types.GameID, types.RecipientID, types.Channel) bool); ok {
		r1 = rf(gameID, recipientID, channel)
	} else {
		r1 = ret.Get(1).(bool)
	}

	var r2 error
	if rf, ok := ret.Get(2).(func(types.GameID, types.RecipientID, types.Channel) error); ok {
		r2 = rf(gameID, recipientID, channel)
	} else {
		r2 = ret.Error(2)
	}

	return r0, r1, r2
}

// WriteDeliveryRecord provides a mock function with given fields: record
func (_m *Storage) WriteDeliveryRecord(record types.DeliveryRecord) error {
	ret := _m.Called(record)

	var r0 error
	if rf, ok := ret.Get(0).(func(types.DeliveryRecord) error); ok {
		r0 = rf(record)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// PrintOldGamesForCleanup provides a mock function with given fields: maxAge
func (_m *Storage) PrintOldGamesForCleanup(maxAge string) error {
	ret := _m.Called(maxAge)

	var r0 error
	if rf, ok := ret.Get(0).(func(string) error); ok {
		r0 = rf(maxAge)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// CleanupOldGames provides a mock function with given fields: maxAge
func (_m *Storage) CleanupOldGames(maxAge string) (int, error) {
	ret := _m.Called(maxAge)

	var r0 int
	if rf, ok := ret.Get(0).(func(string) int); ok {
		r0 = rf(maxAge)
	} else {
		r0 = ret.Get(0).(int)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(string) error); ok {
		r1 = rf(maxAge)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// PrintDeliveryLogForCleanup provides a mock function with given fields: maxAge
func (_m *Storage) PrintDeliveryLogForCleanup(maxAge string) error {
	ret := _m.Called(maxAge)

	var r0 error
	if rf, ok := ret.Get(0).(func(string) error); ok {
		r0 = rf(maxAge)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// CleanupDeliveryLog provides a mock function with given fields: maxAge
func (_m *Storage) CleanupDeliveryLog(maxAge string) (int, error) {
	ret := _m.Called(maxAge)

	var r0 int
	if rf, ok := ret.Get(0).(func(string) int); ok {
		r0 = rf(maxAge)
	} else {
		r0 = ret.Get(0).(int)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(string) error); ok {
		r1 = rf(maxAge)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
