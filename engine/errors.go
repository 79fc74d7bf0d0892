package engine

import "fmt"

// StaleDataError occurs when the stored schedule has not been refreshed
// recently enough to be trusted for alerting
type StaleDataError struct {
	Msg string
}

func (e *StaleDataError) Error() string {
	return e.Msg
}

// DataIntegrityError occurs when the store violates one of its invariants,
// for example two games sharing one date
type DataIntegrityError struct {
	Msg string
}

func (e *DataIntegrityError) Error() string {
	return e.Msg
}

// ScheduleFetchError occurs when the upstream schedule feed can not be
// fetched or parsed
type ScheduleFetchError struct {
	Msg string
}

func (e *ScheduleFetchError) Error() string {
	return e.Msg
}

// PromotionsFetchError occurs when the promotions page can not be fetched
// or parsed
type PromotionsFetchError struct {
	Msg string
}

func (e *PromotionsFetchError) Error() string {
	return e.Msg
}

// DeliveryError represents a failed delivery attempt on one channel
type DeliveryError struct {
	Channel string
	Err     error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery over %s failed: %v", e.Channel, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// RecipientFilterError is raised for an invalid recipient filter configuration
type RecipientFilterError struct {
	Msg string
}

func (e *RecipientFilterError) Error() string {
	return e.Msg
}
