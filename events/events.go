package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

// BaseEvent is the envelope shared by every history entry. Version is the
// account version after the entry is applied.
type BaseEvent struct {
	EventID   uuid.UUID `json:"eventId"`
	AccountID string    `json:"accountId"`
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// Event is one entry of an account's history.
type Event interface {
	GetBase() BaseEvent
	// Describe renders the entry as a one-line narrative using the given
	// currency symbol.
	Describe(symbol string) string
}

func (e BaseEvent) GetBase() BaseEvent {
	return e
}

const (
	AccountCreatedType   EventType = "AccountCreated"
	DepositMadeType      EventType = "DepositMade"
	WithdrawalMadeType   EventType = "WithdrawalMade"
	InterestAccruedType  EventType = "InterestAccrued"
	TransferSentType     EventType = "TransferSent"
	TransferReceivedType EventType = "TransferReceived"
)

func NewBaseEvent(accountID string, version int, eventType EventType) BaseEvent {
	return BaseEvent{
		EventID:   uuid.New(),
		AccountID: accountID,
		Version:   version,
		Timestamp: time.Now().UTC(),
		Type:      eventType,
	}
}
