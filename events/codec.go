package events

import (
	"encoding/json"
	"fmt"
)

// Decode restores a single event from its JSON form. The concrete type is
// selected by the "type" field written by BaseEvent.
func Decode(raw json.RawMessage) (Event, error) {
	var probe struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("failed to read event type: %w", err)
	}

	switch probe.Type {
	case AccountCreatedType:
		return decodeAs[AccountCreatedEvent](raw)
	case DepositMadeType:
		return decodeAs[DepositMadeEvent](raw)
	case WithdrawalMadeType:
		return decodeAs[WithdrawalMadeEvent](raw)
	case InterestAccruedType:
		return decodeAs[InterestAccruedEvent](raw)
	case TransferSentType:
		return decodeAs[TransferSentEvent](raw)
	case TransferReceivedType:
		return decodeAs[TransferReceivedEvent](raw)
	default:
		return nil, fmt.Errorf("unknown event type %q", probe.Type)
	}
}

// DecodeAll restores an ordered history.
func DecodeAll(raws []json.RawMessage) ([]Event, error) {
	history := make([]Event, 0, len(raws))
	for i, raw := range raws {
		event, err := Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		history = append(history, event)
	}
	return history, nil
}

func decodeAs[E Event](raw json.RawMessage) (Event, error) {
	var event E
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("failed to decode %T: %w", event, err)
	}
	return event, nil
}
