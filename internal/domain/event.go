package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the domain event types published via the outbox.
type EventType string

const (
	EventTypeUserRegistered EventType = "bet.user.registered"
	EventTypeDepositSettled EventType = "bet.deposit.settled"
	EventTypeBonusGranted   EventType = "bet.bonus.granted"
	EventTypeBonusCompleted EventType = "bet.bonus.completed"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateUser  AggregateType = "user"
	AggregateBonus AggregateType = "bonus"
	AggregateTx    AggregateType = "transaction"
)

// OutboxDraft is the payload written to the event_outbox table in the same
// transaction as the state change it describes.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewBonusGrantedEvent creates the outbox event for a new grant.
func NewBonusGrantedEvent(grant *BonusGrant) OutboxDraft {
	payload, _ := json.Marshal(grant)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateBonus,
		AggregateID:   grant.ID.String(),
		EventType:     EventTypeBonusGranted,
		PartitionKey:  grant.UserID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewBonusCompletedEvent creates the outbox event for a grant whose
// rollover requirement has just been met.
func NewBonusCompletedEvent(grant *BonusGrant) OutboxDraft {
	payload, _ := json.Marshal(grant)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateBonus,
		AggregateID:   grant.ID.String(),
		EventType:     EventTypeBonusCompleted,
		PartitionKey:  grant.UserID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewDepositSettledEvent creates the outbox event for a settled deposit.
func NewDepositSettledEvent(tx *Transaction) OutboxDraft {
	payload, _ := json.Marshal(tx)
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateTx,
		AggregateID:   tx.ID.String(),
		EventType:     EventTypeDepositSettled,
		PartitionKey:  tx.UserID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}

// NewUserRegisteredEvent creates the outbox event for a new user account.
func NewUserRegisteredEvent(user *User) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"currency": user.Currency,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateUser,
		AggregateID:   user.ID.String(),
		EventType:     EventTypeUserRegistered,
		PartitionKey:  user.ID.String(),
		Payload:       payload,
		OccurredAt:    time.Now(),
	}
}
