// Package shared contains common domain types, errors, and events.
package shared

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven parts of the bot.
const (
	// Member events
	EventMemberRegistered EventType = "member.registered"

	// Rank events
	EventRankChanged EventType = "rank.changed"

	// Achievement events
	EventAchievementAwarded EventType = "achievement.awarded"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// EventID returns the unique identifier of this event instance.
	EventID() string

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string
}

// EventHandler processes a single domain event.
type EventHandler func(event Event) error

// EventPublisher publishes domain events to subscribed handlers.
type EventPublisher interface {
	Publish(event Event) error
}

// EventSubscriber registers handlers for an event type.
type EventSubscriber interface {
	Subscribe(eventType EventType, handler EventHandler)
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// EventID implements Event interface.
func (e BaseEvent) EventID() string {
	return e.ID
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event with a generated event ID.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		ID:          uuid.NewString(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// MemberRegisteredEvent is emitted when a new member registers via /start.
type MemberRegisteredEvent struct {
	BaseEvent
	MemberID int64  `json:"member_id"`
	Handle   string `json:"handle"`
	ChatID   int64  `json:"chat_id"`
}

// NewMemberRegisteredEvent creates a MemberRegisteredEvent.
func NewMemberRegisteredEvent(memberID int64, handle string, chatID int64) MemberRegisteredEvent {
	return MemberRegisteredEvent{
		BaseEvent: NewBaseEvent(EventMemberRegistered, formatID(memberID)),
		MemberID:  memberID,
		Handle:    handle,
		ChatID:    chatID,
	}
}

// RankChangedEvent is emitted when one or more rank tracks change after an
// activity increment. Changed holds the new tier string per changed track
// only; unchanged tracks are absent.
type RankChangedEvent struct {
	BaseEvent
	MemberID int64             `json:"member_id"`
	Changed  map[string]string `json:"changed"`

	// ChatID and ReplyToMessageID locate the triggering message so the
	// congratulation can be sent as a reply.
	ChatID           int64 `json:"chat_id"`
	ReplyToMessageID int64 `json:"reply_to_message_id,omitempty"`
}

// NewRankChangedEvent creates a RankChangedEvent.
func NewRankChangedEvent(memberID int64, changed map[string]string, chatID, replyTo int64) RankChangedEvent {
	return RankChangedEvent{
		BaseEvent:        NewBaseEvent(EventRankChanged, formatID(memberID)),
		MemberID:         memberID,
		Changed:          changed,
		ChatID:           chatID,
		ReplyToMessageID: replyTo,
	}
}

// AchievementAwardedEvent is emitted when a member receives an achievement.
type AchievementAwardedEvent struct {
	BaseEvent
	MemberID int64  `json:"member_id"`
	Code     string `json:"code"`
	Source   string `json:"source"` // "auto" or "admin"
}

// NewAchievementAwardedEvent creates an AchievementAwardedEvent.
func NewAchievementAwardedEvent(memberID int64, code, source string) AchievementAwardedEvent {
	return AchievementAwardedEvent{
		BaseEvent: NewBaseEvent(EventAchievementAwarded, formatID(memberID)),
		MemberID:  memberID,
		Code:      code,
		Source:    source,
	}
}

// formatID renders a member ID as the string aggregate ID used on the bus.
func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
