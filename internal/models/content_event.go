package models

import "fmt"

// ContentEntity is the kind of content an authoring event refers to
type ContentEntity string

const (
	EntityLesson   ContentEntity = "lesson"
	EntityUnit     ContentEntity = "unit"
	EntityCategory ContentEntity = "category"
)

// ContentAction is what happened to the content
type ContentAction string

const (
	ActionCreated     ContentAction = "created"
	ActionDeleted     ContentAction = "deleted"
	ActionPublished   ContentAction = "published"
	ActionUnpublished ContentAction = "unpublished"
)

// ContentEvent is emitted by the authoring subsystem after it mutated content.
// UnitID is required for lesson create and delete. Published tells whether the entity
// was published at the time of a create or delete.
type ContentEvent struct {
	Entity    ContentEntity `json:"entity"`
	Action    ContentAction `json:"action"`
	EntityID  int           `json:"entityId,omitempty"`
	UnitID    int           `json:"unitId,omitempty"`
	Published bool          `json:"published"`
}

// Validate checks the event shape
func (e ContentEvent) Validate() error {
	switch e.Entity {
	case EntityLesson, EntityUnit, EntityCategory:
	default:
		return fmt.Errorf("unknown entity %q: %w", e.Entity, ErrInvalidState)
	}
	switch e.Action {
	case ActionCreated, ActionDeleted, ActionPublished, ActionUnpublished:
	default:
		return fmt.Errorf("unknown action %q: %w", e.Action, ErrInvalidState)
	}
	if e.Entity == EntityLesson && (e.Action == ActionCreated || e.Action == ActionDeleted) && e.UnitID <= 0 {
		return fmt.Errorf("lesson %s event requires unitId: %w", e.Action, ErrInvalidState)
	}
	return nil
}

// Counter returns the statistics counter the entity maps to
func (e ContentEvent) Counter() StatsCounter {
	switch e.Entity {
	case EntityUnit:
		return CounterUnits
	case EntityCategory:
		return CounterCategories
	default:
		return CounterLessons
	}
}
