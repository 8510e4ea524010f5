package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MesocycleStatus type for the training block lifecycle
type MesocycleStatus string

const (
	MesocyclePending   MesocycleStatus = "pending"
	MesocycleActive    MesocycleStatus = "active"
	MesocycleCompleted MesocycleStatus = "completed" // Terminal
	MesocycleCancelled MesocycleStatus = "cancelled" // Terminal, generated rows are kept
)

// IsTerminal reports whether no further transition is allowed.
func (s MesocycleStatus) IsTerminal() bool {
	return s == MesocycleCompleted || s == MesocycleCancelled
}

// Mesocycle is a generated multi-week training block.
type Mesocycle struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID      primitive.ObjectID `bson:"planId" json:"planId"`
	AthleteID   primitive.ObjectID `bson:"athleteId" json:"athleteId"` // Denormalized from the plan for the active-block index
	StartDate   time.Time          `bson:"startDate" json:"startDate"`
	CurrentWeek int                `bson:"currentWeek" json:"currentWeek"` // 1-based
	Status      MesocycleStatus    `bson:"status" json:"status"`
	ArchiveKey  string             `bson:"archiveKey,omitempty" json:"-"` // Object key of the snapshot written when the block ended
	StartedAt   *time.Time         `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	EndedAt     *time.Time         `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
