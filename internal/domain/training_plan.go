// internal/domain/training_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrainingPlan is the template a mesocycle is generated from.
type TrainingPlan struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID     primitive.ObjectID `bson:"athleteId" json:"athleteId"` // Who the plan is for; scopes the single active mesocycle
	Name          string             `bson:"name" json:"name"`           // e.g., "Upper/Lower Hypertrophy"
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	DurationWeeks int                `bson:"durationWeeks" json:"durationWeeks"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PlanDay is one training day of a plan, pinned to a weekday.
type PlanDay struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID    primitive.ObjectID `bson:"planId" json:"planId"`
	DayOfWeek int                `bson:"dayOfWeek" json:"dayOfWeek"` // 0 (Sunday) - 6 (Saturday), same as time.Weekday
	Name      string             `bson:"name" json:"name"`           // e.g., "Day 1: Upper Body"
	SortOrder int                `bson:"sortOrder" json:"sortOrder"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Weekday returns the day as a time.Weekday.
func (d *PlanDay) Weekday() time.Weekday {
	return time.Weekday(d.DayOfWeek)
}

// PlanDayExercise prescribes an exercise on a plan day together with the
// numbers the progression rules start from.
type PlanDayExercise struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanDayID       primitive.ObjectID `bson:"planDayId" json:"planDayId"`
	ExerciseID      primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	BaseSets        int                `bson:"baseSets" json:"baseSets"`
	BaseReps        int                `bson:"baseReps" json:"baseReps"`
	BaseWeight      float64            `bson:"baseWeight" json:"baseWeight"`
	MinReps         int                `bson:"minReps" json:"minReps"`
	MaxReps         int                `bson:"maxReps" json:"maxReps"`
	WeightIncrement float64            `bson:"weightIncrement" json:"weightIncrement"`
	SortOrder       int                `bson:"sortOrder" json:"sortOrder"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
