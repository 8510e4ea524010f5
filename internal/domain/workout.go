package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutStatus type for a scheduled session
type WorkoutStatus string

const (
	WorkoutPending    WorkoutStatus = "pending"
	WorkoutInProgress WorkoutStatus = "in_progress"
	WorkoutCompleted  WorkoutStatus = "completed"
	WorkoutSkipped    WorkoutStatus = "skipped"
)

// SetStatus type for a single working set
type SetStatus string

const (
	SetPending   SetStatus = "pending"
	SetCompleted SetStatus = "completed"
	SetSkipped   SetStatus = "skipped"
)

// Workout represents one scheduled session of a mesocycle: a plan day in a given week.
type Workout struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MesocycleID   primitive.ObjectID `bson:"mesocycleId" json:"mesocycleId"`
	PlanDayID     primitive.ObjectID `bson:"planDayId" json:"planDayId"`
	WeekNumber    int                `bson:"weekNumber" json:"weekNumber"` // 1-based, the last week is the deload
	ScheduledDate time.Time          `bson:"scheduledDate" json:"scheduledDate"`
	Status        WorkoutStatus      `bson:"status" json:"status"`
	StartedAt     *time.Time         `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt   *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
	// Sets are linked via WorkoutSet.WorkoutID
}

// WorkoutSet is one prescribed working set, tracked with both target and actual numbers.
type WorkoutSet struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID      primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	ExerciseID     primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	PlanExerciseID primitive.ObjectID `bson:"planExerciseId" json:"planExerciseId"` // The PlanDayExercise this set was generated from
	SetNumber      int                `bson:"setNumber" json:"setNumber"`           // 1-based within the exercise
	TargetReps     int                `bson:"targetReps" json:"targetReps"`
	TargetWeight   float64            `bson:"targetWeight" json:"targetWeight"`
	ActualReps     *int               `bson:"actualReps,omitempty" json:"actualReps,omitempty"`
	ActualWeight   *float64           `bson:"actualWeight,omitempty" json:"actualWeight,omitempty"`
	Status         SetStatus          `bson:"status" json:"status"`
	CompletedAt    *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
