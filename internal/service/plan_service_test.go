package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPlanExerciseInputValidate(t *testing.T) {
	valid := benchPress
	valid.ExerciseID = primitive.NewObjectID()

	tests := []struct {
		name    string
		mutate  func(in *PlanExerciseInput)
		wantErr bool
	}{
		{"valid", func(in *PlanExerciseInput) {}, false},
		{"base at min", func(in *PlanExerciseInput) { in.BaseReps = in.MinReps }, false},
		{"base at max", func(in *PlanExerciseInput) { in.BaseReps = in.MaxReps }, false},
		{"zero increment", func(in *PlanExerciseInput) { in.WeightIncrement = 0 }, false},
		{"missing exercise", func(in *PlanExerciseInput) { in.ExerciseID = primitive.NilObjectID }, true},
		{"no sets", func(in *PlanExerciseInput) { in.BaseSets = 0 }, true},
		{"base below min", func(in *PlanExerciseInput) { in.BaseReps = 6 }, true},
		{"base above max", func(in *PlanExerciseInput) { in.BaseReps = 15 }, true},
		{"min above max", func(in *PlanExerciseInput) { in.MinReps, in.MaxReps = 12, 8 }, true},
		{"negative increment", func(in *PlanExerciseInput) { in.WeightIncrement = -2.5 }, true},
		{"negative weight", func(in *PlanExerciseInput) { in.BaseWeight = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlanService(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seeded := env.seedPlan(t, benchPress, time.Thursday, time.Monday)

	plan, err := env.plans.GetPlan(ctx, seeded.plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, plan.DurationWeeks)
	require.Len(t, plan.Days, 2)
	assert.Equal(t, int(time.Monday), plan.Days[0].DayOfWeek, "days are ordered by weekday")
	assert.Equal(t, "Day 2", plan.Days[0].Name)
	require.Len(t, plan.Days[0].Exercises, 1)
	assert.Equal(t, 3, plan.Days[0].Exercises[0].BaseSets)

	t.Run("day must belong to the plan", func(t *testing.T) {
		other, err := env.plans.CreatePlan(ctx, seeded.athleteID, "Other", "")
		require.NoError(t, err)
		in := benchPress
		in.ExerciseID = seeded.exercises[0].ExerciseID
		_, err = env.plans.AddExercise(ctx, other.ID, seeded.days[0].ID, in)
		assert.ErrorIs(t, err, ErrPlanDayNotFound)
	})

	t.Run("unknown exercise", func(t *testing.T) {
		in := benchPress
		in.ExerciseID = primitive.NewObjectID()
		_, err := env.plans.AddExercise(ctx, seeded.plan.ID, seeded.days[0].ID, in)
		assert.ErrorIs(t, err, ErrExerciseNotFound)
	})

	t.Run("invalid weekday", func(t *testing.T) {
		_, err := env.plans.AddDay(ctx, seeded.plan.ID, 7, "Funday")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("unknown plan", func(t *testing.T) {
		_, err := env.plans.AddDay(ctx, primitive.NewObjectID(), 1, "")
		assert.ErrorIs(t, err, ErrPlanNotFound)
		_, err = env.plans.GetPlan(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("plan requires athlete and name", func(t *testing.T) {
		_, err := env.plans.CreatePlan(ctx, primitive.NilObjectID, "x", "")
		assert.ErrorIs(t, err, ErrValidation)
		_, err = env.plans.CreatePlan(ctx, seeded.athleteID, "  ", "")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestExerciseService(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.exercises.CreateExercise(ctx, " ", "", "")
	assert.ErrorIs(t, err, ErrValidation)

	squat, err := env.exercises.CreateExercise(ctx, " Squat ", "Back squat", "Legs")
	require.NoError(t, err)
	assert.Equal(t, "Squat", squat.Name)
	_, err = env.exercises.CreateExercise(ctx, "Deadlift", "", "Back")
	require.NoError(t, err)

	got, err := env.exercises.GetExerciseByID(ctx, squat.ID)
	require.NoError(t, err)
	assert.Equal(t, "Legs", got.MuscleGroup)

	_, err = env.exercises.GetExerciseByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrExerciseNotFound)

	list, err := env.exercises.ListExercises(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Deadlift", list[0].Name)
}
