package service

import (
	"alcyxob/training-planner/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// monday is 2026-10-19, a Monday.
var monday = time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)

// benchPress is the reference prescription used across tests.
var benchPress = PlanExerciseInput{
	BaseSets:        3,
	BaseReps:        8,
	BaseWeight:      100,
	MinReps:         8,
	MaxReps:         12,
	WeightIncrement: 5,
}

type seededPlan struct {
	athleteID primitive.ObjectID
	plan      *domain.TrainingPlan
	days      []*domain.PlanDay
	exercises []*domain.PlanDayExercise
}

// seedPlan creates a plan with one day per weekday, each prescribing in.
func (e *testEnv) seedPlan(t *testing.T, in PlanExerciseInput, weekdays ...time.Weekday) seededPlan {
	t.Helper()
	ctx := context.Background()

	exercise, err := e.exercises.CreateExercise(ctx, "Bench Press", "", "Chest")
	require.NoError(t, err)

	seeded := seededPlan{athleteID: primitive.NewObjectID()}
	seeded.plan, err = e.plans.CreatePlan(ctx, seeded.athleteID, "Upper/Lower", "")
	require.NoError(t, err)

	in.ExerciseID = exercise.ID
	for _, wd := range weekdays {
		day, err := e.plans.AddDay(ctx, seeded.plan.ID, int(wd), "")
		require.NoError(t, err)
		pde, err := e.plans.AddExercise(ctx, seeded.plan.ID, day.ID, in)
		require.NoError(t, err)
		seeded.days = append(seeded.days, day)
		seeded.exercises = append(seeded.exercises, pde)
	}
	return seeded
}

// startMesocycle creates and starts a mesocycle on the plan.
func (e *testEnv) startMesocycle(t *testing.T, planID primitive.ObjectID) *MesocycleDetail {
	t.Helper()
	ctx := context.Background()
	m, err := e.mesocycles.Create(ctx, planID, monday)
	require.NoError(t, err)
	detail, err := e.mesocycles.Start(ctx, m.ID)
	require.NoError(t, err)
	return detail
}

// logWeek logs every set of the given week with the same reps and weight.
func (e *testEnv) logWeek(t *testing.T, detail *MesocycleDetail, weekNumber, reps int, weight float64) {
	t.Helper()
	ctx := context.Background()
	for _, w := range detail.Weeks[weekNumber-1].Workouts {
		workout, err := e.workouts.GetWorkout(ctx, w.ID)
		require.NoError(t, err)
		for _, set := range workout.Sets {
			_, err := e.workouts.LogSet(ctx, set.ID, reps, weight)
			require.NoError(t, err)
		}
		_, err = e.workouts.CompleteWorkout(ctx, w.ID)
		require.NoError(t, err)
	}
}
