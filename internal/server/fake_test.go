package server

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/claude/overload/internal/ingest/alpha"
	"github.com/claude/overload/internal/models"
	"github.com/claude/overload/internal/session"
	"github.com/claude/overload/internal/storage"
	"github.com/google/uuid"
)

const testAPIKey = "test-key"

type stateKey struct {
	user int
	id   uuid.UUID
}

// fakeStore is an in-memory Store.
type fakeStore struct {
	exercises map[uuid.UUID]models.ExerciseDefinition
	states    map[stateKey]models.ExerciseProgressionState
	events    map[stateKey][]models.ProgressionEvent
	sets      []models.WorkoutSetRow
	users     map[string]int
	decided   map[[2]uuid.UUID]bool
	updateErr error

	lastLimit  int
	lastFilter string
	lastBucket string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		exercises: map[uuid.UUID]models.ExerciseDefinition{},
		states:    map[stateKey]models.ExerciseProgressionState{},
		events:    map[stateKey][]models.ProgressionEvent{},
		users:     map[string]int{},
		decided:   map[[2]uuid.UUID]bool{},
	}
}

func (f *fakeStore) GetOrCreateUser(_ context.Context, login, _ string) (int, error) {
	if id, ok := f.users[login]; ok {
		return id, nil
	}
	id := len(f.users) + 2
	f.users[login] = id
	return id, nil
}

func (f *fakeStore) ListExercises(context.Context) ([]models.ExerciseDefinition, error) {
	var out []models.ExerciseDefinition
	for _, d := range f.exercises {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeStore) CreateExercise(_ context.Context, d models.ExerciseDefinition) (*models.ExerciseDefinition, error) {
	for _, e := range f.exercises {
		if strings.EqualFold(e.Name, d.Name) {
			return nil, storage.ErrConflict
		}
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	f.exercises[d.ID] = d
	return &d, nil
}

func (f *fakeStore) GetExercise(_ context.Context, id uuid.UUID) (*models.ExerciseDefinition, error) {
	d, ok := f.exercises[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &d, nil
}

func (f *fakeStore) GetExerciseByName(_ context.Context, name string) (*models.ExerciseDefinition, error) {
	for _, d := range f.exercises {
		if strings.EqualFold(d.Name, name) {
			return &d, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) GetProgressionState(_ context.Context, userID int, id uuid.UUID) (*models.ExerciseProgressionState, error) {
	s, ok := f.states[stateKey{userID, id}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &s, nil
}

func (f *fakeStore) PutProgressionState(_ context.Context, userID int, s models.ExerciseProgressionState) error {
	f.states[stateKey{userID, s.ExerciseDefinitionID}] = s
	return nil
}

func (f *fakeStore) UpdateProgression(_ context.Context, userID int, id, sessionID uuid.UUID, fn storage.UpdateFunc) error {
	k := stateKey{userID, id}
	s, ok := f.states[k]
	if !ok {
		return storage.ErrNotFound
	}
	if err := f.updateErr; err != nil {
		f.updateErr = nil
		return err
	}
	if f.decided[[2]uuid.UUID{sessionID, id}] {
		return storage.ErrAlreadyDecided
	}
	next, ev, err := fn(s)
	if err != nil {
		return err
	}
	f.decided[[2]uuid.UUID{sessionID, id}] = true
	f.states[k] = next
	if ev != nil {
		f.events[k] = append(f.events[k], *ev)
	}
	return nil
}

func (f *fakeStore) QueryProgressionEvents(_ context.Context, userID int, id uuid.UUID, limit int) ([]models.ProgressionEvent, error) {
	f.lastLimit = limit
	return f.events[stateKey{userID, id}], nil
}

func (f *fakeStore) InsertWorkoutSets(_ context.Context, rows []models.WorkoutSetRow) (int64, error) {
	var n int64
	for _, r := range rows {
		dup := false
		for _, e := range f.sets {
			if e.SessionID == r.SessionID && e.ExerciseID == r.ExerciseID && e.SetNumber == r.SetNumber {
				dup = true
				break
			}
		}
		if !dup {
			f.sets = append(f.sets, r)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) QueryWorkoutSets(_ context.Context, _, _ time.Time, userID int, filter string) ([]models.WorkoutSetRow, error) {
	f.lastFilter = filter
	var out []models.WorkoutSetRow
	for _, r := range f.sets {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetTrainingSummary(_ context.Context, _, _ time.Time, bucket string, _ int) ([]storage.TrainingSummaryPeriod, error) {
	f.lastBucket = bucket
	return []storage.TrainingSummaryPeriod{{Period: "2026-02-16"}}, nil
}

// addExercise stores a definition and a default state for the local user.
func (f *fakeStore) addExercise(name string, eq models.EquipmentType, weight float64) uuid.UUID {
	id := uuid.New()
	f.exercises[id] = models.ExerciseDefinition{ID: id, Name: name, EquipmentType: eq}
	f.states[stateKey{storage.LocalUser, id}] = models.DefaultProgressionState(id, weight, models.UnitMetric)
	return id
}

func newTestServer(store *fakeStore) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	completer := session.NewCompleter(store, log)
	return New(store, completer, alpha.NewProvider(store, completer, log), testAPIKey, log)
}
