package handler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/valentinpelus/survey-crm/pkg/access"
	"github.com/valentinpelus/survey-crm/pkg/store"
	"github.com/valentinpelus/survey-crm/pkg/types"
)

type fakeFeedback struct {
	mu      sync.Mutex
	records []types.Feedback
	next    int64
}

func (f *fakeFeedback) sorted() []types.Feedback {
	out := append([]types.Feedback{}, f.records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeFeedback) List(context.Context) ([]types.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(), nil
}

func (f *fakeFeedback) ListFinal(context.Context) ([]types.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Feedback
	for _, r := range f.sorted() {
		if r.IsFinal() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFeedback) ByNationalID(_ context.Context, id string) ([]types.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []types.Feedback{}
	for _, r := range f.sorted() {
		if r.PatientInfo.NationalID == id {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeFeedback) Get(_ context.Context, id string) (*types.Feedback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			r := f.records[i]
			return &r, nil
		}
	}
	return nil, fmt.Errorf("feedback %s: %w", id, store.ErrNotFound)
}

func (f *fakeFeedback) Upsert(_ context.Context, in types.Feedback) (types.Feedback, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if in.ID != "" && f.records[i].ID == in.ID {
			in.TrackingID = f.records[i].TrackingID
			in.CreatedAt = f.records[i].CreatedAt
			in.LastModified = time.Now()
			f.records[i] = in
			return in, false, nil
		}
	}
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if f.next == 0 {
		f.next = 1000
	}
	in.TrackingID = f.next
	f.next++
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	if in.Status == "" {
		in.Status = types.StatusDraft
	}
	f.records = append(f.records, in)
	return in, true, nil
}

func (f *fakeFeedback) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("feedback %s: %w", id, store.ErrNotFound)
}

func (f *fakeFeedback) ReplaceAll(_ context.Context, records []types.Feedback) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append([]types.Feedback{}, records...)
	return nil
}

func (f *fakeFeedback) UpsertMany(ctx context.Context, records []types.Feedback) (int, error) {
	for _, r := range records {
		if _, _, err := f.Upsert(ctx, r); err != nil {
			return 0, err
		}
	}
	return len(records), nil
}

type fakeSettings struct {
	mu       sync.Mutex
	settings *types.Settings
	defaults types.Settings
	err      error
}

func newFakeSettings(s types.Settings) *fakeSettings {
	prepared, err := access.PrepareSettings(s, nil)
	if err != nil {
		panic(err)
	}
	prepared.Normalize()
	return &fakeSettings{settings: &prepared, defaults: prepared}
}

func (f *fakeSettings) Get(context.Context) (types.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return types.Settings{}, f.err
	}
	if f.settings == nil {
		d := f.defaults
		f.settings = &d
	}
	return copySettings(*f.settings), nil
}

func (f *fakeSettings) Save(_ context.Context, s types.Settings) (types.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.Normalize()
	s = copySettings(s)
	f.settings = &s
	return s, nil
}

func (f *fakeSettings) Reset(ctx context.Context) (types.Settings, error) {
	f.mu.Lock()
	f.settings = nil
	f.mu.Unlock()
	return f.Get(ctx)
}

func (f *fakeSettings) Replace(_ context.Context, s *types.Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s == nil {
		f.settings = nil
		return nil
	}
	c := copySettings(*s)
	f.settings = &c
	return nil
}

func copySettings(s types.Settings) types.Settings {
	s.Users = append([]types.User{}, s.Users...)
	s.Questions = append([]types.Question{}, s.Questions...)
	s.GeminiAPIKeys = append([]string{}, s.GeminiAPIKeys...)
	return s
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

var errDown = errors.New("server selection timeout")
