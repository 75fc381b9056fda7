package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/valentinpelus/survey-crm/pkg/types"
)

// connectTest opens a throwaway database on MONGODB_URI and drops it when the test ends
func connectTest(t *testing.T) *DB {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := Connect(ctx, Config{URI: uri, Database: fmt.Sprintf("crm_test_%d", time.Now().UnixNano())})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.db.Drop(ctx)
		_ = db.Close(ctx)
	})
	return db
}

func TestFeedbackStore_TrackingIDs(t *testing.T) {
	ctx := context.Background()
	fs := connectTest(t).Feedback()

	var last int64
	for i := 0; i < 5; i++ {
		f, created, err := fs.Upsert(ctx, types.Feedback{Status: types.StatusDraft})
		if err != nil {
			t.Fatal(err)
		}
		if !created {
			t.Fatal("new record reported as update")
		}
		if i == 0 && f.TrackingID != FirstTrackingID {
			t.Errorf("first tracking id = %d", f.TrackingID)
		}
		if f.TrackingID <= last {
			t.Errorf("tracking id %d not above %d", f.TrackingID, last)
		}
		last = f.TrackingID
	}

	if err := fs.ReplaceAll(ctx, []types.Feedback{{ID: "kept", TrackingID: 2000, CreatedAt: time.Now()}}); err != nil {
		t.Fatal(err)
	}
	f, _, err := fs.Upsert(ctx, types.Feedback{})
	if err != nil {
		t.Fatal(err)
	}
	if f.TrackingID != 2001 {
		t.Errorf("after restore tracking id = %d, want 2001", f.TrackingID)
	}

	if err := fs.ReplaceAll(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if f, _, err = fs.Upsert(ctx, types.Feedback{}); err != nil || f.TrackingID != FirstTrackingID {
		t.Errorf("after wipe tracking id = %d, %v", f.TrackingID, err)
	}
}

func TestFeedbackStore_UpsertManyKeepsAudio(t *testing.T) {
	ctx := context.Background()
	fs := connectTest(t).Feedback()

	stored, _, err := fs.Upsert(ctx, types.Feedback{
		Status:     types.StatusFinal,
		AudioFiles: types.AudioFiles{"q1": {"/uploads/a.webm"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	n, err := fs.UpsertMany(ctx, []types.Feedback{
		{ID: stored.ID, TrackingID: stored.TrackingID, CreatedAt: stored.CreatedAt, Status: types.StatusFinal, Ward: "ICU"},
		{Status: types.StatusDraft},
	})
	if err != nil || n != 2 {
		t.Fatalf("UpsertMany = %d, %v", n, err)
	}

	got, err := fs.Get(ctx, stored.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Ward != "ICU" || len(got.AudioFiles["q1"]) != 1 {
		t.Errorf("restored record = %+v", got)
	}

	all, err := fs.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range all {
		if r.TrackingID <= 0 {
			t.Errorf("record %s has no tracking id", r.ID)
		}
	}
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{
		URI:            "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200",
		Database:       "crm_test",
		ConnectTimeout: time.Second,
	})
	if err == nil {
		t.Fatal("Connect should fail when the server is unreachable")
	}
}
