package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/valentinpelus/survey-crm/pkg/types"
)

// FirstTrackingID is assigned to the first record of an empty store
const FirstTrackingID int64 = 1000

const trackingCounterID = "trackingId"

// FeedbackStore persists survey submissions
type FeedbackStore struct {
	coll     *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

// Feedback returns the feedback store of the database
func (d *DB) Feedback() *FeedbackStore {
	return &FeedbackStore{
		coll:     d.db.Collection(feedbackCollection),
		counters: d.db.Collection(countersCollection),
		now:      time.Now,
	}
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

// List returns every record, newest first
func (s *FeedbackStore) List(ctx context.Context) ([]types.Feedback, error) {
	return s.find(ctx, bson.M{})
}

// ListFinal returns submitted records, newest first
func (s *FeedbackStore) ListFinal(ctx context.Context) ([]types.Feedback, error) {
	return s.find(ctx, bson.M{"status": types.StatusFinal})
}

// ByNationalID returns the visit history of one patient, newest first
func (s *FeedbackStore) ByNationalID(ctx context.Context, nationalID string) ([]types.Feedback, error) {
	return s.find(ctx, bson.M{"patientInfo.nationalId": strings.TrimSpace(nationalID)})
}

func (s *FeedbackStore) find(ctx context.Context, filter bson.M) ([]types.Feedback, error) {
	cursor, err := s.coll.Find(ctx, filter, newestFirst)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer cursor.Close(ctx)

	records := []types.Feedback{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode feedback: %w", err)
	}
	return records, nil
}

// Get returns one record by business id
func (s *FeedbackStore) Get(ctx context.Context, id string) (*types.Feedback, error) {
	var f types.Feedback
	err := s.coll.FindOne(ctx, bson.M{"id": id}).Decode(&f)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("feedback %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback %s: %w", id, err)
	}
	return &f, nil
}

// Upsert updates the record with the same id or creates a new one.
// It reports whether the record was created.
func (s *FeedbackStore) Upsert(ctx context.Context, f types.Feedback) (types.Feedback, bool, error) {
	now := s.now()

	if f.ID != "" {
		existing, err := s.Get(ctx, f.ID)
		switch {
		case err == nil:
			updated := mergeExisting(*existing, f, now)
			if _, err := s.coll.ReplaceOne(ctx, bson.M{"id": f.ID}, updated); err != nil {
				return types.Feedback{}, false, fmt.Errorf("failed to update feedback %s: %w", f.ID, err)
			}
			return updated, false, nil
		case !errors.Is(err, ErrNotFound):
			return types.Feedback{}, false, err
		}
	}

	trackingID, err := s.nextTrackingID(ctx)
	if err != nil {
		return types.Feedback{}, false, err
	}
	created := prepareNew(f, trackingID, now)
	if _, err := s.coll.InsertOne(ctx, created); err != nil {
		return types.Feedback{}, false, fmt.Errorf("failed to insert feedback: %w", err)
	}
	return created, true, nil
}

// Delete removes one record
func (s *FeedbackStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete feedback %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("feedback %s: %w", id, ErrNotFound)
	}
	return nil
}

// ReplaceAll wipes the collection and inserts records as given
func (s *FeedbackStore) ReplaceAll(ctx context.Context, records []types.Feedback) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear feedback: %w", err)
	}
	if _, err := s.counters.DeleteOne(ctx, bson.M{"_id": trackingCounterID}); err != nil {
		return fmt.Errorf("failed to reset tracking counter: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, len(records))
	for i, r := range records {
		docs[i] = r
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert %d feedback records: %w", len(records), err)
	}
	return nil
}

// UpsertMany writes records by id, keeping records that are not in the batch. Only the fields
// a record carries are written, so stored audio references survive a spreadsheet restore.
// Records without an id or tracking id get new ones.
func (s *FeedbackStore) UpsertMany(ctx context.Context, records []types.Feedback) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	models := make([]mongo.WriteModel, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		var trackingID int64
		if r.TrackingID == 0 {
			id, err := s.nextTrackingID(ctx)
			if err != nil {
				return 0, err
			}
			trackingID = id
		}
		update, err := restoreUpdate(r, trackingID, s.now())
		if err != nil {
			return 0, err
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"id": r.ID}).
			SetUpdate(update).
			SetUpsert(true))
	}

	res, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("failed to restore feedback: %w", err)
	}
	return int(res.UpsertedCount + res.MatchedCount), nil
}

// restoreUpdate builds the update document for one restored record. Audio references are never
// written. Tracking id and creation time the record lacks are only set when it is inserted.
func restoreUpdate(r types.Feedback, trackingID int64, now time.Time) (bson.M, error) {
	raw, err := bson.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode feedback %s: %w", r.ID, err)
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("failed to encode feedback %s: %w", r.ID, err)
	}
	delete(set, "id")
	delete(set, "audioFiles")

	onInsert := bson.M{}
	if r.TrackingID == 0 {
		delete(set, "trackingId")
		onInsert["trackingId"] = trackingID
	}
	if r.CreatedAt.IsZero() {
		delete(set, "createdAt")
		onInsert["createdAt"] = now
	}

	update := bson.M{"$set": set}
	if len(onInsert) > 0 {
		update["$setOnInsert"] = onInsert
	}
	return update, nil
}

// nextTrackingID allocates the next tracking id. The counter document is first raised to the
// highest stored tracking id, so ids continue from existing data and never repeat.
func (s *FeedbackStore) nextTrackingID(ctx context.Context) (int64, error) {
	var last types.Feedback
	err := s.coll.FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "trackingId", Value: -1}}).SetProjection(bson.M{"trackingId": 1}),
	).Decode(&last)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return 0, fmt.Errorf("failed to read last tracking id: %w", err)
	}

	floor := trackingFloor(last.TrackingID)
	if _, err := s.counters.UpdateOne(ctx,
		bson.M{"_id": trackingCounterID},
		bson.M{"$max": bson.M{"seq": floor - 1}},
		options.Update().SetUpsert(true),
	); err != nil {
		return 0, fmt.Errorf("failed to seed tracking counter: %w", err)
	}

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err = s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": trackingCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate tracking id: %w", err)
	}
	return counter.Seq, nil
}

// trackingFloor is the smallest id the next record may take given the highest stored one
func trackingFloor(last int64) int64 {
	if last <= 0 {
		return FirstTrackingID
	}
	return last + 1
}

// mergeExisting applies an update to a stored record. Identity and creation fields the client
// did not send are kept.
func mergeExisting(existing, incoming types.Feedback, now time.Time) types.Feedback {
	incoming.ID = existing.ID
	if incoming.TrackingID == 0 {
		incoming.TrackingID = existing.TrackingID
	}
	if incoming.CreatedAt.IsZero() {
		incoming.CreatedAt = existing.CreatedAt
	}
	if incoming.Status == "" {
		incoming.Status = existing.Status
	}
	if incoming.Answers == nil {
		incoming.Answers = existing.Answers
	}
	if incoming.AudioFiles == nil {
		incoming.AudioFiles = existing.AudioFiles
	}
	incoming.LastModified = now
	return incoming
}

// prepareNew fills the fields of a record being created
func prepareNew(f types.Feedback, trackingID int64, now time.Time) types.Feedback {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	f.TrackingID = trackingID
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	if f.Status == "" {
		f.Status = types.StatusDraft
	}
	if f.Answers == nil {
		f.Answers = map[string]interface{}{}
	}
	return f
}
