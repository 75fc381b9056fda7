package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/valentinpelus/survey-crm/pkg/access"
	"github.com/valentinpelus/survey-crm/pkg/types"
)

// SettingsStore persists the singleton settings document
type SettingsStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// Settings returns the settings store of the database
func (d *DB) Settings() *SettingsStore {
	return &SettingsStore{coll: d.db.Collection(settingsCollection), now: time.Now}
}

// Get returns the settings, creating the defaults when none exist
func (s *SettingsStore) Get(ctx context.Context) (types.Settings, error) {
	var settings types.Settings
	err := s.coll.FindOne(ctx, bson.M{}).Decode(&settings)
	if err == nil {
		settings.Normalize()
		return settings, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return types.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	defaults, err := s.defaults()
	if err != nil {
		return types.Settings{}, err
	}
	// $setOnInsert keeps concurrent first reads from creating two documents
	if _, err := s.coll.UpdateOne(ctx, bson.M{}, bson.M{"$setOnInsert": defaults}, options.Update().SetUpsert(true)); err != nil {
		return types.Settings{}, fmt.Errorf("failed to create default settings: %w", err)
	}
	log.Info().Msg("Initialized default settings")

	if err := s.coll.FindOne(ctx, bson.M{}).Decode(&settings); err != nil {
		return types.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	settings.Normalize()
	return settings, nil
}

// Save replaces the settings document. Passwords must already be hashed.
func (s *SettingsStore) Save(ctx context.Context, settings types.Settings) (types.Settings, error) {
	settings.Normalize()
	settings.UpdatedAt = s.now()
	if _, err := s.coll.ReplaceOne(ctx, bson.M{}, settings, options.Replace().SetUpsert(true)); err != nil {
		return types.Settings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}

// Reset replaces the settings with the defaults
func (s *SettingsStore) Reset(ctx context.Context) (types.Settings, error) {
	defaults, err := s.defaults()
	if err != nil {
		return types.Settings{}, err
	}
	return s.Save(ctx, defaults)
}

// Replace wipes the settings collection and stores settings as given.
// A nil value leaves the collection empty, so the next Get seeds the defaults.
func (s *SettingsStore) Replace(ctx context.Context, settings *types.Settings) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}
	if settings == nil {
		return nil
	}
	prepared, err := access.PrepareSettings(*settings, nil)
	if err != nil {
		return err
	}
	prepared.Normalize()
	if _, err := s.coll.InsertOne(ctx, prepared); err != nil {
		return fmt.Errorf("failed to restore settings: %w", err)
	}
	return nil
}

func (s *SettingsStore) defaults() (types.Settings, error) {
	d, err := access.PrepareSettings(DefaultSettings(), nil)
	if err != nil {
		return types.Settings{}, fmt.Errorf("failed to prepare default settings: %w", err)
	}
	d.UpdatedAt = s.now()
	return d, nil
}
