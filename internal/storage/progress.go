package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/linguaquest/dialogue-engine/pkg/dialogue"
)

// LearnerProfile is the per-player progress record the reference effect
// executor mutates: items earned in conversations, XP, taught vocabulary,
// and mission state.
type LearnerProfile struct {
	ID         uuid.UUID         `json:"id"`
	XP         int               `json:"xp"`
	Items      map[string]int    `json:"items,omitempty"`
	Vocabulary map[string]string `json:"vocabulary,omitempty"` // word -> translation
	Missions   map[string]string `json:"missions,omitempty"`   // mission id -> "active" | "complete"
	UpdatedAt  time.Time         `json:"updated_at"`
}

// NewLearnerProfile creates an empty profile with a fresh id.
func NewLearnerProfile() *LearnerProfile {
	return &LearnerProfile{
		ID:         uuid.New(),
		Items:      make(map[string]int),
		Vocabulary: make(map[string]string),
		Missions:   make(map[string]string),
	}
}

const (
	profileKeyPrefix = "profile:"
	profileTTL       = 24 * time.Hour
)

// ProgressStore persists learner profiles.
type ProgressStore interface {
	// Ping tests the store connection.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error

	// SaveProfile saves a learner profile.
	SaveProfile(ctx context.Context, profile *LearnerProfile) error

	// LoadProfile retrieves a profile by id. Returns nil if it doesn't
	// exist.
	LoadProfile(ctx context.Context, id uuid.UUID) (*LearnerProfile, error)

	// Apply mutates the profile according to the dialogue action and saves
	// it. Unrecognized action kinds are ignored, not fatal.
	Apply(ctx context.Context, id uuid.UUID, action *dialogue.Action) error
}

// RedisProgressStore implements ProgressStore using Redis.
type RedisProgressStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ ProgressStore = (*RedisProgressStore)(nil)

// NewRedisProgressStore creates a Redis-backed progress store.
func NewRedisProgressStore(redisURL string, logger *slog.Logger) *RedisProgressStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisProgressStore{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisProgressStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisProgressStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup).
func (r *RedisProgressStore) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func (r *RedisProgressStore) SaveProfile(ctx context.Context, profile *LearnerProfile) error {
	profile.UpdatedAt = time.Now()

	data, err := json.Marshal(profile)
	if err != nil {
		r.logger.Error("Failed to marshal profile", "id", profile.ID, "error", err)
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	key := profileKeyPrefix + profile.ID.String()
	if err := r.client.Set(ctx, key, string(data), profileTTL).Err(); err != nil {
		r.logger.Error("Failed to save profile", "id", profile.ID, "error", err)
		return fmt.Errorf("failed to save profile: %w", err)
	}

	return nil
}

func (r *RedisProgressStore) LoadProfile(ctx context.Context, id uuid.UUID) (*LearnerProfile, error) {
	key := profileKeyPrefix + id.String()
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			r.logger.Warn("Profile not found", "id", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load profile", "id", id, "error", err)
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var profile LearnerProfile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		r.logger.Error("Failed to unmarshal profile", "id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal profile: %w", err)
	}

	// Empty maps are dropped by omitempty on save; restore them so Apply can
	// write without a nil check per action kind.
	if profile.Items == nil {
		profile.Items = make(map[string]int)
	}
	if profile.Vocabulary == nil {
		profile.Vocabulary = make(map[string]string)
	}
	if profile.Missions == nil {
		profile.Missions = make(map[string]string)
	}

	return &profile, nil
}

// Apply loads the profile, mutates it according to the action, and saves it
// back. A missing profile is created on the fly under the same id.
func (r *RedisProgressStore) Apply(ctx context.Context, id uuid.UUID, action *dialogue.Action) error {
	profile, err := r.LoadProfile(ctx, id)
	if err != nil {
		return err
	}
	if profile == nil {
		profile = NewLearnerProfile()
		profile.ID = id
	}

	switch action.Type {
	case dialogue.ActionGiveItem:
		profile.Items[action.Item.ItemID] += action.Item.Qty

	case dialogue.ActionTakeItem:
		profile.Items[action.Item.ItemID] -= action.Item.Qty
		if profile.Items[action.Item.ItemID] <= 0 {
			delete(profile.Items, action.Item.ItemID)
		}

	case dialogue.ActionGiveXP:
		profile.XP += action.XP.Amount

	case dialogue.ActionTeachWord:
		profile.Vocabulary[action.TeachWord.Word] = action.TeachWord.Translation

	case dialogue.ActionStartMission:
		profile.Missions[action.Mission.ID] = "active"

	case dialogue.ActionCompleteMission:
		profile.Missions[action.Mission.ID] = "complete"

	default:
		r.logger.Debug("Ignoring unrecognized action type", "type", string(action.Type))
		return nil
	}

	return r.SaveProfile(ctx, profile)
}
