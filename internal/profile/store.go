package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/robolearn/robolearn/internal/log"
)

// Querier is the subset of pgx operations the store needs. Satisfied by
// *pgxpool.Pool, pgx.Tx, and test fakes.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists learner profiles in Postgres.
type Store struct {
	db     Querier
	logger log.Logger
}

// NewStore creates a profile store backed by the given querier.
func NewStore(db Querier, logger log.Logger) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("querier is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{db: db, logger: logger}, nil
}

// Get loads the profile for userID. A missing row is not an error: the
// zero Profile is returned, which selects the default strategy.
func (s *Store) Get(ctx context.Context, userID string) (Profile, error) {
	if userID == "" {
		return Profile{}, fmt.Errorf("user id is required")
	}

	var (
		p     Profile
		goals []byte
	)
	err := s.db.QueryRow(ctx, `
		SELECT user_id, skill_level, background, language_preference, learning_goals
		FROM profiles
		WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.SkillLevel, &p.Background, &p.LanguagePreference, &goals)
	if err != nil {
		if err == pgx.ErrNoRows {
			return Profile{UserID: userID}, nil
		}
		return Profile{}, fmt.Errorf("loading profile %s: %w", userID, err)
	}

	if len(goals) > 0 {
		if err := json.Unmarshal(goals, &p.LearningGoals); err != nil {
			return Profile{}, fmt.Errorf("decoding learning goals for %s: %w", userID, err)
		}
	}
	return p, nil
}

// Upsert stores the profile, replacing any previous row for the user.
func (s *Store) Upsert(ctx context.Context, p Profile) error {
	if p.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validating profile: %w", err)
	}

	goals := p.LearningGoals
	if goals == nil {
		goals = []string{}
	}
	encoded, err := json.Marshal(goals)
	if err != nil {
		return fmt.Errorf("encoding learning goals: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO profiles (user_id, skill_level, background, language_preference, learning_goals, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			skill_level = EXCLUDED.skill_level,
			background = EXCLUDED.background,
			language_preference = EXCLUDED.language_preference,
			learning_goals = EXCLUDED.learning_goals,
			updated_at = now()`,
		p.UserID, p.SkillLevel, p.Background, p.LanguagePreference, encoded)
	if err != nil {
		return fmt.Errorf("upserting profile %s: %w", p.UserID, err)
	}

	s.logger.Debug("profile saved", "user_id", p.UserID, "strategy", SelectStrategy(p))
	return nil
}

// Delete removes the profile. Deleting a missing profile is a no-op.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM profiles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("deleting profile %s: %w", userID, err)
	}
	return nil
}
