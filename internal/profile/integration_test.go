package profile_test

import (
	"context"
	"testing"

	"github.com/robolearn/robolearn/internal/profile"
	"github.com/robolearn/robolearn/internal/testutil"
)

func TestStoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	store, err := profile.NewStore(db.Pool, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ctx := context.Background()

	// Missing profile is the zero profile, not an error.
	p, err := store.Get(ctx, "student-1")
	if err != nil {
		t.Fatalf("Get missing: %v", err)
	}
	if p.UserID != "student-1" || p.SkillLevel != "" {
		t.Errorf("missing profile = %+v, want zero with user id", p)
	}

	want := profile.Profile{
		UserID:             "student-1",
		SkillLevel:         profile.SkillLevelBeginner,
		Background:         profile.BackgroundSoftware,
		LanguagePreference: profile.LanguageUrdu,
		LearningGoals:      []string{"pass the robotics exam"},
	}
	if err := store.Upsert(ctx, want); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := store.Get(ctx, "student-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.SkillLevel != want.SkillLevel || got.Background != want.Background ||
		got.LanguagePreference != want.LanguagePreference {
		t.Errorf("Get = %+v, want %+v", got, want)
	}
	if len(got.LearningGoals) != 1 || got.LearningGoals[0] != want.LearningGoals[0] {
		t.Errorf("learning goals = %v", got.LearningGoals)
	}

	// Upsert replaces, not duplicates.
	want.SkillLevel = profile.SkillLevelAdvanced
	if err := store.Upsert(ctx, want); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}
	got, err = store.Get(ctx, "student-1")
	if err != nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got.SkillLevel != profile.SkillLevelAdvanced {
		t.Errorf("skill level = %q after update", got.SkillLevel)
	}

	if err := store.Delete(ctx, "student-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "student-1"); err != nil {
		t.Errorf("Delete missing should be a no-op: %v", err)
	}
	p, err = store.Get(ctx, "student-1")
	if err != nil {
		t.Fatalf("Get after delete: %v", err)
	}
	if p.SkillLevel != "" {
		t.Errorf("profile survived delete: %+v", p)
	}
}

func TestStoreRejectsInvalidProfile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	store, err := profile.NewStore(db.Pool, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	bad := profile.Profile{UserID: "student-2", SkillLevel: "wizard"}
	if err := store.Upsert(context.Background(), bad); err == nil {
		t.Error("invalid skill level should be rejected before reaching storage")
	}
}
