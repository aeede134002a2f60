package services

import (
	"context"
	"testing"
	"time"

	"pronostix/internal/models"
)

func TestCreatePredictionValidation(t *testing.T) {
	db := setupTestDB(t)
	service := NewPredictionService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice", 100)
	deadline := time.Now().Add(24 * time.Hour)

	cases := []struct {
		name    string
		req     *models.CreatePredictionRequest
		wantErr error
	}{
		{
			name:    "single option",
			req:     &models.CreatePredictionRequest{Title: "t", Options: []string{"yes"}, Deadline: deadline},
			wantErr: ErrNotEnoughOptions,
		},
		{
			name:    "past deadline",
			req:     &models.CreatePredictionRequest{Title: "t", Options: []string{"yes", "no"}, Deadline: time.Now().Add(-time.Hour)},
			wantErr: ErrDeadlineInPast,
		},
		{
			name:    "empty option",
			req:     &models.CreatePredictionRequest{Title: "t", Options: []string{"yes", ""}, Deadline: deadline},
			wantErr: ErrInvalidOption,
		},
		{
			name:    "duplicate option",
			req:     &models.CreatePredictionRequest{Title: "t", Options: []string{"yes", "yes"}, Deadline: deadline},
			wantErr: ErrDuplicateOption,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := service.CreatePrediction(ctx, user.ID, tc.req); err != tc.wantErr {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreatePredictionStartsWithZeroTallies(t *testing.T) {
	db := setupTestDB(t)
	service := NewPredictionService(db)

	user := createTestUser(t, db, "alice", 100)

	prediction, err := service.CreatePrediction(context.Background(), user.ID, &models.CreatePredictionRequest{
		Title:    "Will it rain tomorrow?",
		Options:  []string{"yes", "no"},
		Deadline: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreatePrediction failed: %v", err)
	}

	if prediction.Status != models.PredictionStatusWaiting {
		t.Errorf("expected status waiting, got %s", prediction.Status)
	}
	totals, err := prediction.OptionTotals()
	if err != nil {
		t.Fatalf("failed to decode totals: %v", err)
	}
	if len(totals) != 2 || totals["yes"] != 0 || totals["no"] != 0 {
		t.Errorf("expected zeroed tallies for both options, got %v", totals)
	}
}

func TestListPredictionsFilters(t *testing.T) {
	db := setupTestDB(t)
	service := NewPredictionService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", 100)
	bob := createTestUser(t, db, "bob", 100)

	p1 := createTestPrediction(t, db, alice.ID, map[string]int64{"yes": 0, "no": 0})
	createTestPrediction(t, db, bob.ID, map[string]int64{"yes": 0, "no": 0})
	if err := db.Model(p1).Update("status", models.PredictionStatusValid).Error; err != nil {
		t.Fatalf("failed to mark prediction valid: %v", err)
	}

	valid, err := service.ListPredictions(ctx, models.PredictionStatusValid, 0, 50, 0)
	if err != nil {
		t.Fatalf("ListPredictions failed: %v", err)
	}
	if len(valid) != 1 || valid[0].ID != p1.ID {
		t.Errorf("unexpected status filter result: %+v", valid)
	}

	byAuthor, err := service.ListPredictions(ctx, "", bob.ID, 50, 0)
	if err != nil {
		t.Fatalf("ListPredictions failed: %v", err)
	}
	if len(byAuthor) != 1 || byAuthor[0].AuthorID != bob.ID {
		t.Errorf("unexpected author filter result: %+v", byAuthor)
	}
}

func TestUpdatePredictionOwnershipAndState(t *testing.T) {
	db := setupTestDB(t)
	service := NewPredictionService(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner", 100)
	other := createTestUser(t, db, "other", 100)
	prediction := createTestPrediction(t, db, owner.ID, map[string]int64{"yes": 0, "no": 0})

	title := "Updated title"
	if _, err := service.UpdatePrediction(ctx, prediction.ID, other.ID, false, &models.UpdatePredictionRequest{Title: &title}); err != ErrNotOwner {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}

	updated, err := service.UpdatePrediction(ctx, prediction.ID, owner.ID, false, &models.UpdatePredictionRequest{Title: &title})
	if err != nil {
		t.Fatalf("UpdatePrediction failed: %v", err)
	}
	if updated.Title != title {
		t.Errorf("expected title updated, got %q", updated.Title)
	}

	if err := db.Model(prediction).Update("status", models.PredictionStatusValid).Error; err != nil {
		t.Fatalf("failed to mark prediction valid: %v", err)
	}
	if _, err := service.UpdatePrediction(ctx, prediction.ID, owner.ID, false, &models.UpdatePredictionRequest{Title: &title}); err != ErrPredictionResolved {
		t.Errorf("expected ErrPredictionResolved, got %v", err)
	}
}

func TestDeletePredictionRefundsStakes(t *testing.T) {
	db := setupTestDB(t)
	predictions := NewPredictionService(db)
	votes := NewVoteService(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner", 100)
	voter := createTestUser(t, db, "voter", 100)
	prediction := createTestPrediction(t, db, owner.ID, map[string]int64{"yes": 0, "no": 0})

	if _, err := votes.CreateVote(ctx, voter.ID, &models.CreateVoteRequest{
		PredictionID: prediction.ID, Option: "yes", Amount: 35,
	}); err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}

	if err := predictions.DeletePrediction(ctx, prediction.ID, owner.ID, false); err != nil {
		t.Fatalf("DeletePrediction failed: %v", err)
	}

	if got := userPoints(t, db, voter.ID); got != 100 {
		t.Errorf("expected voter refunded to 100, got %d", got)
	}

	var voteCount int64
	db.Model(&models.Vote{}).Where("prediction_id = ?", prediction.ID).Count(&voteCount)
	if voteCount != 0 {
		t.Errorf("expected votes removed, got %d", voteCount)
	}

	if _, err := predictions.GetPrediction(ctx, prediction.ID); err != ErrPredictionNotFound {
		t.Errorf("expected ErrPredictionNotFound, got %v", err)
	}
}
