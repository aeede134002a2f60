package services

import (
	"context"
	"testing"
	"time"

	"pronostix/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Prediction{},
		&models.Vote{},
		&models.PointTransaction{},
		&models.Comment{},
		&models.ShopItem{},
		&models.UserItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, points int64) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		PasswordHash: "x",
		Points:       points,
		Role:         models.RoleUser,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createTestPrediction(t *testing.T, db *gorm.DB, authorID uint, options map[string]int64) *models.Prediction {
	t.Helper()

	prediction := &models.Prediction{
		Title:    "Test prediction",
		AuthorID: authorID,
		Deadline: time.Now().Add(24 * time.Hour),
		Status:   models.PredictionStatusWaiting,
	}
	if err := prediction.SetOptionTotals(options); err != nil {
		t.Fatalf("failed to encode options: %v", err)
	}
	if err := db.Create(prediction).Error; err != nil {
		t.Fatalf("failed to create prediction: %v", err)
	}
	return prediction
}

func optionTotal(t *testing.T, db *gorm.DB, predictionID uint, option string) int64 {
	t.Helper()

	var prediction models.Prediction
	if err := db.First(&prediction, predictionID).Error; err != nil {
		t.Fatalf("failed to load prediction: %v", err)
	}
	totals, err := prediction.OptionTotals()
	if err != nil {
		t.Fatalf("failed to decode totals: %v", err)
	}
	return totals[option]
}

func userPoints(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	return user.Points
}

func TestCreateVoteBalanceConservation(t *testing.T) {
	db := setupTestDB(t)
	service := NewVoteService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice", 100)
	prediction := createTestPrediction(t, db, user.ID, map[string]int64{"yes": 0, "no": 0})

	vote, err := service.CreateVote(ctx, user.ID, &models.CreateVoteRequest{
		PredictionID: prediction.ID,
		Option:       "yes",
		Amount:       40,
	})
	if err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}

	if vote.Option != "yes" || vote.Amount != 40 {
		t.Errorf("unexpected vote response: %+v", vote)
	}
	if got := userPoints(t, db, user.ID); got != 60 {
		t.Errorf("expected balance 60, got %d", got)
	}
	if got := optionTotal(t, db, prediction.ID, "yes"); got != 40 {
		t.Errorf("expected yes tally 40, got %d", got)
	}

	var txCount int64
	db.Model(&models.PointTransaction{}).
		Where("user_id = ? AND type = ?", user.ID, models.TransactionTypeVotePlaced).
		Count(&txCount)
	if txCount != 1 {
		t.Errorf("expected 1 journal entry, got %d", txCount)
	}
}

func TestDeleteVoteReversesCreate(t *testing.T) {
	db := setupTestDB(t)
	service := NewVoteService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice", 100)
	prediction := createTestPrediction(t, db, user.ID, map[string]int64{"yes": 0, "no": 0})

	vote, err := service.CreateVote(ctx, user.ID, &models.CreateVoteRequest{
		PredictionID: prediction.ID,
		Option:       "no",
		Amount:       30,
	})
	if err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}

	voteID, err := uuid.Parse(vote.ID)
	if err != nil {
		t.Fatalf("invalid vote id: %v", err)
	}

	deleted, err := service.DeleteVote(ctx, voteID, user.ID, false)
	if err != nil {
		t.Fatalf("DeleteVote failed: %v", err)
	}
	if deleted == nil {
		t.Fatal("expected deleted vote, got nil")
	}

	if got := userPoints(t, db, user.ID); got != 100 {
		t.Errorf("expected balance restored to 100, got %d", got)
	}
	if got := optionTotal(t, db, prediction.ID, "no"); got != 0 {
		t.Errorf("expected no tally back to 0, got %d", got)
	}
}

func TestDeleteVoteMissingIsNotAnError(t *testing.T) {
	db := setupTestDB(t)
	service := NewVoteService(db)

	user := createTestUser(t, db, "alice", 100)

	deleted, err := service.DeleteVote(context.Background(), uuid.New(), user.ID, false)
	if err != nil {
		t.Fatalf("DeleteVote on missing vote should not fail: %v", err)
	}
	if deleted != nil {
		t.Errorf("expected nil for missing vote, got %+v", deleted)
	}
}

func TestCreateVoteInsufficientPointsNoSideEffects(t *testing.T) {
	db := setupTestDB(t)
	service := NewVoteService(db)

	user := createTestUser(t, db, "poor", 10)
	prediction := createTestPrediction(t, db, user.ID, map[string]int64{"yes": 0, "no": 0})

	_, err := service.CreateVote(context.Background(), user.ID, &models.CreateVoteRequest{
		PredictionID: prediction.ID,
		Option:       "yes",
		Amount:       50,
	})
	if err != ErrInsufficientPoints {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}

	if got := userPoints(t, db, user.ID); got != 10 {
		t.Errorf("balance changed on rejected vote: %d", got)
	}
	if got := optionTotal(t, db, prediction.ID, "yes"); got != 0 {
		t.Errorf("tally changed on rejected vote: %d", got)
	}

	var voteCount int64
	db.Model(&models.Vote{}).Count(&voteCount)
	if voteCount != 0 {
		t.Errorf("expected no vote records, got %d", voteCount)
	}
}

func TestCreateVoteUnknownOption(t *testing.T) {
	db := setupTestDB(t)
	service := NewVoteService(db)

	user := createTestUser(t, db, "alice", 100)
	prediction := createTestPrediction(t, db, user.ID, map[string]int64{"yes": 0, "no": 0})

	_, err := service.CreateVote(context.Background(), user.ID, &models.CreateVoteRequest{
		PredictionID: prediction.ID,
		Option:       "maybe",
		Amount:       10,
	})
	if err != ErrInvalidOption {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}
}

func TestCreateVoteMissingReferences(t *testing.T) {
	db := setupTestDB(t)
	service := NewVoteService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice", 100)

	_, err := service.CreateVote(ctx, 999, &models.CreateVoteRequest{
		PredictionID: 1,
		Option:       "yes",
		Amount:       10,
	})
	if err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	_, err = service.CreateVote(ctx, user.ID, &models.CreateVoteRequest{
		PredictionID: 999,
		Option:       "yes",
		Amount:       10,
	})
	if err != ErrPredictionNotFound {
		t.Fatalf("expected ErrPredictionNotFound, got %v", err)
	}
}

func TestCreateVotePastDeadline(t *testing.T) {
	db := setupTestDB(t)
	service := NewVoteService(db)

	user := createTestUser(t, db, "alice", 100)
	prediction := createTestPrediction(t, db, user.ID, map[string]int64{"yes": 0, "no": 0})

	// Push the deadline into the past
	if err := db.Model(prediction).Update("deadline", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("failed to move deadline: %v", err)
	}

	_, err := service.CreateVote(context.Background(), user.ID, &models.CreateVoteRequest{
		PredictionID: prediction.ID,
		Option:       "yes",
		Amount:       10,
	})
	if err != ErrPredictionClosed {
		t.Fatalf("expected ErrPredictionClosed, got %v", err)
	}
}

func TestUpsertVoteDebitsOnlyTheDelta(t *testing.T) {
	db := setupTestDB(t)
	service := NewVoteService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice", 100)
	prediction := createTestPrediction(t, db, user.ID, map[string]int64{"yes": 0, "no": 0})

	vote, err := service.CreateVote(ctx, user.ID, &models.CreateVoteRequest{
		PredictionID: prediction.ID,
		Option:       "yes",
		Amount:       40,
	})
	if err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}
	voteID, _ := uuid.Parse(vote.ID)

	// Raise the stake 40 -> 70: only 30 more points leave the balance
	newAmount := int64(70)
	updated, err := service.UpsertVote(ctx, voteID, user.ID, &models.UpsertVoteRequest{
		Amount: &newAmount,
	})
	if err != nil {
		t.Fatalf("UpsertVote failed: %v", err)
	}
	if updated.Amount != 70 {
		t.Errorf("expected amount 70, got %d", updated.Amount)
	}
	if got := userPoints(t, db, user.ID); got != 30 {
		t.Errorf("expected balance 30 after delta debit, got %d", got)
	}
	if got := optionTotal(t, db, prediction.ID, "yes"); got != 70 {
		t.Errorf("expected yes tally 70, got %d", got)
	}

	// Lower the stake 70 -> 20: 50 points come back
	newAmount = 20
	if _, err := service.UpsertVote(ctx, voteID, user.ID, &models.UpsertVoteRequest{Amount: &newAmount}); err != nil {
		t.Fatalf("UpsertVote failed: %v", err)
	}
	if got := userPoints(t, db, user.ID); got != 80 {
		t.Errorf("expected balance 80 after refund, got %d", got)
	}
	if got := optionTotal(t, db, prediction.ID, "yes"); got != 20 {
		t.Errorf("expected yes tally 20, got %d", got)
	}
}

func TestUpsertVoteMovesStakeBetweenOptions(t *testing.T) {
	db := setupTestDB(t)
	service := NewVoteService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice", 100)
	prediction := createTestPrediction(t, db, user.ID, map[string]int64{"yes": 0, "no": 0})

	vote, err := service.CreateVote(ctx, user.ID, &models.CreateVoteRequest{
		PredictionID: prediction.ID,
		Option:       "yes",
		Amount:       40,
	})
	if err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}
	voteID, _ := uuid.Parse(vote.ID)

	option := "no"
	if _, err := service.UpsertVote(ctx, voteID, user.ID, &models.UpsertVoteRequest{Option: &option}); err != nil {
		t.Fatalf("UpsertVote failed: %v", err)
	}

	if got := optionTotal(t, db, prediction.ID, "yes"); got != 0 {
		t.Errorf("expected yes tally 0 after move, got %d", got)
	}
	if got := optionTotal(t, db, prediction.ID, "no"); got != 40 {
		t.Errorf("expected no tally 40 after move, got %d", got)
	}
	if got := userPoints(t, db, user.ID); got != 60 {
		t.Errorf("balance should be unchanged by an option move, got %d", got)
	}
}

func TestUpsertVoteInsufficientDelta(t *testing.T) {
	db := setupTestDB(t)
	service := NewVoteService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice", 50)
	prediction := createTestPrediction(t, db, user.ID, map[string]int64{"yes": 0, "no": 0})

	vote, err := service.CreateVote(ctx, user.ID, &models.CreateVoteRequest{
		PredictionID: prediction.ID,
		Option:       "yes",
		Amount:       40,
	})
	if err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}
	voteID, _ := uuid.Parse(vote.ID)

	// Balance is 10, delta would be 30
	newAmount := int64(70)
	_, err = service.UpsertVote(ctx, voteID, user.ID, &models.UpsertVoteRequest{Amount: &newAmount})
	if err != ErrInsufficientPoints {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}

	if got := userPoints(t, db, user.ID); got != 10 {
		t.Errorf("balance changed on rejected update: %d", got)
	}
	if got := optionTotal(t, db, prediction.ID, "yes"); got != 40 {
		t.Errorf("tally changed on rejected update: %d", got)
	}
}

func TestUpsertVoteCreatesUnderSuppliedID(t *testing.T) {
	db := setupTestDB(t)
	service := NewVoteService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice", 100)
	prediction := createTestPrediction(t, db, user.ID, map[string]int64{"yes": 0, "no": 0})

	voteID := uuid.New()
	option := "yes"
	amount := int64(25)
	vote, err := service.UpsertVote(ctx, voteID, user.ID, &models.UpsertVoteRequest{
		PredictionID: &prediction.ID,
		Option:       &option,
		Amount:       &amount,
	})
	if err != nil {
		t.Fatalf("UpsertVote create branch failed: %v", err)
	}

	if vote.ID != voteID.String() {
		t.Errorf("expected vote stored under supplied id %s, got %s", voteID, vote.ID)
	}
	if got := userPoints(t, db, user.ID); got != 75 {
		t.Errorf("expected balance 75, got %d", got)
	}
	if got := optionTotal(t, db, prediction.ID, "yes"); got != 25 {
		t.Errorf("expected yes tally 25, got %d", got)
	}
}

func TestUpsertVoteRejectsPredictionChange(t *testing.T) {
	db := setupTestDB(t)
	service := NewVoteService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice", 200)
	p1 := createTestPrediction(t, db, user.ID, map[string]int64{"yes": 0, "no": 0})
	p2 := createTestPrediction(t, db, user.ID, map[string]int64{"yes": 0, "no": 0})

	vote, err := service.CreateVote(ctx, user.ID, &models.CreateVoteRequest{
		PredictionID: p1.ID,
		Option:       "yes",
		Amount:       40,
	})
	if err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}
	voteID, _ := uuid.Parse(vote.ID)

	amount := int64(50)
	_, err = service.UpsertVote(ctx, voteID, user.ID, &models.UpsertVoteRequest{
		PredictionID: &p2.ID,
		Amount:       &amount,
	})
	if err != ErrPredictionMismatch {
		t.Fatalf("expected ErrPredictionMismatch, got %v", err)
	}

	// The rejected move leaves everything untouched
	if got := userPoints(t, db, user.ID); got != 160 {
		t.Errorf("balance changed on rejected move: %d", got)
	}
	if got := optionTotal(t, db, p1.ID, "yes"); got != 40 {
		t.Errorf("source tally changed on rejected move: %d", got)
	}
	if got := optionTotal(t, db, p2.ID, "yes"); got != 0 {
		t.Errorf("target tally changed on rejected move: %d", got)
	}

	// Restating the vote's own prediction id is fine
	if _, err := service.UpsertVote(ctx, voteID, user.ID, &models.UpsertVoteRequest{
		PredictionID: &p1.ID,
		Amount:       &amount,
	}); err != nil {
		t.Fatalf("UpsertVote with matching prediction id failed: %v", err)
	}
}

func TestTalliesMatchLiveVotes(t *testing.T) {
	db := setupTestDB(t)
	service := NewVoteService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", 500)
	bob := createTestUser(t, db, "bob", 500)
	carol := createTestUser(t, db, "carol", 500)
	prediction := createTestPrediction(t, db, alice.ID, map[string]int64{"yes": 0, "no": 0})

	aliceVote, err := service.CreateVote(ctx, alice.ID, &models.CreateVoteRequest{
		PredictionID: prediction.ID, Option: "yes", Amount: 100,
	})
	if err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}
	bobVote, err := service.CreateVote(ctx, bob.ID, &models.CreateVoteRequest{
		PredictionID: prediction.ID, Option: "no", Amount: 80,
	})
	if err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}
	if _, err := service.CreateVote(ctx, carol.ID, &models.CreateVoteRequest{
		PredictionID: prediction.ID, Option: "yes", Amount: 60,
	}); err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}

	// Interleave updates and a delete, then check the tallies against the
	// live vote rows
	aliceID, _ := uuid.Parse(aliceVote.ID)
	option := "no"
	amount := int64(150)
	if _, err := service.UpsertVote(ctx, aliceID, alice.ID, &models.UpsertVoteRequest{
		Option: &option,
		Amount: &amount,
	}); err != nil {
		t.Fatalf("UpsertVote failed: %v", err)
	}

	bobID, _ := uuid.Parse(bobVote.ID)
	if _, err := service.DeleteVote(ctx, bobID, bob.ID, false); err != nil {
		t.Fatalf("DeleteVote failed: %v", err)
	}

	var votes []models.Vote
	if err := db.Where("prediction_id = ?", prediction.ID).Find(&votes).Error; err != nil {
		t.Fatalf("failed to load votes: %v", err)
	}
	expect := map[string]int64{"yes": 0, "no": 0}
	for _, vote := range votes {
		expect[vote.Option] += vote.Amount
	}

	for option, want := range expect {
		if got := optionTotal(t, db, prediction.ID, option); got != want {
			t.Errorf("tally for %s is %d, live votes sum to %d", option, got, want)
		}
	}
}

func TestUpsertVoteNotOwner(t *testing.T) {
	db := setupTestDB(t)
	service := NewVoteService(db)
	ctx := context.Background()

	owner := createTestUser(t, db, "owner", 100)
	other := createTestUser(t, db, "other", 100)
	prediction := createTestPrediction(t, db, owner.ID, map[string]int64{"yes": 0, "no": 0})

	vote, err := service.CreateVote(ctx, owner.ID, &models.CreateVoteRequest{
		PredictionID: prediction.ID,
		Option:       "yes",
		Amount:       10,
	})
	if err != nil {
		t.Fatalf("CreateVote failed: %v", err)
	}
	voteID, _ := uuid.Parse(vote.ID)

	amount := int64(20)
	_, err = service.UpsertVote(ctx, voteID, other.ID, &models.UpsertVoteRequest{Amount: &amount})
	if err != ErrNotOwner {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}
