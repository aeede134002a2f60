package services

import (
	"context"
	"testing"

	"pronostix/internal/models"
)

func TestCommentThread(t *testing.T) {
	db := setupTestDB(t)
	service := NewCommentService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", 100)
	bob := createTestUser(t, db, "bob", 100)
	prediction := createTestPrediction(t, db, alice.ID, map[string]int64{"yes": 0, "no": 0})

	top, err := service.CreateComment(ctx, prediction.ID, alice.ID, &models.CreateCommentRequest{Body: "I think yes"})
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	if _, err := service.CreateComment(ctx, prediction.ID, bob.ID, &models.CreateCommentRequest{
		Body:     "Disagree",
		ParentID: &top.ID,
	}); err != nil {
		t.Fatalf("reply failed: %v", err)
	}

	comments, err := service.GetPredictionComments(ctx, prediction.ID)
	if err != nil {
		t.Fatalf("GetPredictionComments failed: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("expected 1 top-level comment, got %d", len(comments))
	}
	if len(comments[0].Replies) != 1 || comments[0].Replies[0].Body != "Disagree" {
		t.Errorf("unexpected replies: %+v", comments[0].Replies)
	}
}

func TestCreateCommentRejectsForeignParent(t *testing.T) {
	db := setupTestDB(t)
	service := NewCommentService(db)
	ctx := context.Background()

	user := createTestUser(t, db, "alice", 100)
	p1 := createTestPrediction(t, db, user.ID, map[string]int64{"yes": 0, "no": 0})
	p2 := createTestPrediction(t, db, user.ID, map[string]int64{"yes": 0, "no": 0})

	parent, err := service.CreateComment(ctx, p1.ID, user.ID, &models.CreateCommentRequest{Body: "on p1"})
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	// A reply must live under the same prediction as its parent
	_, err = service.CreateComment(ctx, p2.ID, user.ID, &models.CreateCommentRequest{
		Body:     "cross-thread reply",
		ParentID: &parent.ID,
	})
	if err != ErrCommentNotFound {
		t.Errorf("expected ErrCommentNotFound, got %v", err)
	}
}

func TestUpdateCommentOwnerOnly(t *testing.T) {
	db := setupTestDB(t)
	service := NewCommentService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", 100)
	bob := createTestUser(t, db, "bob", 100)
	prediction := createTestPrediction(t, db, alice.ID, map[string]int64{"yes": 0, "no": 0})

	comment, err := service.CreateComment(ctx, prediction.ID, alice.ID, &models.CreateCommentRequest{Body: "original"})
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}

	if _, err := service.UpdateComment(ctx, comment.ID, bob.ID, &models.UpdateCommentRequest{Body: "hijacked"}); err != ErrNotOwner {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}

	updated, err := service.UpdateComment(ctx, comment.ID, alice.ID, &models.UpdateCommentRequest{Body: "edited"})
	if err != nil {
		t.Fatalf("UpdateComment failed: %v", err)
	}
	if updated.Body != "edited" {
		t.Errorf("expected edited body, got %q", updated.Body)
	}
}

func TestDeleteCommentRemovesReplies(t *testing.T) {
	db := setupTestDB(t)
	service := NewCommentService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", 100)
	bob := createTestUser(t, db, "bob", 100)
	prediction := createTestPrediction(t, db, alice.ID, map[string]int64{"yes": 0, "no": 0})

	top, err := service.CreateComment(ctx, prediction.ID, alice.ID, &models.CreateCommentRequest{Body: "top"})
	if err != nil {
		t.Fatalf("CreateComment failed: %v", err)
	}
	if _, err := service.CreateComment(ctx, prediction.ID, bob.ID, &models.CreateCommentRequest{
		Body:     "reply",
		ParentID: &top.ID,
	}); err != nil {
		t.Fatalf("reply failed: %v", err)
	}

	if err := service.DeleteComment(ctx, top.ID, bob.ID, false); err != ErrNotOwner {
		t.Errorf("expected ErrNotOwner for non-owner delete, got %v", err)
	}

	if err := service.DeleteComment(ctx, top.ID, alice.ID, false); err != nil {
		t.Fatalf("DeleteComment failed: %v", err)
	}

	var count int64
	db.Model(&models.Comment{}).Where("prediction_id = ?", prediction.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected thread fully removed, got %d comments", count)
	}
}
