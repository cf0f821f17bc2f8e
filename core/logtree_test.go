package core

import (
	"errors"
	"testing"
	"time"

	"logbook/models"
)

func familyLog(id int64, parent *int64, root int64, created time.Time) models.Log {
	return models.Log{
		ID:          id,
		Title:       "entry",
		ParentLogID: parent,
		RootLogID:   root,
		CreatedAt:   created,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestAssembleLogTreeOrdersChildren(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	logs := []models.Log{
		familyLog(1, nil, 1, base),
		// Same timestamp as id 3; id breaks the tie.
		familyLog(4, int64Ptr(1), 1, base.Add(time.Minute)),
		familyLog(3, int64Ptr(1), 1, base.Add(time.Minute)),
		familyLog(2, int64Ptr(1), 1, base.Add(2*time.Minute)),
	}

	tree, err := AssembleLogTree(logs, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.ID != 1 {
		t.Fatalf("expected root id 1, got %d", tree.ID)
	}
	if len(tree.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(tree.Children))
	}
	gotOrder := []int64{tree.Children[0].ID, tree.Children[1].ID, tree.Children[2].ID}
	wantOrder := []int64{3, 4, 2}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("expected child order %v, got %v", wantOrder, gotOrder)
		}
	}
}

func TestAssembleLogTreeEmptyChildrenNeverNil(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	logs := []models.Log{
		familyLog(1, nil, 1, base),
		familyLog(2, int64Ptr(1), 1, base.Add(time.Minute)),
	}

	tree, err := AssembleLogTree(logs, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	leaf := tree.Children[0]
	if leaf.Children == nil {
		t.Error("leaf children must be an empty list, not nil")
	}
	if len(leaf.Children) != 0 {
		t.Errorf("expected no grandchildren, got %d", len(leaf.Children))
	}
}

func TestAssembleLogTreeCountsSubtreeReplies(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	logs := []models.Log{
		familyLog(1, nil, 1, base),
		familyLog(2, int64Ptr(1), 1, base.Add(time.Minute)),
		familyLog(3, int64Ptr(2), 1, base.Add(2*time.Minute)),
		familyLog(4, int64Ptr(2), 1, base.Add(3*time.Minute)),
	}

	tree, err := AssembleLogTree(logs, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Replies != 3 {
		t.Errorf("root should count 3 descendants, got %d", tree.Replies)
	}
	mid := tree.Children[0]
	if mid.Replies != 2 {
		t.Errorf("mid node should count 2 descendants, got %d", mid.Replies)
	}
}

func TestAssembleLogTreeSingleEntry(t *testing.T) {
	logs := []models.Log{familyLog(9, nil, 9, time.Now().UTC())}
	tree, err := AssembleLogTree(logs, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Replies != 0 || len(tree.Children) != 0 {
		t.Errorf("single entry should have no replies, got %+v", tree)
	}
}

func TestAssembleLogTreeRejectsDuplicateIDs(t *testing.T) {
	base := time.Now().UTC()
	logs := []models.Log{
		familyLog(1, nil, 1, base),
		familyLog(2, int64Ptr(1), 1, base),
		familyLog(2, int64Ptr(1), 1, base),
	}
	_, err := AssembleLogTree(logs, 1)
	var integrityErr *models.DataIntegrityError
	if !errors.As(err, &integrityErr) {
		t.Fatalf("expected DataIntegrityError, got %v", err)
	}
}

func TestAssembleLogTreeRejectsCycle(t *testing.T) {
	base := time.Now().UTC()
	// 2 and 3 point at each other; neither is reachable from the root.
	logs := []models.Log{
		familyLog(1, nil, 1, base),
		familyLog(2, int64Ptr(3), 1, base),
		familyLog(3, int64Ptr(2), 1, base),
	}
	_, err := AssembleLogTree(logs, 1)
	var integrityErr *models.DataIntegrityError
	if !errors.As(err, &integrityErr) {
		t.Fatalf("expected DataIntegrityError, got %v", err)
	}
}

func TestAssembleLogTreeRejectsMissingRoot(t *testing.T) {
	base := time.Now().UTC()
	logs := []models.Log{familyLog(2, int64Ptr(1), 1, base)}
	_, err := AssembleLogTree(logs, 1)
	var integrityErr *models.DataIntegrityError
	if !errors.As(err, &integrityErr) {
		t.Fatalf("expected DataIntegrityError, got %v", err)
	}
}

func TestAssembleLogTreeRejectsRootWithParent(t *testing.T) {
	base := time.Now().UTC()
	logs := []models.Log{familyLog(1, int64Ptr(5), 1, base)}
	_, err := AssembleLogTree(logs, 1)
	var integrityErr *models.DataIntegrityError
	if !errors.As(err, &integrityErr) {
		t.Fatalf("expected DataIntegrityError, got %v", err)
	}
}

func TestCountDescendants(t *testing.T) {
	base := time.Now().UTC()
	logs := []models.Log{
		familyLog(1, nil, 1, base),
		familyLog(2, int64Ptr(1), 1, base),
		familyLog(3, int64Ptr(2), 1, base),
		familyLog(4, int64Ptr(1), 1, base),
	}
	if got := CountDescendants(logs, 1); got != 3 {
		t.Errorf("expected 3 descendants of root, got %d", got)
	}
	if got := CountDescendants(logs, 2); got != 1 {
		t.Errorf("expected 1 descendant of node 2, got %d", got)
	}
	if got := CountDescendants(logs, 4); got != 0 {
		t.Errorf("expected 0 descendants of leaf, got %d", got)
	}
}
