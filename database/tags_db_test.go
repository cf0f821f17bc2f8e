package database

import (
	"database/sql"
	"errors"
	"testing"

	"logbook/models"
)

func TestCreateTagIsCaseInsensitivelyUnique(t *testing.T) {
	setupTestDB(t)

	first, created, err := CreateTag(models.Tag{Text: "TPC"})
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}
	if !created {
		t.Fatal("first creation should report created=true")
	}

	second, created, err := CreateTag(models.Tag{Text: "tpc"})
	if err != nil {
		t.Fatalf("re-creating tag: %v", err)
	}
	if created {
		t.Error("posting an existing text must not create a second tag")
	}
	if second.ID != first.ID {
		t.Errorf("expected existing tag %d, got %d", first.ID, second.ID)
	}
}

func TestDeleteTagKeepsLogs(t *testing.T) {
	setupTestDB(t)

	tag := mustCreateTag(t, "doomed")
	log := mustCreateLog(t, "tagged entry", nil, []int64{tag.ID})

	if err := DeleteTag(tag.ID); err != nil {
		t.Fatalf("deleting tag: %v", err)
	}

	got, err := GetLogByID(log.ID)
	if err != nil {
		t.Fatalf("log must survive tag deletion: %v", err)
	}
	if len(got.Tags) != 0 {
		t.Errorf("log should have no tags left, got %+v", got.Tags)
	}

	if err := DeleteTag(tag.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("deleting a missing tag should report sql.ErrNoRows, got %v", err)
	}
}

func TestGetLogsForTag(t *testing.T) {
	setupTestDB(t)

	tag := mustCreateTag(t, "EOS")
	tagged := mustCreateLog(t, "tagged", nil, []int64{tag.ID})
	mustCreateLog(t, "untagged", nil, nil)

	logs, total, err := GetLogsForTag(tag.ID, defaultPage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(logs) != 1 || logs[0].ID != tagged.ID {
		t.Errorf("expected only the tagged entry, got total %d rows %+v", total, logs)
	}

	if _, _, err := GetLogsForTag(999, defaultPage()); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("unknown tag should report sql.ErrNoRows, got %v", err)
	}
}
