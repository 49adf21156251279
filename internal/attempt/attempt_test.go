package attempt

import (
	"testing"
	"time"
)

func TestCompleted(t *testing.T) {
	records := []Record{
		{ID: "a", Status: StatusCompleted},
		{ID: "b", Status: StatusInProgress},
		{ID: "c", Status: StatusAbandoned},
		{ID: "d", Status: StatusCompleted},
	}
	got := Completed(records)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "d" {
		t.Fatalf("Completed = %+v", got)
	}
}

func TestSortNewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		{ID: "old", TakenAt: base},
		{ID: "new", TakenAt: base.Add(48 * time.Hour)},
		{ID: "tie1", TakenAt: base.Add(24 * time.Hour)},
		{ID: "tie2", TakenAt: base.Add(24 * time.Hour)},
	}
	got := SortNewestFirst(records)

	want := []string{"new", "tie1", "tie2", "old"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d = %s, want %s (%+v)", i, got[i].ID, id, got)
		}
	}
	if records[0].ID != "old" {
		t.Error("input slice was reordered")
	}
}

func TestDifficultyValid(t *testing.T) {
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		if !d.Valid() {
			t.Errorf("%q should be valid", d)
		}
	}
	if Difficulty("extreme").Valid() {
		t.Error("unknown difficulty reported valid")
	}
}
