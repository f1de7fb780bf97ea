package models

import (
	"encoding/json"
	"testing"
)

func TestEncodeSlotPlan_ActuatorFormat(t *testing.T) {
	plan := []SlotPortion{{2, 100}, {5, 150}, {8, 80}}

	got := EncodeSlotPlan(plan)
	if got != "2,100;5,150;8,80" {
		t.Errorf("EncodeSlotPlan = %q, want %q", got, "2,100;5,150;8,80")
	}
}

func TestEncodeSlotPlan_SingleBin(t *testing.T) {
	if got := EncodeSlotPlan([]SlotPortion{{2, 150}}); got != "2,150" {
		t.Errorf("EncodeSlotPlan = %q, want %q", got, "2,150")
	}
}

func TestParseSlotPlan_RoundTrip(t *testing.T) {
	plan, err := ParseSlotPlan("2,100;5,150;8,80")
	if err != nil {
		t.Fatalf("ParseSlotPlan failed: %v", err)
	}
	if len(plan) != 3 {
		t.Fatalf("expected 3 portions, got %d", len(plan))
	}
	if plan[1].Position != 5 || plan[1].Weight != 150 {
		t.Errorf("unexpected second portion: %+v", plan[1])
	}
	if EncodeSlotPlan(plan) != "2,100;5,150;8,80" {
		t.Error("re-encoding changed the wire text")
	}
}

func TestParseSlotPlan_Malformed(t *testing.T) {
	for _, input := range []string{"2;100", "a,100", "2,b", "2"} {
		if _, err := ParseSlotPlan(input); err == nil {
			t.Errorf("ParseSlotPlan(%q) should fail", input)
		}
	}
}

func TestParseSlotPlan_Empty(t *testing.T) {
	plan, err := ParseSlotPlan("")
	if err != nil {
		t.Fatalf("ParseSlotPlan failed: %v", err)
	}
	if plan != nil {
		t.Errorf("expected nil plan, got %+v", plan)
	}
}

func TestParseMealType(t *testing.T) {
	if mt, ok := ParseMealType("lunch"); !ok || mt != MealLunch {
		t.Error("lunch should parse")
	}
	if mt, ok := ParseMealType("dinner"); !ok || mt != MealDinner {
		t.Error("dinner should parse")
	}
	if _, ok := ParseMealType("breakfast"); ok {
		t.Error("breakfast should not parse")
	}
}

func TestVoteRecord_WinnerSerializesAsNull(t *testing.T) {
	rec := VoteRecord{
		Date:     "2024-01-15",
		Type:     MealLunch,
		Menus:    []VoteOption{{MenuID: "m1", Name: "A", VotedStudentIDs: []string{}}},
		TotalRaw: map[string]int{},
	}

	data, err := json.Marshal(&rec)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if string(raw["winner"]) != "null" {
		t.Errorf("open slot must serialize winner as null, got %s", raw["winner"])
	}
}

func TestJobID_Deterministic(t *testing.T) {
	slot := Slot{Date: "2024-01-15", Type: MealLunch}

	a := JobID("S1", slot)
	b := JobID("S1", slot)
	if a != b {
		t.Errorf("same (student, slot) must yield the same id: %s != %s", a, b)
	}

	if JobID("S2", slot) == a {
		t.Error("different students must yield different ids")
	}
	if JobID("S1", Slot{Date: "2024-01-15", Type: MealDinner}) == a {
		t.Error("different meal types must yield different ids")
	}
	if JobID("S1", Slot{Date: "2024-01-16", Type: MealLunch}) == a {
		t.Error("different dates must yield different ids")
	}
}

func TestVoteRecord_Closed(t *testing.T) {
	rec := VoteRecord{}
	if rec.Closed() {
		t.Error("record without winner should be open")
	}
	w := "m2"
	rec.Winner = &w
	if !rec.Closed() {
		t.Error("record with winner should be closed")
	}
}
