package memory

import (
	"context"
	"reflect"
	"testing"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/domain"
)

func TestDraftStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore()

	draft := domain.NewDraftState()
	draft.Answers["Q1"] = domain.AnswerRecord{Question: "Q1", Axis: domain.AxisMilitary, Offset: 2}
	draft.Contact = domain.ContactAnswers{FirstName: "A", LastName: "B", Email: "a@b.com"}
	draft.Demographics.Branch = "Army"

	if err := store.Set(ctx, "d1", draft); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(got, draft) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, draft)
	}
}

func TestDraftStoreMissingIsEmpty(t *testing.T) {
	store := NewDraftStore()
	got, err := store.Get(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Answers) != 0 || got.Contact.Email != "" {
		t.Fatalf("expected empty draft, got %+v", got)
	}
}

func TestDraftStoreCorruptReadsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore()

	draft := domain.NewDraftState()
	draft.Answers["Q1"] = domain.AnswerRecord{Question: "Q1", Axis: domain.AxisCivilian, Offset: 1}
	if err := store.Set(ctx, "d1", draft); err != nil {
		t.Fatalf("set: %v", err)
	}
	store.Corrupt("d1")

	got, err := store.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("corrupt payloads must read as empty, got error %v", err)
	}
	if len(got.Answers) != 0 {
		t.Fatalf("expected empty draft after corruption, got %+v", got)
	}
}

func TestDraftStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewDraftStore()

	draft := domain.NewDraftState()
	draft.Answers["Q1"] = domain.AnswerRecord{Question: "Q1", Axis: domain.AxisMilitary, Offset: -1}
	if err := store.Set(ctx, "d1", draft); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Reset(ctx, "d1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, err := store.Get(ctx, "d1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Answers) != 0 {
		t.Fatalf("expected reset draft to be empty, got %+v", got)
	}
}
