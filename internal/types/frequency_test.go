package types

import (
	"errors"
	"testing"

	pkgerrors "github.com/reviseapp/revise-backend/internal/pkg/errors"
)

func TestRevisionFrequencyValidate_AcceptsStrictlyIncreasing(t *testing.T) {
	for _, f := range []RevisionFrequency{
		{7, 14, 21},
		{3, 7, 14, 21, 28},
		{1},
	} {
		if err := f.Validate(); err != nil {
			t.Fatalf("expected %v valid, got %v", f, err)
		}
	}
}

func TestRevisionFrequencyValidate_RejectsBadSequences(t *testing.T) {
	for _, f := range []RevisionFrequency{
		{},
		{0, 7},
		{-3, 7},
		{7, 7, 14},
		{14, 7},
	} {
		err := f.Validate()
		if err == nil {
			t.Fatalf("expected %v rejected", f)
		}
		if !errors.Is(err, pkgerrors.ErrValidation) {
			t.Fatalf("expected ErrValidation for %v, got %v", f, err)
		}
	}
}

func TestNextOffset(t *testing.T) {
	f := RevisionFrequency{7, 14, 21}
	next, ok := f.NextOffset(7)
	if !ok || next != 14 {
		t.Fatalf("expected (14, true), got (%d, %v)", next, ok)
	}
	if _, ok := f.NextOffset(21); ok {
		t.Fatalf("expected no offset after the final cycle")
	}
	if _, ok := f.NextOffset(10); ok {
		t.Fatalf("expected no offset for a value outside the sequence")
	}
}

func TestDeriveFrequency_PresetBoundaries(t *testing.T) {
	cases := []struct {
		weightage, difficulty int
		want                  RevisionFrequency
	}{
		{1, 1, FrequencyLight},
		{2, 2, FrequencyLight},
		{2, 3, FrequencyStandard},
		{3, 4, FrequencyStandard},
		{4, 4, FrequencyIntensive},
		{5, 5, FrequencyIntensive},
	}
	for _, tc := range cases {
		got := DeriveFrequency(tc.weightage, tc.difficulty)
		if len(got) != len(tc.want) {
			t.Fatalf("weightage=%d difficulty=%d: expected %v, got %v", tc.weightage, tc.difficulty, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("weightage=%d difficulty=%d: expected %v, got %v", tc.weightage, tc.difficulty, tc.want, got)
			}
		}
	}
}

func TestTopicRevisionFrequencyOf_FallsBackToDerived(t *testing.T) {
	topic := &Topic{Weightage: 5, Difficulty: 5}
	got := topic.RevisionFrequencyOf()
	if len(got) != len(FrequencyIntensive) {
		t.Fatalf("expected derived intensive preset, got %v", got)
	}
	topic.Frequency = []int{5, 10}
	got = topic.RevisionFrequencyOf()
	if len(got) != 2 || got[0] != 5 || got[1] != 10 {
		t.Fatalf("expected stored frequency, got %v", got)
	}
}
