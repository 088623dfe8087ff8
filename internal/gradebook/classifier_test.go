package gradebook

import (
	"testing"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/model"
)

func TestClassify(t *testing.T) {
	score := func(v int) *int { return &v }

	tests := []struct {
		token     string
		status    model.GradeStatus
		score     *int
		submitted bool
	}{
		{"95", model.GradeStatusCorrect, score(95), true},
		{"80", model.GradeStatusCorrect, score(80), true},
		{"100", model.GradeStatusCorrect, score(100), true},
		{"79", model.GradeStatusIncorrect, score(79), true},
		{"45", model.GradeStatusIncorrect, score(45), true},
		{"1", model.GradeStatusIncorrect, score(1), true},
		{"0", model.GradeStatusIncorrect, score(0), true},
		{"", model.GradeStatusNotSubmitted, nil, false},
		{"   ", model.GradeStatusNotSubmitted, nil, false},
		{"Not Submitted", model.GradeStatusNotSubmitted, nil, false},
		{"not submitted", model.GradeStatusNotSubmitted, nil, false},
		{"NOT SUBMITTED", model.GradeStatusNotSubmitted, nil, false},
		{"in progress", model.GradeStatusPending, nil, false},
		{"89.5", model.GradeStatusPending, nil, false},
		{"9O", model.GradeStatusPending, nil, false},
		{"excused", model.GradeStatusPending, nil, false},
	}

	for _, test := range tests {
		t.Run(test.token, func(t *testing.T) {
			got := Classify(test.token)

			if got.Status != test.status {
				t.Fatalf("Classify(%q) status = %s, want %s", test.token, got.Status, test.status)
			}
			if (got.Score == nil) != (test.score == nil) {
				t.Fatalf("Classify(%q) score = %v, want %v", test.token, got.Score, test.score)
			}
			if got.Score != nil && *got.Score != *test.score {
				t.Fatalf("Classify(%q) score = %d, want %d", test.token, *got.Score, *test.score)
			}
			if got.Submitted != test.submitted {
				t.Fatalf("Classify(%q) submitted = %v, want %v", test.token, got.Submitted, test.submitted)
			}
		})
	}
}

func TestClassifyScoreOnlyForScoredStatuses(t *testing.T) {
	for _, token := range []string{"", "Not Submitted", "pending review", "abc"} {
		got := Classify(token)
		if got.Score != nil {
			t.Errorf("Classify(%q) carries a score for status %s", token, got.Status)
		}
		if got.Submitted {
			t.Errorf("Classify(%q) marked submitted for status %s", token, got.Status)
		}
	}
}
