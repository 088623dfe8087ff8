package gradebook

import (
	"strconv"
	"strings"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/model"
)

const (
	correctThreshold    = 80
	notSubmittedLiteral = "Not Submitted"
)

// Classification is the result of mapping one raw grade cell. Score is set
// only for CORRECT and INCORRECT; Submitted marks that a score was recorded
// from this pass.
type Classification struct {
	Status    model.GradeStatus
	Score     *int
	Submitted bool
}

// Classify maps a raw cell token to a grade status. The mapping is total:
// every token yields exactly one status, so classification itself cannot
// fail. An uninterpretable non-empty token degrades to PENDING under the
// policy that it likely reflects grading-in-progress notes, and a zero
// score is an ordinary INCORRECT, not a special case.
func Classify(token string) Classification {
	token = strings.TrimSpace(token)

	if token == "" || strings.EqualFold(token, notSubmittedLiteral) {
		return Classification{Status: model.GradeStatusNotSubmitted}
	}

	score, err := strconv.Atoi(token)
	if err != nil {
		return Classification{Status: model.GradeStatusPending}
	}

	status := model.GradeStatusIncorrect
	if score >= correctThreshold {
		status = model.GradeStatusCorrect
	}
	return Classification{Status: status, Score: &score, Submitted: true}
}
