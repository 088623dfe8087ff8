package gradebook

import (
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/pkg/errors"
)

const (
	maxNameLength     = 255
	suspectNameLength = 100
	totalGradeColumn  = "Total Grade"
	notAvailableToken = "NA"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	digitRunRe   = regexp.MustCompile(`[0-9]+`)
)

// Table is the parsed view of one gradebook: the cleaned exercise names
// from the header and one row per student, with grade tokens aligned by
// position to the exercise list.
type Table struct {
	Exercises []string
	Rows      []StudentRow
	Warnings  []apperrors.RecoveryWarning
}

// StudentRow holds a cleaned student name and the raw grade tokens for that
// student. Tokens[i] always corresponds to Exercises[i]; cells the row does
// not cover are empty strings.
type StudentRow struct {
	Line   int
	Name   string
	Tokens []string
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse consumes the decoded row grid. The first row is the header: its
// first column labels the student-name column and is skipped; the remaining
// cells, after cleaning, name the exercises. Cells that clean to empty or
// to "Total Grade" (a computed column some exports append) are excluded by
// column index, and body rows are projected through the same index set so
// header and grades can never drift out of alignment.
func (p *Parser) Parse(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, apperrors.ErrInvalidFileFormat
	}

	header := rows[0]
	var exercises []string
	var keptColumns []int
	for i := 1; i < len(header); i++ {
		name := cleanCell(header[i])
		if name == "" || strings.EqualFold(name, totalGradeColumn) {
			continue
		}
		exercises = append(exercises, name)
		keptColumns = append(keptColumns, i)
	}

	table := &Table{Exercises: exercises}

	for lineIdx, row := range rows[1:] {
		line := lineIdx + 2 // 1-based, after the header

		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		name, warnings := p.cleanStudentName(cleanCell(row[0]), line)
		table.Warnings = append(table.Warnings, warnings...)

		tokens := make([]string, len(keptColumns))
		for pos, col := range keptColumns {
			if col >= len(row) {
				continue
			}
			token := cleanCell(row[col])
			// A stray "NA" or leaked "Total Grade" value in a kept
			// column is treated as blank rather than dropped, so the
			// positional correspondence with the exercise list holds.
			if strings.EqualFold(token, notAvailableToken) ||
				strings.EqualFold(token, totalGradeColumn) {
				token = ""
			}
			tokens[pos] = token
		}

		table.Rows = append(table.Rows, StudentRow{
			Line:   line,
			Name:   name,
			Tokens: tokens,
		})
	}

	return table, nil
}

// cleanStudentName applies the storage-width cap and the embedded-grade
// recovery heuristic. A very long name containing several short digit runs
// usually means grade values leaked into the name column through a
// misdetected delimiter; splitting on comma and keeping the first segment
// is a best-effort recovery, not a guarantee.
func (p *Parser) cleanStudentName(name string, line int) (string, []apperrors.RecoveryWarning) {
	var warnings []apperrors.RecoveryWarning

	// Length limits are in characters, not bytes; a byte-level cut would
	// split a multibyte rune in a non-ASCII name.
	if utf8.RuneCountInString(name) > maxNameLength {
		runes := []rune(name)
		name = string(runes[:maxNameLength])
		warnings = append(warnings,
			apperrors.NewRecoveryWarning(line, "student name truncated to %d characters", maxNameLength))
	}

	if utf8.RuneCountInString(name) > suspectNameLength && countShortDigitRuns(name) >= 2 {
		first := cleanCell(strings.SplitN(name, ",", 2)[0])
		if utf8.RuneCountInString(first) < suspectNameLength {
			warnings = append(warnings,
				apperrors.NewRecoveryWarning(line, "suspected embedded grade values in name %q, kept %q", name, first))
			name = first
		}
	}

	return name, warnings
}

// cleanCell strips surrounding quotes, collapses internal whitespace runs
// to a single space and trims the result.
func cleanCell(cell string) string {
	cell = strings.TrimSpace(cell)
	cell = strings.Trim(cell, `"`)
	cell = whitespaceRe.ReplaceAllString(cell, " ")
	return strings.TrimSpace(cell)
}

func countShortDigitRuns(s string) int {
	count := 0
	for _, run := range digitRunRe.FindAllString(s, -1) {
		if len(run) >= 2 && len(run) <= 3 {
			count++
		}
	}
	return count
}
