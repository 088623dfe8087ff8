package identity

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/logger"
	"github.com/JosuePerez4/Backend-Gestor-Calificaciones-OnlineGBD/internal/model"
)

const (
	emailDomain      = "@estudiante.com"
	maxEmailLength   = 100
	maxSuffixRetries = 25

	// Placeholder credential for students created from a gradebook row;
	// the file carries no real login for them.
	defaultPassword = "defaultPassword"
)

var (
	nonLocalChars = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Store is the slice of the persistence boundary the resolver needs.
type Store interface {
	CreateStudent(ctx context.Context, student *model.Student) error
}

// Resolver deduplicates students by normalized name within one ingestion
// run. The name index is built once from the known students and updated as
// students are created, instead of re-scanning the student table per row.
// It never fails an ingestion: the gradebook format carries no stable
// student identifier, so when the source data is incomplete the resolver
// synthesizes an identity rather than erroring.
type Resolver struct {
	store    Store
	byName   map[string]*model.Student
	enrolled map[string]*model.Student
	emails   map[string]struct{}
	log      zerolog.Logger
}

// NewResolver indexes all known students and, separately, the students
// already enrolled in the course being ingested.
func NewResolver(store Store, students []model.Student, courseEnrollments []model.Enrollment) *Resolver {
	r := &Resolver{
		store:    store,
		byName:   make(map[string]*model.Student, len(students)),
		enrolled: make(map[string]*model.Student, len(courseEnrollments)),
		emails:   make(map[string]struct{}, len(students)),
		log:      logger.Get(),
	}

	for i := range students {
		st := &students[i]
		key := normalizeName(st.Name)
		if _, ok := r.byName[key]; !ok {
			r.byName[key] = st
		}
		r.emails[strings.ToLower(st.Email)] = struct{}{}
	}
	for i := range courseEnrollments {
		e := courseEnrollments[i]
		key := normalizeName(e.StudentName)
		if _, ok := r.enrolled[key]; !ok {
			r.enrolled[key] = &model.Student{
				ID:    e.StudentID,
				Name:  e.StudentName,
				Email: e.StudentEmail,
			}
		}
	}

	return r
}

// Resolve returns the student a grade row belongs to, creating one when no
// existing student matches the cleaned name case-insensitively. The second
// return reports whether a new student was created.
func (r *Resolver) Resolve(ctx context.Context, name string) (*model.Student, bool, error) {
	key := normalizeName(name)

	if st, ok := r.byName[key]; ok {
		return st, false, nil
	}

	// A re-upload may reference a student whose address is already on
	// file through a prior enrollment in this course.
	if st, ok := r.enrolled[key]; ok {
		r.byName[key] = st
		return st, false, nil
	}

	email := r.uniqueEmail(name)

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, err
	}

	student := &model.Student{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Code:         uuid.NewString()[:8],
		IsActive:     true,
	}
	if err := r.store.CreateStudent(ctx, student); err != nil {
		return nil, false, err
	}

	r.byName[key] = student
	r.emails[strings.ToLower(email)] = struct{}{}

	r.log.Debug().Str("name", name).Str("email", email).Msg("Created student from gradebook row")
	return student, true, nil
}

// uniqueEmail synthesizes a deterministic address from the name and resolves
// collisions with a bounded numeric suffix. Past the bound it falls back to
// a random token so the loop always terminates.
func (r *Resolver) uniqueEmail(name string) string {
	base := SynthesizeEmail(name)
	if !r.emailTaken(base) {
		return base
	}

	local := strings.TrimSuffix(base, emailDomain)
	maxLocal := maxEmailLength - len(emailDomain)
	for i := 1; i <= maxSuffixRetries; i++ {
		suffix := fmt.Sprintf("%d", i)
		trimmed := local
		// The local part is lowercase ASCII, so byte slicing is safe.
		if len(trimmed)+len(suffix) > maxLocal {
			trimmed = trimmed[:maxLocal-len(suffix)]
		}
		candidate := trimmed + suffix + emailDomain
		if !r.emailTaken(candidate) {
			return candidate
		}
	}

	r.log.Warn().Str("name", name).Msg("Synthetic address retries exhausted, using random token")
	return strings.ToLower(uuid.NewString()[:12]) + emailDomain
}

func (r *Resolver) emailTaken(email string) bool {
	_, ok := r.emails[strings.ToLower(email)]
	return ok
}

// SynthesizeEmail builds the deterministic contact address for a student
// name: lowercase, characters outside [a-z0-9 and whitespace] stripped,
// whitespace runs collapsed to single dots, fixed domain appended. The
// local part is capped so the full address stays within the length limit.
func SynthesizeEmail(name string) string {
	local := strings.ToLower(name)
	local = nonLocalChars.ReplaceAllString(local, "")
	local = strings.TrimSpace(local)
	local = whitespaceRun.ReplaceAllString(local, ".")

	maxLocal := maxEmailLength - len(emailDomain)
	if len(local) > maxLocal {
		local = local[:maxLocal]
	}
	if local == "" {
		local = "student"
	}

	return local + emailDomain
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
