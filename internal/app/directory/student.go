package directory

import (
	"context"
	"slices"
	"strings"

	"alumnilink/internal/app/entity"
	"alumnilink/internal/app/store"
	"alumnilink/internal/pkg/errs"
)

// ListStudents returns every student, or those whose name, major or interests
// contain query (case-insensitive).
func (s *Service) ListStudents(ctx context.Context, query string) []entity.Student {
	all := s.students.List(ctx)

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}

	return slices.DeleteFunc(all, func(st entity.Student) bool {
		return !matches(q, st.Name, st.Major) && !slices.ContainsFunc(st.Interests, func(interest string) bool {
			return matches(q, interest)
		})
	})
}

// GetStudent returns the student with id.
func (s *Service) GetStudent(ctx context.Context, id string) (entity.Student, error) {
	st, ok := s.students.Get(ctx, id)
	if !ok {
		return entity.Student{}, errs.NewError(errs.ErrStudentNotFound)
	}
	return st, nil
}

// FindStudentByEmail returns the student registered with email.
func (s *Service) FindStudentByEmail(ctx context.Context, email string) (entity.Student, error) {
	for _, st := range s.students.List(ctx) {
		if sameEmail(st.Email, email) {
			return st, nil
		}
	}
	return entity.Student{}, errs.NewError(errs.ErrAccountNotFound)
}

func emailTakenByStudent(items []entity.Student, email, exceptID string) bool {
	return slices.ContainsFunc(items, func(st entity.Student) bool {
		return st.ID != exceptID && sameEmail(st.Email, email)
	})
}

// CreateStudent validates st and prepends it, generating an id when st has none.
func (s *Service) CreateStudent(ctx context.Context, st entity.Student) (entity.Student, error) {
	st.Normalize()
	if fields := st.Validate(s.now()); fields != nil {
		return entity.Student{}, errs.Validation(fields)
	}

	id, err := s.assignID(st.ID, entity.PrefixStudent)
	if err != nil {
		return entity.Student{}, err
	}
	st.ID = id

	s.members.Lock()
	defer s.members.Unlock()

	if _, taken := s.alumni.Get(ctx, st.ID); taken {
		return entity.Student{}, errs.NewError(errs.ErrDuplicateID)
	}

	_, err = s.students.Mutate(ctx, func(items []entity.Student) ([]entity.Student, error) {
		if _, exists := store.Find(items, st.ID); exists {
			return nil, store.ErrDuplicateID
		}
		if emailTakenByStudent(items, st.Email, "") {
			return nil, errs.NewError(errs.ErrEmailTaken)
		}
		return store.Prepend(items, st), nil
	})
	if err != nil {
		return entity.Student{}, mapStoreErr(err, errs.ErrStudentNotFound)
	}

	s.log.Info().Str("student_id", st.ID).Msg("Student created")
	return st, nil
}

// UpdateStudent overwrites the student with id by st.
func (s *Service) UpdateStudent(ctx context.Context, id string, st entity.Student) (entity.Student, error) {
	st.ID = id
	st.Normalize()
	if fields := st.Validate(s.now()); fields != nil {
		return entity.Student{}, errs.Validation(fields)
	}

	_, err := s.students.Mutate(ctx, func(items []entity.Student) ([]entity.Student, error) {
		if emailTakenByStudent(items, st.Email, id) {
			return nil, errs.NewError(errs.ErrEmailTaken)
		}
		next, ok := store.ReplaceByID(items, st)
		if !ok {
			return nil, store.ErrNotFound
		}
		return next, nil
	})
	if err != nil {
		return entity.Student{}, mapStoreErr(err, errs.ErrStudentNotFound)
	}

	return st, nil
}

// DeleteStudent removes the student with id.
func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	if err := s.students.Delete(ctx, id); err != nil {
		return mapStoreErr(err, errs.ErrStudentNotFound)
	}
	s.log.Info().Str("student_id", id).Msg("Student deleted")
	return nil
}
