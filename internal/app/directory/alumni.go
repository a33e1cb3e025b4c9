package directory

import (
	"context"
	"slices"
	"strings"

	"alumnilink/internal/app/entity"
	"alumnilink/internal/app/store"
	"alumnilink/internal/pkg/errs"
	"alumnilink/internal/pkg/validate"
)

// ListAlumni returns every alumni, or those whose name, role or skills contain
// query (case-insensitive).
func (s *Service) ListAlumni(ctx context.Context, query string) []entity.Alumni {
	all := s.alumni.List(ctx)

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}

	return slices.DeleteFunc(all, func(a entity.Alumni) bool {
		return !matches(q, a.Name, a.CurrentRole) && !slices.ContainsFunc(a.Skills, func(skill string) bool {
			return matches(q, skill)
		})
	})
}

// GetAlumni returns the alumni with id.
func (s *Service) GetAlumni(ctx context.Context, id string) (entity.Alumni, error) {
	a, ok := s.alumni.Get(ctx, id)
	if !ok {
		return entity.Alumni{}, errs.NewError(errs.ErrAlumniNotFound)
	}
	return a, nil
}

// FindAlumniByEmail returns the alumni registered with email.
func (s *Service) FindAlumniByEmail(ctx context.Context, email string) (entity.Alumni, error) {
	for _, a := range s.alumni.List(ctx) {
		if sameEmail(a.Email, email) {
			return a, nil
		}
	}
	return entity.Alumni{}, errs.NewError(errs.ErrAccountNotFound)
}

func emailTakenByAlumni(items []entity.Alumni, email, exceptID string) bool {
	return slices.ContainsFunc(items, func(a entity.Alumni) bool {
		return a.ID != exceptID && sameEmail(a.Email, email)
	})
}

// CreateAlumni validates a and prepends it, generating an id when a has none.
func (s *Service) CreateAlumni(ctx context.Context, a entity.Alumni) (entity.Alumni, error) {
	a.Normalize()
	if fields := a.Validate(s.now()); fields != nil {
		return entity.Alumni{}, errs.Validation(fields)
	}

	id, err := s.assignID(a.ID, entity.PrefixAlumni)
	if err != nil {
		return entity.Alumni{}, err
	}
	a.ID = id

	s.members.Lock()
	defer s.members.Unlock()

	if _, taken := s.students.Get(ctx, a.ID); taken {
		return entity.Alumni{}, errs.NewError(errs.ErrDuplicateID)
	}

	_, err = s.alumni.Mutate(ctx, func(items []entity.Alumni) ([]entity.Alumni, error) {
		if _, exists := store.Find(items, a.ID); exists {
			return nil, store.ErrDuplicateID
		}
		if emailTakenByAlumni(items, a.Email, "") {
			return nil, errs.NewError(errs.ErrEmailTaken)
		}
		return store.Prepend(items, a), nil
	})
	if err != nil {
		return entity.Alumni{}, mapStoreErr(err, errs.ErrAlumniNotFound)
	}

	s.log.Info().Str("alumni_id", a.ID).Msg("Alumni created")
	return a, nil
}

// UpdateAlumni overwrites the alumni with id by a.
func (s *Service) UpdateAlumni(ctx context.Context, id string, a entity.Alumni) (entity.Alumni, error) {
	a.ID = id
	a.Normalize()
	if fields := a.Validate(s.now()); fields != nil {
		return entity.Alumni{}, errs.Validation(fields)
	}

	_, err := s.alumni.Mutate(ctx, func(items []entity.Alumni) ([]entity.Alumni, error) {
		if emailTakenByAlumni(items, a.Email, id) {
			return nil, errs.NewError(errs.ErrEmailTaken)
		}
		next, ok := store.ReplaceByID(items, a)
		if !ok {
			return nil, store.ErrNotFound
		}
		return next, nil
	})
	if err != nil {
		return entity.Alumni{}, mapStoreErr(err, errs.ErrAlumniNotFound)
	}

	return a, nil
}

// DeleteAlumni removes the alumni with id.
func (s *Service) DeleteAlumni(ctx context.Context, id string) error {
	if err := s.alumni.Delete(ctx, id); err != nil {
		return mapStoreErr(err, errs.ErrAlumniNotFound)
	}
	s.log.Info().Str("alumni_id", id).Msg("Alumni deleted")
	return nil
}

// SignUpInput is the self sign-up form.
type SignUpInput struct {
	Name  string `json:"name" validate:"notblank"`
	Email string `json:"email" validate:"required,email"`
}

// SignUpAlumni creates a new alumni account with default profile values. An email
// that already has an alumni account is rejected.
func (s *Service) SignUpAlumni(ctx context.Context, in SignUpInput) (entity.Alumni, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if fields := validate.Struct(in); fields != nil {
		return entity.Alumni{}, errs.Validation(fields)
	}

	id, err := s.newID(entity.PrefixAlumni)
	if err != nil {
		return entity.Alumni{}, errs.NewError(errs.ErrUnknown, err)
	}

	account := entity.NewAlumniAccount(id, in.Name, in.Email, s.now())

	s.members.Lock()
	defer s.members.Unlock()

	if _, taken := s.students.Get(ctx, account.ID); taken {
		return entity.Alumni{}, errs.NewError(errs.ErrDuplicateID)
	}

	_, err = s.alumni.Mutate(ctx, func(items []entity.Alumni) ([]entity.Alumni, error) {
		if emailTakenByAlumni(items, account.Email, "") {
			return nil, errs.NewError(errs.ErrEmailTaken)
		}
		return store.Prepend(items, account), nil
	})
	if err != nil {
		return entity.Alumni{}, mapStoreErr(err, errs.ErrAlumniNotFound)
	}

	s.log.Info().Str("alumni_id", account.ID).Msg("Alumni signed up")
	return account, nil
}

// MergeMentors prepends generated mentor profiles whose ids are not in the
// directory yet and returns those that were added. Mentors whose id belongs to a
// student, or contains IDSeparator, are skipped.
func (s *Service) MergeMentors(ctx context.Context, mentors []entity.Alumni) ([]entity.Alumni, error) {
	s.members.Lock()
	defer s.members.Unlock()

	students := s.students.List(ctx)
	mentors = slices.DeleteFunc(slices.Clone(mentors), func(m entity.Alumni) bool {
		if strings.Contains(m.ID, IDSeparator) {
			return true
		}
		_, taken := store.Find(students, m.ID)
		return taken
	})

	added, err := s.alumni.Merge(ctx, mentors)
	if err != nil {
		return nil, errs.From(err)
	}
	if len(added) > 0 {
		s.log.Info().Int("count", len(added)).Msg("Generated mentors added to directory")
	}
	return added, nil
}
