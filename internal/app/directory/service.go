/*
Package directory implements the alumni, student and event directory on top of the
entity store: validated CRUD, search, account lookup by email, alumni sign-up,
mentor merging, RSVPs and the admin overview.

Every method returns *errs.CustomError values ready for the HTTP layer.
*/
package directory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"alumnilink/internal/app/entity"
	"alumnilink/internal/app/fixtures"
	"alumnilink/internal/app/store"
	"alumnilink/internal/app/user"
	"alumnilink/internal/pkg/errs"
	"alumnilink/internal/pkg/logx"
	"alumnilink/internal/pkg/randx"
)

// Service owns the directory collections.
type Service struct {
	store    *store.Store
	alumni   *store.Collection[entity.Alumni]
	students *store.Collection[entity.Student]
	events   *store.Collection[entity.Event]

	// members serializes alumni and student creation so an id is used by one
	// member type only.
	members sync.Mutex

	now   func() time.Time
	newID func(prefix string) (string, error)
	log   zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces randx.EntityID.
func WithIDGenerator(fn func(prefix string) (string, error)) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService binds the directory collections to st, seeded from fixtures.
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store: st,
		now:   time.Now,
		newID: randx.EntityID,
		log:   logx.Component("directory"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.alumni = store.NewCollection(st, store.KeyAlumni, func() []entity.Alumni {
		return fixtures.MustLoad(s.now()).Alumni
	})
	s.students = store.NewCollection(st, store.KeyStudents, func() []entity.Student {
		return fixtures.MustLoad(s.now()).Students
	})
	s.events = store.NewCollection(st, store.KeyEvents, func() []entity.Event {
		return fixtures.MustLoad(s.now()).Events
	})

	return s
}

// Seed loads every directory collection once so empty keys receive their fixtures.
func (s *Service) Seed(ctx context.Context) {
	s.alumni.List(ctx)
	s.students.List(ctx)
	s.events.List(ctx)
}

// Now returns the service clock's current time.
func (s *Service) Now() time.Time {
	return s.now()
}

// mapStoreErr turns collection errors into client errors.
func mapStoreErr(err error, notFound int) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return errs.NewError(notFound)
	case errors.Is(err, store.ErrDuplicateID):
		return errs.NewError(errs.ErrDuplicateID)
	default:
		return errs.From(err)
	}
}

// IDSeparator may not appear in ids; it joins the participants of a conversation key.
const IDSeparator = "--"

func (s *Service) assignID(current, prefix string) (string, error) {
	if current != "" {
		if strings.Contains(current, IDSeparator) {
			return "", errs.Validation(map[string]string{"id": `id must not contain "` + IDSeparator + `"`})
		}
		return current, nil
	}
	id, err := s.newID(prefix)
	if err != nil {
		return "", errs.NewError(errs.ErrUnknown, err)
	}
	return id, nil
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func matches(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// LookupUser returns the summary of the alumni or student with id.
func (s *Service) LookupUser(ctx context.Context, id string) (user.User, bool) {
	if a, ok := s.alumni.Get(ctx, id); ok {
		return user.FromAlumni(a), true
	}
	if st, ok := s.students.Get(ctx, id); ok {
		return user.FromStudent(st), true
	}
	return user.User{}, false
}
