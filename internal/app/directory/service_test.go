package directory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alumnilink/internal/app/db"
	"alumnilink/internal/app/entity"
	"alumnilink/internal/app/store"
	"alumnilink/internal/pkg/errs"
)

var fixedNow = time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T) *Service {
	t.Helper()

	var mu sync.Mutex
	n := 0
	ids := func(prefix string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-gen%d", prefix, n), nil
	}

	return NewService(store.New(db.NewMemory()),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(ids),
	)
}

func alumniIDs(list []entity.Alumni) []string {
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.ID
	}
	return out
}

func TestListAlumniSeedsAndSearches(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, alumniIDs(s.ListAlumni(ctx, "")))
	assert.Equal(t, []string{"2"}, alumniIDs(s.ListAlumni(ctx, "spotify")))
	assert.Equal(t, []string{"1"}, alumniIDs(s.ListAlumni(ctx, "tensorflow")))
	assert.Equal(t, []string{"3"}, alumniIDs(s.ListAlumni(ctx, "  SOPHIA ")))
	assert.Empty(t, s.ListAlumni(ctx, "zzz"))
}

func TestCreateAlumni(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	created, err := s.CreateAlumni(ctx, entity.Alumni{
		Name:           "Jo Park",
		Email:          "jo@example.com",
		GraduationYear: 2019,
		CurrentRole:    "Engineer",
		Skills:         []string{"Go"},
	})
	require.NoError(t, err)
	assert.Equal(t, "alumni-gen1", created.ID)
	assert.NotEmpty(t, created.AvatarURL)
	assert.Equal(t, "alumni-gen1", s.ListAlumni(ctx, "")[0].ID)

	_, err = s.CreateAlumni(ctx, entity.Alumni{
		Name: "Other", Email: "JO@example.com", GraduationYear: 2019, CurrentRole: "x",
	})
	assert.True(t, errs.Is(err, errs.ErrEmailTaken))

	_, err = s.CreateAlumni(ctx, entity.Alumni{
		ID: "2", Name: "Dup", Email: "dup@example.com", GraduationYear: 2019, CurrentRole: "x",
	})
	assert.True(t, errs.Is(err, errs.ErrDuplicateID))
}

func TestMemberIDsAreUniqueAcrossTypes(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	_, err := s.CreateStudent(ctx, entity.Student{
		ID: "1", Name: "Kim", Email: "kim@university.edu", Major: "Physics", ExpectedGraduationYear: 2028,
	})
	assert.True(t, errs.Is(err, errs.ErrDuplicateID))

	_, err = s.CreateAlumni(ctx, entity.Alumni{
		ID: "student-1", Name: "Jo Park", Email: "jo@example.com", GraduationYear: 2019, CurrentRole: "Engineer",
	})
	assert.True(t, errs.Is(err, errs.ErrDuplicateID))

	assert.Len(t, s.ListStudents(ctx, ""), 2)
	assert.Len(t, s.ListAlumni(ctx, ""), 5)

	u, ok := s.LookupUser(ctx, "1")
	require.True(t, ok)
	assert.Equal(t, "alumni", u.Role)
}

func TestIDsMustNotContainSeparator(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	_, err := s.CreateAlumni(ctx, entity.Alumni{
		ID: "a--b", Name: "Jo Park", Email: "jo@example.com", GraduationYear: 2019, CurrentRole: "Engineer",
	})
	require.True(t, errs.Is(err, errs.ErrValidationFailed))
	assert.Contains(t, errs.From(err).Fields, "id")

	_, err = s.CreateStudent(ctx, entity.Student{
		ID: "--", Name: "Kim", Email: "kim@university.edu", Major: "Physics", ExpectedGraduationYear: 2028,
	})
	assert.True(t, errs.Is(err, errs.ErrValidationFailed))

	_, err = s.CreateEvent(ctx, entity.Event{
		ID: "fair--2026", Title: "Career Fair", Date: "2026-05-01", Location: "Gym", Description: "Meet employers",
	})
	assert.True(t, errs.Is(err, errs.ErrValidationFailed))

	created, err := s.CreateAlumni(ctx, entity.Alumni{
		ID: "a-b", Name: "Jo Park", Email: "jo@example.com", GraduationYear: 2019, CurrentRole: "Engineer",
	})
	require.NoError(t, err)
	assert.Equal(t, "a-b", created.ID)
}

func TestCreateAlumniValidation(t *testing.T) {
	s := newService(t)

	_, err := s.CreateAlumni(context.Background(), entity.Alumni{Email: "bad", GraduationYear: 1800})
	require.Error(t, err)

	customErr := errs.From(err)
	assert.Equal(t, errs.ErrValidationFailed, customErr.Code)
	assert.Contains(t, customErr.Fields, "name")
	assert.Contains(t, customErr.Fields, "email")
	assert.Contains(t, customErr.Fields, "graduationYear")
	assert.Contains(t, customErr.Fields, "currentRole")
}

func TestUpdateAlumniKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	original, err := s.GetAlumni(ctx, "3")
	require.NoError(t, err)

	original.CurrentRole = "Design Lead at Airbnb"
	updated, err := s.UpdateAlumni(ctx, "3", original)
	require.NoError(t, err)
	assert.Equal(t, "Design Lead at Airbnb", updated.CurrentRole)

	list := s.ListAlumni(ctx, "")
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, alumniIDs(list))
	assert.Equal(t, "Design Lead at Airbnb", list[2].CurrentRole)

	_, err = s.UpdateAlumni(ctx, "missing", original)
	assert.True(t, errs.Is(err, errs.ErrEmailTaken), "email belongs to alumni 3")

	original.Email = "someone-new@example.com"
	_, err = s.UpdateAlumni(ctx, "missing", original)
	assert.True(t, errs.Is(err, errs.ErrAlumniNotFound))
}

func TestDeleteAlumni(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	require.NoError(t, s.DeleteAlumni(ctx, "4"))
	assert.Equal(t, []string{"1", "2", "3", "5"}, alumniIDs(s.ListAlumni(ctx, "")))
	assert.True(t, errs.Is(s.DeleteAlumni(ctx, "4"), errs.ErrAlumniNotFound))
}

func TestSignUpAlumni(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	a, err := s.SignUpAlumni(ctx, SignUpInput{Name: " Jo Park ", Email: "jo@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Jo Park", a.Name)
	assert.Equal(t, 2026, a.GraduationYear)
	assert.Equal(t, "Newly Joined", a.CurrentRole)
	assert.Equal(t, a, s.ListAlumni(ctx, "")[0])

	_, err = s.SignUpAlumni(ctx, SignUpInput{Name: "Evelyn", Email: "Evelyn.Reed@example.com"})
	assert.True(t, errs.Is(err, errs.ErrEmailTaken))

	_, err = s.SignUpAlumni(ctx, SignUpInput{Name: "", Email: "x"})
	assert.True(t, errs.Is(err, errs.ErrValidationFailed))
}

func TestFindByEmail(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	st, err := s.FindStudentByEmail(ctx, "ALEX.J@university.edu")
	require.NoError(t, err)
	assert.Equal(t, "student-1", st.ID)

	_, err = s.FindAlumniByEmail(ctx, "nobody@example.com")
	assert.True(t, errs.Is(err, errs.ErrAccountNotFound))
}

func TestMergeMentors(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	added, err := s.MergeMentors(ctx, []entity.Alumni{
		{ID: "mentor-1", Name: "M1"},
		{ID: "1", Name: "Already here"},
	})
	require.NoError(t, err)
	require.Len(t, added, 1)

	list := s.ListAlumni(ctx, "")
	assert.Equal(t, "mentor-1", list[0].ID)
	assert.Len(t, list, 6)
	assert.Equal(t, "Dr. Evelyn Reed", list[1].Name)
}

func TestMergeMentorsSkipsStudentAndSeparatorIDs(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	added, err := s.MergeMentors(ctx, []entity.Alumni{
		{ID: "student-1", Name: "Impostor"},
		{ID: "1--student-1", Name: "Joined"},
		{ID: "mentor-2", Name: "M2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mentor-2"}, alumniIDs(added))
	assert.Len(t, s.ListAlumni(ctx, ""), 6)

	u, ok := s.LookupUser(ctx, "student-1")
	require.True(t, ok)
	assert.Equal(t, "student", u.Role)
	assert.Equal(t, "Alex Johnson", u.Name)
}

func TestStudentsCRUD(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	created, err := s.CreateStudent(ctx, entity.Student{
		Name: "Kim", Email: "kim@university.edu", Major: "Physics", ExpectedGraduationYear: 2028,
	})
	require.NoError(t, err)
	assert.Equal(t, "student-gen1", created.ID)

	assert.Len(t, s.ListStudents(ctx, "physics"), 1)

	created.Major = "Astrophysics"
	_, err = s.UpdateStudent(ctx, created.ID, created)
	require.NoError(t, err)
	got, err := s.GetStudent(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Astrophysics", got.Major)

	require.NoError(t, s.DeleteStudent(ctx, created.ID))
	_, err = s.GetStudent(ctx, created.ID)
	assert.True(t, errs.Is(err, errs.ErrStudentNotFound))
}

func TestRSVPCountsOncePerUser(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	e, err := s.RSVP(ctx, "2", "student-1")
	require.NoError(t, err)
	assert.Equal(t, 251, e.RSVPs)
	assert.True(t, s.HasRSVP(ctx, "2", "student-1"))

	_, err = s.RSVP(ctx, "2", "student-1")
	assert.True(t, errs.Is(err, errs.ErrAlreadyRSVPd))

	e, err = s.RSVP(ctx, "2", "1")
	require.NoError(t, err)
	assert.Equal(t, 252, e.RSVPs)

	_, err = s.RSVP(ctx, "nope", "1")
	assert.True(t, errs.Is(err, errs.ErrEventNotFound))
}

func TestDeleteEventDropsRSVPs(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	_, err := s.RSVP(ctx, "1", "student-2")
	require.NoError(t, err)
	require.NoError(t, s.DeleteEvent(ctx, "1"))
	assert.False(t, s.HasRSVP(ctx, "1", "student-2"))
	assert.Len(t, s.ListEvents(ctx, ""), 2)
}

func TestRSVPToDeletedEventLeavesNoEntry(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	require.NoError(t, s.DeleteEvent(ctx, "3"))
	_, err := s.RSVP(ctx, "3", "student-1")
	assert.True(t, errs.Is(err, errs.ErrEventNotFound))
	assert.False(t, s.HasRSVP(ctx, "3", "student-1"))
}

func TestRSVPRacingDeleteLeavesNoEntry(t *testing.T) {
	ctx := context.Background()

	for range 20 {
		s := newService(t)
		s.Seed(ctx)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.RSVP(ctx, "2", "student-1")
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, s.DeleteEvent(ctx, "2"))
		}()
		wg.Wait()

		assert.False(t, s.HasRSVP(ctx, "2", "student-1"))
	}
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	e, err := s.CreateEvent(ctx, entity.Event{
		Title: "Career Fair", Date: "2026-05-01", Location: "Gym", Description: "Meet employers",
	})
	require.NoError(t, err)
	assert.Equal(t, e.ID, s.ListEvents(ctx, "")[0].ID)
	assert.Len(t, s.ListEvents(ctx, "career"), 1)

	_, err = s.CreateEvent(ctx, entity.Event{Title: "x"})
	assert.True(t, errs.Is(err, errs.ErrValidationFailed))
}

func TestOverview(t *testing.T) {
	s := newService(t)

	o := s.Overview(context.Background())
	assert.Equal(t, 5, o.TotalAlumni)
	assert.Equal(t, 2, o.TotalStudents)
	assert.Equal(t, 3, o.TotalEvents)
	assert.Equal(t, 3, o.UpcomingEvents)
	assert.Equal(t, 128+250+75, o.TotalRSVPs)
	assert.Equal(t, []YearCount{
		{"2010", 1}, {"2012", 1}, {"2015", 1}, {"2018", 1}, {"2020", 1},
	}, o.AlumniByYear)
}

func TestLookupUser(t *testing.T) {
	ctx := context.Background()
	s := newService(t)

	u, ok := s.LookupUser(ctx, "5")
	require.True(t, ok)
	assert.Equal(t, "alumni", u.Role)
	assert.Equal(t, "Software Engineer at Microsoft", u.Subtitle)

	u, ok = s.LookupUser(ctx, "student-2")
	require.True(t, ok)
	assert.Equal(t, "student", u.Role)
	assert.Equal(t, "Business Administration", u.Subtitle)

	_, ok = s.LookupUser(ctx, "ghost")
	assert.False(t, ok)
}
