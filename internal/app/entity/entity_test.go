package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

func validAlumni() Alumni {
	return Alumni{
		ID:             "1",
		Name:           "Marcus Chen",
		Email:          "marcus.chen@example.com",
		GraduationYear: 2012,
		CurrentRole:    "Product Manager",
		Skills:         []string{"Product"},
	}
}

func TestAlumniValidate(t *testing.T) {
	require.Nil(t, validAlumni().Validate(now))

	tests := []struct {
		name   string
		mutate func(*Alumni)
		field  string
	}{
		{"blank name", func(a *Alumni) { a.Name = "  " }, "name"},
		{"bad email", func(a *Alumni) { a.Email = "not-an-email" }, "email"},
		{"year too early", func(a *Alumni) { a.GraduationYear = 1899 }, "graduationYear"},
		{"year too late", func(a *Alumni) { a.GraduationYear = 2037 }, "graduationYear"},
		{"missing role", func(a *Alumni) { a.CurrentRole = "" }, "currentRole"},
		{"bad linkedin", func(a *Alumni) { a.LinkedinURL = "linkedin" }, "linkedinURL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAlumni()
			tt.mutate(&a)
			fields := a.Validate(now)
			require.Len(t, fields, 1)
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestAlumniYearBoundaries(t *testing.T) {
	a := validAlumni()
	a.GraduationYear = 1900
	assert.Nil(t, a.Validate(now))

	a.GraduationYear = 2036
	assert.Nil(t, a.Validate(now))
}

func TestStudentValidate(t *testing.T) {
	s := Student{Name: "Alex Johnson", Email: "alex@example.com", Major: "Computer Science", ExpectedGraduationYear: 2026}
	assert.Nil(t, s.Validate(now))

	s.ExpectedGraduationYear = 2025
	assert.Contains(t, s.Validate(now), "expectedGraduationYear")

	s.ExpectedGraduationYear = 2030
	s.Major = ""
	assert.Equal(t, map[string]string{"major": "major is required"}, s.Validate(now))
}

func TestEventValidate(t *testing.T) {
	e := Event{Title: "Tech Talk", Date: "2026-04-28", Location: "Zoom", Description: "AI in business"}
	assert.Nil(t, e.Validate(now))

	e.Date = "2026-04-28T18:00:00Z"
	assert.Nil(t, e.Validate(now))

	e.Date = "next tuesday"
	assert.Contains(t, e.Validate(now), "date")

	e = Event{}
	fields := e.Validate(now)
	for _, f := range []string{"title", "date", "location", "description"} {
		assert.Contains(t, fields, f)
	}
}

func TestNormalize(t *testing.T) {
	a := Alumni{Name: " Aisha Khan ", Skills: []string{" Go ", "", "SQL"}}
	a.Normalize()

	assert.Equal(t, "Aisha Khan", a.Name)
	assert.Equal(t, []string{"Go", "SQL"}, a.Skills)
	assert.Equal(t, "https://api.dicebear.com/7.x/initials/svg?seed=Aisha+Khan", a.AvatarURL)

	s := Student{}
	s.Normalize()
	assert.NotNil(t, s.Interests)
	assert.Empty(t, s.AvatarURL)
}

func TestNewAlumniAccount(t *testing.T) {
	a := NewAlumniAccount("alumni-x", "Jo Park", "jo@example.com", now)

	assert.Equal(t, 2026, a.GraduationYear)
	assert.Equal(t, "Newly Joined", a.CurrentRole)
	assert.Equal(t, "Please update your bio.", a.ShortBio)
	assert.Empty(t, a.Skills)
	assert.NotNil(t, a.Skills)
	assert.Nil(t, a.Validate(now))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"AI", "Web Development"}, SplitList("AI, Web Development, "))
	assert.Equal(t, []string{}, SplitList(""))
}
