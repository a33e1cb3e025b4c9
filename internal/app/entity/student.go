package entity

import (
	"strings"
	"time"
)

// Student is a current student's directory profile.
type Student struct {
	ID                     string   `json:"id" yaml:"id"`
	Name                   string   `json:"name" yaml:"name" validate:"notblank"`
	Email                  string   `json:"email" yaml:"email" validate:"required,email"`
	Major                  string   `json:"major" yaml:"major" validate:"notblank"`
	ExpectedGraduationYear int      `json:"expectedGraduationYear" yaml:"expectedGraduationYear"`
	Interests              []string `json:"interests" yaml:"interests"`
	AvatarURL              string   `json:"avatarUrl" yaml:"avatarUrl" validate:"omitempty,url"`
}

func (s Student) EntityID() string { return s.ID }

// Normalize trims text fields, cleans the interests list and defaults the avatar.
func (s *Student) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Major = strings.TrimSpace(s.Major)
	s.AvatarURL = strings.TrimSpace(s.AvatarURL)
	s.Interests = cleanList(s.Interests)
	if s.AvatarURL == "" && s.Name != "" {
		s.AvatarURL = InitialsAvatar(s.Name)
	}
}

// Validate returns per-field messages, or nil when the record is valid.
func (s Student) Validate(now time.Time) map[string]string {
	return check(s, yearRange("expectedGraduationYear", s.ExpectedGraduationYear, now.Year(), now.Year()+YearWindow))
}
