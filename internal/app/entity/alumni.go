package entity

import (
	"net/url"
	"strings"
	"time"
)

// Alumni is a graduate's directory profile.
type Alumni struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name" validate:"notblank"`
	Email          string   `json:"email" yaml:"email" validate:"required,email"`
	GraduationYear int      `json:"graduationYear" yaml:"graduationYear"`
	CurrentRole    string   `json:"currentRole" yaml:"currentRole" validate:"notblank"`
	Skills         []string `json:"skills" yaml:"skills"`
	LinkedinURL    string   `json:"linkedinURL" yaml:"linkedinURL" validate:"omitempty,url"`
	ShortBio       string   `json:"shortBio" yaml:"shortBio"`
	AvatarURL      string   `json:"avatarUrl" yaml:"avatarUrl" validate:"omitempty,url"`

	// MatchScore is only set on generated mentor profiles (0-100).
	MatchScore *float64 `json:"matchScore,omitempty" yaml:"matchScore,omitempty"`
}

func (a Alumni) EntityID() string { return a.ID }

// Normalize trims text fields, cleans the skills list and defaults the avatar.
func (a *Alumni) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.TrimSpace(a.Email)
	a.CurrentRole = strings.TrimSpace(a.CurrentRole)
	a.LinkedinURL = strings.TrimSpace(a.LinkedinURL)
	a.ShortBio = strings.TrimSpace(a.ShortBio)
	a.AvatarURL = strings.TrimSpace(a.AvatarURL)
	a.Skills = cleanList(a.Skills)
	if a.AvatarURL == "" && a.Name != "" {
		a.AvatarURL = InitialsAvatar(a.Name)
	}
}

// Validate returns per-field messages, or nil when the record is valid.
func (a Alumni) Validate(now time.Time) map[string]string {
	return check(a, yearRange("graduationYear", a.GraduationYear, MinGraduationYear, now.Year()+YearWindow))
}

// Score returns the match score, treating a missing score as 0.
func (a Alumni) Score() float64 {
	if a.MatchScore == nil {
		return 0
	}
	return *a.MatchScore
}

// NewAlumniAccount builds the profile created by self sign-up.
func NewAlumniAccount(id, name, email string, now time.Time) Alumni {
	name = strings.TrimSpace(name)
	return Alumni{
		ID:             id,
		Name:           name,
		Email:          strings.TrimSpace(email),
		GraduationYear: now.Year(),
		CurrentRole:    "Newly Joined",
		Skills:         []string{},
		LinkedinURL:    "",
		ShortBio:       "Please update your bio.",
		AvatarURL:      InitialsAvatar(name),
	}
}

// InitialsAvatar returns a DiceBear initials avatar URL seeded with name.
func InitialsAvatar(name string) string {
	return "https://api.dicebear.com/7.x/initials/svg?seed=" + url.QueryEscape(name)
}
