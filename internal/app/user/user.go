/*
Package user contains the public identity of a directory member.

User is the short form of an alumni or student profile used wherever another
member is shown next to a conversation or in realtime frames.
*/
package user

import (
	"strconv"

	"alumnilink/internal/app/entity"
	"alumnilink/internal/pkg/auth/jwt"
)

// User is the summary of a participant.
type User struct {
	ID string `json:"id"`

	Name string `json:"name"`

	// AvatarURL is the profile image, or empty.
	AvatarURL string `json:"avatarUrl,omitempty"`

	// Role is "alumni" or "student".
	Role string `json:"role"`

	// Subtitle is the current role of alumni and the major of students.
	Subtitle string `json:"subtitle,omitempty"`
}

// FromAlumni summarizes an alumni profile.
func FromAlumni(a entity.Alumni) User {
	subtitle := a.CurrentRole
	if subtitle == "" && a.GraduationYear > 0 {
		subtitle = "Class of " + strconv.Itoa(a.GraduationYear)
	}
	return User{
		ID:        a.ID,
		Name:      a.Name,
		AvatarURL: a.AvatarURL,
		Role:      jwt.RoleAlumni,
		Subtitle:  subtitle,
	}
}

// FromStudent summarizes a student profile.
func FromStudent(s entity.Student) User {
	return User{
		ID:        s.ID,
		Name:      s.Name,
		AvatarURL: s.AvatarURL,
		Role:      jwt.RoleStudent,
		Subtitle:  s.Major,
	}
}

// Unknown is shown for a partner whose profile has been deleted.
func Unknown(id string) User {
	return User{ID: id, Name: "Unknown user"}
}

// Admin is the principal of an administrator session.
func Admin(email string) User {
	return User{ID: email, Name: "Administrator", Role: jwt.RoleAdmin}
}
