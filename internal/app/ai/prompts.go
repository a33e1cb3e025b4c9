package ai

import (
	"strings"
	"text/template"
)

const invitationSystem = `You are an expert email copywriter. Given the following event details, generate a polished and professional email invitation to send to alumni.
Respond with a JSON object of the form {"emailInvitation": string}.`

const mentorSystem = `You are an expert at finding mentors for students.
You will be given the student's skills and interests.
Your task is to generate a list of {{.Count}} suitable mentors based on these interests.

For each mentor, you MUST generate a realistic but FAKE name, email, role, bio, and set of skills.
You MUST also calculate a "matchScore" from 0-100 for each mentor, representing how well their generated profile aligns with the student's needs.
For the avatarUrl, you must use the DiceBear API: "{{.AvatarBase}}<NAME>" where <NAME> is the mentor's name.

Respond with a JSON object of the form {"mentorMatches": [{"id": string, "name": string, "email": string, "graduationYear": number, "currentRole": string, "skills": [string], "linkedinURL": string, "shortBio": string, "avatarUrl": string, "matchScore": number}]}.`

const enrichSystem = `Extract relevant information from the provided LinkedIn profile URL and pre-populate the alumni's profile fields.
Respond with a JSON object of the form {"name": string, "education": string, "skills": [string], "bio": string}.`

var (
	invitationPrompt = template.Must(template.New("invitation").Parse("Event Details: {{.}}\n\nEmail Invitation:"))
	mentorPrompt     = template.Must(template.New("mentors").Parse("The student's skills and interests are:\n\"{{.}}\"\n\nGenerate the mentors now."))
	enrichPrompt     = template.Must(template.New("enrich").Parse("LinkedIn URL: {{.}}"))
	mentorSystemTmpl = template.Must(template.New("mentor-system").Parse(mentorSystem))
)

// render executes one of the package templates.
func render(t *template.Template, data any) string {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		panic(err)
	}
	return b.String()
}
