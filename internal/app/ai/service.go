package ai

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"alumnilink/internal/app/entity"
	"alumnilink/internal/pkg/errs"
	"alumnilink/internal/pkg/logx"
	"alumnilink/internal/pkg/randx"
	"alumnilink/internal/pkg/validate"
)

// Task names used in logs and metrics.
const (
	TaskInvitation = "invitation"
	TaskMentors    = "mentors"
	TaskEnrich     = "enrich"
)

const (
	// MinDetailsLength is the minimum length of free-text task input.
	MinDetailsLength = 10

	// MentorCount is the number of mentors requested per match.
	MentorCount = 5

	mentorAvatarBase = "https://api.dicebear.com/7.x/initials/svg?seed="

	// idSeparator joins conversation participants and is not allowed in ids.
	idSeparator = "--"
)

// Outcomes recorded per call.
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeInvalid = "invalid"
)

// Observer records the outcome of generator calls.
type Observer interface {
	ObserveAI(task, outcome string, took time.Duration)
}

// Invitation is the output of the invitation task.
type Invitation struct {
	EmailInvitation string `json:"emailInvitation"`
}

// Profile is the output of the enrichment task.
type Profile struct {
	Name      string   `json:"name"`
	Education string   `json:"education"`
	Skills    []string `json:"skills"`
	Bio       string   `json:"bio"`
}

var errBadShape = errors.New("ai: response does not match the expected shape")

// Service runs the assistant tasks against a Generator.
type Service struct {
	gen      Generator
	observer Observer
	now      func() time.Time
	log      zerolog.Logger
}

// NewService returns a Service. A nil gen makes every task report the service
// as unavailable. observer may be nil.
func NewService(gen Generator, observer Observer) *Service {
	return &Service{
		gen:      gen,
		observer: observer,
		now:      time.Now,
		log:      logx.Component("ai"),
	}
}

// Available reports whether a generator is configured.
func (s *Service) Available() bool {
	return s.gen != nil
}

func checkInput(field, value, tag, message string) error {
	if validate.Var(value, tag, field) != "" {
		return errs.Validation(map[string]string{field: message})
	}
	return nil
}

// Invitation drafts an email invitation from a short note about an event.
func (s *Service) Invitation(ctx context.Context, eventDetails string) (Invitation, error) {
	eventDetails = strings.TrimSpace(eventDetails)
	if err := checkInput("eventDetails", eventDetails, "min=10", "Please provide some event details."); err != nil {
		return Invitation{}, err
	}

	var out Invitation
	err := s.run(ctx, Request{
		Task:   TaskInvitation,
		System: invitationSystem,
		Prompt: render(invitationPrompt, eventDetails),
	}, &out, func() bool {
		out.EmailInvitation = strings.TrimSpace(out.EmailInvitation)
		return out.EmailInvitation != ""
	})
	return out, err
}

// mentorWire is the generated mentor as the model returns it. Numbers are
// decoded as floats so "2015.0" is accepted.
type mentorWire struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	GraduationYear float64  `json:"graduationYear"`
	CurrentRole    string   `json:"currentRole"`
	Skills         []string `json:"skills"`
	LinkedinURL    string   `json:"linkedinURL"`
	ShortBio       string   `json:"shortBio"`
	AvatarURL      string   `json:"avatarUrl"`
	MatchScore     *float64 `json:"matchScore"`
}

// Mentors generates mentor profiles for a student's skills and interests,
// ordered by match score, highest first.
func (s *Service) Mentors(ctx context.Context, skillsAndInterests string) ([]entity.Alumni, error) {
	skillsAndInterests = strings.TrimSpace(skillsAndInterests)
	if err := checkInput("skillsAndInterests", skillsAndInterests, "min=10", "Please describe your skills and interests."); err != nil {
		return nil, err
	}

	var out struct {
		MentorMatches []mentorWire `json:"mentorMatches"`
	}
	err := s.run(ctx, Request{
		Task: TaskMentors,
		System: render(mentorSystemTmpl, struct {
			Count      int
			AvatarBase string
		}{MentorCount, mentorAvatarBase}),
		Prompt: render(mentorPrompt, skillsAndInterests),
	}, &out, func() bool {
		if out.MentorMatches == nil {
			return false
		}
		for _, m := range out.MentorMatches {
			if strings.TrimSpace(m.Name) == "" {
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	return s.shapeMentors(out.MentorMatches), nil
}

func (s *Service) shapeMentors(wire []mentorWire) []entity.Alumni {
	now := s.now()

	mentors := make([]entity.Alumni, 0, len(wire))
	for i, m := range wire {
		a := entity.Alumni{
			ID:             strings.TrimSpace(m.ID),
			Name:           m.Name,
			Email:          m.Email,
			GraduationYear: int(math.Round(m.GraduationYear)),
			CurrentRole:    m.CurrentRole,
			Skills:         m.Skills,
			LinkedinURL:    m.LinkedinURL,
			ShortBio:       m.ShortBio,
			AvatarURL:      m.AvatarURL,
		}
		if a.ID == "" || strings.Contains(a.ID, idSeparator) {
			a.ID = randx.MentorID(now, i)
		}
		if m.MatchScore != nil {
			score := math.Max(0, math.Min(100, *m.MatchScore))
			a.MatchScore = &score
		}
		a.Normalize()
		mentors = append(mentors, a)
	}

	slices.SortStableFunc(mentors, func(a, b entity.Alumni) int {
		switch {
		case a.Score() > b.Score():
			return -1
		case a.Score() < b.Score():
			return 1
		}
		return 0
	})

	return mentors
}

// Enrich extracts profile fields for the LinkedIn profile at linkedinURL.
func (s *Service) Enrich(ctx context.Context, linkedinURL string) (Profile, error) {
	linkedinURL = strings.TrimSpace(linkedinURL)
	if err := checkInput("linkedinUrl", linkedinURL, "required,http_url", "Please enter a valid LinkedIn URL."); err != nil {
		return Profile{}, err
	}

	var out Profile
	err := s.run(ctx, Request{
		Task:   TaskEnrich,
		System: enrichSystem,
		Prompt: render(enrichPrompt, linkedinURL),
	}, &out, func() bool {
		out.Name = strings.TrimSpace(out.Name)
		if out.Skills == nil {
			out.Skills = []string{}
		}
		return out.Name != ""
	})
	return out, err
}

// run makes one generator call and decodes its output into out. valid checks
// and tidies the decoded value.
func (s *Service) run(ctx context.Context, req Request, out any, valid func() bool) error {
	if s.gen == nil {
		return errs.NewError(errs.ErrAIServiceUnavailable)
	}

	start := time.Now()
	outcome := OutcomeOK

	raw, err := s.gen.Generate(ctx, req)
	switch {
	case err != nil:
		outcome = OutcomeFailed
	case json.Unmarshal([]byte(stripFences(raw)), out) != nil, !valid():
		outcome = OutcomeInvalid
		err = errBadShape
	}

	took := time.Since(start)
	if s.observer != nil {
		s.observer.ObserveAI(req.Task, outcome, took)
	}

	if err != nil {
		s.log.Error().Err(err).
			Str("task", req.Task).
			Str("generator", s.gen.Name()).
			Str("outcome", outcome).
			Dur("took", took).
			Msg("AI task failed")
		return errs.NewError(errs.ErrAIServiceFailed)
	}

	s.log.Info().Str("task", req.Task).Dur("took", took).Msg("AI task completed")
	return nil
}

// stripFences removes a Markdown code fence around a JSON reply.
func stripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}

	if i := strings.IndexByte(raw, '\n'); i >= 0 {
		raw = raw[i+1:]
	} else {
		raw = strings.TrimPrefix(raw, "```")
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "```"))
}
