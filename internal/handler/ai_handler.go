package handler

import (
	"net/http"

	"alumnilink/internal/app/entity"
	"alumnilink/internal/pkg/logx"
	"alumnilink/internal/pkg/req"
	"alumnilink/internal/pkg/resp"
)

type InvitationInput struct {
	EventDetails string `json:"eventDetails"`
}

type MentorsInput struct {
	SkillsAndInterests string `json:"skillsAndInterests"`
}

type EnrichInput struct {
	LinkedinURL string `json:"linkedinUrl"`
}

// MentorsResult lists the generated mentors and the ones new to the directory.
type MentorsResult struct {
	Mentors []entity.Alumni `json:"mentors"`
	Added   int             `json:"added"`
}

func HandleGenerateInvitation(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input InvitationInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		out, err := deps.AI.Invitation(r.Context(), input.EventDetails)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, out)
	}
}

// HandleFindMentors generates mentors and adds the new ones to the alumni
// directory.
func HandleFindMentors(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input MentorsInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		mentors, err := deps.AI.Mentors(r.Context(), input.SkillsAndInterests)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		added, err := deps.Directory.MergeMentors(r.Context(), mentors)
		if err != nil {
			logx.Error(err, "Failed to merge generated mentors into the directory")
		}

		resp.RespondSuccess(w, r, MentorsResult{Mentors: mentors, Added: len(added)})
	}
}

func HandleEnrichProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input EnrichInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		profile, err := deps.AI.Enrich(r.Context(), input.LinkedinURL)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, profile)
	}
}
