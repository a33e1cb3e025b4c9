package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"alumnilink/internal/app/entity"
	"alumnilink/internal/pkg/auth/jwt"
	"alumnilink/internal/pkg/errs"
	"alumnilink/internal/pkg/req"
	"alumnilink/internal/pkg/resp"
)

// avatarReplaced drops the stored object of profileID's replaced avatar.
func avatarReplaced(deps *AppDeps, profileID, oldURL, newURL string) {
	if deps.Avatars != nil {
		deps.Avatars.Replaced(profileID, oldURL, newURL)
	}
}

// allowAvatar writes ErrForbidden when a changed avatarUrl points at an object
// stored for another profile.
func allowAvatar(w http.ResponseWriter, r *http.Request, deps *AppDeps, profileID, oldURL, newURL string) bool {
	if deps.Avatars == nil || oldURL == newURL {
		return true
	}
	if err := deps.Avatars.CheckOwner(profileID, newURL); err != nil {
		resp.RespondErr(w, r, err)
		return false
	}
	return true
}

// requireSelfOrAdmin writes ErrForbidden unless the session is the member with
// role and id, or an admin.
func requireSelfOrAdmin(w http.ResponseWriter, r *http.Request, role, id string) bool {
	if !jwt.GetPayloadFromContext(r).IsSelfOrAdmin(role, id) {
		resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
		return false
	}
	return true
}

func HandleListAlumni(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Directory.ListAlumni(r.Context(), r.URL.Query().Get("q")))
	}
}

func HandleGetAlumni(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := deps.Directory.GetAlumni(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, a)
	}
}

func HandleCreateAlumni(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input entity.Alumni
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		a, err := deps.Directory.CreateAlumni(r.Context(), input)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondCreated(w, r, a)
	}
}

// HandleUpdateAlumni replaces an alumni profile. Alumni may edit their own.
func HandleUpdateAlumni(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !requireSelfOrAdmin(w, r, jwt.RoleAlumni, id) {
			return
		}

		var input entity.Alumni
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		previous, err := deps.Directory.GetAlumni(r.Context(), id)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		if !allowAvatar(w, r, deps, id, previous.AvatarURL, input.AvatarURL) {
			return
		}

		updated, err := deps.Directory.UpdateAlumni(r.Context(), id, input)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		avatarReplaced(deps, id, previous.AvatarURL, updated.AvatarURL)
		resp.RespondSuccess(w, r, updated)
	}
}

func HandleDeleteAlumni(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Directory.DeleteAlumni(r.Context(), chi.URLParam(r, "id")); err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, nil)
	}
}

func HandleListStudents(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Directory.ListStudents(r.Context(), r.URL.Query().Get("q")))
	}
}

func HandleGetStudent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := deps.Directory.GetStudent(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, st)
	}
}

func HandleCreateStudent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input entity.Student
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		st, err := deps.Directory.CreateStudent(r.Context(), input)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondCreated(w, r, st)
	}
}

// HandleUpdateStudent replaces a student profile. Students may edit their own.
func HandleUpdateStudent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !requireSelfOrAdmin(w, r, jwt.RoleStudent, id) {
			return
		}

		var input entity.Student
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		previous, err := deps.Directory.GetStudent(r.Context(), id)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		if !allowAvatar(w, r, deps, id, previous.AvatarURL, input.AvatarURL) {
			return
		}

		updated, err := deps.Directory.UpdateStudent(r.Context(), id, input)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		avatarReplaced(deps, id, previous.AvatarURL, updated.AvatarURL)
		resp.RespondSuccess(w, r, updated)
	}
}

func HandleDeleteStudent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Directory.DeleteStudent(r.Context(), chi.URLParam(r, "id")); err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, nil)
	}
}

// eventView adds the caller's RSVP state to an event.
type eventView struct {
	entity.Event
	Attending bool `json:"attending"`
}

func HandleListEvents(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		events := deps.Directory.ListEvents(r.Context(), r.URL.Query().Get("q"))

		views := make([]eventView, len(events))
		for i, e := range events {
			views[i] = eventView{Event: e, Attending: deps.Directory.HasRSVP(r.Context(), e.ID, identity.ID)}
		}
		resp.RespondSuccess(w, r, views)
	}
}

func HandleGetEvent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := deps.Directory.GetEvent(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		identity := jwt.GetPayloadFromContext(r)
		resp.RespondSuccess(w, r, eventView{Event: e, Attending: deps.Directory.HasRSVP(r.Context(), e.ID, identity.ID)})
	}
}

func HandleCreateEvent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input entity.Event
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		e, err := deps.Directory.CreateEvent(r.Context(), input)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondCreated(w, r, e)
	}
}

func HandleUpdateEvent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input entity.Event
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		e, err := deps.Directory.UpdateEvent(r.Context(), chi.URLParam(r, "id"), input)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, e)
	}
}

func HandleDeleteEvent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Directory.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, nil)
	}
}

// HandleRSVP records the caller as attending an event.
func HandleRSVP(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		e, err := deps.Directory.RSVP(r.Context(), chi.URLParam(r, "id"), identity.ID)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, eventView{Event: e, Attending: true})
	}
}

// HandleOverview returns the admin dashboard totals.
func HandleOverview(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Directory.Overview(r.Context()))
	}
}
