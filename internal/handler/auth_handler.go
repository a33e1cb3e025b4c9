package handler

import (
	"net/http"
	"strings"
	"time"

	"alumnilink/internal/app/directory"
	"alumnilink/internal/app/user"
	"alumnilink/internal/pkg/auth/jwt"
	"alumnilink/internal/pkg/errs"
	"alumnilink/internal/pkg/logx"
	"alumnilink/internal/pkg/req"
	"alumnilink/internal/pkg/resp"
	"alumnilink/internal/pkg/validate"
)

// LoginInput is the body of every login request.
type LoginInput struct {
	Email string `json:"email" validate:"required,email"`
}

// Session is returned after a successful login or sign-up.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      user.User `json:"user"`
	Profile   any       `json:"profile,omitempty"`
}

// issueSession signs a token for u and writes the session with status.
func issueSession(w http.ResponseWriter, r *http.Request, deps *AppDeps, status int, u user.User, profile any) {
	token, err := jwt.GenerateToken(&jwt.Payload{ID: u.ID, Role: u.Role}, deps.Config.JWTSecret, jwt.SessionExpiration)
	if err != nil {
		logx.Error(err, "Session token generation failed", "user_id", u.ID)
		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
		return
	}

	session := Session{
		Token:     token,
		ExpiresAt: time.Now().Add(jwt.SessionExpiration).UTC(),
		User:      u,
		Profile:   profile,
	}

	if status == http.StatusCreated {
		resp.RespondCreated(w, r, session)
		return
	}
	resp.RespondSuccess(w, r, session)
}

func bindLogin(w http.ResponseWriter, r *http.Request) (string, bool) {
	var input LoginInput
	if customErr := req.BindJSON(w, r, &input); customErr != nil {
		resp.RespondError(w, r, customErr)
		return "", false
	}

	input.Email = strings.TrimSpace(input.Email)
	if fields := validate.Struct(input); fields != nil {
		resp.RespondError(w, r, errs.Validation(fields))
		return "", false
	}
	return input.Email, true
}

// HandleLoginStudent signs in the student registered with the given email.
func HandleLoginStudent(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := bindLogin(w, r)
		if !ok {
			return
		}

		st, err := deps.Directory.FindStudentByEmail(r.Context(), email)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		logx.Info("Student signed in", "user_id", st.ID)
		issueSession(w, r, deps, http.StatusOK, user.FromStudent(st), st)
	}
}

// HandleLoginAlumni signs in the alumni registered with the given email.
func HandleLoginAlumni(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := bindLogin(w, r)
		if !ok {
			return
		}

		a, err := deps.Directory.FindAlumniByEmail(r.Context(), email)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		logx.Info("Alumni signed in", "user_id", a.ID)
		issueSession(w, r, deps, http.StatusOK, user.FromAlumni(a), a)
	}
}

// HandleLoginAdmin signs in an administrator listed in the configuration.
func HandleLoginAdmin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, ok := bindLogin(w, r)
		if !ok {
			return
		}

		if !deps.Config.IsAdminEmail(email) {
			logx.Warn("Admin sign-in rejected", "email", email)
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		issueSession(w, r, deps, http.StatusOK, user.Admin(strings.ToLower(email)), nil)
	}
}

// HandleSignUpAlumni creates an alumni account and signs it in.
func HandleSignUpAlumni(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input directory.SignUpInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		a, err := deps.Directory.SignUpAlumni(r.Context(), input)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}

		issueSession(w, r, deps, http.StatusCreated, user.FromAlumni(a), a)
	}
}
