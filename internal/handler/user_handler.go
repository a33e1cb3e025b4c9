package handler

import (
	"net/http"

	"alumnilink/internal/app/user"
	"alumnilink/internal/pkg/auth/jwt"
	"alumnilink/internal/pkg/errs"
	"alumnilink/internal/pkg/resp"
)

// HandleMe returns the signed-in principal and, for members, the full profile.
func HandleMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var (
			u       user.User
			profile any
		)

		switch identity.Role {
		case jwt.RoleAdmin:
			u = user.Admin(identity.ID)

		case jwt.RoleAlumni:
			a, err := deps.Directory.GetAlumni(r.Context(), identity.ID)
			if err != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrAccountNotFound))
				return
			}
			u, profile = user.FromAlumni(a), a

		case jwt.RoleStudent:
			st, err := deps.Directory.GetStudent(r.Context(), identity.ID)
			if err != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrAccountNotFound))
				return
			}
			u, profile = user.FromStudent(st), st
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user":    u,
			"profile": profile,
		})
	}
}
