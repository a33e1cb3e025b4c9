package handler

import (
	"errors"
	"net/http"

	"alumnilink/internal/app/storage"
	"alumnilink/internal/pkg/auth/jwt"
	"alumnilink/internal/pkg/errs"
	"alumnilink/internal/pkg/req"
	"alumnilink/internal/pkg/resp"
)

const (
	// multipartOverhead is the body allowance beyond the file itself.
	multipartOverhead = 1 << 20

	// multipartMemory is the part of a multipart body kept in memory.
	multipartMemory = 1 << 20
)

// ConfirmAvatarInput names an object uploaded through a presigned URL.
type ConfirmAvatarInput struct {
	FileKey string `json:"fileKey"`
}

func avatarsOrUnavailable(w http.ResponseWriter, r *http.Request, deps *AppDeps) (*storage.Avatars, bool) {
	if deps.Avatars == nil {
		resp.RespondError(w, r, errs.NewError(errs.ErrUploadsDisabled))
		return nil, false
	}
	return deps.Avatars, true
}

// HandlePresignAvatar returns a presigned upload URL for a new avatar of the caller.
func HandlePresignAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		avatars, ok := avatarsOrUnavailable(w, r, deps)
		if !ok {
			return
		}

		var input storage.PresignInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		upload, err := avatars.Presign(r.Context(), jwt.GetPayloadFromContext(r).ID, input)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, upload)
	}
}

// HandleConfirmAvatar checks an object uploaded through a presigned URL and
// returns its public URL.
func HandleConfirmAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		avatars, ok := avatarsOrUnavailable(w, r, deps)
		if !ok {
			return
		}

		var input ConfirmAvatarInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		url, err := avatars.Confirm(r.Context(), jwt.GetPayloadFromContext(r).ID, input.FileKey)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondSuccess(w, r, map[string]string{"fileKey": input.FileKey, "avatarUrl": url})
	}
}

// HandleUploadAvatar stores an avatar sent as the "file" part of a multipart form.
func HandleUploadAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		avatars, ok := avatarsOrUnavailable(w, r, deps)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, storage.MaxAvatarSize+multipartOverhead)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				resp.RespondError(w, r, errs.NewError(errs.ErrFileSizeTooLarge, storage.MaxAvatarSizeMB))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		defer file.Close()

		upload, err := avatars.Upload(
			r.Context(),
			jwt.GetPayloadFromContext(r).ID,
			header.Filename,
			header.Header.Get("Content-Type"),
			header.Size,
			file,
		)
		if err != nil {
			resp.RespondErr(w, r, err)
			return
		}
		resp.RespondCreated(w, r, upload)
	}
}
