/*
Package req provides helpers for HTTP request parsing and data binding.

BindJSON enforces the Content-Type, a body size limit, strict field matching and a
single JSON document per request, translating each failure into an errs code.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"alumnilink/internal/pkg/errs"
)

// MaxJSONBodySize is the largest JSON request body accepted (1 MB).
const MaxJSONBodySize int64 = 1 << 20

// BindJSON decodes the JSON request body into dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
