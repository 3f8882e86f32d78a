/*
Package req provides helper functions for HTTP request parsing and data binding.

It encapsulates the logic for binding JSON request bodies with strict decoding,
returning application errors on malformed input.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"acaragraph/internal/pkg/errs"
)

const (
	// MaxFormMemory defines the maximum amount of memory ParseMultipartForm
	// will use to store non-file fields. Larger file fields spill to temporary files.
	MaxFormMemory int64 = 8 << 20 // 8 MB

	// MaxRequestFileSize defines the maximum allowed size of the entire
	// multipart request body, enforced via http.MaxBytesReader.
	MaxRequestFileSize int64 = 10 << 20 // 10 MB
)

// BindJSON binds the JSON data from the HTTP request body to the destination struct dst.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}

// SetupMultipart parses multipart form data from the HTTP request with size limits applied.
func SetupMultipart(w http.ResponseWriter, r *http.Request) *errs.CustomError {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestFileSize)

	if err := r.ParseMultipartForm(MaxFormMemory); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			return errs.NewError(errs.ErrFileTooLarge, MaxRequestFileSize>>20)
		}

		return errs.NewError(errs.ErrInvalidParams)
	}

	return nil
}
