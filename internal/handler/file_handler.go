/*
This file covers media storage endpoints: presigned upload and download URLs
plus a direct multipart upload path for clients that cannot use presigning.
*/
package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"acaragraph/internal/app/chat"
	"acaragraph/internal/pkg/auth/jwt"
	"acaragraph/internal/pkg/errs"
	"acaragraph/internal/pkg/logx"
	"acaragraph/internal/pkg/req"
	"acaragraph/internal/pkg/resp"
)

type PresignUploadInput struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// mediaKey builds the object key for one upload. Keys are namespaced per user
// so ownership is visible in the bucket layout.
func mediaKey(userID int64, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return fmt.Sprintf("media/%d/%s%s", userID, uuid.New().String(), ext)
}

// HandlePresignUpload validates the planned upload and returns a short-lived
// presigned PUT URL together with the object key.
func HandlePresignUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		var input PresignUploadInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := chat.ValidateFileSize(input.FileSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if customErr := chat.ValidateFileType(input.FileName, input.MimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		key := mediaKey(identity.UserID, input.FileName)

		url, err := deps.StorageService.PresignUpload(r.Context(), key, input.MimeType, input.FileSize, chat.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "Failed to presign upload", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{
			"uploadUrl": url,
			"fileKey":   key,
		})
	}
}

// HandlePresignDownload returns a short-lived presigned GET URL for a stored object.
func HandlePresignDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		key := r.URL.Query().Get("key")
		if key == "" || !strings.HasPrefix(key, "media/") {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		url, err := deps.StorageService.PresignDownload(r.Context(), key, chat.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "Failed to presign download", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{
			"downloadUrl": url,
		})
	}
}

// HandleDirectUpload accepts a multipart upload and streams it into the
// bucket server-side. Exists for clients behind proxies that strip presigned
// query signatures.
func HandleDirectUpload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		if customErr := req.SetupMultipart(w, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		defer file.Close()

		if customErr := chat.ValidateFileSize(header.Size); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if customErr := chat.ValidateFileType(header.Filename, mimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		key := mediaKey(identity.UserID, header.Filename)

		if err := deps.StorageService.Upload(r.Context(), key, mimeType, file); err != nil {
			logx.Error(err, "Failed to upload file", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrFileStorageFailed))
			return
		}

		logx.Info("Media uploaded", "key", key, "user_id", identity.UserID, "size", header.Size)

		resp.RespondSuccess(w, r, map[string]string{
			"fileKey": key,
		})
	}
}
