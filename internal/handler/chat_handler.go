/*
This file covers read-only chat endpoints: message history, the live presence
list, and the caller's own profile.
*/
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"acaragraph/internal/app/chat"
	"acaragraph/internal/app/user"
	"acaragraph/internal/pkg/auth/jwt"
	"acaragraph/internal/pkg/errs"
	"acaragraph/internal/pkg/logx"
	"acaragraph/internal/pkg/resp"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

// HandleListMessages returns the recent message history in chronological order.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := DefaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			if parsed > MaxHistoryLimit {
				parsed = MaxHistoryLimit
			}
			limit = parsed
		}

		messages, err := deps.Store.ListRecentMessages(r.Context(), limit)
		if err != nil {
			logx.Error(err, "Failed to list messages")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": messages,
			"count":    len(messages),
		})
	}
}

// HandleOnlineUsers returns the persisted online/away view for offline
// consumers (dashboards, bots). Live clients get the authoritative registry
// snapshot over the socket instead.
func HandleOnlineUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := deps.Store.ListOnlineUsers(r.Context())
		if err != nil {
			logx.Error(err, "Failed to list online users")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailed))
			return
		}

		profiles := make([]user.Profile, 0, len(rows))
		for i := range rows {
			profiles = append(profiles, rows[i].Profile())
		}

		resp.RespondSuccess(w, r, map[string]any{
			"users": profiles,
			"count": len(profiles),
		})
	}
}

// HandleGetMe returns the authenticated caller's full user row.
func HandleGetMe(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		u, err := deps.Store.GetUser(r.Context(), identity.UserID)
		if err != nil {
			if errors.Is(err, chat.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "Failed to load user", "user_id", identity.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailed))
			return
		}

		resp.RespondSuccess(w, r, u)
	}
}
