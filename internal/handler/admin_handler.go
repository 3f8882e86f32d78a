/*
This file covers the admin surface: invite code management, user listing,
moderation actions, aggregate stats, and runtime settings.
*/
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"acaragraph/internal/app/chat"
	"acaragraph/internal/app/db"
	"acaragraph/internal/app/user"
	"acaragraph/internal/pkg/auth/jwt"
	"acaragraph/internal/pkg/errs"
	"acaragraph/internal/pkg/logx"
	"acaragraph/internal/pkg/randx"
	"acaragraph/internal/pkg/req"
	"acaragraph/internal/pkg/resp"
)

const (
	// DefaultMuteMinutes applies when a mute action carries no duration.
	DefaultMuteMinutes = 5

	// MaxCodeUses caps how many redemptions a single code may allow.
	MaxCodeUses = 1000

	// codeGenerationAttempts bounds retries on code collisions.
	codeGenerationAttempts = 3
)

// requireAdmin resolves the caller's identity and verifies admin privileges
// against the current user row, not the token.
func requireAdmin(deps *AppDeps, r *http.Request) (*user.User, *errs.CustomError) {
	identity := jwt.GetPayloadFromContext(r)
	if identity == nil {
		return nil, errs.NewError(errs.ErrUnauthorized)
	}

	caller, err := deps.Store.GetUser(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, chat.ErrNotFound) {
			return nil, errs.NewError(errs.ErrUnauthorized)
		}
		logx.Error(err, "Failed to load admin caller", "user_id", identity.UserID)
		return nil, errs.NewError(errs.ErrStoreFailed)
	}

	if !caller.IsAdmin() {
		return nil, errs.NewError(errs.ErrAdminRequired)
	}
	return caller, nil
}

type CreateCodeInput struct {
	Type           string `json:"type"`
	MaxUses        int    `json:"maxUses"`
	ExpiresInHours int    `json:"expiresInHours,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// HandleCreateCode generates a new invite code. Codes granting admin or super
// admin roles can only be created by a super admin.
func HandleCreateCode(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, adminErr := requireAdmin(deps, r)
		if adminErr != nil {
			resp.RespondError(w, r, adminErr)
			return
		}

		var input CreateCodeInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		role := user.Role(input.Type)
		switch role {
		case user.RoleUser, user.RoleGuest:
		case user.RoleAdmin, user.RoleSuperAdmin:
			if caller.Role != user.RoleSuperAdmin {
				resp.RespondError(w, r, errs.NewError(errs.ErrAdminRequired))
				return
			}
		default:
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		maxUses := input.MaxUses
		if maxUses <= 0 {
			maxUses = 1
		}
		if maxUses > MaxCodeUses {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var expiresAt *time.Time
		if input.ExpiresInHours > 0 {
			t := time.Now().Add(time.Duration(input.ExpiresInHours) * time.Hour)
			expiresAt = &t
		}

		for attempt := 0; attempt < codeGenerationAttempts; attempt++ {
			code, err := randx.InviteCode(input.Type)
			if err != nil {
				logx.Error(err, "Failed to generate invite code")
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}

			invite, err := deps.Store.CreateCode(r.Context(), code, input.Type, caller.ID, maxUses, expiresAt, input.Notes)
			if err != nil {
				if db.IsUniqueViolation(err) {
					continue
				}
				logx.Error(err, "Failed to create invite code")
				resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailed))
				return
			}

			logx.Info("Invite code created", "code", invite.Code, "type", invite.Type, "by_admin", caller.ID)
			resp.RespondSuccess(w, r, invite)
			return
		}

		resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
	}
}

// HandleListCodes returns all invite codes, newest first.
func HandleListCodes(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, adminErr := requireAdmin(deps, r); adminErr != nil {
			resp.RespondError(w, r, adminErr)
			return
		}

		codes, err := deps.Store.ListCodes(r.Context())
		if err != nil {
			logx.Error(err, "Failed to list invite codes")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"codes": codes,
			"count": len(codes),
		})
	}
}

// HandleListUsers returns all user rows, newest first.
func HandleListUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, adminErr := requireAdmin(deps, r); adminErr != nil {
			resp.RespondError(w, r, adminErr)
			return
		}

		users, err := deps.Store.ListUsers(r.Context())
		if err != nil {
			logx.Error(err, "Failed to list users")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"users": users,
			"count": len(users),
		})
	}
}

// HandleStats returns aggregate counters for the admin dashboard.
func HandleStats(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, adminErr := requireAdmin(deps, r); adminErr != nil {
			resp.RespondError(w, r, adminErr)
			return
		}

		stats, err := deps.Store.GetStats(r.Context())
		if err != nil {
			logx.Error(err, "Failed to collect stats")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailed))
			return
		}

		resp.RespondSuccess(w, r, stats)
	}
}

type UserActionInput struct {
	Action          string `json:"action"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
}

// HandleUserAction applies a moderation action to a target user and notifies
// live connections so clients can refresh. Super admin accounts are protected
// from ban, mute, and demotion.
func HandleUserAction(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, adminErr := requireAdmin(deps, r)
		if adminErr != nil {
			resp.RespondError(w, r, adminErr)
			return
		}

		targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || targetID <= 0 {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var input UserActionInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		target, err := deps.Store.GetUser(r.Context(), targetID)
		if err != nil {
			if errors.Is(err, chat.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "Failed to load action target", "user_id", targetID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailed))
			return
		}

		if target.Role == user.RoleSuperAdmin {
			switch input.Action {
			case "ban", "mute", "remove_admin":
				resp.RespondError(w, r, errs.NewError(errs.ErrProtectedUser))
				return
			}
		}

		switch input.Action {
		case "ban":
			err = deps.Store.SetBanned(r.Context(), targetID, true)
		case "unban":
			err = deps.Store.SetBanned(r.Context(), targetID, false)
		case "mute":
			minutes := input.DurationMinutes
			if minutes <= 0 {
				minutes = DefaultMuteMinutes
			}
			until := time.Now().Add(time.Duration(minutes) * time.Minute)
			err = deps.Store.SetMutedUntil(r.Context(), targetID, &until)
		case "unmute":
			err = deps.Store.SetMutedUntil(r.Context(), targetID, nil)
		case "make_admin":
			err = deps.Store.SetRole(r.Context(), targetID, user.RoleAdmin)
		case "remove_admin":
			err = deps.Store.SetRole(r.Context(), targetID, user.RoleUser)
		default:
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknownAction))
			return
		}

		if err != nil {
			if errors.Is(err, chat.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "Failed to apply admin action", "action", input.Action, "user_id", targetID)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailed))
			return
		}

		if logErr := deps.Store.LogEvent(r.Context(), targetID, "admin_"+input.Action, "applied by admin"); logErr != nil {
			logx.Warn("Failed to record admin action event", "user_id", targetID, "error", logErr.Error())
		}

		logx.Info("Admin action applied", "action", input.Action, "user_id", targetID, "by_admin", caller.ID)

		deps.Hub.Broadcast(chat.Event{
			Type: chat.EventAdminAction,
			Payload: chat.AdminActionPayload{
				UserID:    targetID,
				Action:    input.Action,
				Timestamp: time.Now(),
				ByAdminID: caller.ID,
			},
		})

		resp.RespondSuccess(w, r, map[string]any{
			"action": input.Action,
			"userId": targetID,
		})
	}
}

// HandleGetSetting returns one runtime setting by key.
func HandleGetSetting(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, adminErr := requireAdmin(deps, r); adminErr != nil {
			resp.RespondError(w, r, adminErr)
			return
		}

		key := chi.URLParam(r, "key")
		value, err := deps.Store.GetSetting(r.Context(), key)
		if err != nil {
			if errors.Is(err, chat.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			logx.Error(err, "Failed to read setting", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{"key": key, "value": value})
	}
}

type SetSettingInput struct {
	Value string `json:"value"`
}

// HandleSetSetting upserts one runtime setting by key.
func HandleSetSetting(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, adminErr := requireAdmin(deps, r)
		if adminErr != nil {
			resp.RespondError(w, r, adminErr)
			return
		}

		var input SetSettingInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		key := chi.URLParam(r, "key")
		if err := deps.Store.SetSetting(r.Context(), key, input.Value); err != nil {
			logx.Error(err, "Failed to write setting", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailed))
			return
		}

		logx.Info("Setting updated", "key", key, "by_admin", caller.ID)
		resp.RespondSuccess(w, r, map[string]string{"key": key, "value": input.Value})
	}
}
