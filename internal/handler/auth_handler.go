/*
Package handler provides the HTTP handlers and routing setup for the
Acaragraph server.

This file covers the invite-code gate: code validation and user registration.
*/
package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"unicode/utf8"

	"acaragraph/internal/app/chat"
	"acaragraph/internal/app/user"
	"acaragraph/internal/pkg/auth/jwt"
	"acaragraph/internal/pkg/errs"
	"acaragraph/internal/pkg/logx"
	"acaragraph/internal/pkg/randx"
	"acaragraph/internal/pkg/req"
	"acaragraph/internal/pkg/resp"
)

const (
	NicknameMinLength = 2
	NicknameMaxLength = 20
)

// telegramRegex matches handles of the form "@name" with letters, digits and underscores.
var telegramRegex = regexp.MustCompile(`^@[A-Za-z0-9_]{3,32}$`)

// nicknameForbidden lists characters rejected in nicknames to keep rendered
// names free of markup.
const nicknameForbidden = `<>&"'` + "`"

type CheckCodeInput struct {
	Code string `json:"code"`
}

// HandleCheckCode validates an invite code without consuming it. A known but
// exhausted or expired code is reported exactly like an unknown one.
func HandleCheckCode(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CheckCodeInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		code := strings.ToUpper(strings.TrimSpace(input.Code))
		if !randx.IsValidInviteCode(code) {
			resp.RespondError(w, r, errs.NewError(errs.ErrCodeInvalid))
			return
		}

		invite, err := deps.Store.GetActiveCode(r.Context(), code)
		if err != nil {
			if errors.Is(err, chat.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrCodeInvalid))
				return
			}
			logx.Error(err, "Failed to look up invite code")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailed))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"valid":    true,
			"type":     invite.Type,
			"usesLeft": invite.UsesLeft(),
		})
	}
}

type RegisterInput struct {
	Code     string `json:"code"`
	Nickname string `json:"nickname"`
	Telegram string `json:"telegram"`
}

// HandleRegister redeems an invite code and creates a user. The granted role
// comes from the code type, the avatar color from the server palette. User
// creation and code consumption commit atomically.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		code := strings.ToUpper(strings.TrimSpace(input.Code))
		if !randx.IsValidInviteCode(code) {
			resp.RespondError(w, r, errs.NewError(errs.ErrCodeInvalid))
			return
		}

		nickname := strings.TrimSpace(input.Nickname)
		if !validNickname(nickname) {
			resp.RespondError(w, r, errs.NewError(errs.ErrNicknameInvalid))
			return
		}

		telegram := strings.TrimSpace(input.Telegram)
		if !telegramRegex.MatchString(telegram) {
			resp.RespondError(w, r, errs.NewError(errs.ErrTelegramInvalid))
			return
		}

		invite, err := deps.Store.GetActiveCode(r.Context(), code)
		if err != nil {
			if errors.Is(err, chat.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrCodeInvalid))
				return
			}
			logx.Error(err, "Failed to look up invite code")
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailed))
			return
		}

		role := user.RoleForCodeType(invite.Type)
		avatarColor := randx.AvatarColor()

		newUser, err := deps.Store.RegisterWithCode(r.Context(), nickname, telegram, role, avatarColor, invite.ID)
		if err != nil {
			if errors.Is(err, chat.ErrNotFound) {
				// Lost the redemption race for the code's last use.
				resp.RespondError(w, r, errs.NewError(errs.ErrCodeInvalid))
				return
			}
			logx.Error(err, "Failed to register user", "code", code)
			resp.RespondError(w, r, errs.NewError(errs.ErrStoreFailed))
			return
		}

		if err := deps.Store.LogEvent(r.Context(), newUser.ID, "user_registered", "registered with code "+code); err != nil {
			logx.Warn("Failed to record registration event", "user_id", newUser.ID, "error", err.Error())
		}

		payload := &jwt.Payload{
			UserID:   newUser.ID,
			Nickname: newUser.Nickname,
			Role:     string(newUser.Role),
		}
		token, err := jwt.GenerateToken(payload, deps.Config.JWTSecret, jwt.IdentityExpiration)
		if err != nil {
			logx.Error(err, "Failed to issue identity token", "user_id", newUser.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("User registered", "user_id", newUser.ID, "nickname", newUser.Nickname, "role", string(newUser.Role))

		resp.RespondSuccess(w, r, map[string]any{
			"token": token,
			"user":  newUser,
		})
	}
}

// validNickname checks the length range and rejects markup characters.
func validNickname(nickname string) bool {
	length := utf8.RuneCountInString(nickname)
	if length < NicknameMinLength || length > NicknameMaxLength {
		return false
	}
	return !strings.ContainsAny(nickname, nicknameForbidden)
}
