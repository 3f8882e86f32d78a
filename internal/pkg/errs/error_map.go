/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to
standardize HTTP responses and internal error handling. Messages with printf
placeholders are filled through NewError's details arguments.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format."},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRateLimitExceeded:    {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Chat Content and Moderation Errors
	ErrMessageEmpty:       {Code: ErrMessageEmpty, Message: "Message cannot be empty."},
	ErrMessageTooLong:     {Code: ErrMessageTooLong, Message: "Message is too long (maximum %d characters)."},
	ErrMessageTypeInvalid: {Code: ErrMessageTypeInvalid, Message: "Unsupported message type."},
	ErrSendBanned:         {Code: ErrSendBanned, Message: "You are banned and cannot send messages."},
	ErrSendMuted:          {Code: ErrSendMuted, Message: "You are muted. You can write again in %d minutes."},
	ErrFileTooLarge:       {Code: ErrFileTooLarge, Message: "File is too large (maximum %d MB)."},
	ErrFileTypeInvalid:    {Code: ErrFileTypeInvalid, Message: "This file type is not allowed."},

	// 3xxx: Identity and Invite Code Errors
	ErrCodeInvalid:      {Code: ErrCodeInvalid, Message: "Invalid, expired or exhausted invite code."},
	ErrNicknameInvalid:  {Code: ErrNicknameInvalid, Message: "Nickname must be 2-20 characters without markup symbols.", Status: http.StatusBadRequest},
	ErrTelegramInvalid:  {Code: ErrTelegramInvalid, Message: "Telegram handle must start with @ and contain only letters, digits and underscores.", Status: http.StatusBadRequest},
	ErrUserNotFound:     {Code: ErrUserNotFound, Message: "User not found. Please try again."},
	ErrUnauthorized:     {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},

	// 4xxx: Admin Action Errors
	ErrAdminRequired: {Code: ErrAdminRequired, Message: "Administrator privileges required.", Status: http.StatusForbidden},
	ErrUnknownAction: {Code: ErrUnknownAction, Message: "Unknown admin action.", Status: http.StatusBadRequest},
	ErrProtectedUser: {Code: ErrProtectedUser, Message: "This account cannot be modified.", Status: http.StatusForbidden},

	// 5xxx: Internal System Errors
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStoreFailed:       {Code: ErrStoreFailed, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File operation failed. Please try again."},
}
