/*
Package errs provides custom error types and application-level error code constants.

Code ranges group errors by kind: 1xxx request handling and input validation,
2xxx chat content and moderation, 3xxx identity and invite codes, 4xxx admin
actions, 5xxx internal/persistence failures. The range tells callers how to
treat an error: 1xxx/2xxx carry user-correctable reasons that may be shown
verbatim, 5xxx surface only a generic retry message.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON is malformed.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1005
)

// 2xxx: Chat Content and Moderation Errors
const (
	// ErrMessageEmpty indicates a message that is empty after trimming.
	ErrMessageEmpty = 2001

	// ErrMessageTooLong indicates message text above the maximum length.
	ErrMessageTooLong = 2002

	// ErrMessageTypeInvalid indicates an unsupported message type.
	ErrMessageTypeInvalid = 2003

	// ErrSendBanned indicates a send attempt by a banned user.
	ErrSendBanned = 2101

	// ErrSendMuted indicates a send attempt by a muted user; the message
	// template carries the remaining minutes.
	ErrSendMuted = 2102

	// ErrFileTooLarge indicates an attachment above the size limit.
	ErrFileTooLarge = 2201

	// ErrFileTypeInvalid indicates an attachment with a disallowed type.
	ErrFileTypeInvalid = 2202
)

// 3xxx: Identity and Invite Code Errors
const (
	// ErrCodeInvalid indicates an invite code that is unknown, expired,
	// deactivated, or has no uses left.
	ErrCodeInvalid = 3001

	// ErrNicknameInvalid indicates a nickname outside the 2-20 character
	// range or containing forbidden characters.
	ErrNicknameInvalid = 3002

	// ErrTelegramInvalid indicates a malformed Telegram handle.
	ErrTelegramInvalid = 3003

	// ErrUserNotFound indicates that the referenced user row does not exist.
	ErrUserNotFound = 3004

	// ErrUnauthorized indicates a request without a usable identity.
	ErrUnauthorized = 3005
)

// 4xxx: Admin Action Errors
const (
	// ErrAdminRequired indicates a caller without admin privileges.
	ErrAdminRequired = 4001

	// ErrUnknownAction indicates an unrecognized admin action verb.
	ErrUnknownAction = 4002

	// ErrProtectedUser indicates an attempt to ban or demote a super admin.
	ErrProtectedUser = 4003
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal server error.
	ErrUnknown = 5000

	// ErrStoreFailed indicates a transient persistence failure. The
	// operation fails; the caller may retry the whole request.
	ErrStoreFailed = 5001

	// ErrFileStorageFailed indicates a failure talking to object storage.
	ErrFileStorageFailed = 5002
)
