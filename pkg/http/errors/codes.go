package errors

// Error codes for standardized error responses
const (
	// Session token errors
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Request errors
	ErrCodeInvalidRequest = "invalid_request"

	// Session errors
	ErrCodeSessionNotFound       = "session_not_found"
	ErrCodeSessionCreationFailed = "session_creation_failed"
	ErrCodeSessionRestoreFailed  = "session_restore_failed"

	// Command errors
	ErrCodeUnknownCommand  = "unknown_command"
	ErrCodeInvalidPayload  = "invalid_payload"
	ErrCodeRequiredMissing = "required_unanswered"

	// WebSocket errors
	ErrCodeUnknownMessageType = "unknown_message_type"

	// Server errors
	ErrCodeInternalError = "internal_error"
)
