package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Status:  "error",
		Error:   "invalid_request",
		Details: "Invalid request format",
	}

	ErrInvalidRegisterRequest = ErrorResponse{
		Status:  "error",
		Error:   "invalid_register_request",
		Details: "Invalid registration data",
	}

	ErrPasswordConfirmation = ErrorResponse{
		Status:  "error",
		Error:   "password_confirmation",
		Details: "Password and confirmation do not match",
	}

	ErrEmailInUse = ErrorResponse{
		Status:  "error",
		Error:   "email_in_use",
		Details: "Email already in use",
	}

	ErrUserNotFound = ErrorResponse{
		Status:  "error",
		Error:   "user_not_found",
		Details: "User doesn't exist",
	}

	ErrPasswordMismatch = ErrorResponse{
		Status:  "error",
		Error:   "password_mismatch",
		Details: "Invalid password",
	}

	ErrTooManyAttempts = ErrorResponse{
		Status:  "error",
		Error:   "too_many_attempts",
		Details: "Too many failed login attempts",
	}

	ErrNotAuthorized = ErrorResponse{
		Status:  "error",
		Error:   "not_authorized",
		Details: "Not authorized",
	}

	ErrUnauthenticated = ErrorResponse{
		Status:  "error",
		Error:   "unauthenticated",
		Details: "Valid bearer token required",
	}

	ErrInternal = ErrorResponse{
		Status:  "error",
		Error:   "internal_error",
		Details: "Internal server error",
	}
)
