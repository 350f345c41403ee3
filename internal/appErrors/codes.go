package appErrors

// Error codes grouped by domain.
const (
	// Authentication and authorization
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	CodeTokenNotRecognized ErrorCode = "TOKEN_NOT_RECOGNIZED"
	CodeInvalidOTP         ErrorCode = "INVALID_OTP"

	// Validation
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeWeakPassword     ErrorCode = "WEAK_PASSWORD"
	CodeInvalidUserRole  ErrorCode = "INVALID_USER_ROLE"

	// Users
	CodeUserNotFound       ErrorCode = "USER_NOT_FOUND"
	CodeEmailAlreadyExists ErrorCode = "EMAIL_ALREADY_EXISTS"

	// Projects and tasks
	CodeProjectNotFound  ErrorCode = "PROJECT_NOT_FOUND"
	CodeTaskNotFound     ErrorCode = "TASK_NOT_FOUND"
	CodeCommentNotFound  ErrorCode = "COMMENT_NOT_FOUND"
	CodeCommentMismatch  ErrorCode = "COMMENT_MISMATCH"
	CodeAssigneeNotFound ErrorCode = "ASSIGNEE_NOT_FOUND"
	CodeMemberNotFound   ErrorCode = "MEMBER_NOT_FOUND"
	CodeInvalidParent    ErrorCode = "INVALID_PARENT_TASK"

	// Infrastructure
	CodeInternalError  ErrorCode = "INTERNAL_ERROR"
	CodeEmailSendError ErrorCode = "EMAIL_SEND_ERROR"
)
