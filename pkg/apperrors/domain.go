package apperrors

import (
	"net/http"
)

// Factories and predefined errors for the lifecycle, appointment,
// messaging, notification and document domains.

// ErrNotFound converts a repository not-found error into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrPermissionDenied is returned when the authorization matrix rejects
// an (actor, action) pair.
func ErrPermissionDenied(domain, message string) *AppError {
	return New(CodeForbidden, domain, message, http.StatusForbidden)
}

// ErrInvalidStateTransition is returned when a status change is not legal
// from the current state. Nothing is mutated in that case.
func ErrInvalidStateTransition(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// ErrInvalidOperation covers structurally valid but semantically
// disallowed actions, e.g. cancelling a completed appointment.
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// --- Lifecycle ---

var ErrRequestTerminal = New(
	CodeInvalidStatus,
	"request",
	"Request is in a terminal status and accepts no further transitions",
	http.StatusConflict,
)

var ErrRequestAlreadyAssigned = New(
	CodeConflict,
	"request",
	"Request is already assigned to an expert",
	http.StatusConflict,
)

var ErrTransitionConflict = New(
	CodeInvalidStatus,
	"request",
	"Request status changed concurrently, transition rejected",
	http.StatusConflict,
)

// --- Appointments ---

var ErrAppointmentNotCancellable = New(
	CodeInvalidOperation,
	"appointment",
	"Only scheduled or confirmed appointments can be cancelled",
	http.StatusBadRequest,
)

var ErrAppointmentPartyMismatch = New(
	CodeValidationFailed,
	"appointment",
	"Appointment participants must match the linked request",
	http.StatusBadRequest,
)

// --- Messaging ---

var ErrEmptyMessage = New(
	CodeValidationFailed,
	"message",
	"Message content must not be empty",
	http.StatusBadRequest,
)

// ErrClientOpensConversation enforces the first-message rule: the assigned
// expert must write first into a request-scoped conversation.
var ErrClientOpensConversation = New(
	CodeForbidden,
	"message",
	"You cannot start this conversation. Please wait until the expert contacts you.",
	http.StatusForbidden,
)

var ErrConversationAccessDenied = New(
	CodeForbidden,
	"message",
	"Access to this conversation is denied",
	http.StatusForbidden,
)

// --- Documents ---

var ErrDocumentAlreadyReviewed = New(
	CodeInvalidOperation,
	"document",
	"Document has already been reviewed",
	http.StatusBadRequest,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"document",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

var ErrFileTooLarge = New(
	CodeValidationFailed,
	"document",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

// --- Auth & accounts ---

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrPasswordMismatch = New(
	CodeValidationFailed,
	"auth",
	"Password and confirmation do not match",
	http.StatusBadRequest,
)

var ErrAccountDisabled = New(
	CodeForbidden,
	"auth",
	"Your account has been deactivated",
	http.StatusForbidden,
)
