/*
Package errs provides custom error types and application-level error code constants.

These codes identify specific request, domain, session and system failures both inside
the server and in the JSON envelope returned to clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body is not valid JSON for the target.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates extra content after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the client exceeded its request rate.
	ErrRateLimitExceeded = 1007

	// ErrValidationFailed indicates that one or more fields failed validation.
	// The offending fields are listed in CustomError.Fields.
	ErrValidationFailed = 1008
)

// 2xxx: Directory, Messaging and Upload Errors
const (
	ErrAlumniNotFound  = 2101
	ErrStudentNotFound = 2102
	ErrEventNotFound   = 2103

	// ErrDuplicateID indicates a create with an identifier that is already stored.
	ErrDuplicateID = 2104

	// ErrEmailTaken indicates a sign-up with an email that already has an account.
	ErrEmailTaken = 2105

	// ErrAlreadyRSVPd indicates a second RSVP for the same event by the same user.
	ErrAlreadyRSVPd = 2106

	ErrMessageEmpty          = 2201
	ErrMessageContentTooLong = 2202
	ErrRecipientNotFound     = 2203

	// ErrSelfConversation indicates an attempt to message oneself.
	ErrSelfConversation = 2204

	ErrFileSizeTooLarge = 2301
	ErrFileTypeInvalid  = 2302

	// ErrUploadsDisabled indicates that no object storage is configured.
	ErrUploadsDisabled = 2303
)

// 3xxx: Session Errors
const (
	// ErrUnauthorized indicates a missing or invalid session token.
	ErrUnauthorized = 3001

	// ErrForbidden indicates a valid session without the required role.
	ErrForbidden = 3002

	// ErrAccountNotFound indicates a login for an email with no account.
	ErrAccountNotFound = 3003
)

// 4xxx: Generative AI Errors
const (
	// ErrAIServiceFailed indicates that the generation call or its response failed.
	ErrAIServiceFailed = 4001

	// ErrAIServiceUnavailable indicates that no generation provider is configured.
	ErrAIServiceUnavailable = 4002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified internal error.
	ErrUnknown = 5000

	// ErrFileStorageFailed indicates that the object storage call failed.
	ErrFileStorageFailed = 5002
)
