/*
Package errs provides custom error types and application-level error code constants.

This file maps every error code to its CustomError template: the user-facing message
and the HTTP status used when the error is sent to a client.
*/
package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
var errorMap = map[int]CustomError{
	// 1xxx
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format."},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data."},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrValidationFailed:      {Code: ErrValidationFailed, Message: "Invalid input.", Status: http.StatusUnprocessableEntity},

	// 2xxx
	ErrAlumniNotFound:        {Code: ErrAlumniNotFound, Message: "Alumni not found.", Status: http.StatusNotFound},
	ErrStudentNotFound:       {Code: ErrStudentNotFound, Message: "Student not found.", Status: http.StatusNotFound},
	ErrEventNotFound:         {Code: ErrEventNotFound, Message: "Event not found.", Status: http.StatusNotFound},
	ErrDuplicateID:           {Code: ErrDuplicateID, Message: "A record with this id already exists.", Status: http.StatusConflict},
	ErrEmailTaken:            {Code: ErrEmailTaken, Message: "An account with this email already exists. Please log in.", Status: http.StatusConflict},
	ErrAlreadyRSVPd:          {Code: ErrAlreadyRSVPd, Message: "You have already RSVP'd for this event.", Status: http.StatusConflict},
	ErrMessageEmpty:          {Code: ErrMessageEmpty, Message: "Message cannot be empty."},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Message: "Message is too long (max %d bytes)."},
	ErrRecipientNotFound:     {Code: ErrRecipientNotFound, Message: "Recipient not found.", Status: http.StatusNotFound},
	ErrSelfConversation:      {Code: ErrSelfConversation, Message: "You cannot message yourself."},
	ErrFileSizeTooLarge:      {Code: ErrFileSizeTooLarge, Message: "File is too large (max %d MB)."},
	ErrFileTypeInvalid:       {Code: ErrFileTypeInvalid, Message: "Unsupported file type."},
	ErrUploadsDisabled:       {Code: ErrUploadsDisabled, Message: "File uploads are not available.", Status: http.StatusServiceUnavailable},

	// 3xxx
	ErrUnauthorized:    {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrForbidden:       {Code: ErrForbidden, Message: "You do not have permission to do that.", Status: http.StatusForbidden},
	ErrAccountNotFound: {Code: ErrAccountNotFound, Message: "No account found with that email. Please sign up.", Status: http.StatusNotFound},

	// 4xxx
	ErrAIServiceFailed:      {Code: ErrAIServiceFailed, Message: "AI service failed.", Status: http.StatusBadGateway},
	ErrAIServiceUnavailable: {Code: ErrAIServiceUnavailable, Message: "AI service is not configured.", Status: http.StatusServiceUnavailable},

	// 5xxx
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Message: "File upload failed. Please try again.", Status: http.StatusBadGateway},
}
