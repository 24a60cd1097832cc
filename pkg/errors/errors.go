package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeAuthRequired Code = "AUTH_REQUIRED"
	CodeNetwork      Code = "NETWORK_ERROR"
	CodeServer       Code = "SERVER_REJECTED"
	CodePayment      Code = "PAYMENT_FAILED"
	CodeVerification Code = "VERIFICATION_FAILED"
	CodeInternal     Code = "INTERNAL_ERROR"
)

type Metadata struct {
	Retryable bool
	// SessionInvalidating marks errors that force a session clear and a
	// redirect to the authentication screen when hit inside the checkout
	// or order-tracking flows.
	SessionInvalidating bool
	PublicMessage       string
	DetailsAllowed      bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:      false,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeAuthRequired: {
		Retryable:           false,
		SessionInvalidating: true,
		PublicMessage:       "No authentication token found. Please log in.",
	},
	CodeNetwork: {
		Retryable:     true,
		PublicMessage: "network error occurred, please try again",
	},
	CodeServer: {
		Retryable:      false,
		PublicMessage:  "request rejected by server",
		DetailsAllowed: true,
	},
	CodePayment: {
		Retryable:      true,
		PublicMessage:  "payment failed",
		DetailsAllowed: true,
	},
	CodeVerification: {
		Retryable:      false,
		PublicMessage:  "payment verification failed",
		DetailsAllowed: true,
	},
	CodeInternal: {
		Retryable:     true,
		PublicMessage: "an unexpected error occurred",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

// Display returns the message a user should see: the error's own message
// when present, the code's public fallback otherwise.
func (e *Error) Display() string {
	if e == nil {
		return MetadataFor(CodeInternal).PublicMessage
	}
	if e.message != "" {
		return e.message
	}
	return MetadataFor(e.code).PublicMessage
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// DisplayMessage returns the user-facing text for any error: a typed
// error's Display(), an untyped error's text, or fallback when err is nil.
func DisplayMessage(err error, fallback string) string {
	if typed := As(err); typed != nil {
		return typed.Display()
	}
	if err != nil {
		return err.Error()
	}
	return fallback
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

// SessionInvalidating reports whether err must clear the session.
func SessionInvalidating(err error) bool {
	typed := As(err)
	if typed == nil {
		return false
	}
	return MetadataFor(typed.Code()).SessionInvalidating
}
