package barcode

// ErrorKind classifies user-facing barcode failures
type ErrorKind string

const (
	// KindValidation covers malformed or missing input and unknown references
	KindValidation ErrorKind = "VALIDATION"
	// KindPermission means the actor lacks the table-level change permission
	KindPermission ErrorKind = "PERMISSION"
	// KindNoMatch means no handler recognized the payload
	KindNoMatch ErrorKind = "NO_MATCH"
	// KindHandler means a handler explicitly reported an error outcome
	KindHandler ErrorKind = "HANDLER"
)

// Kind sentinels for errors.Is
var (
	ErrValidation = &Error{Kind: KindValidation}
	ErrPermission = &Error{Kind: KindPermission}
	ErrNoMatch    = &Error{Kind: KindNoMatch}
	ErrHandler    = &Error{Kind: KindHandler}
)

// Error is a user-facing barcode failure
type Error struct {
	Kind ErrorKind
	// Field is the request field the failure refers to; empty means "error"
	Field   string
	Message string
	// Scan carries the plugin/payload/hash context of the failed pass, if any
	Scan *ResolvedScan
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any error of the same kind, so errors.Is(err, ErrPermission) works
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// NewValidationError creates a validation failure for a request field
func NewValidationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NewPermissionError creates an authorization failure
func NewPermissionError(message string) *Error {
	return &Error{Kind: KindPermission, Message: message}
}

// NewNoMatchError creates a failure for a payload no handler recognized
func NewNoMatchError(message string, scan *ResolvedScan) *Error {
	return &Error{Kind: KindNoMatch, Message: message, Scan: scan}
}

// NewHandlerError propagates an error outcome reported by a handler
func NewHandlerError(scan *ResolvedScan) *Error {
	message := ""
	if scan != nil && scan.Outcome != nil {
		message = scan.Outcome.Message
	}
	return &Error{Kind: KindHandler, Message: message, Scan: scan}
}

// WithScan attaches resolution context to the error
func (e *Error) WithScan(scan *ResolvedScan) *Error {
	e.Scan = scan
	return e
}
