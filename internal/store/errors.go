package store

// Kind says what went wrong with a store call. The service layer turns each
// kind into a domain error; unclassified errors are storage failures.
type Kind string

const (
	KindNotFound      Kind = "not_found"
	KindAlreadyExists Kind = "already_exists"
	// KindInvalidInput covers missing keys and references to rows that do
	// not exist, i.e. foreign key failures.
	KindInvalidInput Kind = "invalid_input"
)

// Error is a classified store error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

var (
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "resource not found"}
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists, Message: "resource already exists"}
	ErrInvalidInput  = &Error{Kind: KindInvalidInput, Message: "invalid input"}
)

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches by kind, so a sentinel still matches after WithMessage or
// WithCause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// WithMessage returns a copy of e with msg.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.Err = err
	return &c
}
