package apperror

import "fmt"

// Kind categorizes application errors so callers can branch on the
// failure class without string matching.
type Kind string

const (
	KindConfiguration Kind = "CONFIGURATION"
	KindEmbedding     Kind = "EMBEDDING"
	KindDatabase      Kind = "DATABASE"
	KindRetrieval     Kind = "RETRIEVAL"
	KindIngestion     Kind = "INGESTION"
	KindStorage       Kind = "STORAGE"
	KindRateLimit     Kind = "RATE_LIMIT"
)

// Error is the base error carried across service boundaries.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]interface{}
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// WithDetail attaches a diagnostic key/value pair and returns the error.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func NewConfigurationError(message string) *Error {
	return newError(KindConfiguration, message, nil)
}

func NewEmbeddingError(message string, cause error) *Error {
	return newError(KindEmbedding, message, cause)
}

func NewDatabaseError(message string, cause error) *Error {
	return newError(KindDatabase, message, cause)
}

func NewRetrievalError(message string, cause error) *Error {
	return newError(KindRetrieval, message, cause)
}

func NewIngestionError(message string, cause error) *Error {
	return newError(KindIngestion, message, cause)
}

func NewStorageError(message string, cause error) *Error {
	return newError(KindStorage, message, cause)
}

func NewRateLimitError(message string) *Error {
	return newError(KindRateLimit, message, nil)
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if appErr, ok := err.(*Error); ok {
			return appErr.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
