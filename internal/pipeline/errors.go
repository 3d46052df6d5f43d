package pipeline

// RejectionError is a content-level rejection with a machine-readable code.
// The API layer maps these to 400 responses; everything else is a 500.
type RejectionError struct {
	Code string
}

func (e *RejectionError) Error() string { return e.Code }

var (
	// ErrInvalidURL rejects syntactically malformed submissions.
	ErrInvalidURL = &RejectionError{Code: "INVALID_URL"}

	// ErrNoContent rejects URLs that yielded no extractable metadata at all.
	ErrNoContent = &RejectionError{Code: "NO_CONTENT"}

	// ErrUnsuitableContent rejects extractions with an unresolved category
	// or a confidence below the quality floor.
	ErrUnsuitableContent = &RejectionError{Code: "UNSUITABLE_CONTENT"}

	// ErrActivityNotFound reports a reprocessing request for an unknown
	// activity id. The API layer maps it to 404.
	ErrActivityNotFound = &RejectionError{Code: "ACTIVITY_NOT_FOUND"}
)
