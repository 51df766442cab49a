package populate

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRecord indicates a row that cannot be turned into an entity.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrUnresolvedReference indicates a comment naming an unknown user row key or article id.
	ErrUnresolvedReference = errors.New("unresolved reference")
)

func recordError(rec Record, kind error, format string, args ...any) error {
	return fmt.Errorf("%s line %d: %w: %s", rec.Stream, rec.Line, kind, fmt.Sprintf(format, args...))
}
