package user

import "errors"

var (
	// ErrInvalidOrderBy is returned when the order_by value is neither
	// "last_login" nor "email". The query is rejected before it runs.
	ErrInvalidOrderBy = errors.New("order_by must be last_login or email")

	// ErrInvalidPage is returned when the page number is not a positive
	// integer. The query is rejected before it runs.
	ErrInvalidPage = errors.New("invalid page")
)

// IsInputError reports whether err is a caller mistake rather than a query
// failure, so handlers can answer 400 instead of 500.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidOrderBy) || errors.Is(err, ErrInvalidPage)
}
