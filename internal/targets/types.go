package targets

import "errors"

var errInvalidJSON = errors.New("invalid JSON")

type missingKeyError struct {
	key string
}

func (e *missingKeyError) Error() string {
	return "missing " + e.key
}
