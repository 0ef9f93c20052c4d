package request

import "errors"

var (
	ErrMalformedBody = errors.New("request: malformed request body")
	ErrNoValidator   = errors.New("request: no validator resolver set")
)
