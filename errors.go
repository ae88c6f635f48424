package main

import (
	"errors"
	"fmt"
)

var (
	errFormNotFound       = errors.New("no such form")
	errInputNotFound      = errors.New("no such input")
	errTokenMissing       = errors.New("no csrfmiddlewaretoken")
	errInvalidCredentials = errors.New("invalid token/password")
	errMalformedResponse  = errors.New("malformed response")
	errEmptyResponse      = errors.New("file upload failed")
	errFileNotFound       = errors.New("no such file")
)

// netError tags transport and status failures with the operation that hit
// them, so they stay distinguishable from parse failures even though every
// error is fatal today.
type netError struct {
	op  string
	err error
}

func (e *netError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *netError) Unwrap() error {
	return e.err
}

func isNetError(err error) bool {
	var ne *netError
	return errors.As(err, &ne)
}
