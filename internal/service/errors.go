package service

import "errors"

// ErrInvalidCredentials is the uniform answer to a failed login. The
// same error covers unknown usernames and wrong passwords so the
// response does not reveal which half was wrong.
var ErrInvalidCredentials = errors.New("incorrect username or password")

// ValidationError marks client input rejected by a service. The text is
// short and safe to hand back to the caller verbatim.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }
