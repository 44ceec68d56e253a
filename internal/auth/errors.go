package auth

var (
	ErrInvalidPhone       = errInvalidPhone{}
	ErrWeakPassword       = errWeakPassword{}
	ErrInvalidCredentials = errInvalidCredentials{}
)

type errInvalidPhone struct{}

func (errInvalidPhone) Error() string { return "invalid phone number" }

type errWeakPassword struct{}

func (errWeakPassword) Error() string { return "password does not meet requirements" }

type errInvalidCredentials struct{}

func (errInvalidCredentials) Error() string { return "invalid phone number or password" }
