package documents

var (
	ErrNotFound        = errNotFound{}
	ErrInvalidInput    = errInvalidInput{}
	ErrFileTooLarge    = errFileTooLarge{}
	ErrUnsupportedType = errUnsupportedType{}
	ErrQuotaExceeded   = errQuotaExceeded{}
)

type errNotFound struct{}

func (errNotFound) Error() string { return "document not found" }

type errInvalidInput struct{}

func (errInvalidInput) Error() string { return "invalid input" }

type errFileTooLarge struct{}

func (errFileTooLarge) Error() string { return "file exceeds the maximum allowed size" }

type errUnsupportedType struct{}

func (errUnsupportedType) Error() string { return "unsupported file type" }

type errQuotaExceeded struct{}

func (errQuotaExceeded) Error() string { return "storage quota exceeded" }
