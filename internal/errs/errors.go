package errs

import "errors"

// Таксономия ошибок ядра диспетчеризации.
// Слои выше сопоставляют их с HTTP-статусами через errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrForbidden           = errors.New("forbidden")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
