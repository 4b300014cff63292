package errors

import "fmt"

var (
	ErrValidation        = fmt.Errorf("validation failed")
	ErrUnknownClass      = fmt.Errorf("unknown resource class")
	ErrProcessNotFound   = fmt.Errorf("process not found")
	ErrLimitExceeded     = fmt.Errorf("resource limit exceeded")
	ErrNotTerminated     = fmt.Errorf("process is not terminated")
	ErrProcessTerminated = fmt.Errorf("process is terminated")
	ErrWorkerPanic       = fmt.Errorf("worker panic")
)
