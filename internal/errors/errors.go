// Package errors defines the domain error taxonomy shared by services
// and handlers.
package errors

// DomainError is a stable, user-presentable error with a machine code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}
