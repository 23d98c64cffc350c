package report

import (
	"errors"
	"fmt"
)

// Error kinds of the export pipeline. Match them with errors.Is.
var (
	ErrInvalidRequest = errors.New("invalid export request")
	ErrNoData         = errors.New("no data to export")
	ErrNoMatch        = errors.New("no records for date")
	ErrUpstream       = errors.New("record store failure")
	ErrEncoding       = errors.New("spreadsheet encoding failure")
)

// ExportError is a pipeline failure with a message fit for API callers.
type ExportError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *ExportError) Error() string {
	return e.Message
}

func (e *ExportError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// NoData reports an empty record store.
func NoData() *ExportError {
	return &ExportError{Kind: ErrNoData, Message: "No hay datos para exportar"}
}

// NoMatch reports that no record matched the date filter.
func NoMatch(date string) *ExportError {
	return &ExportError{Kind: ErrNoMatch, Message: fmt.Sprintf("No hay registros para la fecha %s", date)}
}

// InvalidDate reports a date filter that is not a YYYY-MM-DD calendar date.
func InvalidDate(date string) *ExportError {
	return &ExportError{
		Kind:    ErrInvalidRequest,
		Message: fmt.Sprintf("Fecha inválida %q, use el formato AAAA-MM-DD", date),
	}
}

// Upstream wraps a record store failure. The cause stays out of the message.
func Upstream(err error) *ExportError {
	return &ExportError{Kind: ErrUpstream, Message: "No se pudo leer la base de datos", Cause: err}
}

// Encoding wraps a spreadsheet serialization failure.
func Encoding(err error) *ExportError {
	return &ExportError{Kind: ErrEncoding, Message: "No se pudo generar el archivo Excel", Cause: err}
}
