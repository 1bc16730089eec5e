// Package apierror provides the error taxonomy and response envelopes for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import "net/http"

// Kind classifies a business error. Every service-level failure carries one;
// anything without a Kind is an infrastructure error and surfaces as an
// opaque internal-server response.
type Kind string

const (
	KindValidation          Kind = "error_validacion"
	KindNotFound            Kind = "no_encontrado"
	KindInsufficientStock   Kind = "stock_insuficiente"
	KindInvalidTransfer     Kind = "transferencia_invalida"
	KindCreditLimitExceeded Kind = "limite_credito_excedido"
	KindInvalidPayment      Kind = "monto_abono_invalido"
	KindRegisterAlreadyOpen Kind = "caja_ya_abierta"
	KindRegisterClosed      Kind = "caja_ya_cerrada"
	KindNoOpenRegister      Kind = "sin_caja_abierta"
	KindNotCreditSale       Kind = "venta_no_credito"
	KindAlreadyPaid         Kind = "venta_ya_pagada"
	KindForbidden           Kind = "permisos_insuficientes"
	KindServer              Kind = "error_interno"
)

// Error is the canonical business error. It implements the error interface
// so services can return it directly; handlers translate it to HTTP.
type Error struct {
	Kind   Kind   `json:"codigo"`
	Detail string `json:"detail"`
}

func (e *Error) Error() string { return e.Detail }

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// AsError extracts an *Error from any error, wrapping unknown errors
// (infrastructure failures) into an opaque KindServer so that internal
// detail never reaches the client.
func AsError(err error) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Kind: KindServer, Detail: "Error interno del servidor"}
}

// HTTPStatus maps an error Kind to its HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindInsufficientStock, KindInvalidTransfer,
		KindCreditLimitExceeded, KindInvalidPayment, KindRegisterAlreadyOpen,
		KindRegisterClosed, KindNoOpenRegister, KindNotCreditSale, KindAlreadyPaid:
		return http.StatusBadRequest
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the flat envelope used by middleware responses that sit outside
// the Kind taxonomy (auth, rate limiting, panics).
type APIError struct {
	Detail string `json:"detail"`
}

func NewPlain(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors from request binding.
type ValidationError struct {
	Kind   Kind              `json:"codigo"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Kind: KindValidation, Detail: "Error de validacion", Fields: fields}
}
