// Package errs defines the error kinds shared across the light-wallet
// backend: storage, chain-sync, the scanner, and the REST/CLI boundaries
// all classify failures through this single taxonomy so callers can branch
// on "what kind of thing went wrong" without string matching.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error without pinning it to a specific Go type.
type Kind string

// Domain errors: violations of the account/request state machine.
const (
	KindAccountExists     Kind = "account_exists"
	KindAccountMax        Kind = "account_max"
	KindAccountNotFound   Kind = "account_not_found"
	KindBadAddress        Kind = "bad_address"
	KindBadViewKey        Kind = "bad_view_key"
	KindBadBlockchain     Kind = "bad_blockchain"
	KindBadClientTx       Kind = "bad_client_tx"
	KindBadDaemonResponse Kind = "bad_daemon_response"
	KindBlockchainReorg   Kind = "blockchain_reorg"
	KindCreateQueueMax    Kind = "create_queue_max"
	KindDuplicateRequest  Kind = "duplicate_request"
)

// Crypto errors.
const (
	KindCryptoFailure Kind = "crypto_failure"
	KindNotEnoughMixin Kind = "not_enough_mixin"
)

// Transport errors.
const (
	KindDaemonTimeout Kind = "daemon_timeout"
	KindTxRelayFailed Kind = "tx_relay_failed"
	KindStatusFailed  Kind = "status_failed"
	KindHTTPServer    Kind = "http_server"
)

// Limit errors.
const (
	KindExceededBlockchainBuffer  Kind = "exceeded_blockchain_buffer"
	KindExceededRestRequestLimit Kind = "exceeded_rest_request_limit"
)

// Control signals raised inside the scanner supervisor. These are not
// failures; they unwind a worker goroutine on purpose.
const (
	KindSignalAbortProcess Kind = "signal_abort_process"
	KindSignalAbortScan    Kind = "signal_abort_scan"
	KindSignalUnknown      Kind = "signal_unknown"
)

// Configuration errors.
const (
	KindConfiguration          Kind = "configuration"
	KindSystemClockInvalidRange Kind = "system_clock_invalid_range"
)

// Error is the concrete error type carried through the codebase. Cause may
// be nil; Kind alone is sometimes enough context (e.g. control signals).
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		if e.Message != "" {
			return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
		}
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an *Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error carrying cause, or returns nil if cause is nil.
func Wrap(kind Kind, cause error, message string) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Is reports whether err is, or wraps, an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the Kind from err, returning ok=false if err does not
// carry one.
func KindOf(err error) (kind Kind, ok bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// HTTPStatus maps a Kind to the status code the REST layer should answer
// with, per §6.2's response-code table. Kinds with no explicit entry fall
// back to 500.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindAccountNotFound, KindDuplicateRequest, KindBadViewKey, KindAccountExists, KindAccountMax, KindCreateQueueMax:
		return 403
	case KindBadAddress, KindBadClientTx, KindBadBlockchain, KindNotEnoughMixin, KindExceededRestRequestLimit:
		return 400
	case KindDaemonTimeout, KindStatusFailed:
		return 503
	case KindTxRelayFailed:
		return 502
	default:
		return 500
	}
}

// Retryable reports whether the scanner supervisor should treat err as a
// transient condition warranting a worker restart rather than a fatal
// invariant failure.
func Retryable(err error) bool {
	kind, ok := KindOf(err)
	if !ok {
		return false
	}
	switch kind {
	case KindDaemonTimeout, KindBlockchainReorg, KindBadDaemonResponse,
		KindStatusFailed, KindTxRelayFailed:
		return true
	default:
		return false
	}
}
