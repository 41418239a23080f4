package store

import "errors"

var (
	// ErrGuestUnavailable means the probe failed: the guest cannot be
	// reached at all, so no write was attempted.
	ErrGuestUnavailable = errors.New("guest unavailable")
	// ErrWriteFailed means every write strategy was exhausted.
	ErrWriteFailed = errors.New("manifest write failed")
	// ErrVerificationFailed means the write reported success but the
	// independent existence check disagreed.
	ErrVerificationFailed = errors.New("manifest write verification failed")
	// ErrValidationFailed means the manifest parsed but failed schema
	// validation. Only surfaced by ReadValidated; the default read path
	// tolerates schema-invalid manifests.
	ErrValidationFailed = errors.New("manifest failed schema validation")
)
