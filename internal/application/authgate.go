package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/votebooth/internal/domain/model"
	"github.com/ericfisherdev/votebooth/internal/domain/port/driven"
)

// AuthService is the PIN gate. It validates the PIN format locally, verifies
// it against the backend, and persists the credential only when the voter may
// actually proceed.
type AuthService struct {
	store     driven.SessionStore
	api       driven.VotingAPI
	pinLength int
}

// NewAuthService creates an AuthService. pinLength is the required number of
// digits for a well-formed PIN.
func NewAuthService(store driven.SessionStore, api driven.VotingAPI, pinLength int) *AuthService {
	return &AuthService{store: store, api: api, pinLength: pinLength}
}

// Verify checks a PIN. Malformed input is rejected with ErrMalformedPIN before
// any network call. A well-formed but unrecognized PIN is not an error: the
// returned result carries Valid=false. On a valid, unspent PIN the credential
// is persisted; on a spent PIN the session is marked voted so the terminal
// state survives reloads.
func (s *AuthService) Verify(ctx context.Context, pin string) (model.VerifyResult, error) {
	pin = strings.TrimSpace(pin)
	if !wellFormedPIN(pin, s.pinLength) {
		return model.VerifyResult{}, ErrMalformedPIN
	}

	result, err := s.api.VerifyPIN(ctx, pin)
	if err != nil {
		return model.VerifyResult{}, fmt.Errorf("verify pin: %w", err)
	}

	if !result.Valid {
		return result, nil
	}

	if result.AlreadyVoted {
		if err := s.store.MarkVoted(ctx, time.Now().UTC()); err != nil {
			slog.Warn("could not persist voted marker", "error", err)
		}
		return result, nil
	}

	// Persisting must succeed before the flow advances: every protected page
	// re-reads the credential, and a phantom unlock would strand the voter.
	if err := s.store.SetCredential(ctx, pin); err != nil {
		return model.VerifyResult{}, fmt.Errorf("persist credential: %w", err)
	}

	return result, nil
}

// Authenticated reports whether a credential is persisted. This is the
// fail-closed guard every protected operation runs first.
func (s *AuthService) Authenticated(ctx context.Context) (bool, error) {
	pin, err := s.store.Credential(ctx)
	if err != nil {
		return false, fmt.Errorf("read credential: %w", err)
	}
	return pin != "", nil
}

// wellFormedPIN reports whether pin is exactly length ASCII digits.
func wellFormedPIN(pin string, length int) bool {
	if len(pin) != length {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}
