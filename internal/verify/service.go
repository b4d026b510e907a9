package verify

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"smsledger/internal/core"
	"smsledger/internal/ledger"
	"smsledger/internal/log"
)

// ErrCodeMismatch covers every failed confirmation: wrong code, expired
// code, or no verification in flight. Callers get one answer so the
// response never leaks which codes exist.
var ErrCodeMismatch = errors.New("verification code invalid or expired")

type Service struct {
	codes  CodeStore
	store  ledger.Store
	ttl    time.Duration
	logger *log.Logger
}

func NewService(codes CodeStore, store ledger.Store, ttl time.Duration, logger *log.Logger) *Service {
	return &Service{
		codes:  codes,
		store:  store,
		ttl:    ttl,
		logger: logger.WithComponent(log.ComponentVerify),
	}
}

// StartVerification generates a fresh code for the phone and stores it
// for the configured TTL. The code is returned so the caller can
// deliver it out of band; restarting replaces any earlier code.
func (s *Service) StartVerification(ctx context.Context, phone string) (string, error) {
	normalized := core.NormalizePhone(phone)
	if normalized == "" {
		return "", core.ErrEmptyPhone
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}
	s.codes.Put(normalized, code, s.ttl)

	s.logger.InfoContext(ctx, "verification started",
		log.FieldPhone, log.MaskPhone(normalized))
	return code, nil
}

// Confirm checks the code for the phone and links it to an account. A
// positive accountID links the phone to that account; zero creates a
// fresh account seeded with the standard categories. Reading the code
// consumes it, so a failed attempt requires starting over.
func (s *Service) Confirm(ctx context.Context, phone, code string, accountID int64) (core.Account, error) {
	normalized := core.NormalizePhone(phone)
	if normalized == "" {
		return core.Account{}, core.ErrEmptyPhone
	}

	stored, ok := s.codes.GetAndConsume(normalized)
	if !ok || stored != code {
		s.logger.WarnContext(ctx, "verification failed",
			log.FieldPhone, log.MaskPhone(normalized))
		return core.Account{}, ErrCodeMismatch
	}

	if accountID > 0 {
		if err := s.store.LinkPhone(ctx, accountID, normalized); err != nil {
			return core.Account{}, fmt.Errorf("link phone: %w", err)
		}
		s.logger.InfoContext(ctx, "phone linked",
			log.FieldPhone, log.MaskPhone(normalized),
			log.FieldAccountID, accountID)
		return core.Account{ID: accountID, Phone: normalized}, nil
	}

	acct, err := s.store.CreateAccount(ctx, normalized)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	s.logger.InfoContext(ctx, "account created",
		log.FieldPhone, log.MaskPhone(normalized),
		log.FieldAccountID, acct.ID)
	return acct, nil
}

// generateCode draws six decimal digits from crypto/rand.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
