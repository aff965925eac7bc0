package connection

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"agenthub/services/channel-api/internal/utils/platformerrors"
)

// Decryptor opens sealed credential blobs.
type Decryptor interface {
	DecryptString(ciphertext string) (string, error)
}

// Service resolves send credentials for a connection. Decrypted secrets are
// returned to the caller and never logged.
type Service struct {
	repo      Repository
	decryptor Decryptor
	log       zerolog.Logger
}

func NewService(repo Repository, decryptor Decryptor, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		decryptor: decryptor,
		log:       log.With().Str("component", "connection-service").Logger(),
	}
}

// Get fetches the connection row without touching secret material.
func (s *Service) Get(ctx context.Context, id string) (*Connection, error) {
	return s.repo.GetByID(ctx, id)
}

// ResolveCredentials fetches and decrypts the connection's secret blob.
// A missing connection and an undecryptable blob are distinct error kinds so
// operators can tell configuration gaps from corruption.
func (s *Service) ResolveCredentials(ctx context.Context, id string) (*Connection, *Credentials, error) {
	conn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if conn.Status != StatusActive {
		return nil, nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeCredential,
			"connection is not active",
			nil,
			"5c1d9e2a-7f4b-4e6c-9a8d-3b2e1f0c4d5e",
		)
	}

	if conn.EncryptedCredentials == "" {
		return nil, nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeCredential,
			"connection has no stored credentials",
			nil,
			"6d2e0f3b-8a5c-4f7d-0b9e-4c3f2a1d5e6f",
		)
	}

	plaintext, err := s.decryptor.DecryptString(conn.EncryptedCredentials)
	if err != nil {
		s.log.Error().Str("connection_id", id).Msg("credential blob failed to decrypt")
		return nil, nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeCredential,
			"failed to decrypt connection credentials",
			err,
			"7e3f1a4c-9b6d-4a8e-1c0f-5d4a3b2e6f7a",
		)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(plaintext), &creds); err != nil {
		return nil, nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeCredential,
			"credential blob is not valid JSON",
			err,
			"8f4a2b5d-0c7e-4b9f-2d1a-6e5b4c3f7a8b",
		)
	}

	return conn, &creds, nil
}
