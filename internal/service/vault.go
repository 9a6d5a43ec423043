package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldstock-api/internal/model"
	"fieldstock-api/internal/repository"
	"fieldstock-api/pkg/secret"
	"fieldstock-api/pkg/uid"
)

// ErrVaultFieldsRequired indicates a vault entry is missing client or system.
var ErrVaultFieldsRequired = errors.New("vault entry requires client and system")

// VaultService stores client credentials with the secret encrypted at rest.
type VaultService struct {
	repo repository.VaultRepository
	box  *secret.Box
}

// NewVaultService creates a vault service. The encryption box is required;
// the vault never stores plaintext secrets.
func NewVaultService(repo repository.VaultRepository, box *secret.Box) *VaultService {
	if repo == nil || box == nil {
		return nil
	}
	return &VaultService{repo: repo, box: box}
}

// List returns all entries with secrets decrypted.
func (s *VaultService) List(ctx context.Context) ([]model.VaultEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vault entries: %w", err)
	}

	for i := range entries {
		if err := s.decrypt(&entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// Get returns one entry with the secret decrypted.
func (s *VaultService) Get(ctx context.Context, id string) (*model.VaultEntry, error) {
	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.decrypt(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Create validates, encrypts and stores a new entry.
func (s *VaultService) Create(ctx context.Context, entry *model.VaultEntry) error {
	entry.Client = strings.TrimSpace(entry.Client)
	entry.System = strings.TrimSpace(entry.System)
	if entry.Client == "" || entry.System == "" {
		return ErrVaultFieldsRequired
	}

	entry.ID = uid.New()
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	if err := s.encrypt(entry); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to create vault entry: %w", err)
	}

	// Hand the caller back what it sent, not ciphertext.
	return s.decrypt(entry)
}

// Update replaces an entry, re-encrypting the secret.
func (s *VaultService) Update(ctx context.Context, entry *model.VaultEntry) error {
	entry.Client = strings.TrimSpace(entry.Client)
	entry.System = strings.TrimSpace(entry.System)
	if entry.Client == "" || entry.System == "" {
		return ErrVaultFieldsRequired
	}

	existing, err := s.repo.Get(ctx, entry.ID)
	if err != nil {
		return err
	}
	entry.CreatedAt = existing.CreatedAt
	entry.UpdatedAt = time.Now()

	if err := s.encrypt(entry); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return fmt.Errorf("failed to update vault entry: %w", err)
	}
	return s.decrypt(entry)
}

// Delete removes an entry.
func (s *VaultService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *VaultService) encrypt(entry *model.VaultEntry) error {
	if entry.Secret == "" {
		return nil
	}
	sealed, err := s.box.Seal(entry.Secret)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret: %w", err)
	}
	entry.Secret = sealed
	return nil
}

func (s *VaultService) decrypt(entry *model.VaultEntry) error {
	if entry.Secret == "" {
		return nil
	}
	plain, err := s.box.Open(entry.Secret)
	if err != nil {
		return fmt.Errorf("failed to decrypt secret for entry %s: %w", entry.ID, err)
	}
	entry.Secret = plain
	return nil
}
