package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"privacyguard/internal/encryption"
	"privacyguard/internal/models"
	"privacyguard/internal/repository/scylla"
	"privacyguard/internal/util"
)

// ErrVaultSealed reports a secret that exists but cannot be decrypted. The
// operation fails; a partially readable item is never returned.
var ErrVaultSealed = errors.New("vault item cannot be decrypted")

// VaultService stores user credentials under envelope encryption. Plaintext
// secrets exist only inside a request.
type VaultService struct {
	vaultRepo     scylla.VaultRepository
	encryptionMgr *encryption.EncryptionManager
}

// VaultItemRequest carries a new credential to store.
type VaultItemRequest struct {
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	Secret   string `json:"secret"`
	Notes    string `json:"notes,omitempty"`
}

// VaultItemResponse is a decrypted item returned from a get.
type VaultItemResponse struct {
	Item   *models.VaultItem `json:"item"`
	Secret string            `json:"secret"`
}

func NewVaultService(vaultRepo scylla.VaultRepository, encryptionMgr *encryption.EncryptionManager) *VaultService {
	return &VaultService{
		vaultRepo:     vaultRepo,
		encryptionMgr: encryptionMgr,
	}
}

func (s *VaultService) CreateItem(ctx context.Context, userID string, req *VaultItemRequest) (*models.VaultItem, error) {
	if req == nil || req.Name == "" {
		return nil, fmt.Errorf("%w: item name is required", ErrInvalidInput)
	}
	if req.Secret == "" {
		return nil, fmt.Errorf("%w: secret is required", ErrInvalidInput)
	}

	sealed, err := s.encryptionMgr.EncryptField(ctx, req.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt secret: %w", err)
	}

	item := &models.VaultItem{
		UserID:           userID,
		Name:             util.SanitizeInput(req.Name),
		Username:         req.Username,
		SecretCiphertext: sealed.EncryptedValue,
		EncryptedDEK:     sealed.EncryptedDEK,
		KeyID:            sealed.KeyID,
		EncVersion:       sealed.Version,
		Notes:            req.Notes,
	}

	if err := s.vaultRepo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// GetItem fetches and decrypts one credential. A decryption failure is
// surfaced as ErrVaultSealed, never as an empty secret.
func (s *VaultService) GetItem(ctx context.Context, userID, itemID string) (*VaultItemResponse, error) {
	item, err := s.vaultRepo.GetItem(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, scylla.ErrNotFound) {
			return nil, fmt.Errorf("%w: vault item %q", ErrNotFound, itemID)
		}
		return nil, err
	}

	secret, err := s.encryptionMgr.DecryptField(ctx, &encryption.EncryptedData{
		EncryptedValue: item.SecretCiphertext,
		EncryptedDEK:   item.EncryptedDEK,
		KeyID:          item.KeyID,
		Version:        item.EncVersion,
	})
	if err != nil {
		util.Error("Failed to decrypt vault item",
			zap.String("user_id", userID),
			zap.String("item_id", itemID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrVaultSealed, err)
	}

	return &VaultItemResponse{
		Item:   item,
		Secret: secret,
	}, nil
}

// ListItems returns item metadata only; secrets stay sealed.
func (s *VaultService) ListItems(ctx context.Context, userID string) ([]*models.VaultItem, error) {
	items, err := s.vaultRepo.ListItems(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.VaultItem{}
	}
	return items, nil
}

func (s *VaultService) DeleteItem(ctx context.Context, userID, itemID string) error {
	err := s.vaultRepo.DeleteItem(ctx, userID, itemID)
	if err != nil && errors.Is(err, scylla.ErrNotFound) {
		return fmt.Errorf("%w: vault item %q", ErrNotFound, itemID)
	}
	return err
}
