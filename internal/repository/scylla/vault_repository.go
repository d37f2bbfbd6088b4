package scylla

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"privacyguard/internal/models"
	"privacyguard/internal/util"
)

// VaultRepository stores envelope-encrypted credentials. Ciphertext only;
// decryption happens in the service layer.
type VaultRepository interface {
	CreateItem(ctx context.Context, item *models.VaultItem) error
	GetItem(ctx context.Context, userID, itemID string) (*models.VaultItem, error)
	ListItems(ctx context.Context, userID string) ([]*models.VaultItem, error)
	DeleteItem(ctx context.Context, userID, itemID string) error
}

type vaultRepository struct {
	client *ScyllaClient
}

func NewVaultRepository(client *ScyllaClient) VaultRepository {
	return &vaultRepository{client: client}
}

func (r *vaultRepository) CreateItem(ctx context.Context, item *models.VaultItem) error {
	if item.ItemID == "" {
		item.ItemID = uuid.New().String()
	}

	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = &now

	query := r.client.Query(r.client.Stmts.CreateVaultItem,
		item.UserID, item.ItemID, item.Name, item.Username,
		item.SecretCiphertext, item.EncryptedDEK, item.KeyID, item.EncVersion,
		item.Notes, item.CreatedAt, now,
	).WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		util.Error("Failed to create vault item",
			zap.String("user_id", item.UserID),
			zap.String("item_id", item.ItemID),
			zap.Error(err))
		return fmt.Errorf("failed to create vault item: %w", err)
	}

	util.Info("Vault item created",
		zap.String("user_id", item.UserID),
		zap.String("item_id", item.ItemID))

	return nil
}

func (r *vaultRepository) GetItem(ctx context.Context, userID, itemID string) (*models.VaultItem, error) {
	item := &models.VaultItem{}

	query := r.client.Query(r.client.Stmts.GetVaultItem, userID, itemID).WithContext(ctx)

	err := r.client.ScanWithRetry(query,
		&item.UserID, &item.ItemID, &item.Name, &item.Username,
		&item.SecretCiphertext, &item.EncryptedDEK, &item.KeyID,
		&item.EncVersion, &item.Notes, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		if errors.Is(err, gocql.ErrNotFound) {
			return nil, fmt.Errorf("vault item %q: %w", itemID, ErrNotFound)
		}
		util.Error("Failed to get vault item",
			zap.String("user_id", userID),
			zap.String("item_id", itemID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get vault item: %w", err)
	}

	return item, nil
}

func (r *vaultRepository) ListItems(ctx context.Context, userID string) ([]*models.VaultItem, error) {
	query := r.client.Query(r.client.Stmts.ListVaultItems, userID).WithContext(ctx)

	iter := query.Iter()

	var items []*models.VaultItem
	for {
		item := &models.VaultItem{}
		if !iter.Scan(
			&item.UserID, &item.ItemID, &item.Name, &item.Username,
			&item.SecretCiphertext, &item.EncryptedDEK, &item.KeyID,
			&item.EncVersion, &item.Notes, &item.CreatedAt, &item.UpdatedAt) {
			break
		}
		items = append(items, item)
	}

	if err := iter.Close(); err != nil {
		util.Error("Failed to list vault items",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list vault items: %w", err)
	}

	return items, nil
}

func (r *vaultRepository) DeleteItem(ctx context.Context, userID, itemID string) error {
	if _, err := r.GetItem(ctx, userID, itemID); err != nil {
		return err
	}

	query := r.client.Query(r.client.Stmts.DeleteVaultItem, userID, itemID).WithContext(ctx)

	if err := r.client.ExecuteWithRetry(query, 2); err != nil {
		util.Error("Failed to delete vault item",
			zap.String("user_id", userID),
			zap.String("item_id", itemID),
			zap.Error(err))
		return fmt.Errorf("failed to delete vault item: %w", err)
	}

	util.Info("Vault item deleted",
		zap.String("user_id", userID),
		zap.String("item_id", itemID))

	return nil
}
