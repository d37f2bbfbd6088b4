package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"privacyguard/internal/config"
	"privacyguard/internal/encryption"
	"privacyguard/internal/models"
	"privacyguard/internal/repository/scylla"
)

type fakeVaultRepo struct {
	mu    sync.Mutex
	items map[string]*models.VaultItem
	next  int
}

func newFakeVaultRepo() *fakeVaultRepo {
	return &fakeVaultRepo{items: make(map[string]*models.VaultItem)}
}

func (r *fakeVaultRepo) key(userID, itemID string) string {
	return userID + "/" + itemID
}

func (r *fakeVaultRepo) CreateItem(ctx context.Context, item *models.VaultItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ItemID == "" {
		r.next++
		item.ItemID = fmt.Sprintf("item-%d", r.next)
	}
	copied := *item
	r.items[r.key(item.UserID, item.ItemID)] = &copied
	return nil
}

func (r *fakeVaultRepo) GetItem(ctx context.Context, userID, itemID string) (*models.VaultItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[r.key(userID, itemID)]
	if !ok {
		return nil, scylla.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakeVaultRepo) ListItems(ctx context.Context, userID string) ([]*models.VaultItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.VaultItem
	for _, item := range r.items {
		if item.UserID == userID {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeVaultRepo) DeleteItem(ctx context.Context, userID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(userID, itemID)
	if _, ok := r.items[k]; !ok {
		return scylla.ErrNotFound
	}
	delete(r.items, k)
	return nil
}

func newTestVaultService(repo scylla.VaultRepository) *VaultService {
	cfg := &config.Config{}
	return NewVaultService(repo, encryption.NewEncryptionManager(cfg, nil))
}

func TestVaultCreateGetRoundTrip(t *testing.T) {
	repo := newFakeVaultRepo()
	svc := newTestVaultService(repo)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, testUser, &VaultItemRequest{
		Name:     "streaming",
		Username: "me@example.com",
		Secret:   "correct horse battery staple",
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if item.SecretCiphertext == "" || item.SecretCiphertext == "correct horse battery staple" {
		t.Error("secret was not encrypted at rest")
	}

	got, err := svc.GetItem(ctx, testUser, item.ItemID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Secret != "correct horse battery staple" {
		t.Errorf("decrypted secret = %q", got.Secret)
	}
}

func TestVaultCreateValidation(t *testing.T) {
	svc := newTestVaultService(newFakeVaultRepo())

	tests := []struct {
		name string
		req  *VaultItemRequest
	}{
		{"nil request", nil},
		{"missing name", &VaultItemRequest{Secret: "s"}},
		{"missing secret", &VaultItemRequest{Name: "n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateItem(context.Background(), testUser, tt.req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestVaultGetCorruptedCiphertext(t *testing.T) {
	repo := newFakeVaultRepo()
	svc := newTestVaultService(repo)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, testUser, &VaultItemRequest{Name: "bank", Secret: "pin1234"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	stored := repo.items[repo.key(testUser, item.ItemID)]
	stored.EncryptedDEK = "!!! not a key !!!"

	_, err = svc.GetItem(ctx, testUser, item.ItemID)
	if !errors.Is(err, ErrVaultSealed) {
		t.Fatalf("err = %v, want ErrVaultSealed", err)
	}
}

func TestVaultGetNotFound(t *testing.T) {
	svc := newTestVaultService(newFakeVaultRepo())

	_, err := svc.GetItem(context.Background(), testUser, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestVaultDelete(t *testing.T) {
	repo := newFakeVaultRepo()
	svc := newTestVaultService(repo)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, testUser, &VaultItemRequest{Name: "mail", Secret: "s3cret"})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if err := svc.DeleteItem(ctx, testUser, item.ItemID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if err := svc.DeleteItem(ctx, testUser, item.ItemID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestVaultListReturnsMetadataOnly(t *testing.T) {
	repo := newFakeVaultRepo()
	svc := newTestVaultService(repo)
	ctx := context.Background()

	if _, err := svc.CreateItem(ctx, testUser, &VaultItemRequest{Name: "a", Secret: "one"}); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if _, err := svc.CreateItem(ctx, testUser, &VaultItemRequest{Name: "b", Secret: "two"}); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	items, err := svc.ListItems(ctx, testUser)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
}
