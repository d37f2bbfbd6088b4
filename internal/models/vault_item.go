package models

import "time"

// VaultItem is one envelope-encrypted credential. The plaintext secret exists
// only inside a request that successfully decrypts; it is never stored.
type VaultItem struct {
	UserID           string     `db:"user_id" json:"userId"`
	ItemID           string     `db:"item_id" json:"itemId"`
	Name             string     `db:"name" json:"name"`
	Username         string     `db:"username" json:"username,omitempty"`
	SecretCiphertext string     `db:"secret_ciphertext" json:"-"`
	EncryptedDEK     string     `db:"encrypted_dek" json:"-"`
	KeyID            string     `db:"key_id" json:"-"`
	EncVersion       string     `db:"enc_version" json:"-"`
	Notes            string     `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        *time.Time `db:"updated_at" json:"updatedAt,omitempty"`
}
