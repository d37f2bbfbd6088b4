package models

import "time"

// EmailScan records one breach scan of an email address. Only the argon2
// digest of the address is kept; the raw address never reaches storage.
type EmailScan struct {
	UserID      string    `db:"user_id" json:"userId"`
	EmailDigest string    `db:"email_digest" json:"emailDigest"`
	BreachCount int       `db:"breach_count" json:"breachCount"`
	ScannedAt   time.Time `db:"scanned_at" json:"scannedAt"`
}
