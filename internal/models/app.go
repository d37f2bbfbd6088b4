package models

import "time"

// TrackedApp is an application a user monitors for privacy risk. Owned by
// exactly one user; (UserID, AppName) is unique across active and inactive
// records. Soft-deleted via IsActive, hard-deleted only on full account purge.
type TrackedApp struct {
	AppBucket       int             `db:"app_bucket" json:"-"`
	UserID          string          `db:"user_id" json:"userId"`
	AppID           string          `db:"app_id" json:"appId"`
	AppName         string          `db:"app_name" json:"appName"`
	URL             string          `db:"url" json:"url,omitempty"`
	Domain          string          `db:"domain" json:"domain,omitempty"`
	Permissions     map[string]bool `db:"permissions" json:"permissions"`
	UserEmail       string          `db:"user_email" json:"userEmail,omitempty"`
	UserPhone       string          `db:"user_phone" json:"userPhoneNumber,omitempty"`
	RiskScore       int             `db:"risk_score" json:"riskScore"`
	RiskLevel       string          `db:"risk_level" json:"riskLevel"`
	BreachCount     int             `db:"breach_count" json:"breachCount"`
	BreachCheckedAt *time.Time      `db:"breach_checked_at" json:"breachCheckedAt,omitempty"`
	IsActive        bool            `db:"is_active" json:"isActive"`
	LastRiskCheck   *time.Time      `db:"last_risk_check" json:"lastRiskCheck,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt       *time.Time      `db:"updated_at" json:"updatedAt,omitempty"`
}
