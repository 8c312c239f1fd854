package models

import "time"

// NotificationPreference stores a tenant's email notification settings.
// Absence of a row means "send everything" (opt-out model). Nil flags default
// to true; an explicit false on EmailEnabled suppresses every event type.
type NotificationPreference struct {
	ID     string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID string `gorm:"column:user_id;type:varchar(64);not null;uniqueIndex" json:"user_id"`
	// Email is the delivery address for transactional mail.
	Email        string `gorm:"column:email;type:varchar(255)" json:"email"`
	EmailEnabled *bool  `gorm:"column:email_enabled;default:null" json:"email_enabled"`

	StatusChange        *bool `gorm:"column:status_change;default:null" json:"status_change"`
	RenewalDue          *bool `gorm:"column:renewal_due;default:null" json:"renewal_due"`
	CancellationOutcome *bool `gorm:"column:cancellation_outcome;default:null" json:"cancellation_outcome"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (NotificationPreference) TableName() string { return "notification_preference" }
