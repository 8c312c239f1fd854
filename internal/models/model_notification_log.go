package models

import "time"

// NotificationLog records every attempted transactional send. The gate uses
// the latest successful row per (user, event) as its dedup watermark.
type NotificationLog struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(64);not null;index:idx_user_event,priority:1" json:"user_id"`
	EventType string    `gorm:"column:event_type;type:varchar(64);not null;index:idx_user_event,priority:2" json:"event_type"`
	TraceID   string    `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	Sent      bool      `gorm:"column:sent;not null" json:"sent"`
	Reason    string    `gorm:"column:reason;type:varchar(255)" json:"reason"`
	SentAt    time.Time `gorm:"column:sent_at" json:"sent_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (NotificationLog) TableName() string { return "notification_log" }
