package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type EventType string

const (
	EventTokenGenerated        EventType = "TOKEN_GENERATED"
	EventTokenConsumed         EventType = "TOKEN_CONSUMED"
	EventTokenValidationFailed EventType = "TOKEN_VALIDATION_FAILED"
	EventTokenFallbackAccepted EventType = "TOKEN_FALLBACK_ACCEPTED"
	EventTokensDeleted         EventType = "TOKENS_DELETED"

	EventAdminAuthFailure EventType = "ADMIN_AUTH_FAILURE"
	EventAuditLogViewed   EventType = "AUDIT_LOG_VIEWED"

	EventLeadSubmitted EventType = "LEAD_SUBMITTED"
	EventLeadRejected  EventType = "LEAD_REJECTED"

	EventRateLimitExceeded EventType = "RATE_LIMIT_EXCEEDED"
)

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "INFO"
	SeverityWarning  EventSeverity = "WARNING"
	SeverityError    EventSeverity = "ERROR"
	SeverityCritical EventSeverity = "CRITICAL"
)

// ResourceType names what an audit entry is about.
type ResourceType string

const (
	ResourceDemoToken ResourceType = "DEMO_TOKEN"
	ResourceLead      ResourceType = "LEAD"
	ResourceAuditLog  ResourceType = "AUDIT_LOG"
	ResourceEndpoint  ResourceType = "ENDPOINT"
)

// AuditDetails is free-form event context, stored as a JSON column.
type AuditDetails map[string]any

func (a AuditDetails) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil //nolint:nilnil // SQL NULL
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode audit details: %w", err)
	}
	return string(b), nil
}

func (a *AuditDetails) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("decode audit details: unsupported column type %T", src)
	}

	var d AuditDetails
	if err := json.Unmarshal(raw, &d); err != nil {
		return fmt.Errorf("decode audit details: %w", err)
	}
	*a = d
	return nil
}

// AuditLog is one immutable audit trail entry. Demo token ids are stored
// masked in ResourceID; Actor is "admin", "visitor" or "system".
type AuditLog struct {
	ID        string        `gorm:"primaryKey;type:varchar(36)"     json:"id"`
	EventType EventType     `gorm:"type:varchar(50);index;not null" json:"event_type"`
	EventTime time.Time     `gorm:"index;not null"                  json:"event_time"`
	Severity  EventSeverity `gorm:"type:varchar(20);not null"       json:"severity"`

	Actor   string `gorm:"type:varchar(20)"       json:"actor"`
	ActorIP string `gorm:"type:varchar(45);index" json:"actor_ip"`

	ResourceType ResourceType `gorm:"type:varchar(50);index" json:"resource_type"`
	ResourceID   string       `gorm:"type:varchar(64);index" json:"resource_id"`

	Action       string       `gorm:"type:varchar(255);not null" json:"action"`
	Details      AuditDetails `gorm:"type:json"                  json:"details"`
	Success      bool         `gorm:"index;not null"             json:"success"`
	ErrorMessage string       `gorm:"type:text"                  json:"error_message,omitempty"`

	UserAgent     string `gorm:"type:varchar(500)" json:"user_agent,omitempty"`
	RequestPath   string `gorm:"type:varchar(500)" json:"request_path,omitempty"`
	RequestMethod string `gorm:"type:varchar(10)"  json:"request_method,omitempty"`

	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
