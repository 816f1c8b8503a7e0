package store

import (
	"time"

	"github.com/tolutally/matchbox-web/internal/models"
	"github.com/tolutally/matchbox-web/internal/util"

	"gorm.io/gorm"
)

// AuditFilter narrows an audit query. Zero fields match everything.
type AuditFilter struct {
	EventType    models.EventType
	Severity     models.EventSeverity
	ResourceType models.ResourceType
	ActorIP      string
	Success      *bool
	// Token matches entries about one demo token. Entries only store the
	// masked id, so distinct tokens sharing a prefix also match.
	Token  string
	Search string
	Since  time.Time
	Until  time.Time
}

func (f AuditFilter) apply(q *gorm.DB) *gorm.DB {
	eq := map[string]string{
		"event_type":    string(f.EventType),
		"severity":      string(f.Severity),
		"resource_type": string(f.ResourceType),
		"actor_ip":      f.ActorIP,
	}
	for col, v := range eq {
		if v != "" {
			q = q.Where(col+" = ?", v)
		}
	}
	if f.Token != "" {
		q = q.Where("resource_type = ? AND resource_id = ?",
			models.ResourceDemoToken, util.MaskToken(f.Token))
	}
	if f.Success != nil {
		q = q.Where("success = ?", *f.Success)
	}
	if !f.Since.IsZero() {
		q = q.Where("event_time >= ?", f.Since)
	}
	if !f.Until.IsZero() {
		q = q.Where("event_time <= ?", f.Until)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("(action LIKE ? OR error_message LIKE ?)", like, like)
	}
	return q
}

// AuditStats summarizes the trail over a time range.
type AuditStats struct {
	TotalEvents      int64                          `json:"total_events"`
	SuccessCount     int64                          `json:"success_count"`
	FailureCount     int64                          `json:"failure_count"`
	EventsByType     map[models.EventType]int64     `json:"events_by_type"`
	EventsBySeverity map[models.EventSeverity]int64 `json:"events_by_severity"`
}
