package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tolutally/matchbox-web/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store persists the audit trail through GORM.
type Store struct {
	db *gorm.DB
}

func New(ctx context.Context, driver, dsn string) (*Store, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&models.AuditLog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate audit schema: %w", err)
	}

	slog.Info("Audit store ready", "driver", driver)
	return &Store{db: db}, nil
}

// CreateAuditLog writes one entry.
func (s *Store) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(log).Error
}

// CreateAuditLogBatch writes entries in a single statement.
func (s *Store) CreateAuditLogBatch(ctx context.Context, logs []*models.AuditLog) error {
	if len(logs) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(logs, 100).Error
}

// ListAuditLogs returns one page of entries matching f, newest first.
func (s *Store) ListAuditLogs(ctx context.Context, p Page, f AuditFilter) ([]models.AuditLog, PageInfo, error) {
	scope := func() *gorm.DB {
		return f.apply(s.db.WithContext(ctx).Model(&models.AuditLog{}))
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, PageInfo{}, err
	}

	logs := make([]models.AuditLog, 0, p.Size)
	err := scope().
		Order("event_time DESC").
		Offset(p.offset()).
		Limit(p.Size).
		Find(&logs).Error
	if err != nil {
		return nil, PageInfo{}, err
	}
	return logs, pageInfo(total, p), nil
}

// DeleteOldAuditLogs removes entries created before cutoff.
func (s *Store) DeleteOldAuditLogs(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.AuditLog{})
	return result.RowsAffected, result.Error
}

// AuditStats aggregates entries between start and end.
func (s *Store) AuditStats(ctx context.Context, start, end time.Time) (AuditStats, error) {
	stats := AuditStats{
		EventsByType:     make(map[models.EventType]int64),
		EventsBySeverity: make(map[models.EventSeverity]int64),
	}
	scope := func() *gorm.DB {
		return s.db.WithContext(ctx).
			Model(&models.AuditLog{}).
			Where("event_time BETWEEN ? AND ?", start, end)
	}

	if err := scope().Count(&stats.TotalEvents).Error; err != nil {
		return stats, err
	}
	if err := scope().Where("success = ?", true).Count(&stats.SuccessCount).Error; err != nil {
		return stats, err
	}
	stats.FailureCount = stats.TotalEvents - stats.SuccessCount

	var byType []struct {
		EventType models.EventType
		Count     int64
	}
	if err := scope().Select("event_type, COUNT(*) AS count").
		Group("event_type").
		Scan(&byType).Error; err != nil {
		return stats, err
	}
	for _, row := range byType {
		stats.EventsByType[row.EventType] = row.Count
	}

	var bySeverity []struct {
		Severity models.EventSeverity
		Count    int64
	}
	if err := scope().Select("severity, COUNT(*) AS count").
		Group("severity").
		Scan(&bySeverity).Error; err != nil {
		return stats, err
	}
	for _, row := range bySeverity {
		stats.EventsBySeverity[row.Severity] = row.Count
	}

	return stats, nil
}

// Health pings the database.
func (s *Store) Health(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

