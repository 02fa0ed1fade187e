package repository

import (
	"context"
	"errors"
	"time"

	"recruithub/internal/domain"
	hub_errors "recruithub/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *PostgresNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Notification, error) {
	var n domain.Notification
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Notification{}, hub_errors.ErrNotFound
		}
		return domain.Notification{}, err
	}
	return n, nil
}

func (r *PostgresNotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, page, limit int, unreadOnly bool) ([]domain.Notification, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	q := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("recipient_id = ?", recipientID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Notification
	err := q.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresNotificationRepository) ListUnreadSince(ctx context.Context, recipientID uuid.UUID, since time.Time, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var items []domain.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND is_read = ? AND created_at > ?", recipientID, false, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id, recipientID uuid.UUID, at time.Time) (domain.Notification, error) {
	var n domain.Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&n).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Notification{}, hub_errors.ErrNotFound
		}
		return domain.Notification{}, err
	}
	if n.IsRead {
		// Already read: no-op, ReadAt stays at the original transition time.
		return n, nil
	}

	res := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", id, recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	if res.Error != nil {
		return domain.Notification{}, res.Error
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *PostgresNotificationRepository) Delete(ctx context.Context, id, recipientID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&domain.Notification{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return hub_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) Clear(ctx context.Context, recipientID uuid.UUID, readOnly bool) (int64, error) {
	q := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID)
	if readOnly {
		q = q.Where("is_read = ?", true)
	}
	res := q.Delete(&domain.Notification{})
	return res.RowsAffected, res.Error
}

func (r *PostgresNotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (r *PostgresNotificationRepository) Stats(ctx context.Context, recipientID uuid.UUID) (NotificationStats, error) {
	stats := NotificationStats{TypeStats: make(map[string]int64)}

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Notification{}).Where("recipient_id = ?", recipientID)
	}

	if err := base().Count(&stats.TotalCount).Error; err != nil {
		return stats, err
	}
	if err := base().Where("is_read = ?", false).Count(&stats.UnreadCount).Error; err != nil {
		return stats, err
	}

	startOfDay := time.Now().Truncate(24 * time.Hour)
	if err := base().Where("created_at >= ?", startOfDay).Count(&stats.TodayCount).Error; err != nil {
		return stats, err
	}

	type typeCount struct {
		Type  string
		Count int64
	}
	var rows []typeCount
	err := base().
		Select("type AS type, COUNT(*) AS count").
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return stats, err
	}
	for _, row := range rows {
		stats.TypeStats[row.Type] = row.Count
	}
	return stats, nil
}
