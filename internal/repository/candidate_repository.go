package repository

import (
	"context"
	"errors"

	"recruithub/internal/domain"
	hub_errors "recruithub/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresCandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) CandidateRepository {
	return &PostgresCandidateRepository{db: db}
}

func (r *PostgresCandidateRepository) Create(ctx context.Context, c *domain.Candidate) error {
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return hub_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresCandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Candidate, error) {
	var c domain.Candidate
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Candidate{}, hub_errors.ErrNotFound
		}
		return domain.Candidate{}, err
	}
	return c, nil
}

func (r *PostgresCandidateRepository) List(ctx context.Context, page, limit int) ([]domain.Candidate, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Candidate{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.Candidate
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresCandidateRepository) Update(ctx context.Context, c *domain.Candidate) error {
	res := r.db.WithContext(ctx).Save(c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return hub_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresCandidateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Candidate{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return hub_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresCandidateRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Candidate{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresCandidateRepository) IncrementMessageCount(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("id = ?", id).
		UpdateColumn("message_count", gorm.Expr("message_count + ?", delta)).Error
}

func (r *PostgresCandidateRepository) RecountMessages(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("candidate_id = ?", id).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	err = r.db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Where("id = ?", id).
		UpdateColumn("message_count", count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
