package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"recruithub/internal/domain"
	hub_errors "recruithub/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresMessageRepository struct {
	db *gorm.DB

	// seq is a process-local insertion counter used as the tie-breaker when
	// two messages share a creation timestamp. There is a single ingest
	// process, so process order is insertion order.
	seqMu     sync.Mutex
	seq       int64
	seqLoaded bool
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) nextSeq(ctx context.Context) (int64, error) {
	r.seqMu.Lock()
	defer r.seqMu.Unlock()

	if !r.seqLoaded {
		var max *int64
		err := r.db.WithContext(ctx).
			Model(&domain.Message{}).
			Select("MAX(seq)").
			Scan(&max).Error
		if err != nil {
			return 0, err
		}
		if max != nil {
			r.seq = *max
		}
		r.seqLoaded = true
	}
	r.seq++
	return r.seq, nil
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *domain.Message) error {
	seq, err := r.nextSeq(ctx)
	if err != nil {
		return err
	}
	m.Seq = seq
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	for i := range m.Mentions {
		m.Mentions[i].MessageID = m.ID
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Message, error) {
	var m domain.Message
	err := r.db.WithContext(ctx).
		Preload("Mentions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("ReadBy").
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Message{}, hub_errors.ErrNotFound
		}
		return domain.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID, page, limit int) ([]domain.Message, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("candidate_id = ?", candidateID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	// Newest page first, then reversed so callers render oldest-first.
	var items []domain.Message
	err = r.db.WithContext(ctx).
		Preload("Mentions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("ReadBy").
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC").
		Order("seq DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}

	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, total, nil
}

func (r *PostgresMessageRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string, mentions []domain.Mention, editedAt time.Time) (domain.Message, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Message{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"content":   content,
				"is_edited": true,
				"edited_at": editedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return hub_errors.ErrNotFound
		}

		if err := tx.Where("message_id = ?", id).Delete(&domain.Mention{}).Error; err != nil {
			return err
		}
		for i := range mentions {
			mentions[i].ID = 0
			mentions[i].MessageID = id
		}
		if len(mentions) > 0 {
			if err := tx.Create(&mentions).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Message{}, err
	}
	return r.GetByID(ctx, id)
}

func (r *PostgresMessageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&domain.Mention{}).Error; err != nil {
			return err
		}
		if err := tx.Where("message_id = ?", id).Delete(&domain.ReadReceipt{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Message{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return hub_errors.ErrNotFound
		}
		return nil
	})
}

// MarkRead inserts the receipt with conflict-do-nothing on the
// (message, user) unique index, so concurrent marks by the same reader both
// resolve to the no-op instead of one surfacing a constraint error.
func (r *PostgresMessageRepository) MarkRead(ctx context.Context, messageID, userID uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&domain.ReadReceipt{
			MessageID: messageID,
			UserID:    userID,
			ReadAt:    at,
		}).Error
}
