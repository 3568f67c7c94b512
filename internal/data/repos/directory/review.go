package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/devcamper-backend/internal/data/repos/query"
	"github.com/yungbote/devcamper-backend/internal/domain"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

var ReviewColumns = query.Columns{
	"id":          {Name: "id"},
	"bootcamp_id": {Name: "bootcamp_id"},
	"user_id":     {Name: "user_id"},
	"title":       {Name: "title"},
	"text":        {Name: "text"},
	"rating":      {Name: "rating", Kind: query.KindNumber},
	"created_at":  {Name: "created_at", Kind: query.KindTime},
}

type ReviewRepo interface {
	Create(ctx context.Context, tx *gorm.DB, review *domain.Review) (*domain.Review, error)
	CreateMany(ctx context.Context, tx *gorm.DB, reviews []*domain.Review) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Review, error)
	List(ctx context.Context, tx *gorm.DB, q query.ListQuery, bootcampID *uuid.UUID) ([]*domain.Review, int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByBootcamp(ctx context.Context, tx *gorm.DB, bootcampID uuid.UUID) (int64, error)
	ExistsForUser(ctx context.Context, tx *gorm.DB, bootcampID, userID uuid.UUID) (bool, error)
}

type reviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	repoLog := baseLog.With("repo", "ReviewRepo")
	return &reviewRepo{db: db, log: repoLog}
}

func (r *reviewRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx)
}

func (r *reviewRepo) Create(ctx context.Context, tx *gorm.DB, review *domain.Review) (*domain.Review, error) {
	if err := r.conn(ctx, tx).Omit("Bootcamp").Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (r *reviewRepo) CreateMany(ctx context.Context, tx *gorm.DB, reviews []*domain.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	return r.conn(ctx, tx).Omit("Bootcamp").CreateInBatches(reviews, 100).Error
}

func (r *reviewRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Review, error) {
	var rv domain.Review
	err := r.conn(ctx, tx).
		Preload("Bootcamp", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "description")
		}).
		Where("id = ?", id).
		First(&rv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *reviewRepo) List(ctx context.Context, tx *gorm.DB, q query.ListQuery, bootcampID *uuid.UUID) ([]*domain.Review, int64, error) {
	base := r.conn(ctx, tx).Model(&domain.Review{})
	if bootcampID != nil {
		base = base.Where("bootcamp_id = ?", *bootcampID)
	}

	counted, err := q.Where(base.Session(&gorm.Session{}), ReviewColumns)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := counted.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	paged, err := q.Apply(base.Session(&gorm.Session{}), ReviewColumns)
	if err != nil {
		return nil, 0, err
	}
	var results []*domain.Review
	if err := paged.Preload("Bootcamp", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "description")
	}).Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *reviewRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	delete(fields, "id")
	if len(fields) == 0 {
		return nil
	}
	return r.conn(ctx, tx).
		Model(&domain.Review{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *reviewRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(ctx, tx).Where("id = ?", id).Delete(&domain.Review{}).Error
}

func (r *reviewRepo) DeleteByBootcamp(ctx context.Context, tx *gorm.DB, bootcampID uuid.UUID) (int64, error) {
	res := r.conn(ctx, tx).Where("bootcamp_id = ?", bootcampID).Delete(&domain.Review{})
	return res.RowsAffected, res.Error
}

func (r *reviewRepo) ExistsForUser(ctx context.Context, tx *gorm.DB, bootcampID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.conn(ctx, tx).
		Model(&domain.Review{}).
		Where("bootcamp_id = ? AND user_id = ?", bootcampID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
