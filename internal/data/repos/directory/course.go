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

var CourseColumns = query.Columns{
	"id":                    {Name: "id"},
	"bootcamp_id":           {Name: "bootcamp_id"},
	"user_id":               {Name: "user_id"},
	"title":                 {Name: "title"},
	"description":           {Name: "description"},
	"weeks":                 {Name: "weeks"},
	"tuition":               {Name: "tuition", Kind: query.KindNumber},
	"minimum_skill":         {Name: "minimum_skill"},
	"scholarship_available": {Name: "scholarship_available", Kind: query.KindBool},
	"created_at":            {Name: "created_at", Kind: query.KindTime},
}

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, course *domain.Course) (*domain.Course, error)
	CreateMany(ctx context.Context, tx *gorm.DB, courses []*domain.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Course, error)
	// List pages over all courses, or only bootcampID's when it is set.
	List(ctx context.Context, tx *gorm.DB, q query.ListQuery, bootcampID *uuid.UUID) ([]*domain.Course, int64, error)
	ListByBootcamp(ctx context.Context, tx *gorm.DB, bootcampID uuid.UUID) ([]*domain.Course, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DeleteByBootcamp(ctx context.Context, tx *gorm.DB, bootcampID uuid.UUID) (int64, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	repoLog := baseLog.With("repo", "CourseRepo")
	return &courseRepo{db: db, log: repoLog}
}

func (r *courseRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx)
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, course *domain.Course) (*domain.Course, error) {
	if err := r.conn(ctx, tx).Omit("Bootcamp").Create(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

func (r *courseRepo) CreateMany(ctx context.Context, tx *gorm.DB, courses []*domain.Course) error {
	if len(courses) == 0 {
		return nil
	}
	return r.conn(ctx, tx).Omit("Bootcamp").CreateInBatches(courses, 100).Error
}

func (r *courseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Course, error) {
	var c domain.Course
	err := r.conn(ctx, tx).
		Preload("Bootcamp", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "description")
		}).
		Where("id = ?", id).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) List(ctx context.Context, tx *gorm.DB, q query.ListQuery, bootcampID *uuid.UUID) ([]*domain.Course, int64, error) {
	base := r.conn(ctx, tx).Model(&domain.Course{})
	if bootcampID != nil {
		base = base.Where("bootcamp_id = ?", *bootcampID)
	}

	counted, err := q.Where(base.Session(&gorm.Session{}), CourseColumns)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := counted.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	paged, err := q.Apply(base.Session(&gorm.Session{}), CourseColumns)
	if err != nil {
		return nil, 0, err
	}
	var results []*domain.Course
	if err := paged.Preload("Bootcamp", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "description")
	}).Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *courseRepo) ListByBootcamp(ctx context.Context, tx *gorm.DB, bootcampID uuid.UUID) ([]*domain.Course, error) {
	var results []*domain.Course
	if err := r.conn(ctx, tx).
		Where("bootcamp_id = ?", bootcampID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	delete(fields, "id")
	if len(fields) == 0 {
		return nil
	}
	return r.conn(ctx, tx).
		Model(&domain.Course{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *courseRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(ctx, tx).Where("id = ?", id).Delete(&domain.Course{}).Error
}

func (r *courseRepo) DeleteByBootcamp(ctx context.Context, tx *gorm.DB, bootcampID uuid.UUID) (int64, error) {
	res := r.conn(ctx, tx).Where("bootcamp_id = ?", bootcampID).Delete(&domain.Course{})
	return res.RowsAffected, res.Error
}
