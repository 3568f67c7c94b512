package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/devcamper-backend/internal/data/repos/query"
	"github.com/yungbote/devcamper-backend/internal/domain"
	"github.com/yungbote/devcamper-backend/internal/platform/geocode"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

// BootcampColumns is the public field whitelist for bootcamp list queries.
var BootcampColumns = query.Columns{
	"id":             {Name: "id"},
	"user_id":        {Name: "user_id"},
	"name":           {Name: "name"},
	"slug":           {Name: "slug"},
	"description":    {Name: "description"},
	"website":        {Name: "website"},
	"phone":          {Name: "phone"},
	"email":          {Name: "email"},
	"address":        {Name: "address"},
	"careers":        {Name: "careers", Kind: query.KindJSONList},
	"average_rating": {Name: "average_rating", Kind: query.KindNumber},
	"average_cost":   {Name: "average_cost", Kind: query.KindNumber},
	"photo":          {Name: "photo"},
	"housing":        {Name: "housing", Kind: query.KindBool},
	"job_assistance": {Name: "job_assistance", Kind: query.KindBool},
	"job_guarantee":  {Name: "job_guarantee", Kind: query.KindBool},
	"accept_gi":      {Name: "accept_gi", Kind: query.KindBool},
	"city":           {Name: "location_city"},
	"state":          {Name: "location_state"},
	"zipcode":        {Name: "location_zipcode"},
	"created_at":     {Name: "created_at", Kind: query.KindTime},
}

// rollupColumns are owned by the rollup maintainer and never written through the repo.
var rollupColumns = []string{"average_cost", "average_rating"}

type BootcampRepo interface {
	Create(ctx context.Context, tx *gorm.DB, bootcamp *domain.Bootcamp) (*domain.Bootcamp, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Bootcamp, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.Bootcamp, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*domain.Bootcamp, error)
	List(ctx context.Context, tx *gorm.DB, q query.ListQuery) ([]*domain.Bootcamp, int64, error)
	ListIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	WithinBox(ctx context.Context, tx *gorm.DB, box geocode.Box) ([]*domain.Bootcamp, error)
	SetPhoto(ctx context.Context, tx *gorm.DB, id uuid.UUID, photo string) error
}

type bootcampRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBootcampRepo(db *gorm.DB, baseLog *logger.Logger) BootcampRepo {
	repoLog := baseLog.With("repo", "BootcampRepo")
	return &bootcampRepo{db: db, log: repoLog}
}

func (r *bootcampRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx)
}

func (r *bootcampRepo) Create(ctx context.Context, tx *gorm.DB, bootcamp *domain.Bootcamp) (*domain.Bootcamp, error) {
	bootcamp.AverageCost = nil
	bootcamp.AverageRating = nil
	if err := r.conn(ctx, tx).Omit("Courses").Create(bootcamp).Error; err != nil {
		return nil, err
	}
	return bootcamp, nil
}

func (r *bootcampRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Bootcamp, error) {
	var b domain.Bootcamp
	err := r.conn(ctx, tx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *bootcampRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*domain.Bootcamp, error) {
	var results []*domain.Bootcamp
	if err := r.conn(ctx, tx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *bootcampRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*domain.Bootcamp, error) {
	var b domain.Bootcamp
	err := r.conn(ctx, tx).Where("slug = ?", slug).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns one page of bootcamps with their courses and the total match count.
func (r *bootcampRepo) List(ctx context.Context, tx *gorm.DB, q query.ListQuery) ([]*domain.Bootcamp, int64, error) {
	base := r.conn(ctx, tx).Model(&domain.Bootcamp{})

	counted, err := q.Where(base.Session(&gorm.Session{}), BootcampColumns)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := counted.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	paged, err := q.Apply(base.Session(&gorm.Session{}), BootcampColumns)
	if err != nil {
		return nil, 0, err
	}
	var results []*domain.Bootcamp
	if err := paged.Preload("Courses", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *bootcampRepo) ListIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.conn(ctx, tx).Model(&domain.Bootcamp{}).Order("created_at ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Update applies a partial column update. Rollup columns are dropped from fields.
func (r *bootcampRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	for _, col := range rollupColumns {
		delete(fields, col)
	}
	delete(fields, "id")
	if len(fields) == 0 {
		return nil
	}
	return r.conn(ctx, tx).
		Model(&domain.Bootcamp{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *bootcampRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return r.conn(ctx, tx).Where("id = ?", id).Delete(&domain.Bootcamp{}).Error
}

// WithinBox is the coarse prefilter for radius search; callers apply the exact distance.
func (r *bootcampRepo) WithinBox(ctx context.Context, tx *gorm.DB, box geocode.Box) ([]*domain.Bootcamp, error) {
	db := r.conn(ctx, tx).
		Where("location_latitude IS NOT NULL AND location_longitude IS NOT NULL").
		Where("location_latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)
	if !box.Wraps() && (box.MinLng > -180 || box.MaxLng < 180) {
		db = db.Where("location_longitude BETWEEN ? AND ?", box.MinLng, box.MaxLng)
	}
	var results []*domain.Bootcamp
	if err := db.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *bootcampRepo) SetPhoto(ctx context.Context, tx *gorm.DB, id uuid.UUID, photo string) error {
	return r.conn(ctx, tx).
		Model(&domain.Bootcamp{}).
		Where("id = ?", id).
		Update("photo", photo).Error
}
