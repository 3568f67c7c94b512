package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/devcamper-backend/internal/data/repos"
	"github.com/yungbote/devcamper-backend/internal/data/repos/query"
	"github.com/yungbote/devcamper-backend/internal/domain"
	domainagg "github.com/yungbote/devcamper-backend/internal/domain/aggregates"
	"github.com/yungbote/devcamper-backend/internal/platform/apierr"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

type ReviewFields struct {
	Title  *string
	Text   *string
	Rating *int
}

type ReviewService interface {
	List(ctx context.Context, q query.ListQuery, bootcampID *uuid.UUID) (ListResult[*domain.Review], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	Create(ctx context.Context, bootcampID uuid.UUID, in ReviewFields) (*domain.Review, error)
	Update(ctx context.Context, id uuid.UUID, in ReviewFields) (*domain.Review, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reviewService struct {
	db            *gorm.DB
	log           *logger.Logger
	reviewRepo    repos.ReviewRepo
	bootcampRepo  repos.BootcampRepo
	averageRating rollupTrigger
}

func NewReviewService(
	db *gorm.DB,
	log *logger.Logger,
	reviewRepo repos.ReviewRepo,
	bootcampRepo repos.BootcampRepo,
	averageRating domainagg.RollupMaintainer,
) ReviewService {
	serviceLog := log.With("service", "ReviewService")
	return &reviewService{
		db:            db,
		log:           serviceLog,
		reviewRepo:    reviewRepo,
		bootcampRepo:  bootcampRepo,
		averageRating: newRollupTrigger(serviceLog, averageRating),
	}
}

func (rs *reviewService) List(ctx context.Context, q query.ListQuery, bootcampID *uuid.UUID) (ListResult[*domain.Review], error) {
	if bootcampID != nil {
		if _, err := rs.bootcamp(ctx, *bootcampID); err != nil {
			return ListResult[*domain.Review]{}, err
		}
	}
	rows, total, err := rs.reviewRepo.List(ctx, nil, q, bootcampID)
	if err != nil {
		return ListResult[*domain.Review]{}, listErr("reviews.list", err)
	}
	return ListResult[*domain.Review]{Items: rows, Total: total, Pagination: q.Paginate(total)}, nil
}

func (rs *reviewService) Get(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	r, err := rs.reviewRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, persistErr("reviews.get", err)
	}
	if r == nil {
		return nil, apierr.NotFound("review_not_found", "No review found with the id of %s", id)
	}
	return r, nil
}

func (rs *reviewService) Create(ctx context.Context, bootcampID uuid.UUID, in ReviewFields) (*domain.Review, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	b, err := rs.bootcamp(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if in.Title == nil || in.Text == nil || in.Rating == nil {
		return nil, apierr.BadRequest("validation", "Please add a title, some text and a rating")
	}
	if err := validateReview(in); err != nil {
		return nil, err
	}
	exists, err := rs.reviewRepo.ExistsForUser(ctx, nil, b.ID, rd.UserID)
	if err != nil {
		return nil, persistErr("reviews.create", err)
	}
	if exists {
		return nil, apierr.BadRequest("duplicate", "User %s has already reviewed bootcamp %s", rd.UserID, b.ID)
	}

	r := &domain.Review{
		BootcampID: b.ID,
		UserID:     rd.UserID,
		Title:      strings.TrimSpace(*in.Title),
		Text:       strings.TrimSpace(*in.Text),
		Rating:     *in.Rating,
	}
	if _, err := rs.reviewRepo.Create(ctx, nil, r); err != nil {
		return nil, persistErr("reviews.create", err)
	}
	rs.averageRating.fire(ctx, r.BootcampID)
	return r, nil
}

func (rs *reviewService) Update(ctx context.Context, id uuid.UUID, in ReviewFields) (*domain.Review, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	r, err := rs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(rd, r.UserID) {
		return nil, apierr.Unauthorized("not_owner", "Not authorized to update review")
	}
	if err := validateReview(in); err != nil {
		return nil, err
	}

	next := *r
	fields := map[string]any{}
	if in.Title != nil {
		next.Title = strings.TrimSpace(*in.Title)
		fields["title"] = next.Title
	}
	if in.Text != nil {
		next.Text = strings.TrimSpace(*in.Text)
		fields["text"] = next.Text
	}
	if in.Rating != nil {
		next.Rating = *in.Rating
		fields["rating"] = next.Rating
	}
	if err := rs.reviewRepo.Update(ctx, nil, id, fields); err != nil {
		return nil, persistErr("reviews.update", err)
	}
	rs.averageRating.fire(ctx, r.BootcampID)

	updated, err := rs.Get(ctx, id)
	if err != nil {
		rs.log.Warn("review reload after update failed", "review_id", id, "error", err)
		return &next, nil
	}
	return updated, nil
}

func (rs *reviewService) Delete(ctx context.Context, id uuid.UUID) error {
	rd, err := requireCaller(ctx)
	if err != nil {
		return err
	}
	r, err := rs.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(rd, r.UserID) {
		return apierr.Unauthorized("not_owner", "Not authorized to delete review")
	}
	parent := r.BootcampID
	if err := rs.reviewRepo.Delete(ctx, nil, id); err != nil {
		return persistErr("reviews.delete", err)
	}
	rs.averageRating.fire(ctx, parent)
	return nil
}

func (rs *reviewService) bootcamp(ctx context.Context, id uuid.UUID) (*domain.Bootcamp, error) {
	b, err := rs.bootcampRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, persistErr("bootcamps.get", err)
	}
	if b == nil {
		return nil, apierr.NotFound("bootcamp_not_found", "No bootcamp with the id of %s", id)
	}
	return b, nil
}

func validateReview(in ReviewFields) error {
	if in.Title != nil && len(strings.TrimSpace(*in.Title)) > 100 {
		return apierr.BadRequest("validation", "Title can not be more than 100 characters")
	}
	if in.Rating != nil && (*in.Rating < domain.MinRating || *in.Rating > domain.MaxRating) {
		return apierr.BadRequest("validation", "Please add a rating between %d and %d", domain.MinRating, domain.MaxRating)
	}
	return nil
}
