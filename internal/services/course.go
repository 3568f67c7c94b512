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

type CourseFields struct {
	Title                *string
	Description          *string
	Weeks                *string
	Tuition              *float64
	MinimumSkill         *string
	ScholarshipAvailable *bool
	// BootcampID moves the course to another bootcamp on update.
	BootcampID *uuid.UUID
}

type CourseService interface {
	List(ctx context.Context, q query.ListQuery, bootcampID *uuid.UUID) (ListResult[*domain.Course], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	Create(ctx context.Context, bootcampID uuid.UUID, in CourseFields) (*domain.Course, error)
	Update(ctx context.Context, id uuid.UUID, in CourseFields) (*domain.Course, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type courseService struct {
	db           *gorm.DB
	log          *logger.Logger
	courseRepo   repos.CourseRepo
	bootcampRepo repos.BootcampRepo
	averageCost  rollupTrigger
}

// NewCourseService wires course CRUD. Every committed create, update or delete
// recomputes the affected bootcamps' average cost through averageCost.
func NewCourseService(
	db *gorm.DB,
	log *logger.Logger,
	courseRepo repos.CourseRepo,
	bootcampRepo repos.BootcampRepo,
	averageCost domainagg.RollupMaintainer,
) CourseService {
	serviceLog := log.With("service", "CourseService")
	return &courseService{
		db:           db,
		log:          serviceLog,
		courseRepo:   courseRepo,
		bootcampRepo: bootcampRepo,
		averageCost:  newRollupTrigger(serviceLog, averageCost),
	}
}

func (cs *courseService) List(ctx context.Context, q query.ListQuery, bootcampID *uuid.UUID) (ListResult[*domain.Course], error) {
	if bootcampID != nil {
		if _, err := cs.bootcamp(ctx, *bootcampID); err != nil {
			return ListResult[*domain.Course]{}, err
		}
	}
	rows, total, err := cs.courseRepo.List(ctx, nil, q, bootcampID)
	if err != nil {
		return ListResult[*domain.Course]{}, listErr("courses.list", err)
	}
	return ListResult[*domain.Course]{Items: rows, Total: total, Pagination: q.Paginate(total)}, nil
}

func (cs *courseService) Get(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	c, err := cs.courseRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, persistErr("courses.get", err)
	}
	if c == nil {
		return nil, apierr.NotFound("course_not_found", "No course with the id of %s", id)
	}
	return c, nil
}

func (cs *courseService) Create(ctx context.Context, bootcampID uuid.UUID, in CourseFields) (*domain.Course, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	b, err := cs.bootcamp(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if !canModify(rd, b.UserID) {
		return nil, apierr.Unauthorized("not_owner", "User %s is not authorized to add a course to bootcamp %s", rd.UserID, b.ID)
	}
	if in.Title == nil || in.Description == nil || in.Weeks == nil || in.Tuition == nil || in.MinimumSkill == nil {
		return nil, apierr.BadRequest("validation", "Please add a title, description, weeks, tuition and minimum skill")
	}
	if err := validateCourse(in); err != nil {
		return nil, err
	}

	c := &domain.Course{
		BootcampID:   b.ID,
		UserID:       rd.UserID,
		Title:        strings.TrimSpace(*in.Title),
		Description:  strings.TrimSpace(*in.Description),
		Weeks:        strings.TrimSpace(*in.Weeks),
		Tuition:      *in.Tuition,
		MinimumSkill: *in.MinimumSkill,
	}
	if in.ScholarshipAvailable != nil {
		c.ScholarshipAvailable = *in.ScholarshipAvailable
	}
	if _, err := cs.courseRepo.Create(ctx, nil, c); err != nil {
		return nil, persistErr("courses.create", err)
	}
	cs.averageCost.fire(ctx, c.BootcampID)
	return c, nil
}

func (cs *courseService) Update(ctx context.Context, id uuid.UUID, in CourseFields) (*domain.Course, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	c, err := cs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(rd, c.UserID) {
		return nil, apierr.Unauthorized("not_owner", "User %s is not authorized to update course %s", rd.UserID, c.ID)
	}
	if err := validateCourse(in); err != nil {
		return nil, err
	}

	previous := c.BootcampID
	next := *c
	fields := map[string]any{}
	if in.Title != nil {
		next.Title = strings.TrimSpace(*in.Title)
		fields["title"] = next.Title
	}
	if in.Description != nil {
		next.Description = strings.TrimSpace(*in.Description)
		fields["description"] = next.Description
	}
	if in.Weeks != nil {
		next.Weeks = strings.TrimSpace(*in.Weeks)
		fields["weeks"] = next.Weeks
	}
	if in.Tuition != nil {
		next.Tuition = *in.Tuition
		fields["tuition"] = next.Tuition
	}
	if in.MinimumSkill != nil {
		next.MinimumSkill = *in.MinimumSkill
		fields["minimum_skill"] = next.MinimumSkill
	}
	if in.ScholarshipAvailable != nil {
		next.ScholarshipAvailable = *in.ScholarshipAvailable
		fields["scholarship_available"] = next.ScholarshipAvailable
	}
	if in.BootcampID != nil && *in.BootcampID != previous {
		target, err := cs.bootcamp(ctx, *in.BootcampID)
		if err != nil {
			return nil, err
		}
		if !canModify(rd, target.UserID) {
			return nil, apierr.Unauthorized("not_owner", "User %s is not authorized to add a course to bootcamp %s", rd.UserID, target.ID)
		}
		next.BootcampID = target.ID
		next.Bootcamp = nil
		fields["bootcamp_id"] = target.ID
	}

	if err := cs.courseRepo.Update(ctx, nil, id, fields); err != nil {
		return nil, persistErr("courses.update", err)
	}
	// The row is committed. A move changes two parents: the one losing the course
	// and the one gaining it.
	cs.averageCost.fire(ctx, previous, next.BootcampID)

	updated, err := cs.Get(ctx, id)
	if err != nil {
		cs.log.Warn("course reload after update failed", "course_id", id, "error", err)
		return &next, nil
	}
	return updated, nil
}

func (cs *courseService) Delete(ctx context.Context, id uuid.UUID) error {
	rd, err := requireCaller(ctx)
	if err != nil {
		return err
	}
	c, err := cs.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(rd, c.UserID) {
		return apierr.Unauthorized("not_owner", "User %s is not authorized to delete course %s", rd.UserID, c.ID)
	}
	parent := c.BootcampID
	if err := cs.courseRepo.Delete(ctx, nil, id); err != nil {
		return persistErr("courses.delete", err)
	}
	cs.averageCost.fire(ctx, parent)
	return nil
}

func (cs *courseService) bootcamp(ctx context.Context, id uuid.UUID) (*domain.Bootcamp, error) {
	b, err := cs.bootcampRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, persistErr("bootcamps.get", err)
	}
	if b == nil {
		return nil, apierr.NotFound("bootcamp_not_found", "No bootcamp with the id of %s", id)
	}
	return b, nil
}

func validateCourse(in CourseFields) error {
	if in.Tuition != nil && *in.Tuition < 0 {
		return apierr.BadRequest("validation", "Tuition cannot be negative")
	}
	if in.MinimumSkill != nil && !domain.IsValidSkill(*in.MinimumSkill) {
		return apierr.BadRequest("validation", "Minimum skill must be beginner, intermediate or advanced")
	}
	return nil
}
