package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/devcamper-backend/internal/data/repos"
	"github.com/yungbote/devcamper-backend/internal/data/repos/query"
	"github.com/yungbote/devcamper-backend/internal/domain"
	"github.com/yungbote/devcamper-backend/internal/normalization"
	"github.com/yungbote/devcamper-backend/internal/platform/apierr"
	"github.com/yungbote/devcamper-backend/internal/platform/geocode"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
	"github.com/yungbote/devcamper-backend/internal/platform/storage"
)

// BootcampFields carries create and update input. Nil means "not provided".
type BootcampFields struct {
	Name          *string
	Description   *string
	Website       *string
	Phone         *string
	Email         *string
	Address       *string
	Careers       []string
	Housing       *bool
	JobAssistance *bool
	JobGuarantee  *bool
	AcceptGi      *bool
}

type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// BootcampDistance is a radius search hit.
type BootcampDistance struct {
	Bootcamp *domain.Bootcamp
	Miles    float64
}

type BootcampService interface {
	List(ctx context.Context, q query.ListQuery) (ListResult[*domain.Bootcamp], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Bootcamp, error)
	Create(ctx context.Context, in BootcampFields) (*domain.Bootcamp, error)
	Update(ctx context.Context, id uuid.UUID, in BootcampFields) (*domain.Bootcamp, error)
	Delete(ctx context.Context, id uuid.UUID) error
	WithinRadius(ctx context.Context, zipcode string, miles float64) ([]BootcampDistance, error)
	UploadPhoto(ctx context.Context, id uuid.UUID, upload PhotoUpload) (string, error)
}

type bootcampService struct {
	db             *gorm.DB
	log            *logger.Logger
	bootcampRepo   repos.BootcampRepo
	courseRepo     repos.CourseRepo
	reviewRepo     repos.ReviewRepo
	geocoder       geocode.Geocoder
	photos         storage.PhotoStore
	maxUploadBytes int64
}

func NewBootcampService(
	db *gorm.DB,
	log *logger.Logger,
	bootcampRepo repos.BootcampRepo,
	courseRepo repos.CourseRepo,
	reviewRepo repos.ReviewRepo,
	geocoder geocode.Geocoder,
	photos storage.PhotoStore,
	maxUploadBytes int64,
) BootcampService {
	serviceLog := log.With("service", "BootcampService")
	if maxUploadBytes <= 0 {
		maxUploadBytes = 1_000_000
	}
	return &bootcampService{
		db:             db,
		log:            serviceLog,
		bootcampRepo:   bootcampRepo,
		courseRepo:     courseRepo,
		reviewRepo:     reviewRepo,
		geocoder:       geocoder,
		photos:         photos,
		maxUploadBytes: maxUploadBytes,
	}
}

func (bs *bootcampService) List(ctx context.Context, q query.ListQuery) (ListResult[*domain.Bootcamp], error) {
	rows, total, err := bs.bootcampRepo.List(ctx, nil, q)
	if err != nil {
		return ListResult[*domain.Bootcamp]{}, listErr("bootcamps.list", err)
	}
	return ListResult[*domain.Bootcamp]{Items: rows, Total: total, Pagination: q.Paginate(total)}, nil
}

func (bs *bootcampService) Get(ctx context.Context, id uuid.UUID) (*domain.Bootcamp, error) {
	b, err := bs.bootcampRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, persistErr("bootcamps.get", err)
	}
	if b == nil {
		return nil, apierr.NotFound("bootcamp_not_found", "Bootcamp not found with id of %s", id)
	}
	return b, nil
}

func (bs *bootcampService) Create(ctx context.Context, in BootcampFields) (*domain.Bootcamp, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if in.Name == nil || in.Description == nil || in.Address == nil {
		return nil, apierr.BadRequest("validation", "Please add a name, description and address")
	}
	if err := validateCareers(in.Careers); err != nil {
		return nil, err
	}

	// Publishers may own a single bootcamp; admins are unrestricted.
	if rd.Role != domain.RoleAdmin {
		owned, err := bs.bootcampRepo.GetByUserID(ctx, nil, rd.UserID)
		if err != nil {
			return nil, persistErr("bootcamps.create", err)
		}
		if len(owned) > 0 {
			return nil, apierr.BadRequest("already_published", "The user with ID %s has already published a bootcamp", rd.UserID)
		}
	}

	b := &domain.Bootcamp{
		UserID:      rd.UserID,
		Name:        strings.TrimSpace(*in.Name),
		Description: strings.TrimSpace(*in.Description),
		Address:     strings.TrimSpace(*in.Address),
		Careers:     datatypes.JSONSlice[string](in.Careers),
	}
	b.Slug = normalization.Slug(b.Name)
	applyOptional(b, in)
	b.Location = bs.locate(ctx, b.Address)

	if _, err := bs.bootcampRepo.Create(ctx, nil, b); err != nil {
		return nil, persistErr("bootcamps.create", err)
	}
	bs.log.Info("bootcamp created", "bootcamp_id", b.ID, "user_id", rd.UserID)
	return b, nil
}

func (bs *bootcampService) Update(ctx context.Context, id uuid.UUID, in BootcampFields) (*domain.Bootcamp, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	b, err := bs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(rd, b.UserID) {
		return nil, apierr.Unauthorized("not_owner", "User %s is not authorized to update this bootcamp", rd.UserID)
	}
	if in.Careers != nil {
		if err := validateCareers(in.Careers); err != nil {
			return nil, err
		}
	}

	fields := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		fields["name"] = name
		fields["slug"] = normalization.Slug(name)
	}
	if in.Description != nil {
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Website != nil {
		fields["website"] = strings.TrimSpace(*in.Website)
	}
	if in.Phone != nil {
		fields["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		fields["email"] = strings.TrimSpace(*in.Email)
	}
	if in.Careers != nil {
		fields["careers"] = datatypes.JSONSlice[string](in.Careers)
	}
	if in.Housing != nil {
		fields["housing"] = *in.Housing
	}
	if in.JobAssistance != nil {
		fields["job_assistance"] = *in.JobAssistance
	}
	if in.JobGuarantee != nil {
		fields["job_guarantee"] = *in.JobGuarantee
	}
	if in.AcceptGi != nil {
		fields["accept_gi"] = *in.AcceptGi
	}
	if in.Address != nil {
		addr := strings.TrimSpace(*in.Address)
		if addr != b.Address {
			fields["address"] = addr
			for col, v := range locationColumns(bs.locate(ctx, addr)) {
				fields[col] = v
			}
		}
	}

	if err := bs.bootcampRepo.Update(ctx, nil, id, fields); err != nil {
		return nil, persistErr("bootcamps.update", err)
	}
	return bs.Get(ctx, id)
}

// Delete removes the bootcamp with its courses and reviews in one transaction. No
// rollup is recomputed: the parent row is gone.
func (bs *bootcampService) Delete(ctx context.Context, id uuid.UUID) error {
	rd, err := requireCaller(ctx)
	if err != nil {
		return err
	}
	b, err := bs.Get(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(rd, b.UserID) {
		return apierr.Unauthorized("not_owner", "User %s is not authorized to delete this bootcamp", rd.UserID)
	}

	var courses, reviews int64
	err = bs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if courses, err = bs.courseRepo.DeleteByBootcamp(ctx, tx, id); err != nil {
			return err
		}
		if reviews, err = bs.reviewRepo.DeleteByBootcamp(ctx, tx, id); err != nil {
			return err
		}
		return bs.bootcampRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return persistErr("bootcamps.delete", err)
	}
	bs.log.Info("bootcamp deleted", "bootcamp_id", id, "courses", courses, "reviews", reviews)
	return nil
}

func (bs *bootcampService) WithinRadius(ctx context.Context, zipcode string, miles float64) ([]BootcampDistance, error) {
	if miles <= 0 {
		return nil, apierr.BadRequest("validation", "Distance must be positive")
	}
	if bs.geocoder == nil {
		return nil, apierr.Internal("geocoder_unavailable", errors.New("geocoder not configured"))
	}
	locs, err := bs.geocoder.Geocode(ctx, zipcode)
	if errors.Is(err, geocode.ErrNoResults) || (err == nil && len(locs) == 0) {
		return nil, apierr.BadRequest("unknown_zipcode", "Could not locate zipcode %s", zipcode)
	}
	if err != nil {
		return nil, apierr.Internal("geocoder_failed", err)
	}
	center := locs[0]

	candidates, err := bs.bootcampRepo.WithinBox(ctx, nil, geocode.BoundingBox(center.Latitude, center.Longitude, miles))
	if err != nil {
		return nil, persistErr("bootcamps.radius", err)
	}
	out := make([]BootcampDistance, 0, len(candidates))
	for _, b := range candidates {
		if !b.Location.HasCoordinates() {
			continue
		}
		d := geocode.DistanceMiles(center.Latitude, center.Longitude, *b.Location.Latitude, *b.Location.Longitude)
		if d <= miles {
			out = append(out, BootcampDistance{Bootcamp: b, Miles: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Miles < out[j].Miles })
	return out, nil
}

func (bs *bootcampService) UploadPhoto(ctx context.Context, id uuid.UUID, upload PhotoUpload) (string, error) {
	rd, err := requireCaller(ctx)
	if err != nil {
		return "", err
	}
	b, err := bs.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !canModify(rd, b.UserID) {
		return "", apierr.Unauthorized("not_owner", "User %s is not authorized to update this bootcamp", rd.UserID)
	}
	if upload.Body == nil {
		return "", apierr.BadRequest("missing_file", "Please upload a file")
	}
	if !strings.HasPrefix(upload.ContentType, "image") {
		return "", apierr.BadRequest("invalid_file", "Please upload an image file")
	}
	if upload.Size > bs.maxUploadBytes {
		return "", apierr.BadRequest("file_too_large", "Please upload an image less than %d", bs.maxUploadBytes)
	}
	if bs.photos == nil {
		return "", apierr.Internal("upload_failed", errors.New("photo storage not configured"))
	}

	name := fmt.Sprintf("photo_%s%s", b.ID, filepath.Ext(upload.Filename))
	if _, err := bs.photos.Save(ctx, name, upload.ContentType, io.LimitReader(upload.Body, bs.maxUploadBytes+1)); err != nil {
		bs.log.Error("photo upload failed", "bootcamp_id", b.ID, "error", err)
		return "", apierr.Internal("upload_failed", errors.New("Problem with file upload"))
	}
	if err := bs.bootcampRepo.SetPhoto(ctx, nil, b.ID, name); err != nil {
		return "", persistErr("bootcamps.photo", err)
	}
	return name, nil
}

// locate geocodes addr. Failures leave the location empty; such bootcamps are
// invisible to radius search until their address is updated.
func (bs *bootcampService) locate(ctx context.Context, addr string) domain.Location {
	if bs.geocoder == nil || addr == "" {
		return domain.Location{}
	}
	locs, err := bs.geocoder.Geocode(ctx, addr)
	if err != nil || len(locs) == 0 {
		bs.log.Warn("geocode failed; storing bootcamp without coordinates", "error", err)
		return domain.Location{}
	}
	l := locs[0]
	lat, lng := l.Latitude, l.Longitude
	return domain.Location{
		Latitude:         &lat,
		Longitude:        &lng,
		FormattedAddress: l.FormattedAddress,
		Street:           l.Street,
		City:             l.City,
		State:            l.State,
		Zipcode:          l.Zipcode,
		Country:          l.Country,
	}
}

func locationColumns(l domain.Location) map[string]any {
	return map[string]any{
		"location_latitude":          l.Latitude,
		"location_longitude":         l.Longitude,
		"location_formatted_address": l.FormattedAddress,
		"location_street":            l.Street,
		"location_city":              l.City,
		"location_state":             l.State,
		"location_zipcode":           l.Zipcode,
		"location_country":           l.Country,
	}
}

func applyOptional(b *domain.Bootcamp, in BootcampFields) {
	if in.Website != nil {
		b.Website = strings.TrimSpace(*in.Website)
	}
	if in.Phone != nil {
		b.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		b.Email = strings.TrimSpace(*in.Email)
	}
	if in.Housing != nil {
		b.Housing = *in.Housing
	}
	if in.JobAssistance != nil {
		b.JobAssistance = *in.JobAssistance
	}
	if in.JobGuarantee != nil {
		b.JobGuarantee = *in.JobGuarantee
	}
	if in.AcceptGi != nil {
		b.AcceptGi = *in.AcceptGi
	}
}

func validateCareers(careers []string) error {
	if len(careers) == 0 {
		return apierr.BadRequest("validation", "Please add at least one career")
	}
	for _, c := range careers {
		if !domain.IsValidCareer(c) {
			return apierr.BadRequest("validation", "Unknown career %q", c)
		}
	}
	return nil
}
