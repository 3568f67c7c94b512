package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	dataagg "github.com/yungbote/devcamper-backend/internal/data/aggregates"
	"github.com/yungbote/devcamper-backend/internal/data/repos"
	"github.com/yungbote/devcamper-backend/internal/data/repos/testutil"
	"github.com/yungbote/devcamper-backend/internal/domain"
	"github.com/yungbote/devcamper-backend/internal/platform/apierr"
	"github.com/yungbote/devcamper-backend/internal/platform/ctxutil"
	"github.com/yungbote/devcamper-backend/internal/platform/geocode"
	"github.com/yungbote/devcamper-backend/internal/platform/sendgrid"
)

type fakeGeocoder struct {
	byQuery map[string]geocode.Location
}

func (g *fakeGeocoder) Geocode(_ context.Context, q string) ([]geocode.Location, error) {
	loc, ok := g.byQuery[q]
	if !ok {
		return nil, geocode.ErrNoResults
	}
	return []geocode.Location{loc}, nil
}

type fakePhotoStore struct {
	mu    sync.Mutex
	saved map[string][]byte
	err   error
}

func (s *fakePhotoStore) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[name] = body
	return name, nil
}

type fakeMailer struct {
	sent []sendgrid.SendEmailRequest
	err  error
}

func (m *fakeMailer) Send(_ context.Context, req sendgrid.SendEmailRequest) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, req)
	return nil
}

var (
	boston = geocode.Location{Latitude: 42.3505, Longitude: -71.1054, City: "Boston", State: "MA", Zipcode: "02215", Country: "US"}
	nyc    = geocode.Location{Latitude: 40.7128, Longitude: -74.0060, City: "New York", State: "NY", Zipcode: "10001", Country: "US"}
)

type fixture struct {
	ctx       context.Context
	db        *gorm.DB
	geocoder  *fakeGeocoder
	photos    *fakePhotoStore
	mailer    *fakeMailer
	bootcamps BootcampService
	courses   CourseService
	reviews   ReviewService
	auth      AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SQLite(t)
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(db, log)
	bootcampRepo := repos.NewBootcampRepo(db, log)
	courseRepo := repos.NewCourseRepo(db, log)
	reviewRepo := repos.NewReviewRepo(db, log)

	rollups, err := dataagg.NewBootcampRollups(dataagg.RollupDeps{BaseDeps: dataagg.BaseDeps{DB: db, Log: log}})
	if err != nil {
		t.Fatalf("NewBootcampRollups: %v", err)
	}

	f := &fixture{
		ctx: context.Background(),
		db:  db,
		geocoder: &fakeGeocoder{byQuery: map[string]geocode.Location{
			"233 Bay State Rd Boston MA 02215": boston,
			"02215":                            boston,
			"20 W 34th St New York NY 10001":   nyc,
		}},
		photos: &fakePhotoStore{},
		mailer: &fakeMailer{},
	}
	f.bootcamps = NewBootcampService(db, log, bootcampRepo, courseRepo, reviewRepo, f.geocoder, f.photos, 1000)
	f.courses = NewCourseService(db, log, courseRepo, bootcampRepo, rollups.AverageCost)
	f.reviews = NewReviewService(db, log, reviewRepo, bootcampRepo, rollups.AverageRating)
	f.auth = NewAuthService(db, log, userRepo, f.mailer, AuthConfig{JWTSecret: "test-secret", BcryptCost: bcrypt.MinCost})
	return f
}

func (f *fixture) as(u *domain.User) context.Context {
	return ctxutil.WithRequestData(f.ctx, &ctxutil.RequestData{UserID: u.ID, Role: u.Role})
}

func (f *fixture) user(t *testing.T, email, role string) *domain.User {
	t.Helper()
	return testutil.SeedUser(t, f.ctx, f.db, email, role)
}

func ptr[T any](v T) *T { return &v }

func courseInput(tuition float64) CourseFields {
	return CourseFields{
		Title:        ptr("Full Stack"),
		Description:  ptr("Everything"),
		Weeks:        ptr("12"),
		Tuition:      ptr(tuition),
		MinimumSkill: ptr(domain.SkillIntermediate),
	}
}

func bootcampInput(name, address string) BootcampFields {
	return BootcampFields{
		Name:        ptr(name),
		Description: ptr("Learn to code"),
		Address:     ptr(address),
		Careers:     []string{"Web Development", "UI/UX"},
	}
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected status %d, got nil error", status)
	}
	if got := apierr.StatusOf(err); got != status {
		t.Fatalf("status: want=%d got=%d (%v)", status, got, err)
	}
}

func TestCourseWritesMaintainAverageCost(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "pub@example.com", domain.RolePublisher)
	ctx := f.as(owner)
	b := testutil.SeedBootcamp(t, f.ctx, f.db, owner.ID, "Devworks")

	first, err := f.courses.Create(ctx, b.ID, courseInput(1000))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := testutil.ReloadBootcamp(t, f.ctx, f.db, b.ID).AverageCost; got == nil || *got != 1000 {
		t.Fatalf("after first course: got=%v", got)
	}

	if _, err := f.courses.Create(ctx, b.ID, courseInput(2135)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := testutil.ReloadBootcamp(t, f.ctx, f.db, b.ID).AverageCost; got == nil || *got != 1570 {
		t.Fatalf("after second course: got=%v", got)
	}

	if _, err := f.courses.Update(ctx, first.ID, CourseFields{Tuition: ptr(3000.0)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := testutil.ReloadBootcamp(t, f.ctx, f.db, b.ID).AverageCost; got == nil || *got != 2570 {
		t.Fatalf("after update: got=%v", got)
	}
}

func TestCourseDeleteLastClearsAverageCost(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "pub@example.com", domain.RolePublisher)
	ctx := f.as(owner)
	b := testutil.SeedBootcamp(t, f.ctx, f.db, owner.ID, "Devworks")

	c, err := f.courses.Create(ctx, b.ID, courseInput(4000))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := f.courses.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := testutil.ReloadBootcamp(t, f.ctx, f.db, b.ID).AverageCost; got != nil {
		t.Fatalf("expected cleared average, got=%v", *got)
	}
}

func TestCourseMoveRecomputesBothBootcamps(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin@example.com", domain.RoleAdmin)
	ctx := f.as(admin)
	from := testutil.SeedBootcamp(t, f.ctx, f.db, admin.ID, "From")
	to := testutil.SeedBootcamp(t, f.ctx, f.db, admin.ID, "To")

	moving, err := f.courses.Create(ctx, from.ID, courseInput(1000))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.courses.Create(ctx, from.ID, courseInput(3000)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.courses.Update(ctx, moving.ID, CourseFields{BootcampID: &to.ID}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if got := testutil.ReloadBootcamp(t, f.ctx, f.db, from.ID).AverageCost; got == nil || *got != 3000 {
		t.Fatalf("source bootcamp: got=%v", got)
	}
	if got := testutil.ReloadBootcamp(t, f.ctx, f.db, to.ID).AverageCost; got == nil || *got != 1000 {
		t.Fatalf("target bootcamp: got=%v", got)
	}
}

// Read failures after a committed update must not skip the rollup.
type reloadFailingCourseRepo struct {
	repos.CourseRepo
	updated bool
}

func (r *reloadFailingCourseRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	if err := r.CourseRepo.Update(ctx, tx, id, fields); err != nil {
		return err
	}
	r.updated = true
	return nil
}

func (r *reloadFailingCourseRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Course, error) {
	if r.updated {
		return nil, errors.New("connection reset")
	}
	return r.CourseRepo.GetByID(ctx, tx, id)
}

type reloadFailingReviewRepo struct {
	repos.ReviewRepo
	updated bool
}

func (r *reloadFailingReviewRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	if err := r.ReviewRepo.Update(ctx, tx, id, fields); err != nil {
		return err
	}
	r.updated = true
	return nil
}

func (r *reloadFailingReviewRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Review, error) {
	if r.updated {
		return nil, errors.New("connection reset")
	}
	return r.ReviewRepo.GetByID(ctx, tx, id)
}

func TestUpdateRecomputesEvenWhenReloadFails(t *testing.T) {
	f := newFixture(t)
	log := testutil.Logger(t)
	owner := f.user(t, "pub@example.com", domain.RolePublisher)
	reviewer := f.user(t, "alice@example.com", domain.RoleUser)
	b := testutil.SeedBootcamp(t, f.ctx, f.db, owner.ID, "Devworks")

	rollups, err := dataagg.NewBootcampRollups(dataagg.RollupDeps{BaseDeps: dataagg.BaseDeps{DB: f.db, Log: log}})
	if err != nil {
		t.Fatalf("NewBootcampRollups: %v", err)
	}
	bootcampRepo := repos.NewBootcampRepo(f.db, log)
	courseRepo := &reloadFailingCourseRepo{CourseRepo: repos.NewCourseRepo(f.db, log)}
	reviewRepo := &reloadFailingReviewRepo{ReviewRepo: repos.NewReviewRepo(f.db, log)}
	courses := NewCourseService(f.db, log, courseRepo, bootcampRepo, rollups.AverageCost)
	reviews := NewReviewService(f.db, log, reviewRepo, bootcampRepo, rollups.AverageRating)

	c, err := courses.Create(f.as(owner), b.ID, courseInput(1000))
	if err != nil {
		t.Fatalf("Create course: %v", err)
	}
	got, err := courses.Update(f.as(owner), c.ID, CourseFields{Tuition: ptr(3000.0)})
	if err != nil {
		t.Fatalf("Update course: %v", err)
	}
	if got.Tuition != 3000 || got.BootcampID != b.ID {
		t.Fatalf("returned course: %+v", got)
	}
	if avg := testutil.ReloadBootcamp(t, f.ctx, f.db, b.ID).AverageCost; avg == nil || *avg != 3000 {
		t.Fatalf("average cost after update: got=%v", avg)
	}

	r, err := reviews.Create(f.as(reviewer), b.ID, ReviewFields{Title: ptr("Great"), Text: ptr("Loved it"), Rating: ptr(4)})
	if err != nil {
		t.Fatalf("Create review: %v", err)
	}
	gotReview, err := reviews.Update(f.as(reviewer), r.ID, ReviewFields{Rating: ptr(9)})
	if err != nil {
		t.Fatalf("Update review: %v", err)
	}
	if gotReview.Rating != 9 {
		t.Fatalf("returned review rating: got=%d", gotReview.Rating)
	}
	if avg := testutil.ReloadBootcamp(t, f.ctx, f.db, b.ID).AverageRating; avg == nil || *avg != 9 {
		t.Fatalf("average rating after update: got=%v", avg)
	}
}

func TestCourseCreateChecks(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "pub@example.com", domain.RolePublisher)
	other := f.user(t, "other@example.com", domain.RolePublisher)
	b := testutil.SeedBootcamp(t, f.ctx, f.db, owner.ID, "Devworks")

	_, err := f.courses.Create(f.ctx, b.ID, courseInput(1000))
	wantStatus(t, err, http.StatusUnauthorized)

	_, err = f.courses.Create(f.as(other), b.ID, courseInput(1000))
	wantStatus(t, err, http.StatusUnauthorized)

	_, err = f.courses.Create(f.as(owner), uuid.New(), courseInput(1000))
	wantStatus(t, err, http.StatusNotFound)

	bad := courseInput(1000)
	bad.MinimumSkill = ptr("expert")
	_, err = f.courses.Create(f.as(owner), b.ID, bad)
	wantStatus(t, err, http.StatusBadRequest)

	if got := testutil.ReloadBootcamp(t, f.ctx, f.db, b.ID).AverageCost; got != nil {
		t.Fatalf("rejected writes must not set a rollup, got=%v", *got)
	}
}

func TestReviewWritesMaintainAverageRating(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "pub@example.com", domain.RolePublisher)
	alice := f.user(t, "alice@example.com", domain.RoleUser)
	bob := f.user(t, "bob@example.com", domain.RoleUser)
	b := testutil.SeedBootcamp(t, f.ctx, f.db, owner.ID, "Devworks")

	in := func(rating int) ReviewFields {
		return ReviewFields{Title: ptr("Great"), Text: ptr("Loved it"), Rating: ptr(rating)}
	}
	if _, err := f.reviews.Create(f.as(alice), b.ID, in(8)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	r, err := f.reviews.Create(f.as(bob), b.ID, in(9))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := testutil.ReloadBootcamp(t, f.ctx, f.db, b.ID).AverageRating; got == nil || *got != 8.5 {
		t.Fatalf("average rating: got=%v", got)
	}

	_, err = f.reviews.Create(f.as(alice), b.ID, in(2))
	wantStatus(t, err, http.StatusBadRequest)

	_, err = f.reviews.Create(f.as(owner), b.ID, in(11))
	wantStatus(t, err, http.StatusBadRequest)

	wantStatus(t, f.reviews.Delete(f.as(alice), r.ID), http.StatusUnauthorized)
	if err := f.reviews.Delete(f.as(bob), r.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := testutil.ReloadBootcamp(t, f.ctx, f.db, b.ID).AverageRating; got == nil || *got != 8 {
		t.Fatalf("average rating after delete: got=%v", got)
	}
}

func TestBootcampCreateGeocodesAndLimitsPublishers(t *testing.T) {
	f := newFixture(t)
	pub := f.user(t, "pub@example.com", domain.RolePublisher)

	b, err := f.bootcamps.Create(f.as(pub), bootcampInput("Devworks Bootcamp", "233 Bay State Rd Boston MA 02215"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Slug != "devworks-bootcamp" {
		t.Fatalf("slug: got=%q", b.Slug)
	}
	stored := testutil.ReloadBootcamp(t, f.ctx, f.db, b.ID)
	if !stored.Location.HasCoordinates() || stored.Location.City != "Boston" {
		t.Fatalf("location not stored: %+v", stored.Location)
	}
	if stored.AverageCost != nil || stored.AverageRating != nil {
		t.Fatalf("new bootcamp must start without rollups")
	}

	_, err = f.bootcamps.Create(f.as(pub), bootcampInput("Second", "20 W 34th St New York NY 10001"))
	wantStatus(t, err, http.StatusBadRequest)
	if !strings.Contains(err.Error(), "has already published a bootcamp") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestBootcampCreateWithoutGeocodeMatch(t *testing.T) {
	f := newFixture(t)
	pub := f.user(t, "pub@example.com", domain.RolePublisher)

	b, err := f.bootcamps.Create(f.as(pub), bootcampInput("Nowhere", "1 Unknown Rd"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if testutil.ReloadBootcamp(t, f.ctx, f.db, b.ID).Location.HasCoordinates() {
		t.Fatalf("expected no coordinates for unresolved address")
	}
}

func TestBootcampUpdateIgnoresRollupsAndReslugs(t *testing.T) {
	f := newFixture(t)
	pub := f.user(t, "pub@example.com", domain.RolePublisher)
	stranger := f.user(t, "x@example.com", domain.RolePublisher)
	ctx := f.as(pub)

	b, err := f.bootcamps.Create(ctx, bootcampInput("Devworks", "233 Bay State Rd Boston MA 02215"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.courses.Create(ctx, b.ID, courseInput(1500)); err != nil {
		t.Fatalf("Create course: %v", err)
	}

	_, err = f.bootcamps.Update(f.as(stranger), b.ID, BootcampFields{Name: ptr("Hijacked")})
	wantStatus(t, err, http.StatusUnauthorized)

	updated, err := f.bootcamps.Update(ctx, b.ID, BootcampFields{Name: ptr("Dev Works Two"), Address: ptr("20 W 34th St New York NY 10001")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Slug != "dev-works-two" || updated.Location.City != "New York" {
		t.Fatalf("unexpected update: slug=%q city=%q", updated.Slug, updated.Location.City)
	}
	if updated.AverageCost == nil || *updated.AverageCost != 1500 {
		t.Fatalf("average cost changed by update: %v", updated.AverageCost)
	}
}

func TestBootcampDeleteRemovesChildren(t *testing.T) {
	f := newFixture(t)
	pub := f.user(t, "pub@example.com", domain.RolePublisher)
	reader := f.user(t, "reader@example.com", domain.RoleUser)
	ctx := f.as(pub)

	b, err := f.bootcamps.Create(ctx, bootcampInput("Devworks", "233 Bay State Rd Boston MA 02215"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.courses.Create(ctx, b.ID, courseInput(1500)); err != nil {
		t.Fatalf("Create course: %v", err)
	}
	if _, err := f.reviews.Create(f.as(reader), b.ID, ReviewFields{Title: ptr("Ok"), Text: ptr("Fine"), Rating: ptr(6)}); err != nil {
		t.Fatalf("Create review: %v", err)
	}

	wantStatus(t, f.bootcamps.Delete(f.as(reader), b.ID), http.StatusUnauthorized)
	if err := f.bootcamps.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var courses, reviews int64
	f.db.Model(&domain.Course{}).Where("bootcamp_id = ?", b.ID).Count(&courses)
	f.db.Model(&domain.Review{}).Where("bootcamp_id = ?", b.ID).Count(&reviews)
	if courses != 0 || reviews != 0 {
		t.Fatalf("children left behind: courses=%d reviews=%d", courses, reviews)
	}
	_, err = f.bootcamps.Get(f.ctx, b.ID)
	wantStatus(t, err, http.StatusNotFound)
}

func TestBootcampWithinRadius(t *testing.T) {
	f := newFixture(t)
	admin := f.user(t, "admin@example.com", domain.RoleAdmin)
	ctx := f.as(admin)

	near, err := f.bootcamps.Create(ctx, bootcampInput("Boston Camp", "233 Bay State Rd Boston MA 02215"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.bootcamps.Create(ctx, bootcampInput("NYC Camp", "20 W 34th St New York NY 10001")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	hits, err := f.bootcamps.WithinRadius(f.ctx, "02215", 10)
	if err != nil {
		t.Fatalf("WithinRadius: %v", err)
	}
	if len(hits) != 1 || hits[0].Bootcamp.ID != near.ID {
		t.Fatalf("unexpected hits: %+v", hits)
	}

	hits, err = f.bootcamps.WithinRadius(f.ctx, "02215", 500)
	if err != nil {
		t.Fatalf("WithinRadius: %v", err)
	}
	if len(hits) != 2 || hits[0].Bootcamp.ID != near.ID {
		t.Fatalf("expected both, nearest first: %+v", hits)
	}

	_, err = f.bootcamps.WithinRadius(f.ctx, "99999", 10)
	wantStatus(t, err, http.StatusBadRequest)
}

func TestBootcampUploadPhoto(t *testing.T) {
	f := newFixture(t)
	pub := f.user(t, "pub@example.com", domain.RolePublisher)
	ctx := f.as(pub)
	b, err := f.bootcamps.Create(ctx, bootcampInput("Devworks", "233 Bay State Rd Boston MA 02215"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	upload := func(contentType string, size int) PhotoUpload {
		return PhotoUpload{Filename: "me.png", ContentType: contentType, Size: int64(size), Body: bytes.NewReader(make([]byte, size))}
	}

	_, err = f.bootcamps.UploadPhoto(ctx, b.ID, PhotoUpload{})
	wantStatus(t, err, http.StatusBadRequest)
	_, err = f.bootcamps.UploadPhoto(ctx, b.ID, upload("text/plain", 10))
	wantStatus(t, err, http.StatusBadRequest)
	_, err = f.bootcamps.UploadPhoto(ctx, b.ID, upload("image/png", 2000))
	wantStatus(t, err, http.StatusBadRequest)

	name, err := f.bootcamps.UploadPhoto(ctx, b.ID, upload("image/png", 10))
	if err != nil {
		t.Fatalf("UploadPhoto: %v", err)
	}
	if name != "photo_"+b.ID.String()+".png" {
		t.Fatalf("photo name: got=%q", name)
	}
	if testutil.ReloadBootcamp(t, f.ctx, f.db, b.ID).Photo != name {
		t.Fatalf("photo not recorded")
	}

	f.photos.err = errors.New("disk full")
	_, err = f.bootcamps.UploadPhoto(ctx, b.ID, upload("image/png", 10))
	wantStatus(t, err, http.StatusInternalServerError)
}

func TestAuthRegisterLoginAndToken(t *testing.T) {
	f := newFixture(t)

	u, token, err := f.auth.Register(f.ctx, RegisterInput{Name: "Jane", Email: " Jane@Example.com ", Password: "secret123", Role: domain.RolePublisher})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "jane@example.com" || token == "" {
		t.Fatalf("unexpected register result: email=%q token=%q", u.Email, token)
	}

	_, _, err = f.auth.Register(f.ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret123"})
	wantStatus(t, err, http.StatusBadRequest)
	_, _, err = f.auth.Register(f.ctx, RegisterInput{Name: "Root", Email: "root@example.com", Password: "secret123", Role: domain.RoleAdmin})
	wantStatus(t, err, http.StatusBadRequest)

	_, _, err = f.auth.Login(f.ctx, "jane@example.com", "wrong-password")
	wantStatus(t, err, http.StatusUnauthorized)
	_, _, err = f.auth.Login(f.ctx, "", "")
	wantStatus(t, err, http.StatusBadRequest)

	_, token, err = f.auth.Login(f.ctx, "JANE@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	ctx, err := f.auth.SetContextFromToken(f.ctx, token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != u.ID || rd.Role != domain.RolePublisher {
		t.Fatalf("unexpected request data: %+v", rd)
	}

	_, err = f.auth.SetContextFromToken(f.ctx, token+"x")
	wantStatus(t, err, http.StatusUnauthorized)
}

func TestAuthForgotAndResetPassword(t *testing.T) {
	f := newFixture(t)
	if _, _, err := f.auth.Register(f.ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	wantStatus(t, f.auth.ForgotPassword(f.ctx, "nobody@example.com", "http://localhost/api/v1/auth/resetpassword"), http.StatusNotFound)

	if err := f.auth.ForgotPassword(f.ctx, "jane@example.com", "http://localhost/api/v1/auth/resetpassword"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(f.mailer.sent))
	}
	text := f.mailer.sent[0].Text
	raw := text[strings.LastIndex(text, "/")+1:]

	_, _, err := f.auth.ResetPassword(f.ctx, "not-a-token", "newsecret")
	wantStatus(t, err, http.StatusBadRequest)

	if _, _, err := f.auth.ResetPassword(f.ctx, raw, "newsecret"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if _, _, err := f.auth.Login(f.ctx, "jane@example.com", "newsecret"); err != nil {
		t.Fatalf("Login with new password: %v", err)
	}
	_, _, err = f.auth.ResetPassword(f.ctx, raw, "another1")
	wantStatus(t, err, http.StatusBadRequest)
}

func TestAuthForgotPasswordMailFailureClearsToken(t *testing.T) {
	f := newFixture(t)
	u, _, err := f.auth.Register(f.ctx, RegisterInput{Name: "Jane", Email: "jane@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	f.mailer.err = errors.New("smtp down")

	wantStatus(t, f.auth.ForgotPassword(f.ctx, "jane@example.com", "http://localhost/reset"), http.StatusInternalServerError)

	var stored domain.User
	if err := f.db.Where("id = ?", u.ID).First(&stored).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if stored.ResetPasswordToken != nil || stored.ResetPasswordExpire != nil {
		t.Fatalf("reset token should be cleared after mail failure")
	}
}
