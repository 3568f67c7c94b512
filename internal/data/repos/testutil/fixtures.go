package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/devcamper-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email, role string) *domain.User {
	tb.Helper()
	u := &domain.User{
		ID:       uuid.New(),
		Name:     "Test User",
		Email:    email,
		Role:     role,
		Password: "pw",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedBootcamp(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string) *domain.Bootcamp {
	tb.Helper()
	b := &domain.Bootcamp{
		ID:          uuid.New(),
		UserID:      ownerID,
		Name:        name,
		Slug:        fmt.Sprintf("slug-%s", uuid.NewString()[:8]),
		Description: "A bootcamp",
		Address:     "233 Bay State Rd Boston MA 02215",
		Careers:     datatypes.JSONSlice[string]{"Web Development"},
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed bootcamp: %v", err)
	}
	return b
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, bootcampID, ownerID uuid.UUID, tuition float64) *domain.Course {
	tb.Helper()
	c := &domain.Course{
		ID:           uuid.New(),
		BootcampID:   bootcampID,
		UserID:       ownerID,
		Title:        "Course",
		Description:  "Learn things",
		Weeks:        "8",
		Tuition:      tuition,
		MinimumSkill: domain.SkillBeginner,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedReview(tb testing.TB, ctx context.Context, tx *gorm.DB, bootcampID, userID uuid.UUID, rating int) *domain.Review {
	tb.Helper()
	r := &domain.Review{
		ID:         uuid.New(),
		BootcampID: bootcampID,
		UserID:     userID,
		Title:      "Review",
		Text:       "Good",
		Rating:     rating,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed review: %v", err)
	}
	return r
}

// ReloadBootcamp reads the bootcamp row back, bypassing any cached struct.
func ReloadBootcamp(tb testing.TB, ctx context.Context, tx *gorm.DB, id uuid.UUID) *domain.Bootcamp {
	tb.Helper()
	var b domain.Bootcamp
	if err := tx.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		tb.Fatalf("reload bootcamp: %v", err)
	}
	return &b
}
