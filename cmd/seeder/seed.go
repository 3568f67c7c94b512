package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	dataagg "github.com/yungbote/devcamper-backend/internal/data/aggregates"
	"github.com/yungbote/devcamper-backend/internal/data/repos"
	"github.com/yungbote/devcamper-backend/internal/domain"
	"github.com/yungbote/devcamper-backend/internal/normalization"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

type seedUser struct {
	ID       string `json:"_id" yaml:"_id"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Role     string `json:"role" yaml:"role"`
	Password string `json:"password" yaml:"password"`
}

type seedBootcamp struct {
	ID            string   `json:"_id" yaml:"_id"`
	User          string   `json:"user" yaml:"user"`
	Name          string   `json:"name" yaml:"name"`
	Description   string   `json:"description" yaml:"description"`
	Website       string   `json:"website" yaml:"website"`
	Phone         string   `json:"phone" yaml:"phone"`
	Email         string   `json:"email" yaml:"email"`
	Address       string   `json:"address" yaml:"address"`
	Careers       []string `json:"careers" yaml:"careers"`
	Housing       bool     `json:"housing" yaml:"housing"`
	JobAssistance bool     `json:"jobAssistance" yaml:"jobAssistance"`
	JobGuarantee  bool     `json:"jobGuarantee" yaml:"jobGuarantee"`
	AcceptGi      bool     `json:"acceptGi" yaml:"acceptGi"`
	Latitude      *float64 `json:"latitude" yaml:"latitude"`
	Longitude     *float64 `json:"longitude" yaml:"longitude"`
	Zipcode       string   `json:"zipcode" yaml:"zipcode"`
}

type seedCourse struct {
	ID                   string  `json:"_id" yaml:"_id"`
	Bootcamp             string  `json:"bootcamp" yaml:"bootcamp"`
	User                 string  `json:"user" yaml:"user"`
	Title                string  `json:"title" yaml:"title"`
	Description          string  `json:"description" yaml:"description"`
	Weeks                string  `json:"weeks" yaml:"weeks"`
	Tuition              float64 `json:"tuition" yaml:"tuition"`
	MinimumSkill         string  `json:"minimumSkill" yaml:"minimumSkill"`
	ScholarshipAvailable bool    `json:"scholarshipAvailable" yaml:"scholarshipAvailable"`
}

type seedReview struct {
	ID       string `json:"_id" yaml:"_id"`
	Bootcamp string `json:"bootcamp" yaml:"bootcamp"`
	User     string `json:"user" yaml:"user"`
	Title    string `json:"title" yaml:"title"`
	Text     string `json:"text" yaml:"text"`
	Rating   int    `json:"rating" yaml:"rating"`
}

type seedSet struct {
	Users     []seedUser
	Bootcamps []seedBootcamp
	Courses   []seedCourse
	Reviews   []seedReview
}

var seedExtensions = []string{".json", ".yaml", ".yml"}

// loadSeedDir reads users, bootcamps, courses and reviews from dir. Missing files
// load as empty collections.
func loadSeedDir(ctx context.Context, dir string) (*seedSet, error) {
	set := &seedSet{}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error { return loadSeedFile(dir, "users", &set.Users) })
	g.Go(func() error { return loadSeedFile(dir, "bootcamps", &set.Bootcamps) })
	g.Go(func() error { return loadSeedFile(dir, "courses", &set.Courses) })
	g.Go(func() error { return loadSeedFile(dir, "reviews", &set.Reviews) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

func loadSeedFile(dir, name string, out any) error {
	for _, ext := range seedExtensions {
		path := filepath.Join(dir, name+ext)
		raw, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if ext == ".json" {
			err = json.Unmarshal(raw, out)
		} else {
			err = yaml.Unmarshal(raw, out)
		}
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	}
	return nil
}

type seeder struct {
	db         *gorm.DB
	log        *logger.Logger
	users      repos.UserRepo
	bootcamps  repos.BootcampRepo
	courses    repos.CourseRepo
	reviews    repos.ReviewRepo
	rollups    *dataagg.BootcampRollups
	bcryptCost int
}

func newSeeder(db *gorm.DB, log *logger.Logger, hooks dataagg.Hooks) (*seeder, error) {
	rollups, err := dataagg.NewBootcampRollups(dataagg.RollupDeps{
		BaseDeps: dataagg.BaseDeps{DB: db, Log: log, Hooks: hooks},
	})
	if err != nil {
		return nil, fmt.Errorf("init rollups: %w", err)
	}
	return &seeder{
		db:         db,
		log:        log.With("component", "Seeder"),
		users:      repos.NewUserRepo(db, log),
		bootcamps:  repos.NewBootcampRepo(db, log),
		courses:    repos.NewCourseRepo(db, log),
		reviews:    repos.NewReviewRepo(db, log),
		rollups:    rollups,
		bcryptCost: bcrypt.DefaultCost,
	}, nil
}

// Import inserts the set in one transaction, parents first, then recomputes every
// bootcamp's rollups.
func (s *seeder) Import(ctx context.Context, set *seedSet) error {
	users, err := s.buildUsers(set.Users)
	if err != nil {
		return err
	}
	bootcamps, err := buildBootcamps(set.Bootcamps)
	if err != nil {
		return err
	}
	courses, err := buildCourses(set.Courses)
	if err != nil {
		return err
	}
	reviews, err := buildReviews(set.Reviews)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.users.Create(ctx, tx, users); err != nil {
			return fmt.Errorf("insert users: %w", err)
		}
		for _, b := range bootcamps {
			if _, err := s.bootcamps.Create(ctx, tx, b); err != nil {
				return fmt.Errorf("insert bootcamp %q: %w", b.Name, err)
			}
		}
		if err := s.courses.CreateMany(ctx, tx, courses); err != nil {
			return fmt.Errorf("insert courses: %w", err)
		}
		if err := s.reviews.CreateMany(ctx, tx, reviews); err != nil {
			return fmt.Errorf("insert reviews: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("Seed data inserted",
		"users", len(users),
		"bootcamps", len(bootcamps),
		"courses", len(courses),
		"reviews", len(reviews),
	)

	_, err = s.Recompute(ctx)
	return err
}

// Recompute refreshes both rollups for every bootcamp and reports how many
// bootcamps were visited.
func (s *seeder) Recompute(ctx context.Context) (int, error) {
	ids, err := s.bootcamps.ListIDs(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("list bootcamps: %w", err)
	}
	if _, err := s.rollups.AverageCost.RecomputeMany(ctx, ids); err != nil {
		return 0, fmt.Errorf("recompute average cost: %w", err)
	}
	if _, err := s.rollups.AverageRating.RecomputeMany(ctx, ids); err != nil {
		return 0, fmt.Errorf("recompute average rating: %w", err)
	}
	return len(ids), nil
}

// Destroy removes every review, course, bootcamp and user, children first.
func (s *seeder) Destroy(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&domain.Review{}, &domain.Course{}, &domain.Bootcamp{}, &domain.User{}} {
			if err := all.Delete(model).Error; err != nil {
				return fmt.Errorf("delete %T: %w", model, err)
			}
		}
		return nil
	})
}

func (s *seeder) buildUsers(in []seedUser) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(in))
	for i, su := range in {
		id, err := parseSeedID(su.ID)
		if err != nil {
			return nil, fmt.Errorf("users[%d]: %w", i, err)
		}
		if strings.TrimSpace(su.Password) == "" {
			return nil, fmt.Errorf("users[%d]: password required", i)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("users[%d]: hash password: %w", i, err)
		}
		out = append(out, &domain.User{
			ID:       id,
			Name:     su.Name,
			Email:    su.Email,
			Role:     su.Role,
			Password: string(hash),
		})
	}
	return out, nil
}

func buildBootcamps(in []seedBootcamp) ([]*domain.Bootcamp, error) {
	out := make([]*domain.Bootcamp, 0, len(in))
	for i, sb := range in {
		id, err := parseSeedID(sb.ID)
		if err != nil {
			return nil, fmt.Errorf("bootcamps[%d]: %w", i, err)
		}
		owner, err := uuid.Parse(sb.User)
		if err != nil {
			return nil, fmt.Errorf("bootcamps[%d]: user: %w", i, err)
		}
		for _, c := range sb.Careers {
			if !domain.IsValidCareer(c) {
				return nil, fmt.Errorf("bootcamps[%d]: unknown career %q", i, c)
			}
		}
		out = append(out, &domain.Bootcamp{
			ID:            id,
			UserID:        owner,
			Name:          sb.Name,
			Slug:          normalization.Slug(sb.Name),
			Description:   sb.Description,
			Website:       sb.Website,
			Phone:         sb.Phone,
			Email:         sb.Email,
			Address:       sb.Address,
			Careers:       datatypes.JSONSlice[string](sb.Careers),
			Housing:       sb.Housing,
			JobAssistance: sb.JobAssistance,
			JobGuarantee:  sb.JobGuarantee,
			AcceptGi:      sb.AcceptGi,
			Location: domain.Location{
				Latitude:         sb.Latitude,
				Longitude:        sb.Longitude,
				FormattedAddress: sb.Address,
				Zipcode:          sb.Zipcode,
			},
		})
	}
	return out, nil
}

func buildCourses(in []seedCourse) ([]*domain.Course, error) {
	out := make([]*domain.Course, 0, len(in))
	for i, sc := range in {
		id, err := parseSeedID(sc.ID)
		if err != nil {
			return nil, fmt.Errorf("courses[%d]: %w", i, err)
		}
		bootcampID, err := uuid.Parse(sc.Bootcamp)
		if err != nil {
			return nil, fmt.Errorf("courses[%d]: bootcamp: %w", i, err)
		}
		owner, err := uuid.Parse(sc.User)
		if err != nil {
			return nil, fmt.Errorf("courses[%d]: user: %w", i, err)
		}
		if !domain.IsValidSkill(sc.MinimumSkill) {
			return nil, fmt.Errorf("courses[%d]: unknown minimum skill %q", i, sc.MinimumSkill)
		}
		out = append(out, &domain.Course{
			ID:                   id,
			BootcampID:           bootcampID,
			UserID:               owner,
			Title:                sc.Title,
			Description:          sc.Description,
			Weeks:                sc.Weeks,
			Tuition:              sc.Tuition,
			MinimumSkill:         sc.MinimumSkill,
			ScholarshipAvailable: sc.ScholarshipAvailable,
		})
	}
	return out, nil
}

func buildReviews(in []seedReview) ([]*domain.Review, error) {
	out := make([]*domain.Review, 0, len(in))
	for i, sr := range in {
		id, err := parseSeedID(sr.ID)
		if err != nil {
			return nil, fmt.Errorf("reviews[%d]: %w", i, err)
		}
		bootcampID, err := uuid.Parse(sr.Bootcamp)
		if err != nil {
			return nil, fmt.Errorf("reviews[%d]: bootcamp: %w", i, err)
		}
		author, err := uuid.Parse(sr.User)
		if err != nil {
			return nil, fmt.Errorf("reviews[%d]: user: %w", i, err)
		}
		if sr.Rating < domain.MinRating || sr.Rating > domain.MaxRating {
			return nil, fmt.Errorf("reviews[%d]: rating %d out of range", i, sr.Rating)
		}
		out = append(out, &domain.Review{
			ID:         id,
			BootcampID: bootcampID,
			UserID:     author,
			Title:      sr.Title,
			Text:       sr.Text,
			Rating:     sr.Rating,
		})
	}
	return out, nil
}

// parseSeedID accepts an empty id, which lets BeforeCreate assign one.
func parseSeedID(raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("_id: %w", err)
	}
	return id, nil
}
