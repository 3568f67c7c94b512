package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/devcamper-backend/internal/data/repos/query"
	"github.com/yungbote/devcamper-backend/internal/data/repos/testutil"
	"github.com/yungbote/devcamper-backend/internal/domain"
)

func TestUserRepo(t *testing.T) {
	db := testutil.SQLite(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, nil, []*domain.User{
		{Name: "Ann", Email: " Ann@Example.com ", Password: "pw"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: unexpected result: %+v", created)
	}
	if created[0].Role != domain.RoleUser {
		t.Fatalf("default role: got %q", created[0].Role)
	}

	got, err := repo.GetByID(ctx, nil, created[0].ID)
	if err != nil || got == nil || got.Email != "ann@example.com" {
		t.Fatalf("GetByID: got=%+v err=%v", got, err)
	}

	byEmail, err := repo.GetByEmail(ctx, nil, "ANN@example.com")
	if err != nil || byEmail == nil || byEmail.ID != created[0].ID {
		t.Fatalf("GetByEmail: got=%+v err=%v", byEmail, err)
	}

	missing, err := repo.GetByID(ctx, nil, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID (missing): got=%+v err=%v", missing, err)
	}

	exists, err := repo.EmailExists(ctx, nil, "ann@example.com")
	if err != nil || !exists {
		t.Fatalf("EmailExists: exists=%v err=%v", exists, err)
	}

	if err := repo.Update(ctx, nil, created[0].ID, map[string]any{"name": "Annie"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.GetByID(ctx, nil, created[0].ID)
	if got.Name != "Annie" {
		t.Fatalf("Update: name=%q", got.Name)
	}

	if err := repo.Delete(ctx, nil, created[0].ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := repo.GetByID(ctx, nil, created[0].ID); got != nil {
		t.Fatalf("Delete: user still present")
	}
}

func TestUserRepoResetToken(t *testing.T) {
	db := testutil.SQLite(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, db, "reset@example.com", domain.RoleUser)

	now := time.Now().UTC()
	hash := "abc123"
	expire := now.Add(10 * time.Minute)
	if err := repo.SetResetToken(ctx, nil, u.ID, &hash, &expire); err != nil {
		t.Fatalf("SetResetToken: %v", err)
	}
	got, err := repo.GetByResetToken(ctx, nil, hash, now)
	if err != nil || got == nil || got.ID != u.ID {
		t.Fatalf("GetByResetToken: got=%+v err=%v", got, err)
	}
	expired, err := repo.GetByResetToken(ctx, nil, hash, now.Add(time.Hour))
	if err != nil || expired != nil {
		t.Fatalf("GetByResetToken (expired): got=%+v err=%v", expired, err)
	}

	if err := repo.SetResetToken(ctx, nil, u.ID, nil, nil); err != nil {
		t.Fatalf("clear token: %v", err)
	}
	if got, _ := repo.GetByResetToken(ctx, nil, hash, now); got != nil {
		t.Fatalf("token should be cleared")
	}
}

func TestUserRepoList(t *testing.T) {
	db := testutil.SQLite(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()
	testutil.SeedUser(t, ctx, db, "a@example.com", domain.RoleUser)
	testutil.SeedUser(t, ctx, db, "b@example.com", domain.RolePublisher)
	testutil.SeedUser(t, ctx, db, "c@example.com", domain.RolePublisher)

	rows, total, err := repo.List(ctx, nil, query.ListQuery{
		Page:    1,
		Limit:   1,
		Filters: []query.Filter{{Field: "role", Op: query.OpEq, Values: []string{domain.RolePublisher}}},
		Sort:    []string{"email"},
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(rows) != 1 || rows[0].Email != "b@example.com" {
		t.Fatalf("List: total=%d rows=%+v", total, rows)
	}
}
