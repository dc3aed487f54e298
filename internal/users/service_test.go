package users

import (
	"context"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/chat-dashboard/internal/auth"
	"github.com/suPer8Hu/chat-dashboard/internal/models"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func setupService(t *testing.T) (*Service, *Repo) {
	t.Helper()
	repo := NewRepo(openTestDB(t))
	return NewService(repo), repo
}

func mustCreate(t *testing.T, svc *Service, username string, role models.Role) *models.SanitizedUser {
	t.Helper()
	u, err := svc.Create(context.Background(), CreateUserInput{
		Username: username,
		Password: "pw-" + username,
		Name:     "Name " + username,
		Role:     role,
	})
	require.NoError(t, err)
	return u
}

func TestCreateHashesAndSanitizes(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	u := mustCreate(t, svc, "alice", models.RoleUser)
	assert.NotZero(t, u.ID)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, models.RoleUser, u.Role)

	stored, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "pw-alice", stored.Password)
	assert.True(t, auth.CheckPassword("pw-alice", stored.Password))
}

func TestCreateDuplicateLeavesRowCountUnchanged(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	mustCreate(t, svc, "admin", models.RoleAdmin)
	before, err := repo.Count(ctx)
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateUserInput{Username: "admin", Password: "x", Name: "Other", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	after, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCreateAndFetchMapsUniqueViolation(t *testing.T) {
	_, repo := setupService(t)
	ctx := context.Background()

	_, err := repo.CreateAndFetch(ctx, &models.User{Username: "dup", Password: "h", Name: "A", Role: models.RoleUser})
	require.NoError(t, err)
	_, err = repo.CreateAndFetch(ctx, &models.User{Username: "dup", Password: "h", Name: "B", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestCreateValidation(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	cases := map[string]struct {
		in   CreateUserInput
		want error
	}{
		"missing username": {CreateUserInput{Password: "p", Name: "n", Role: models.RoleUser}, ErrMissingField},
		"missing password": {CreateUserInput{Username: "u", Name: "n", Role: models.RoleUser}, ErrMissingField},
		"missing name":     {CreateUserInput{Username: "u", Password: "p", Role: models.RoleUser}, ErrMissingField},
		"missing role":     {CreateUserInput{Username: "u", Password: "p", Name: "n"}, ErrMissingField},
		"bad role":         {CreateUserInput{Username: "u", Password: "p", Name: "n", Role: "owner"}, ErrInvalidRole},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestListNewestFirstWithoutSecrets(t *testing.T) {
	svc, _ := setupService(t)

	a := mustCreate(t, svc, "a", models.RoleUser)
	b := mustCreate(t, svc, "b", models.RoleAdmin)
	c := mustCreate(t, svc, "c", models.RoleUser)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []uint64{c.ID, b.ID, a.ID}, []uint64{list[0].ID, list[1].ID, list[2].ID})
}

func TestDeleteSelfAlwaysFails(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	for _, role := range []models.Role{models.RoleAdmin, models.RoleUser} {
		u := mustCreate(t, svc, "self-"+string(role), role)
		err := svc.Delete(ctx, u.ID, u.ID)
		assert.ErrorIs(t, err, ErrSelfDeletion)
	}
	// self-deletion is rejected even for ids that do not exist
	assert.ErrorIs(t, svc.Delete(ctx, 999, 999), ErrSelfDeletion)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestDelete(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	admin := mustCreate(t, svc, "admin", models.RoleAdmin)
	victim := mustCreate(t, svc, "victim", models.RoleUser)

	require.NoError(t, svc.Delete(ctx, victim.ID, admin.ID))
	_, err := repo.GetByID(ctx, victim.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, victim.ID, admin.ID), ErrNotFound)
}

func TestResetPassword(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	admin := mustCreate(t, svc, "admin", models.RoleAdmin)
	bob := mustCreate(t, svc, "bob", models.RoleUser)

	require.NoError(t, svc.ResetPassword(ctx, bob.ID, admin.ID, "new-pw"))
	stored, err := repo.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword("new-pw", stored.Password))
	assert.False(t, auth.CheckPassword("pw-bob", stored.Password))

	assert.ErrorIs(t, svc.ResetPassword(ctx, 999, admin.ID, "x"), ErrNotFound)
	assert.ErrorIs(t, svc.ResetPassword(ctx, admin.ID, admin.ID, "x"), ErrSelfPasswordReset)
	assert.ErrorIs(t, svc.ResetPassword(ctx, bob.ID, admin.ID, ""), ErrPasswordRequired)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "admin", "admin", "Administrator")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "admin", "other", "Administrator")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := repo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.True(t, auth.CheckPassword("admin", u.Password))
}

func TestReplaceAdmin(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	mustCreate(t, svc, "admin", models.RoleUser)

	u, err := svc.ReplaceAdmin(ctx, "admin", "fresh", "Administrator")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	stored, err := repo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword("fresh", stored.Password))
}

// openCaseInsensitiveDB builds the users table with a case-folding username
// column, the way a default mysql utf8mb4 collation behaves.
func openCaseInsensitiveDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL COLLATE NOCASE UNIQUE,
		password TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at DATETIME
	)`).Error)
	return db
}

func TestUsernameMatchIsExactOnCaseFoldingColumn(t *testing.T) {
	repo := NewRepo(openCaseInsensitiveDB(t))
	svc := NewService(repo)
	ctx := context.Background()

	mustCreate(t, svc, "admin", models.RoleAdmin)

	got, err := repo.FindByUsername(ctx, "ADMIN")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "admin", got.Username)

	_, err = auth.NewAuthenticator(repo).Authenticate(ctx, "Admin", "pw-admin")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	// the column still folds case, so the unique index rejects the insert
	_, err = repo.CreateAndFetch(ctx, &models.User{Username: "Admin", Password: "h", Name: "B", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrDuplicateUsername)
}
