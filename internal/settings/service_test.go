package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suPer8Hu/chat-dashboard/internal/models"
	"gorm.io/gorm"
)

type memLogoStore struct {
	mu      sync.Mutex
	n       int
	saved   []string
	removed []string
	saveErr error
}

func (s *memLogoStore) Save(_ context.Context, logo LogoUpload) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.n++
	ref := fmt.Sprintf("/uploads/logo-%d.png", s.n)
	s.saved = append(s.saved, ref)
	return ref, nil
}

func (s *memLogoStore) Remove(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, ref)
	return nil
}

type recordingJanitor struct {
	refs []string
}

func (j *recordingJanitor) Discard(ref string) { j.refs = append(j.refs, ref) }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Settings{}))
	return db
}

func setupService(t *testing.T, seed bool) (*Service, *Repo, *memLogoStore, *recordingJanitor) {
	t.Helper()
	repo := NewRepo(openTestDB(t))
	logos := &memLogoStore{}
	janitor := &recordingJanitor{}
	svc := NewService(repo, logos, janitor)
	if seed {
		_, err := svc.EnsureDefaults(context.Background(), Defaults{
			CompanyName: "Jurbot",
			AIName:      "Jurbot",
			UserName:    "Anonym",
			WebhookURL:  "https://example.com/hook",
			Theme:       DefaultTheme,
		})
		require.NoError(t, err)
	}
	return svc, repo, logos, janitor
}

func png() *LogoUpload {
	return &LogoUpload{Data: []byte("\x89PNG\r\n\x1a\n0000")}
}

func TestCurrentWithoutSnapshot(t *testing.T) {
	svc, _, _, _ := setupService(t, false)

	_, err := svc.Current(context.Background())
	assert.ErrorIs(t, err, ErrConfigurationMissing)

	_, err = svc.Update(context.Background(), models.RoleAdmin, Patch{FieldTheme: str("dark")}, nil)
	assert.ErrorIs(t, err, ErrConfigurationMissing)
}

func TestEnsureDefaultsOnlyOnce(t *testing.T) {
	svc, _, _, _ := setupService(t, true)
	ctx := context.Background()

	wrote, err := svc.EnsureDefaults(ctx, Defaults{CompanyName: "Other", AIName: "x", UserName: "y", Theme: "dark"})
	require.NoError(t, err)
	assert.False(t, wrote)

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jurbot", cur.CompanyName)
	assert.Equal(t, "Anonym", cur.UserName)
	assert.Equal(t, "winter", cur.Theme)
	assert.Nil(t, cur.LogoURL)
}

func TestUpdateAppendsSnapshotAndLatestWins(t *testing.T) {
	svc, repo, _, _ := setupService(t, true)
	ctx := context.Background()

	first, err := svc.Current(ctx)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, models.RoleUser, Patch{FieldTheme: str("dark")}, nil)
	require.NoError(t, err)
	assert.Greater(t, updated.ID, first.ID)

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated.ID, cur.ID)
	assert.Equal(t, "dark", cur.Theme)
	assert.Equal(t, first.CompanyName, cur.CompanyName)
	assert.Equal(t, first.WebhookURL, cur.WebhookURL)

	hist, err := repo.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, hist, 2)
}

func TestUpdateForbiddenLeavesStoreUnchanged(t *testing.T) {
	svc, repo, logos, janitor := setupService(t, true)
	ctx := context.Background()

	_, err := svc.Update(ctx, models.RoleUser, Patch{FieldCompanyName: str("Evil")}, png())
	assert.ErrorIs(t, err, ErrForbidden)

	hist, err := repo.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
	assert.Empty(t, logos.saved)
	assert.Empty(t, janitor.refs)
}

func TestThemeOnlyIgnoresAttachedLogo(t *testing.T) {
	svc, _, logos, janitor := setupService(t, true)

	got, err := svc.Update(context.Background(), models.RoleAdmin, Patch{FieldTheme: str("retro")}, png())
	require.NoError(t, err)
	assert.Nil(t, got.LogoURL)
	assert.Empty(t, logos.saved)
	assert.Empty(t, janitor.refs)
}

func TestAdminLogoReplacementDiscardsOldLogo(t *testing.T) {
	svc, _, logos, janitor := setupService(t, true)
	ctx := context.Background()

	first, err := svc.Update(ctx, models.RoleAdmin, Patch{FieldCompanyName: str("NewCo")}, png())
	require.NoError(t, err)
	require.NotNil(t, first.LogoURL)
	assert.Equal(t, "/uploads/logo-1.png", *first.LogoURL)
	assert.Empty(t, janitor.refs, "no previous logo to discard")

	second, err := svc.Update(ctx, models.RoleAdmin, Patch{FieldAIName: str("Helper")}, png())
	require.NoError(t, err)
	assert.Equal(t, "/uploads/logo-2.png", *second.LogoURL)
	assert.Equal(t, "NewCo", second.CompanyName)
	assert.Equal(t, []string{"/uploads/logo-1.png"}, janitor.refs)
	assert.Len(t, logos.saved, 2)
}

func TestAdminUpdateWithoutLogoKeepsLogo(t *testing.T) {
	svc, _, _, janitor := setupService(t, true)
	ctx := context.Background()

	_, err := svc.Update(ctx, models.RoleAdmin, Patch{}, png())
	require.NoError(t, err)

	got, err := svc.Update(ctx, models.RoleAdmin, Patch{FieldUserName: str("Visitor")}, nil)
	require.NoError(t, err)
	require.NotNil(t, got.LogoURL)
	assert.Equal(t, "/uploads/logo-1.png", *got.LogoURL)
	assert.Empty(t, janitor.refs)
}

func TestLogoSaveFailureAbortsUpdate(t *testing.T) {
	svc, repo, logos, _ := setupService(t, true)
	logos.saveErr = errors.New("disk full")

	_, err := svc.Update(context.Background(), models.RoleAdmin, Patch{FieldCompanyName: str("NewCo")}, png())
	require.Error(t, err)

	hist, err := repo.History(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestInsertFailureRemovesNewLogoAndKeepsCurrent(t *testing.T) {
	svc, repo, logos, janitor := setupService(t, true)
	ctx := context.Background()

	_, err := svc.Update(ctx, models.RoleAdmin, Patch{FieldCompanyName: str("NewCo")}, png())
	require.NoError(t, err)

	require.NoError(t, repo.db.Callback().Create().Before("gorm:create").Register("test:fail_insert", func(tx *gorm.DB) {
		_ = tx.AddError(errors.New("disk gone"))
	}))

	_, err = svc.Update(ctx, models.RoleAdmin, Patch{FieldAIName: str("Helper")}, png())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
	assert.Equal(t, []string{"/uploads/logo-2.png"}, logos.removed)
	assert.Empty(t, janitor.refs)

	cur, err := svc.Current(ctx)
	require.NoError(t, err)
	require.NotNil(t, cur.LogoURL)
	assert.Equal(t, "/uploads/logo-1.png", *cur.LogoURL)
	assert.Equal(t, "Jurbot", cur.AIName)
}
