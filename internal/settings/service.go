package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/suPer8Hu/chat-dashboard/internal/models"
)

// LogoUpload is an image attached to a settings update.
type LogoUpload struct {
	Data []byte
}

// LogoStore persists logo images and returns the public reference
// (e.g. "/uploads/logo-01H....png") stored in Settings.LogoURL.
type LogoStore interface {
	Save(ctx context.Context, logo LogoUpload) (string, error)
	Remove(ctx context.Context, ref string) error
}

// Janitor removes logos that are no longer referenced. Discard must not
// block the caller and never reports failure.
type Janitor interface {
	Discard(ref string)
}

// Defaults seeds the first snapshot.
type Defaults struct {
	CompanyName string
	AIName      string
	UserName    string
	WebhookURL  string
	Theme       string
}

type Service struct {
	repo    *Repo
	logos   LogoStore
	janitor Janitor
	logger  *slog.Logger
}

func NewService(repo *Repo, logos LogoStore, janitor Janitor) *Service {
	return &Service{
		repo:    repo,
		logos:   logos,
		janitor: janitor,
		logger:  slog.Default().With("component", "settings"),
	}
}

// Current returns the newest snapshot or ErrConfigurationMissing.
func (s *Service) Current(ctx context.Context) (*models.Settings, error) {
	cur, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, ErrConfigurationMissing
	}
	return cur, nil
}

func (s *Service) History(ctx context.Context, limit int) ([]models.Settings, error) {
	return s.repo.History(ctx, limit)
}

// EnsureDefaults stores d as the first snapshot when the table is empty.
// It reports whether a snapshot was written.
func (s *Service) EnsureDefaults(ctx context.Context, d Defaults) (bool, error) {
	cur, err := s.repo.Latest(ctx)
	if err != nil {
		return false, err
	}
	if cur != nil {
		return false, nil
	}
	theme := d.Theme
	if !ValidTheme(theme) {
		theme = DefaultTheme
	}
	seed := &models.Settings{
		CompanyName: d.CompanyName,
		AIName:      d.AIName,
		UserName:    d.UserName,
		WebhookURL:  d.WebhookURL,
		Theme:       theme,
	}
	if err := s.repo.Insert(ctx, seed); err != nil {
		return false, fmt.Errorf("seeding settings: %w", err)
	}
	s.logger.Info("default settings seeded", "id", seed.ID)
	return true, nil
}

// Update reconciles patch against the current snapshot for a caller with
// role, stores an attached logo (admin updates only) and appends the result
// as a new snapshot. The previous logo is handed to the janitor once the new
// snapshot is stored.
func (s *Service) Update(ctx context.Context, role models.Role, patch Patch, logo *LogoUpload) (*models.Settings, error) {
	cur, err := s.repo.Latest(ctx)
	if err != nil {
		return nil, err
	}

	next, err := Reconcile(cur, role, patch)
	if err != nil {
		return nil, err
	}

	themeOnly := patch.IsThemeOnly()
	var newRef string
	if logo != nil && !themeOnly {
		if s.logos == nil {
			return nil, fmt.Errorf("no logo store configured")
		}
		newRef, err = s.logos.Save(ctx, *logo)
		if err != nil {
			return nil, fmt.Errorf("saving logo: %w", err)
		}
		next.LogoURL = &newRef
	}

	if err := s.repo.Insert(ctx, &next); err != nil {
		if newRef != "" {
			if rmErr := s.logos.Remove(ctx, newRef); rmErr != nil {
				s.logger.Warn("removing unused logo failed", "ref", newRef, "error", rmErr)
			}
		}
		return nil, fmt.Errorf("storing settings: %w", err)
	}

	if old := cur.LogoURL; old != nil && *old != "" && (next.LogoURL == nil || *next.LogoURL != *old) {
		if s.janitor != nil {
			s.janitor.Discard(*old)
		}
	}

	s.logger.Info("settings updated", "id", next.ID, "theme_only", themeOnly, "fields", patch.Keys())
	return &next, nil
}
