package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/suPer8Hu/chat-dashboard/internal/auth"
	"github.com/suPer8Hu/chat-dashboard/internal/models"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrInvalidRole       = errors.New("invalid role")
	ErrMissingField      = errors.New("username, password, name and role are required")
	ErrSelfDeletion      = errors.New("cannot delete your own account")
	ErrSelfPasswordReset = errors.New("cannot reset your own password")
	ErrPasswordRequired  = errors.New("password is required")
)

type CreateUserInput struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Role     models.Role `json:"role"`
}

type Service struct {
	repo   *Repo
	logger *slog.Logger
}

func NewService(repo *Repo) *Service {
	return &Service{
		repo:   repo,
		logger: slog.Default().With("component", "users"),
	}
}

func (s *Service) List(ctx context.Context) ([]models.SanitizedUser, error) {
	rows, err := s.repo.ListDesc(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.SanitizedUser, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].Sanitize())
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, in CreateUserInput) (*models.SanitizedUser, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	if in.Username == "" || in.Password == "" || in.Name == "" || in.Role == "" {
		return nil, ErrMissingField
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}

	existing, err := s.repo.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateUsername
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	created, err := s.repo.CreateAndFetch(ctx, &models.User{
		Username: in.Username,
		Password: hash,
		Name:     in.Name,
		Role:     in.Role,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "id", created.ID, "username", created.Username, "role", created.Role)
	su := created.Sanitize()
	return &su, nil
}

// Delete removes userID. Callers can never delete themselves.
func (s *Service) Delete(ctx context.Context, userID, callerID uint64) error {
	if userID == callerID {
		return ErrSelfDeletion
	}
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info("user deleted", "id", userID, "by", callerID)
	return nil
}

// ResetPassword re-hashes newPassword for userID. Callers can never reset
// their own password through this path.
func (s *Service) ResetPassword(ctx context.Context, userID, callerID uint64, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if userID == callerID {
		return ErrSelfPasswordReset
	}
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	s.logger.Info("password reset", "id", userID, "by", callerID)
	return nil
}

// EnsureAdmin creates the bootstrap admin account when username is not
// taken yet. It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, username, password, name string) (bool, error) {
	existing, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	_, err = s.Create(ctx, CreateUserInput{
		Username: username,
		Password: password,
		Name:     name,
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, ErrDuplicateUsername) {
		return false, nil
	}
	return err == nil, err
}

// ReplaceAdmin deletes any account named username and recreates it as an
// admin with the given password.
func (s *Service) ReplaceAdmin(ctx context.Context, username, password, name string) (*models.SanitizedUser, error) {
	if err := s.repo.DeleteByUsername(ctx, username); err != nil {
		return nil, err
	}
	return s.Create(ctx, CreateUserInput{
		Username: username,
		Password: password,
		Name:     name,
		Role:     models.RoleAdmin,
	})
}
