package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/suPer8Hu/chat-dashboard/internal/models"
)

var (
	ErrConfigurationMissing = errors.New("settings have not been initialised")
	ErrForbidden            = errors.New("only admins may change settings other than the theme")
	ErrInvalidPatch         = errors.New("invalid settings patch")
	ErrUnknownField         = errors.New("unknown settings field")
	ErrEmptyField           = errors.New("settings field must not be empty")
	ErrInvalidTheme         = errors.New("invalid theme")
)

// Reconcile applies patch to current on behalf of a caller holding role and
// returns the resulting record. current is never modified.
//
// A patch holding only the theme key is allowed for every role and replaces
// just the theme. Anything else requires an admin and is shallow-merged:
// keys present in the patch replace the current value, absent keys keep it.
func Reconcile(current *models.Settings, role models.Role, patch Patch) (models.Settings, error) {
	if current == nil {
		return models.Settings{}, ErrConfigurationMissing
	}

	next := *current
	next.ID = 0

	if patch.IsThemeOnly() {
		theme := patch[FieldTheme]
		if theme == nil || !ValidTheme(*theme) {
			return models.Settings{}, ErrInvalidTheme
		}
		next.Theme = *theme
		return next, nil
	}

	if role != models.RoleAdmin {
		return models.Settings{}, ErrForbidden
	}

	if err := validate(patch); err != nil {
		return models.Settings{}, err
	}

	for k, v := range patch {
		switch k {
		case FieldLogoURL:
			if v == nil || strings.TrimSpace(*v) == "" {
				next.LogoURL = nil
			} else {
				s := *v
				next.LogoURL = &s
			}
		case FieldCompanyName:
			next.CompanyName = *v
		case FieldAIName:
			next.AIName = *v
		case FieldUserName:
			next.UserName = *v
		case FieldWebhookURL:
			next.WebhookURL = *v
		case FieldTheme:
			next.Theme = *v
		}
	}
	return next, nil
}

func validate(patch Patch) error {
	for _, k := range patch.Keys() {
		if !knownFields[k] {
			return fmt.Errorf("%w: %s", ErrUnknownField, k)
		}
		if k == FieldLogoURL {
			continue
		}
		v := patch[k]
		if v == nil || strings.TrimSpace(*v) == "" {
			return fmt.Errorf("%w: %s", ErrEmptyField, k)
		}
		if k == FieldTheme && !ValidTheme(*v) {
			return ErrInvalidTheme
		}
	}
	return nil
}
