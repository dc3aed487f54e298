package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Field names accepted in a settings patch. They match the JSON names of
// models.Settings.
const (
	FieldLogoURL     = "logo_url"
	FieldCompanyName = "company_name"
	FieldAIName      = "ai_name"
	FieldUserName    = "user_name"
	FieldWebhookURL  = "webhook_url"
	FieldTheme       = "theme"
)

var knownFields = map[string]bool{
	FieldLogoURL:     true,
	FieldCompanyName: true,
	FieldAIName:      true,
	FieldUserName:    true,
	FieldWebhookURL:  true,
	FieldTheme:       true,
}

// Patch is a partial settings update. Only keys present in the map are
// applied; a nil value means the key was sent as null.
type Patch map[string]*string

// ParsePatch decodes a JSON object whose values are strings or null.
func ParsePatch(data []byte) (Patch, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Patch{}, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	p := make(Patch, len(raw))
	for k, v := range raw {
		if string(bytes.TrimSpace(v)) == "null" {
			p[k] = nil
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return nil, fmt.Errorf("%w: field %q must be a string", ErrInvalidPatch, k)
		}
		p[k] = &s
	}
	return p, nil
}

// IsThemeOnly reports whether the patch carries exactly the theme key.
func (p Patch) IsThemeOnly() bool {
	if len(p) != 1 {
		return false
	}
	_, ok := p[FieldTheme]
	return ok
}

// Keys returns the patch keys in sorted order.
func (p Patch) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
