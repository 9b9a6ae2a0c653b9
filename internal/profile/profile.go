// Package profile materializes OBS profile directories for upcoming events.
// Each profile is a copy of the user's template profile with the display
// name and stream key rewritten.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/dvcrn/restream-cli/internal/restream"
)

// TemplateName is the profile directory used as the template.
const TemplateName = "Main"

var (
	nameLine = regexp.MustCompile(`Name=.*`)
	keyField = regexp.MustCompile(`"key":"([a-z0-9_]*)",`)
)

// Materializer writes per-event OBS profiles under ProfilePath.
type Materializer struct {
	ProfilePath string
	logger      zerolog.Logger
}

// NewMaterializer creates a materializer rooted at profilePath.
func NewMaterializer(profilePath string, logger zerolog.Logger) *Materializer {
	return &Materializer{ProfilePath: profilePath, logger: logger}
}

// Create materializes one profile for a record. An existing profile with
// the same name is replaced; a missing old version is not an error.
func (m *Materializer) Create(rec restream.StreamKeyRecord) error {
	name := "restream_" + rec.Date.Format("1504")
	title := fmt.Sprintf("%s %s", rec.Date.Format("Jan 2 2006 3:04pm"), rec.Title)
	dest := filepath.Join(m.ProfilePath, name)

	if _, err := os.Stat(dest); os.IsNotExist(err) {
		m.logger.Debug().Str("profile", name).Msg("no old version to replace")
	} else if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to remove old profile %s: %w", name, err)
	}

	tmpl := filepath.Join(m.ProfilePath, TemplateName)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create profile dir %s: %w", name, err)
	}
	if err := os.CopyFS(dest, os.DirFS(tmpl)); err != nil {
		return fmt.Errorf("failed to copy template profile: %w", err)
	}

	if err := rewrite(filepath.Join(dest, "basic.ini"), nameLine, "Name="+title); err != nil {
		return err
	}
	if err := rewrite(filepath.Join(dest, "service.json"), keyField, fmt.Sprintf(`"key":"%s",`, rec.Key)); err != nil {
		return err
	}

	m.logger.Info().Str("profile", name).Str("title", title).Msg("created profile")
	return nil
}

// CreateAll materializes a profile per record, failing on the first error.
func (m *Materializer) CreateAll(records []restream.StreamKeyRecord) error {
	for _, rec := range records {
		if err := m.Create(rec); err != nil {
			return err
		}
	}
	return nil
}

func rewrite(path string, pattern *regexp.Regexp, replacement string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := os.WriteFile(path, pattern.ReplaceAll(b, []byte(replacement)), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
