package profile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvcrn/restream-cli/internal/restream"
)

func setupTemplate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	tmpl := filepath.Join(dir, TemplateName)
	require.NoError(t, os.MkdirAll(filepath.Join(tmpl, "scenes"), 0755))

	basicINI := "[General]\nName=Template\n[Video]\nBaseCX=1920\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpl, "basic.ini"), []byte(basicINI), 0644))

	serviceJSON := `{"type":"rtmp_common","settings":{"key":"old_key_1","server":"rtmp://live.restream.io/live"}}`
	require.NoError(t, os.WriteFile(filepath.Join(tmpl, "service.json"), []byte(serviceJSON), 0644))

	require.NoError(t, os.WriteFile(filepath.Join(tmpl, "scenes", "default.json"), []byte(`{}`), 0644))
	return dir
}

func testRecord() restream.StreamKeyRecord {
	return restream.StreamKeyRecord{
		Key:   "re_new_key_42",
		Title: "Friday Show",
		Date:  time.Date(2026, time.January, 15, 20, 30, 0, 0, time.Local),
	}
}

func TestCreateMaterializesProfile(t *testing.T) {
	dir := setupTemplate(t)
	m := NewMaterializer(dir, zerolog.Nop())

	require.NoError(t, m.Create(testRecord()))

	dest := filepath.Join(dir, "restream_2030")
	basic, err := os.ReadFile(filepath.Join(dest, "basic.ini"))
	require.NoError(t, err)
	assert.Contains(t, string(basic), "Name=Jan 15 2026 8:30pm Friday Show")
	assert.Contains(t, string(basic), "BaseCX=1920", "unrelated settings survive")

	service, err := os.ReadFile(filepath.Join(dest, "service.json"))
	require.NoError(t, err)
	assert.Contains(t, string(service), `"key":"re_new_key_42",`)
	assert.NotContains(t, string(service), "old_key_1")

	// nested template content is copied too
	assert.FileExists(t, filepath.Join(dest, "scenes", "default.json"))

	// template itself is untouched
	tmplBasic, err := os.ReadFile(filepath.Join(dir, TemplateName, "basic.ini"))
	require.NoError(t, err)
	assert.Contains(t, string(tmplBasic), "Name=Template")
}

func TestCreateReplacesExistingProfile(t *testing.T) {
	dir := setupTemplate(t)
	m := NewMaterializer(dir, zerolog.Nop())

	dest := filepath.Join(dir, "restream_2030")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "stale.txt"), []byte("old"), 0644))

	require.NoError(t, m.Create(testRecord()))

	assert.NoFileExists(t, filepath.Join(dest, "stale.txt"))
	assert.FileExists(t, filepath.Join(dest, "basic.ini"))
}

func TestCreateAll(t *testing.T) {
	dir := setupTemplate(t)
	m := NewMaterializer(dir, zerolog.Nop())

	records := []restream.StreamKeyRecord{
		{Key: "k1", Title: "One", Date: time.Date(2026, time.March, 1, 9, 0, 0, 0, time.Local)},
		{Key: "k2", Title: "Two", Date: time.Date(2026, time.March, 1, 18, 15, 0, 0, time.Local)},
	}
	require.NoError(t, m.CreateAll(records))

	assert.DirExists(t, filepath.Join(dir, "restream_0900"))
	assert.DirExists(t, filepath.Join(dir, "restream_1815"))
}

func TestCreateMissingTemplate(t *testing.T) {
	m := NewMaterializer(t.TempDir(), zerolog.Nop())

	err := m.Create(testRecord())
	require.Error(t, err)
}
