package tzdb

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZoneFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNames_ScansTZifFiles(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeZoneFile(t, root, "Europe/Vienna", "TZif2 rest")
	writeZoneFile(t, root, "UTC", "TZif2")
	writeZoneFile(t, root, "zone.tab", "TZif")
	writeZoneFile(t, root, "posixrules", "TZif")
	writeZoneFile(t, root, "Broken/Zone", "nope")
	writeZoneFile(t, root, "posix/Europe/Vienna", "TZif")

	s := New(WithSearchDirs(filepath.Join(root, "missing"), root))
	assert.Equal(t, []string{"Europe/Vienna", "UTC"}, s.Names())

	assert.True(t, s.Known("Europe/Vienna"))
	assert.False(t, s.Known("europe/vienna"))
	assert.False(t, s.Known("Asia/Tokyo"), "not listed on this host")
}

func TestNames_Fallback(t *testing.T) {
	t.Parallel()

	s := New(WithSearchDirs(t.TempDir()), WithFallbackNames("Europe/Vienna", "Asia/Tokyo", "UTC"))
	assert.Equal(t, []string{"Asia/Tokyo", "Europe/Vienna", "UTC"}, s.Names())
	assert.True(t, s.Known("Asia/Tokyo"))
	assert.False(t, s.Known("asia/tokyo"))
	assert.False(t, s.Known("Mars/Olympus_Mons"))
}

func TestLoad(t *testing.T) {
	t.Parallel()
	s := New()

	loc, err := s.Load("Europe/Vienna")
	require.NoError(t, err)
	again, err := s.Load("Europe/Vienna")
	require.NoError(t, err)
	assert.Same(t, loc, again)

	for _, id := range []string{"", "Local", "Mars/Olympus_Mons"} {
		_, err := s.Load(id)
		assert.ErrorIs(t, err, ErrUnknownZone, "id %q", id)
	}
}

func TestAt_FollowsDaylightSaving(t *testing.T) {
	t.Parallel()
	loc, err := New().Load("Europe/Vienna")
	require.NoError(t, err)

	winter := At(loc, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC))
	summer := At(loc, time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, Info{Abbrev: "CET", Offset: 3600}, winter)
	assert.Equal(t, Info{Abbrev: "CEST", Offset: 7200}, summer)
}

func TestFormatOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "+00:00", FormatOffset(0))
	assert.Equal(t, "+05:45", FormatOffset(5*3600+45*60))
	assert.Equal(t, "-03:30", FormatOffset(-(3*3600 + 30*60)))
}

func TestHasLetterAbbrev(t *testing.T) {
	t.Parallel()

	assert.True(t, HasLetterAbbrev("CET"))
	assert.False(t, HasLetterAbbrev("+03"))
	assert.False(t, HasLetterAbbrev("-0330"))
	assert.False(t, HasLetterAbbrev(""))
}

func TestZoneFromPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Europe/Vienna", zoneFromPath("/usr/share/zoneinfo/Europe/Vienna"))
	assert.Equal(t, "America/New_York", zoneFromPath("/var/db/timezone/zoneinfo/posix/America/New_York"))
	assert.Equal(t, "", zoneFromPath("/etc/localtime"))
}

func TestLocal(t *testing.T) {
	s := New()

	loc, err := s.Local("Asia/Tokyo")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())

	t.Setenv("TZ", "Europe/Vienna")
	loc, err = s.Local("")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Vienna", loc.String())

	_, err = s.Local("Nowhere/Special")
	assert.ErrorIs(t, err, ErrUnknownZone)
}
