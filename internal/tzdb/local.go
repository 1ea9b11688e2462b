package tzdb

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalName returns the IANA id of the machine zone, taken from $TZ or the
// /etc/localtime symlink. It returns "" when neither names a zone.
func LocalName() string {
	if tz, ok := os.LookupEnv("TZ"); ok {
		tz = strings.TrimPrefix(tz, ":")
		if tz != "" && !filepath.IsAbs(tz) {
			return tz
		}
		if tz == "" {
			return "UTC"
		}
	}
	target, err := filepath.EvalSymlinks("/etc/localtime")
	if err != nil {
		return ""
	}
	return zoneFromPath(target)
}

// zoneFromPath extracts "Europe/Vienna" from ".../zoneinfo/Europe/Vienna".
func zoneFromPath(path string) string {
	path = filepath.ToSlash(path)
	const marker = "zoneinfo/"
	i := strings.LastIndex(path, marker)
	if i < 0 {
		return ""
	}
	return strings.TrimPrefix(path[i+len(marker):], "posix/")
}

// Local returns the location for name, or the machine zone when name is
// empty. The machine zone is loaded by id when one can be found so that it
// prints as "Europe/Vienna" rather than "Local".
func (s *Service) Local(name string) (*time.Location, error) {
	if name != "" {
		return s.Load(name)
	}
	if id := LocalName(); id != "" {
		if loc, err := s.Load(id); err == nil {
			return loc, nil
		}
	}
	return time.Local, nil
}
