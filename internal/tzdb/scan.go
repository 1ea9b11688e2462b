package tzdb

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const tzifMagic = "TZif"

// defaultSearchDirs mirrors the places time.LoadLocation looks on Unix, with
// $ZONEINFO first.
func defaultSearchDirs() []string {
	dirs := []string{"/usr/share/zoneinfo", "/usr/share/lib/zoneinfo", "/usr/lib/locale/TZ", "/etc/zoneinfo"}
	if z := os.Getenv("ZONEINFO"); z != "" {
		dirs = append([]string{z}, dirs...)
	}
	return dirs
}

// scanZoneDirs returns the zone ids from the first source that yields any.
// A source is a zoneinfo directory or a zoneinfo.zip archive.
func scanZoneDirs(dirs []string) []string {
	for _, dir := range dirs {
		var names []string
		if strings.HasSuffix(dir, ".zip") {
			names = scanZip(dir)
		} else {
			names = scanDir(dir)
		}
		if len(names) > 0 {
			slices.Sort(names)
			return names
		}
	}
	return nil
}

func scanDir(root string) []string {
	var names []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel == "posix" || rel == "right" {
				return fs.SkipDir
			}
			return nil
		}
		if !zoneLike(rel) || !isTZif(path) {
			return nil
		}
		names = append(names, rel)
		return nil
	})
	return names
}

func scanZip(path string) []string {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		if !f.FileInfo().IsDir() && zoneLike(f.Name) {
			names = append(names, f.Name)
		}
	}
	return names
}

// zoneLike filters out helper files such as "zone.tab" and "posixrules";
// every IANA id starts with an upper-case letter.
func zoneLike(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z' && !strings.Contains(name, ".")
}

func isTZif(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	buf := make([]byte, len(tzifMagic))
	if _, err := io.ReadFull(f, buf); err != nil {
		return false
	}
	return string(buf) == tzifMagic
}
