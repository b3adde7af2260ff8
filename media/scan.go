package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/metafates/gache"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/vidplay-cli/vidplay/filesystem"
	"github.com/vidplay-cli/vidplay/key"
	"github.com/vidplay-cli/vidplay/log"
	"github.com/vidplay-cli/vidplay/util"
	"github.com/vidplay-cli/vidplay/where"
	"golang.org/x/exp/slices"
)

// ErrPermissionDenied is returned when the library directory cannot be read.
var ErrPermissionDenied = errors.New("permission to read the video library was denied")

type scan struct {
	ScannedAt time.Time `json:"scanned_at"`
	Records   []Record  `json:"records"`
}

var cacher = gache.New[map[string]scan](
	&gache.Options{
		Path:       where.Library(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Dir returns the configured library directory.
func Dir() string {
	if dir := viper.GetString(key.LibraryPath); dir != "" {
		return dir
	}
	return where.Videos()
}

// Scan lists the videos under dir, newest first. A recent scan of the same
// directory is served from the cache.
func Scan(dir string) ([]Record, error) {
	dir = filepath.Clean(dir)

	cached, expired, err := cacher.Get()
	if err != nil || expired || cached == nil {
		cached = make(map[string]scan)
	}

	ttl := time.Duration(viper.GetInt(key.LibraryCacheTTL)) * time.Minute
	if entry, ok := cached[dir]; ok && ttl > 0 && time.Since(entry.ScannedAt) < ttl {
		log.Debugf("media: serving %s from cache", dir)
		return entry.Records, nil
	}

	records, err := Walk(dir)
	if err != nil {
		return nil, err
	}

	cached[dir] = scan{ScannedAt: time.Now(), Records: records}
	if err := cacher.Set(cached); err != nil {
		log.Warnf("media: cache scan of %s: %v", dir, err)
	}

	return records, nil
}

// Forget drops any cached scan of dir.
func Forget(dir string) error {
	cached, _, err := cacher.Get()
	if err != nil || cached == nil {
		return err
	}
	delete(cached, filepath.Clean(dir))
	return cacher.Set(cached)
}

// Walk lists the videos under dir, newest first, bypassing the cache.
// Unreadable subdirectories are skipped; an unreadable root is an error.
func Walk(dir string) ([]Record, error) {
	fs := filesystem.API()

	info, err := fs.Stat(dir)
	if err != nil {
		if os.IsPermission(err) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("open library: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open library: %s is not a directory", dir)
	}
	if _, err := fs.ReadDir(dir); err != nil {
		if os.IsPermission(err) {
			return nil, ErrPermissionDenied
		}
		return nil, fmt.Errorf("read library: %w", err)
	}

	var records []Record
	err = fs.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Debugf("media: skipping %s: %v", path, err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if path != dir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		mime := MimeType(info.Name())
		if mime == "" {
			return nil
		}

		records = append(records, Record{
			ID:          stableID(path),
			DisplayName: info.Name(),
			SizeBytes:   info.Size(),
			MimeType:    mime,
			AddedAt:     info.ModTime(),
			Path:        path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk library: %w", err)
	}

	slices.SortStableFunc(records, func(a, b Record) int {
		switch {
		case a.AddedAt.After(b.AddedAt):
			return -1
		case a.AddedAt.Before(b.AddedAt):
			return 1
		default:
			return strings.Compare(a.DisplayName, b.DisplayName)
		}
	})

	log.Infof("media: found %s in %s", util.Quantify(len(records), "video", "videos"), dir)
	return records, nil
}

// Find returns the record with the given id.
func Find(records []Record, id string) (Record, bool) {
	return lo.Find(records, func(r Record) bool {
		return r.ID == id
	})
}
