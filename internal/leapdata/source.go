package leapdata

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/astrotime/gpstime/internal/config"
)

// DefaultSystemFiles are the read-only locations which are tried after
// the user cache file.
var DefaultSystemFiles = []string{
	"/usr/share/zoneinfo/leap-seconds.list",
	"/usr/share/zoneinfo/leapseconds",
	"/var/cache/gpstime/leap-seconds.list",
}

const defaultRequestTimeout = 30 * time.Second

// timeNow can be overridden in tests.
var timeNow = time.Now

// Source resolves the leap second table from a fixed priority order of
// candidate locations and refreshes the user cache file from the IETF
// when needed.
type Source struct {
	// Override is tried before all other candidates.
	Override    string
	CacheFile   string
	SystemFiles []string
	URL         string
	Client      *http.Client

	// Packaged enables the embedded bulletin as the last candidate.
	Packaged bool
}

// NewSource returns a Source for the given configuration, with
// defaults filled in for unset values.
func NewSource(c config.Config) Source {
	s := Source{
		Override:    c.LeapData.File,
		CacheFile:   c.LeapData.CacheFile,
		SystemFiles: c.LeapData.SystemFiles,
		URL:         c.LeapData.URL,
		Packaged:    true,
	}
	if s.CacheFile == "" {
		s.CacheFile = DefaultCacheFile()
	}
	if len(s.SystemFiles) == 0 {
		s.SystemFiles = DefaultSystemFiles
	}
	if s.URL == "" {
		s.URL = DefaultURL
	}

	timeout := c.LeapData.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	s.Client = &http.Client{Timeout: timeout}

	return s
}

// DefaultCacheFile returns the user-writable cache location of the
// leap second bulletin.
func DefaultCacheFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "gpstime", "leap-seconds.list")
}

// Resolve tries each candidate source in priority order and returns
// the first table that parses and is not expired. When every candidate
// is missing, unparseable or expired, the last successfully parsed
// table is returned together with degraded=true. An error is returned
// only when no candidate parsed at all.
func (s Source) Resolve() (*Table, bool, error) {
	now := timeNow()

	var files []string
	if s.Override != "" {
		files = append(files, s.Override)
	}
	files = append(files, s.CacheFile)
	files = append(files, s.SystemFiles...)

	var last *Table
	for _, path := range files {
		table, err := ParseFile(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.WithError(err).WithField("source", path).Debug("skipping leap second data candidate")
			}
			continue
		}
		if !table.Expired(now) {
			return table, false, nil
		}
		last = table
	}

	if s.Packaged {
		table, err := Packaged()
		if err != nil {
			return nil, false, errors.Wrap(err, "parse packaged leap second data error")
		}
		if !table.Expired(now) {
			return table, false, nil
		}
		last = table
	}

	if last == nil {
		return nil, false, errors.New("no leap second data could be loaded")
	}
	return last, true, nil
}

// Refresh returns the resolved table, refreshing the user cache file
// from the IETF first when the resolved table is expired or force is
// set. A failed fetch is not fatal: the best table found by Resolve is
// returned and the degraded state is surfaced to the caller.
func (s Source) Refresh(ctx context.Context, force bool) (*Table, bool, error) {
	table, degraded, err := s.Resolve()
	if err == nil && !degraded && !force {
		return table, false, nil
	}

	log.WithFields(log.Fields{
		"url":  s.URL,
		"dest": s.CacheFile,
	}).Info("updating leap second data")

	fetched, ferr := fetch(ctx, s.Client, s.URL, s.CacheFile)
	if ferr != nil {
		log.WithError(ferr).Warning("leap second data update error")
		return table, degraded, err
	}

	return fetched, fetched.Expired(timeNow()), nil
}

var (
	source Source
	shared atomic.Pointer[Table]
)

// Setup resolves the leap second table for the given configuration and
// caches it behind the Get accessor. Resolution reads local files
// only; network refresh must be requested explicitly via Refresh.
func Setup(c config.Config) error {
	source = NewSource(c)

	table, degraded, err := source.Resolve()
	if err != nil {
		return errors.Wrap(err, "resolve leap second data error")
	}
	if degraded {
		log.WithFields(log.Fields{
			"source":  table.Source,
			"expires": table.Expires,
		}).Warning("leap second data is expired, conversions may be inaccurate")
	}

	shared.Store(table)
	return nil
}

// Get returns the table resolved by the last Setup or Refresh call, or
// nil when Setup has not been called.
func Get() *Table {
	return shared.Load()
}

// Refresh refreshes the shared table, fetching from the IETF when the
// current table is expired or force is set. It returns the refreshed
// table and whether it is still degraded.
func Refresh(ctx context.Context, force bool) (*Table, bool, error) {
	table, degraded, err := source.Refresh(ctx, force)
	if err != nil {
		return nil, degraded, err
	}
	shared.Store(table)
	return table, degraded, nil
}
