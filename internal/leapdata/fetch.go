package leapdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultURL is the canonical location of the IETF leap second
// bulletin.
const DefaultURL = "https://www.ietf.org/timezones/data/leap-seconds.list"

// FetchError is returned when the leap second bulletin could not be
// retrieved or the retrieved document could not be parsed. It is
// always recoverable: the caller keeps the previously resolved table.
type FetchError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch leap second data error (url: %s): %s", e.URL, e.Err)
}

// Unwrap implements the errors unwrap interface.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// fetch downloads the leap second bulletin from the given URL and
// writes it to dest. The document is written to a temporary file next
// to dest and only renamed into place after it parses, so concurrent
// readers and crashed writers can never leave a partial or unparseable
// file at dest.
func fetch(ctx context.Context, client *http.Client, url, dest string) (*Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected response status: %s", resp.Status)}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, &FetchError{URL: url, Err: errors.Wrap(err, "create cache directory error")}
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, &FetchError{URL: url, Err: errors.Wrap(err, "create temporary file error")}
	}

	_, err = io.Copy(f, resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return nil, &FetchError{URL: url, Err: errors.Wrap(err, "write temporary file error")}
	}

	table, err := ParseFile(tmp)
	if err != nil {
		os.Remove(tmp)
		return nil, &FetchError{URL: url, Err: err}
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return nil, &FetchError{URL: url, Err: errors.Wrap(err, "rename temporary file error")}
	}

	table.Source = dest
	return table, nil
}
