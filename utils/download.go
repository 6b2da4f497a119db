package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
)

// DownloadSource fetches a grammar file referenced by an `include` URL
// and saves it into a temporary file, so it can be parsed the same way
// as any other included local file.
func DownloadSource(url string) (*os.File, error) {
	res, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("unable to download grammar source from URI: %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to download grammar source from URI: %s, status %v", url, res.Status)
	}

	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}

	tmpfile, err := ioutil.TempFile("", "cfdg-include-*.cfdg")
	if err != nil {
		return nil, fmt.Errorf("unable to create temporary file: %w", err)
	}

	if _, err := io.Copy(tmpfile, bytes.NewBuffer(data)); err != nil {
		return nil, errors.New("unable to copy the source URI into the destination file")
	}
	if _, err := tmpfile.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("unable to rewind temporary file: %w", err)
	}
	return tmpfile, nil
}

// IsValidUrl tests a string to determine if it is a well-structured url or not.
func IsValidUrl(uri string) bool {
	_, err := url.ParseRequestURI(uri)
	if err != nil {
		return false
	}

	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}

	return true
}
