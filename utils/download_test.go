package utils

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestUtils_ShouldDownloadSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("startshape FOO\nrule FOO { SQUARE {} }\n"))
	}))
	defer srv.Close()

	f, err := DownloadSource(srv.URL)
	if err != nil {
		t.Fatalf("couldn't download test file: %v", err)
	}
	defer os.Remove(f.Name())

	if !strings.Contains(f.Name(), "cfdg-include") {
		t.Errorf("the downloaded source should have been saved in a temporary file named after its purpose")
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatalf("could not read downloaded file: %v", err)
	}
	if !strings.Contains(string(data), "startshape") {
		t.Errorf("downloaded content mismatch: %s", data)
	}
}

func TestUtils_ShouldRejectFailedDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := DownloadSource(srv.URL); err == nil {
		t.Errorf("expected an error for a 404 response")
	}
}

func TestUtils_ShouldBeValidUrl(t *testing.T) {
	ok := IsValidUrl("https://github.com/colinw7/CContextFree/")
	if !ok {
		t.Errorf("a valid URL should have been provided")
	}
}

func TestUtils_ShouldRejectBareFilename(t *testing.T) {
	if IsValidUrl("shapes.cfdg") {
		t.Errorf("a bare filename should not be treated as a URL")
	}
}
