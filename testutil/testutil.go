// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/delphi-survey/catalog"
	"github.com/danielhkuo/delphi-survey/cliparse"
	"github.com/danielhkuo/delphi-survey/models"
	"github.com/danielhkuo/delphi-survey/store"
)

// SetupTestDB opens a fresh SQLite database with the full schema in a
// temporary directory. It is closed when the test ends.
func SetupTestDB(t *testing.T) *store.Store {
	t.Helper()

	path := filepath.Join(t.TempDir(), "survey.db")
	st, err := store.Open(store.DriverSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return st
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   "survey.db",
		DatabaseType:  store.DriverSQLite,
		MeanDigits:    1,
		AllowedOrigin: "*",
	}
}

// LoadCatalog returns the embedded survey catalog
func LoadCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.Load("")
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	return cat
}

// CreateTestResponse stores one response and returns it with its ID set.
// A zero CreatedAt is set to now.
func CreateTestResponse(t *testing.T, st *store.Store, r models.Response) models.Response {
	t.Helper()

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	batch := []models.Response{r}
	if _, err := st.InsertResponses(context.Background(), batch); err != nil {
		t.Fatalf("Failed to create test response: %v", err)
	}
	return batch[0]
}

// CreateTestIndustry stores one industry row.
func CreateTestIndustry(t *testing.T, st *store.Store, ind models.Industry) {
	t.Helper()

	if _, err := st.UpsertIndustries(context.Background(), []models.Industry{ind}); err != nil {
		t.Fatalf("Failed to create test industry: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeUploadRequest creates a multipart request with content in field "file".
func MakeUploadRequest(t *testing.T, method, path, filename string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
