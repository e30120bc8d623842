// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// The document and file stores are replaced by in-memory fakes so the
// full request/response cycle runs without network access.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"orgpress/internal/auth"
	"orgpress/internal/models"
	"orgpress/internal/storage"
	"orgpress/internal/store"
)

// fakeDocs is an in-memory DocumentStore. Loads return a deep copy so
// handler mutations only become visible after a save, matching the
// load-modify-save cycle of the real backend.
type fakeDocs struct {
	mu      sync.Mutex
	doc     *models.Document
	loadErr error
	saveErr error
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{doc: models.NewDocument()}
}

func (f *fakeDocs) LoadContent(_ context.Context) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	raw, err := json.Marshal(f.doc)
	if err != nil {
		return nil, err
	}
	copied := models.NewDocument()
	if err := json.Unmarshal(raw, copied); err != nil {
		return nil, err
	}
	copied.SetRev(f.doc.Rev())
	return copied, nil
}

func (f *fakeDocs) SaveContent(_ context.Context, doc *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.doc = doc
	return nil
}

// fakeFiles records uploads and deletions.
type fakeFiles struct {
	mu        sync.Mutex
	uploaded  []string
	deleted   []string
	uploadErr error
}

func (f *fakeFiles) UploadFile(_ context.Context, _ []byte, filename, category string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	url := fmt.Sprintf("/uploads/%s/%s", category, filename)
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeFiles) DeleteFile(_ context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, fileURL)
	return nil
}

// testEnv holds the handler groups over fresh fakes.
type testEnv struct {
	Docs    *fakeDocs
	Files   *fakeFiles
	Store   *store.ContentStore
	AuthSvc *auth.Service
	Auth    *Auth
	Content *Content
	Upload  *Upload
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	docs := newFakeDocs()
	files := &fakeFiles{}
	contentStore := store.NewContentStore(docs, files)

	authSvc := auth.New(auth.Config{
		Username:  "admin",
		Password:  "test-password",
		JWTSecret: []byte("test-jwt-secret"),
		TokenTTL:  7 * 24 * time.Hour,
	})

	return &testEnv{
		Docs:    docs,
		Files:   files,
		Store:   contentStore,
		AuthSvc: authSvc,
		Auth:    NewAuth(authSvc, false),
		Content: NewContent(contentStore, nil),
		Upload:  NewUpload(files),
	}
}

// seedContent creates an item directly through the store.
func seedContent(t *testing.T, env *testEnv, section, title string) *models.ContentItem {
	t.Helper()
	item, err := env.Store.Create(context.Background(), models.ContentItem{
		Title:   title,
		Content: "Seeded body for " + title,
		Section: section,
		Type:    models.ContentTypeArticle,
		Status:  models.ContentStatusPublished,
	})
	if err != nil {
		t.Fatalf("seed content: %v", err)
	}
	return item
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeJSON unmarshals a response body into out, failing the test on error.
func decodeJSON(t *testing.T, body []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, body)
	}
}

var _ storage.DocumentStore = (*fakeDocs)(nil)
var _ storage.FileStore = (*fakeFiles)(nil)
