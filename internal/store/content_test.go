package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"orgpress/internal/models"
	"orgpress/internal/storage"
)

// memDocs is an in-memory DocumentStore. Load returns a deep copy so the
// fake behaves like a remote store: mutations only take effect on save.
type memDocs struct {
	doc     *models.Document
	loadErr error
	saveErr error
	saves   int
}

func newMemDocs() *memDocs {
	return &memDocs{doc: models.NewDocument()}
}

func (m *memDocs) LoadContent(_ context.Context) (*models.Document, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	data, err := json.Marshal(m.doc)
	if err != nil {
		return nil, err
	}
	out := models.NewDocument()
	if err := json.Unmarshal(data, out); err != nil {
		return nil, err
	}
	if out.Content == nil {
		out.Content = map[string][]models.ContentItem{}
	}
	return out, nil
}

func (m *memDocs) SaveContent(_ context.Context, doc *models.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.doc = doc
	m.saves++
	return nil
}

// memFiles records DeleteFile calls and can be made to fail.
type memFiles struct {
	deleted []string
	delErr  error
}

func (m *memFiles) UploadFile(_ context.Context, _ []byte, filename, category string) (string, error) {
	return "/uploads/" + storage.NormalizeCategory(category) + "/" + filename, nil
}

func (m *memFiles) DeleteFile(_ context.Context, fileURL string) error {
	m.deleted = append(m.deleted, fileURL)
	return m.delErr
}

// testStore wires a ContentStore over fresh fakes with a ticking clock so
// every operation gets a distinct timestamp.
func testStore(t *testing.T) (*ContentStore, *memDocs, *memFiles) {
	t.Helper()
	docs := newMemDocs()
	files := &memFiles{}
	s := NewContentStore(docs, files)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s, docs, files
}

func TestCreateAndFind(t *testing.T) {
	s, docs, _ := testStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, models.ContentItem{
		Title:   "First",
		Content: "body",
		Section: "library/press",
		Type:    models.ContentTypePress,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !strings.HasPrefix(created.ID, "content-") {
		t.Errorf("ID: got %q, want content-<ts>-<rand>", created.ID)
	}
	if created.ViewCount != 0 {
		t.Errorf("ViewCount: got %d, want 0", created.ViewCount)
	}
	if created.Status != models.ContentStatusDraft {
		t.Errorf("Status: got %q, want draft default", created.Status)
	}
	if created.PublishedAt != nil {
		t.Error("draft must not get a publishedAt")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("timestamps must be set by the store")
	}

	// The item lands in the bucket named by its section, and a find
	// immediately after creation agrees.
	found, err := s.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Section != "library/press" {
		t.Errorf("Section: got %q, want library/press", found.Section)
	}
	if len(docs.doc.Content["library/press"]) != 1 {
		t.Errorf("bucket: got %+v", docs.doc.Content)
	}
}

func TestCreatePublishedSetsPublishedAt(t *testing.T) {
	s, _, _ := testStore(t)

	created, err := s.Create(context.Background(), models.ContentItem{
		Title:   "Live",
		Section: "announcements",
		Status:  models.ContentStatusPublished,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.PublishedAt == nil {
		t.Error("published item must get a publishedAt")
	}
}

func TestCreateRejectsIllegalSection(t *testing.T) {
	s, _, _ := testStore(t)

	for _, section := range []string{"about", "library", "bogus/path", ""} {
		_, err := s.Create(context.Background(), models.ContentItem{Title: "x", Section: section})
		if !errors.Is(err, ErrInvalidSection) {
			t.Errorf("Create in %q: got %v, want ErrInvalidSection", section, err)
		}
	}
}

func TestCreateCleansBodyAndExtractsRefs(t *testing.T) {
	s, _, _ := testStore(t)

	created, err := s.Create(context.Background(), models.ContentItem{
		Title:   "Escaped",
		Section: "announcements",
		Content: `\# Heading\n![pic](/uploads/images/a.jpg)`,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Content != "# Heading\n![pic](/uploads/images/a.jpg)" {
		t.Errorf("body not cleaned: %q", created.Content)
	}
	if len(created.ReferencedFiles) != 1 || created.ReferencedFiles[0] != "/uploads/images/a.jpg" {
		t.Errorf("ReferencedFiles: got %v", created.ReferencedFiles)
	}
}

func TestFindByIDNotFound(t *testing.T) {
	s, _, _ := testStore(t)

	_, err := s.FindByID(context.Background(), "content-0-missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestIncrementViewSequential(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, models.ContentItem{Title: "Counted", Section: "announcements"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	const n = 5
	var count int
	for i := 0; i < n; i++ {
		count, err = s.IncrementView(ctx, created.ID)
		if err != nil {
			t.Fatalf("IncrementView #%d: %v", i+1, err)
		}
	}
	if count != n {
		t.Errorf("viewCount: got %d, want %d", count, n)
	}

	found, err := s.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.ViewCount != n {
		t.Errorf("persisted viewCount: got %d, want %d", found.ViewCount, n)
	}
}

func TestUpdateMergesPatch(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, models.ContentItem{
		Title:    "Old Title",
		Content:  "old body",
		Section:  "library/press",
		Category: "press releases",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	title := "New Title"
	updated, err := s.Update(ctx, created.ID, Patch{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Title != "New Title" {
		t.Errorf("Title: got %q", updated.Title)
	}
	if updated.Content != "old body" || updated.Category != "press releases" {
		t.Error("unpatched fields must be preserved")
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("UpdatedAt must advance")
	}
	if updated.CreatedAt != created.CreatedAt {
		t.Error("CreatedAt must not change")
	}
}

func TestUpdatePublishTransition(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, models.ContentItem{Title: "Draft", Section: "announcements"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	published := models.ContentStatusPublished
	updated, err := s.Update(ctx, created.ID, Patch{Status: &published})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.PublishedAt == nil {
		t.Error("publish transition must set publishedAt")
	}
}

func TestUpdateOrphanCleanup(t *testing.T) {
	ctx := context.Background()

	t.Run("removed reference deleted exactly once", func(t *testing.T) {
		s, _, files := testStore(t)
		created, err := s.Create(ctx, models.ContentItem{
			Title:   "Pics",
			Section: "media/gallery",
			Content: "![a](/uploads/images/a.jpg) ![b](/uploads/images/b.jpg)",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		body := "![b](/uploads/images/b.jpg)"
		if _, err := s.Update(ctx, created.ID, Patch{Content: &body}); err != nil {
			t.Fatalf("Update: %v", err)
		}

		if len(files.deleted) != 1 || files.deleted[0] != "/uploads/images/a.jpg" {
			t.Errorf("deleted: got %v, want [/uploads/images/a.jpg]", files.deleted)
		}
	})

	t.Run("unchanged body deletes nothing", func(t *testing.T) {
		s, _, files := testStore(t)
		created, err := s.Create(ctx, models.ContentItem{
			Title:   "Pics",
			Section: "media/gallery",
			Content: "![a](/uploads/images/a.jpg)",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		title := "Renamed"
		if _, err := s.Update(ctx, created.ID, Patch{Title: &title}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if len(files.deleted) != 0 {
			t.Errorf("deleted: got %v, want none", files.deleted)
		}
	})

	t.Run("images array protects a reference", func(t *testing.T) {
		s, _, files := testStore(t)
		created, err := s.Create(ctx, models.ContentItem{
			Title:   "Pics",
			Section: "media/gallery",
			Content: "![a](/uploads/images/a.jpg)",
			Images:  []string{"/uploads/images/a.jpg"},
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		body := "no more inline image"
		if _, err := s.Update(ctx, created.ID, Patch{Content: &body}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if len(files.deleted) != 0 {
			t.Errorf("deleted: got %v, want none (image still in images array)", files.deleted)
		}
	})

	t.Run("cleanup failure does not fail the update", func(t *testing.T) {
		s, _, files := testStore(t)
		files.delErr = errors.New("boom")

		created, err := s.Create(ctx, models.ContentItem{
			Title:   "Pics",
			Section: "media/gallery",
			Content: "![a](/uploads/images/a.jpg)",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		body := "empty"
		if _, err := s.Update(ctx, created.ID, Patch{Content: &body}); err != nil {
			t.Errorf("Update must swallow cleanup failures, got %v", err)
		}
	})
}

func TestDeleteCascade(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes body refs and images, deduplicated", func(t *testing.T) {
		s, docs, files := testStore(t)
		created, err := s.Create(ctx, models.ContentItem{
			Title:   "Gone",
			Section: "library/press",
			Content: "![x](/uploads/images/x.jpg)",
			Images:  []string{"/uploads/images/x.jpg", "/uploads/images/extra.png"},
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}

		if err := s.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}

		if len(files.deleted) != 2 {
			t.Fatalf("deleted: got %v, want 2 distinct files", files.deleted)
		}
		if files.deleted[0] != "/uploads/images/x.jpg" || files.deleted[1] != "/uploads/images/extra.png" {
			t.Errorf("deleted: got %v", files.deleted)
		}
		if len(docs.doc.Content["library/press"]) != 0 {
			t.Errorf("item not removed from bucket: %+v", docs.doc.Content)
		}
	})

	t.Run("no references issues no file deletes", func(t *testing.T) {
		s, _, files := testStore(t)
		created, err := s.Create(ctx, models.ContentItem{
			Title:   "Plain",
			Section: "announcements",
			Content: "text only",
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if err := s.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if len(files.deleted) != 0 {
			t.Errorf("deleted: got %v, want none", files.deleted)
		}
	})

	t.Run("missing item", func(t *testing.T) {
		s, _, _ := testStore(t)
		if err := s.Delete(ctx, "content-0-none"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})
}

func TestListSectionAggregation(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()

	mk := func(title, section string, status models.ContentStatus) *models.ContentItem {
		t.Helper()
		item, err := s.Create(ctx, models.ContentItem{Title: title, Section: section, Status: status})
		if err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
		return item
	}

	mk("press-old", "library/press", models.ContentStatusPublished)
	mk("academic-mid", "library/academic", models.ContentStatusPublished)
	mk("press-draft", "library/press", models.ContentStatusDraft)
	mk("reports-new", "library/reports", models.ContentStatusPublished)
	mk("elsewhere", "announcements", models.ContentStatusPublished)

	got, err := s.ListSection(ctx, "library", models.ContentStatusPublished)
	if err != nil {
		t.Fatalf("ListSection: %v", err)
	}

	want := []string{"reports-new", "academic-mid", "press-old"}
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d: %+v", len(got), len(want), got)
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("item[%d]: got %q, want %q (newest first)", i, got[i].Title, title)
		}
	}
}

func TestListSectionLeafAndComposite(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, models.ContentItem{Title: "a", Section: "announcements", Status: models.ContentStatusPublished}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx, models.ContentItem{Title: "p", Section: "library/press", Status: models.ContentStatusPublished}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	leaf, err := s.ListSection(ctx, "announcements", models.ContentStatusPublished)
	if err != nil {
		t.Fatalf("ListSection leaf: %v", err)
	}
	if len(leaf) != 1 || leaf[0].Title != "a" {
		t.Errorf("leaf: got %+v", leaf)
	}

	composite, err := s.ListSection(ctx, "library/press", models.ContentStatusPublished)
	if err != nil {
		t.Fatalf("ListSection composite: %v", err)
	}
	if len(composite) != 1 || composite[0].Title != "p" {
		t.Errorf("composite: got %+v", composite)
	}
}

func TestDraftExcludedUntilPublished(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()

	older, err := s.Create(ctx, models.ContentItem{
		Title: "older published", Section: "library/press", Status: models.ContentStatusPublished,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	draft, err := s.Create(ctx, models.ContentItem{
		Title: "A", Section: "library/press", Status: models.ContentStatusDraft,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	listed, err := s.ListSection(ctx, "library/press", models.ContentStatusPublished)
	if err != nil {
		t.Fatalf("ListSection: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != older.ID {
		t.Fatalf("draft leaked into published listing: %+v", listed)
	}

	published := models.ContentStatusPublished
	if _, err := s.Update(ctx, draft.ID, Patch{Status: &published}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	listed, err = s.ListSection(ctx, "library/press", models.ContentStatusPublished)
	if err != nil {
		t.Fatalf("ListSection: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("got %d items, want 2", len(listed))
	}
	if listed[0].ID != draft.ID {
		t.Errorf("newly published item must sort ahead of older ones")
	}
}

func TestListAll(t *testing.T) {
	s, _, _ := testStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, models.ContentItem{Title: "pub", Section: "announcements", Status: models.ContentStatusPublished}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx, models.ContentItem{Title: "dr", Section: "library/press", Status: models.ContentStatusDraft}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	all, err := s.ListAll(ctx, "")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered: got %d buckets", len(all))
	}

	pub, err := s.ListAll(ctx, models.ContentStatusPublished)
	if err != nil {
		t.Fatalf("ListAll published: %v", err)
	}
	if len(pub) != 1 || len(pub["announcements"]) != 1 {
		t.Errorf("published: got %+v", pub)
	}
}

func TestMutationsPropagateStoreErrors(t *testing.T) {
	s, docs, _ := testStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, models.ContentItem{Title: "x", Section: "announcements"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	docs.saveErr = storage.ErrConflict
	if _, err := s.IncrementView(ctx, created.ID); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("IncrementView: got %v, want ErrConflict surfaced unretried", err)
	}

	docs.saveErr = nil
	docs.loadErr = storage.ErrUnavailable
	if _, err := s.FindByID(ctx, created.ID); !errors.Is(err, storage.ErrUnavailable) {
		t.Errorf("FindByID: got %v, want ErrUnavailable", err)
	}
}
