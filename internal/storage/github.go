// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/go-github/v68/github"
	"github.com/google/uuid"

	"orgpress/internal/models"
)

// defaultRawBaseURL is where GitHub serves raw file contents.
const defaultRawBaseURL = "https://raw.githubusercontent.com"

// GitHubConfig holds the settings for the GitHub-backed store.
type GitHubConfig struct {
	Token       string
	Owner       string
	Repo        string
	Branch      string
	ContentPath string // repository path of the content JSON document

	// BaseURL and RawBaseURL override the GitHub API and raw-content
	// endpoints. Used by tests; empty means github.com.
	BaseURL    string
	RawBaseURL string
}

// GitHubClient stores the content document and uploaded files in a GitHub
// repository through the contents API. It implements both DocumentStore
// and FileStore.
type GitHubClient struct {
	gh          *github.Client
	owner       string
	repo        string
	branch      string
	contentPath string
	rawBase     string
}

// NewGitHub creates a GitHub storage client. Returns an error if the
// repository coordinates are incomplete or the base URL does not parse.
func NewGitHub(cfg GitHubConfig) (*GitHubClient, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github storage: owner and repo are required")
	}
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.ContentPath == "" {
		cfg.ContentPath = "data/content.json"
	}

	gh := github.NewClient(nil)
	if cfg.Token != "" {
		gh = gh.WithAuthToken(cfg.Token)
	}
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("github storage: parse base url: %w", err)
		}
		gh.BaseURL = base
	}

	rawBase := defaultRawBaseURL
	if cfg.RawBaseURL != "" {
		rawBase = strings.TrimRight(cfg.RawBaseURL, "/")
	}

	return &GitHubClient{
		gh:          gh,
		owner:       cfg.Owner,
		repo:        cfg.Repo,
		branch:      cfg.Branch,
		contentPath: cfg.ContentPath,
		rawBase:     rawBase,
	}, nil
}

// LoadContent fetches and decodes the content document. A missing
// document is created empty in the repository and returned.
func (c *GitHubClient) LoadContent(ctx context.Context) (*models.Document, error) {
	fc, _, resp, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, c.contentPath,
		&github.RepositoryContentGetOptions{Ref: c.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return c.initContent(ctx)
		}
		return nil, fmt.Errorf("load content: %w: %v", ErrUnavailable, err)
	}
	if fc == nil {
		return nil, fmt.Errorf("load content: %w: %s is not a file", ErrUnavailable, c.contentPath)
	}

	raw, err := fc.GetContent()
	if err != nil {
		return nil, fmt.Errorf("load content: decode blob: %w", err)
	}

	doc := models.NewDocument()
	if err := json.Unmarshal([]byte(raw), doc); err != nil {
		return nil, fmt.Errorf("load content: parse document: %w", err)
	}
	if doc.Content == nil {
		doc.Content = map[string][]models.ContentItem{}
	}
	doc.SetRev(fc.GetSHA())
	return doc, nil
}

// initContent creates the empty document in the repository. The create
// carries no SHA, so it fails if another writer initializes concurrently.
func (c *GitHubClient) initContent(ctx context.Context) (*models.Document, error) {
	doc := models.NewDocument()
	data, err := marshalDocument(doc)
	if err != nil {
		return nil, err
	}

	res, _, err := c.gh.Repositories.CreateFile(ctx, c.owner, c.repo, c.contentPath,
		&github.RepositoryContentFileOptions{
			Message: github.String("Initialize content store"),
			Content: data,
			Branch:  github.String(c.branch),
		})
	if err != nil {
		return nil, fmt.Errorf("init content: %w: %v", ErrUnavailable, err)
	}

	doc.SetRev(res.Content.GetSHA())
	slog.Info("content document initialized", "path", c.contentPath)
	return doc, nil
}

// SaveContent writes the whole document back using the revision token
// captured at load. GitHub rejects the write if the token is stale.
func (c *GitHubClient) SaveContent(ctx context.Context, doc *models.Document) error {
	data, err := marshalDocument(doc)
	if err != nil {
		return err
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String("Update site content"),
		Content: data,
		Branch:  github.String(c.branch),
	}

	var res *github.RepositoryContentResponse
	if sha := doc.Rev(); sha != "" {
		opts.SHA = github.String(sha)
		res, _, err = c.gh.Repositories.UpdateFile(ctx, c.owner, c.repo, c.contentPath, opts)
	} else {
		res, _, err = c.gh.Repositories.CreateFile(ctx, c.owner, c.repo, c.contentPath, opts)
	}
	if err != nil {
		if isConflict(err) {
			return fmt.Errorf("save content: %w", ErrConflict)
		}
		return fmt.Errorf("save content: %w: %v", ErrUnavailable, err)
	}

	doc.SetRev(res.Content.GetSHA())
	return nil
}

// UploadFile stores a binary blob under uploads/<category>/ with a
// timestamped random name and returns its raw URL.
func (c *GitHubClient) UploadFile(ctx context.Context, data []byte, filename, category string) (string, error) {
	category = NormalizeCategory(category)
	ext := strings.ToLower(path.Ext(filename))
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	repoPath := "uploads/" + category + "/" + name

	_, _, err := c.gh.Repositories.CreateFile(ctx, c.owner, c.repo, repoPath,
		&github.RepositoryContentFileOptions{
			Message: github.String("Upload " + name),
			Content: data,
			Branch:  github.String(c.branch),
		})
	if err != nil {
		return "", fmt.Errorf("upload file: %w: %v", ErrUnavailable, err)
	}

	return c.FileURL(repoPath), nil
}

// DeleteFile removes an uploaded file. The file's current SHA is fetched
// first because the contents API requires it; a file that is already gone
// counts as success.
func (c *GitHubClient) DeleteFile(ctx context.Context, fileURL string) error {
	repoPath := c.repoPath(fileURL)

	fc, _, resp, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, repoPath,
		&github.RepositoryContentGetOptions{Ref: c.branch})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("delete file: %w: %v", ErrUnavailable, err)
	}
	if fc == nil {
		return fmt.Errorf("delete file: %w: %s is not a file", ErrUnavailable, repoPath)
	}

	_, resp, err = c.gh.Repositories.DeleteFile(ctx, c.owner, c.repo, repoPath,
		&github.RepositoryContentFileOptions{
			Message: github.String("Delete " + path.Base(repoPath)),
			SHA:     github.String(fc.GetSHA()),
			Branch:  github.String(c.branch),
		})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("delete file: %w: %v", ErrUnavailable, err)
	}
	return nil
}

// FileURL returns the stable raw URL for a repository path.
func (c *GitHubClient) FileURL(repoPath string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", c.rawBase, c.owner, c.repo, c.branch, repoPath)
}

// repoPath normalizes the accepted URL shapes to a repository path:
// the absolute raw URL, a root-relative /uploads/... path, or a bare
// relative path with or without the uploads/ prefix.
func (c *GitHubClient) repoPath(fileURL string) string {
	prefix := fmt.Sprintf("%s/%s/%s/%s/", c.rawBase, c.owner, c.repo, c.branch)
	if strings.HasPrefix(fileURL, prefix) {
		return strings.TrimPrefix(fileURL, prefix)
	}

	p := strings.TrimPrefix(fileURL, "/")
	if !strings.HasPrefix(p, "uploads/") {
		p = "uploads/" + p
	}
	return p
}

// marshalDocument serializes the document with indentation. encoding/json
// sorts map keys, so the byte layout is stable for unchanged content.
func marshalDocument(doc *models.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

// isConflict reports whether the contents API rejected a write because
// the supplied SHA no longer matches the blob.
func isConflict(err error) bool {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return false
	}
	code := ghErr.Response.StatusCode
	return code == http.StatusConflict || code == http.StatusUnprocessableEntity
}
