// Package file keeps blog posts in a single JSON document on disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type postRecord struct {
	ID              int64     `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Excerpt         string    `json:"excerpt"`
	FeaturedImage   string    `json:"featured_image"`
	Category        string    `json:"category"`
	Tags            []string  `json:"tags"`
	MetaTitle       string    `json:"meta_title"`
	MetaDescription string    `json:"meta_description"`
	Author          string    `json:"author"`
	IsPublished     bool      `json:"is_published"`
	PublishedAt     time.Time `json:"published_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type document struct {
	NextID int64        `json:"next_id"`
	Posts  []postRecord `json:"posts"`
}

// BlogRepository stores posts in a JSON file. Every write rewrites the file
// through a temporary sibling and a rename.
type BlogRepository struct {
	path string
	now  func() time.Time

	mu sync.Mutex
}

// NewBlogRepository creates a repository backed by path. The file is created
// on first write.
func NewBlogRepository(path string) *BlogRepository {
	return &BlogRepository{path: path, now: time.Now}
}

func (r *BlogRepository) load() (*document, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &document{NextID: 1}, nil
		}
		return nil, fmt.Errorf("read blog file: %w", err)
	}
	var doc document
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode blog file: %w", err)
		}
	}
	for _, p := range doc.Posts {
		if p.ID >= doc.NextID {
			doc.NextID = p.ID + 1
		}
	}
	if doc.NextID < 1 {
		doc.NextID = 1
	}
	return &doc, nil
}

func (r *BlogRepository) store(doc *document) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode blog file: %w", err)
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create blog dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".blog-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace blog file: %w", err)
	}
	return nil
}

func toModel(p postRecord) model.BlogPost {
	post := model.BlogPost(p)
	post.Tags = append([]string{}, p.Tags...)
	return post
}

func fromModel(p model.BlogPost) postRecord {
	rec := postRecord(p)
	rec.Tags = append([]string{}, p.Tags...)
	return rec
}

func (d *document) indexOf(identifier string) int {
	for i, p := range d.Posts {
		if strconv.FormatInt(p.ID, 10) == identifier || p.Slug == identifier {
			return i
		}
	}
	return -1
}

func (d *document) indexByID(id int64) int {
	for i, p := range d.Posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (d *document) slugTaken(slug string, except int64) bool {
	for _, p := range d.Posts {
		if p.Slug == slug && p.ID != except {
			return true
		}
	}
	return false
}

// List returns posts ordered by publication time, newest first.
func (r *BlogRepository) List(_ context.Context, filter model.BlogFilter) (*model.BlogList, error) {
	r.mu.Lock()
	doc, err := r.load()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	page, limit := model.NormalizePage(filter.Page, filter.Limit)
	matched := make([]postRecord, 0, len(doc.Posts))
	for _, p := range doc.Posts {
		if filter.Published && !p.IsPublished {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		matched = append(matched, p)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})

	meta := model.NewPage(page, limit, len(matched))
	posts := []model.BlogPost{}
	start := meta.Offset()
	if start < len(matched) {
		end := start + limit
		if end > len(matched) {
			end = len(matched)
		}
		for _, p := range matched[start:end] {
			posts = append(posts, toModel(p))
		}
	}
	return &model.BlogList{Posts: posts, Page: meta}, nil
}

func (r *BlogRepository) Get(_ context.Context, identifier string) (*model.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	i := doc.indexOf(identifier)
	if i < 0 {
		return nil, domainErrors.ErrNotFound
	}
	post := toModel(doc.Posts[i])
	return &post, nil
}

func (r *BlogRepository) Create(_ context.Context, post model.BlogPost) (*model.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	if doc.slugTaken(post.Slug, 0) {
		return nil, domainErrors.ErrAlreadyExists
	}

	now := r.now().UTC()
	post.ID = doc.NextID
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.PublishedAt.IsZero() {
		post.PublishedAt = now
	}
	doc.NextID++
	doc.Posts = append(doc.Posts, fromModel(post))

	if err := r.store(doc); err != nil {
		return nil, err
	}
	created := toModel(doc.Posts[len(doc.Posts)-1])
	return &created, nil
}

func (r *BlogRepository) Update(_ context.Context, id int64, update model.BlogPostUpdate) (*model.BlogPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return nil, err
	}
	i := doc.indexByID(id)
	if i < 0 {
		return nil, domainErrors.ErrNotFound
	}
	if update.Empty() {
		post := toModel(doc.Posts[i])
		return &post, nil
	}
	if update.Slug != nil && doc.slugTaken(*update.Slug, id) {
		return nil, domainErrors.ErrAlreadyExists
	}

	post := toModel(doc.Posts[i])
	update.Apply(&post)
	post.UpdatedAt = r.now().UTC()
	doc.Posts[i] = fromModel(post)

	if err := r.store(doc); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *BlogRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.load()
	if err != nil {
		return err
	}
	i := doc.indexByID(id)
	if i < 0 {
		return domainErrors.ErrNotFound
	}
	doc.Posts = append(doc.Posts[:i], doc.Posts[i+1:]...)
	return r.store(doc)
}

// Categories lists distinct categories of published posts in order.
func (r *BlogRepository) Categories(_ context.Context) ([]string, error) {
	r.mu.Lock()
	doc, err := r.load()
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range doc.Posts {
		if !p.IsPublished {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}
