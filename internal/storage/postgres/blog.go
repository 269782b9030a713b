package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

type blogRepository struct {
	storage *Storage
}

const blogColumns = `id, slug, title, content, excerpt, featured_image, category, tags,
                     meta_title, meta_description, author, is_published, published_at, created_at, updated_at`

func scanBlogPost(row scanner) (*model.BlogPost, error) {
	var (
		p    model.BlogPost
		tags []byte
	)
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Content, &p.Excerpt, &p.FeaturedImage, &p.Category, &tags,
		&p.MetaTitle, &p.MetaDescription, &p.Author, &p.IsPublished, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &p.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func (r *blogRepository) List(ctx context.Context, filter model.BlogFilter) (*model.BlogList, error) {
	page, limit := model.NormalizePage(filter.Page, filter.Limit)

	const where = ` WHERE ($1 = false OR is_published) AND ($2 = '' OR category = $2)`
	var total int
	if err := r.storage.pool.QueryRow(ctx, `SELECT COUNT(*) FROM blog_posts`+where, filter.Published, filter.Category).Scan(&total); err != nil {
		return nil, err
	}

	meta := model.NewPage(page, limit, total)
	query := `SELECT ` + blogColumns + ` FROM blog_posts` + where + ` ORDER BY published_at DESC LIMIT $3 OFFSET $4`
	rows, err := r.storage.pool.Query(ctx, query, filter.Published, filter.Category, limit, meta.Offset())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.BlogPost{}
	for rows.Next() {
		post, err := scanBlogPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &model.BlogList{Posts: posts, Page: meta}, nil
}

// Get resolves a post by numeric id or slug.
func (r *blogRepository) Get(ctx context.Context, identifier string) (*model.BlogPost, error) {
	query := `SELECT ` + blogColumns + ` FROM blog_posts WHERE id::text=$1 OR slug=$1 LIMIT 1`
	post, err := scanBlogPost(r.storage.pool.QueryRow(ctx, query, identifier))
	if err != nil {
		return nil, notFound(err)
	}
	return post, nil
}

func (r *blogRepository) Create(ctx context.Context, post model.BlogPost) (*model.BlogPost, error) {
	tags, err := encodeTags(post.Tags)
	if err != nil {
		return nil, err
	}
	query := `INSERT INTO blog_posts (slug, title, content, excerpt, featured_image, category, tags,
                  meta_title, meta_description, author, is_published, published_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, NOW()))
              RETURNING ` + blogColumns
	var publishedAt any
	if !post.PublishedAt.IsZero() {
		publishedAt = post.PublishedAt
	}
	created, err := scanBlogPost(r.storage.pool.QueryRow(ctx, query,
		post.Slug, post.Title, post.Content, post.Excerpt, post.FeaturedImage, post.Category, tags,
		post.MetaTitle, post.MetaDescription, post.Author, post.IsPublished, publishedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

func (r *blogRepository) Update(ctx context.Context, id int64, update model.BlogPostUpdate) (*model.BlogPost, error) {
	if update.Empty() {
		return r.Get(ctx, strconv.FormatInt(id, 10))
	}

	sets := make([]string, 0, 12)
	args := []any{id}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+"=$"+strconv.Itoa(len(args)))
	}
	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Slug != nil {
		add("slug", *update.Slug)
	}
	if update.Content != nil {
		add("content", *update.Content)
	}
	if update.Excerpt != nil {
		add("excerpt", *update.Excerpt)
	}
	if update.FeaturedImage != nil {
		add("featured_image", *update.FeaturedImage)
	}
	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.Tags != nil {
		tags, err := encodeTags(*update.Tags)
		if err != nil {
			return nil, err
		}
		add("tags", tags)
	}
	if update.MetaTitle != nil {
		add("meta_title", *update.MetaTitle)
	}
	if update.MetaDescription != nil {
		add("meta_description", *update.MetaDescription)
	}
	if update.Author != nil {
		add("author", *update.Author)
	}
	if update.IsPublished != nil {
		add("is_published", *update.IsPublished)
	}
	sets = append(sets, "updated_at=NOW()")

	query := `UPDATE blog_posts SET ` + strings.Join(sets, ", ") + ` WHERE id=$1 RETURNING ` + blogColumns
	post, err := scanBlogPost(r.storage.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, notFound(err)
	}
	return post, nil
}

func (r *blogRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.storage.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *blogRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.storage.pool.Query(ctx, `SELECT DISTINCT category FROM blog_posts WHERE is_published ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}
