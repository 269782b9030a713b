package usecase

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

const excerptLength = 160

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
)

// BlogPostInput is a new post.
type BlogPostInput struct {
	Title           string   `field:"title" validate:"required,max=500"`
	Content         string   `field:"content" validate:"required"`
	Excerpt         string   `field:"excerpt" validate:"max=500"`
	FeaturedImage   string   `field:"featured_image"`
	Category        string   `field:"category" validate:"max=100"`
	Tags            []string `field:"tags"`
	MetaTitle       string   `field:"meta_title" validate:"max=500"`
	MetaDescription string   `field:"meta_description" validate:"max=500"`
	Author          string   `field:"author" validate:"max=255"`
}

// BlogUseCase manages blog posts on whichever backend is configured.
type BlogUseCase struct {
	posts  repository.BlogRepository
	policy *bluemonday.Policy
}

// NewBlogUseCase constructs BlogUseCase.
func NewBlogUseCase(posts repository.BlogRepository) *BlogUseCase {
	return &BlogUseCase{posts: posts, policy: contentPolicy()}
}

// contentPolicy allows user generated markup plus images, headings and
// embedded video players.
func contentPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowImages()
	p.AllowAttrs("src", "alt", "title", "width", "height", "loading").OnElements("img")
	p.AllowAttrs("class", "id").Globally()
	p.AllowAttrs("href", "target", "rel").OnElements("a")
	p.AllowElements("iframe")
	p.AllowAttrs("width", "height", "frameborder", "allowfullscreen").OnElements("iframe")
	p.AllowAttrs("src").Matching(regexp.MustCompile(`^https://(www\.)?(youtube\.com|player\.vimeo\.com)/`)).OnElements("iframe")
	return p
}

// List returns one page of published posts.
func (u *BlogUseCase) List(ctx context.Context, page, limit int, category string) (*model.BlogList, error) {
	page, limit = model.NormalizePage(page, limit)
	return u.posts.List(ctx, model.BlogFilter{
		Page:      page,
		Limit:     limit,
		Category:  strings.TrimSpace(category),
		Published: true,
	})
}

// Get finds a post by numeric id or slug.
func (u *BlogUseCase) Get(ctx context.Context, identifier string) (*model.BlogPost, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domainErrors.ErrNotFound
	}
	return u.posts.Get(ctx, identifier)
}

// Categories lists categories of published posts.
func (u *BlogUseCase) Categories(ctx context.Context) ([]string, error) {
	return u.posts.Categories(ctx)
}

// Create fills in derived fields and stores the post. A slug collision
// yields ErrAlreadyExists.
func (u *BlogUseCase) Create(ctx context.Context, in BlogPostInput) (*model.BlogPost, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	verr := validateInput(in)
	slug := Slugify(in.Title)
	if in.Title != "" && slug == "" {
		verr.Add("title", "must contain at least one letter or digit")
	}
	if err := failed(verr); err != nil {
		return nil, err
	}

	content := u.policy.Sanitize(in.Content)
	excerpt := strings.TrimSpace(in.Excerpt)
	if excerpt == "" {
		excerpt = autoExcerpt(content)
	}
	title := in.Title

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return u.posts.Create(ctx, model.BlogPost{
		Slug:            slug,
		Title:           title,
		Content:         content,
		Excerpt:         excerpt,
		FeaturedImage:   strings.TrimSpace(in.FeaturedImage),
		Category:        stringOr(strings.TrimSpace(in.Category), model.DefaultBlogCategory),
		Tags:            tags,
		MetaTitle:       stringOr(strings.TrimSpace(in.MetaTitle), title),
		MetaDescription: stringOr(strings.TrimSpace(in.MetaDescription), excerpt),
		Author:          stringOr(strings.TrimSpace(in.Author), model.DefaultBlogAuthor),
		IsPublished:     true,
	})
}

// Update applies whitelisted fields. A new title also changes the slug.
func (u *BlogUseCase) Update(ctx context.Context, id string, update model.BlogPostUpdate) (*model.BlogPost, error) {
	postID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || postID <= 0 {
		return nil, domainErrors.ErrNotFound
	}

	verr := &domainErrors.ValidationError{}
	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		slug := Slugify(title)
		switch {
		case title == "":
			verr.Add("title", "is required")
		case utf8.RuneCountInString(title) > 500:
			verr.Add("title", "must be at most 500 characters")
		case slug == "":
			verr.Add("title", "must contain at least one letter or digit")
		}
		update.Title = &title
		update.Slug = &slug
	} else {
		update.Slug = nil
	}
	if update.Content != nil {
		content := u.policy.Sanitize(*update.Content)
		if strings.TrimSpace(content) == "" {
			verr.Add("content", "is required")
		}
		update.Content = &content
	}
	if err := failed(verr); err != nil {
		return nil, err
	}
	return u.posts.Update(ctx, postID, update)
}

// Delete removes a post.
func (u *BlogUseCase) Delete(ctx context.Context, id string) error {
	postID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || postID <= 0 {
		return domainErrors.ErrNotFound
	}
	return u.posts.Delete(ctx, postID)
}

// Slugify lowercases text, drops punctuation and joins words with dashes.
func Slugify(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugCollapse.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func autoExcerpt(content string) string {
	if content == "" {
		return ""
	}
	runes := []rune(content)
	if len(runes) > excerptLength {
		runes = runes[:excerptLength]
	}
	return string(runes) + "..."
}
