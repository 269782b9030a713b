package dto

import (
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/usecase"
)

// BlogPostRequest creates a post.
type BlogPostRequest struct {
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Excerpt         string   `json:"excerpt"`
	FeaturedImage   string   `json:"featured_image"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	MetaTitle       string   `json:"meta_title"`
	MetaDescription string   `json:"meta_description"`
	Author          string   `json:"author"`
}

// Input converts the request.
func (r BlogPostRequest) Input() usecase.BlogPostInput {
	return usecase.BlogPostInput{
		Title:           r.Title,
		Content:         r.Content,
		Excerpt:         r.Excerpt,
		FeaturedImage:   r.FeaturedImage,
		Category:        r.Category,
		Tags:            r.Tags,
		MetaTitle:       r.MetaTitle,
		MetaDescription: r.MetaDescription,
		Author:          r.Author,
	}
}

// BlogPostUpdateRequest lists the fields a client may change. The slug
// follows the title and cannot be set directly.
type BlogPostUpdateRequest struct {
	Title           *string   `json:"title"`
	Content         *string   `json:"content"`
	Excerpt         *string   `json:"excerpt"`
	FeaturedImage   *string   `json:"featured_image"`
	Category        *string   `json:"category"`
	Tags            *[]string `json:"tags"`
	MetaTitle       *string   `json:"meta_title"`
	MetaDescription *string   `json:"meta_description"`
	Author          *string   `json:"author"`
	IsPublished     *bool     `json:"is_published"`
}

// Update converts the request.
func (r BlogPostUpdateRequest) Update() model.BlogPostUpdate {
	return model.BlogPostUpdate{
		Title:           r.Title,
		Content:         r.Content,
		Excerpt:         r.Excerpt,
		FeaturedImage:   r.FeaturedImage,
		Category:        r.Category,
		Tags:            r.Tags,
		MetaTitle:       r.MetaTitle,
		MetaDescription: r.MetaDescription,
		Author:          r.Author,
		IsPublished:     r.IsPublished,
	}
}

// BlogPost is a post in responses.
type BlogPost struct {
	ID              int64     `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Excerpt         string    `json:"excerpt"`
	FeaturedImage   string    `json:"featured_image,omitempty"`
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

// NewBlogPost converts a post.
func NewBlogPost(p model.BlogPost) BlogPost {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return BlogPost{
		ID:              p.ID,
		Slug:            p.Slug,
		Title:           p.Title,
		Content:         p.Content,
		Excerpt:         p.Excerpt,
		FeaturedImage:   p.FeaturedImage,
		Category:        p.Category,
		Tags:            tags,
		MetaTitle:       p.MetaTitle,
		MetaDescription: p.MetaDescription,
		Author:          p.Author,
		IsPublished:     p.IsPublished,
		PublishedAt:     p.PublishedAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// NewBlogPosts converts a list of posts.
func NewBlogPosts(posts []model.BlogPost) []BlogPost {
	out := make([]BlogPost, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewBlogPost(p))
	}
	return out
}
