package model

import "time"

// DefaultBlogCategory and DefaultBlogAuthor fill in omitted post fields.
const (
	DefaultBlogCategory = "general"
	DefaultBlogAuthor   = "Sarcasm Mugs Team"
)

// BlogPost is a published or draft article.
type BlogPost struct {
	ID              int64
	Slug            string
	Title           string
	Content         string
	Excerpt         string
	FeaturedImage   string
	Category        string
	Tags            []string
	MetaTitle       string
	MetaDescription string
	Author          string
	IsPublished     bool
	PublishedAt     time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// BlogPostUpdate holds the editable fields of a post. Nil fields are kept.
type BlogPostUpdate struct {
	Title           *string
	Slug            *string
	Content         *string
	Excerpt         *string
	FeaturedImage   *string
	Category        *string
	Tags            *[]string
	MetaTitle       *string
	MetaDescription *string
	Author          *string
	IsPublished     *bool
}

// Empty reports whether the update carries no fields.
func (u BlogPostUpdate) Empty() bool {
	return u.Title == nil && u.Slug == nil && u.Content == nil && u.Excerpt == nil &&
		u.FeaturedImage == nil && u.Category == nil && u.Tags == nil && u.MetaTitle == nil &&
		u.MetaDescription == nil && u.Author == nil && u.IsPublished == nil
}

// Apply copies set fields onto the post.
func (u BlogPostUpdate) Apply(p *BlogPost) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Slug != nil {
		p.Slug = *u.Slug
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Excerpt != nil {
		p.Excerpt = *u.Excerpt
	}
	if u.FeaturedImage != nil {
		p.FeaturedImage = *u.FeaturedImage
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Tags != nil {
		p.Tags = append([]string(nil), (*u.Tags)...)
	}
	if u.MetaTitle != nil {
		p.MetaTitle = *u.MetaTitle
	}
	if u.MetaDescription != nil {
		p.MetaDescription = *u.MetaDescription
	}
	if u.Author != nil {
		p.Author = *u.Author
	}
	if u.IsPublished != nil {
		p.IsPublished = *u.IsPublished
	}
}

// BlogFilter narrows post listings.
type BlogFilter struct {
	Page      int
	Limit     int
	Category  string
	Published bool
}

// BlogList is one page of posts.
type BlogList struct {
	Posts []BlogPost
	Page  Page
}
