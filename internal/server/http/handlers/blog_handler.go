package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// BlogHandler serves blog endpoints.
type BlogHandler struct {
	facade BlogFacade
}

// NewBlogHandler constructs BlogHandler.
func NewBlogHandler(facade BlogFacade) *BlogHandler {
	return &BlogHandler{facade: facade}
}

// List handles GET /api/blog/posts.
func (h *BlogHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	list, err := h.facade.BlogPosts(c.Request.Context(), page, limit, c.Query("category"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListEnvelope{Success: true, Data: dto.NewBlogPosts(list.Posts), Pagination: dto.NewPagination(list.Page)})
}

// Get handles GET /api/blog/posts/:identifier.
func (h *BlogHandler) Get(c *gin.Context) {
	post, err := h.facade.BlogPost(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Data: dto.NewBlogPost(*post)})
}

// Categories handles GET /api/blog/categories.
func (h *BlogHandler) Categories(c *gin.Context) {
	categories, err := h.facade.BlogCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Data: categories})
}

// Create handles POST /api/blog/posts.
func (h *BlogHandler) Create(c *gin.Context) {
	var req dto.BlogPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	post, err := h.facade.CreateBlogPost(c.Request.Context(), req.Input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Envelope{Success: true, Data: dto.NewBlogPost(*post), Message: "Blog post created successfully"})
}

// Update handles PUT /api/blog/posts/:id.
func (h *BlogHandler) Update(c *gin.Context) {
	var req dto.BlogPostUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	post, err := h.facade.UpdateBlogPost(c.Request.Context(), c.Param("id"), req.Update())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Data: dto.NewBlogPost(*post), Message: "Blog post updated successfully"})
}

// Delete handles DELETE /api/blog/posts/:id.
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.facade.DeleteBlogPost(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Envelope{Success: true, Message: "Blog post deleted successfully"})
}
