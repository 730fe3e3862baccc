package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/middleware"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/model"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/repository"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/response"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/service"
	"github.com/yggdrasil-edu/yggdrasil-backend/internal/validator"
)

// NewsHandler handles the news article routes.
type NewsHandler struct {
	newsService *service.NewsService
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(newsService *service.NewsService) *NewsHandler {
	return &NewsHandler{newsService: newsService}
}

// ListNews godoc
// GET /api/news?category=&search=&page=&limit=
func (h *NewsHandler) ListNews(c *gin.Context) {
	page, limit, err := parsePagination(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPaging)
		return
	}

	var f repository.NewsFilter
	if v := c.Query("category"); v != "" {
		f.Category = &v
	}
	if v := c.Query("search"); v != "" {
		f.Search = &v
	}

	articles, total, err := h.newsService.List(c.Request.Context(), f, limit, (page-1)*limit)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"articles": articles}, buildPagination(page, limit, total))
}

// GetNews godoc
// GET /api/news/:id
func (h *NewsHandler) GetNews(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	article, err := h.newsService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNewsNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"article": article})
}

// NewsRequest is the payload for creating or updating an article.
type NewsRequest struct {
	Title    string   `json:"title" binding:"required,min=1,max=300"`
	Summary  string   `json:"summary" binding:"omitempty,max=500"`
	Content  string   `json:"content" binding:"required,min=1"`
	Category string   `json:"category" binding:"required,min=1,max=100"`
	Tags     []string `json:"tags" binding:"omitempty,max=10,dive,min=1,max=50"`
	Status   string   `json:"status" binding:"omitempty,oneof=draft published"`
}

// CreateNews godoc
// POST /api/news
func (h *NewsHandler) CreateNews(c *gin.Context) {
	var req NewsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)

	article := &model.NewsArticle{
		Title:    req.Title,
		Summary:  req.Summary,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
		AuthorID: claims.UserID,
		Status:   model.NewsStatus(req.Status),
	}

	if err := h.newsService.Create(c.Request.Context(), article); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"article": article})
}

// UpdateNews godoc
// PUT /api/news/:id
func (h *NewsHandler) UpdateNews(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req NewsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	article := &model.NewsArticle{
		ID:       id,
		Title:    req.Title,
		Summary:  req.Summary,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
		Status:   model.NewsStatus(req.Status),
	}
	if article.Status == "" {
		article.Status = model.NewsStatusDraft
	}

	if err := h.newsService.Update(c.Request.Context(), article); err != nil {
		if errors.Is(err, repository.ErrNewsNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	updated, _ := h.newsService.GetByID(c.Request.Context(), id)
	response.Success(c, http.StatusOK, gin.H{"article": updated})
}

// DeleteNews godoc
// DELETE /api/news/:id
// Archives the article; nothing is physically removed.
func (h *NewsHandler) DeleteNews(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.newsService.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNewsNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.SuccessWithMessage(c, http.StatusOK, nil, "article archived")
}
