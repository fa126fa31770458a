package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/communityforum/backend/internal/middleware"
	"github.com/communityforum/backend/internal/models"
	"github.com/communityforum/backend/internal/notify"
)

type ArticleHandler struct {
	db       *gorm.DB
	notifier *notify.Notifier
}

func NewArticleHandler(db *gorm.DB, notifier *notify.Notifier) *ArticleHandler {
	return &ArticleHandler{db: db, notifier: notifier}
}

// CreateArticle creates a new article and fans out a notification.
func (h *ArticleHandler) CreateArticle(c *gin.Context) {
	var input models.CreateArticleRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "Title and content are required"})
		return
	}

	user := middleware.ResolveUser(c, input.User)

	article := models.Article{
		Title:    input.Title,
		Content:  input.Content,
		Category: input.Category,
		ImageURL: input.ImageURL,
		User:     user,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&article).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": false, "message": "Error while adding article"})
		return
	}

	h.notifier.ArticlePosted(c.Request.Context(), user, article.Title)

	c.JSON(http.StatusCreated, gin.H{
		"status":  true,
		"message": "Article added successfully",
		"data":    article,
	})
}

// GetArticles returns a page of articles, latest first.
func (h *ArticleHandler) GetArticles(c *gin.Context) {
	page, limit := pagination(c, 1, 5)
	db := h.db.WithContext(c.Request.Context())

	var total int64
	if err := db.Model(&models.Article{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching articles"})
		return
	}

	var articles []models.Article
	if err := db.Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&articles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching articles"})
		return
	}

	if articles == nil {
		articles = []models.Article{}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	c.JSON(http.StatusOK, gin.H{
		"articles":    articles,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

// DeleteArticle removes an article. Owner only; no notification.
func (h *ArticleHandler) DeleteArticle(c *gin.Context) {
	articleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": false, "message": "Article not found"})
		return
	}
	db := h.db.WithContext(c.Request.Context())

	var article models.Article
	if err := db.First(&article, articleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": false, "message": "Article not found"})
		return
	}

	actor, ok := deleteActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Identity required"})
		return
	}
	if !article.User.Matches(actor) {
		c.JSON(http.StatusForbidden, gin.H{"status": false, "message": "You can only delete your own articles"})
		return
	}

	if err := db.Delete(&article).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": false, "message": "Failed to delete article"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Article deleted successfully"})
}
