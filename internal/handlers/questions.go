package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/communityforum/backend/internal/middleware"
	"github.com/communityforum/backend/internal/models"
	"github.com/communityforum/backend/internal/notify"
)

type QuestionHandler struct {
	db       *gorm.DB
	notifier *notify.Notifier
}

func NewQuestionHandler(db *gorm.DB, notifier *notify.Notifier) *QuestionHandler {
	return &QuestionHandler{db: db, notifier: notifier}
}

// CreateQuestion creates a new question and fans out a notification.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var input models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "Question and category are required"})
		return
	}

	user := middleware.ResolveUser(c, input.User)

	question := models.Question{
		Title:    input.Title,
		URL:      input.URL,
		Category: input.Category,
		User:     user,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&question).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "Error while adding question"})
		return
	}

	// Notification failure never fails the create.
	h.notifier.QuestionAsked(c.Request.Context(), user, question.Title)

	c.JSON(http.StatusCreated, gin.H{
		"status":  true,
		"message": "Question added successfully",
		"data":    question,
	})
}

// GetQuestions lists questions newest-first, optionally filtered by
// category, each joined with all of its answers.
func (h *QuestionHandler) GetQuestions(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())

	query := db.Preload("AllAnswers").Order("created_at desc")
	if category := strings.TrimSpace(c.Query("category")); category != "" {
		query = query.Where("category = ?", category)
	}

	var questions []models.Question
	if err := query.Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching questions"})
		return
	}

	if questions == nil {
		questions = []models.Question{}
	}
	c.JSON(http.StatusOK, questions)
}

// SearchQuestions does a case-insensitive substring match on the title,
// returning the same joined shape as the list endpoint.
func (h *QuestionHandler) SearchQuestions(c *gin.Context) {
	searchQuery := strings.TrimSpace(c.Query("query"))
	if searchQuery == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "Query parameter is required"})
		return
	}

	var questions []models.Question
	err := h.db.WithContext(c.Request.Context()).
		Preload("AllAnswers").
		Where("title ILIKE ?", "%"+searchQuery+"%").
		Order("created_at desc").
		Find(&questions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": false, "message": "Error searching questions"})
		return
	}

	if questions == nil {
		questions = []models.Question{}
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "data": questions})
}

// DeleteQuestion removes a question and cascades to its answers and their
// votes, as one transaction. Owner only.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": false, "message": "Question not found"})
		return
	}
	db := h.db.WithContext(c.Request.Context())

	var question models.Question
	if err := db.First(&question, questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": false, "message": "Question not found"})
		return
	}

	actor, ok := deleteActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Identity required"})
		return
	}
	if !question.User.Matches(actor) {
		c.JSON(http.StatusForbidden, gin.H{"status": false, "message": "You can only delete your own questions"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var answers []models.Answer
		if err := tx.Where("question_id = ?", question.ID).Find(&answers).Error; err != nil {
			return err
		}

		answerIDs := lo.Map(answers, func(a models.Answer, _ int) int { return a.ID })
		if len(answerIDs) > 0 {
			if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetAnswer, answerIDs).
				Delete(&models.Vote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("question_id = ?", question.ID).Delete(&models.Answer{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("target_type = ? AND target_id = ?", models.TargetQuestion, question.ID).
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&question).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": false, "message": "Failed to delete question"})
		return
	}

	h.notifier.QuestionDeleted(c.Request.Context(), question.Title)

	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Question deleted successfully"})
}

// deleteActor resolves the identity a delete is authorized against: the
// verified token identity when present, else the snapshot the client sent.
func deleteActor(c *gin.Context) (models.UserSnapshot, bool) {
	if user, ok := middleware.VerifiedUser(c); ok {
		return user, true
	}

	var body struct {
		User models.UserSnapshot `json:"user"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		if body.User.UID != "" || body.User.Email != "" {
			return body.User, true
		}
	}
	return models.UserSnapshot{}, false
}
