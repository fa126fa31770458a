package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/communityforum/backend/internal/answertree"
	"github.com/communityforum/backend/internal/middleware"
	"github.com/communityforum/backend/internal/models"
	"github.com/communityforum/backend/internal/notify"
)

type AnswerHandler struct {
	db       *gorm.DB
	notifier *notify.Notifier
}

func NewAnswerHandler(db *gorm.DB, notifier *notify.Notifier) *AnswerHandler {
	return &AnswerHandler{db: db, notifier: notifier}
}

// CreateAnswer creates a top-level answer, or a reply when parentAnswerId is
// set, and fans out the matching notification.
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	var input models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "Answer text and user are required"})
		return
	}

	user := middleware.ResolveUser(c, input.User)
	if user == (models.UserSnapshot{}) {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "Answer text and user are required"})
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var question models.Question
	if err := db.First(&question, input.QuestionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": false, "message": "Question not found"})
		return
	}

	if input.ParentAnswerID != nil {
		var parent models.Answer
		if err := db.First(&parent, *input.ParentAnswerID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"status": false, "message": "Parent answer not found"})
			return
		}
		if parent.QuestionID != question.ID {
			c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "Parent answer belongs to another question"})
			return
		}
	}

	answer := models.Answer{
		Body:           input.Body,
		QuestionID:     question.ID,
		ParentAnswerID: input.ParentAnswerID,
		User:           user,
	}

	if err := db.Create(&answer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": false, "message": "Error while adding answer"})
		return
	}

	if answer.ParentAnswerID != nil {
		h.notifier.Replied(c.Request.Context(), user, answer.Body)
	} else {
		h.notifier.Answered(c.Request.Context(), user, answer.Body)
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  true,
		"message": "Answer added successfully",
		"data":    answer,
	})
}

// GetAnswers returns the reply forest for a question, with the top-level
// answers paginated. Nesting is reconstructed from the flat rows on every
// read; the parent pointer is the only representation stored.
func (h *AnswerHandler) GetAnswers(c *gin.Context) {
	questionID, err := strconv.Atoi(c.Param("questionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "Invalid question id"})
		return
	}

	page, limit := pagination(c, 1, 10)

	var answers []models.Answer
	if err := h.db.WithContext(c.Request.Context()).
		Where("question_id = ?", questionID).
		Find(&answers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": false, "message": "Error fetching answers"})
		return
	}

	forest := answertree.Build(answers)

	totalPages := (len(forest) + limit - 1) / limit
	start := (page - 1) * limit
	if start > len(forest) {
		start = len(forest)
	}
	end := start + limit
	if end > len(forest) {
		end = len(forest)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      true,
		"data":        forest[start:end],
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

// DeleteAnswer removes an answer and cascade-deletes its whole reply
// subtree, plus every vote on a deleted answer, in one transaction. Owner
// only.
func (h *AnswerHandler) DeleteAnswer(c *gin.Context) {
	answerID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": false, "message": "Answer not found"})
		return
	}
	db := h.db.WithContext(c.Request.Context())

	var answer models.Answer
	if err := db.First(&answer, answerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"status": false, "message": "Answer not found"})
		return
	}

	actor, ok := deleteActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"status": false, "message": "Identity required"})
		return
	}
	if !answer.User.Matches(actor) {
		c.JSON(http.StatusForbidden, gin.H{"status": false, "message": "You can only delete your own answers"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		seen := map[int]bool{answer.ID: true}
		doomed := []int{answer.ID}
		frontier := []int{answer.ID}
		for len(frontier) > 0 {
			var children []models.Answer
			if err := tx.Where("parent_answer_id IN ?", frontier).Find(&children).Error; err != nil {
				return err
			}
			// seen guards against parent-pointer cycles in corrupted data.
			frontier = lo.FilterMap(children, func(a models.Answer, _ int) (int, bool) {
				if seen[a.ID] {
					return 0, false
				}
				seen[a.ID] = true
				return a.ID, true
			})
			doomed = append(doomed, frontier...)
		}

		if err := tx.Where("target_type = ? AND target_id IN ?", models.TargetAnswer, doomed).
			Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", doomed).Delete(&models.Answer{}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": false, "message": "Failed to delete answer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Answer deleted successfully"})
}

// pagination reads page/limit query parameters with defaults.
func pagination(c *gin.Context, defaultPage, defaultLimit int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}
