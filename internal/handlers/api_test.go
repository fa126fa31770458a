package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/communityforum/backend/internal/handlers"
	"github.com/communityforum/backend/internal/middleware"
	"github.com/communityforum/backend/internal/models"
	"github.com/communityforum/backend/internal/notify"
	"github.com/communityforum/backend/internal/testutil"
)

var (
	u1 = models.UserSnapshot{UID: "u1", UserName: "Priya", Email: "priya@example.com"}
	u2 = models.UserSnapshot{UID: "u2", UserName: "Marco", Email: "marco@example.com"}
)

func newTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	notifier := notify.NewNotifier(db, nil, nil)
	handler := handlers.NewHandler(db, notifier)

	r := gin.New()
	r.Use(middleware.Identity())
	api := r.Group("/api")
	{
		api.POST("/questions", handler.Question.CreateQuestion)
		api.GET("/questions", handler.Question.GetQuestions)
		api.GET("/questions/search", handler.Question.SearchQuestions)
		api.DELETE("/questions/:id", handler.Question.DeleteQuestion)

		api.POST("/answers", handler.Answer.CreateAnswer)
		api.GET("/answers/:questionId", handler.Answer.GetAnswers)
		api.DELETE("/answers/:id", handler.Answer.DeleteAnswer)

		api.POST("/votes", middleware.VoteRateLimit(2, 10*time.Second), handler.Vote.CastVote)

		api.POST("/articles", handler.Article.CreateArticle)
		api.GET("/articles", handler.Article.GetArticles)
		api.DELETE("/articles/:id", handler.Article.DeleteArticle)

		api.POST("/notifications", handler.Notification.CreateNotification)
		api.GET("/notifications", handler.Notification.GetNotifications)
		api.PUT("/notifications/:id/read", handler.Notification.MarkRead)
		api.PUT("/notifications/mark-read", handler.Notification.MarkAllRead)
	}
	return r
}

func perform(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestForumEndToEnd(t *testing.T) {
	db := testutil.OpenTestDB(t)
	router := newTestRouter(db)

	// U1 posts a question.
	rec := perform(t, router, http.MethodPost, "/api/questions", gin.H{
		"questionName": "What is X?",
		"category":     "Science",
		"user":         u1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	questionID := int(decode(t, rec)["data"].(map[string]any)["id"].(float64))

	// Listing by category returns it with an empty allAnswers join.
	rec = perform(t, router, http.MethodGet, "/api/questions?category=Science", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "What is X?", listed[0]["questionName"])
	assert.Empty(t, listed[0]["allAnswers"])

	// A category with no questions is an empty array, not null.
	rec = perform(t, router, http.MethodGet, "/api/questions?category=History", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	// U2 answers.
	rec = perform(t, router, http.MethodPost, "/api/answers", gin.H{
		"answer":     "<p>X is a placeholder.</p>",
		"questionId": questionID,
		"user":       u2,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	answer1ID := int(decode(t, rec)["data"].(map[string]any)["id"].(float64))

	// U1 replies to the answer.
	rec = perform(t, router, http.MethodPost, "/api/answers", gin.H{
		"answer":         "<b>Could you expand?</b>",
		"questionId":     questionID,
		"parentAnswerId": answer1ID,
		"user":           u1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// The answers endpoint returns the nested forest.
	rec = perform(t, router, http.MethodGet, "/api/answers/"+strconv.Itoa(questionID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	forest := decode(t, rec)["data"].([]any)
	require.Len(t, forest, 1)
	root := forest[0].(map[string]any)
	assert.Equal(t, float64(answer1ID), root["id"])
	replies := root["replies"].([]any)
	require.Len(t, replies, 1)
	assert.Empty(t, replies[0].(map[string]any)["replies"])

	// U2 upvotes the question.
	rec = perform(t, router, http.MethodPost, "/api/votes", gin.H{
		"userId": u2.UID, "targetId": questionID, "targetType": "question", "direction": "up",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["upVotes"])

	// Upvoting again toggles it off.
	rec = perform(t, router, http.MethodPost, "/api/votes", gin.H{
		"userId": u2.UID, "targetId": questionID, "targetType": "question", "direction": "up",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Vote removed", body["message"])
	assert.EqualValues(t, 0, body["upVotes"])

	// A third cast inside the window trips the limiter.
	rec = perform(t, router, http.MethodPost, "/api/votes", gin.H{
		"userId": u2.UID, "targetId": questionID, "targetType": "question", "direction": "up",
	})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A stranger cannot delete U1's question.
	rec = perform(t, router, http.MethodDelete, "/api/questions/"+strconv.Itoa(questionID), gin.H{"user": u2})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The owner can, and the cascade removes the answers.
	rec = perform(t, router, http.MethodDelete, "/api/questions/"+strconv.Itoa(questionID), gin.H{"user": u1})
	require.Equal(t, http.StatusOK, rec.Code)

	var remaining int64
	require.NoError(t, db.Model(&models.Answer{}).Where("question_id = ?", questionID).Count(&remaining).Error)
	assert.EqualValues(t, 0, remaining)

	// Every trigger persisted a notification: question, answer, reply,
	// question-deleted. Messages embed stripped text.
	rec = perform(t, router, http.MethodGet, "/api/notifications", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notifBody := decode(t, rec)
	notifications := notifBody["notifications"].([]any)
	require.Len(t, notifications, 4)
	assert.EqualValues(t, 4, notifBody["unreadCount"])

	messages := make([]string, 0, len(notifications))
	for _, n := range notifications {
		messages = append(messages, n.(map[string]any)["message"].(string))
	}
	assert.Contains(t, messages, `Priya asked a new question: "What is X?"`)
	assert.Contains(t, messages, `Marco answered: "X is a placeholder."`)
	assert.Contains(t, messages, `Priya replied: "Could you expand?"`)
	assert.Contains(t, messages, `Question deleted: "What is X?"`)
}

func TestAnswerValidationAndMissingQuestion(t *testing.T) {
	db := testutil.OpenTestDB(t)
	router := newTestRouter(db)

	// Missing answer text.
	rec := perform(t, router, http.MethodPost, "/api/answers", gin.H{"questionId": 1, "user": u1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Missing user.
	rec = perform(t, router, http.MethodPost, "/api/answers", gin.H{"answer": "text", "questionId": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown question.
	rec = perform(t, router, http.MethodPost, "/api/answers", gin.H{
		"answer": "text", "questionId": 999, "user": u1,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchQuestions(t *testing.T) {
	db := testutil.OpenTestDB(t)
	router := newTestRouter(db)

	rec := perform(t, router, http.MethodPost, "/api/questions", gin.H{
		"questionName": "How does Raft handle leader election?",
		"category":     "Distributed Systems",
		"user":         u1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Case-insensitive substring match.
	rec = perform(t, router, http.MethodGet, "/api/questions/search?query=raft", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode(t, rec)["data"].([]any)
	require.Len(t, found, 1)

	rec = perform(t, router, http.MethodGet, "/api/questions/search?query=paxos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode(t, rec)["data"])

	// Missing query parameter.
	rec = perform(t, router, http.MethodGet, "/api/questions/search", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArticlesLifecycle(t *testing.T) {
	db := testutil.OpenTestDB(t)
	router := newTestRouter(db)

	for i := 0; i < 7; i++ {
		rec := perform(t, router, http.MethodPost, "/api/articles", gin.H{
			"title":   "Article " + strconv.Itoa(i),
			"content": "<p>Body " + strconv.Itoa(i) + "</p>",
			"user":    u1,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	// Default page size is 5.
	rec := perform(t, router, http.MethodGet, "/api/articles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Len(t, body["articles"], 5)
	assert.EqualValues(t, 2, body["totalPages"])
	assert.EqualValues(t, 1, body["currentPage"])

	rec = perform(t, router, http.MethodGet, "/api/articles?page=2&limit=5", nil)
	body = decode(t, rec)
	assert.Len(t, body["articles"], 2)

	// Latest first.
	first := body["articles"].([]any)[0].(map[string]any)
	articleID := int(first["id"].(float64))

	// Owner-only delete.
	rec = perform(t, router, http.MethodDelete, "/api/articles/"+strconv.Itoa(articleID), gin.H{"user": u2})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = perform(t, router, http.MethodDelete, "/api/articles/"+strconv.Itoa(articleID), gin.H{"user": u1})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotificationReadState(t *testing.T) {
	db := testutil.OpenTestDB(t)
	router := newTestRouter(db)

	rec := perform(t, router, http.MethodPost, "/api/notifications", gin.H{
		"type": "system", "message": "maintenance tonight",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := int(decode(t, rec)["id"].(float64))

	rec = perform(t, router, http.MethodPost, "/api/notifications", gin.H{
		"type": "system", "message": "maintenance done",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// Mark one read; doing it twice is a no-op.
	for i := 0; i < 2; i++ {
		rec = perform(t, router, http.MethodPut, "/api/notifications/"+strconv.Itoa(id)+"/read", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decode(t, rec)["isRead"])
	}

	rec = perform(t, router, http.MethodGet, "/api/notifications", nil)
	assert.EqualValues(t, 1, decode(t, rec)["unreadCount"])

	// Unknown id is a 404.
	rec = perform(t, router, http.MethodPut, "/api/notifications/99999/read", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Bulk mark-read clears the rest.
	rec = perform(t, router, http.MethodPut, "/api/notifications/mark-read", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = perform(t, router, http.MethodGet, "/api/notifications", nil)
	assert.EqualValues(t, 0, decode(t, rec)["unreadCount"])
}
