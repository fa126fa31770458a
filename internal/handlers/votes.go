package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/communityforum/backend/internal/models"
	"github.com/communityforum/backend/internal/votes"
)

type VoteHandler struct {
	ledger *votes.Ledger
}

func NewVoteHandler(ledger *votes.Ledger) *VoteHandler {
	return &VoteHandler{ledger: ledger}
}

var outcomeMessages = map[votes.Outcome]string{
	votes.OutcomeAdded:    "Vote added",
	votes.OutcomeRemoved:  "Vote removed",
	votes.OutcomeSwitched: "Vote switched",
}

// CastVote records, toggles or switches a vote. Rate limiting happens in
// middleware before this runs; voting emits no notification.
func (h *VoteHandler) CastVote(c *gin.Context) {
	var input models.CastVoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
		return
	}

	result, err := h.ledger.Cast(c.Request.Context(), input.UserID, input.TargetID, input.TargetType, input.Direction)
	switch {
	case errors.Is(err, votes.ErrInvalidVote):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})
	case errors.Is(err, votes.ErrTargetNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Target not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	default:
		c.JSON(http.StatusOK, gin.H{
			"message":   outcomeMessages[result.Outcome],
			"upVotes":   result.UpVotes,
			"downVotes": result.DownVotes,
		})
	}
}
