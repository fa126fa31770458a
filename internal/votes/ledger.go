// Package votes maintains the vote ledger: at most one vote per
// (user, target) pair, with the target's denormalized up/down tallies kept
// consistent with the set of vote rows.
package votes

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/communityforum/backend/internal/models"
)

var (
	// ErrTargetNotFound means the vote's target id has no matching record
	// of the requested type. Storage-level no-ops are surfaced as this,
	// never silently swallowed.
	ErrTargetNotFound = errors.New("vote target not found")

	// ErrInvalidVote means a required field is missing or out of range.
	ErrInvalidVote = errors.New("invalid vote")
)

type Outcome string

const (
	OutcomeAdded    Outcome = "added"
	OutcomeRemoved  Outcome = "removed"
	OutcomeSwitched Outcome = "switched"
)

// Result acknowledges a cast together with the target's fresh totals.
type Result struct {
	Outcome   Outcome `json:"outcome"`
	UpVotes   int     `json:"upVotes"`
	DownVotes int     `json:"downVotes"`
}

type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Cast records one voter's stance on one target.
//
//   - no existing vote: insert a row and increment the matching counter;
//   - existing vote, same direction: toggle-off — the vote is deleted and
//     the counter decremented, so a repeated click undoes the first;
//   - existing vote, opposite direction: switch — the row is mutated in
//     place and both counters adjusted by one, in a single transaction.
//
// Two first-time casts from the same voter can race; the unique index makes
// the loser's insert fail with a duplicate key, which is retried as a
// switch/toggle rather than surfaced. Counter writes are clamped at zero in
// SQL as a safety net against decrements outrunning their paired increments.
func (l *Ledger) Cast(ctx context.Context, userID string, targetID int, targetType models.TargetType, direction models.VoteDirection) (Result, error) {
	if userID == "" || targetID == 0 || !targetType.Valid() || !direction.Valid() {
		return Result{}, ErrInvalidVote
	}

	res, err := l.cast(ctx, userID, targetID, targetType, direction)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a first-vote race; the row exists now, take the
		// existing-vote path.
		res, err = l.cast(ctx, userID, targetID, targetType, direction)
	}
	return res, err
}

func (l *Ledger) cast(ctx context.Context, userID string, targetID int, targetType models.TargetType, direction models.VoteDirection) (Result, error) {
	var res Result
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := targetExists(tx, targetType, targetID); err != nil {
			return err
		}

		var vote models.Vote
		err := tx.Where("user_id = ? AND target_id = ? AND target_type = ?",
			userID, targetID, targetType).First(&vote).Error
		switch {
		case err == nil:
			if err := applyExisting(tx, &vote, direction, &res); err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote = models.Vote{
				UserID:     userID,
				TargetID:   targetID,
				TargetType: targetType,
				Direction:  direction,
			}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
			if err := adjustCounter(tx, targetType, targetID, direction, +1); err != nil {
				return err
			}
			res.Outcome = OutcomeAdded
		default:
			return err
		}

		up, down, err := readTotals(tx, targetType, targetID)
		if err != nil {
			return err
		}
		res.UpVotes, res.DownVotes = up, down
		return nil
	})
	return res, err
}

func applyExisting(tx *gorm.DB, vote *models.Vote, direction models.VoteDirection, res *Result) error {
	if vote.Direction == direction {
		// Toggle-off.
		if err := tx.Delete(vote).Error; err != nil {
			return err
		}
		if err := adjustCounter(tx, vote.TargetType, vote.TargetID, direction, -1); err != nil {
			return err
		}
		res.Outcome = OutcomeRemoved
		return nil
	}

	old := vote.Direction
	vote.Direction = direction
	if err := tx.Save(vote).Error; err != nil {
		return err
	}
	if err := adjustCounter(tx, vote.TargetType, vote.TargetID, old, -1); err != nil {
		return err
	}
	if err := adjustCounter(tx, vote.TargetType, vote.TargetID, direction, +1); err != nil {
		return err
	}
	res.Outcome = OutcomeSwitched
	return nil
}

func targetModel(targetType models.TargetType) any {
	if targetType == models.TargetQuestion {
		return &models.Question{}
	}
	return &models.Answer{}
}

func targetExists(tx *gorm.DB, targetType models.TargetType, targetID int) error {
	var count int64
	if err := tx.Model(targetModel(targetType)).Where("id = ?", targetID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrTargetNotFound
	}
	return nil
}

// adjustCounter applies a clamped read-modify-write to the denormalized
// tally: GREATEST(col + delta, 0), so the counter never goes negative even
// when a decrement is applied without its paired prior increment.
func adjustCounter(tx *gorm.DB, targetType models.TargetType, targetID int, direction models.VoteDirection, delta int) error {
	col := "up_votes"
	if direction == models.VoteDown {
		col = "down_votes"
	}

	result := tx.Model(targetModel(targetType)).
		Where("id = ?", targetID).
		UpdateColumn(col, gorm.Expr(fmt.Sprintf("GREATEST(%s + ?, 0)", col), delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTargetNotFound
	}
	return nil
}

func readTotals(tx *gorm.DB, targetType models.TargetType, targetID int) (int, int, error) {
	var totals struct {
		UpVotes   int
		DownVotes int
	}
	err := tx.Model(targetModel(targetType)).
		Select("up_votes", "down_votes").
		Where("id = ?", targetID).
		Take(&totals).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, ErrTargetNotFound
	}
	return totals.UpVotes, totals.DownVotes, err
}
