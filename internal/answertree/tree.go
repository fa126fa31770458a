// Package answertree reconstructs the nested-reply forest of a question from
// its flat list of answers.
package answertree

import (
	"sort"

	"github.com/communityforum/backend/internal/models"
)

// Node is one answer with its direct replies populated.
type Node struct {
	models.Answer
	Replies []*Node `json:"replies"`
}

// Build turns a flat answer list into a forest rooted at top-level answers.
//
// Rules:
//   - an answer with a nil ParentAnswerID, or one whose parent is not in the
//     supplied set, is a root (orphans are promoted, never dropped);
//   - ordering is creation time (oldest first), ties broken by id, at every
//     level of the forest;
//   - parent-pointer cycles in corrupted data are broken: any node
//     unreachable from a root is promoted to a root and the back edge into
//     it is pruned, so the result is always a finite forest.
//
// Build is a pure function: it never mutates its input and the same input
// always yields a structurally equal forest.
func Build(answers []models.Answer) []*Node {
	if len(answers) == 0 {
		return []*Node{}
	}

	ordered := make([]models.Answer, len(answers))
	copy(ordered, answers)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	nodes := make(map[int]*Node, len(ordered))
	for i := range ordered {
		nodes[ordered[i].ID] = &Node{Answer: ordered[i], Replies: []*Node{}}
	}

	var roots []*Node
	for i := range ordered {
		n := nodes[ordered[i].ID]
		pid := n.ParentAnswerID
		if pid == nil || nodes[*pid] == nil || *pid == n.ID {
			roots = append(roots, n)
			continue
		}
		parent := nodes[*pid]
		parent.Replies = append(parent.Replies, n)
	}

	// A cycle among non-root answers leaves every node in it unreachable
	// from the roots. Promote one representative per cycle and prune edges
	// back into already-visited nodes.
	visited := make(map[int]bool, len(nodes))
	for _, r := range roots {
		prune(r, visited)
	}
	for i := range ordered {
		n := nodes[ordered[i].ID]
		if !visited[n.ID] {
			roots = append(roots, n)
			prune(n, visited)
		}
	}

	if roots == nil {
		roots = []*Node{}
	}
	// Promotion order can differ from creation order; re-sort so the root
	// level obeys the same ordering as every other level.
	sort.SliceStable(roots, func(i, j int) bool {
		if !roots[i].CreatedAt.Equal(roots[j].CreatedAt) {
			return roots[i].CreatedAt.Before(roots[j].CreatedAt)
		}
		return roots[i].ID < roots[j].ID
	})
	return roots
}

// prune walks the subtree, marking nodes and dropping replies that were
// already reached elsewhere (back edges of a cycle).
func prune(n *Node, visited map[int]bool) {
	visited[n.ID] = true
	kept := n.Replies[:0]
	for _, child := range n.Replies {
		if visited[child.ID] {
			continue
		}
		kept = append(kept, child)
		prune(child, visited)
	}
	n.Replies = kept
}
