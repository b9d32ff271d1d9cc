package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/okian/playlab/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: health score DESC, then playlist id ASC. "less" means ranks
// earlier, so an in-order walk yields the leaderboard from best to worst.
// Node priorities are a hash of the playlist id, which keeps the tree
// balanced in expectation and the shape independent of insertion order.

// record is the per-playlist payload kept beside the tree.
type record struct {
	score       int
	status      string
	rating      float64
	personality string
}

type node struct {
	id    string
	score int
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether (aScore, aID) ranks before (bScore, bID).
func less(aScore int, aID string, bScore int, bID string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, score int) *node {
	if n == nil {
		return &node{id: id, score: score, prio: xxhash.Sum64String(id), size: 1}
	}
	if less(score, id, n.score, n.id) {
		n.left = insert(n.left, id, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, score int) *node {
	if n == nil {
		return nil
	}
	switch {
	case score == n.score && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, score)
		}
	case less(score, id, n.score, n.id):
		n.left = deleteNode(n.left, id, score)
	default:
		n.right = deleteNode(n.right, id, score)
	}
	fix(n)
	return n
}

// countAbove returns how many nodes have a score strictly greater than score.
func countAbove(n *node, score int) int {
	count := 0
	for n != nil {
		if n.score > score {
			count += 1 + nsize(n.left)
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// last returns the lowest ranked node.
func last(n *node) *node {
	for n != nil && n.right != nil {
		n = n.right
	}
	return n
}

// collectTopN appends up to limit nodes in rank order.
func collectTopN(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore is a Store backed by an order-statistics treap.
type TreapStore struct {
	mu         sync.RWMutex
	root       *node
	byID       map[string]record
	maxEntries int
}

// NewTreapStore constructs an empty leaderboard.
func NewTreapStore(opts ...Option) *TreapStore {
	s := &TreapStore{byID: make(map[string]record)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upsert implements Store.Upsert in O(log n) expected time. On a full board
// a new playlist is admitted only if it outranks the current last entry,
// which it then replaces.
func (s *TreapStore) Upsert(_ context.Context, e Entry) error {
	if e.PlaylistID == "" {
		return fmt.Errorf("upsert: empty playlist id: %w", ErrInvalidEntry)
	}

	s.mu.Lock()
	if old, ok := s.byID[e.PlaylistID]; ok {
		s.root = deleteNode(s.root, e.PlaylistID, old.score)
	} else if s.maxEntries > 0 && len(s.byID) >= s.maxEntries {
		tail := last(s.root)
		if tail == nil || !less(e.HealthScore, e.PlaylistID, tail.score, tail.id) {
			s.mu.Unlock()
			return nil
		}
		s.root = deleteNode(s.root, tail.id, tail.score)
		delete(s.byID, tail.id)
	}
	s.byID[e.PlaylistID] = record{
		score:       e.HealthScore,
		status:      e.HealthStatus,
		rating:      e.OverallRating,
		personality: e.Personality,
	}
	s.root = insert(s.root, e.PlaylistID, e.HealthScore)
	count := len(s.byID)
	s.mu.Unlock()

	metrics.RecordLeaderboardUpdate()
	metrics.UpdateLeaderboardSize(count)
	return nil
}

// Rank returns the entry of a playlist in O(log n). Equal scores share a
// rank; the next distinct score ranks after all of them.
func (s *TreapStore) Rank(_ context.Context, playlistID string) (Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[playlistID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, fmt.Errorf("rank %q: %w", playlistID, ErrNotFound)
	}
	return s.entry(playlistID, rec, 1+countAbove(s.root, rec.score)), nil
}

// TopN returns the top n entries.
func (s *TreapStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordLeaderboardQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, fmt.Errorf("top %d: %w", n, ErrInvalidLimit)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &nodes)

	out := make([]Entry, len(nodes))
	for i, nd := range nodes {
		rank := i + 1
		if i > 0 && nd.score == nodes[i-1].score {
			rank = out[i-1].Rank
		}
		out[i] = s.entry(nd.id, s.byID[nd.id], rank)
	}
	return out, nil
}

// Count returns the number of ranked playlists.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *TreapStore) entry(id string, rec record, rank int) Entry {
	return Entry{
		Rank:          rank,
		PlaylistID:    id,
		HealthScore:   rec.score,
		HealthStatus:  rec.status,
		OverallRating: rec.rating,
		Personality:   rec.personality,
	}
}
