package tree

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidItemCount = errors.New("tree: item count must be positive")
	ErrQuotaExceeded    = errors.New("tree: item count exceeds allowed quota")
	ErrEmptyPolicy      = errors.New("tree: depth policy has no allowed depths")

	ErrInvalidAddress      = errors.New("tree: invalid address")
	ErrInvalidAuthority    = errors.New("tree: invalid authority secret")
	ErrInvalidCollectionID = errors.New("tree: invalid collectionId")
	ErrInvalidDepth        = errors.New("tree: invalid depth")
	ErrInvalidCreatedBy    = errors.New("tree: invalid createdBy")
	ErrNotFound            = errors.New("tree: not found")
)

// DepthPolicy is the injected sizing policy for concurrent merkle trees.
// The allowed depth values come from the valid (depth, buffer) pairs the
// compression program accepts; they are configuration, not code.
type DepthPolicy struct {
	AllowedDepths []uint32
	MaxBufferSize uint32
	CanopyOffset  uint32
	// MaxItems is the per-request quota. Requests above it are rejected
	// before any sizing happens.
	MaxItems uint64
}

// DefaultPolicy mirrors the production policy: depths valid for
// maxBufferSize=8 plus the larger standard pairs, canopy pinned 5 levels
// below the depth, and a 2^20 item ceiling per batch.
func DefaultPolicy() DepthPolicy {
	return DepthPolicy{
		AllowedDepths: []uint32{3, 5, 14, 15, 16, 17, 18, 19, 20, 24, 26, 30},
		MaxBufferSize: 8,
		CanopyOffset:  5,
		MaxItems:      1 << 20,
	}
}

// PlanDepth maps a requested item count to a depth from the allowed set.
// It takes ceil(log2(itemCount)) and picks the allowed depth with minimum
// absolute distance; on a distance tie the first value in the set wins.
func PlanDepth(itemCount uint64, policy DepthPolicy) (uint32, error) {
	if itemCount == 0 {
		return 0, ErrInvalidItemCount
	}
	if len(policy.AllowedDepths) == 0 {
		return 0, ErrEmptyPolicy
	}
	if policy.MaxItems > 0 && itemCount > policy.MaxItems {
		return 0, ErrQuotaExceeded
	}

	exponent := uint32(math.Ceil(math.Log2(float64(itemCount))))

	best := policy.AllowedDepths[0]
	bestDist := absDiff(best, exponent)
	for _, d := range policy.AllowedDepths[1:] {
		if dist := absDiff(d, exponent); dist < bestDist {
			best = d
			bestDist = dist
		}
	}
	return best, nil
}

// CanopyDepth derives the cached-layer count for a depth. The absolute
// value keeps small trees (depth < offset) from going negative.
func CanopyDepth(depth uint32, policy DepthPolicy) uint32 {
	return absDiff(depth, policy.CanopyOffset)
}

// Sizing is the immutable sizing decision for one batch request.
type Sizing struct {
	Depth       uint32
	BufferSize  uint32
	CanopyDepth uint32
}

// PlanSizing runs PlanDepth and derives the full sizing triple.
func PlanSizing(itemCount uint64, policy DepthPolicy) (Sizing, error) {
	depth, err := PlanDepth(itemCount, policy)
	if err != nil {
		return Sizing{}, err
	}
	return Sizing{
		Depth:       depth,
		BufferSize:  policy.MaxBufferSize,
		CanopyDepth: CanopyDepth(depth, policy),
	}, nil
}

// Concurrent merkle tree account layout (mirrors the on-chain sizing):
//   header:      version/type bytes + {maxBufferSize, maxDepth, authority,
//                creationSlot, padding}
//   tree:        sequence/active/bufferSize counters, changelog ring of
//                maxBufferSize entries, rightmost path
//   canopy:      2^(canopy+1)-2 cached nodes of 32 bytes
const (
	headerSize   = 2 + 54
	counterSize  = 3 * 8
	nodeSize     = 32
	pathMetaSize = 8 // leaf index + padding per changelog/path entry
)

// AccountSize returns the byte size the tree account must be allocated
// with for the given sizing parameters.
func AccountSize(depth, bufferSize, canopyDepth uint32) uint64 {
	entry := uint64(nodeSize)*uint64(depth) + nodeSize + pathMetaSize
	size := uint64(headerSize) + counterSize
	size += uint64(bufferSize) * entry // changelog ring
	size += entry                      // rightmost path
	if canopyDepth > 0 {
		size += (uint64(1)<<(canopyDepth+1) - 2) * nodeSize
	}
	return size
}

// Capacity returns how many leaves a tree of the given depth holds.
func Capacity(depth uint32) uint64 {
	return uint64(1) << depth
}

// Tree is the application-side record of an allocated on-chain merkle
// tree account. AuthoritySecret holds the base64 keypair of the tree
// account; it must never be logged.
type Tree struct {
	Address         string
	AuthoritySecret string
	CollectionID    string
	Depth           uint32
	BufferSize      uint32
	CanopyDepth     uint32
	CostLamports    uint64
	CreatedBy       string
	CreatedAt       time.Time
}

// New validates and constructs a Tree record.
func New(
	address, authoritySecret, collectionID string,
	sizing Sizing,
	costLamports uint64,
	createdBy string,
	createdAt time.Time,
) (Tree, error) {
	t := Tree{
		Address:         strings.TrimSpace(address),
		AuthoritySecret: strings.TrimSpace(authoritySecret),
		CollectionID:    strings.TrimSpace(collectionID),
		Depth:           sizing.Depth,
		BufferSize:      sizing.BufferSize,
		CanopyDepth:     sizing.CanopyDepth,
		CostLamports:    costLamports,
		CreatedBy:       strings.TrimSpace(createdBy),
		CreatedAt:       createdAt.UTC(),
	}
	if err := t.validate(); err != nil {
		return Tree{}, err
	}
	return t, nil
}

func (t Tree) validate() error {
	if t.Address == "" {
		return ErrInvalidAddress
	}
	if t.AuthoritySecret == "" {
		return ErrInvalidAuthority
	}
	if t.CollectionID == "" {
		return ErrInvalidCollectionID
	}
	if t.Depth == 0 || t.BufferSize == 0 {
		return ErrInvalidDepth
	}
	if t.CreatedBy == "" {
		return ErrInvalidCreatedBy
	}
	return nil
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// TreesTableDDL defines the SQL for the trees table migration.
// authority_secret is stored as an opaque blob column; access control is
// enforced at the database role level.
const TreesTableDDL = `
CREATE TABLE IF NOT EXISTS trees (
  address TEXT PRIMARY KEY,
  authority_secret TEXT NOT NULL,
  collection_id UUID NOT NULL REFERENCES collections(id) ON DELETE RESTRICT,
  depth INTEGER NOT NULL CHECK (depth > 0),
  buffer_size INTEGER NOT NULL CHECK (buffer_size > 0),
  canopy_depth INTEGER NOT NULL CHECK (canopy_depth >= 0),
  cost_lamports BIGINT NOT NULL CHECK (cost_lamports >= 0),
  created_by TEXT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL,

  CONSTRAINT chk_trees_address_non_empty CHECK (char_length(trim(address)) > 0)
);

CREATE INDEX IF NOT EXISTS idx_trees_collection_id ON trees(collection_id);
CREATE INDEX IF NOT EXISTS idx_trees_created_at    ON trees(created_at);
`
