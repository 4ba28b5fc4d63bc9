package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/cinebox/internal/model"
)

// Seat-claim and reference conflicts ride on the duplicate-entry
// detection: only MySQL error 1062 may map to ErrSeatTaken or
// ErrReferenceTaken, and only via the driver's typed error, never
// by message text.
func TestIsDuplicateKey(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'A-7' for key 'uq_claim_seat'"}
	assert.True(t, isDuplicateKey(dup))
	assert.True(t, isDuplicateKey(fmt.Errorf("insert claims: %w", dup)))

	fk := &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}
	assert.False(t, isDuplicateKey(fk))
	assert.False(t, isDuplicateKey(errors.New("Duplicate entry (plain error, wrong type)")))
	assert.False(t, isDuplicateKey(nil))
}

// The conflict sentinels must stay distinct: a handler matching one
// with errors.Is must never be satisfied by another.
func TestConflictSentinelsDistinct(t *testing.T) {
	sentinels := []error{ErrSeatTaken, ErrReferenceTaken, ErrPromoExhausted, ErrInsufficientPoints, ErrEmailExists}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestAllResolved(t *testing.T) {
	got := map[uint64]model.Concession{
		1: {ID: 1, Name: "Popcorn"},
		2: {ID: 2, Name: "Soda"},
	}
	assert.True(t, allResolved([]uint64{1, 2}, got))
	assert.True(t, allResolved([]uint64{2}, got))
	assert.True(t, allResolved(nil, got))
	assert.False(t, allResolved([]uint64{1, 2, 3}, got))
	assert.False(t, allResolved([]uint64{9}, map[uint64]model.Concession{}))
}
