package httperr

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsBusiness_Wrapped(t *testing.T) {
	err := fmt.Errorf("reserve: %w", ErrBusiness("slot_exhausted"))

	assert.True(t, IsBusiness(err, "slot_exhausted"))
	assert.False(t, IsBusiness(err, "catalog_mismatch"))
	assert.Equal(t, "slot_exhausted", Code(err))
	assert.Equal(t, "", Code(fmt.Errorf("boom")))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(fmt.Errorf("boom")))
}
