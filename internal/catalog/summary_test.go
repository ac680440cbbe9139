package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/tuxedoshop/internal/domain/dbtest"
)

func TestSummary(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db)

	empty, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{}, *empty)

	seedProduct(t, db, "A", 0)
	seedProduct(t, db, "B", 2)
	seedProduct(t, db, "C", 7)

	s, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, s.Products)
	assert.Equal(t, 2, s.InStock)
	assert.Equal(t, 1, s.OutOfStock)
	assert.Equal(t, 9, s.Units)
	assert.Equal(t, 3.0, s.MeanStock)
	assert.Equal(t, 2.0, s.MedianStock)
	assert.Equal(t, 599.99, s.MeanPrice)
	assert.Equal(t, 149.99, s.MeanRentPrice)
}
