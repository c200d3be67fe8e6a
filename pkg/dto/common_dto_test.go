package dto_test

import (
	"testing"

	"anoa.com/bragboard/pkg/dto"
	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMeta(t *testing.T) {
	t.Parallel()

	meta := dto.NewPaginationMeta(2, 10, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 2, meta.CurrentPage)
	assert.EqualValues(t, 25, meta.TotalItems)

	exact := dto.NewPaginationMeta(1, 5, 10)
	assert.Equal(t, 2, exact.TotalPages)

	unpaged := dto.NewPaginationMeta(0, 0, 7)
	assert.Equal(t, 1, unpaged.TotalPages)
	assert.Equal(t, 7, unpaged.Limit)
}
