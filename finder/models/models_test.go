package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsReserved(t *testing.T) {
	for _, k := range []string{"count", "search", "stopNestedFilter", "offset", "max", "limit"} {
		assert.True(t, IsReserved(k), k)
	}
	assert.False(t, IsReserved("status"))
	assert.False(t, IsReserved("Count"))
}
