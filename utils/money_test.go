package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCedis(t *testing.T) {
	assert.Equal(t, "GHS 0.00", Cedis(0))
	assert.Equal(t, "GHS 0.05", Cedis(5))
	assert.Equal(t, "GHS 11.00", Cedis(1100))
	assert.Equal(t, "GHS 1234.56", Cedis(123456))
	assert.Equal(t, "-GHS 11.00", Cedis(-1100))
}

func TestWaybillNumber(t *testing.T) {
	a := WaybillNumber()
	b := WaybillNumber()
	assert.True(t, strings.HasPrefix(a, "WB-"))
	assert.NotEqual(t, a, b)
}
