package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigAddress(t *testing.T) {
	assert.Equal(t, ":9000", Config{Port: "9000"}.Address())
	assert.Equal(t, ":8080", Config{}.Address())
}
