package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect_EmptyURL(t *testing.T) {
	db, err := Connect("")
	assert.Error(t, err)
	assert.Nil(t, db)
}
