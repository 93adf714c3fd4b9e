package postgresql_test

import (
	"context"
	"testing"

	"showcase/internal/storage/postgresql"

	"github.com/stretchr/testify/assert"
)

func TestNew_InvalidDSN(t *testing.T) {
	_, err := postgresql.New(context.Background(), "postgres://%zz")
	assert.Error(t, err)
}
