package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom_NoTx(t *testing.T) {
	_, ok := From(context.Background())
	assert.False(t, ok)
}

func TestWithTx_NilIsNoop(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithTx(ctx, nil))
}

func TestConn_FallsBackToDB(t *testing.T) {
	db := &sql.DB{}
	assert.Same(t, db, Conn(context.Background(), db).(*sql.DB))
}
