package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderEvaluatorSingleField(t *testing.T) {
	ev, err := newOrderEvaluator(orderExpression([]string{"accountNumber"}))
	require.NoError(t, err)

	c, err := ev.compare(map[string]any{"accountNumber": 1}, map[string]any{"accountNumber": 2})
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = ev.compare(map[string]any{"accountNumber": 2}, map[string]any{"accountNumber": 2})
	require.NoError(t, err)
	assert.Equal(t, 0, c)
}

func TestOrderEvaluatorFallsThroughOnTie(t *testing.T) {
	ev, err := newOrderEvaluator(orderExpression([]string{"country", "accountNumber"}))
	require.NoError(t, err)

	c, err := ev.compare(
		map[string]any{"country": "USA", "accountNumber": 5},
		map[string]any{"country": "USA", "accountNumber": 1},
	)
	require.NoError(t, err)
	assert.Equal(t, 1, c)
}

func TestOrderExpressionBuildsChain(t *testing.T) {
	expr := orderExpression([]string{"a", "b"})
	assert.Contains(t, expr, "mapX['a']")
	assert.Contains(t, expr, "mapX['b']")
}
