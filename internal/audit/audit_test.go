package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/wes-io-canvas/pkg/log"
)

func TestLogCount(t *testing.T) {
	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), zerolog.New(&buf))

	LogCount(ctx, ActionDeleteElements, "42", 3, "elements deleted")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, log.LogTypeAudit, entry[log.FieldLogType])
	assert.Equal(t, ActionDeleteElements, entry[FieldAction])
	assert.Equal(t, "42", entry[log.FieldBoardID])
	assert.Equal(t, float64(3), entry[FieldCount])
	assert.Equal(t, "elements deleted", entry["message"])
}
