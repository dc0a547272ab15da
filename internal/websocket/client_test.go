package websocket

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBatchSingleFrame(t *testing.T) {
	var buf bytes.Buffer
	queue := make(chan []byte, 4)

	err := writeBatch(&buf, []byte(`{"type":"message","data":{"content":"hi"}}`), queue)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"message","data":{"content":"hi"}}`, buf.String())
}

func TestWriteBatchSeparatesQueuedFrames(t *testing.T) {
	frames := [][]byte{
		[]byte(`{"type":"message","data":{"content":"one"}}`),
		[]byte(`{"type":"message","data":{"content":"two"}}`),
		[]byte(`{"type":"message","data":{"content":"three"}}`),
	}

	queue := make(chan []byte, 4)
	queue <- frames[1]
	queue <- frames[2]

	var buf bytes.Buffer
	require.NoError(t, writeBatch(&buf, frames[0], queue))
	assert.Empty(t, queue, "queued frames must be drained")

	parts := bytes.Split(buf.Bytes(), []byte{'\n'})
	require.Len(t, parts, len(frames))
	for i, part := range parts {
		assert.Equal(t, frames[i], part)
		assert.True(t, json.Valid(part), "each line must be a standalone JSON document")
	}
}
