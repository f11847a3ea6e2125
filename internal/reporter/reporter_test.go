package reporter

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSink 记录所有出站调用，供断言使用
type fakeSink struct {
	sent    []string
	edits   []string
	deleted int
}

func (f *fakeSink) Send(_ context.Context, _, content string) error {
	f.sent = append(f.sent, content)
	return nil
}

func (f *fakeSink) CreateStatus(_ context.Context, channelID, content string) (StatusRef, error) {
	f.sent = append(f.sent, content)
	return StatusRef{ChannelID: channelID, MessageID: "status-1"}, nil
}

func (f *fakeSink) EditStatus(_ context.Context, _ StatusRef, content string) error {
	f.edits = append(f.edits, content)
	return nil
}

func (f *fakeSink) DeleteStatus(_ context.Context, _ StatusRef) error {
	f.deleted++
	return nil
}

func TestChunkLinesRespectsLimit(t *testing.T) {
	lines := []string{"aaaa", "bbbb", "cccc", "dddd"}
	chunks := ChunkLines(lines, 10)

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 10)
	}
	// 分块不改变行的内容和顺序
	assert.Equal(t, strings.Join(lines, "\n"), strings.Join(chunks, "\n"))
}

func TestChunkLinesKeepsLinesIntact(t *testing.T) {
	lines := []string{"first line", "second line", "third"}
	chunks := ChunkLines(lines, 25)

	for _, chunk := range chunks {
		for _, line := range strings.Split(chunk, "\n") {
			assert.Contains(t, lines, line, "分块不应该拆断任何一行")
		}
	}
}

func TestChunkLinesTruncatesOversizedLine(t *testing.T) {
	chunks := ChunkLines([]string{strings.Repeat("x", 50)}, 10)

	require.Len(t, chunks, 1)
	assert.Equal(t, strings.Repeat("x", 10), chunks[0])
}

func TestChunkLinesTruncatesOnRuneBoundary(t *testing.T) {
	// "游"占3字节，7字节的上限会落在第三个rune中间
	chunks := ChunkLines([]string{strings.Repeat("游", 5)}, 7)

	require.Len(t, chunks, 1)
	assert.True(t, utf8.ValidString(chunks[0]))
	assert.Equal(t, strings.Repeat("游", 2), chunks[0])
}

func TestChunkLinesEmptyInput(t *testing.T) {
	assert.Empty(t, ChunkLines(nil, 10))
}

func TestSendLinesPreservesOrder(t *testing.T) {
	sink := &fakeSink{}
	r := NewBatchReporter(sink, 12, 0)

	lines := []string{"line-1", "line-2", "line-3", "line-4"}
	err := r.SendLines(context.Background(), "chan", lines)
	require.NoError(t, err)

	joined := strings.Join(sink.sent, "\n")
	assert.Equal(t, strings.Join(lines, "\n"), joined)
}

func TestStatusLineEditAndDelete(t *testing.T) {
	sink := &fakeSink{}
	r := NewBatchReporter(sink, 2000, 0)

	status, err := r.NewStatusLine(context.Background(), "chan", "step 0")
	require.NoError(t, err)

	require.NoError(t, status.Edit(context.Background(), "step 1"))
	require.NoError(t, status.Edit(context.Background(), "step 2"))
	require.NoError(t, status.Delete(context.Background()))

	assert.Equal(t, []string{"step 1", "step 2"}, sink.edits)
	assert.Equal(t, 1, sink.deleted)
}
