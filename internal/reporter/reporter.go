package reporter

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// StatusRef 指向一条已发送的可变状态消息
type StatusRef struct {
	ChannelID string
	MessageID string
}

// MessageSink 是出站消息通道的边界。
// 具体实现负责真正的平台调用；BatchReporter只负责分块与节流。
type MessageSink interface {
	Send(ctx context.Context, channelID, content string) error
	CreateStatus(ctx context.Context, channelID, content string) (StatusRef, error)
	EditStatus(ctx context.Context, ref StatusRef, content string) error
	DeleteStatus(ctx context.Context, ref StatusRef) error
}

// BatchReporter 把任意数量的文本行切成平台允许的大小，按顺序限速发送。
// 分块永远不会拆断单行；超长的单行会被截断到块上限。
type BatchReporter struct {
	sink         MessageSink
	chunkSize    int
	sendInterval time.Duration
}

// NewBatchReporter 构造一个批量汇报器
func NewBatchReporter(sink MessageSink, chunkSize int, sendInterval time.Duration) *BatchReporter {
	if chunkSize <= 0 {
		chunkSize = 2000
	}
	return &BatchReporter{
		sink:         sink,
		chunkSize:    chunkSize,
		sendInterval: sendInterval,
	}
}

// SendLines 把lines分块后按顺序发送到指定频道。
// 任意一块发送失败都会中止后续发送并返回错误，保证消息不乱序。
func (r *BatchReporter) SendLines(ctx context.Context, channelID string, lines []string) error {
	chunks := ChunkLines(lines, r.chunkSize)
	for i, chunk := range chunks {
		if i > 0 && r.sendInterval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.sendInterval):
			}
		}
		if err := r.sink.Send(ctx, channelID, chunk); err != nil {
			return fmt.Errorf("发送第 %d/%d 块消息失败: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

// SendMessage 发送单条消息，作为各个任务的终态汇报出口
func (r *BatchReporter) SendMessage(ctx context.Context, channelID, content string) error {
	return r.sink.Send(ctx, channelID, content)
}

// NewStatusLine 在频道中创建一条可原地编辑的状态消息
func (r *BatchReporter) NewStatusLine(ctx context.Context, channelID, content string) (*StatusLine, error) {
	ref, err := r.sink.CreateStatus(ctx, channelID, content)
	if err != nil {
		return nil, err
	}
	return &StatusLine{sink: r.sink, ref: ref}, nil
}

// ChunkLines 把文本行组装成不超过limit字符的块。
// 行顺序保持不变；块内各行用换行符连接。
func ChunkLines(lines []string, limit int) []string {
	var chunks []string
	var sb strings.Builder
	for _, line := range lines {
		if len(line) > limit {
			line = truncateLine(line, limit)
		}
		// +1 预留连接用的换行符
		if sb.Len() > 0 && sb.Len()+len(line)+1 > limit {
			chunks = append(chunks, sb.String())
			sb.Reset()
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}
	if sb.Len() > 0 {
		chunks = append(chunks, sb.String())
	}
	return chunks
}

// truncateLine 把超长的行截断到不超过limit字节。
// 截断点必须落在rune边界上，否则平台会收到非法的UTF-8。
func truncateLine(line string, limit int) string {
	cut := limit
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut]
}

// StatusLine 封装了一条状态消息的原地更新与清理。
// 扫描循环通过它汇报进度，避免向频道持续追加消息。
type StatusLine struct {
	sink MessageSink
	ref  StatusRef
}

// Edit 原地更新状态消息的内容
func (s *StatusLine) Edit(ctx context.Context, content string) error {
	return s.sink.EditStatus(ctx, s.ref, content)
}

// Delete 删除状态消息
func (s *StatusLine) Delete(ctx context.Context) error {
	return s.sink.DeleteStatus(ctx, s.ref)
}
