package reporter

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiscordSink 是MessageSink的Discord实现
type DiscordSink struct {
	session *discordgo.Session
}

// NewDiscordSink 用机器人令牌构造一个DiscordSink
func NewDiscordSink(botToken string) (*DiscordSink, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("无法创建Discord会话: %w", err)
	}
	return &DiscordSink{session: session}, nil
}

// Send 向频道发送一条消息
func (s *DiscordSink) Send(ctx context.Context, channelID, content string) error {
	_, err := s.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	return err
}

// CreateStatus 发送一条消息并返回其引用，供后续原地编辑
func (s *DiscordSink) CreateStatus(ctx context.Context, channelID, content string) (StatusRef, error) {
	msg, err := s.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return StatusRef{}, err
	}
	return StatusRef{ChannelID: channelID, MessageID: msg.ID}, nil
}

// EditStatus 原地编辑一条已发送的消息
func (s *DiscordSink) EditStatus(ctx context.Context, ref StatusRef, content string) error {
	_, err := s.session.ChannelMessageEdit(ref.ChannelID, ref.MessageID, content, discordgo.WithContext(ctx))
	return err
}

// DeleteStatus 删除一条已发送的消息
func (s *DiscordSink) DeleteStatus(ctx context.Context, ref StatusRef) error {
	return s.session.ChannelMessageDelete(ref.ChannelID, ref.MessageID, discordgo.WithContext(ctx))
}
