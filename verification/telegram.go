package verification

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

// ChannelVerifier confirms that a Telegram user actually joined a channel.
// TG_JOIN credit is gated on this signal, never on the client's claim.
type ChannelVerifier interface {
	IsMember(ctx context.Context, channelLink string, telegramID int64) (bool, error)
}

// BotVerifier checks membership through the bot API. The bot must be an
// admin of every configured channel for getChatMember to work.
type BotVerifier struct {
	bot *bot.Bot
}

func NewBotVerifier(token string) (*BotVerifier, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &BotVerifier{bot: b}, nil
}

func (v *BotVerifier) IsMember(ctx context.Context, channelLink string, telegramID int64) (bool, error) {
	member, err := v.bot.GetChatMember(ctx, &bot.GetChatMemberParams{
		ChatID: ChatIDFromLink(channelLink),
		UserID: telegramID,
	})
	if err != nil {
		return false, fmt.Errorf("getChatMember: %w", err)
	}

	switch member.Type {
	case tgmodels.ChatMemberTypeOwner, tgmodels.ChatMemberTypeAdministrator, tgmodels.ChatMemberTypeMember:
		return true, nil
	case tgmodels.ChatMemberTypeRestricted:
		return member.Restricted != nil && member.Restricted.IsMember, nil
	}
	return false, nil
}

// ChatIDFromLink turns a t.me channel link into the @username chat id the
// bot API expects.
func ChatIDFromLink(link string) string {
	trimmed := strings.TrimRight(link, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimPrefix(trimmed, "@")
	return "@" + trimmed
}
