package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/restreamkit/volunteer-system/services"
	"golang.org/x/sync/errgroup"
)

// DiscordNotifier доставляет уведомления через Discord-бота. Все методы
// best-effort: неудачи логируются и никогда не возвращаются вызывающему.
type DiscordNotifier struct {
	session           *discordgo.Session
	guildID           string
	announceChannelID string
	logger            *slog.Logger
}

func NewDiscordNotifier(token, guildID, announceChannelID string, logger *slog.Logger) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open discord session: %w", err)
	}
	return &DiscordNotifier{
		session:           session,
		guildID:           guildID,
		announceChannelID: announceChannelID,
		logger:            logger,
	}, nil
}

func (n *DiscordNotifier) Close() error {
	return n.session.Close()
}

func (n *DiscordNotifier) RoleRequestDecided(ctx context.Context, note services.RoleRequestNote) {
	n.directMessage(ctx, note.UserDiscordID, FormatRoleRequestMessage(note))
}

func (n *DiscordNotifier) SignupDecided(ctx context.Context, note services.SignupNote) {
	n.directMessage(ctx, note.UserDiscordID, FormatSignupMessage(note))
}

// AnnounceRoster публикует состав в канале анонсов и параллельно рассылает
// личные сообщения подтверждённым волонтёрам.
func (n *DiscordNotifier) AnnounceRoster(ctx context.Context, note services.RosterNote) {
	message := FormatRosterMessage(note)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := n.session.ChannelMessageSend(n.announceChannelID, message)
		return err
	})
	for _, slot := range note.Slots {
		slot := slot
		g.Go(func() error {
			n.directMessage(ctx, slot.UserDiscordID,
				fmt.Sprintf("The roster for %s is set:\n%s", note.RaceDescription, message))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		n.logger.WarnContext(ctx, "failed to announce roster",
			slog.String("race", note.RaceDescription), slog.Any("error", err))
	}
}

func (n *DiscordNotifier) AssignChatRole(ctx context.Context, userDiscordID, roleID int64) {
	err := n.session.GuildMemberRoleAdd(n.guildID, formatID(userDiscordID), formatID(roleID))
	if err != nil {
		n.logger.WarnContext(ctx, "failed to assign discord role",
			slog.Int64("user", userDiscordID), slog.Int64("role", roleID), slog.Any("error", err))
	}
}

func (n *DiscordNotifier) RemoveChatRole(ctx context.Context, userDiscordID, roleID int64) {
	err := n.session.GuildMemberRoleRemove(n.guildID, formatID(userDiscordID), formatID(roleID))
	if err != nil {
		n.logger.WarnContext(ctx, "failed to remove discord role",
			slog.Int64("user", userDiscordID), slog.Int64("role", roleID), slog.Any("error", err))
	}
}

func (n *DiscordNotifier) directMessage(ctx context.Context, userDiscordID *int64, message string) {
	if userDiscordID == nil {
		return
	}
	channel, err := n.session.UserChannelCreate(formatID(*userDiscordID))
	if err != nil {
		n.logger.WarnContext(ctx, "failed to open direct message channel",
			slog.Int64("user", *userDiscordID), slog.Any("error", err))
		return
	}
	if _, err = n.session.ChannelMessageSend(channel.ID, message); err != nil {
		n.logger.WarnContext(ctx, "failed to send direct message",
			slog.Int64("user", *userDiscordID), slog.Any("error", err))
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
