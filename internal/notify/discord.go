package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/realmwatch/salesbot/internal/market"
	"github.com/realmwatch/salesbot/internal/sales"
	"go.uber.org/zap"
)

// embedSender is the slice of *discordgo.Session the notifier needs.
type embedSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier renders one enriched sale as an embed and sends it to the
// configured channel.
type DiscordNotifier struct {
	session   embedSender
	channelID string
}

func NewDiscordNotifier(session embedSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifySale(ctx context.Context, sale sales.EnrichedSale) error {
	embed := buildSaleEmbed(sale)
	if _, err := n.session.ChannelMessageSendEmbed(n.channelID, embed); err != nil {
		return fmt.Errorf("failed to send sale embed - %w", err)
	}
	zap.L().Info("Notified sale",
		zap.String("collection", sale.Collection),
		zap.String("txHash", sale.TxHash),
		zap.Int64("quantity", sale.Quantity))
	return nil
}

// Announce posts a plain-text message, used for the startup confirmation.
func (n *DiscordNotifier) Announce(message string) error {
	_, err := n.session.ChannelMessageSend(n.channelID, message)
	return err
}

func buildSaleEmbed(sale sales.EnrichedSale) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("New sale in %s", sale.Collection),
		Description: fmt.Sprintf("**%s** (ID: `%s`)", sale.TokenName, sale.TokenID),
		URL:         sale.TxURL,
		Footer: &discordgo.MessageEmbedFooter{
			Text: footerText(sale.Market),
		},
	}
	if sale.Image != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: sale.Image}
	}

	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "Price",
		Value:  sale.TotalPrice,
		Inline: true,
	})
	if sale.Quantity > 1 {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{
				Name:   "Quantity",
				Value:  fmt.Sprintf("%d", sale.Quantity),
				Inline: true,
			},
			&discordgo.MessageEmbedField{
				Name:   "Unit price",
				Value:  sale.UnitPrice,
				Inline: true,
			})
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{
			Name:  "Buyer",
			Value: fmt.Sprintf("`%s`", sale.Buyer),
		},
		&discordgo.MessageEmbedField{
			Name:  "Seller",
			Value: fmt.Sprintf("`%s`", sale.Seller),
		})
	return embed
}

func footerText(kind market.Kind) string {
	if kind == market.KindOpenSea {
		return "OpenSea • sales notifier"
	}
	return "Ronin • sales notifier"
}
