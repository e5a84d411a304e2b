package discord

import (
	"fmt"
	"strconv"
	"time"
	"touroku/domain/registration"

	"github.com/bwmarrin/discordgo"
)

const (
	colorRed   = 0xe74c3c
	colorGreen = 0x2ecc71
	colorBlue  = 0x3498db

	thumbnailIneligible = "https://i.imgur.com/u6oDUNv.png"
	thumbnailEligible   = "https://i.imgur.com/qLnl40c.png"

	footerText = "Powered By NickyBoy"
	footerIcon = "https://i.imgur.com/QfmDKS6.png"

	displayLayout = "2006-01-02 15:04"
)

// RenderCard turns a registration response into the status embed.
// Dates are shown in loc, UTC when loc is nil.
func RenderCard(resp registration.Response, loc *time.Location) *discordgo.MessageEmbed {
	if loc == nil {
		loc = time.UTC
	}
	embed := &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("🔍 %s の情報", resp.CSN),
		Footer: &discordgo.MessageEmbedFooter{Text: footerText, IconURL: footerIcon},
	}
	registeredAt := resp.RegisteredAt.In(loc).Format(displayLayout)
	count := strconv.FormatInt(resp.Count, 10)

	switch resp.Status {
	case registration.Created:
		embed.Description = "新しいデータを登録しました"
		embed.Color = colorBlue
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "📅登録された日付と時間", Value: registeredAt},
			{Name: "🩹包帯の個数", Value: count},
		}
		return embed
	case registration.Ineligible:
		embed.Description = "この市民には包帯を渡せません"
		embed.Color = colorRed
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: thumbnailIneligible}
	default:
		embed.Description = "この市民には包帯を渡せます"
		embed.Color = colorGreen
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: thumbnailEligible}
	}

	var hours int64
	if resp.ElapsedHours != nil {
		hours = *resp.ElapsedHours
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "📅最後に登録された時間", Value: fmt.Sprintf("%.2f 時間前", float64(hours))},
		{Name: "⏲️登録された日付と時間", Value: registeredAt},
		{Name: "🩹包帯の個数", Value: count},
	}
	return embed
}
