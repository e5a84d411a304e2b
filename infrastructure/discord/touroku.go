package discord

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"math"
	"time"
	"touroku/domain/registration"
	"touroku/errors"
	"touroku/services"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

const (
	CommandName  = "touroku"
	optionCSN    = "csn"
	optionAmount = "amount"
)

// maxAmount bounds integer options to the range a float64 holds exactly.
const maxAmount = 1 << 53

// TourokuCommand registers or looks up a CSN and answers with a status card.
type TourokuCommand struct {
	log      *slog.Logger
	service  services.IRegistrationService
	location *time.Location
}

func NewTourokuCommand(log *slog.Logger, service services.IRegistrationService, location *time.Location) *TourokuCommand {
	return &TourokuCommand{log: log, service: service, location: location}
}

func (c *TourokuCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        CommandName,
		Description: "CSNを登録・照会",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        optionCSN,
				Description: "CSNを入力",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        optionAmount,
				Description: "包帯の個数",
				Required:    true,
			},
		},
	}
}

func (c *TourokuCommand) Handle(ctx context.Context, r Responder, i *discordgo.InteractionCreate) error {
	requestID := uuid.NewString()
	log := c.log.With("request_id", requestID, "interaction_id", i.ID, "user_id", invokerID(i))

	// 1. Read the options
	cmd, err := parseOptions(i.ApplicationCommandData())
	if err != nil {
		log.Warn("Invalid command options", "error", err)
		return c.fail(r, i, err)
	}

	// 2. Register
	resp, err := c.service.RegisterOrQuery(ctx, cmd.CSN, cmd.Count)
	if err != nil {
		log.Error("Registration failed", "csn", cmd.CSN, "error", err)
		return c.fail(r, i, err)
	}

	// 3. Answer with the card
	log.Debug("Responding with card", "csn", resp.CSN, "status", resp.Status)
	return r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{RenderCard(resp, c.location)},
		},
	})
}

// fail answers privately to the invoker and returns the original error.
func (c *TourokuCommand) fail(r Responder, i *discordgo.InteractionCreate, cause error) error {
	err := r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: FailureMessage(cause),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	return stderrors.Join(cause, err)
}

// FailureMessage is the text shown to the user for a failed registration.
func FailureMessage(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrValidation):
		return "⚠️ CSNと包帯の個数を正しく入力してください"
	case stderrors.Is(err, errors.ErrStoreUnavailable):
		return "⚠️ データベースに接続できませんでした。しばらくしてから再度お試しください"
	default:
		return "⚠️ 登録に失敗しました"
	}
}

func parseOptions(data discordgo.ApplicationCommandInteractionData) (registration.RegisterCommand, error) {
	var (
		cmd       registration.RegisterCommand
		hasCSN    bool
		hasAmount bool
	)
	for _, opt := range data.Options {
		switch opt.Name {
		case optionCSN:
			csn, ok := opt.Value.(string)
			if opt.Type != discordgo.ApplicationCommandOptionString || !ok {
				return cmd, fmt.Errorf("%w: csn must be a string", errors.ErrValidation)
			}
			cmd.CSN, hasCSN = csn, true
		case optionAmount:
			// Discord sends integers as JSON numbers
			amount, ok := opt.Value.(float64)
			if opt.Type != discordgo.ApplicationCommandOptionInteger || !ok || amount != math.Trunc(amount) {
				return cmd, fmt.Errorf("%w: amount must be an integer", errors.ErrValidation)
			}
			if math.Abs(amount) > maxAmount {
				return cmd, fmt.Errorf("%w: amount out of range", errors.ErrValidation)
			}
			cmd.Count, hasAmount = int64(amount), true
		}
	}
	if !hasCSN || !hasAmount {
		return cmd, fmt.Errorf("%w: csn and amount are required", errors.ErrValidation)
	}
	return cmd, nil
}

func invokerID(i *discordgo.InteractionCreate) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.ID
	case i.User != nil:
		return i.User.ID
	default:
		return ""
	}
}
