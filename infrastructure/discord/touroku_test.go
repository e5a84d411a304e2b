package discord

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"
	"touroku/domain/registration"
	"touroku/errors"
	"touroku/mocks"

	"github.com/bwmarrin/discordgo"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeResponder records what the command sends back to Discord.
type fakeResponder struct {
	responses []*discordgo.InteractionResponse
	err       error
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.responses = append(f.responses, resp)
	return f.err
}

func slashCommand(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:   "interaction-1",
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: options,
		},
		Member: &discordgo.Member{User: &discordgo.User{ID: "user-1"}},
	}}
}

func csnOption(value any) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name: optionCSN, Type: discordgo.ApplicationCommandOptionString, Value: value,
	}
}

func amountOption(value any) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name: optionAmount, Type: discordgo.ApplicationCommandOptionInteger, Value: value,
	}
}

func TestTourokuCommand_Handle(t *testing.T) {
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	t.Run("should respond with the card", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		service := mocks.NewMockIRegistrationService(ctrl)
		cmd := NewTourokuCommand(log, service, time.UTC)
		responder := &fakeResponder{}

		service.EXPECT().
			RegisterOrQuery(gomock.Any(), "ABC123", int64(5)).
			Return(registration.Response{CSN: "ABC123", Status: registration.Created, RegisteredAt: time.Now(), Count: 5}, nil).
			Times(1)

		err := cmd.Handle(ctx, responder, slashCommand(CommandName, csnOption("ABC123"), amountOption(float64(5))))

		req.NoError(err)
		req.Len(responder.responses, 1)
		data := responder.responses[0].Data
		req.Len(data.Embeds, 1)
		req.Equal("🔍 ABC123 の情報", data.Embeds[0].Title)
		req.Zero(data.Flags)
	})

	t.Run("should reject a missing amount without calling the service", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		service := mocks.NewMockIRegistrationService(ctrl)
		cmd := NewTourokuCommand(log, service, time.UTC)
		responder := &fakeResponder{}

		service.EXPECT().RegisterOrQuery(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		err := cmd.Handle(ctx, responder, slashCommand(CommandName, csnOption("ABC123")))

		req.ErrorIs(err, errors.ErrValidation)
		req.Len(responder.responses, 1)
		req.Equal(discordgo.MessageFlagsEphemeral, responder.responses[0].Data.Flags)
		req.Equal(FailureMessage(errors.ErrValidation), responder.responses[0].Data.Content)
	})

	t.Run("should reject a fractional amount", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		service := mocks.NewMockIRegistrationService(ctrl)
		cmd := NewTourokuCommand(log, service, time.UTC)

		err := cmd.Handle(ctx, &fakeResponder{}, slashCommand(CommandName, csnOption("ABC123"), amountOption(2.5)))

		req.ErrorIs(err, errors.ErrValidation)
	})

	t.Run("should reject an amount beyond the integer range", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		service := mocks.NewMockIRegistrationService(ctrl)
		cmd := NewTourokuCommand(log, service, time.UTC)

		for _, amount := range []float64{1 << 54, -(1 << 54), 1e300} {
			err := cmd.Handle(ctx, &fakeResponder{}, slashCommand(CommandName, csnOption("ABC123"), amountOption(amount)))
			req.ErrorIs(err, errors.ErrValidation)
		}
	})

	t.Run("should accept the largest integer Discord sends", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		service := mocks.NewMockIRegistrationService(ctrl)
		cmd := NewTourokuCommand(log, service, time.UTC)

		service.EXPECT().
			RegisterOrQuery(gomock.Any(), "ABC123", int64(1<<53)).
			Return(registration.Response{CSN: "ABC123", Status: registration.Created, RegisteredAt: time.Now(), Count: 1 << 53}, nil)

		err := cmd.Handle(ctx, &fakeResponder{}, slashCommand(CommandName, csnOption("ABC123"), amountOption(float64(1<<53))))

		req.NoError(err)
	})

	t.Run("should reject an amount sent as text", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		service := mocks.NewMockIRegistrationService(ctrl)
		cmd := NewTourokuCommand(log, service, time.UTC)

		err := cmd.Handle(ctx, &fakeResponder{}, slashCommand(CommandName, csnOption("ABC123"), amountOption("five")))

		req.ErrorIs(err, errors.ErrValidation)
	})

	t.Run("should surface store failures to the user", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		service := mocks.NewMockIRegistrationService(ctrl)
		cmd := NewTourokuCommand(log, service, time.UTC)
		responder := &fakeResponder{}
		storeErr := fmt.Errorf("%w: timeout", errors.ErrStoreUnavailable)

		service.EXPECT().
			RegisterOrQuery(gomock.Any(), "ABC123", int64(-2)).
			Return(registration.Response{}, storeErr)

		err := cmd.Handle(ctx, responder, slashCommand(CommandName, csnOption("ABC123"), amountOption(float64(-2))))

		req.ErrorIs(err, errors.ErrStoreUnavailable)
		req.Len(responder.responses, 1)
		req.Equal(FailureMessage(storeErr), responder.responses[0].Data.Content)
		req.Equal(discordgo.MessageFlagsEphemeral, responder.responses[0].Data.Flags)
	})
}

func TestTourokuCommand_Definition(t *testing.T) {
	req := require.New(t)
	def := NewTourokuCommand(slog.Default(), nil, time.UTC).Definition()

	req.Equal(CommandName, def.Name)
	req.Len(def.Options, 2)
	req.Equal(discordgo.ApplicationCommandOptionString, def.Options[0].Type)
	req.True(def.Options[0].Required)
	req.Equal(discordgo.ApplicationCommandOptionInteger, def.Options[1].Type)
	req.True(def.Options[1].Required)
}

func TestFailureMessage(t *testing.T) {
	req := require.New(t)
	req.NotEqual(FailureMessage(errors.ErrValidation), FailureMessage(errors.ErrStoreUnavailable))
	req.Equal(FailureMessage(errors.ErrStoreUnavailable), FailureMessage(errors.ErrNotFoundPostWrite))
	req.Equal("⚠️ 登録に失敗しました", FailureMessage(fmt.Errorf("boom")))
}
