package discord

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Responder is the part of *discordgo.Session used to answer interactions.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// Command is a slash command: its declaration and the code answering it.
type Command interface {
	Definition() *discordgo.ApplicationCommand
	Handle(ctx context.Context, r Responder, i *discordgo.InteractionCreate) error
}

// CommandRegistry holds the slash commands by name
type CommandRegistry struct {
	log      *slog.Logger
	timeout  time.Duration
	commands map[string]Command
}

func NewCommandRegistry(log *slog.Logger, timeout time.Duration) *CommandRegistry {
	return &CommandRegistry{
		log:      log,
		timeout:  timeout,
		commands: make(map[string]Command),
	}
}

func (r *CommandRegistry) Register(cmd ...Command) *CommandRegistry {
	for _, c := range cmd {
		r.commands[c.Definition().Name] = c
	}
	return r
}

// Definitions lists the declarations to push to Discord, sorted by name.
func (r *CommandRegistry) Definitions() []*discordgo.ApplicationCommand {
	definitions := make([]*discordgo.ApplicationCommand, 0, len(r.commands))
	for _, c := range r.commands {
		definitions = append(definitions, c.Definition())
	}
	slices.SortFunc(definitions, func(a, b *discordgo.ApplicationCommand) int {
		return strings.Compare(a.Name, b.Name)
	})
	return definitions
}

// Dispatch runs the command named by the interaction, if any.
// It returns false for anything that is not a known slash command.
func (r *CommandRegistry) Dispatch(ctx context.Context, responder Responder, i *discordgo.InteractionCreate) bool {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return false
	}
	name := i.ApplicationCommandData().Name
	cmd, ok := r.commands[name]
	if !ok {
		r.log.Debug("Ignoring unknown command", "name", name)
		return false
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := cmd.Handle(ctx, responder, i); err != nil {
		r.log.Error("Command failed", "name", name, "interaction_id", i.ID, "error", err)
	}
	return true
}

// Handler adapts Dispatch to a discordgo event handler.
func (r *CommandRegistry) Handler() func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		r.Dispatch(context.Background(), s, i)
	}
}
