package discord

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
)

// Gateway owns the Discord session and the slash commands declared on it.
type Gateway struct {
	log           *slog.Logger
	session       *discordgo.Session
	registry      *CommandRegistry
	guildID       string
	removeOnClose bool
	applicationID string
	connected     atomic.Bool
}

// NewSession builds a bot session limited to the guild intent, which is all slash commands need.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	return session, nil
}

// NewGateway wires the handlers once; Open and Close may then be called repeatedly.
// An empty guildID declares the commands globally.
func NewGateway(log *slog.Logger, session *discordgo.Session, registry *CommandRegistry, guildID string, removeOnClose bool) *Gateway {
	g := &Gateway{
		log:           log,
		session:       session,
		registry:      registry,
		guildID:       guildID,
		removeOnClose: removeOnClose,
	}
	session.AddHandler(g.onReady)
	session.AddHandler(g.onResumed)
	session.AddHandler(g.onDisconnect)
	session.AddHandler(registry.Handler())
	return g
}

func (g *Gateway) Open() error {
	if err := g.session.Open(); err != nil {
		return fmt.Errorf("discord open: %w", err)
	}
	if g.session.State == nil || g.session.State.User == nil {
		_ = g.session.Close()
		return fmt.Errorf("discord open: no user in session state")
	}
	g.applicationID = g.session.State.User.ID

	definitions := g.registry.Definitions()
	if _, err := g.session.ApplicationCommandBulkOverwrite(g.applicationID, g.guildID, definitions); err != nil {
		_ = g.session.Close()
		return fmt.Errorf("command registration: %w", err)
	}
	g.log.Info("Slash commands registered", "count", len(definitions), "guild_id", g.guildID)
	return nil
}

func (g *Gateway) Close() error {
	if g.removeOnClose && g.applicationID != "" {
		if _, err := g.session.ApplicationCommandBulkOverwrite(g.applicationID, g.guildID, nil); err != nil {
			g.log.Warn("Failed to remove slash commands", "error", err)
		}
	}
	g.connected.Store(false)
	return g.session.Close()
}

// Connected reports whether the gateway websocket is currently up.
func (g *Gateway) Connected() bool {
	return g.connected.Load()
}

func (g *Gateway) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	g.connected.Store(true)
	if r.User != nil {
		g.log.Info("Logged in", "user", r.User.Username)
	}
}

func (g *Gateway) onResumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	g.connected.Store(true)
	g.log.Info("Gateway session resumed")
}

func (g *Gateway) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	g.connected.Store(false)
	g.log.Warn("Gateway disconnected")
}
