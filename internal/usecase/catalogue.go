package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/riskibarqy/haxfootball-room/internal/domain/chat"
	"github.com/riskibarqy/haxfootball-room/internal/domain/command"
	"github.com/riskibarqy/haxfootball-room/internal/domain/engine"
	"github.com/riskibarqy/haxfootball-room/internal/domain/field"
	"github.com/riskibarqy/haxfootball-room/internal/domain/game"
	"github.com/riskibarqy/haxfootball-room/internal/domain/play"
	"github.com/riskibarqy/haxfootball-room/internal/domain/roster"
	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
)

const (
	DefaultCommandPrefix = "!"
	DefaultMaxScore      = 100

	minLOSYard = 1
	maxLOSYard = field.HalfYards
)

type Definition = command.Definition[*Session]

type CatalogueOptions struct {
	Prefix   string
	MaxScore int
	// CoinFlip reports heads. Defaults to math/rand.
	CoinFlip func() bool
}

// Catalogue is the room's command table plus the settings its handlers need.
type Catalogue struct {
	prefix   string
	maxScore int
	coinFlip func() bool
	registry *command.Registry[*Session]
}

func NewCatalogue(opts CatalogueOptions) (*Catalogue, error) {
	if opts.Prefix == "" {
		opts.Prefix = DefaultCommandPrefix
	}
	if strings.ContainsAny(opts.Prefix, " \t\n") {
		return nil, fmt.Errorf("%w: command prefix %q contains whitespace", ErrInvalidInput, opts.Prefix)
	}
	if opts.MaxScore <= 0 {
		opts.MaxScore = DefaultMaxScore
	}
	if opts.CoinFlip == nil {
		opts.CoinFlip = func() bool { return rand.IntN(100) > 50 }
	}

	c := &Catalogue{prefix: opts.Prefix, maxScore: opts.MaxScore, coinFlip: opts.CoinFlip}
	registry, err := command.NewRegistry(c.definitions()...)
	if err != nil {
		return nil, fmt.Errorf("build command registry: %w", err)
	}
	c.registry = registry
	return c, nil
}

func (c *Catalogue) Registry() *command.Registry[*Session] { return c.registry }

func (c *Catalogue) Prefix() string { return c.prefix }

var sideEnum = command.Enum(team.SideTokens...)

func (c *Catalogue) definitions() []Definition {
	anyone := command.Permission{AllowedWhileMuted: true}
	inGame := command.Permission{AllowedWhileMuted: true, RequiresActiveGame: true}
	adminInGame := command.Permission{MinAdminLevel: command.LevelAdmin, AllowedWhileMuted: true, RequiresActiveGame: true}
	adminBetweenPlays := command.Permission{MinAdminLevel: command.LevelAdmin, AllowedWhileMuted: true, RequiresActiveGame: true, ForbiddenDuringActivePlay: true}
	snapper := command.Permission{RequiresActiveGame: true}

	return []Definition{
		{
			Name:        "help",
			Description: "Returns the list of room commands or returns the description of a given command",
			Usage:       []string{"help [commandName]"},
			Permission:  anyone,
			Params:      command.Params{Min: 0, Max: 1, Types: []command.ParamType{command.Custom()}},
			Handler:     c.help,
		},
		{
			Name:        "commands",
			Aliases:     []string{"cmds"},
			Description: "Returns the list of room commands",
			Permission:  anyone,
			Handler:     c.commands,
		},
		{
			Name:        "info",
			Description: "Returns helpful command info",
			Permission:  anyone,
			Handler:     c.info,
		},
		{
			Name:        "stats",
			Description: "Returns your stats or the stats of another player",
			Usage:       []string{"stats", "stats tda"},
			Permission:  adminInGame,
			Params:      command.Params{Min: 0, Max: 1, SkipMaxCheck: true, Types: []command.ParamType{command.Player()}},
			Handler:     c.stats,
		},
		{
			Name:        "score",
			Description: "Returns the score of the current game",
			Permission:  inGame,
			Handler:     c.score,
		},
		{
			Name:        "setscore",
			Aliases:     []string{"sscore"},
			Description: "Sets the score for a team",
			Usage:       []string{"setscore blue 7", "setscore r 10"},
			Visible:     true,
			Permission:  adminInGame,
			Params:      command.Params{Min: 2, Max: 2, Types: []command.ParamType{sideEnum, command.Number()}},
			Handler:     c.setScore,
		},
		{
			Name:        "setlos",
			Aliases:     []string{"sl"},
			Description: "Sets the line of scrimmage position",
			Usage:       []string{"setlos blue 7", "sl r 38"},
			Visible:     true,
			Permission:  adminBetweenPlays,
			Params:      command.Params{Min: 2, Max: 2, Types: []command.ParamType{sideEnum, command.Number()}},
			Handler:     c.setLOS,
		},
		{
			Name:        "setplayers",
			Aliases:     []string{"setp", "gfi"},
			Description: "Sets the players infront of the LOS",
			Visible:     true,
			Permission:  command.Permission{AllowedWhileMuted: true, RequiresActiveGame: true, ForbiddenDuringActivePlay: true},
			Handler:     c.setPlayers,
		},
		{
			Name:        "setdown",
			Aliases:     []string{"sd"},
			Description: "Sets the down and distance",
			Usage:       []string{"setdown 2 15", "sd 4"},
			Visible:     true,
			Permission:  adminBetweenPlays,
			Params:      command.Params{Min: 1, Max: 2, Types: []command.ParamType{command.Number(), command.Number()}},
			Handler:     c.setDown,
		},
		{
			Name:        "swap",
			Description: "Swaps red and blue",
			Visible:     true,
			Permission:  command.Permission{AllowedWhileMuted: true, ForbiddenDuringActivePlay: true},
			Handler:     c.swap,
		},
		{
			Name:        "swapo",
			Description: "Swaps offense and defense",
			Visible:     true,
			Permission:  command.Permission{MinAdminLevel: command.LevelAdmin, ForbiddenDuringActivePlay: true},
			Handler:     c.swapOffense,
		},
		{
			Name:        "dd",
			Description: "Shows the down and distance",
			Visible:     true,
			Permission:  inGame,
			Handler:     c.downAndDistance,
		},
		{
			Name:        "release",
			Description: "Releases the ball",
			Visible:     true,
			Permission:  adminInGame,
			Handler:     c.release,
		},
		{
			Name:        "reset",
			Description: "Resets all variables and removes the current play",
			Visible:     true,
			Permission:  adminInGame,
			Handler:     c.reset,
		},
		{
			Name:        "flip",
			Aliases:     []string{"coinflip", "cointoss"},
			Description: "Flips a coin",
			Visible:     true,
			Handler:     c.flip,
		},
		{
			Name:        "status",
			Aliases:     []string{"botstatus"},
			Description: "Returns the status of the bot, either on or off",
			Visible:     true,
			Handler:     c.status,
		},
		{
			Name:        "bot",
			Description: "Turns the bot on or off",
			Usage:       []string{"bot on", "bot off"},
			Visible:     true,
			Permission:  command.Permission{MinAdminLevel: command.LevelAdmin},
			Params:      command.Params{Min: 1, Max: 1, Types: []command.ParamType{command.Enum("on", "off")}},
			Handler:     c.bot,
		},
		{
			Name:        "snap",
			Aliases:     []string{"hike", "hut"},
			Description: "Snaps the ball for a run play",
			Visible:     true,
			Permission:  snapper,
			Handler:     c.startSnap(play.KindRun),
		},
		{
			Name:        "pass",
			Description: "Snaps the ball for a pass play",
			Visible:     true,
			Permission:  snapper,
			Handler:     c.startSnap(play.KindPass),
		},
		{
			Name:        "punt",
			Description: "Snaps the ball for a punt",
			Visible:     true,
			Permission:  snapper,
			Handler:     c.startSnap(play.KindPunt),
		},
		{
			Name:        "kickoff",
			Aliases:     []string{"ko"},
			Description: "Starts a kickoff for the team on offense",
			Visible:     true,
			Permission:  adminInGame,
			Handler:     c.kickOff,
		},
		{
			Name:        "endplay",
			Description: "Ends the current play",
			Visible:     true,
			Permission:  adminInGame,
			Handler:     c.endPlay,
		},
	}
}

// currentGame is for handlers whose permission does not already require a
// running game.
func currentGame(s *Session) (*game.State, error) {
	g, ok := s.Game()
	if !ok {
		return nil, command.PreconditionFailed("There is no game in progress")
	}
	return g, nil
}

func (c *Catalogue) accessibleNames(level int) string {
	defs := c.registry.Accessible(level)
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	return strings.Join(names, ", ")
}

func (c *Catalogue) help(ctx context.Context, s *Session, inv command.Invocation) error {
	if inv.HasNoParams() {
		s.reply(ctx, inv.Author.ID, "Commands: "+c.accessibleNames(inv.Author.AdminLevel))
		return nil
	}
	def, ok := c.registry.Lookup(inv.ParamsString())
	if !ok {
		return command.Fail("Command (%s) does not exist", inv.ParamsString())
	}
	s.reply(ctx, inv.Author.ID, def.HelpLine(c.prefix))
	return nil
}

func (c *Catalogue) commands(ctx context.Context, s *Session, inv command.Invocation) error {
	s.reply(ctx, inv.Author.ID, "Commands: "+c.accessibleNames(inv.Author.AdminLevel))
	return nil
}

func (c *Catalogue) info(ctx context.Context, s *Session, inv command.Invocation) error {
	p := c.prefix
	lines := []string{
		"cp | Curved pass",
		p + "setlos (team) (yard) | Sets the line of scrimmage position",
		p + "setdown (down) (distance) | Sets the down and distance",
		p + "setscore (team) (score) | Sets the score of a team",
		p + "setplayers | Sets the players in front of ball",
		p + "dd | Returns the down and distance",
		p + "swapo | Swaps offense and defense",
	}
	s.reply(ctx, inv.Author.ID, strings.Join(lines, "\n"))
	return nil
}

func (c *Catalogue) stats(ctx context.Context, s *Session, inv command.Invocation) error {
	g, err := currentGame(s)
	if err != nil {
		return err
	}

	if inv.HasNoParams() {
		line, ok := g.Stats().Get(inv.Author.StatKey())
		if !ok {
			return command.Fail("You do not have any stats yet")
		}
		s.say(ctx, replyFixedSize(inv.Author.ID, line.String()))
		return nil
	}

	target, err := resolvePlayer(s.Players(), inv.ParamsString())
	if err != nil {
		return err
	}
	line, ok := g.Stats().Get(target.StatKey())
	if !ok {
		return command.Fail("Player %s does not have any stats yet", target.ShortName())
	}
	s.say(ctx, replyFixedSize(inv.Author.ID, fmt.Sprintf("Stats %s\n%s", target.ShortName(), line.String())))
	s.sendScoreboard(ctx)
	return nil
}

func (c *Catalogue) score(ctx context.Context, s *Session, inv command.Invocation) error {
	g, err := currentGame(s)
	if err != nil {
		return err
	}
	s.reply(ctx, inv.Author.ID, g.ScoreboardSummary())
	return nil
}

func (c *Catalogue) setScore(ctx context.Context, s *Session, inv command.Invocation) error {
	g, err := currentGame(s)
	if err != nil {
		return err
	}
	side, err := team.ParseSide(inv.Param(0))
	if err != nil {
		return command.Fail("Team must be one of: %s", strings.Join(team.SideTokens, ", "))
	}
	value, err := strconv.Atoi(inv.Param(1))
	if err != nil {
		return command.Fail("Score must be a positive integer")
	}
	if value > c.maxScore {
		return command.Fail("Score exceeds limit")
	}
	if value < 0 {
		return command.Fail("Score must be a positive integer")
	}

	if err := g.SetScore(side, value); err != nil {
		return err
	}
	s.announce(ctx, fmt.Sprintf("Score updated by %s", inv.Author.ShortName()))
	s.sendScoreboard(ctx)
	return nil
}

func (c *Catalogue) setLOS(ctx context.Context, s *Session, inv command.Invocation) error {
	g, err := currentGame(s)
	if err != nil {
		return err
	}
	half, err := team.ParseSide(inv.Param(0))
	if err != nil {
		return command.Fail("Team must be one of: %s", strings.Join(team.SideTokens, ", "))
	}
	yard, err := strconv.Atoi(inv.Param(1))
	if err != nil || yard < minLOSYard || yard > maxLOSYard {
		return command.Fail("Yardage must be a number between %d and %d", minLOSYard, maxLOSYard)
	}

	g.Down().SetLineOfScrimmage(field.PositionOfTeamYard(yard, half))
	s.sendMarkers(ctx)
	g.UpdateStaticPlayers()
	s.sendLineups(ctx)

	s.announce(ctx, fmt.Sprintf("LOS moved by %s", inv.Author.ShortName()))
	s.sendDownAndDistance(ctx)
	return nil
}

func (c *Catalogue) setPlayers(ctx context.Context, s *Session, inv command.Invocation) error {
	g, err := currentGame(s)
	if err != nil {
		return err
	}
	g.UpdateStaticPlayers()
	s.sendLineups(ctx)
	s.reply(ctx, inv.Author.ID, "✅ Players set!")
	return nil
}

func (c *Catalogue) setDown(ctx context.Context, s *Session, inv command.Invocation) error {
	g, err := currentGame(s)
	if err != nil {
		return err
	}
	d := g.Down()

	downNumber, err := strconv.Atoi(inv.Param(0))
	if err != nil || downNumber < 1 || downNumber > 4 {
		return command.Fail("Down must be a number between 1 and 4")
	}
	distance := d.YardsToGet()
	if len(inv.Params) > 1 {
		distance, err = strconv.Atoi(inv.Param(1))
		if err != nil {
			return command.Fail("Distance must be a number between 1 and 99")
		}
	}
	if distance < 1 || distance > 99 {
		return command.Fail("Distance must be a number between 1 and 99")
	}

	d.SetDown(downNumber)
	d.SetYardsToGet(distance)
	s.sendMarkers(ctx)

	s.announce(ctx, fmt.Sprintf("Down and Distance updated by %s", inv.Author.ShortName()))
	s.sendDownAndDistance(ctx)
	return nil
}

func (c *Catalogue) swap(ctx context.Context, s *Session, inv command.Invocation) error {
	players := s.Players()
	red := players.ByTeam(team.Red)
	blue := players.ByTeam(team.Blue)
	for _, p := range red {
		if _, err := players.SetTeam(p.ID, team.Blue); err != nil {
			return err
		}
	}
	for _, p := range blue {
		if _, err := players.SetTeam(p.ID, team.Red); err != nil {
			return err
		}
	}
	s.direct(ctx, engine.Directive{Name: engine.SwapTeams})
	if g, ok := s.Game(); ok {
		g.UpdateStaticPlayers()
	}
	s.announce(ctx, "Teams swapped")
	return nil
}

func (c *Catalogue) swapOffense(ctx context.Context, s *Session, inv command.Invocation) error {
	g, err := currentGame(s)
	if err != nil {
		return err
	}
	offense, err := g.SwapOffense()
	if err != nil {
		return err
	}
	s.sendMarkers(ctx)
	s.announce(ctx, fmt.Sprintf("Offense swapped by %s, %s is now on offense", inv.Author.ShortName(), offense))
	s.sendDownAndDistance(ctx)
	return nil
}

func (c *Catalogue) downAndDistance(ctx context.Context, s *Session, inv command.Invocation) error {
	g, err := currentGame(s)
	if err != nil {
		return err
	}
	s.reply(ctx, inv.Author.ID, g.Down().String(g.OffenseTeamID()))
	return nil
}

func (c *Catalogue) release(ctx context.Context, s *Session, inv command.Invocation) error {
	s.direct(ctx, engine.Directive{Name: engine.ReleaseBall})
	s.reply(ctx, inv.Author.ID, "✅ Ball released")
	return nil
}

func (c *Catalogue) reset(ctx context.Context, s *Session, inv command.Invocation) error {
	g, err := currentGame(s)
	if err != nil {
		return err
	}
	g.EndPlay()
	g.Down().HardReset()
	s.sendMarkers(ctx)
	s.announce(ctx, fmt.Sprintf("Hard reset ran by %s", inv.Author.ShortName()))
	return nil
}

func (c *Catalogue) flip(ctx context.Context, s *Session, inv command.Invocation) error {
	face := "Tails"
	if c.coinFlip() {
		face = "Heads"
	}
	s.announce(ctx, "Coin Flip: "+face)
	return nil
}

func (c *Catalogue) status(ctx context.Context, s *Session, inv command.Invocation) error {
	if s.BotOn() {
		s.reply(ctx, inv.Author.ID, "🟩 The Bot is currently ON")
		return nil
	}
	s.reply(ctx, inv.Author.ID, "🟥 The Bot is currently OFF")
	return nil
}

func (c *Catalogue) bot(ctx context.Context, s *Session, inv command.Invocation) error {
	turnOn := inv.Param(0) == "on"
	if turnOn == s.BotOn() {
		state := "OFF"
		if turnOn {
			state = "ON"
		}
		s.reply(ctx, inv.Author.ID, "The bot is already "+state)
		return nil
	}

	s.SetBot(turnOn)
	if turnOn {
		s.reply(ctx, inv.Author.ID, "✅ The Bot has been turned ON")
	} else {
		s.reply(ctx, inv.Author.ID, "✅ The Bot has been turned OFF")
	}
	return nil
}

func (c *Catalogue) startSnap(kind play.Kind) command.Handler[*Session] {
	return func(ctx context.Context, s *Session, inv command.Invocation) error {
		g, err := currentGame(s)
		if err != nil {
			return err
		}
		p, _ := play.New(kind, s.Elapsed())
		author := inv.Author
		if err := g.StartPlay(p, &author); err != nil {
			return err
		}
		s.announce(ctx, fmt.Sprintf("%s snapped by %s", strings.ToUpper(string(kind)), author.ShortName()))
		return nil
	}
}

func (c *Catalogue) kickOff(ctx context.Context, s *Session, inv command.Invocation) error {
	g, err := currentGame(s)
	if err != nil {
		return err
	}
	if err := g.StartPlay(play.NewKickOff(0), nil); err != nil {
		return err
	}
	s.announce(ctx, fmt.Sprintf("Kickoff by %s", g.OffenseTeamID()))
	return nil
}

func (c *Catalogue) endPlay(ctx context.Context, s *Session, inv command.Invocation) error {
	g, err := currentGame(s)
	if err != nil {
		return err
	}
	if _, running := g.ActivePlay(); !running {
		s.reply(ctx, inv.Author.ID, "No play is running")
		return nil
	}
	g.EndPlay()
	s.announce(ctx, fmt.Sprintf("Play ended by %s", inv.Author.ShortName()))
	return nil
}

// replyFixedSize keeps multi-line blocks at their natural size.
func replyFixedSize(to int, text string) chat.Message {
	msg := chat.Reply(to, text)
	msg.AutoSize = false
	return msg
}

// resolvePlayer turns lookup failures into replies the author can act on.
func resolvePlayer(players *roster.Registry, ref string) (roster.Player, error) {
	p, err := players.Resolve(ref)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, roster.ErrAmbiguousPlayer):
		return roster.Player{}, command.Fail("More than one player matches %s, use #id", ref)
	default:
		return roster.Player{}, command.Fail("Player %s not found", ref)
	}
}
