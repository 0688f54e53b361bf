package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/haxfootball-room/internal/domain/chat"
	"github.com/riskibarqy/haxfootball-room/internal/domain/command"
	"github.com/riskibarqy/haxfootball-room/internal/domain/game"
	"github.com/riskibarqy/haxfootball-room/internal/domain/roster"
	"github.com/riskibarqy/haxfootball-room/internal/domain/team"
	chatmock "github.com/riskibarqy/haxfootball-room/internal/mocks/domain/chat"
	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
)

func TestDispatcher_OrdinaryChatIsIgnored(t *testing.T) {
	room := newTestRoom(t, coach)
	room.startIdleGame(t)

	res := room.say(coach, "nice catch")

	assert.False(t, res.Handled)
	assert.Nil(t, res.Error)
	assert.Empty(t, room.messages)
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	room := newTestRoom(t, coach)

	res := room.say(coach, "!Teleport now")

	require.True(t, res.Handled)
	require.NotNil(t, res.Error)
	assert.Equal(t, command.KindUnknownCommand, res.Error.Kind)
	assert.Equal(t, []string{"Command (Teleport) does not exist"}, room.replies(coach.ID))
	assert.Empty(t, room.announcements())
}

func TestDispatcher_SetScore(t *testing.T) {
	tests := []struct {
		name         string
		author       roster.Player
		text         string
		wantKind     command.ErrorKind
		wantReply    string
		wantScore    game.Score
		wantAnnounce []string
	}{
		{
			name:         "admin sets red score",
			author:       coach,
			text:         "!setscore red 10",
			wantScore:    game.Score{Red: 10},
			wantAnnounce: []string{"Score updated by coach", "🟥 10 - 0 🟦"},
		},
		{
			name:         "alias and short side",
			author:       coach,
			text:         "!sscore B 7",
			wantScore:    game.Score{Blue: 7},
			wantAnnounce: []string{"Score updated by coach", "🟥 0 - 7 🟦"},
		},
		{
			name:         "upper bound",
			author:       coach,
			text:         "!setscore red 100",
			wantScore:    game.Score{Red: 100},
			wantAnnounce: []string{"Score updated by coach", "🟥 100 - 0 🟦"},
		},
		{
			name:         "lower bound",
			author:       coach,
			text:         "!setscore red 0",
			wantScore:    game.Score{},
			wantAnnounce: []string{"Score updated by coach", "🟥 0 - 0 🟦"},
		},
		{
			name:      "just above limit",
			author:    coach,
			text:      "!setscore red 101",
			wantKind:  command.KindCommand,
			wantReply: "Score exceeds limit",
		},
		{
			name:      "above limit",
			author:    coach,
			text:      "!setscore red 150",
			wantKind:  command.KindCommand,
			wantReply: "Score exceeds limit",
		},
		{
			name:      "negative",
			author:    coach,
			text:      "!setscore blue -3",
			wantKind:  command.KindCommand,
			wantReply: "Score must be a positive integer",
		},
		{
			name:      "not a number",
			author:    coach,
			text:      "!setscore blue lots",
			wantKind:  command.KindParamValidation,
			wantReply: "Parameter 2 must be: Number",
		},
		{
			name:      "bad side",
			author:    coach,
			text:      "!setscore green 3",
			wantKind:  command.KindParamValidation,
			wantReply: "Parameter 1 must be: blue, b, red, r",
		},
		{
			name:      "player without admin",
			author:    rookie,
			text:      "!setscore red 10",
			wantKind:  command.KindPermission,
			wantReply: "You do not have permission to use this command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := newTestRoom(t, coach, rookie)
			g := room.startIdleGame(t)

			res := room.say(tt.author, tt.text)

			require.True(t, res.Handled)
			if tt.wantKind == "" {
				require.Nil(t, res.Error)
				assert.Equal(t, tt.wantAnnounce, room.announcements())
			} else {
				require.NotNil(t, res.Error)
				assert.Equal(t, tt.wantKind, res.Error.Kind)
				assert.Equal(t, []string{tt.wantReply}, room.replies(tt.author.ID))
				assert.Empty(t, room.announcements())
			}
			assert.Equal(t, tt.wantScore, g.Score())
		})
	}
}

func TestDispatcher_SetDown(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantReply string
		wantDown  int
		wantDist  int
	}{
		{name: "down only keeps distance", text: "!setdown 3", wantDown: 3, wantDist: 10},
		{name: "down and distance", text: "!sd 2 15", wantDown: 2, wantDist: 15},
		{name: "down out of range", text: "!setdown 5", wantReply: "Down must be a number between 1 and 4", wantDown: 1, wantDist: 10},
		{name: "distance out of range", text: "!setdown 2 100", wantReply: "Distance must be a number between 1 and 99", wantDown: 1, wantDist: 10},
		{name: "too many params", text: "!setdown 2 5 7", wantReply: "Expected at most 2 parameter(s), got 3", wantDown: 1, wantDist: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			room := newTestRoom(t, coach)
			g := room.startIdleGame(t)

			res := room.say(coach, tt.text)

			if tt.wantReply != "" {
				require.NotNil(t, res.Error)
				assert.Equal(t, []string{tt.wantReply}, room.replies(coach.ID))
			} else {
				require.Nil(t, res.Error)
				assert.Contains(t, room.announcements(), "Down and Distance updated by coach")
			}
			assert.Equal(t, tt.wantDown, g.Down().Down())
			assert.Equal(t, tt.wantDist, g.Down().YardsToGet())
		})
	}
}

func TestDispatcher_SetLOSAndDownAndDistance(t *testing.T) {
	room := newTestRoom(t, coach, rookie)
	room.startIdleGame(t)

	require.Nil(t, room.say(coach, "!sl r 38").Error)
	assert.Equal(t, []string{"LOS moved by coach", "1st & 10 at RED 38"}, room.announcements())

	room.reset()
	require.Nil(t, room.say(rookie, "!dd").Error)
	assert.Equal(t, []string{"1st & 10 at RED 38"}, room.replies(rookie.ID))

	room.reset()
	res := room.say(coach, "!setlos red 51")
	require.NotNil(t, res.Error)
	assert.Equal(t, []string{"Yardage must be a number between 1 and 50"}, room.replies(coach.ID))
}

func TestDispatcher_GameRequired(t *testing.T) {
	room := newTestRoom(t, coach)

	res := room.say(coach, "!dd")

	require.NotNil(t, res.Error)
	assert.Equal(t, command.KindPrecondition, res.Error.Kind)
	assert.Equal(t, []string{"There is no game in progress"}, room.replies(coach.ID))

	room.reset()
	res = room.say(coach, "!swapo")
	require.NotNil(t, res.Error)
	assert.Equal(t, command.KindPrecondition, res.Error.Kind)
}

func TestDispatcher_ForbiddenDuringPlay(t *testing.T) {
	room := newTestRoom(t, coach)
	_, err := room.session.StartNewGame(context.Background())
	require.NoError(t, err)

	res := room.say(coach, "!setlos red 20")

	require.NotNil(t, res.Error)
	assert.Equal(t, command.KindPrecondition, res.Error.Kind)
	assert.Equal(t, []string{"You cannot use this command during a play"}, room.replies(coach.ID))
}

func TestDispatcher_MutedPlayerCannotSnap(t *testing.T) {
	room := newTestRoom(t, quiet)
	room.startIdleGame(t)

	res := room.say(quiet, "!snap")

	require.NotNil(t, res.Error)
	assert.Equal(t, command.KindPermission, res.Error.Kind)
	assert.Equal(t, []string{"You cannot use this command while muted"}, room.replies(quiet.ID))

	room.reset()
	assert.Nil(t, room.say(quiet, "!dd").Error)
}

func TestDispatcher_SnapLifecycle(t *testing.T) {
	room := newTestRoom(t, coach, rookie)
	g, err := room.session.StartNewGame(context.Background())
	require.NoError(t, err)

	// the opening kickoff is still running
	res := room.say(coach, "!snap")
	require.NotNil(t, res.Error)
	assert.Equal(t, command.KindPlayValidation, res.Error.Kind)
	assert.Equal(t, "a play is already running", res.Error.Message)

	g.EndPlay()
	room.reset()
	res = room.say(coach, "!hike")
	require.NotNil(t, res.Error)
	assert.Equal(t, command.KindSnapCooldown, res.Error.Kind)
	assert.Equal(t, []string{command.MessageSnapCooldown}, room.replies(coach.ID))

	room.clock.Advance(game.DefaultSnapCooldown)
	room.reset()
	res = room.say(rookie, "!pass")
	require.NotNil(t, res.Error)
	assert.Equal(t, "you must be on offense to start this play", res.Error.Message)

	room.reset()
	require.Nil(t, room.say(coach, "!pass").Error)
	assert.Equal(t, []string{"PASS snapped by coach"}, room.announcements())
	active, running := g.ActivePlay()
	require.True(t, running)
	assert.Equal(t, "pass", string(active.Kind()))

	room.reset()
	require.Nil(t, room.say(coach, "!endplay").Error)
	assert.Equal(t, []string{"Play ended by coach"}, room.announcements())

	room.reset()
	require.Nil(t, room.say(coach, "!endplay").Error)
	assert.Equal(t, []string{"No play is running"}, room.replies(coach.ID))
}

func TestDispatcher_SnapCooldownExtendsOnEveryPlay(t *testing.T) {
	room := newTestRoom(t, coach)
	g := room.startIdleGame(t)

	require.Nil(t, room.say(coach, "!snap").Error)
	g.EndPlay()
	room.clock.Advance(time.Second)
	require.Nil(t, room.say(coach, "!kickoff").Error)
	g.EndPlay()

	room.clock.Advance(time.Second)
	assert.False(t, g.SnapAllowed())
	room.clock.Advance(time.Second)
	assert.True(t, g.SnapAllowed())
}

func TestDispatcher_SwapOffense(t *testing.T) {
	room := newTestRoom(t, coach)
	g := room.startIdleGame(t)

	require.Nil(t, room.say(coach, "!swapo").Error)

	assert.Equal(t, team.Blue, g.OffenseTeamID())
	assert.Equal(t, []string{"Offense swapped by coach, BLUE is now on offense", "1st & 10 at 50"}, room.announcements())
}

func TestDispatcher_SwapTeams(t *testing.T) {
	room := newTestRoom(t, coach, rookie)

	require.Nil(t, room.say(rookie, "!swap").Error)

	red := room.session.Players().ByTeam(team.Red)
	require.Len(t, red, 1)
	assert.Equal(t, rookie.ID, red[0].ID)
	assert.Equal(t, []string{"Teams swapped"}, room.announcements())
	require.Len(t, room.directives, 1)
	assert.Equal(t, "swap_teams", string(room.directives[0].Name))
}

func TestDispatcher_Reset(t *testing.T) {
	room := newTestRoom(t, coach)
	g, err := room.session.StartNewGame(context.Background())
	require.NoError(t, err)
	g.Down().SetDown(3)

	require.Nil(t, room.say(coach, "!reset").Error)

	_, running := g.ActivePlay()
	assert.False(t, running)
	assert.Equal(t, 1, g.Down().Down())
	assert.Contains(t, room.announcements(), "Hard reset ran by coach")
}

func TestDispatcher_Help(t *testing.T) {
	room := newTestRoom(t, coach, rookie)

	require.Nil(t, room.say(rookie, "!help sscore").Error)
	assert.Equal(t,
		[]string{"setscore [sscore]: Sets the score for a team | !setscore blue 7, !setscore r 10"},
		room.replies(rookie.ID))

	room.reset()
	res := room.say(rookie, "!help nope")
	require.NotNil(t, res.Error)
	assert.Equal(t, []string{"Command (nope) does not exist"}, room.replies(rookie.ID))

	room.reset()
	require.Nil(t, room.say(rookie, "!commands").Error)
	replies := room.replies(rookie.ID)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0], "help")
	assert.NotContains(t, replies[0], "setscore")

	room.reset()
	require.Nil(t, room.say(coach, "!cmds").Error)
	assert.Contains(t, room.replies(coach.ID)[0], "setscore")
}

func TestDispatcher_Bot(t *testing.T) {
	room := newTestRoom(t, coach)

	steps := []struct {
		text  string
		reply string
		on    bool
	}{
		{text: "!status", reply: "🟩 The Bot is currently ON", on: true},
		{text: "!bot on", reply: "The bot is already ON", on: true},
		{text: "!bot OFF", reply: "✅ The Bot has been turned OFF", on: false},
		{text: "!botstatus", reply: "🟥 The Bot is currently OFF", on: false},
		{text: "!bot off", reply: "The bot is already OFF", on: false},
		{text: "!bot on", reply: "✅ The Bot has been turned ON", on: true},
	}
	for _, step := range steps {
		room.reset()
		require.Nil(t, room.say(coach, step.text).Error, step.text)
		assert.Equal(t, []string{step.reply}, room.replies(coach.ID), step.text)
		assert.Equal(t, step.on, room.session.BotOn(), step.text)
	}
}

func TestDispatcher_Flip(t *testing.T) {
	room := newTestRoom(t, rookie)

	require.Nil(t, room.say(rookie, "!cointoss").Error)

	assert.Equal(t, []string{"Coin Flip: Heads"}, room.announcements())
}

func TestDispatcher_Stats(t *testing.T) {
	room := newTestRoom(t, coach, rookie)
	room.startIdleGame(t)

	res := room.say(coach, "!stats")
	require.NotNil(t, res.Error)
	assert.Equal(t, []string{"You do not have any stats yet"}, room.replies(coach.ID))

	room.reset()
	res = room.say(coach, "!stats ghost")
	require.NotNil(t, res.Error)
	assert.Equal(t, []string{"Player ghost not found"}, room.replies(coach.ID))
}

func TestDispatcher_PanickingHandlerIsInvariant(t *testing.T) {
	room := newTestRoom(t, coach)
	registry, err := command.NewRegistry(Definition{
		Name:        "boom",
		Description: "Always panics",
		Handler: func(context.Context, *Session, command.Invocation) error {
			panic("corrupt state")
		},
	})
	require.NoError(t, err)
	dispatcher := NewDispatcher(room.session, registry, "!", logging.NewNop())

	res := dispatcher.Dispatch(context.Background(), coach, "!boom")

	require.NotNil(t, res.Error)
	assert.Equal(t, command.KindInvariant, res.Error.Kind)
	assert.Equal(t, []string{command.MessageInternal}, room.replies(coach.ID))

	// the room keeps working
	room.reset()
	assert.Nil(t, room.say(coach, "!status").Error)
}

func TestDispatcher_ChatFailureDoesNotFailCommand(t *testing.T) {
	sink := chatmock.NewSink(t)
	sink.On("Send", mock.Anything, chat.Message{
		Kind:     chat.KindReply,
		To:       rookie.ID,
		Text:     "🟩 The Bot is currently ON",
		AutoSize: true,
	}).Return(errors.New("host offline")).Once()

	session := NewSession(SessionOptions{Chat: sink, Logger: logging.NewNop()})
	catalogue, err := NewCatalogue(CatalogueOptions{})
	require.NoError(t, err)
	dispatcher := NewDispatcher(session, catalogue.Registry(), catalogue.Prefix(), logging.NewNop())

	res := dispatcher.Dispatch(context.Background(), rookie, "!status")

	assert.True(t, res.OK())
}

func TestDispatcher_HandleChat(t *testing.T) {
	room := newTestRoom(t, coach)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- room.session.Run(ctx) }()

	res, err := room.dispatcher.HandleChat(ctx, coach.ID, "!status")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "status", res.Command)

	_, err = room.dispatcher.HandleChat(ctx, 99, "!status")
	assert.ErrorIs(t, err, ErrNotFound)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
