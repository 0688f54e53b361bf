package usecase

import (
	"context"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/riskibarqy/haxfootball-room/internal/domain/command"
	"github.com/riskibarqy/haxfootball-room/internal/domain/roster"
	"github.com/riskibarqy/haxfootball-room/internal/platform/logging"
)

// DispatchResult reports what happened to one chat line. Handled is false for
// ordinary chat.
type DispatchResult struct {
	Handled bool           `json:"handled"`
	Command string         `json:"command,omitempty"`
	Error   *command.Error `json:"-"`
}

func (r DispatchResult) OK() bool {
	return r.Handled && r.Error == nil
}

type Dispatcher struct {
	session  *Session
	registry *command.Registry[*Session]
	prefix   string
	logger   *logging.Logger
}

func NewDispatcher(session *Session, registry *command.Registry[*Session], prefix string, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		session:  session,
		registry: registry,
		prefix:   prefix,
		logger:   logger.Named("dispatcher"),
	}
}

// HandleChat resolves the author and dispatches on the session loop.
func (d *Dispatcher) HandleChat(ctx context.Context, playerID int, text string) (DispatchResult, error) {
	var result DispatchResult
	err := d.session.Do(ctx, func() error {
		author, ok := d.session.Players().Get(playerID)
		if !ok {
			return fmt.Errorf("%w: player %d", ErrNotFound, playerID)
		}
		result = d.Dispatch(ctx, author, text)
		return nil
	})
	return result, err
}

// Dispatch runs parse, resolve, permission, params, invoke and report for
// one chat line. Every failure except ordinary chat is replied privately to
// the author. It must run on the session loop.
func (d *Dispatcher) Dispatch(ctx context.Context, author roster.Player, raw string) DispatchResult {
	parsed, err := command.Parse(d.prefix, raw)
	if err != nil {
		return DispatchResult{}
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.Dispatcher.Dispatch")
	defer span.End()
	span.SetAttributes(
		attribute.String("command.name", parsed.Name),
		attribute.Int("command.author_id", author.ID),
	)

	result := DispatchResult{Handled: true, Command: parsed.Name}
	if err := d.run(ctx, author, parsed); err != nil {
		cmdErr := command.Classify(err)
		result.Error = cmdErr
		span.SetStatus(codes.Error, string(cmdErr.Kind))
		d.report(ctx, author, parsed, cmdErr)
		return result
	}

	d.logger.DebugContext(ctx, "command dispatched", "command", parsed.Name, "author_id", author.ID)
	return result
}

func (d *Dispatcher) run(ctx context.Context, author roster.Player, parsed command.Parsed) error {
	def, ok := d.registry.Lookup(parsed.Name)
	if !ok {
		return command.UnknownCommand(parsed.RawName)
	}
	if err := command.CheckPermission(def.Permission, author, d.session.Gate()); err != nil {
		return err
	}
	params, err := command.ValidateParams(def.Params, parsed.Params)
	if err != nil {
		return err
	}

	inv := command.Invocation{
		Author:  author,
		RawName: parsed.RawName,
		Name:    def.Name,
		Params:  params,
	}
	return d.invoke(ctx, def, inv)
}

func (d *Dispatcher) invoke(ctx context.Context, def *command.Definition[*Session], inv command.Invocation) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = crerr.AssertionFailedf("command %s panicked: %v", def.Name, rec)
		}
	}()
	return def.Handler(ctx, d.session, inv)
}

func (d *Dispatcher) report(ctx context.Context, author roster.Player, parsed command.Parsed, cmdErr *command.Error) {
	if cmdErr.Kind == command.KindInvariant {
		d.logger.ErrorContext(ctx, "invariant violation",
			"command", parsed.Name,
			"author_id", author.ID,
			"error", fmt.Sprintf("%+v", cmdErr.Err),
		)
	} else {
		d.logger.InfoContext(ctx, "command rejected",
			"command", parsed.Name,
			"author_id", author.ID,
			"kind", string(cmdErr.Kind),
			"reason", cmdErr.Message,
		)
	}
	d.session.reply(ctx, author.ID, cmdErr.Message)
}
