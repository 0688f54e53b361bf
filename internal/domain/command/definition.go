// Package command holds the static command table and the pure parts of the
// dispatch pipeline: parsing, permission checks and parameter validation.
package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/riskibarqy/haxfootball-room/internal/domain/roster"
)

// Admin levels used by command permissions.
const (
	LevelPlayer = 0
	LevelAdmin  = 1
	LevelHost   = 2
)

type Permission struct {
	MinAdminLevel             int `validate:"gte=0,lte=2"`
	AllowedWhileMuted         bool
	RequiresActiveGame        bool
	ForbiddenDuringActivePlay bool
}

type ParamKind string

const (
	ParamPlayer ParamKind = "player"
	ParamNumber ParamKind = "number"
	ParamCustom ParamKind = "custom"
	ParamEnum   ParamKind = "enum"
)

type ParamType struct {
	Kind    ParamKind `validate:"required,oneof=player number custom enum"`
	Choices []string  `validate:"required_if=Kind enum,dive,required,lowercase"`
}

func Player() ParamType { return ParamType{Kind: ParamPlayer} }

func Number() ParamType { return ParamType{Kind: ParamNumber} }

func Custom() ParamType { return ParamType{Kind: ParamCustom} }

// Enum accepts one of a fixed set of tokens, compared case-insensitively.
func Enum(choices ...string) ParamType {
	lowered := make([]string, len(choices))
	for i, c := range choices {
		lowered[i] = strings.ToLower(c)
	}
	return ParamType{Kind: ParamEnum, Choices: lowered}
}

// String is the label shown in help and param errors.
func (p ParamType) String() string {
	switch p.Kind {
	case ParamPlayer:
		return "Player name or ID"
	case ParamNumber:
		return "Number"
	case ParamEnum:
		return strings.Join(p.Choices, ", ")
	default:
		return "Custom"
	}
}

// Params is the positional schema. With SkipMaxCheck, tokens past Max are
// folded into the last parameter as free text.
type Params struct {
	Min          int `validate:"gte=0"`
	Max          int `validate:"gtefield=Min"`
	SkipMaxCheck bool
	Types        []ParamType `validate:"dive"`
}

// Invocation is one parsed command from one author. It lives for a single
// dispatch.
type Invocation struct {
	Author  roster.Player
	RawName string
	Name    string
	Params  []string
}

func (i Invocation) HasNoParams() bool {
	return len(i.Params) == 0
}

// Param returns the n-th (0-based) parameter or "".
func (i Invocation) Param(n int) string {
	if n < 0 || n >= len(i.Params) {
		return ""
	}
	return i.Params[n]
}

func (i Invocation) ParamsString() string {
	return strings.Join(i.Params, " ")
}

// Handler runs a validated command against the session environment E.
type Handler[E any] func(ctx context.Context, env E, inv Invocation) error

// Definition is an immutable command record. The handler is a reference
// only; schema checks never call it.
type Definition[E any] struct {
	Name        string   `validate:"required,lowercase"`
	Aliases     []string `validate:"dive,required,lowercase"`
	Description string   `validate:"required"`
	Usage       []string
	Visible     bool
	Permission  Permission
	Params      Params
	Handler     Handler[E] `validate:"required"`
}

// HelpLine renders "name [alias]: description | !usage".
func (d *Definition[E]) HelpLine(prefix string) string {
	usage := d.Name
	if len(d.Usage) > 0 {
		usage = strings.Join(d.Usage, ", "+prefix)
	}
	alias := ""
	if len(d.Aliases) > 0 {
		alias = fmt.Sprintf(" [%s]", strings.Join(d.Aliases, ", "))
	}
	return fmt.Sprintf("%s%s: %s | %s%s", d.Name, alias, d.Description, prefix, usage)
}
