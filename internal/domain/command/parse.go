package command

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/riskibarqy/haxfootball-room/internal/domain/roster"
)

type Parsed struct {
	RawName string
	Name    string
	Params  []string
}

// Parse splits a chat line into a lowercased command name and positional
// tokens. Lines without the prefix, or with nothing after it, are not
// commands.
func Parse(prefix, raw string) (Parsed, error) {
	line := strings.TrimSpace(raw)
	if prefix == "" || !strings.HasPrefix(line, prefix) {
		return Parsed{}, NotACommand()
	}
	fields := strings.Fields(strings.TrimPrefix(line, prefix))
	if len(fields) == 0 {
		return Parsed{}, NotACommand()
	}
	return Parsed{
		RawName: fields[0],
		Name:    strings.ToLower(fields[0]),
		Params:  fields[1:],
	}, nil
}

// Gate is the slice of session state permission checks need.
type Gate struct {
	GameActive  bool
	PlayRunning bool
}

// CheckPermission runs the permission and game-phase checks in order and
// reports the first failure.
func CheckPermission(perm Permission, author roster.Player, gate Gate) error {
	if author.AdminLevel < perm.MinAdminLevel {
		return PermissionDenied("You do not have permission to use this command")
	}
	if author.Muted && !perm.AllowedWhileMuted {
		return PermissionDenied("You cannot use this command while muted")
	}
	if perm.RequiresActiveGame && !gate.GameActive {
		return PreconditionFailed("There is no game in progress")
	}
	if perm.ForbiddenDuringActivePlay && gate.PlayRunning {
		return PreconditionFailed("You cannot use this command during a play")
	}
	return nil
}

// ValidateParams checks the count and each positional type, returning the
// normalized tokens: extra tokens folded when SkipMaxCheck is set, enum
// tokens lowercased.
func ValidateParams(schema Params, params []string) ([]string, error) {
	n := len(params)
	if n < schema.Min {
		return nil, ParamInvalid(0, fmt.Sprintf("Expected at least %d parameter(s), got %d", schema.Min, n))
	}

	out := slices.Clone(params)
	if n > schema.Max {
		if !schema.SkipMaxCheck || schema.Max == 0 {
			return nil, ParamInvalid(0, fmt.Sprintf("Expected at most %d parameter(s), got %d", schema.Max, n))
		}
		last := schema.Max - 1
		out = append(out[:last:last], strings.Join(params[last:], " "))
	}

	for i, token := range out {
		typ := Custom()
		if i < len(schema.Types) {
			typ = schema.Types[i]
		}
		normalized, ok := checkParam(typ, token)
		if !ok {
			return nil, ParamInvalid(i+1, fmt.Sprintf("Parameter %d must be: %s", i+1, typ))
		}
		out[i] = normalized
	}
	return out, nil
}

func checkParam(typ ParamType, token string) (string, bool) {
	switch typ.Kind {
	case ParamNumber:
		if _, err := strconv.Atoi(token); err != nil {
			return "", false
		}
		return token, true
	case ParamEnum:
		lowered := strings.ToLower(token)
		if !slices.Contains(typ.Choices, lowered) {
			return "", false
		}
		return lowered, true
	default:
		return token, strings.TrimSpace(token) != ""
	}
}
