package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/game"
)

const (
	orderingParam = "ordering"
	limitParam    = "limit"
)

// Ordering binds `?ordering=field,-other`; a leading "-" sorts descending.
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// queryLimit returns the `limit` query param. Missing or malformed values give 0.
func queryLimit(ctx echo.Context) int {
	n, err := strconv.Atoi(ctx.QueryParam(limitParam))
	if err != nil {
		return 0
	}
	return n
}

// bindAttemptFilter reads the attempt filters from the query string.
// A malformed `passed` is a validation error rather than "no filter".
func bindAttemptFilter(ctx echo.Context) (game.AttemptFilter, error) {
	filter := game.AttemptFilter{
		PlayerID: ctx.QueryParam("player_id"),
		LevelID:  ctx.QueryParam("level_id"),
		Limit:    queryLimit(ctx),
	}
	if raw := ctx.QueryParam("passed"); raw != "" {
		passed, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, core.NewValidationError(nil, core.FieldError{Field: "passed", Error: "must be true or false"})
		}
		filter.Passed = &passed
	}
	return filter, nil
}
