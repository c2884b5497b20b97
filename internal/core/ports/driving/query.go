package driving

import (
	"context"

	"github.com/pavilion-labs/clubby/internal/core/domain"
)

// QueryService answers free-text questions. RouteQuery is total: it
// returns a well-formed Answer for every input and never propagates an
// error or panic to the caller.
type QueryService interface {
	RouteQuery(ctx context.Context, query domain.Query) domain.Answer
}
