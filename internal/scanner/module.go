package scanner

import (
	"context"

	"github.com/subsort/subsort/pkg/types"
)

// Module is the core interface every analysis module implements. A
// module extracts one family of facts about a target and returns them as
// a flat field mapping. Modules degrade to best-effort partial results;
// a returned error is recorded against the target, never fatal.
type Module interface {
	Name() string
	Description() string
	Scan(ctx context.Context, target types.Target) (types.Fields, error)
}
