package physics

import (
	"fmt"

	"github.com/san-kum/dpsim/internal/dynamo"
)

// ErrSingular is returned by Derive when the mass-matrix denominator is zero.
var ErrSingular = fmt.Errorf("physics: double pendulum %w", dynamo.ErrSingular)
