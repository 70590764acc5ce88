package ports

import (
	"context"

	"mechintegrity/domain/material"
)

// MaterialTable is the capability the resolver uses to reach allowable
// stress tables. Implementations are read-only after construction and safe
// for unbounded concurrent readers.
type MaterialTable interface {
	// Points returns the tabulated temperature rows for a material in
	// ascending temperature order, plus their provenance. A material with
	// no table fails with PropertyMissing.
	Points(ctx context.Context, ref material.Ref) ([]material.Point, material.Provenance, error)

	// Coverage lists every tabulated material with its temperature window.
	Coverage(ctx context.Context) ([]material.Coverage, error)
}
