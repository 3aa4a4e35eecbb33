package ports

import "github.com/aalvaropc/kipu/internal/domain"

// VarSetLoader loads variable sets from a source (e.g., filesystem).
type VarSetLoader interface {
	LoadVarSet(nameOrPath string) (domain.VarSet, error)
}
