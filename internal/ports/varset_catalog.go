package ports

import "github.com/aalvaropc/kipu/internal/domain"

type VarSetCatalog interface {
	ListVarSets(root string) ([]domain.VarSetRef, error)
}
