package catalog

import (
	"context"

	"github.com/Gonmore/farmasnt-sub004/internal/domain/repository"
)

// CatalogRepos repositorios atados a la transacción activa de RunCatalog.
type CatalogRepos struct {
	Products      repository.ProductRepository
	Presentations repository.PresentationRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD. Degradar la default
// anterior y promover la nueva son dos escrituras que caen o confirman juntas:
// un fallo entre ambas no puede dejar al producto sin default.
type TxRunner interface {
	RunCatalog(ctx context.Context, fn func(r CatalogRepos) error) error
}
