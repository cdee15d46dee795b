// Package catalog manages products, raw materials and material purchases.
package catalog

import (
	"context"

	"github.com/google/uuid"
	appactivity "github.com/iwaqasmaqbool/gms-sub002/internal/application/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/application/transaction"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/activity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/catalog"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/identity"
	"github.com/iwaqasmaqbool/gms-sub002/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// editorRoles may change the catalog and record purchases
var editorRoles = []identity.Role{identity.RoleAdmin, identity.RoleOwner, identity.RoleIncharge}

// CatalogService handles products, raw materials and purchases
type CatalogService struct {
	repos  transaction.Repositories
	scope  transaction.Scope
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(repos transaction.Repositories, scope transaction.Scope, logger *zap.Logger) *CatalogService {
	return &CatalogService{repos: repos, scope: scope, logger: logger}
}

// CreateProduct adds a product with a unique SKU
func (s *CatalogService) CreateProduct(ctx context.Context, actor identity.Actor, input CreateProductInput) (*catalog.Product, error) {
	if err := actor.Require(editorRoles...); err != nil {
		return nil, err
	}
	p, err := catalog.NewProduct(input.SKU, input.Name, input.Category, input.Description, input.SalePrice)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		exists, err := tx.Products().ExistsBySKU(ctx, p.SKU)
		if err != nil {
			return err
		}
		if exists {
			return shared.Errorf(shared.CodeAlreadyExists, "SKU %s already exists", p.SKU)
		}
		if err := tx.Products().Create(ctx, p); err != nil {
			return err
		}
		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionCreate, activity.ModuleCatalog, &p.ID,
			"Created product %s (%s)", p.Name, p.SKU)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProducts returns a page of products
func (s *CatalogService) ListProducts(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Product], error) {
	filter = filter.Normalize()
	items, total, err := s.repos.Products().FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[catalog.Product]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ActiveProducts lists every active product, for pickers
func (s *CatalogService) ActiveProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.repos.Products().FindAllActive(ctx)
}

// CreateMaterial adds a raw material with a unique code and zero stock
func (s *CatalogService) CreateMaterial(ctx context.Context, actor identity.Actor, input CreateMaterialInput) (*catalog.RawMaterial, error) {
	if err := actor.Require(editorRoles...); err != nil {
		return nil, err
	}
	m, err := catalog.NewRawMaterial(input.Code, input.Name, input.Unit, input.MinStockLevel)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		exists, err := tx.Materials().ExistsByCode(ctx, m.Code)
		if err != nil {
			return err
		}
		if exists {
			return shared.Errorf(shared.CodeAlreadyExists, "Material code %s already exists", m.Code)
		}
		if err := tx.Materials().Create(ctx, m); err != nil {
			return err
		}
		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionCreate, activity.ModuleCatalog, &m.ID,
			"Created raw material %s (%s)", m.Name, m.Code)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMaterials returns a page of raw materials with their low-stock flag and average cost
func (s *CatalogService) ListMaterials(ctx context.Context, filter shared.Filter) (shared.Paginated[MaterialView], error) {
	filter = filter.Normalize()
	items, total, err := s.repos.Materials().FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[MaterialView]{}, err
	}
	views := make([]MaterialView, len(items))
	for i := range items {
		avg, err := s.repos.Purchases().AverageUnitCost(ctx, items[i].ID)
		if err != nil {
			return shared.Paginated[MaterialView]{}, err
		}
		views[i] = MaterialView{RawMaterial: items[i], LowStock: items[i].IsLowStock(), AverageUnitCost: avg}
	}
	return shared.NewPaginated(views, total, filter.Page, filter.PageSize), nil
}

// AllMaterials lists every raw material, for pickers
func (s *CatalogService) AllMaterials(ctx context.Context) ([]catalog.RawMaterial, error) {
	return s.repos.Materials().FindAllList(ctx)
}

// RecordPurchase inserts the purchase and adds its quantity to the material stock in one transaction
func (s *CatalogService) RecordPurchase(ctx context.Context, actor identity.Actor, input RecordPurchaseInput) (*catalog.Purchase, error) {
	if err := actor.Require(editorRoles...); err != nil {
		return nil, err
	}
	p, err := catalog.NewPurchase(input.MaterialID, input.SupplierName, input.Quantity, input.UnitPrice,
		input.PurchaseDate, input.InvoiceNumber, actor.UserID, input.Notes)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(tx transaction.Repositories) error {
		m, err := tx.Materials().FindByID(ctx, p.MaterialID)
		if err != nil {
			return err
		}
		if err := tx.Purchases().Create(ctx, p); err != nil {
			return err
		}
		if err := tx.Materials().AddStock(ctx, m.ID, p.Quantity); err != nil {
			return err
		}
		return appactivity.Record(ctx, tx.ActivityLogs(), actor, activity.ActionPurchase, activity.ModulePurchases, &p.ID,
			"Purchased %s %s of %s from %s for %s", p.Quantity.String(), m.Unit, m.Name, p.SupplierName, p.TotalAmount.StringFixed(2))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase recorded",
		zap.String("purchase_id", p.ID.String()),
		zap.String("material_id", p.MaterialID.String()),
		zap.String("total", p.TotalAmount.StringFixed(2)),
	)
	return p, nil
}

// ListPurchases returns a page of purchases
func (s *CatalogService) ListPurchases(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.PurchaseRow], error) {
	filter = filter.Normalize()
	items, total, err := s.repos.Purchases().FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[catalog.PurchaseRow]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// AverageUnitCost is the weighted average purchase price of a material
func (s *CatalogService) AverageUnitCost(ctx context.Context, materialID uuid.UUID) (decimal.Decimal, error) {
	return s.repos.Purchases().AverageUnitCost(ctx, materialID)
}

// PurchaseTotal sums the purchases matching the filter, ignoring pagination
func (s *CatalogService) PurchaseTotal(ctx context.Context, filter shared.Filter) (decimal.Decimal, error) {
	return s.repos.Purchases().SumTotal(ctx, filter.Normalize())
}
