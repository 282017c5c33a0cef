package shop

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fastygo/storefront/domain"
	"github.com/fastygo/storefront/internal/infrastructure/shopapi"
	appLogger "github.com/fastygo/storefront/pkg/logger"
	"github.com/fastygo/storefront/pkg/validate"
)

// Catalog is the shop API surface used by the admin dashboard and storefront.
type Catalog interface {
	Products(ctx context.Context, shopID string) ([]domain.Product, error)
	Categories(ctx context.Context, shopID string) ([]domain.Category, error)
	Orders(ctx context.Context, shopID string) ([]domain.Order, error)
	Blogs(ctx context.Context) ([]domain.Blog, error)
	SaveCategory(ctx context.Context, shopID string, in shopapi.CategoryInput) (string, error)
	SaveProduct(ctx context.Context, shopID string, in shopapi.ProductInput) (string, error)
	DeleteProduct(ctx context.Context, productID string) (string, error)
	SaveBlog(ctx context.Context, in shopapi.BlogInput) (string, error)
}

type UseCase struct {
	catalog Catalog
	logger  *zap.Logger
}

func New(catalog Catalog, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{catalog: catalog, logger: logger}
}

// Dashboard loads the four lists concurrently. A list that fails to load
// counts as empty so one broken endpoint does not blank the page.
func (uc *UseCase) Dashboard(ctx context.Context, shopID string) (*domain.DashboardSummary, error) {
	if err := requireShop(shopID); err != nil {
		return nil, err
	}
	logger := appLogger.WithRequestID(ctx, uc.logger)
	summary := &domain.DashboardSummary{ShopID: shopID}

	var g errgroup.Group
	count := func(name string, dst *int, load func() (int, error)) {
		g.Go(func() error {
			n, err := load()
			if err != nil {
				logger.Warn("dashboard list unavailable", zap.String("list", name), zap.Error(err))
				return nil
			}
			*dst = n
			return nil
		})
	}
	count("products", &summary.Products, func() (int, error) {
		items, err := uc.catalog.Products(ctx, shopID)
		return len(items), err
	})
	count("categories", &summary.Categories, func() (int, error) {
		items, err := uc.catalog.Categories(ctx, shopID)
		return len(items), err
	})
	count("orders", &summary.Orders, func() (int, error) {
		items, err := uc.catalog.Orders(ctx, shopID)
		return len(items), err
	})
	count("blogs", &summary.Blogs, func() (int, error) {
		items, err := uc.catalog.Blogs(ctx)
		return len(items), err
	})
	_ = g.Wait()

	return summary, nil
}

func (uc *UseCase) Categories(ctx context.Context, shopID string) ([]domain.Category, error) {
	if err := requireShop(shopID); err != nil {
		return nil, err
	}
	return uc.catalog.Categories(ctx, shopID)
}

func (uc *UseCase) SaveCategory(ctx context.Context, shopID string, in shopapi.CategoryInput) (string, error) {
	if err := requireShop(shopID); err != nil {
		return "", err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := (validate.Errors{}).Check("name", validate.Required(in.Name, "Category name")).Err(); err != nil {
		return "", err
	}
	return uc.catalog.SaveCategory(ctx, shopID, in)
}

func (uc *UseCase) Products(ctx context.Context, shopID string) ([]domain.Product, error) {
	if err := requireShop(shopID); err != nil {
		return nil, err
	}
	return uc.catalog.Products(ctx, shopID)
}

// StorefrontProducts lists a shop's catalogue for public browsing.
func (uc *UseCase) StorefrontProducts(ctx context.Context, shopID string) ([]domain.Product, error) {
	if strings.TrimSpace(shopID) == "" {
		return nil, domain.FieldError(domain.ErrCodeInvalid, "Shop ID is required", map[string]string{"shop_id": "Shop ID is required"})
	}
	products, err := uc.catalog.Products(ctx, shopID)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (uc *UseCase) SaveProduct(ctx context.Context, shopID string, in shopapi.ProductInput) (string, error) {
	if err := requireShop(shopID); err != nil {
		return "", err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Price = strings.TrimSpace(in.Price)
	errs := validate.Errors{}.
		Check("name", validate.Required(in.Name, "Product name")).
		Check("price", validate.Required(in.Price, "Price"))
	if err := errs.Err(); err != nil {
		return "", err
	}
	return uc.catalog.SaveProduct(ctx, shopID, in)
}

func (uc *UseCase) DeleteProduct(ctx context.Context, shopID, productID string) (string, error) {
	if err := requireShop(shopID); err != nil {
		return "", err
	}
	if strings.TrimSpace(productID) == "" {
		return "", domain.FieldError(domain.ErrCodeInvalid, "No item selected", map[string]string{"id": "No item selected"})
	}
	msg, err := uc.catalog.DeleteProduct(ctx, productID)
	if err != nil {
		return "", err
	}
	appLogger.WithRequestID(ctx, uc.logger).Info("product deleted", zap.String("shop_id", shopID), zap.String("product_id", productID))
	return msg, nil
}

func (uc *UseCase) Orders(ctx context.Context, shopID string) ([]domain.Order, error) {
	if err := requireShop(shopID); err != nil {
		return nil, err
	}
	return uc.catalog.Orders(ctx, shopID)
}

func (uc *UseCase) Blogs(ctx context.Context) ([]domain.Blog, error) {
	return uc.catalog.Blogs(ctx)
}

func (uc *UseCase) SaveBlog(ctx context.Context, in shopapi.BlogInput) (string, error) {
	in.Title = strings.TrimSpace(in.Title)
	errs := validate.Errors{}.
		Check("title", validate.Required(in.Title, "Title")).
		Check("content", validate.Required(in.Content, "Content"))
	if err := errs.Err(); err != nil {
		return "", err
	}
	return uc.catalog.SaveBlog(ctx, in)
}

func requireShop(shopID string) error {
	if strings.TrimSpace(shopID) == "" {
		return domain.ErrShopNotFound
	}
	return nil
}
