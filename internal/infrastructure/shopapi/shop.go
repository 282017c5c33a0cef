package shopapi

import (
	"context"

	"github.com/fastygo/storefront/domain"
)

// CategoryInput is the add/edit category form.
type CategoryInput struct {
	ID          string
	Name        string
	Description string
}

// ProductInput is the add/edit product form. Image is optional.
type ProductInput struct {
	ID          string
	CategoryID  string
	Name        string
	Description string
	Price       string
	Stock       string
	Image       *File
}

type BlogInput struct {
	ID      string
	Title   string
	Content string
	Author  string
	Image   *File
}

func (c *Client) Products(ctx context.Context, shopID string) ([]domain.Product, error) {
	resp, err := c.get(ctx, c.cfg.ShopBaseURL, "get_my_products", Form{"shop_id": shopID})
	if err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) Categories(ctx context.Context, shopID string) ([]domain.Category, error) {
	resp, err := c.get(ctx, c.cfg.ShopBaseURL, "get_categories", Form{"shop_id": shopID})
	if err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (c *Client) Orders(ctx context.Context, shopID string) ([]domain.Order, error) {
	resp, err := c.get(ctx, c.cfg.ShopBaseURL, "get_orders", Form{"shop_id": shopID})
	if err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// Blogs are not tenant scoped.
func (c *Client) Blogs(ctx context.Context) ([]domain.Blog, error) {
	resp, err := c.get(ctx, c.cfg.ShopBaseURL, "get_blogs", nil)
	if err != nil {
		return nil, err
	}
	return resp.Blogs, nil
}

// SaveCategory adds a category, or edits it when in.ID is set.
func (c *Client) SaveCategory(ctx context.Context, shopID string, in CategoryInput) (string, error) {
	form := Form{"shop_id": shopID, "name": in.Name, "description": in.Description}
	markEdit(form, in.ID)
	resp, err := c.post(ctx, c.cfg.ShopBaseURL, "add_category", form)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// SaveProduct adds a product, or edits it through edit_product when in.ID is set.
func (c *Client) SaveProduct(ctx context.Context, shopID string, in ProductInput) (string, error) {
	form := Form{
		"shop_id":     shopID,
		"category_id": in.CategoryID,
		"name":        in.Name,
		"description": in.Description,
		"price":       in.Price,
		"stock":       in.Stock,
	}
	endpoint := "add_product"
	if in.ID != "" {
		endpoint = "edit_product"
		markEdit(form, in.ID)
	}
	resp, err := c.post(ctx, c.cfg.ShopBaseURL, endpoint, form, files(in.Image)...)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) (string, error) {
	resp, err := c.post(ctx, c.cfg.ShopBaseURL, "delete_product", Form{"product_id": productID})
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) SaveBlog(ctx context.Context, in BlogInput) (string, error) {
	form := Form{"title": in.Title, "content": in.Content, "author": in.Author}
	markEdit(form, in.ID)
	resp, err := c.post(ctx, c.cfg.ShopBaseURL, "add_blog", form, files(in.Image)...)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

func markEdit(form Form, id string) {
	if id != "" {
		form["edit"] = "1"
		form["id"] = id
	}
}

func files(f *File) []File {
	if f == nil || len(f.Content) == 0 {
		return nil
	}
	return []File{*f}
}
