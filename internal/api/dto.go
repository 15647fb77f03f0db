package api

import "github.com/vladislavdragonenkov/storefront/internal/domain"

// Тело POST /products. Указатели отличают отсутствующее поле от нулевого значения.
type sizeRequest struct {
	Size     *string `json:"size" validate:"required"`
	Quantity *int    `json:"quantity" validate:"required,gte=0"`
}

type createProductRequest struct {
	Name  *string       `json:"name" validate:"required,min=1"`
	Price *float64      `json:"price" validate:"required,gt=0"`
	Sizes []sizeRequest `json:"sizes" validate:"required,min=1,dive"`
}

func (r createProductRequest) toDomain() domain.Product {
	sizes := make([]domain.SizeQuantity, 0, len(r.Sizes))
	for _, s := range r.Sizes {
		sizes = append(sizes, domain.SizeQuantity{Size: *s.Size, Quantity: *s.Quantity})
	}
	return domain.Product{Name: *r.Name, Price: *r.Price, Sizes: sizes}
}

// Тело POST /orders.
type orderItemRequest struct {
	ProductID *string `json:"productId" validate:"required"`
	Qty       *int    `json:"qty" validate:"required,gt=0"`
}

type createOrderRequest struct {
	UserID *string            `json:"userId" validate:"required"`
	Items  []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (r createOrderRequest) toDomain() []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.OrderItem{ProductID: *it.ProductID, Qty: *it.Qty})
	}
	return items
}

type createdResponse struct {
	ID string `json:"id"`
}

type welcomeResponse struct {
	Message string `json:"message"`
}

type pageResponse struct {
	Next     *string `json:"next"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Previous *string `json:"previous"`
}

func toPageResponse(p domain.Page) pageResponse {
	return pageResponse{Next: p.Next, Limit: p.Limit, Offset: p.Offset, Previous: p.Previous}
}

type productListItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type productListResponse struct {
	Data []productListItem `json:"data"`
	Page pageResponse      `json:"page"`
}

type productDetailsResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type orderItemResponse struct {
	ProductDetails productDetailsResponse `json:"productDetails"`
	Qty            int                    `json:"qty"`
}

type orderResponse struct {
	ID    string              `json:"id"`
	Items []orderItemResponse `json:"items"`
	Total float64             `json:"total"`
}

type orderListResponse struct {
	Data []orderResponse `json:"data"`
	Page pageResponse    `json:"page"`
}

func toProductListResponse(products []domain.ProductSummary, page domain.Page) productListResponse {
	data := make([]productListItem, 0, len(products))
	for _, p := range products {
		data = append(data, productListItem{ID: p.ID, Name: p.Name, Price: p.Price})
	}
	return productListResponse{Data: data, Page: toPageResponse(page)}
}

func toOrderListResponse(page domain.OrderPage) orderListResponse {
	data := make([]orderResponse, 0, len(page.Data))
	for _, view := range page.Data {
		items := make([]orderItemResponse, 0, len(view.Items))
		for _, it := range view.Items {
			items = append(items, orderItemResponse{
				ProductDetails: productDetailsResponse{ID: it.ProductDetails.ID, Name: it.ProductDetails.Name},
				Qty:            it.Qty,
			})
		}
		data = append(data, orderResponse{ID: view.ID, Items: items, Total: view.Total})
	}
	return orderListResponse{Data: data, Page: toPageResponse(page.Page)}
}
