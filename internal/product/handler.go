package product

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bukohub/gym-fusion-training-sub001/internal/api"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateProduct godoc
// @Summary      Create product
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateProductRequest  true  "Product data"
// @Success      201      {object}  Product
// @Failure      400      {object}  api.ErrorResponse
// @Router       /products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	var req CreateProductRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// ListProducts godoc
// @Summary      List products
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        active  query     bool  false  "Only active products"
// @Success      200     {array}   Product
// @Router       /products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	products, err := h.service.List(c.Request.Context(), actor, c.Query("active") == "true")
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct godoc
// @Summary      Get product
// @Tags         products
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  Product
// @Failure      404  {object}  api.ErrorResponse
// @Router       /products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// UpdateProduct godoc
// @Summary      Update product
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                true  "Product ID"
// @Param        request  body      UpdateProductRequest  true  "Fields to change"
// @Success      200      {object}  Product
// @Router       /products/{id} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// RestockProduct godoc
// @Summary      Add stock
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string          true  "Product ID"
// @Param        request  body      RestockRequest  true  "Units received"
// @Success      200      {object}  Product
// @Router       /products/{id}/restock [post]
func (h *Handler) RestockProduct(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req RestockRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Restock(c.Request.Context(), actor, id, req.Quantity)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// DeleteProduct godoc
// @Summary      Delete product
// @Tags         products
// @Security     BearerAuth
// @Param        id  path  string  true  "Product ID"
// @Success      204
// @Failure      409  {object}  api.ErrorResponse
// @Router       /products/{id} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		api.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateSale godoc
// @Summary      Record sale
// @Description  Sells quantity units at the current product price and decrements stock atomically.
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateSaleRequest  true  "Sale data"
// @Success      201      {object}  Sale
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /sales [post]
func (h *Handler) CreateSale(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}

	var req CreateSaleRequest
	if !api.BindJSON(c, &req) {
		return
	}

	sale, err := h.service.CreateSale(c.Request.Context(), actor, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sale)
}

func saleFilter(c *gin.Context) (SaleFilter, bool) {
	var filter SaleFilter
	var ok bool
	if filter.ProductID, ok = api.OptionalUUIDQuery(c, "product_id"); !ok {
		return filter, false
	}
	if filter.SoldBy, ok = api.OptionalUUIDQuery(c, "sold_by"); !ok {
		return filter, false
	}
	if filter.From, ok = api.OptionalTimeQuery(c, "from"); !ok {
		return filter, false
	}
	if filter.To, ok = api.OptionalTimeQuery(c, "to"); !ok {
		return filter, false
	}
	return filter, true
}

// ListSales godoc
// @Summary      List sales
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        product_id  query     string  false  "Filter by product"
// @Param        sold_by     query     string  false  "Filter by seller"
// @Param        from        query     string  false  "Created at lower bound (RFC3339)"
// @Param        to          query     string  false  "Created at upper bound (RFC3339)"
// @Success      200         {array}   SaleWithProduct
// @Router       /sales [get]
func (h *Handler) ListSales(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	filter, ok := saleFilter(c)
	if !ok {
		return
	}

	sales, err := h.service.ListSales(c.Request.Context(), actor, filter)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sales)
}

// SalesSummary godoc
// @Summary      Sales totals
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        from  query     string  false  "Created at lower bound (RFC3339)"
// @Param        to    query     string  false  "Created at upper bound (RFC3339)"
// @Success      200   {object}  SalesSummary
// @Router       /sales/summary [get]
func (h *Handler) SalesSummary(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	filter, ok := saleFilter(c)
	if !ok {
		return
	}

	summary, err := h.service.SalesSummary(c.Request.Context(), actor, filter)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetSale godoc
// @Summary      Get sale
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  SaleWithProduct
// @Failure      404  {object}  api.ErrorResponse
// @Router       /sales/{id} [get]
func (h *Handler) GetSale(c *gin.Context) {
	actor, ok := api.Actor(c)
	if !ok {
		return
	}
	id, ok := api.UUIDParam(c, "id")
	if !ok {
		return
	}

	sale, err := h.service.GetSale(c.Request.Context(), actor, id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sale)
}
