package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/storefront/services/cart"
	"github.com/tech-arch1tect/storefront/session"
)

type CartHandler struct {
	cart *cart.Service
}

func NewCartHandler(cartService *cart.Service) *CartHandler {
	return &CartHandler{cart: cartService}
}

func (h *CartHandler) List(c echo.Context) error {
	items, err := h.cart.List(c.Request().Context(), session.GetUserID(c))
	if err != nil {
		return apiError(err)
	}

	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Quantity)
	}

	return c.JSON(http.StatusOK, CartResponse{Envelope: ok(""), Items: items, Total: total})
}

func (h *CartHandler) Add(c echo.Context) error {
	var req AddToCartRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, merged, err := h.cart.Add(c.Request().Context(), session.GetUserID(c), cart.AddInput{
		Ref:      req.Ref,
		Color:    req.Color,
		Price:    *req.Price,
		Quantity: *req.Quantity,
		Image:    req.Image,
	})
	if err != nil {
		return apiError(err)
	}

	message := "Item added to cart"
	if merged {
		message = "Cart quantity updated"
	}
	return c.JSON(http.StatusOK, CartItemResponse{Envelope: ok(message), Item: item})
}

func (h *CartHandler) Update(c echo.Context) error {
	var req UpdateCartRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.cart.Update(c.Request().Context(), session.GetUserID(c), req.ID, *req.Quantity); err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, ok("Cart updated"))
}

func (h *CartHandler) Remove(c echo.Context) error {
	var req RemoveFromCartRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.cart.Remove(c.Request().Context(), session.GetUserID(c), req.ID); err != nil {
		return apiError(err)
	}

	return c.JSON(http.StatusOK, ok("Item removed from cart"))
}
