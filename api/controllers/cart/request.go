package cart

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/halcart/internal/cart"
)

// CreateCartRequest accepts a missing or null items list as an empty cart.
type CreateCartRequest struct {
	Items []cart.ItemInput `json:"items"`
}

type CartItemsRequest struct {
	Items *[]cart.ItemInput `json:"items" validate:"required"`
}

type ItemRequest struct {
	Item *cart.ItemInput `json:"item" validate:"required"`
}

type ItemPatchRequest struct {
	Item *cart.ItemPatch `json:"item" validate:"required"`
}

// conditionHeader joins every occurrence of a precondition header so a tag
// list split across lines is read as one list.
func conditionHeader(r *http.Request, name string) string {
	return strings.Join(r.Header.Values(name), ",")
}

func ifMatch(r *http.Request) string {
	return conditionHeader(r, "If-Match")
}

func ifNoneMatch(r *http.Request) string {
	return conditionHeader(r, "If-None-Match")
}
