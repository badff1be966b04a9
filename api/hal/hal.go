// Package hal renders carts and items as HAL documents.
package hal

import (
	"github.com/angelmondragon/halcart/internal/cart"
)

const (
	ContentType = "application/hal+json"

	DefaultRelsHref = "/public/rels/{rel}"
	curieName       = "cart"
)

type Link struct {
	Href  string `json:"href"`
	Title string `json:"title,omitempty"`
}

type Curie struct {
	Name      string `json:"name"`
	Href      string `json:"href"`
	Templated bool   `json:"templated"`
}

type CartLinks struct {
	Self         Link    `json:"self"`
	Curies       []Curie `json:"curies"`
	AddItems     Link    `json:"cart:addItems"`
	ReplaceItems Link    `json:"cart:replaceItems"`
	Delete       Link    `json:"cart:delete"`
	Item         []Link  `json:"item"`
}

type CartEmbedded struct {
	Item []ItemDocument `json:"item"`
}

type CartDocument struct {
	Links         CartLinks    `json:"_links"`
	ItemCount     int          `json:"itemCount"`
	TotalQuantity int          `json:"totalQuantity"`
	Embedded      CartEmbedded `json:"_embedded"`
}

type ItemLinks struct {
	Self        Link    `json:"self"`
	Curies      []Curie `json:"curies"`
	PatchItem   Link    `json:"cart:patchItem"`
	ReplaceItem Link    `json:"cart:replaceItem"`
	Delete      Link    `json:"cart:delete"`
}

type ItemDocument struct {
	Title    string    `json:"title"`
	Quantity int       `json:"quantity"`
	Links    ItemLinks `json:"_links"`
}

// Renderer builds documents; it holds no state beyond the curie template.
type Renderer struct {
	relsHref string
}

func NewRenderer(relsHref string) Renderer {
	if relsHref == "" {
		relsHref = DefaultRelsHref
	}
	return Renderer{relsHref: relsHref}
}

func CartHref(id string) string {
	return "/cart/" + id
}

func ItemHref(id string) string {
	return "/cart/item/" + id
}

func (r Renderer) curies() []Curie {
	return []Curie{{Name: curieName, Href: r.relsHref, Templated: true}}
}

// Cart renders c with its items both referenced and embedded, in cart order.
func (r Renderer) Cart(c cart.Cart) CartDocument {
	refs := make([]Link, 0, len(c.Items))
	embedded := make([]ItemDocument, 0, len(c.Items))
	for _, item := range c.Items {
		refs = append(refs, Link{Href: ItemHref(item.ID), Title: item.Title})
		embedded = append(embedded, r.Item(item))
	}

	self := Link{Href: CartHref(c.ID)}
	return CartDocument{
		Links: CartLinks{
			Self:         self,
			Curies:       r.curies(),
			AddItems:     self,
			ReplaceItems: self,
			Delete:       self,
			Item:         refs,
		},
		ItemCount:     len(c.Items),
		TotalQuantity: c.TotalQuantity(),
		Embedded:      CartEmbedded{Item: embedded},
	}
}

func (r Renderer) Item(i cart.Item) ItemDocument {
	self := Link{Href: ItemHref(i.ID)}
	return ItemDocument{
		Title:    i.Title,
		Quantity: i.Quantity,
		Links: ItemLinks{
			Self:        self,
			Curies:      r.curies(),
			PatchItem:   self,
			ReplaceItem: self,
			Delete:      self,
		},
	}
}
