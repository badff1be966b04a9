package cart

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Cart is a point-in-time snapshot of a cart and its items, in collection order.
type Cart struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Items     []Item
}

func (c Cart) Version() string { return version(c.UpdatedAt) }

// TotalQuantity sums the quantity of every item in the cart.
func (c Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

type Item struct {
	ID        string
	CartID    string
	Title     string
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i Item) Version() string { return version(i.UpdatedAt) }

// Metadata is what precondition checks need without copying the entity.
type Metadata struct {
	ID        string
	UpdatedAt time.Time
}

func (m Metadata) Version() string { return version(m.UpdatedAt) }

func version(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

// MaxQuantity bounds a single item quantity so cart totals cannot overflow.
const MaxQuantity = math.MaxInt32

// Quantity is an item quantity as supplied by a caller, before validation.
// It decodes from either a JSON number or a JSON string.
type Quantity string

// Qty builds a Quantity from an integer.
func Qty(n int) Quantity {
	return Quantity(strconv.Itoa(n))
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*q = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Quantity(s)
		return nil
	}
	*q = Quantity(raw)
	return nil
}

// int parses the quantity. Whole numbers written in float notation, such as
// 3.0 or 1e1, are accepted; fractions are not.
func (q Quantity) int() (int, bool) {
	raw := strings.TrimSpace(string(q))
	if n, err := strconv.Atoi(raw); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > MaxQuantity {
		return 0, false
	}
	return int(f), true
}

// ItemInput is the caller-provided content of one item. Fields other than
// title and quantity are never retained.
type ItemInput struct {
	Title    string   `json:"title"`
	Quantity Quantity `json:"quantity"`
}

// ItemPatch carries only the fields a caller wants to overwrite.
type ItemPatch struct {
	Title    *string   `json:"title,omitempty"`
	Quantity *Quantity `json:"quantity,omitempty"`
}

// Apply merges the patch over the current item content.
func (p ItemPatch) Apply(current Item) ItemInput {
	merged := ItemInput{Title: current.Title, Quantity: Qty(current.Quantity)}
	if p.Title != nil {
		merged.Title = *p.Title
	}
	if p.Quantity != nil {
		merged.Quantity = *p.Quantity
	}
	return merged
}

// Stats reports how many entities the store holds.
type Stats struct {
	Carts int
	Items int
}
