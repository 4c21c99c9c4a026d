package orders

import (
	"strconv"
	"time"

	"github.com/literasipelajar/bookstore-backend/internal/rtdb"
)

type PaymentMethod string

const (
	PaymentQR  PaymentMethod = "QR"
	PaymentCOD PaymentMethod = "COD"
)

// Placeholder for records missing a title.
const UntitledOrder = "Pesanan Tanpa Judul"

// Order is a persisted purchase intent. TotalPrice is computed once at
// creation and never recomputed, even when the status changes later.
type Order struct {
	ID              string        `json:"id"`
	BookID          string        `json:"bookId"`
	Title           string        `json:"title"`
	Quantity        int           `json:"quantity"`
	TotalPrice      int           `json:"totalPrice"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	ShippingAddress string        `json:"shippingAddress"`
	OrderDate       time.Time     `json:"orderDate"`
	Status          Status        `json:"status"`
	UserID          string        `json:"userId"`
}

// fields flattens an order into the string field map the store keeps.
func (o Order) fields() map[string]string {
	return map[string]string{
		"bookId":          o.BookID,
		"title":           o.Title,
		"quantity":        strconv.Itoa(o.Quantity),
		"totalPrice":      strconv.Itoa(o.TotalPrice),
		"paymentMethod":   string(o.PaymentMethod),
		"shippingAddress": o.ShippingAddress,
		"orderDate":       o.OrderDate.Format(time.RFC3339),
		"status":          string(o.Status),
		"userId":          o.UserID,
	}
}

// decodeOrder turns a raw store record into a typed order. The store is not
// trusted: missing or malformed fields get documented defaults instead of
// propagating as garbage. now supplies the orderDate fallback.
func decodeOrder(rec rtdb.Record, now time.Time) Order {
	f := rec.Fields
	o := Order{
		ID:              rec.ID,
		BookID:          f["bookId"],
		Title:           f["title"],
		PaymentMethod:   PaymentMethod(f["paymentMethod"]),
		ShippingAddress: f["shippingAddress"],
		Status:          Status(f["status"]),
		UserID:          f["userId"],
	}
	if o.Title == "" {
		o.Title = UntitledOrder
	}
	if o.Status == "" {
		o.Status = StatusPlaced
	}
	o.Quantity = parseIntField(f["quantity"], 1)
	o.TotalPrice = parseIntField(f["totalPrice"], 0)
	if t, err := time.Parse(time.RFC3339, f["orderDate"]); err == nil {
		o.OrderDate = t
	} else {
		o.OrderDate = now
	}
	return o
}

func parseIntField(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
