package orders

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/literasipelajar/bookstore-backend/internal/catalog"
	"github.com/literasipelajar/bookstore-backend/internal/errs"
	"github.com/literasipelajar/bookstore-backend/internal/rtdb"
)

var testNow = time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)

func newTestService(store rtdb.Store) *Service {
	return &Service{
		Store:   store,
		Catalog: catalog.Default(),
		Now:     func() time.Time { return testNow },
	}
}

func TestPlaceOrder(t *testing.T) {
	ctx := context.Background()
	store := rtdb.NewMemoryStore()
	svc := newTestService(store)

	// book 2 = Algoritma, 92000
	order, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		BookID:        "2",
		Quantity:      2,
		PaymentMethod: "QR",
		Address:       "Jl. Kaliurang No. 123, Sleman, Yogyakarta",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "Algoritma", order.Title)
	assert.Equal(t, 184000, order.TotalPrice)
	assert.Equal(t, StatusPlaced, order.Status)
	assert.True(t, strings.HasPrefix(order.UserID, "anonymous_user_"))

	// the returned id resolves to that exact record
	rec, err := store.Get(ctx, rtdb.TreeOrders, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "2", rec.Fields["bookId"])
	assert.Equal(t, "Algoritma", rec.Fields["title"])
	assert.Equal(t, "2", rec.Fields["quantity"])
	assert.Equal(t, "184000", rec.Fields["totalPrice"])
	assert.Equal(t, "QR", rec.Fields["paymentMethod"])
	assert.Equal(t, "Dipesan", rec.Fields["status"])
	assert.Equal(t, testNow.Format(time.RFC3339), rec.Fields["orderDate"])

	got, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order, got)
}

func TestPlaceOrderAddressIsTrimmed(t *testing.T) {
	ctx := context.Background()
	store := rtdb.NewMemoryStore()
	svc := newTestService(store)

	order, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		BookID:        "1",
		Quantity:      1,
		PaymentMethod: "COD",
		Address:       "   Jl. Malioboro No. 1, Yogyakarta   ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jl. Malioboro No. 1, Yogyakarta", order.ShippingAddress)
}

func TestPlaceOrderValidation(t *testing.T) {
	valid := PlaceOrderInput{
		BookID:        "2",
		Quantity:      1,
		PaymentMethod: "COD",
		Address:       "Jl. Kaliurang No. 123, Sleman",
	}

	cases := []struct {
		name  string
		mod   func(in *PlaceOrderInput)
		field string
	}{
		{"zero quantity", func(in *PlaceOrderInput) { in.Quantity = 0 }, "quantity"},
		{"negative quantity", func(in *PlaceOrderInput) { in.Quantity = -3 }, "quantity"},
		{"missing payment method", func(in *PlaceOrderInput) { in.PaymentMethod = "" }, "paymentMethod"},
		{"unknown payment method", func(in *PlaceOrderInput) { in.PaymentMethod = "TRANSFER" }, "paymentMethod"},
		{"short address", func(in *PlaceOrderInput) { in.Address = "short" }, "address"},
		{"whitespace-padded short address", func(in *PlaceOrderInput) { in.Address = "   abcdef   " }, "address"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := rtdb.NewMemoryStore()
			svc := newTestService(store)

			in := valid
			tc.mod(&in)

			_, err := svc.PlaceOrder(ctx, in)
			var ve *errs.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)

			// no store mutation happened
			recs, err := store.List(ctx, rtdb.TreeOrders)
			require.NoError(t, err)
			assert.Empty(t, recs)
		})
	}
}

func TestPlaceOrderUnknownBook(t *testing.T) {
	ctx := context.Background()
	store := rtdb.NewMemoryStore()
	svc := newTestService(store)

	_, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		BookID:        "999",
		Quantity:      1,
		PaymentMethod: "QR",
		Address:       "Jl. Kaliurang No. 123, Sleman",
	})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	recs, err := store.List(ctx, rtdb.TreeOrders)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestUpdateStatusKeepsTotal(t *testing.T) {
	ctx := context.Background()
	store := rtdb.NewMemoryStore()
	svc := newTestService(store)

	order, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		BookID:        "2",
		Quantity:      2,
		PaymentMethod: "QR",
		Address:       "Jl. Kaliurang No. 123, Sleman",
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, order.ID, StatusDone))

	got, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	assert.Equal(t, 184000, got.TotalPrice)
	assert.Equal(t, order.OrderDate, got.OrderDate)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	svc := newTestService(rtdb.NewMemoryStore())
	err := svc.UpdateStatus(context.Background(), "nope", StatusDone)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateStatusEmpty(t *testing.T) {
	svc := newTestService(rtdb.NewMemoryStore())
	err := svc.UpdateStatus(context.Background(), "any", "")
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "status", ve.Field)
}

func TestGetOrderUnknown(t *testing.T) {
	svc := newTestService(rtdb.NewMemoryStore())
	_, err := svc.GetOrder(context.Background(), "nope")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestListOrdersSorted(t *testing.T) {
	ctx := context.Background()
	store := rtdb.NewMemoryStore()
	svc := newTestService(store)

	t1 := testNow.Add(-2 * time.Hour)
	t2 := testNow.Add(-1 * time.Hour)
	t3 := testNow

	for i, ts := range []time.Time{t1, t3, t2} {
		_, err := store.Push(ctx, rtdb.TreeOrders, map[string]string{
			"title":     "Buku " + strconv.Itoa(i),
			"orderDate": ts.Format(time.RFC3339),
		})
		require.NoError(t, err)
	}

	list, err := svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, t3, list[0].OrderDate)
	assert.Equal(t, t2, list[1].OrderDate)
	assert.Equal(t, t1, list[2].OrderDate)
}
