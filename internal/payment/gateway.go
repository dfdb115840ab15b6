package payment

import (
	"context"
	"strings"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/urtree/marketplace/internal/orders"
)

// SnapClient: implementasi orders.SnapGateway di atas Midtrans Snap.
// Server key berawalan "SB-" = sandbox.
type SnapClient struct {
	serverKey string
	clientKey string
	finishURL string
	client    snap.Client
}

func NewSnapClient(serverKey, clientKey, finishURL string) *SnapClient {
	c := &SnapClient{serverKey: serverKey, clientKey: clientKey, finishURL: finishURL}
	if serverKey != "" {
		env := midtrans.Production
		if c.Sandbox() {
			env = midtrans.Sandbox
		}
		c.client.New(serverKey, env)
	}
	return c
}

func (c *SnapClient) Configured() bool { return c.serverKey != "" }
func (c *SnapClient) Sandbox() bool    { return strings.HasPrefix(c.serverKey, "SB-") }
func (c *SnapClient) ClientKey() string {
	if c.clientKey == "" && c.Sandbox() {
		return "SB-Mid-client-sample"
	}
	return c.clientKey
}

func (c *SnapClient) CreateTransaction(ctx context.Context, o *orders.Order) (string, error) {
	buyerEmail := o.BuyerEmail
	if buyerEmail == "" {
		buyerEmail = "buyer@urtree.com"
	}

	items := make([]midtrans.ItemDetails, 0, len(o.Items)+1)
	for _, it := range o.Items {
		items = append(items, midtrans.ItemDetails{
			ID:    it.ProductID,
			Price: int64(it.Price),
			Qty:   int32(it.Quantity),
			Name:  it.ProductName,
		})
	}
	if o.ShippingCost > 0 {
		items = append(items, midtrans.ItemDetails{
			ID:    "SHIPPING",
			Price: int64(o.ShippingCost),
			Qty:   1,
			Name:  "Biaya Pengiriman",
		})
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  o.ID,
			GrossAmt: int64(o.Total),
		},
		Items: &items,
		CustomerDetail: &midtrans.CustomerDetails{
			FName: o.ShippingAddress.Name,
			Email: buyerEmail,
			Phone: o.ShippingAddress.Phone,
			ShipAddr: &midtrans.CustomerAddress{
				FName:       o.ShippingAddress.Name,
				Phone:       o.ShippingAddress.Phone,
				Address:     o.ShippingAddress.Address,
				City:        o.ShippingAddress.City,
				CountryCode: "IDN",
			},
		},
		Callbacks: &snap.Callbacks{Finish: c.finishURL},
	}

	resp, merr := c.client.CreateTransaction(req)
	if merr != nil {
		return "", merr
	}
	return resp.Token, nil
}
