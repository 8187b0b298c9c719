package client

import (
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

type MidtransCredentials struct {
	ServerKey  string
	Production bool
}

type MidtransClient interface {
	CreateSnapTransaction(req *MidtransSnapRequest) (*MidtransSnapResponse, error)
	CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, error)
}

type midtransClientImpl struct {
	snapClient snap.Client
	coreClient coreapi.Client
}

type MidtransSnapRequest struct {
	OrderID       string
	GrossAmount   int64
	CustomerName  string
	CustomerEmail string
	ItemName      string
}

type MidtransSnapResponse struct {
	Token       string
	RedirectURL string
}

func NewMidtransClient(creds MidtransCredentials) MidtransClient {
	env := midtrans.Sandbox
	if creds.Production {
		env = midtrans.Production
	}

	var s snap.Client
	s.New(creds.ServerKey, env)

	var c coreapi.Client
	c.New(creds.ServerKey, env)

	return &midtransClientImpl{
		snapClient: s,
		coreClient: c,
	}
}

func (c *midtransClientImpl) CreateSnapTransaction(req *MidtransSnapRequest) (*MidtransSnapResponse, error) {
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.GrossAmount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.OrderID,
				Price: req.GrossAmount,
				Qty:   1,
				Name:  req.ItemName,
			},
		},
	}

	// midtrans-go can return a usable response together with a non-nil
	// error, so only a nil response is fatal
	snapResp, err := c.snapClient.CreateTransaction(snapReq)
	if snapResp == nil {
		return nil, fmt.Errorf("midtrans create transaction: %w", err)
	}

	return &MidtransSnapResponse{
		Token:       snapResp.Token,
		RedirectURL: snapResp.RedirectURL,
	}, nil
}

// CheckTransaction re-fetches the transaction from the Core API. Webhook
// notifications are never trusted as-is; the status used for the order is
// the one Midtrans reports here.
func (c *midtransClientImpl) CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, error) {
	resp, err := c.coreClient.CheckTransaction(orderID)
	if resp == nil {
		return nil, fmt.Errorf("midtrans check transaction %s: %w", orderID, err)
	}
	return resp, nil
}
