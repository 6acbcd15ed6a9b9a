package midtrans

import (
	"context"
	"farmket/domain"
	"farmket/entities"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"
)

const (
	TransactionSettlement = "settlement"
	TransactionCapture    = "capture"
	TransactionPending    = "pending"
	TransactionDeny       = "deny"
	TransactionCancel     = "cancel"
	TransactionExpire     = "expire"
	TransactionFailure    = "failure"

	FraudAccept = "accept"
)

type (
	MidtransService interface {
		CreateTransaction(ctx context.Context, orderNumber string, amount decimal.Decimal, customer domain.PaymentCustomer) (domain.PaymentResponse, error)
		CheckTransaction(ctx context.Context, orderNumber string) (domain.PaymentStatusResponse, error)
	}

	midtransService struct {
		snapClient snap.Client
		coreClient coreapi.Client
	}
)

func NewMidtransService(serverKey string, isProd bool) MidtransService {
	env := midtrans.Sandbox
	if isProd {
		env = midtrans.Production
	}

	var s midtransService
	s.snapClient.New(serverKey, env)
	s.coreClient.New(serverKey, env)
	return &s
}

func (s *midtransService) CreateTransaction(_ context.Context, orderNumber string, amount decimal.Decimal, customer domain.PaymentCustomer) (domain.PaymentResponse, error) {
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderNumber,
			GrossAmt: amount.Ceil().IntPart(),
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: customer.FirstName,
			LName: customer.LastName,
			Email: customer.Email,
			Phone: customer.Phone,
		},
	}

	res, mErr := s.snapClient.CreateTransaction(req)
	if mErr != nil {
		return domain.PaymentResponse{}, fmt.Errorf("%w: %s", domain.ErrPaymentGateway, mErr.Message)
	}

	return domain.PaymentResponse{
		Token:       res.Token,
		RedirectURL: res.RedirectURL,
	}, nil
}

func (s *midtransService) CheckTransaction(_ context.Context, orderNumber string) (domain.PaymentStatusResponse, error) {
	res, mErr := s.coreClient.CheckTransaction(orderNumber)
	if mErr != nil {
		return domain.PaymentStatusResponse{}, fmt.Errorf("%w: %s", domain.ErrPaymentGateway, mErr.Message)
	}

	return domain.PaymentStatusResponse{
		OrderID:           res.OrderID,
		TransactionStatus: res.TransactionStatus,
		FraudStatus:       res.FraudStatus,
	}, nil
}

// PaymentStatus maps a Midtrans transaction status onto the order payment
// status. ok is false while the transaction is still pending.
func PaymentStatus(transactionStatus, fraudStatus string) (status string, ok bool) {
	switch transactionStatus {
	case TransactionSettlement:
		return entities.PaymentStatusPaid, true
	case TransactionCapture:
		if fraudStatus == "" || fraudStatus == FraudAccept {
			return entities.PaymentStatusPaid, true
		}
		return entities.PaymentStatusFailed, true
	case TransactionDeny, TransactionCancel, TransactionExpire, TransactionFailure:
		return entities.PaymentStatusFailed, true
	default:
		return "", false
	}
}
