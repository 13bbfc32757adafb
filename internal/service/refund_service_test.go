package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auroramall/internal/model"
	"auroramall/internal/status"
)

func TestRequestRefundOnlyAfterShipment(t *testing.T) {
	env := newTestEnv()
	env.seedMerchant(1, 100)
	env.seedSku(10, 1, "10.00", 5)
	orderID := env.createPaidProductOrder(t, 7, 10)

	// 未发货不能申请退款
	assert.Equal(t, ErrRefundNotAllowed, env.refundSvc.RequestRefund(7, orderID, "不想要了"))

	require.NoError(t, env.logiSvc.ShipOrder(1, orderID, &ShipRequest{Company: "顺丰", TrackingNumber: "SF1"}))
	require.NoError(t, env.refundSvc.RequestRefund(7, orderID, "不想要了"))

	stored, _ := env.repos.GetByID(orderID)
	assert.Equal(t, status.Refunding, stored.OrderStatus)
}

func TestRequestRefundOwnership(t *testing.T) {
	env := newTestEnv()
	env.seedMerchant(1, 100)
	env.seedSku(10, 1, "10.00", 5)
	orderID := env.createPaidProductOrder(t, 7, 10)

	assert.Equal(t, ErrUnauthorized, env.refundSvc.RequestRefund(8, orderID, ""))
}

func TestResolveRefundApproved(t *testing.T) {
	env := newTestEnv()
	env.seedMerchant(1, 100)
	env.seedSku(10, 1, "10.00", 5)
	orderID := env.createPaidProductOrder(t, 7, 10)
	require.NoError(t, env.logiSvc.ShipOrder(1, orderID, &ShipRequest{Company: "顺丰", TrackingNumber: "SF1"}))
	require.NoError(t, env.refundSvc.RequestRefund(7, orderID, "质量问题"))

	stockBefore := env.repos.skus[10].Stock
	require.NoError(t, env.refundSvc.ResolveRefund(1, orderID, true, ""))

	stored, _ := env.repos.GetByID(orderID)
	assert.Equal(t, status.Refunded, stored.OrderStatus)
	assert.Equal(t, stockBefore+1, env.repos.skus[10].Stock)

	payment, _ := env.repos.GetByOrderID(orderID)
	assert.Equal(t, model.PaymentStatusRefunded, payment.PaymentStatus)
	assert.True(t, payment.RefundNo.Valid)
	assert.True(t, payment.RefundTime.Valid)
}

func TestResolveRefundRejected(t *testing.T) {
	env := newTestEnv()
	env.seedMerchant(1, 100)
	env.seedSku(10, 1, "10.00", 5)
	orderID := env.createPaidProductOrder(t, 7, 10)
	require.NoError(t, env.logiSvc.ShipOrder(1, orderID, &ShipRequest{Company: "顺丰", TrackingNumber: "SF1"}))
	require.NoError(t, env.refundSvc.RequestRefund(7, orderID, "质量问题"))

	require.NoError(t, env.refundSvc.ResolveRefund(1, orderID, false, "已按约定发货"))

	stored, _ := env.repos.GetByID(orderID)
	assert.Equal(t, status.Completed, stored.OrderStatus)

	payment, _ := env.repos.GetByOrderID(orderID)
	assert.Equal(t, model.PaymentStatusSucceeded, payment.PaymentStatus)
}

func TestResolveRefundRequiresRefundingState(t *testing.T) {
	env := newTestEnv()
	env.seedMerchant(1, 100)
	env.seedSku(10, 1, "10.00", 5)
	orderID := env.createPaidProductOrder(t, 7, 10)

	assert.Equal(t, ErrInvalidTransition, env.refundSvc.ResolveRefund(1, orderID, true, ""))
}

func TestMerchantCancelPendingPayment(t *testing.T) {
	env := newTestEnv()
	env.seedMerchant(1, 100)
	env.seedSku(10, 1, "10.00", 5)

	result, err := env.orderSvc.CreateProductOrders(7, &CreateOrderRequest{
		AddressID: 1,
		Lines:     []OrderLine{line(10, 2, "10.00")},
	})
	require.NoError(t, err)
	orderID := result.Orders[0].OrderID

	require.NoError(t, env.refundSvc.CancelOrder(1, orderID, "缺货"))

	stored, _ := env.repos.GetByID(orderID)
	assert.Equal(t, status.Cancelled, stored.OrderStatus)
	assert.Equal(t, 5, env.repos.skus[10].Stock)

	payment, _ := env.repos.GetByOrderID(orderID)
	assert.Equal(t, model.PaymentStatusCancelled, payment.PaymentStatus)
}

func TestMerchantCancelPaidRefunds(t *testing.T) {
	env := newTestEnv()
	env.seedMerchant(1, 100)
	env.seedSku(10, 1, "10.00", 5)
	orderID := env.createPaidProductOrder(t, 7, 10)

	require.NoError(t, env.refundSvc.CancelOrder(1, orderID, "无法发货"))

	stored, _ := env.repos.GetByID(orderID)
	assert.Equal(t, status.Refunded, stored.OrderStatus)
	assert.Equal(t, 5, env.repos.skus[10].Stock)

	payment, _ := env.repos.GetByOrderID(orderID)
	assert.Equal(t, model.PaymentStatusRefunded, payment.PaymentStatus)
}

func TestMerchantCancelShippedRejected(t *testing.T) {
	env := newTestEnv()
	env.seedMerchant(1, 100)
	env.seedSku(10, 1, "10.00", 5)
	orderID := env.createPaidProductOrder(t, 7, 10)
	require.NoError(t, env.logiSvc.ShipOrder(1, orderID, &ShipRequest{Company: "顺丰", TrackingNumber: "SF1"}))

	assert.Equal(t, ErrInvalidTransition, env.refundSvc.CancelOrder(1, orderID, ""))
}

func TestMerchantScopeChecked(t *testing.T) {
	env := newTestEnv()
	env.seedMerchant(1, 100)
	env.seedMerchant(2, 200)
	env.seedSku(10, 1, "10.00", 5)
	orderID := env.createPaidProductOrder(t, 7, 10)

	// 其他商家无权操作
	assert.Equal(t, ErrUnauthorized, env.refundSvc.CancelOrder(2, orderID, ""))
	assert.Equal(t, ErrUnauthorized, env.refundSvc.ResolveRefund(2, orderID, true, ""))
}
