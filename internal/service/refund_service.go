package service

import (
	"time"

	"auroramall/internal/model"
	"auroramall/internal/status"
	"auroramall/pkg/logger"
)

// RefundService 退款服务，处理买家退款申请、商家审核与商家取消订单
type RefundService struct {
	orderRepo     OrderRepo
	itemRepo      OrderItemRepo
	paymentRepo   PaymentRepo
	skuRepo       SkuRepo
	statusService *OrderStatusService
	logger        *logger.Logger
}

// NewRefundService 创建退款服务
func NewRefundService(
	orderRepo OrderRepo,
	itemRepo OrderItemRepo,
	paymentRepo PaymentRepo,
	skuRepo SkuRepo,
	statusService *OrderStatusService,
	logger *logger.Logger,
) *RefundService {
	return &RefundService{
		orderRepo:     orderRepo,
		itemRepo:      itemRepo,
		paymentRepo:   paymentRepo,
		skuRepo:       skuRepo,
		statusService: statusService,
		logger:        logger,
	}
}

// RequestRefund 买家申请退款，仅已发货或已完成的订单允许申请
func (s *RefundService) RequestRefund(userID, orderID uint64, reason string) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil || order.OrderStatus == status.Deleted {
		return ErrOrderNotFound
	}
	if order.UserID != userID {
		return ErrUnauthorized
	}
	if !order.OrderStatus.IsRefundable() {
		return ErrRefundNotAllowed
	}

	if err := s.statusService.Transition(order, status.Refunding); err != nil {
		return err
	}
	s.logger.Info("买家申请退款", "order_no", order.OrderNo, "user_id", userID, "reason", reason)
	return nil
}

// ResolveRefund 商家处理退款申请
// 同意退款：订单进入已退款，退回款项并恢复库存；拒绝退款：订单回到已完成
func (s *RefundService) ResolveRefund(merchantID, orderID uint64, approved bool, note string) error {
	order, err := s.getMerchantOrder(merchantID, orderID)
	if err != nil {
		return err
	}
	if order.OrderStatus != status.Refunding {
		return ErrInvalidTransition
	}

	if !approved {
		if err := s.statusService.Transition(order, status.Completed); err != nil {
			return err
		}
		s.logger.Info("商家拒绝退款", "order_no", order.OrderNo, "merchant_id", merchantID, "note", note)
		return nil
	}

	if err := s.statusService.Transition(order, status.Refunded); err != nil {
		return err
	}
	s.refundPaymentOf(order)
	s.restoreStockOf(order)
	s.logger.Info("商家同意退款", "order_no", order.OrderNo, "merchant_id", merchantID)
	return nil
}

// CancelOrder 商家取消订单
// 待支付订单直接取消；已支付的订单走退款链路，退回款项并恢复库存
func (s *RefundService) CancelOrder(merchantID, orderID uint64, note string) error {
	order, err := s.getMerchantOrder(merchantID, orderID)
	if err != nil {
		return err
	}

	switch order.OrderStatus {
	case status.PendingPayment:
		if err := s.statusService.Transition(order, status.Cancelled); err != nil {
			return err
		}
		s.cancelPaymentOf(order)
		s.restoreStockOf(order)
	case status.Paid, status.PendingShipment:
		if err := s.statusService.TransitionChain(order, status.Refunding, status.Refunded); err != nil {
			return err
		}
		s.refundPaymentOf(order)
		s.restoreStockOf(order)
	default:
		return ErrInvalidTransition
	}

	s.logger.Info("商家取消订单", "order_no", order.OrderNo, "merchant_id", merchantID, "note", note)
	return nil
}

// getMerchantOrder 获取订单并校验是否属于该商家
func (s *RefundService) getMerchantOrder(merchantID, orderID uint64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.OrderStatus == status.Deleted {
		return nil, ErrOrderNotFound
	}
	if order.OrderType != model.OrderTypeProduct || order.RelatedID != merchantID {
		return nil, ErrUnauthorized
	}
	return order, nil
}

// refundPaymentOf 将已成功的支付单标记为已退款
func (s *RefundService) refundPaymentOf(order *model.Order) {
	payment, err := s.paymentRepo.GetByOrderID(order.OrderID)
	if err != nil {
		s.logger.Error("查询支付单失败", "order_no", order.OrderNo, "error", err)
		return
	}
	if payment == nil || payment.PaymentStatus != model.PaymentStatusSucceeded {
		return
	}
	if err := s.paymentRepo.MarkRefunded(payment.PaymentID, newRefundNo(), time.Now()); err != nil {
		s.logger.Error("标记支付单退款失败", "payment_no", payment.PaymentNo, "error", err)
	}
}

// cancelPaymentOf 取消订单关联的未支付支付单
func (s *RefundService) cancelPaymentOf(order *model.Order) {
	payment, err := s.paymentRepo.GetByOrderID(order.OrderID)
	if err != nil {
		s.logger.Error("查询支付单失败", "order_no", order.OrderNo, "error", err)
		return
	}
	if payment == nil {
		return
	}
	if payment.PaymentStatus == model.PaymentStatusCreated || payment.PaymentStatus == model.PaymentStatusPending {
		if _, err := s.paymentRepo.UpdateStatusCAS(payment.PaymentID, payment.PaymentStatus, model.PaymentStatusCancelled); err != nil {
			s.logger.Error("取消支付单失败", "payment_no", payment.PaymentNo, "error", err)
		}
	}
}

// restoreStockOf 恢复订单占用的库存
func (s *RefundService) restoreStockOf(order *model.Order) {
	if order.OrderType != model.OrderTypeProduct {
		return
	}
	items, err := s.itemRepo.ListByOrderID(order.OrderID)
	if err != nil {
		s.logger.Error("查询订单项失败", "order_no", order.OrderNo, "error", err)
		return
	}
	for _, item := range items {
		if err := s.skuRepo.RestoreStock(item.SkuID, item.Quantity); err != nil {
			s.logger.Error("恢复库存失败", "sku_id", item.SkuID, "error", err)
		}
	}
}
