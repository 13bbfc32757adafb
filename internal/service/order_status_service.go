package service

import (
	"auroramall/internal/model"
	"auroramall/internal/status"
	"auroramall/pkg/logger"
)

// OrderStatusService 订单状态服务，所有订单状态变更都必须经过本服务
// 状态更新采用乐观锁，并发更新时只有一个调用方能成功
type OrderStatusService struct {
	orderRepo OrderRepo
	notifier  Notifier
	logger    *logger.Logger
}

// NewOrderStatusService 创建订单状态服务
func NewOrderStatusService(orderRepo OrderRepo, notifier Notifier, logger *logger.Logger) *OrderStatusService {
	return &OrderStatusService{
		orderRepo: orderRepo,
		notifier:  notifier,
		logger:    logger,
	}
}

// Transition 将订单从当前状态迁移到目标状态
// 当前状态与目标状态相同时视为幂等操作，直接返回成功
func (s *OrderStatusService) Transition(order *model.Order, to status.OrderStatus) error {
	from := order.OrderStatus
	if from == to {
		return nil
	}
	if !status.CanTransition(from, to) {
		s.logger.Warn("非法的订单状态迁移", "order_no", order.OrderNo, "from", from.Desc(), "to", to.Desc())
		return ErrInvalidTransition
	}

	ok, err := s.orderRepo.UpdateStatusCAS(order.OrderID, from, to)
	if err != nil {
		return err
	}
	if !ok {
		// 数据库中的状态已被其他请求抢先修改
		return ErrStatusChanged
	}

	order.OrderStatus = to
	s.notifyChange(order, from, to)
	return nil
}

// TransitionChain 按顺序执行多段状态迁移，任一段失败则中止
// 用于支付结算等需要连续推进多个状态的场景
func (s *OrderStatusService) TransitionChain(order *model.Order, targets ...status.OrderStatus) error {
	for _, to := range targets {
		if err := s.Transition(order, to); err != nil {
			return err
		}
	}
	return nil
}

// TransitionWithLogistics 写入物流信息并将订单迁移为已发货，两者在同一条更新语句中完成
func (s *OrderStatusService) TransitionWithLogistics(order *model.Order, logisticsJSON string) error {
	from := order.OrderStatus
	if !status.CanTransition(from, status.Shipped) {
		return ErrInvalidTransition
	}

	ok, err := s.orderRepo.UpdateLogisticsCAS(order.OrderID, from, status.Shipped, logisticsJSON)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStatusChanged
	}

	order.OrderStatus = status.Shipped
	order.LogisticsInfo.String = logisticsJSON
	order.LogisticsInfo.Valid = true
	s.notifyChange(order, from, status.Shipped)
	return nil
}

// Delete 软删除订单，仅终态订单允许删除
func (s *OrderStatusService) Delete(order *model.Order) error {
	from := order.OrderStatus
	if !from.IsDeletable() {
		return ErrInvalidTransition
	}

	ok, err := s.orderRepo.UpdateStatusCAS(order.OrderID, from, status.Deleted)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStatusChanged
	}

	order.OrderStatus = status.Deleted
	return nil
}

// notifyChange 异步推送订单状态变更通知
func (s *OrderStatusService) notifyChange(order *model.Order, from, to status.OrderStatus) {
	if s.notifier == nil {
		return
	}
	orderNo := order.OrderNo
	userID := order.UserID
	s.notifier.AddTask(func() {
		s.logger.Info("订单状态变更通知",
			"order_no", orderNo,
			"user_id", userID,
			"from", from.Desc(),
			"to", to.Desc())
	})
}
