package service

import (
	"encoding/json"
	"time"

	"auroramall/internal/model"
	"auroramall/internal/status"
	"auroramall/pkg/logger"
)

// ShipRequest 商家发货请求
type ShipRequest struct {
	Company        string `json:"company" binding:"required"`
	TrackingNumber string `json:"tracking_number" binding:"required"`
	ShipNote       string `json:"ship_note"`
}

// LogisticsService 物流服务，处理商家发货与物流信息查询
type LogisticsService struct {
	orderRepo     OrderRepo
	statusService *OrderStatusService
	logger        *logger.Logger
}

// NewLogisticsService 创建物流服务
func NewLogisticsService(orderRepo OrderRepo, statusService *OrderStatusService, logger *logger.Logger) *LogisticsService {
	return &LogisticsService{
		orderRepo:     orderRepo,
		statusService: statusService,
		logger:        logger,
	}
}

// ShipOrder 商家发货
// 已支付订单先进入待发货再发货；物流信息与发货状态在同一条更新语句中写入
func (s *LogisticsService) ShipOrder(merchantID, orderID uint64, req *ShipRequest) error {
	if req == nil || req.Company == "" || req.TrackingNumber == "" {
		return ErrMissingShipmentInfo
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil || order.OrderStatus == status.Deleted {
		return ErrOrderNotFound
	}
	if order.OrderType != model.OrderTypeProduct || order.RelatedID != merchantID {
		return ErrUnauthorized
	}
	if !order.OrderStatus.IsShippable() {
		return ErrInvalidTransition
	}

	if order.OrderStatus == status.Paid {
		if err := s.statusService.Transition(order, status.PendingShipment); err != nil {
			return err
		}
	}

	logistics := &model.Logistics{
		Company:        req.Company,
		TrackingNumber: req.TrackingNumber,
		ShipTime:       time.Now().Format("2006-01-02 15:04:05"),
		ShipNote:       req.ShipNote,
	}
	logisticsJSON, err := ToLogisticsJSON(logistics)
	if err != nil {
		return err
	}

	if err := s.statusService.TransitionWithLogistics(order, logisticsJSON); err != nil {
		return err
	}
	s.logger.Info("商家发货", "order_no", order.OrderNo, "merchant_id", merchantID, "company", req.Company)
	return nil
}

// GetLogistics 查询订单物流信息，买家与所属商家均可查询
func (s *LogisticsService) GetLogistics(requesterUserID, requesterMerchantID, orderID uint64) (*model.Logistics, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.OrderStatus == status.Deleted {
		return nil, ErrOrderNotFound
	}
	if order.UserID != requesterUserID && !(order.OrderType == model.OrderTypeProduct && order.RelatedID == requesterMerchantID && requesterMerchantID != 0) {
		return nil, ErrUnauthorized
	}
	if !order.LogisticsInfo.Valid || order.LogisticsInfo.String == "" {
		return nil, ErrOrderNotFound
	}

	var logistics model.Logistics
	if err := json.Unmarshal([]byte(order.LogisticsInfo.String), &logistics); err != nil {
		return nil, err
	}
	return &logistics, nil
}
