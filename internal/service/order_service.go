package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"k8s.io/apimachinery/pkg/util/rand"

	"auroramall/internal/model"
	"auroramall/internal/status"
	"auroramall/pkg/logger"
)

// 创建订单时单行被跳过的原因
const (
	SkipReasonInvalidLine      = "INVALID_LINE_ITEM"
	SkipReasonMerchantNotFound = "MERCHANT_NOT_FOUND"
	SkipReasonOutOfStock       = "OUT_OF_STOCK"
	SkipReasonCreateFailed     = "CREATE_FAILED"
)

// OrderLine 创建订单请求中的一个商品行
// 单价与行小计是客户端下单时的价格快照，落单前与SKU当前价格核对
type OrderLine struct {
	ProductID uint64          `json:"product_id"`
	SkuID     uint64          `json:"sku_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
	LineTotal decimal.Decimal `json:"line_total" binding:"required"`
	ItemNote  string          `json:"item_note"`
}

// CreateOrderRequest 创建商品订单请求
type CreateOrderRequest struct {
	AddressID uint64      `json:"address_id" binding:"required"`
	OrderNote string      `json:"order_note"`
	Lines     []OrderLine `json:"lines" binding:"required"`
}

// SkippedLine 创建订单时被跳过的商品行及原因
type SkippedLine struct {
	SkuID  uint64 `json:"sku_id"`
	Reason string `json:"reason"`
}

// CreateOrdersResult 创建订单结果，每个SKU独立生成一笔订单
type CreateOrdersResult struct {
	Orders  []*model.Order `json:"orders"`
	Skipped []SkippedLine  `json:"skipped"`
}

// CreateSubscriptionRequest 创建订阅订单请求
type CreateSubscriptionRequest struct {
	PlanID uint64 `json:"plan_id" binding:"required"`
	Months int    `json:"months" binding:"required"`
}

// OrderService 订单服务
type OrderService struct {
	orderRepo     OrderRepo
	itemRepo      OrderItemRepo
	paymentRepo   PaymentRepo
	skuRepo       SkuRepo
	merchantRepo  MerchantRepo
	planRepo      PlanRepo
	addressRepo   AddressRepo
	statusService *OrderStatusService
	expireAfter   time.Duration
	logger        *logger.Logger
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo OrderRepo,
	itemRepo OrderItemRepo,
	paymentRepo PaymentRepo,
	skuRepo SkuRepo,
	merchantRepo MerchantRepo,
	planRepo PlanRepo,
	addressRepo AddressRepo,
	statusService *OrderStatusService,
	expireAfter time.Duration,
	logger *logger.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		itemRepo:      itemRepo,
		paymentRepo:   paymentRepo,
		skuRepo:       skuRepo,
		merchantRepo:  merchantRepo,
		planRepo:      planRepo,
		addressRepo:   addressRepo,
		statusService: statusService,
		expireAfter:   expireAfter,
		logger:        logger,
	}
}

// CreateProductOrders 创建商品订单，按SKU拆单
// 单行校验失败只跳过该行并记录原因，全部失败时才返回错误
func (s *OrderService) CreateProductOrders(userID uint64, req *CreateOrderRequest) (*CreateOrdersResult, error) {
	if req == nil || len(req.Lines) == 0 {
		return nil, ErrInvalidInput
	}

	result := &CreateOrdersResult{
		Orders:  make([]*model.Order, 0, len(req.Lines)),
		Skipped: make([]SkippedLine, 0),
	}

	for _, line := range req.Lines {
		if line.SkuID == 0 || line.Quantity <= 0 || !line.LineTotal.IsPositive() {
			result.Skipped = append(result.Skipped, SkippedLine{SkuID: line.SkuID, Reason: SkipReasonInvalidLine})
			continue
		}

		sku, err := s.skuRepo.GetByID(line.SkuID)
		if err != nil {
			s.logger.Error("查询SKU失败", "sku_id", line.SkuID, "error", err)
			result.Skipped = append(result.Skipped, SkippedLine{SkuID: line.SkuID, Reason: SkipReasonCreateFailed})
			continue
		}
		if sku == nil || sku.Status != 1 {
			result.Skipped = append(result.Skipped, SkippedLine{SkuID: line.SkuID, Reason: SkipReasonInvalidLine})
			continue
		}
		// 客户端价格快照与SKU当前价格不一致说明商品已变价，该行作废
		if !lineMatchesSku(line, sku) {
			result.Skipped = append(result.Skipped, SkippedLine{SkuID: line.SkuID, Reason: SkipReasonInvalidLine})
			continue
		}

		merchant, err := s.merchantRepo.GetByID(sku.MerchantID)
		if err != nil {
			s.logger.Error("查询商家失败", "merchant_id", sku.MerchantID, "error", err)
			result.Skipped = append(result.Skipped, SkippedLine{SkuID: line.SkuID, Reason: SkipReasonCreateFailed})
			continue
		}
		if merchant == nil || merchant.Status != 1 {
			result.Skipped = append(result.Skipped, SkippedLine{SkuID: line.SkuID, Reason: SkipReasonMerchantNotFound})
			continue
		}

		ok, err := s.skuRepo.DeductStock(line.SkuID, line.Quantity)
		if err != nil {
			s.logger.Error("扣减库存失败", "sku_id", line.SkuID, "error", err)
			result.Skipped = append(result.Skipped, SkippedLine{SkuID: line.SkuID, Reason: SkipReasonCreateFailed})
			continue
		}
		if !ok {
			result.Skipped = append(result.Skipped, SkippedLine{SkuID: line.SkuID, Reason: SkipReasonOutOfStock})
			continue
		}

		order, err := s.createSingleOrder(userID, req, line, sku)
		if err != nil {
			s.logger.Error("创建订单失败", "sku_id", line.SkuID, "user_id", userID, "error", err)
			// 创建失败时把已扣的库存加回去
			if restoreErr := s.skuRepo.RestoreStock(line.SkuID, line.Quantity); restoreErr != nil {
				s.logger.Error("回滚库存失败", "sku_id", line.SkuID, "error", restoreErr)
			}
			result.Skipped = append(result.Skipped, SkippedLine{SkuID: line.SkuID, Reason: SkipReasonCreateFailed})
			continue
		}

		result.Orders = append(result.Orders, order)
	}

	if len(result.Orders) == 0 {
		return nil, ErrNoOrdersCreated
	}
	return result, nil
}

// lineMatchesSku 核对商品行的价格快照
func lineMatchesSku(line OrderLine, sku *model.Sku) bool {
	if line.ProductID != 0 && line.ProductID != sku.ProductID {
		return false
	}
	if !line.UnitPrice.Equal(sku.Price) {
		return false
	}
	return line.LineTotal.Equal(sku.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
}

// createSingleOrder 为单个SKU创建订单，订单、订单项和支付单在同一事务中落库
func (s *OrderService) createSingleOrder(userID uint64, req *CreateOrderRequest, line OrderLine, sku *model.Sku) (*model.Order, error) {
	totalAmount := line.LineTotal
	now := time.Now()

	order := &model.Order{
		OrderNo:     newOrderNo("PROD"),
		UserID:      userID,
		OrderType:   model.OrderTypeProduct,
		RelatedID:   sku.MerchantID,
		TotalAmount: totalAmount,
		PaidAmount:  decimal.Zero,
		OrderStatus: status.PendingPayment,
		AddressID:   sql.NullInt64{Int64: int64(req.AddressID), Valid: req.AddressID != 0},
		OrderNote:   req.OrderNote,
		ExpireTime:  sql.NullTime{Time: now.Add(s.expireAfter), Valid: true},
	}

	item := &model.OrderItem{
		ProductID:  sku.ProductID,
		SkuID:      sku.SkuID,
		MerchantID: sku.MerchantID,
		Title:      sku.Title,
		Image:      sku.Image,
		Price:      sku.Price,
		Quantity:   line.Quantity,
		SkuProps:   sku.Properties,
		ItemNote:   line.ItemNote,
	}

	payment := &model.Payment{
		PaymentNo:     newPaymentNo(),
		UserID:        userID,
		PaymentAmount: totalAmount,
		PaymentStatus: model.PaymentStatusCreated,
	}

	if err := s.orderRepo.CreateOrderGroup(order, []*model.OrderItem{item}, payment); err != nil {
		return nil, err
	}
	return order, nil
}

// CreateSubscriptionOrder 创建订阅订单
func (s *OrderService) CreateSubscriptionOrder(userID uint64, req *CreateSubscriptionRequest) (*model.Order, error) {
	if req == nil || req.PlanID == 0 || req.Months <= 0 {
		return nil, ErrInvalidInput
	}

	plan, err := s.planRepo.GetByID(req.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrInvalidInput
	}

	active, err := s.orderRepo.HasActiveSubscription(userID, req.PlanID, time.Now())
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrAlreadySubscribed
	}

	now := time.Now()
	totalAmount := plan.MonthlyPrice.Mul(decimal.NewFromInt(int64(req.Months)))
	order := &model.Order{
		OrderNo:            newOrderNo("SUB"),
		UserID:             userID,
		OrderType:          model.OrderTypeSubscription,
		RelatedID:          req.PlanID,
		TotalAmount:        totalAmount,
		PaidAmount:         decimal.Zero,
		OrderStatus:        status.PendingPayment,
		SubscriptionMonths: sql.NullInt64{Int64: int64(req.Months), Valid: true},
		SubscriptionStart:  sql.NullTime{Time: now, Valid: true},
		SubscriptionEnd:    sql.NullTime{Time: now.AddDate(0, req.Months, 0), Valid: true},
		ExpireTime:         sql.NullTime{Time: now.Add(s.expireAfter), Valid: true},
	}

	payment := &model.Payment{
		PaymentNo:     newPaymentNo(),
		UserID:        userID,
		PaymentAmount: totalAmount,
		PaymentStatus: model.PaymentStatusCreated,
	}

	if err := s.orderRepo.CreateOrderGroup(order, nil, payment); err != nil {
		return nil, err
	}
	return order, nil
}

// ListUserOrders 分页获取用户订单列表
func (s *OrderService) ListUserOrders(userID uint64, statuses []status.OrderStatus, page, pageSize int) ([]*model.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return s.orderRepo.ListByUser(userID, statuses, page, pageSize)
}

// GetOrderDetail 获取订单详情，聚合订单项、收货地址与商家信息
func (s *OrderService) GetOrderDetail(userID, orderID uint64) (*model.OrderDetail, error) {
	order, err := s.getOwnedOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	detail := &model.OrderDetail{Order: order}

	items, err := s.itemRepo.ListByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	detail.Items = items

	if order.AddressID.Valid {
		address, err := s.addressRepo.GetByID(uint64(order.AddressID.Int64))
		if err != nil {
			return nil, err
		}
		detail.Address = address
	}

	if order.OrderType == model.OrderTypeProduct {
		merchant, err := s.merchantRepo.GetByID(order.RelatedID)
		if err != nil {
			return nil, err
		}
		detail.Merchant = merchant
	}

	return detail, nil
}

// CancelOrder 买家取消订单，仅待支付订单允许取消
// 取消后同步取消支付单并恢复库存
func (s *OrderService) CancelOrder(userID, orderID uint64) error {
	order, err := s.getOwnedOrder(userID, orderID)
	if err != nil {
		return err
	}
	if !order.OrderStatus.IsCancellable() {
		return ErrInvalidTransition
	}

	if err := s.statusService.Transition(order, status.Cancelled); err != nil {
		return err
	}

	s.cancelPaymentOf(order)
	s.restoreStockOf(order)
	return nil
}

// ConfirmReceipt 买家确认收货
func (s *OrderService) ConfirmReceipt(userID, orderID uint64) error {
	order, err := s.getOwnedOrder(userID, orderID)
	if err != nil {
		return err
	}
	if !order.OrderStatus.IsConfirmable() {
		return ErrInvalidTransition
	}
	return s.statusService.Transition(order, status.Completed)
}

// DeleteOrder 软删除订单，仅终态订单允许删除
func (s *OrderService) DeleteOrder(userID, orderID uint64) error {
	order, err := s.getOwnedOrder(userID, orderID)
	if err != nil {
		return err
	}
	return s.statusService.Delete(order)
}

// Statistics 按状态统计用户订单数量
func (s *OrderService) Statistics(userID uint64) (*model.OrderStatistics, error) {
	return s.orderRepo.Statistics(userID)
}

// ListMerchantOrders 分页获取商家订单列表
// pendingShipment为true时查询待处理订单（已支付和待发货）
func (s *OrderService) ListMerchantOrders(merchantID uint64, statuses []status.OrderStatus, pendingShipment bool, page, pageSize int) ([]*model.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	if pendingShipment {
		statuses = []status.OrderStatus{status.Paid, status.PendingShipment}
	}
	return s.orderRepo.ListByMerchant(merchantID, statuses, page, pageSize)
}

// GetMerchantOrderDetail 商家获取订单详情
func (s *OrderService) GetMerchantOrderDetail(merchantID, orderID uint64) (*model.OrderDetail, error) {
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

	detail := &model.OrderDetail{Order: order}
	items, err := s.itemRepo.ListByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	detail.Items = items

	if order.AddressID.Valid {
		address, err := s.addressRepo.GetByID(uint64(order.AddressID.Int64))
		if err != nil {
			return nil, err
		}
		detail.Address = address
	}
	return detail, nil
}

// ExpireOverdueOrders 取消已超时未支付的订单，返回成功取消的数量
// 与支付确认并发竞争时以数据库乐观锁为准，失败的订单留待下一轮处理
func (s *OrderService) ExpireOverdueOrders(now time.Time, limit int) (int, error) {
	orders, err := s.orderRepo.ListExpired(now, limit)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, order := range orders {
		if err := s.statusService.Transition(order, status.Cancelled); err != nil {
			if err == ErrStatusChanged {
				// 订单刚好完成了支付，跳过
				s.logger.Info("订单超时取消被抢占", "order_no", order.OrderNo)
				continue
			}
			s.logger.Error("订单超时取消失败", "order_no", order.OrderNo, "error", err)
			continue
		}
		s.cancelPaymentOf(order)
		s.restoreStockOf(order)
		expired++
	}
	return expired, nil
}

// getOwnedOrder 获取订单并校验归属
func (s *OrderService) getOwnedOrder(userID, orderID uint64) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.OrderStatus == status.Deleted {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrUnauthorized
	}
	return order, nil
}

// cancelPaymentOf 取消订单关联的未支付支付单
func (s *OrderService) cancelPaymentOf(order *model.Order) {
	payment, err := s.paymentRepo.GetByOrderID(order.OrderID)
	if err != nil {
		s.logger.Error("查询支付单失败", "order_no", order.OrderNo, "error", err)
		return
	}
	if payment == nil {
		return
	}
	for _, from := range []int{model.PaymentStatusCreated, model.PaymentStatusPending} {
		if payment.PaymentStatus == from {
			if _, err := s.paymentRepo.UpdateStatusCAS(payment.PaymentID, from, model.PaymentStatusCancelled); err != nil {
				s.logger.Error("取消支付单失败", "payment_no", payment.PaymentNo, "error", err)
			}
			return
		}
	}
}

// restoreStockOf 恢复订单占用的库存
func (s *OrderService) restoreStockOf(order *model.Order) {
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

// ToLogisticsJSON 将物流信息序列化为JSON
func ToLogisticsJSON(l *model.Logistics) (string, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// newOrderNo 生成订单号：前缀 + 时间戳 + 4位随机数
func newOrderNo(prefix string) string {
	return fmt.Sprintf("%s%s%04d", prefix, time.Now().Format("20060102150405"), rand.Intn(10000))
}

// newPaymentNo 生成支付单号
func newPaymentNo() string {
	return fmt.Sprintf("PAY%d%04d", time.Now().UnixMilli(), rand.Intn(10000))
}

// newRefundNo 生成退款单号
func newRefundNo() string {
	return fmt.Sprintf("REF%s%04d", time.Now().Format("20060102150405"), rand.Intn(10000))
}
