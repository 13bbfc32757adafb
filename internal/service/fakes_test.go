package service

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"auroramall/internal/model"
	"auroramall/internal/status"
	"auroramall/pkg/logger"
)

// fakeRepos 内存版存储库，实现service包的全部存储接口
// 查询返回副本，模拟数据库快照在并发下过期的情形
type fakeRepos struct {
	mu        sync.Mutex
	nextID    uint64
	orders    map[uint64]*model.Order
	items     map[uint64][]*model.OrderItem
	payments  map[uint64]*model.Payment
	merchants map[uint64]*model.Merchant
	skus      map[uint64]*model.Sku
	plans     map[uint64]*model.Plan
	addresses map[uint64]*model.Address
}

func newFakeRepos() *fakeRepos {
	return &fakeRepos{
		orders:    make(map[uint64]*model.Order),
		items:     make(map[uint64][]*model.OrderItem),
		payments:  make(map[uint64]*model.Payment),
		merchants: make(map[uint64]*model.Merchant),
		skus:      make(map[uint64]*model.Sku),
		plans:     make(map[uint64]*model.Plan),
		addresses: make(map[uint64]*model.Address),
	}
}

func (f *fakeRepos) id() uint64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepos) CreateOrderGroup(order *model.Order, items []*model.OrderItem, payment *model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order.OrderID = f.id()
	order.CreateTime = time.Now()
	cp := *order
	f.orders[order.OrderID] = &cp

	for _, item := range items {
		item.OrderID = order.OrderID
		item.ItemID = f.id()
		ic := *item
		f.items[order.OrderID] = append(f.items[order.OrderID], &ic)
	}

	payment.OrderID = order.OrderID
	payment.PaymentID = f.id()
	payment.CreateTime = time.Now()
	pc := *payment
	f.payments[payment.PaymentID] = &pc
	return nil
}

func (f *fakeRepos) GetByID(orderID uint64) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, nil
	}
	cp := *order
	return &cp, nil
}

func (f *fakeRepos) UpdateStatusCAS(orderID uint64, expected, next status.OrderStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok || order.OrderStatus != expected {
		return false, nil
	}
	order.OrderStatus = next
	order.UpdateTime = time.Now()
	return true, nil
}

func (f *fakeRepos) UpdateLogisticsCAS(orderID uint64, expected, next status.OrderStatus, logisticsJSON string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok || order.OrderStatus != expected {
		return false, nil
	}
	order.OrderStatus = next
	order.LogisticsInfo = sql.NullString{String: logisticsJSON, Valid: true}
	order.UpdateTime = time.Now()
	return true, nil
}

func (f *fakeRepos) UpdatePaidAmount(orderID uint64, paidAmount decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order, ok := f.orders[orderID]; ok {
		order.PaidAmount = paidAmount
	}
	return nil
}

func (f *fakeRepos) ListByUser(userID uint64, statuses []status.OrderStatus, page, pageSize int) ([]*model.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*model.Order
	for _, order := range f.orders {
		if order.UserID != userID || order.OrderStatus == status.Deleted {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, order.OrderStatus) {
			continue
		}
		cp := *order
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (f *fakeRepos) ListByMerchant(merchantID uint64, statuses []status.OrderStatus, page, pageSize int) ([]*model.Order, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*model.Order
	for _, order := range f.orders {
		if order.OrderType != model.OrderTypeProduct || order.RelatedID != merchantID || order.OrderStatus == status.Deleted {
			continue
		}
		if len(statuses) > 0 && !containsStatus(statuses, order.OrderStatus) {
			continue
		}
		cp := *order
		result = append(result, &cp)
	}
	return result, len(result), nil
}

func (f *fakeRepos) ListExpired(now time.Time, limit int) ([]*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*model.Order
	for _, order := range f.orders {
		if order.OrderStatus != status.PendingPayment || !order.ExpireTime.Valid {
			continue
		}
		if order.ExpireTime.Time.After(now) {
			continue
		}
		cp := *order
		result = append(result, &cp)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (f *fakeRepos) HasActiveSubscription(userID, planID uint64, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.UserID == userID && order.OrderType == model.OrderTypeSubscription &&
			order.RelatedID == planID && order.OrderStatus == status.Completed &&
			order.SubscriptionEnd.Valid && order.SubscriptionEnd.Time.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepos) Statistics(userID uint64) (*model.OrderStatistics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &model.OrderStatistics{}
	for _, order := range f.orders {
		if order.UserID != userID {
			continue
		}
		switch order.OrderStatus {
		case status.PendingPayment:
			stats.PendingPayment++
		case status.Paid, status.PendingShipment:
			stats.PendingShipment++
		case status.Shipped:
			stats.Shipped++
		case status.Completed:
			stats.Completed++
		case status.Refunding:
			stats.Refunding++
		}
	}
	return stats, nil
}

func (f *fakeRepos) ListByOrderID(orderID uint64) ([]*model.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*model.OrderItem
	for _, item := range f.items[orderID] {
		cp := *item
		result = append(result, &cp)
	}
	return result, nil
}

func (f *fakeRepos) GetByPaymentNo(paymentNo string) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, payment := range f.payments {
		if payment.PaymentNo == paymentNo {
			cp := *payment
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepos) GetByOrderID(orderID uint64) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, payment := range f.payments {
		if payment.OrderID == orderID {
			cp := *payment
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepos) MarkSucceededCAS(paymentID uint64, channel, thirdPartyNo string, payTime time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok {
		return false, nil
	}
	switch payment.PaymentStatus {
	case model.PaymentStatusCreated, model.PaymentStatusPending, model.PaymentStatusCancelled:
	default:
		return false, nil
	}
	payment.PaymentStatus = model.PaymentStatusSucceeded
	payment.Channel = channel
	payment.ThirdPartyNo = sql.NullString{String: thirdPartyNo, Valid: thirdPartyNo != ""}
	payment.PayTime = sql.NullTime{Time: payTime, Valid: true}
	return true, nil
}

func (f *fakeRepos) UpdateStatusCASPayment(paymentID uint64, expected, next int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payment, ok := f.payments[paymentID]
	if !ok || payment.PaymentStatus != expected {
		return false, nil
	}
	payment.PaymentStatus = next
	return true, nil
}

func (f *fakeRepos) MarkRefunded(paymentID uint64, refundNo string, refundTime time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if payment, ok := f.payments[paymentID]; ok {
		payment.PaymentStatus = model.PaymentStatusRefunded
		payment.RefundNo = sql.NullString{String: refundNo, Valid: true}
		payment.RefundTime = sql.NullTime{Time: refundTime, Valid: true}
	}
	return nil
}

func (f *fakeRepos) UpdateChannel(paymentID uint64, channel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if payment, ok := f.payments[paymentID]; ok {
		payment.Channel = channel
	}
	return nil
}

func (f *fakeRepos) HasSucceededByOrderID(orderID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, payment := range f.payments {
		if payment.OrderID == orderID && payment.PaymentStatus == model.PaymentStatusSucceeded {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepos) GetMerchantByID(merchantID uint64) (*model.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	merchant, ok := f.merchants[merchantID]
	if !ok {
		return nil, nil
	}
	cp := *merchant
	return &cp, nil
}

func (f *fakeRepos) GetByUserID(userID uint64) (*model.Merchant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, merchant := range f.merchants {
		if merchant.UserID == userID {
			cp := *merchant
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepos) GetSkuByID(skuID uint64) (*model.Sku, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sku, ok := f.skus[skuID]
	if !ok {
		return nil, nil
	}
	cp := *sku
	return &cp, nil
}

func (f *fakeRepos) DeductStock(skuID uint64, quantity int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sku, ok := f.skus[skuID]
	if !ok || sku.Stock < quantity {
		return false, nil
	}
	sku.Stock -= quantity
	return true, nil
}

func (f *fakeRepos) RestoreStock(skuID uint64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sku, ok := f.skus[skuID]; ok {
		sku.Stock += quantity
	}
	return nil
}

func (f *fakeRepos) GetPlanByID(planID uint64) (*model.Plan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	plan, ok := f.plans[planID]
	if !ok {
		return nil, nil
	}
	cp := *plan
	return &cp, nil
}

func (f *fakeRepos) GetAddressByID(addressID uint64) (*model.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	address, ok := f.addresses[addressID]
	if !ok {
		return nil, nil
	}
	cp := *address
	return &cp, nil
}

func containsStatus(statuses []status.OrderStatus, s status.OrderStatus) bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

// 接口适配器，解决fakeRepos上同名方法的冲突
type fakeOrderRepo struct{ *fakeRepos }

type fakePaymentRepo struct{ *fakeRepos }

func (f fakePaymentRepo) UpdateStatusCAS(paymentID uint64, expected, next int) (bool, error) {
	return f.fakeRepos.UpdateStatusCASPayment(paymentID, expected, next)
}

type fakeMerchantRepo struct{ *fakeRepos }

func (f fakeMerchantRepo) GetByID(merchantID uint64) (*model.Merchant, error) {
	return f.fakeRepos.GetMerchantByID(merchantID)
}

type fakeSkuRepo struct{ *fakeRepos }

func (f fakeSkuRepo) GetByID(skuID uint64) (*model.Sku, error) {
	return f.fakeRepos.GetSkuByID(skuID)
}

type fakePlanRepo struct{ *fakeRepos }

func (f fakePlanRepo) GetByID(planID uint64) (*model.Plan, error) {
	return f.fakeRepos.GetPlanByID(planID)
}

type fakeAddressRepo struct{ *fakeRepos }

func (f fakeAddressRepo) GetByID(addressID uint64) (*model.Address, error) {
	return f.fakeRepos.GetAddressByID(addressID)
}

// syncNotifier 同步执行的通知器，便于断言
type syncNotifier struct{}

func (syncNotifier) AddTask(handler func()) { handler() }

// testEnv 测试环境，聚合全部服务
type testEnv struct {
	repos     *fakeRepos
	statusSvc *OrderStatusService
	orderSvc  *OrderService
	paySvc    *PaymentService
	refundSvc *RefundService
	logiSvc   *LogisticsService
}

func newTestEnv() *testEnv {
	repos := newFakeRepos()
	log := logger.NewLogger("error")

	orderRepo := fakeOrderRepo{repos}
	paymentRepo := fakePaymentRepo{repos}
	merchantRepo := fakeMerchantRepo{repos}
	skuRepo := fakeSkuRepo{repos}
	planRepo := fakePlanRepo{repos}
	addressRepo := fakeAddressRepo{repos}

	statusSvc := NewOrderStatusService(orderRepo, syncNotifier{}, log)
	orderSvc := NewOrderService(orderRepo, repos, paymentRepo, skuRepo, merchantRepo, planRepo, addressRepo, statusSvc, 24*time.Hour, log)
	paySvc := NewPaymentService(paymentRepo, orderRepo, statusSvc, nil, log)
	refundSvc := NewRefundService(orderRepo, repos, paymentRepo, skuRepo, statusSvc, log)
	logiSvc := NewLogisticsService(orderRepo, statusSvc, log)

	return &testEnv{
		repos:     repos,
		statusSvc: statusSvc,
		orderSvc:  orderSvc,
		paySvc:    paySvc,
		refundSvc: refundSvc,
		logiSvc:   logiSvc,
	}
}

// seedMerchant 预置商家
func (e *testEnv) seedMerchant(merchantID, userID uint64) *model.Merchant {
	merchant := &model.Merchant{MerchantID: merchantID, UserID: userID, Name: "测试商家", Status: 1}
	e.repos.merchants[merchantID] = merchant
	return merchant
}

// seedSku 预置SKU
func (e *testEnv) seedSku(skuID, merchantID uint64, price string, stock int) *model.Sku {
	sku := &model.Sku{
		SkuID:      skuID,
		ProductID:  skuID + 1000,
		MerchantID: merchantID,
		Title:      "测试商品",
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Status:     1,
	}
	e.repos.skus[skuID] = sku
	return sku
}

// seedPlan 预置订阅套餐
func (e *testEnv) seedPlan(planID uint64, monthlyPrice string) *model.Plan {
	plan := &model.Plan{PlanID: planID, Name: "测试套餐", MonthlyPrice: decimal.RequireFromString(monthlyPrice), Status: 1}
	e.repos.plans[planID] = plan
	return plan
}

// line 构造商品行，价格快照按SKU单价填写
func line(skuID uint64, quantity int, price string) OrderLine {
	unit := decimal.RequireFromString(price)
	return OrderLine{
		SkuID:     skuID,
		Quantity:  quantity,
		UnitPrice: unit,
		LineTotal: unit.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// createPaidProductOrder 创建并支付一笔商品订单，返回订单ID
func (e *testEnv) createPaidProductOrder(t *testing.T, userID, skuID uint64) uint64 {
	t.Helper()
	sku := e.repos.skus[skuID]
	result, err := e.orderSvc.CreateProductOrders(userID, &CreateOrderRequest{
		AddressID: 1,
		Lines:     []OrderLine{line(skuID, 1, sku.Price.String())},
	})
	if err != nil {
		t.Fatalf("创建订单失败: %v", err)
	}
	order := result.Orders[0]
	payment, err := e.repos.GetByOrderID(order.OrderID)
	if err != nil || payment == nil {
		t.Fatalf("查询支付单失败: %v", err)
	}
	if err := e.paySvc.ConfirmPayment(payment.PaymentNo, ChannelWechat, "wx_123"); err != nil {
		t.Fatalf("支付失败: %v", err)
	}
	return order.OrderID
}
