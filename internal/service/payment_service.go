package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"auroramall/internal/model"
	"auroramall/internal/status"
	"auroramall/pkg/logger"
)

// 支付渠道编码
const (
	ChannelWechat  = "wechat"
	ChannelAlipay  = "alipay"
	ChannelBank    = "bank"
	ChannelBalance = "balance"
)

// paymentSessionTTL 支付会话在Redis中的缓存时长
const paymentSessionTTL = 30 * time.Minute

// channels 支付渠道目录
var channels = []model.PaymentChannel{
	{Code: ChannelWechat, Name: "微信支付", Icon: "/static/icons/wechat.png", Enabled: true},
	{Code: ChannelAlipay, Name: "支付宝", Icon: "/static/icons/alipay.png", Enabled: true},
	{Code: ChannelBank, Name: "银行卡", Icon: "/static/icons/bank.png", Enabled: true},
	{Code: ChannelBalance, Name: "余额支付", Icon: "/static/icons/balance.png", Enabled: true},
}

// PaymentService 支付服务
type PaymentService struct {
	paymentRepo   PaymentRepo
	orderRepo     OrderRepo
	statusService *OrderStatusService
	redisClient   *redis.Client
	logger        *logger.Logger
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	paymentRepo PaymentRepo,
	orderRepo OrderRepo,
	statusService *OrderStatusService,
	redisClient *redis.Client,
	logger *logger.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo:   paymentRepo,
		orderRepo:     orderRepo,
		statusService: statusService,
		redisClient:   redisClient,
		logger:        logger,
	}
}

// ListChannels 获取支付渠道目录
func (s *PaymentService) ListChannels() []model.PaymentChannel {
	return channels
}

// CreatePayment 发起支付，返回支付会话
// 订单创建时已生成支付单，这里只更新支付渠道并生成收银台参数
func (s *PaymentService) CreatePayment(userID, orderID uint64, channel string) (*model.PaymentSession, error) {
	if !isValidChannel(channel) {
		return nil, ErrUnsupportedChannel
	}

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
	if !order.OrderStatus.IsPayable() {
		if order.OrderStatus == status.Paid || order.OrderStatus.IsShippable() {
			return nil, ErrAlreadyPaid
		}
		return nil, ErrOrderNotPayable
	}

	// 订单状态快照可能滞后，以支付单为准再挡一次重复支付
	paid, err := s.paymentRepo.HasSucceededByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if paid {
		return nil, ErrAlreadyPaid
	}

	payment, err := s.paymentRepo.GetByOrderID(orderID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.PaymentStatus == model.PaymentStatusSucceeded {
		return nil, ErrAlreadyPaid
	}

	if payment.Channel != channel {
		if err := s.paymentRepo.UpdateChannel(payment.PaymentID, channel); err != nil {
			return nil, err
		}
		payment.Channel = channel
	}
	// 渠道已确定，支付单进入支付中
	if payment.PaymentStatus == model.PaymentStatusCreated {
		if _, err := s.paymentRepo.UpdateStatusCAS(payment.PaymentID, model.PaymentStatusCreated, model.PaymentStatusPending); err != nil {
			return nil, err
		}
		payment.PaymentStatus = model.PaymentStatusPending
	}

	session := &model.PaymentSession{
		PaymentNo: payment.PaymentNo,
		OrderNo:   order.OrderNo,
		Channel:   channel,
		Amount:    payment.PaymentAmount,
		PayParams: buildPayParams(channel, payment),
		ExpireAt:  time.Now().Add(paymentSessionTTL),
	}
	s.cacheSession(session)
	return session, nil
}

// GetPaymentStatus 查询支付单状态
func (s *PaymentService) GetPaymentStatus(userID uint64, paymentNo string) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByPaymentNo(paymentNo)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.UserID != userID {
		return nil, ErrUnauthorized
	}
	return payment, nil
}

// ConfirmPayment 确认支付成功，幂等：重复确认已成功的支付单直接返回成功
// 先以乐观锁推进订单状态，抢锁失败说明订单已被其他请求处理
func (s *PaymentService) ConfirmPayment(paymentNo, channel, thirdPartyNo string) error {
	payment, err := s.paymentRepo.GetByPaymentNo(paymentNo)
	if err != nil {
		return err
	}
	if payment == nil {
		return ErrPaymentNotFound
	}
	if payment.PaymentStatus == model.PaymentStatusSucceeded {
		return nil
	}
	if payment.PaymentStatus != model.PaymentStatusCreated && payment.PaymentStatus != model.PaymentStatusPending {
		return ErrPaymentNotConfirmable
	}

	order, err := s.orderRepo.GetByID(payment.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if !order.OrderStatus.IsPayable() {
		return ErrOrderNotPayable
	}

	// 订单状态是唯一的竞争点，先抢订单再改支付单
	if err := s.statusService.Transition(order, status.Paid); err != nil {
		return err
	}

	if channel == "" {
		channel = payment.Channel
	}
	ok, err := s.paymentRepo.MarkSucceededCAS(payment.PaymentID, channel, thirdPartyNo, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		// 订单已经抢到，支付单却已处于不可推进的终态，记录异常等人工对账
		// 窗口期内到达的用户取消会被MarkSucceededCAS直接覆盖，不会走到这里
		s.logger.Error("支付单状态异常", "payment_no", paymentNo, "order_no", order.OrderNo)
		return ErrStatusChanged
	}

	if err := s.orderRepo.UpdatePaidAmount(order.OrderID, payment.PaymentAmount); err != nil {
		s.logger.Error("更新实付金额失败", "order_no", order.OrderNo, "error", err)
	}

	// 支付完成后的结算：商品订单进入待发货，订阅订单直接完成
	if order.OrderType == model.OrderTypeSubscription {
		err = s.statusService.TransitionChain(order, status.PendingShipment, status.Shipped, status.Completed)
	} else {
		err = s.statusService.Transition(order, status.PendingShipment)
	}
	if err != nil {
		s.logger.Error("支付结算状态推进失败", "order_no", order.OrderNo, "error", err)
		return err
	}

	s.dropSession(paymentNo)
	s.logger.Info("支付成功", "payment_no", paymentNo, "order_no", order.OrderNo, "channel", channel)
	return nil
}

// CancelPayment 取消支付单，仅未支付的支付单允许取消，订单保持待支付可重新发起
func (s *PaymentService) CancelPayment(userID uint64, paymentNo string) error {
	payment, err := s.paymentRepo.GetByPaymentNo(paymentNo)
	if err != nil {
		return err
	}
	if payment == nil {
		return ErrPaymentNotFound
	}
	if payment.UserID != userID {
		return ErrUnauthorized
	}
	if payment.PaymentStatus != model.PaymentStatusCreated && payment.PaymentStatus != model.PaymentStatusPending {
		return ErrPaymentNotCancellable
	}

	ok, err := s.paymentRepo.UpdateStatusCAS(payment.PaymentID, payment.PaymentStatus, model.PaymentStatusCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return ErrStatusChanged
	}
	s.dropSession(paymentNo)
	return nil
}

// HandleGatewayCallback 处理支付网关回调
// 各渠道报文字段不同，先按渠道提取支付单号和第三方流水号再确认支付
func (s *PaymentService) HandleGatewayCallback(channel string, payload map[string]interface{}) error {
	if !isValidChannel(channel) {
		return ErrUnsupportedChannel
	}

	paymentNo, thirdPartyNo, err := extractCallbackFields(channel, payload)
	if err != nil {
		return err
	}
	return s.ConfirmPayment(paymentNo, channel, thirdPartyNo)
}

// extractCallbackFields 从回调报文中提取支付单号和第三方流水号
func extractCallbackFields(channel string, payload map[string]interface{}) (string, string, error) {
	if payload == nil {
		return "", "", ErrMalformedCallback
	}

	var paymentNoKey, thirdPartyKey string
	switch channel {
	case ChannelWechat:
		paymentNoKey, thirdPartyKey = "out_trade_no", "transaction_id"
	case ChannelAlipay:
		paymentNoKey, thirdPartyKey = "out_trade_no", "trade_no"
	default:
		paymentNoKey, thirdPartyKey = "paymentNo", "serialNo"
	}

	paymentNo, ok := payload[paymentNoKey].(string)
	if !ok || paymentNo == "" {
		return "", "", ErrMalformedCallback
	}
	thirdPartyNo, _ := payload[thirdPartyKey].(string)
	return paymentNo, thirdPartyNo, nil
}

// buildPayParams 生成各渠道拉起支付所需的参数（模拟网关）
func buildPayParams(channel string, payment *model.Payment) map[string]interface{} {
	switch channel {
	case ChannelWechat:
		return map[string]interface{}{
			"prepay_id": fmt.Sprintf("wx_prepay_%s", payment.PaymentNo),
			"code_url":  fmt.Sprintf("weixin://wxpay/bizpayurl?pr=%s", payment.PaymentNo),
		}
	case ChannelAlipay:
		return map[string]interface{}{
			"pay_url": fmt.Sprintf("https://openapi.alipay.com/gateway.do?out_trade_no=%s", payment.PaymentNo),
		}
	case ChannelBank:
		return map[string]interface{}{
			"redirect_url": fmt.Sprintf("/bank/cashier?paymentNo=%s", payment.PaymentNo),
		}
	default:
		return map[string]interface{}{
			"paymentNo": payment.PaymentNo,
		}
	}
}

// cacheSession 将支付会话写入Redis缓存
func (s *PaymentService) cacheSession(session *model.PaymentSession) {
	if s.redisClient == nil {
		return
	}
	data, err := json.Marshal(session)
	if err != nil {
		return
	}
	key := "payment:session:" + session.PaymentNo
	if err := s.redisClient.Set(context.Background(), key, data, paymentSessionTTL).Err(); err != nil {
		s.logger.Warn("缓存支付会话失败", "payment_no", session.PaymentNo, "error", err)
	}
}

// dropSession 删除Redis中的支付会话
func (s *PaymentService) dropSession(paymentNo string) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(context.Background(), "payment:session:"+paymentNo).Err(); err != nil {
		s.logger.Warn("删除支付会话失败", "payment_no", paymentNo, "error", err)
	}
}

func isValidChannel(channel string) bool {
	for _, c := range channels {
		if c.Code == channel && c.Enabled {
			return true
		}
	}
	return false
}
