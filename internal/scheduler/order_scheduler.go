package scheduler

import (
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"auroramall/internal/service"
	"auroramall/pkg/logger"
)

// sweepBatchSize 每轮清理的最大订单数
const sweepBatchSize = 200

// OrderScheduler 订单调度器，负责超时订单清理与每日统计
type OrderScheduler struct {
	orderService  *service.OrderService
	rs            *redsync.Redsync
	cron          *cron.Cron
	logger        *logger.Logger
	sweepInterval time.Duration
	quit          chan struct{}
}

// NewOrderScheduler 创建订单调度器实例
func NewOrderScheduler(
	orderService *service.OrderService,
	redisClient *redis.Client,
	logger *logger.Logger,
	sweepInterval time.Duration,
) *OrderScheduler {
	var rs *redsync.Redsync
	if redisClient != nil {
		rs = redsync.New(goredis.NewPool(redisClient))
	}
	return &OrderScheduler{
		orderService:  orderService,
		rs:            rs,
		cron:          cron.New(),
		logger:        logger,
		sweepInterval: sweepInterval,
		quit:          make(chan struct{}),
	}
}

// Start 启动订单调度器
func (s *OrderScheduler) Start() {
	// 启动超时订单清理的goroutine
	go s.sweepExpiredOrdersScheduler()

	// 每天凌晨1点做一次深度清理，兜底处理常规清理遗漏的订单
	s.cron.AddFunc("0 1 * * *", s.deepSweep)
	s.cron.Start()

	s.logger.Info("订单调度器启动")
}

// Stop 停止订单调度器
func (s *OrderScheduler) Stop() {
	close(s.quit)
	s.cron.Stop()
	s.logger.Info("订单调度器停止")
}

// sweepExpiredOrdersScheduler 超时订单清理定时器
func (s *OrderScheduler) sweepExpiredOrdersScheduler() {
	// 立即运行一次清理
	s.sweepExpiredOrders()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweepExpiredOrders()
		case <-s.quit:
			return
		}
	}
}

// sweepExpiredOrders 清理超时未支付订单的具体实现
// 多实例部署时用分布式锁保证同一时刻只有一个实例在清理
func (s *OrderScheduler) sweepExpiredOrders() {
	if s.rs != nil {
		mutex := s.rs.NewMutex("lock:order:sweep", redsync.WithExpiry(s.sweepInterval))
		if err := mutex.Lock(); err != nil {
			// 没抢到锁，说明其他实例正在清理
			return
		}
		defer mutex.Unlock()
	}

	expired, err := s.orderService.ExpireOverdueOrders(time.Now(), sweepBatchSize)
	if err != nil {
		s.logger.Error("超时订单清理失败", "error", err)
		return
	}
	if expired > 0 {
		s.logger.Info("超时订单清理完成", "expired", expired)
	}
}

// deepSweep 每日深度清理，不限批次大小
func (s *OrderScheduler) deepSweep() {
	if s.rs != nil {
		mutex := s.rs.NewMutex("lock:order:deepsweep", redsync.WithExpiry(10*time.Minute))
		if err := mutex.Lock(); err != nil {
			return
		}
		defer mutex.Unlock()
	}

	total := 0
	for {
		expired, err := s.orderService.ExpireOverdueOrders(time.Now(), sweepBatchSize)
		if err != nil {
			s.logger.Error("每日深度清理失败", "error", err)
			break
		}
		total += expired
		if expired < sweepBatchSize {
			break
		}
	}
	s.logger.Info("每日深度清理完成", "expired", total)
}
