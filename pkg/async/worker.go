package async

import (
	"context"
	"fmt"
	"sync"
	"time"

	"auroramall/pkg/logger"
)

// Task 表示一个异步任务，通常用于订单状态变更后的通知推送
type Task struct {
	ID       string
	Handler  func(ctx context.Context) error
	Timeout  time.Duration
	RetryMax int
}

// Worker 异步任务处理器
type Worker struct {
	taskQueue chan Task
	logger    *logger.Logger
	wg        sync.WaitGroup
}

// NewWorker 创建一个新的工作器
func NewWorker(queueSize int, logger *logger.Logger) *Worker {
	return &Worker{
		taskQueue: make(chan Task, queueSize),
		logger:    logger,
	}
}

// Start 启动工作器
func (w *Worker) Start(numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.processTask()
	}
}

// Stop 停止工作器，等待队列中的任务全部执行完毕
func (w *Worker) Stop() {
	close(w.taskQueue)
	w.wg.Wait()
}

// AddTask 将任务加入队列
func (w *Worker) AddTask(handler func()) {
	task := Task{
		ID: fmt.Sprintf("task_%d", time.Now().UnixNano()),
		Handler: func(ctx context.Context) error {
			handler()
			return nil
		},
	}
	w.taskQueue <- task
}

// processTask 处理任务的工作循环
func (w *Worker) processTask() {
	defer w.wg.Done()

	for task := range w.taskQueue {
		w.executeTask(task)
	}
}

// executeTask 执行单个任务
func (w *Worker) executeTask(task Task) {
	ctx := context.Background()
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	// 执行任务，支持重试
	var err error
	for attempt := 0; attempt <= task.RetryMax; attempt++ {
		if attempt > 0 {
			w.logger.Info("重试异步任务", "task_id", task.ID, "attempt", attempt)
			time.Sleep(time.Second * time.Duration(attempt)) // 简单的退避策略
		}

		err = task.Handler(ctx)
		if err == nil {
			return
		}

		w.logger.Error("异步任务执行失败", "task_id", task.ID, "attempt", attempt, "error", err)
	}

	w.logger.Error("异步任务最终失败", "task_id", task.ID, "error", err)
}
