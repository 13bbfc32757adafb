package constants

// 通用错误消息
const (
	// 认证相关错误
	ErrUnauthorized           = "未授权，请先登录"
	ErrInvalidToken           = "无效的Token"
	ErrInsufficientPermission = "权限不足"

	// 参数相关错误
	ErrInvalidParams  = "参数错误"
	ErrInvalidRequest = "无效请求格式"

	// 订单相关错误
	ErrOrderNotFound      = "订单不存在"
	ErrOrderNotPayable    = "订单当前状态不可支付"
	ErrOrderNotCancelable = "订单当前状态不可取消"
	ErrInvalidTransition  = "订单状态不允许该操作"
	ErrStatusChanged      = "订单状态已变更，请刷新后重试"
	ErrNoOrdersCreated    = "没有可创建的订单"
	ErrAlreadySubscribed  = "您已订阅该套餐，无需重复订阅"

	// 支付相关错误
	ErrPaymentNotFound       = "支付单不存在"
	ErrAlreadyPaid           = "订单已支付，请勿重复支付"
	ErrPaymentNotConfirmable = "支付单当前状态不可确认"
	ErrPaymentNotCancellable = "支付单当前状态不可取消"
	ErrUnsupportedChannel    = "不支持的支付渠道"
	ErrMalformedCallback     = "回调报文格式错误"

	// 发货与退款相关错误
	ErrMissingShipmentInfo = "物流公司和运单号不能为空"
	ErrRefundNotAllowed    = "订单当前状态不可申请退款"

	// 系统错误
	ErrInternalServer = "服务器内部错误"
)

// 成功消息
const (
	SuccessCreate = "创建成功"
	SuccessUpdate = "更新成功"
	SuccessDelete = "删除成功"
	SuccessGet    = "获取成功"
	SuccessPay    = "支付成功"
	SuccessShip   = "发货成功"
	SuccessCancel = "取消成功"
)
