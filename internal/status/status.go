package status

// OrderStatus 订单状态
type OrderStatus int

// 订单状态编码，与数据库中 order_status 字段一一对应
const (
	Deleted         OrderStatus = 0 // 已删除（软删除）
	PendingPayment  OrderStatus = 1 // 待支付
	Paid            OrderStatus = 2 // 已支付
	PendingShipment OrderStatus = 3 // 待发货
	Shipped         OrderStatus = 4 // 已发货
	Completed       OrderStatus = 5 // 已完成
	Cancelled       OrderStatus = 6 // 已取消
	Refunding       OrderStatus = 7 // 退款中
	Refunded        OrderStatus = 8 // 已退款
)

// transitions 定义各状态允许迁移到的目标状态
var transitions = map[OrderStatus][]OrderStatus{
	PendingPayment:  {Paid, Cancelled},
	Paid:            {PendingShipment, Refunding},
	PendingShipment: {Shipped, Refunding},
	Shipped:         {Completed, Refunding},
	Completed:       {Refunding},
	Refunding:       {Refunded, Completed},
	Cancelled:       {},
	Refunded:        {},
	Deleted:         {},
}

// CanTransition 判断订单能否从from状态迁移到to状态
// 原状态与目标状态相同时视为幂等操作，直接允许
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// IsValid 判断是否为合法的状态编码
func (s OrderStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsPayable 判断订单当前是否可支付
func (s OrderStatus) IsPayable() bool {
	return s == PendingPayment
}

// IsCancellable 判断买家当前是否可取消订单
func (s OrderStatus) IsCancellable() bool {
	return s == PendingPayment
}

// IsShippable 判断商家当前是否可发货
func (s OrderStatus) IsShippable() bool {
	return s == Paid || s == PendingShipment
}

// IsConfirmable 判断买家当前是否可确认收货
func (s OrderStatus) IsConfirmable() bool {
	return s == Shipped
}

// IsRefundable 判断买家当前是否可申请退款
func (s OrderStatus) IsRefundable() bool {
	return s == Shipped || s == Completed
}

// IsDeletable 判断订单当前是否可删除（仅终态允许软删除）
func (s OrderStatus) IsDeletable() bool {
	return s == Completed || s == Cancelled || s == Refunded
}

// IsTerminal 判断是否为终态
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Desc 返回状态的中文描述
func (s OrderStatus) Desc() string {
	switch s {
	case Deleted:
		return "已删除"
	case PendingPayment:
		return "待支付"
	case Paid:
		return "已支付"
	case PendingShipment:
		return "待发货"
	case Shipped:
		return "已发货"
	case Completed:
		return "已完成"
	case Cancelled:
		return "已取消"
	case Refunding:
		return "退款中"
	case Refunded:
		return "已退款"
	default:
		return "未知状态"
	}
}
