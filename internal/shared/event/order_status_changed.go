package event

const OrderStatusChangedDestination string = "order_status_changed"
const OrderStatusChangedConsumerNotification string = "order_status_changed_notification"

type OrderStatusChangedMessage struct {
	OrderID    int64  `json:"order_id"`
	BuyerID    int64  `json:"buyer_id"`
	SupplierID int64  `json:"supplier_id"`
	OrderRef   string `json:"order_ref"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
}
