package event

const RFQResponseCreatedDestination string = "rfq_response_created"
const RFQResponseCreatedConsumerNotification string = "rfq_response_created_notification"

type RFQResponseCreatedMessage struct {
	RFQID        int64  `json:"rfq_id"`
	ResponseID   int64  `json:"response_id"`
	RequesterID  int64  `json:"requester_id"`
	SupplierID   int64  `json:"supplier_id"`
	SupplierName string `json:"supplier_name"`
	ProductName  string `json:"product_name"`
}
