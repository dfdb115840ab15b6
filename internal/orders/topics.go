package orders

const (
	TopicOrderCreated = "order.created"
	TopicOrderPayment = "order.payment"
)

// Partition key = order_id supaya semua event satu order terjaga urutannya.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
