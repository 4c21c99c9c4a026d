package orders

const (
	TopicOrderPlaced        = "bookstore.order.placed"
	TopicOrderStatusChanged = "bookstore.order.status"
)

// Partition key = order id, so all events of one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
