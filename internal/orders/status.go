package orders

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPending        Status = "pending" // dibayar / COD, menunggu seller
	StatusShipped        Status = "shipped"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusPendingPayment: {StatusPending: true, StatusCancelled: true},
	StatusPending:        {StatusShipped: true, StatusCancelled: true},
	StatusShipped:        {StatusCompleted: true},
	StatusCompleted:      {},
	StatusCancelled:      {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
