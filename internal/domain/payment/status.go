package payment

type Status string

const (
	StatusInitiated  Status = "initiated"
	StatusSuccessful Status = "successful"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

const (
	EventCaptured      = "payment.captured"
	EventFailed        = "payment.failed"
	EventRefundCreated = "refund.created"
)
