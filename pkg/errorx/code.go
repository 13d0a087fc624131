package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest      Code = 100001
	BadResponse     Code = 100002
	NotFound        Code = 100003
	AlreadyExists   Code = 100004
	Internal        Code = 100005
	Unavailable     Code = 100006
	NotImplemented  Code = 100007
	TooManyRequests Code = 100008

	// On-ramp codes
	InvalidAmount       Code = 200001
	InvalidAddress      Code = 200002
	TransactionNotFound Code = 200003
	PaymentNotConfirmed Code = 200004
	PaymentFailed       Code = 200005
	ConversionFailed    Code = 200006
	TransactionExpired  Code = 200007

	// Partner codes
	GatewayUnavailable Code = 300001
	GatewayRejected    Code = 300002
)
