package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008

	// Spin codes
	QuotaExceeded Code = 200001

	// Claim codes
	InsufficientBalance Code = 300001
	AmountTooSmall      Code = 300002
	SignerUnavailable   Code = 300003
	NonceRace           Code = 300004
)
