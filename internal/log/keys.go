package log

const (
	KeyAppName            = "app"
	KeyBody               = "body"
	KeyCacheKey           = "cacheKey"
	KeyCart               = "cart"
	KeyCartID             = "cartId"
	KeyCartItem           = "cartItem"
	KeyCartItemID         = "cartItemId"
	KeyCartItemQuantity   = "cartItemQuantity"
	KeyCartResponse       = "cartResponse"
	KeyChannel            = "channel"
	KeyCoffeeID           = "coffeeId"
	KeyConfig             = "config"
	KeyDbURL              = "dbUrl"
	KeyHeader             = "header"
	KeyOrder              = "order"
	KeyOrderID            = "orderId"
	KeyOwnerID            = "ownerId"
	KeyPathValues         = "pathValues"
	KeyPrice              = "price"
	KeyProcess            = "process"
	KeyRequest            = "request"
	KeyRequestBody        = "requestBody"
	KeyRequestHost        = "host"
	KeyRequestID          = "requestId"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestProcessedAt = "requestProcessedAt"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeySpanID             = "spanId"
	KeyTag                = "tag"
	KeyTraceID            = "traceId"
	KeyURL                = "url"
)
