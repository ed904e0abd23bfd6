package constants

const (
	AppCoffeeCart           = "coffee-cart"
	AppCartService          = "cart-service"
	AppOrderService         = "order-service"
	AppCatalogService       = "catalog-service"
	AppNotificationListener = "notification-listener"
)

const (
	CacheKeyCart           = "carts:%s"
	CacheKeyCartGeneration = "carts:%s:generation"
	CacheKeyCoffee         = "coffees:%s"
)

const ChannelOrderCreated = "order.created"
