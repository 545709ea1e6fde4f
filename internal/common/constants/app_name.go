package constants

const (
	APP_STOREFRONT     = "storefront"
	APP_CART_SERVICE   = "cart-service"
	APP_ORDER_SERVICE  = "order-service"
	AUDIENCE_USER      = "audience-user"
	ISSUER_STOREFRONT  = "storefront-auth"
	LOG_FILE_DEFAULT   = "/var/log/storefront.log"
	PATH_CREATE_ORDER  = "/api/orders/create/"
	PATH_ORDER_MIGRATE = "file://order/migrations"
)
