package oms

import "errors"

var (
	errDuplicateOrder       = errors.New("duplicate order")
	errOrderIDNotFound      = errors.New("orderID not found")
	errGatewayIDNotFound    = errors.New("gatewayID not found")
	errInvalidOrderStatus   = errors.New("invalid order status")
	errUnsupportedOrderType = errors.New("unsupported order type")
	errPriceOffTick         = errors.New("price not a multiple of tick size")
)
