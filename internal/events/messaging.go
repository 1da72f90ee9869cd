package events

const (
	EventsExchange             = "ecommerce.events"
	CartUpdatedRoutingKey      = "cart.updated.v1"
	CartNotificationRoutingKey = "cart.notification.v1"
	cartManagerName            = "cart-manager-go"
)

func declareEventsExchange(ch Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
