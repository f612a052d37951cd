package gateway

import "go.uber.org/fx"

var Module = fx.Module("gateway.client",
	fx.Provide(
		LoadConfig,
		New,
		func(c *Client) API { return c },
	),
)
