package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/karloscodes/dataaccess"
)

// SelectDatabase routes every request to the development database and
// attaches the request abort signal. Register it globally; routes that must
// reach production add UseProductionDB after it.
//
// When the development database cannot be resolved the request carries no
// connection string. Production routes still work, and data access on any
// other route fails with dataaccess.ErrContextNotInitialized.
func SelectDatabase(resolver dataaccess.ConnectionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// fasthttp closes the request context's Done channel on shutdown.
		c.SetUserContext(dataaccess.WithRequestAbort(c.UserContext(), c.Context()))
		_ = selectTarget(c, resolver, dataaccess.Development)
		return c.Next()
	}
}

// UseProductionDB marks a route or group as served by the production
// database.
func UseProductionDB(resolver dataaccess.ConnectionResolver) fiber.Handler {
	return Database(resolver, dataaccess.Production)
}

// Database routes the request to target. The last selection made for a
// request wins.
func Database(resolver dataaccess.ConnectionResolver, target dataaccess.Target) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := selectTarget(c, resolver, target); err != nil {
			return err
		}
		return c.Next()
	}
}

func selectTarget(c *fiber.Ctx, resolver dataaccess.ConnectionResolver, target dataaccess.Target) error {
	connectionString, err := resolver.ConnectionString(target)
	if err != nil {
		return fmt.Errorf("middleware: resolve %s database: %w", target, err)
	}
	ctx := dataaccess.WithConnectionString(c.UserContext(), connectionString)
	c.SetUserContext(dataaccess.WithTarget(ctx, target))
	return nil
}
