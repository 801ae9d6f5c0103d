// Package dataaccess provides request-scoped access to a SQL database for
// web APIs.
//
// Each request carries the connection string of the database it was routed
// to (production or development) in its context. Three entry points read
// that connection string and run one command on a fresh connection:
//
//   - GetFromView runs a SELECT built from a select clause and an optional
//     where clause and maps the rows into a slice of T.
//   - GetFromStoredProcedure runs a stored procedure and maps its result set.
//   - Manager.ExecuteStoredProcedure runs a stored procedure with the @msg
//     and @result output parameters reserved and returns them as a
//     StoredProcedureResponse.
//
// # Routing
//
// The middleware package selects the target for each fiber request:
//
//	app.Use(middleware.SelectDatabase(cfg))
//	app.Post("/orders", middleware.UseProductionDB(cfg), createOrder)
//
// # Cancellation
//
// Every call runs under a context that is cancelled when the caller's
// context is done, the host aborts the request, or the manager's default
// timeout elapses, whichever comes first. Read errors that happen after
// that point match ErrCancelled and the cause (ErrRequestAborted or
// ErrCommandTimeout).
//
// # Parameters
//
// Parameters are typed values built with database.Int, database.String,
// database.Binary, database.Table and friends. A parameter named
// FileContent is always sent as binary.
//
//	resp, err := mgr.ExecuteStoredProcedure(c.UserContext(), "dbo.CreateOrder",
//	    database.P("CustomerId", database.Int(42)),
//	    database.P("Items", database.Table("dbo.OrderItemType", items)),
//	)
package dataaccess
