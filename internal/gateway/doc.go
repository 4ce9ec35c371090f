// Package gateway serves the authorizing gateway.
//
// Handler is the per-request state machine. A request for
// /health-check is answered directly. Otherwise the escaped path is
// matched against the route table (404 on a miss), authorized when the route
// requires it (503 when the authorization endpoint refuses or cannot be
// reached) and forwarded (503 when the backend cannot be reached). A
// backend response is passed back unchanged.
//
// Gateway hosts the handler on a gin engine behind one HTTP listener and
// manages its lifecycle. The engine routes /health-check for every method
// and hands every other request to the handler through NoRoute:
//
//	gw, err := gateway.New(cfg,
//	    gateway.WithLogger(logger),
//	    gateway.WithRouteHandler(handler),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := gw.Start(ctx); err != nil {
//	    return err
//	}
//	defer gw.Stop(context.Background())
package gateway
