// Package health serves the admin liveness, health and readiness endpoints of the gateway.
//
// /live always answers {"status":"ok"}. /health reports version and
// uptime. /ready runs the registered dependency checks: a failing
// critical check answers 503, any other failure reports "degraded" with
// 200.
//
//	checker := health.NewChecker(version, health.WithLogger(logger))
//	checker.RegisterCheck(health.StateCheck("gateway", gw.IsRunning, health.WithCritical(true)))
//	checker.RegisterCheck(health.TCPHealthCheck("authorization_api", "127.0.0.1:8081"))
//
//	mux := http.NewServeMux()
//	checker.RegisterRoutes(mux)
package health
