// Package health implements liveness and readiness probes.
//
// # Usage
//
//	checker := health.New(0)
//	checker.RegisterCheck("cache", db.Ping)
//	http.HandleFunc("/health", checker.LivenessHandler())
//	http.HandleFunc("/ready", checker.ReadinessHandler())
//
// Liveness always returns 200 while the process is running. Readiness runs
// every registered check concurrently and returns 503 if any of them fail.
package health
