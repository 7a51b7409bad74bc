// Package shutdown coordinates graceful termination of the gateway.
//
// A Handler waits for SIGINT, SIGTERM or a programmatic Trigger (the local
// admin socket sends one), then runs the registered hooks in reverse order
// under a shared deadline:
//
//	h := shutdown.NewHandler(30*time.Second, log)
//	h.OnShutdown(drainConnections)
//	h.OnShutdown(stopHTTP)
//	err := h.Wait()
package shutdown
