// Package telemetry turns snapfx runtime events into Prometheus metrics and
// OpenTelemetry spans.
//
// Both are snapfx.Observer implementations and can be combined:
//
//	rt := snapfx.New(snapfx.WithObserver(snapfx.Observers(
//	    telemetry.Prometheus(telemetry.WithRegistry(reg)),
//	    telemetry.Tracing(telemetry.WithTracerName("my-app")),
//	)))
package telemetry
