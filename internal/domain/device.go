package domain

import "context"

type deviceKey struct{}

// ContextWithDevice stores the caller's device identity in the context.
// History, interactions and dismissals are keyed by it.
func ContextWithDevice(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceKey{}, deviceID)
}

// DeviceFromContext returns the device identity, or "" when the caller is anonymous.
func DeviceFromContext(ctx context.Context) string {
	id, _ := ctx.Value(deviceKey{}).(string)
	return id
}
