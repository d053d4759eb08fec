package context

import "context"

type workstationKey struct{}

// NewContextWithWorkstation attaches the workstation identity set by the
// cookie middleware.
func NewContextWithWorkstation(ctx context.Context, workstation string) context.Context {
	return context.WithValue(ctx, workstationKey{}, workstation)
}

// GetWorkstationFromContext returns the workstation identity, if set.
func GetWorkstationFromContext(ctx context.Context) (string, bool) {
	ws, ok := ctx.Value(workstationKey{}).(string)
	return ws, ok && ws != ""
}
