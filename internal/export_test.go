package internal

import (
	"context"
	"net"
)

func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	return a.serve(ctx, ln)
}
