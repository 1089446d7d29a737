package http

import (
	"context"

	"golang.org/x/sync/singleflight"
)

var reportBuildGroup singleflight.Group

// singleflightBuild collapses concurrent identical report builds into one
// execution; waiters share the result.
func singleflightBuild(ctx context.Context, key string, fn func(context.Context) ([]byte, error)) ([]byte, error, bool) {
	resultChan := reportBuildGroup.DoChan(key, func() (interface{}, error) {
		return fn(ctx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err(), false
	case res := <-resultChan:
		payload, _ := res.Val.([]byte)
		return payload, res.Err, res.Shared
	}
}
