package cache

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Instrumented counts cache outcomes per operation in cdox_cache_operations_total.
type Instrumented struct {
	next Cache
	ops  *prometheus.CounterVec
}

var _ Cache = (*Instrumented)(nil)

// NewInstrumented wraps next and registers its counter on reg.
func NewInstrumented(next Cache, reg prometheus.Registerer) (*Instrumented, error) {
	ops := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cdox_cache_operations_total",
			Help: "Cache operations by operation and result.",
		},
		[]string{"op", "result"},
	)
	if err := reg.Register(ops); err != nil {
		return nil, err
	}
	return &Instrumented{next: next, ops: ops}, nil
}

func (i *Instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := i.next.Get(ctx, key)
	switch {
	case err == nil:
		i.ops.WithLabelValues("get", "hit").Inc()
	case errors.Is(err, ErrMiss):
		i.ops.WithLabelValues("get", "miss").Inc()
	default:
		i.ops.WithLabelValues("get", "error").Inc()
	}
	return val, err
}

func (i *Instrumented) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	err := i.next.Set(ctx, key, val, ttl)
	i.ops.WithLabelValues("set", result(err)).Inc()
	return err
}

func (i *Instrumented) Delete(ctx context.Context, key string) error {
	err := i.next.Delete(ctx, key)
	i.ops.WithLabelValues("delete", result(err)).Inc()
	return err
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
