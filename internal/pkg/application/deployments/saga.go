package deployments

import (
	"context"
	"errors"
	"fmt"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"go.opentelemetry.io/otel/trace"
)

// step is one action of a cross system write. compensate undoes a completed action and
// may be nil when there is nothing to undo.
type step struct {
	name       string
	action     func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

type saga struct {
	operation string
	steps     []step
}

func newSaga(operation string, steps ...step) saga {
	return saga{operation: operation, steps: steps}
}

// run executes the steps in order. When a step fails, the compensations of all completed
// steps are executed in reverse order and the error of the failed step is returned, joined
// with any compensation errors.
func (s saga) run(ctx context.Context) error {
	log := logging.GetFromContext(ctx)

	for i, st := range s.steps {
		err := st.action(ctx)
		if err == nil {
			continue
		}

		log.Error().Err(err).Str("operation", s.operation).Str("step", st.name).Msg("step failed, compensating")

		compensationErrs := s.compensate(ctx, s.steps[:i])
		if len(compensationErrs) == 0 {
			return err
		}

		return errors.Join(append([]error{err}, compensationErrs...)...)
	}

	return nil
}

func (s saga) compensate(ctx context.Context, completed []step) []error {
	// compensations must run even if the request context is done
	cctx := detach(ctx)
	log := logging.GetFromContext(cctx)

	var errs []error

	for i := len(completed) - 1; i >= 0; i-- {
		st := completed[i]
		if st.compensate == nil {
			continue
		}

		if err := st.compensate(cctx); err != nil {
			log.Error().Err(err).Str("operation", s.operation).Str("step", st.name).Msg("compensation failed")
			errs = append(errs, fmt.Errorf("compensation of %s failed: %w", st.name, err))
		}
	}

	return errs
}

func detach(ctx context.Context) context.Context {
	detached := logging.NewContextWithLogger(context.Background(), logging.GetFromContext(ctx))
	return trace.ContextWithSpan(detached, trace.SpanFromContext(ctx))
}
