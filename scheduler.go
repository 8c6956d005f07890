package strobe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// scheduler drives a finalized graph to completion. Cooperative and
// non-preemptive: one node's Process runs to completion before the next
// is considered. Nodes are visited in topological order, which doubles as
// the tie-break among simultaneously runnable nodes, so identical inputs
// produce identical runs.
type scheduler struct {
	g     *Graph
	order []Node
	log   *slog.Logger
}

type nodeState struct {
	done            bool
	pendingShutdown bool
}

func newScheduler(g *Graph, log *slog.Logger) *scheduler {
	return &scheduler{
		g:     g,
		order: g.topo,
		log:   log,
	}
}

func (s *scheduler) run(ctx context.Context) error {
	states := make(map[string]*nodeState, len(s.order))
	for _, n := range s.order {
		states[n.Name()] = &nodeState{}
	}

	lastRunnable := ""

	for {
		progress := false
		remaining := 0

		for _, n := range s.order {
			if err := ctx.Err(); err != nil {
				return err
			}

			st := states[n.Name()]
			if st.done {
				continue
			}
			remaining++

			if st.pendingShutdown {
				ok, err := s.shutdown(n, st)
				if err != nil {
					return err
				}
				if ok {
					progress = true
					lastRunnable = n.Name()
				}
				continue
			}

			if !n.CanProcess() {
				if s.upstreamEnded(n) {
					ok, err := s.shutdown(n, st)
					if err != nil {
						return err
					}
					if ok {
						progress = true
						lastRunnable = n.Name()
					}
				}
				continue
			}

			status, err := n.Process(ctx)
			if err != nil {
				if errors.Is(err, ErrCapacityExceeded) {
					// Downstream is full. Not fatal: consumers run later
					// in this pass and free space for the next one.
					continue
				}
				return fmt.Errorf("node %q: %w", n.Name(), err)
			}

			switch status {
			case Continue:
				progress = true
				lastRunnable = n.Name()
			case Finished:
				progress = true
				lastRunnable = n.Name()
				if _, err := s.shutdown(n, st); err != nil {
					return err
				}
			case NeedMoreInput:
				if s.upstreamEnded(n) {
					ok, err := s.shutdown(n, st)
					if err != nil {
						return err
					}
					if ok {
						progress = true
						lastRunnable = n.Name()
					}
				}
			}
		}

		if remaining == 0 {
			return s.checkDrained()
		}
		if !progress {
			return &StalledError{LastRunnable: lastRunnable}
		}
	}
}

// upstreamEnded reports whether every input's producer has marked end of
// stream. Vacuously true for sources, which is what retires a source
// whose CanProcess went false without an explicit Finished.
func (s *scheduler) upstreamEnded(n Node) bool {
	for _, in := range n.Inputs() {
		if in.buf == nil || !in.buf.endOfStream() {
			return false
		}
	}
	return true
}

// shutdown flushes a node and retires it, propagating end of stream to
// its outputs. A flush blocked by a full downstream buffer reports false
// and is retried on a later pass; anything else is fatal.
func (s *scheduler) shutdown(n Node, st *nodeState) (bool, error) {
	if err := n.Shutdown(); err != nil {
		if errors.Is(err, ErrCapacityExceeded) {
			st.pendingShutdown = true
			return false, nil
		}
		return false, fmt.Errorf("node %q: shutdown: %w", n.Name(), err)
	}

	for _, out := range n.Outputs() {
		out.markEndOfStream()
	}
	st.done = true
	st.pendingShutdown = false
	s.log.Debug("node finished", "node", n.Name())
	return true, nil
}

// checkDrained verifies the termination postcondition: every buffer fully
// consumed. A leftover here means a node retired without consuming its
// input, which is a node bug, reported like a stall.
func (s *scheduler) checkDrained() error {
	for _, e := range s.g.edges {
		if !e.isDrained() {
			written, consumed := e.cursors()
			return fmt.Errorf("%w: buffer not drained after completion (%d written, %d consumed)",
				ErrStalledGraph, written, consumed)
		}
	}
	return nil
}
