package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thoughtjack/thoughtjack/internal/behavior"
	"github.com/thoughtjack/thoughtjack/internal/generator"
	"github.com/thoughtjack/thoughtjack/internal/phase"
	"github.com/thoughtjack/thoughtjack/internal/scenario"
	"github.com/thoughtjack/thoughtjack/internal/transport"
)

// renderContent turns a scenario.Content into response text: the literal
// string, or a generator's produced bytes, drained to completion when
// streaming (spec.md §4.B "Consumers must read to completion or drop").
func (s *Server) renderContent(content scenario.Content) (string, error) {
	if content.Generate == nil {
		return content.Text, nil
	}
	gen, err := generator.New(*content.Generate, s.scenario.Limits.WithDefaults().Generator)
	if err != nil {
		return "", err
	}
	payload, err := gen.Generate()
	if err != nil {
		return "", err
	}
	if !payload.IsStream() {
		return string(payload.Inline), nil
	}
	var out []byte
	for chunk := range payload.Stream {
		out = append(out, chunk...)
	}
	return string(out), nil
}

// deliverResponse serializes resp and writes it through the scoping
// chain's resolved delivery strategy.
func (s *Server) deliverResponse(ctx context.Context, req *transport.Request, resp *transport.Response, item behavior.Request) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("failed to marshal response", zap.Error(err))
		return
	}

	state := s.engine.EffectiveState()
	delivery := behavior.ResolveDelivery(s.opts.DeliveryOverride, item, state.Behaviors, s.scenario.Behaviors)

	start := time.Now()
	err = behavior.Deliver(ctx, writerSink{s}, delivery, data)
	s.stats.RecordResponse(time.Since(start), err != nil || resp.Error != nil)
	if err != nil {
		s.log.Warn("delivery failed", zap.String("method", req.Method), zap.Error(err))
	}

	if fired := s.engine.OnContentMatch("response", string(data)); fired != nil {
		s.flushEntryActions(fired)
	}
}

// writerSink adapts Server's serialized writer to io.Writer for
// behavior.Deliver, which writes bytes directly rather than going through
// WriteLine's own framing (delivery strategies control their own
// newline/truncation semantics).
type writerSink struct{ s *Server }

func (w writerSink) Write(p []byte) (int, error) {
	if err := w.s.writer.WriteRaw(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// flushEntryActions enqueues the notifications a phase transition's entry
// actions produce, after the triggering response has finished writing
// (spec.md §4.E: "response then notification").
func (s *Server) flushEntryActions(fired *phase.EntryActionFired) {
	for _, action := range fired.Actions {
		if action.Kind != scenario.ActionNotifyListChanged {
			continue
		}
		method := fmt.Sprintf("notifications/%s/list_changed", action.Target)
		notif, err := transport.NewNotification(method, nil)
		if err != nil {
			s.log.Error("failed to build entry-action notification", zap.Error(err))
			continue
		}
		data, err := json.Marshal(notif)
		if err != nil {
			s.log.Error("failed to marshal entry-action notification", zap.Error(err))
			continue
		}
		if err := s.writer.WriteLine(data); err != nil {
			s.log.Warn("failed to deliver entry-action notification", zap.Error(err))
			continue
		}
		s.stats.RecordNotification()
	}
}

// runSideEffects spawns every side effect scoped to trigger for the
// current effective state, tracked by the server's shutdown wait group.
func (s *Server) runSideEffects(ctx context.Context, trigger scenario.SideEffectTrigger, req *transport.Request, resp *transport.Response) {
	state := s.engine.EffectiveState()
	effects := behavior.ActiveSideEffects(trigger, state.Behaviors, s.scenario.Behaviors)
	if len(effects) == 0 {
		return
	}
	respData, _ := json.Marshal(resp)
	for _, eff := range effects {
		s.stats.RecordBehavior(string(eff.Kind))
		behavior.Spawn(ctx, &s.sideEffectWG, serverWriterAdapter{s}, serverWriterAdapter{s}, eff, respData)
	}
}
