package behavior

import "github.com/thoughtjack/thoughtjack/internal/scenario"

// Request describes the context a scoping decision is made against: which
// item (if any) the current response concerns, so item-level overrides can
// match it.
type Request struct {
	ItemKind string // "tool" | "resource" | "prompt" | ""
	ItemName string
}

// ResolveDelivery picks the effective delivery config by first match among
// CLI override → item-level override → phase override → baseline →
// built-in default (spec.md §4.G "Scoping chain"). cliOverride is nil when
// no `--delivery` flag was passed.
func ResolveDelivery(cliOverride *scenario.DeliveryConfig, req Request, phaseBehaviors scenario.Behaviors, baseline scenario.Behaviors) scenario.DeliveryConfig {
	if cliOverride != nil {
		return *cliOverride
	}
	for _, ov := range phaseBehaviors.ItemOverrides {
		if matches(ov.Item, req) {
			return ov.Delivery
		}
	}
	if phaseBehaviors.Delivery.Kind != "" {
		return phaseBehaviors.Delivery
	}
	for _, ov := range baseline.ItemOverrides {
		if matches(ov.Item, req) {
			return ov.Delivery
		}
	}
	if baseline.Delivery.Kind != "" {
		return baseline.Delivery
	}
	return scenario.DefaultDelivery()
}

func matches(item scenario.ItemScope, req Request) bool {
	return item.Kind == req.ItemKind && item.Name == req.ItemName
}

// ActiveSideEffects returns the side effects that apply for trigger across
// both phase-level and baseline configuration, phase taking precedence
// when both define the same trigger. Side effects are independent of the
// delivery scoping chain — multiple can be active at once (spec.md §4.G:
// "Side effects are independent actions attached to triggers").
func ActiveSideEffects(trigger scenario.SideEffectTrigger, phaseBehaviors, baseline scenario.Behaviors) []scenario.SideEffectConfig {
	var out []scenario.SideEffectConfig
	for _, se := range phaseBehaviors.SideEffects {
		if se.Trigger == trigger {
			out = append(out, se)
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, se := range baseline.SideEffects {
		if se.Trigger == trigger {
			out = append(out, se)
		}
	}
	return out
}
