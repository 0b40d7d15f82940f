package scenario

// DeliveryKind is one of the six wire-delivery strategies (spec.md §4.G).
type DeliveryKind string

const (
	DeliveryNormal    DeliveryKind = "normal"
	DeliverySlowLoris DeliveryKind = "slow_loris"
	DeliveryChunked   DeliveryKind = "chunked"
	DeliveryTruncated DeliveryKind = "truncated"
	DeliveryMalformed DeliveryKind = "malformed"
	DeliveryNoResponse DeliveryKind = "no_response"
)

// DeliveryConfig configures how response bytes hit the wire.
type DeliveryConfig struct {
	Kind DeliveryKind `yaml:"kind"`

	IntervalMs int64  `yaml:"interval_ms,omitempty"` // slow_loris
	ChunkSize  int    `yaml:"chunk_size,omitempty"`  // chunked
	DelayMs    int64  `yaml:"delay_ms,omitempty"`     // chunked
	CutAt      int    `yaml:"cut_at,omitempty"`       // truncated
	Corruption string `yaml:"corruption,omitempty"`   // malformed: "invalid_utf8" | "unbalanced_braces"
}

// SideEffectKind is one of the four independent disruptive actions
// (spec.md §4.G).
type SideEffectKind string

const (
	SideEffectNotificationFlood SideEffectKind = "notification_flood"
	SideEffectPipeDeadlock      SideEffectKind = "pipe_deadlock"
	SideEffectDuplicateRequest  SideEffectKind = "duplicate_request"
	SideEffectConnectionDrop    SideEffectKind = "connection_drop"
)

// SideEffectTrigger names the request lifecycle point a side effect attaches to.
type SideEffectTrigger string

const (
	OnRequest    SideEffectTrigger = "on_request"
	OnResponse   SideEffectTrigger = "on_response"
	OnPhaseEnter SideEffectTrigger = "on_phase_enter"
)

// SideEffectConfig configures one independent side effect.
type SideEffectConfig struct {
	Kind    SideEffectKind    `yaml:"kind"`
	Trigger SideEffectTrigger `yaml:"trigger"`

	Count       int     `yaml:"count,omitempty"`         // notification_flood
	RatePerSec  float64 `yaml:"rate_per_sec,omitempty"`   // notification_flood
	Method      string  `yaml:"method,omitempty"`         // notification_flood
	N           int     `yaml:"n,omitempty"`              // duplicate_request
	DelayMs     int64   `yaml:"delay_ms,omitempty"`       // connection_drop
}

// ItemScope names a specific tool/resource/prompt a behavior override
// applies to (scoping chain's "item-level" link, spec.md §4.G).
type ItemScope struct {
	Kind string `yaml:"kind"` // "tool" | "resource" | "prompt"
	Name string `yaml:"name"`
}

// ItemOverride pairs an ItemScope with the delivery it forces.
type ItemOverride struct {
	Item     ItemScope      `yaml:"item"`
	Delivery DeliveryConfig `yaml:"delivery"`
}

// Behaviors is the baseline delivery + side-effect configuration, and the
// optional item-level override list consulted by the scoping chain.
type Behaviors struct {
	Delivery     DeliveryConfig     `yaml:"delivery"`
	SideEffects  []SideEffectConfig `yaml:"side_effects,omitempty"`
	ItemOverrides []ItemOverride    `yaml:"item_overrides,omitempty"`
}

// DefaultDelivery is the built-in default at the end of the scoping chain:
// Normal delivery, no side effects (spec.md §4.G).
func DefaultDelivery() DeliveryConfig {
	return DeliveryConfig{Kind: DeliveryNormal}
}
