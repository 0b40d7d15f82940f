package scenario

// GeneratorKind is the tag discriminating the GeneratorConfig union
// (spec.md §4.A: six payload-generator variants).
type GeneratorKind string

const (
	GeneratorNestedJSON          GeneratorKind = "nested_json"
	GeneratorGarbage             GeneratorKind = "garbage"
	GeneratorBatchNotifications  GeneratorKind = "batch_notifications"
	GeneratorRepeatedKeys        GeneratorKind = "repeated_keys"
	GeneratorUnicodeSpam         GeneratorKind = "unicode_spam"
	GeneratorAnsiEscape          GeneratorKind = "ansi_escape"
)

// GeneratorConfig is the tagged union resolved by the loader's $generate
// step, which validates it without building a generator or producing
// bytes. Only the fields belonging to Kind are meaningful; the rest are
// left zero. Grounded on teacher's chaos.Action struct, which is the same
// shape: one struct, a type tag, and a clutch of optional fields gated by
// that tag (internal/chaos/config.go).
type GeneratorConfig struct {
	Kind GeneratorKind `yaml:"type"`
	Seed uint64        `yaml:"seed"`

	// nested_json
	Depth int `yaml:"depth,omitempty"`
	Width int `yaml:"width,omitempty"`

	// garbage
	SizeBytes int64  `yaml:"size_bytes,omitempty"`
	Alphabet  string `yaml:"alphabet,omitempty"` // "printable" | "ascii" | "hex" | "base64" | "binary"

	// batch_notifications
	Count  int    `yaml:"count,omitempty"`
	Method string `yaml:"method,omitempty"`

	// repeated_keys
	KeyCount  int    `yaml:"key_count,omitempty"`
	KeyName   string `yaml:"key_name,omitempty"`
	ValueSize int    `yaml:"value_size,omitempty"`

	// unicode_spam
	RuneClasses []string `yaml:"rune_classes,omitempty"` // e.g. "combining", "rtl_override", "zero_width"
	Length      int      `yaml:"length,omitempty"`
	CarrierText string   `yaml:"carrier_text,omitempty"`

	// ansi_escape
	Sequences []string `yaml:"sequences,omitempty"` // e.g. "cursor_move", "color", "erase", "title_set", "bell"
}

// WithLimits returns a copy of the config with any resource fields clamped
// to the scenario's GeneratorLimits, the way a factory validates at load
// time rather than at generate time (spec.md §4.A).
func (g GeneratorConfig) WithLimits(l GeneratorLimits) GeneratorConfig {
	if g.Depth > l.MaxDepth {
		g.Depth = l.MaxDepth
	}
	if g.Width > l.MaxWidth {
		g.Width = l.MaxWidth
	}
	if g.SizeBytes > l.MaxTotalBytes {
		g.SizeBytes = l.MaxTotalBytes
	}
	if int64(g.ValueSize)*int64(g.KeyCount) > l.MaxTotalBytes && g.KeyCount > 0 {
		g.KeyCount = int(l.MaxTotalBytes / int64(max(g.ValueSize, 1)))
	}
	return g
}
