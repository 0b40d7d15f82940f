package scenario

import "time"

// GeneratorLimits caps payload-generator resource usage (spec.md §3/§4.A).
type GeneratorLimits struct {
	MaxDepth          int           `yaml:"max_depth"`
	MaxWidth          int           `yaml:"max_width"`
	MaxTotalBytes     int64         `yaml:"max_total_bytes"`
	MaxGenerationTime time.Duration `yaml:"max_generation_time"`
	StreamThreshold   int64         `yaml:"stream_threshold"`
}

// DefaultGeneratorLimits mirrors spec.md §4.A's stated defaults: depth ≤
// 256, width ≤ 1024, total_bytes ≤ 16 MiB, generation_time ≤ 5s,
// stream_threshold = 1 MiB. Grounded on teacher's DefaultConfig()
// package-level-constructor idiom (chaos/config.go, internal/config/config.go).
func DefaultGeneratorLimits() GeneratorLimits {
	return GeneratorLimits{
		MaxDepth:          256,
		MaxWidth:          1024,
		MaxTotalBytes:      16 * 1024 * 1024,
		MaxGenerationTime: 5 * time.Second,
		StreamThreshold:   1024 * 1024,
	}
}

// LoaderLimits caps the config-loading pipeline itself (spec.md §4.C).
type LoaderLimits struct {
	MaxIncludeDepth int   `yaml:"max_include_depth"`
	MaxFileSize     int64 `yaml:"max_file_size"`
}

// DefaultLoaderLimits mirrors spec.md §4.C.3/4: max include depth 8, max
// $file size 16 MiB.
func DefaultLoaderLimits() LoaderLimits {
	return LoaderLimits{
		MaxIncludeDepth: 8,
		MaxFileSize:     16 * 1024 * 1024,
	}
}

// Limits bundles every resource cap the scenario document can override.
type Limits struct {
	Generator GeneratorLimits `yaml:"generator"`
	Loader    LoaderLimits    `yaml:"loader"`
}

// DefaultLimits returns Limits with both halves at their documented
// defaults, used when a scenario document omits the `limits` key.
func DefaultLimits() Limits {
	return Limits{Generator: DefaultGeneratorLimits(), Loader: DefaultLoaderLimits()}
}

func (l GeneratorLimits) withDefaults() GeneratorLimits {
	d := DefaultGeneratorLimits()
	if l.MaxDepth <= 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.MaxWidth <= 0 {
		l.MaxWidth = d.MaxWidth
	}
	if l.MaxTotalBytes <= 0 {
		l.MaxTotalBytes = d.MaxTotalBytes
	}
	if l.MaxGenerationTime <= 0 {
		l.MaxGenerationTime = d.MaxGenerationTime
	}
	if l.StreamThreshold <= 0 {
		l.StreamThreshold = d.StreamThreshold
	}
	return l
}

// WithDefaults fills any zero-valued field with its documented default,
// so a scenario only needs to mention the limits it wants to tighten.
func (l Limits) WithDefaults() Limits {
	l.Generator = l.Generator.withDefaults()
	if l.Loader.MaxIncludeDepth <= 0 {
		l.Loader.MaxIncludeDepth = DefaultLoaderLimits().MaxIncludeDepth
	}
	if l.Loader.MaxFileSize <= 0 {
		l.Loader.MaxFileSize = DefaultLoaderLimits().MaxFileSize
	}
	return l
}
