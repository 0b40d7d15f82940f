package generator

import (
	"fmt"
	"unicode/utf8"

	"github.com/thoughtjack/thoughtjack/internal/scenario"
)

// unicodeSpamCategories maps rune_classes names to representative code
// points selected round-robin (spec.md §4.B "UnicodeSpam"). Segmentation
// against carrier_text is rune-based rather than full Unicode
// grapheme-cluster segmentation — a decided Open Question, recorded in
// DESIGN.md: the spec names "grapheme" but ships no normalization
// dependency, and rune boundaries are what the rest of the pack's text
// handling (config validation) already assumes.
var unicodeSpamCategories = map[string][]rune{
	"zero_width":  {'​', '‌', '‍', '﻿'},
	"homoglyph":   {'а', 'е', 'о', 'р'}, // Cyrillic а е о р
	"combining":   {'́', '̈', '̶', 'ͅ'},
	"rtl_override": {'‮', '‭', '⁦', '⁧'},
	"emoji":       {'\U0001F600', '\U0001F4A9', '\U0001F480', '\U0001F525'},
}

type unicodeSpam struct {
	classes     [][]rune
	length      int
	carrierText string
	size        int64
	limits      scenario.GeneratorLimits
}

func newUnicodeSpam(cfg scenario.GeneratorConfig, limits scenario.GeneratorLimits, seed uint64) (Generator, error) {
	classNames := cfg.RuneClasses
	if len(classNames) == 0 {
		classNames = []string{"zero_width"}
	}
	classes := make([][]rune, 0, len(classNames))
	for _, name := range classNames {
		runes, ok := unicodeSpamCategories[name]
		if !ok {
			return nil, &Error{Kind: ErrInvalidParam, Name: "rune_classes", Reason: fmt.Sprintf("unknown category %q", name)}
		}
		classes = append(classes, runes)
	}
	length := cfg.Length
	if length <= 0 {
		length = 256
	}
	if int64(length) > limits.MaxTotalBytes {
		return nil, &Error{Kind: ErrLimitExceeded, Name: "length", Attempted: fmt.Sprint(length), Limit: fmt.Sprint(limits.MaxTotalBytes)}
	}
	return &unicodeSpam{classes: classes, length: length, carrierText: cfg.CarrierText, size: int64(length), limits: limits}, nil
}

func (u *unicodeSpam) EstimatedSize() int64 { return u.size }

func (u *unicodeSpam) Generate() (Payload, error) {
	d := newDeadline(u.limits)
	var out []byte
	classIdx := 0
	nextSpam := func() rune {
		class := u.classes[classIdx%len(u.classes)]
		r := class[classIdx/len(u.classes)%len(class)]
		classIdx++
		return r
	}

	if u.carrierText != "" {
		for _, cr := range u.carrierText {
			if len(out) >= u.length {
				break
			}
			if classIdx%4096 == 0 && d.exceeded() {
				return Payload{}, d.err()
			}
			var buf [4]byte
			n := encodeRune(buf[:], cr)
			out = append(out, buf[:n]...)
			if len(out) >= u.length {
				break
			}
			n = encodeRune(buf[:], nextSpam())
			out = append(out, buf[:n]...)
		}
	}
	for len(out) < u.length {
		if classIdx%4096 == 0 && d.exceeded() {
			return Payload{}, d.err()
		}
		var buf [4]byte
		n := encodeRune(buf[:], nextSpam())
		if len(out)+n > u.length {
			break
		}
		out = append(out, buf[:n]...)
	}

	if int64(len(out)) > u.limits.MaxTotalBytes {
		return Payload{}, &Error{Kind: ErrLimitExceeded, Name: "total_bytes", Attempted: fmt.Sprint(len(out)), Limit: fmt.Sprint(u.limits.MaxTotalBytes)}
	}
	if streamThresholdExceeded(int64(len(out)), u.limits) {
		return Payload{Stream: chunk(out)}, nil
	}
	return Payload{Inline: out}, nil
}

func encodeRune(buf []byte, r rune) int {
	return utf8.EncodeRune(buf, r)
}
