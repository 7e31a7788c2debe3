package registry

import (
	"strings"

	"aide/config"
)

// ExtractedCall is one tool invocation recovered from model output.
type ExtractedCall struct {
	Tool string
	// Raw is the trimmed captured argument. Empty when the pattern has
	// no capture group or the marker carried no payload.
	Raw string
}

// Extractor recovers tool calls from one piece of model output text.
// Implementations must order results by descriptor priority first, then
// by position within the text.
type Extractor interface {
	Extract(text string) []ExtractedCall
}

// Protocol names accepted by NewExtractor.
const (
	ProtocolBracket  = "bracket"
	ProtocolJSONLine = "jsonline"
)

// NewExtractor returns the extraction strategy for the configured
// protocol. Unrecognized values fall back to the bracket protocol.
func NewExtractor(protocol string, reg *Registry) Extractor {
	switch protocol {
	case ProtocolJSONLine:
		return &JSONLineExtractor{reg: reg}
	case ProtocolBracket:
		return &BracketExtractor{reg: reg}
	default:
		if config.Debug && config.DebugLog != nil {
			config.DebugLog.Printf("[Extractor] Unknown protocol %q, using bracket", protocol)
		}
		return &BracketExtractor{reg: reg}
	}
}

// BracketExtractor scans for [MARKER: argument] invocations. Descriptors
// are scanned in priority order and every match claims its source span
// in an occupancy set, so a lower-priority pattern can never re-match
// text already claimed by a higher-priority one.
type BracketExtractor struct {
	reg *Registry
}

// NewBracketExtractor creates the bracket-protocol strategy.
func NewBracketExtractor(reg *Registry) *BracketExtractor {
	return &BracketExtractor{reg: reg}
}

// Extract implements Extractor. Output order is priority ascending,
// then match position for calls of the same tool.
func (e *BracketExtractor) Extract(text string) []ExtractedCall {
	var claimed intervalSet
	var calls []ExtractedCall

	for _, d := range e.reg.Descriptors() {
		re := d.Compiled()
		if re == nil {
			// Pattern failed to compile at registration; the tool
			// contributes zero calls.
			continue
		}

		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[0], m[1]
			if claimed.overlaps(start, end) {
				continue
			}
			claimed.add(start, end)

			raw := ""
			if len(m) >= 4 && m[2] >= 0 {
				raw = strings.TrimSpace(text[m[2]:m[3]])
			}
			calls = append(calls, ExtractedCall{Tool: d.Name, Raw: raw})
		}
	}

	if config.Debug && config.DebugLog != nil && len(calls) > 0 {
		config.DebugLog.Printf("[Extractor] Extracted %d tool call(s)", len(calls))
	}

	return calls
}

// intervalSet tracks claimed [start, end) byte ranges of the scanned
// text. The set stays small (one entry per extracted call), so a linear
// scan beats anything fancier.
type intervalSet [][2]int

func (s intervalSet) overlaps(start, end int) bool {
	for _, iv := range s {
		if start < iv[1] && iv[0] < end {
			return true
		}
	}
	return false
}

func (s *intervalSet) add(start, end int) {
	*s = append(*s, [2]int{start, end})
}
