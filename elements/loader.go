package elements

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Warning is a recovered ParseWarning (§7): a malformed block, duplicate
// id, missing field, reserved id, or unparseable value. Loading continues
// past every Warning; only a LoadFailure (the file itself unreadable) is
// fatal, and that is a plain error returned by the caller that opens the
// file, not by Load.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}

func warn(line int, format string, args ...any) Warning {
	return Warning{Line: line, Message: fmt.Sprintf(format, args...)}
}

// block accumulates the raw key/value pairs for one [<id>] section while
// it is being scanned, before validation decides whether to keep it.
type block struct {
	headerLine int
	rawID      string
	fields     map[string]string
}

// requiredFields lists every key a block must carry to be accepted. The
// checksum language in §4.1 ("parse block text, checksum required
// fields") is implemented as this completeness check rather than a
// literal hash, since the format has no checksum bytes of its own.
var requiredFields = []string{
	"name", "phase", "category",
	"base_color", "blend_color", "highlight_color",
	"is_movable", "density", "cohesion", "repose_angle",
}

// Load parses the elements.data block format (§4.1) from r. Malformed or
// incomplete blocks are skipped with a Warning rather than failing the
// whole load. The EMPTY element (id 0) is always present in the returned
// Registry, overriding anything the file defined at id 0.
func Load(r io.Reader) (*Registry, []Warning) {
	var warnings []Warning
	blocks := make([]*block, 0, 32)
	var current *block

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = &block{headerLine: lineNo, rawID: strings.TrimSpace(line[1 : len(line)-1]), fields: map[string]string{}}
			blocks = append(blocks, current)
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			warnings = append(warnings, warn(lineNo, "malformed line %q", line))
			continue
		}
		if current == nil {
			warnings = append(warnings, warn(lineNo, "key/value line %q outside any block", line))
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		current.fields[key] = val
	}

	reg := newRegistry()
	seen := make(map[uint16]bool)

	for _, b := range blocks {
		id, ok := parseBlockID(b.rawID)
		if !ok || id < 10 {
			warnings = append(warnings, warn(b.headerLine, "invalid element id %q (must be an integer >= 10)", b.rawID))
			continue
		}
		if seen[id] {
			warnings = append(warnings, warn(b.headerLine, "duplicate element id %d", id))
			continue
		}

		var missing []string
		for _, f := range requiredFields {
			if _, ok := b.fields[f]; !ok {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			warnings = append(warnings, warn(b.headerLine, "element %d missing required field(s): %s", id, strings.Join(missing, ", ")))
			continue
		}

		el, fieldWarnings := buildElement(id, b)
		warnings = append(warnings, fieldWarnings...)
		if el == nil {
			continue
		}

		seen[id] = true
		reg.byID[id] = el
	}

	// EMPTY is always injected, even if the file defined (or tried to
	// define, and failed validation for) id 0.
	reg.byID[EmptyID] = emptyElement()

	return reg, warnings
}

func parseBlockID(raw string) (uint16, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 0xFFFF {
		return 0, false
	}
	return uint16(n), true
}

// buildElement converts a validated block's fields into an Element. A
// field-level parse failure (e.g. an unparseable color) demotes the whole
// block to a Warning and a nil Element, same as a missing field.
func buildElement(id uint16, b *block) (*Element, []Warning) {
	var warnings []Warning
	fail := func(format string, args ...any) {
		warnings = append(warnings, warn(b.headerLine, format, args...))
	}

	phase, ok := parsePhase(b.fields["phase"])
	if !ok {
		fail("element %d has unrecognized phase %q", id, b.fields["phase"])
		return nil, warnings
	}
	category, ok := parseCategory(b.fields["category"])
	if !ok {
		fail("element %d has unrecognized category %q", id, b.fields["category"])
		return nil, warnings
	}
	base, ok := ParseHexColor(b.fields["base_color"])
	if !ok {
		fail("element %d has unparseable base_color %q", id, b.fields["base_color"])
		return nil, warnings
	}
	blend, ok := ParseHexColor(b.fields["blend_color"])
	if !ok {
		fail("element %d has unparseable blend_color %q", id, b.fields["blend_color"])
		return nil, warnings
	}
	highlight, ok := ParseHexColor(b.fields["highlight_color"])
	if !ok {
		fail("element %d has unparseable highlight_color %q", id, b.fields["highlight_color"])
		return nil, warnings
	}
	movable, err := strconv.ParseBool(b.fields["is_movable"])
	if err != nil {
		fail("element %d has unparseable is_movable %q", id, b.fields["is_movable"])
		return nil, warnings
	}
	density, err := strconv.ParseFloat(b.fields["density"], 32)
	if err != nil {
		fail("element %d has unparseable density %q", id, b.fields["density"])
		return nil, warnings
	}
	cohesion, err := strconv.Atoi(b.fields["cohesion"])
	if err != nil {
		fail("element %d has unparseable cohesion %q", id, b.fields["cohesion"])
		return nil, warnings
	}
	reposeRaw, err := strconv.Atoi(b.fields["repose_angle"])
	if err != nil {
		fail("element %d has unparseable repose_angle %q", id, b.fields["repose_angle"])
		return nil, warnings
	}

	reposeAngle := clampReposeAngle(reposeRaw)

	el := &Element{
		ID:             id,
		Name:           b.fields["name"],
		Category:       category,
		Phase:          phase,
		IsMovable:      movable,
		Density:        float32(density),
		BaseColor:      base,
		BlendColor:     blend,
		HighlightColor: highlight,
		Cohesion:       uint8(clampByte(cohesion)),
		ReposeAngle:    reposeAngle,
	}
	if category == Sand {
		el.ReposeDirections = computeReposeDirections(reposeAngle)
	}
	return el, warnings
}

func clampByte(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// ParseHexColor parses "#RGB" or "#RRGGBB" into a Color. Alpha defaults
// to 0xFF since the file format carries no alpha channel.
func ParseHexColor(s string) (Color, bool) {
	if len(s) == 0 || s[0] != '#' {
		return Color{}, false
	}
	hex := s[1:]
	expand := func(c byte) (byte, bool) {
		v, ok := hexNibble(c)
		if !ok {
			return 0, false
		}
		return v<<4 | v, true
	}
	switch len(hex) {
	case 3:
		r, ok1 := expand(hex[0])
		g, ok2 := expand(hex[1])
		b, ok3 := expand(hex[2])
		if !ok1 || !ok2 || !ok3 {
			return Color{}, false
		}
		return Color{R: r, G: g, B: b, A: 0xFF}, true
	case 6:
		r, ok1 := hexByte(hex[0:2])
		g, ok2 := hexByte(hex[2:4])
		b, ok3 := hexByte(hex[4:6])
		if !ok1 || !ok2 || !ok3 {
			return Color{}, false
		}
		return Color{R: r, G: g, B: b, A: 0xFF}, true
	default:
		return Color{}, false
	}
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

func hexByte(s string) (byte, bool) {
	hi, ok1 := hexNibble(s[0])
	lo, ok2 := hexNibble(s[1])
	if !ok1 || !ok2 {
		return 0, false
	}
	return hi<<4 | lo, true
}
