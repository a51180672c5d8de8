package columns

import (
	"fmt"
	"strconv"
	"strings"
)

// WidthKind says how a WidthHint value is interpreted.
type WidthKind int

const (
	// Chars is an absolute width in terminal cells.
	Chars WidthKind = iota
	// Percent is a fraction (0..1] of the available width.
	Percent
)

func (k WidthKind) String() string {
	if k == Percent {
		return "percent"
	}
	return "chars"
}

// WidthHint requests a width for a column or a whole table.
type WidthHint struct {
	Kind  WidthKind
	Value float64
}

// resolve converts the hint to cells against total.
func (h *WidthHint) resolve(total int) int {
	if h == nil {
		return 0
	}
	if h.Kind == Percent {
		return max(0, int(float64(total)*h.Value))
	}
	return max(0, int(h.Value))
}

func (h *WidthHint) String() string {
	if h == nil {
		return "auto"
	}
	if h.Kind == Percent {
		return strconv.FormatFloat(h.Value*100, 'f', -1, 64) + "%"
	}
	return strconv.FormatFloat(h.Value, 'f', -1, 64)
}

// Spec describes one header column. A column spanning several slots merges their
// header cells.
type Spec struct {
	Label string
	Span  int
	Width *WidthHint
}

func (s Spec) clone() Spec {
	if s.Width != nil {
		w := *s.Width
		s.Width = &w
	}
	return s
}

// ParseSpec normalizes a header definition. It accepts a string label, a Spec or *Spec,
// a map with "label" (or "name"), "span" and "width" keys, or nil for an empty column.
func ParseSpec(v any) (Spec, error) {
	var spec Spec
	switch entry := v.(type) {
	case nil:
	case string:
		spec.Label = entry
	case fmt.Stringer:
		spec.Label = entry.String()
	case Spec:
		spec = entry.clone()
	case *Spec:
		if entry != nil {
			spec = entry.clone()
		}
	case map[string]any:
		label := entry["label"]
		if label == nil || label == "" {
			label = entry["name"]
		}
		if label != nil {
			spec.Label = fmt.Sprint(label)
		}
		if raw, ok := entry["span"]; ok && raw != nil {
			span, err := toInt(raw)
			if err != nil {
				return Spec{}, fmt.Errorf("column span: %w", err)
			}
			spec.Span = span
		}
		hint, err := ParseWidth(entry["width"])
		if err != nil {
			return Spec{}, err
		}
		spec.Width = hint
	default:
		return Spec{}, fmt.Errorf("column definitions must be strings, specs or maps, got %T: %#v", v, v)
	}
	spec.Span = max(1, spec.Span)
	return spec, nil
}

// ParseWidth parses a width hint. Positive numbers are cell counts, "N%" is a percentage
// and numeric strings are cell counts. nil, empty strings and values <= 0 mean no hint.
func ParseWidth(v any) (*WidthHint, error) {
	switch w := v.(type) {
	case nil:
		return nil, nil
	case *WidthHint:
		if w == nil {
			return nil, nil
		}
		c := *w
		return &c, nil
	case WidthHint:
		return &w, nil
	case int:
		return charsHint(float64(w)), nil
	case int64:
		return charsHint(float64(w)), nil
	case float64:
		return charsHint(w), nil
	case float32:
		return charsHint(float64(w)), nil
	case string:
		raw := strings.TrimSpace(w)
		if raw == "" {
			return nil, nil
		}
		if pct, ok := strings.CutSuffix(raw, "%"); ok {
			n, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid width percentage %q: %w", w, err)
			}
			if n <= 0 {
				return nil, nil
			}
			return &WidthHint{Kind: Percent, Value: n / 100}, nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid width %q: %w", w, err)
		}
		return charsHint(n), nil
	default:
		return nil, fmt.Errorf("unsupported width hint %T: %#v", v, v)
	}
}

func charsHint(n float64) *WidthHint {
	if n <= 0 {
		return nil
	}
	return &WidthHint{Kind: Chars, Value: n}
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("invalid integer %q: %w", n, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("unsupported integer %T: %#v", v, v)
	}
}
