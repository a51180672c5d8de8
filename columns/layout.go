package columns

import (
	"slices"

	"github.com/jongio/logbar/cliout"
)

// Layout invariants: len(slotWidths) == len(slotPadding) == total span of specs, and
// specStarts[i] is the first slot of column i.

func (p *Printer) recomputeLayoutLocked() {
	p.specStarts = make([]int, len(p.specs))
	slots := 0
	for i, spec := range p.specs {
		p.specStarts[i] = slots
		slots += spec.Span
	}
	p.slotWidths = resize(p.slotWidths, slots, 0)
	p.slotPadding = resize(p.slotPadding, slots, p.padding)
}

func resize(s []int, n, fill int) []int {
	if len(s) >= n {
		return s[:n]
	}
	for len(s) < n {
		s = append(s, fill)
	}
	return s
}

// ensureSlotsLocked makes room for count values. Without columns it creates one unlabeled
// column per value; otherwise the last column's span grows.
func (p *Printer) ensureSlotsLocked(count int) {
	if count <= len(p.slotWidths) {
		return
	}
	if len(p.specs) == 0 {
		p.specs = make([]Spec, count)
		for i := range p.specs {
			p.specs[i].Span = 1
		}
	} else {
		p.specs[len(p.specs)-1].Span += count - len(p.slotWidths)
	}
	p.recomputeLayoutLocked()
	p.applyInitialWidthsLocked()
	p.applyHeaderWidthsLocked()
}

// applyInitialWidthsLocked lays the slots out for the target width: hinted columns get
// their resolved width with zero padding, then the remainder is dealt one cell at a time
// to the unhinted columns (or to every column when all are hinted). Slots keep any
// width they had before.
func (p *Printer) applyInitialWidthsLocked() {
	n := len(p.slotWidths)
	if n == 0 {
		return
	}

	prev := slices.Clone(p.slotWidths)
	for i := range n {
		p.slotWidths[i] = 1
		p.slotPadding[i] = p.padding
	}

	target := p.targetWidthLocked()
	for i, spec := range p.specs {
		if spec.Width != nil {
			p.configureColumnLocked(i, spec.Width.resolve(target))
		}
	}

	current := p.lineWidthLocked()
	remaining := max(0, target-current)

	var expandable []int
	for i, spec := range p.specs {
		if spec.Width == nil {
			expandable = append(expandable, i)
		}
	}
	if len(expandable) == 0 {
		for i := range p.specs {
			expandable = append(expandable, i)
		}
	}
	for remaining > 0 {
		for _, col := range expandable {
			if remaining == 0 {
				break
			}
			p.growColumnLocked(col, 1)
			remaining--
		}
	}

	for i := range min(len(prev), n) {
		p.slotWidths[i] = max(p.slotWidths[i], prev[i])
	}
	p.currentTotal = p.lineWidthLocked()
}

// configureColumnLocked sizes column col to target cells, padding included. Targets below
// the column's minimum are raised to it.
func (p *Printer) configureColumnLocked(col, target int) {
	start, end := p.slotRange(col)
	if start >= end {
		return
	}
	for i := start; i < end; i++ {
		p.slotPadding[i] = 0
		p.slotWidths[i] = 1
	}
	if w := cliout.Width(p.specs[col].Label); target < w {
		target = w
	}
	p.growColumnLocked(col, target-p.columnWidthLocked(col))
}

// growColumnLocked adds amount cells to column col, round-robin over its slots.
func (p *Printer) growColumnLocked(col, amount int) {
	start, end := p.slotRange(col)
	if start >= end {
		return
	}
	for amount > 0 {
		for i := start; i < end && amount > 0; i++ {
			p.slotWidths[i]++
			amount--
		}
	}
}

// applyHeaderWidthsLocked widens the first slot of any column whose label no longer fits.
func (p *Printer) applyHeaderWidthsLocked() {
	for i, spec := range p.specs {
		start, end := p.slotRange(i)
		if start >= end {
			continue
		}
		inner := p.columnWidthLocked(i) - p.slotPadding[start] - p.slotPadding[end-1]
		if deficit := cliout.Width(spec.Label) - max(0, inner); deficit > 0 {
			p.slotWidths[start] += deficit
		}
	}
	p.currentTotal = p.lineWidthLocked()
}

// columnWidthLocked is the width of column col between its outer separators.
func (p *Printer) columnWidthLocked(col int) int {
	start, end := p.slotRange(col)
	total := max(0, end-start-1)
	for i := start; i < end; i++ {
		total += p.slotWidths[i] + 2*p.slotPadding[i]
	}
	return total
}

// lineWidthLocked is the width of a rendered row, outer separators included.
func (p *Printer) lineWidthLocked() int {
	if len(p.specs) == 0 {
		return 0
	}
	total := len(p.specs) + 1
	for i := range p.specs {
		total += p.columnWidthLocked(i)
	}
	return total
}

// minimalWidthLocked is the narrowest line that fits every label.
func (p *Printer) minimalWidthLocked() int {
	slots := len(p.slotWidths)
	if len(p.specs) == 0 || slots == 0 {
		return 0
	}
	labels := 0
	for _, spec := range p.specs {
		labels += max(cliout.Width(spec.Label), 1)
	}
	return labels + slots*2*p.padding + slots + 1 + max(0, slots-len(p.specs))
}

// targetWidthLocked resolves the table width: the explicit hint, else the terminal width
// minus the gutter, never less than the minimum.
func (p *Printer) targetWidthLocked() int {
	cols, _ := p.size()
	available := max(0, cols-Gutter)

	target := available
	if p.target != nil {
		target = p.target.resolve(available)
	}
	return max(target, p.minimalWidthLocked())
}

func (p *Printer) slotRange(col int) (start, end int) {
	start = p.specStarts[col]
	end = min(start+p.specs[col].Span, len(p.slotWidths))
	return start, end
}
