package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/jimdsouza/swa-dashboard/internal/application/tracker"
	"github.com/jimdsouza/swa-dashboard/internal/domain/models"
)

// Printer writes the per-cycle status lines.
type Printer struct {
	mu  sync.Mutex
	out io.Writer

	down    *color.Color
	up      *color.Color
	same    *color.Color
	warn    *color.Color
	ok      *color.Color
	fail    *color.Color
	rainbow []*color.Color
}

func NewPrinter(out io.Writer, colored bool) *Printer {
	p := &Printer{
		out:  out,
		down: color.New(color.FgGreen),
		up:   color.New(color.FgRed),
		same: color.New(color.FgBlue),
		warn: color.New(color.FgYellow),
		ok:   color.New(color.FgGreen),
		fail: color.New(color.FgRed),
		rainbow: []*color.Color{
			color.New(color.FgRed),
			color.New(color.FgYellow),
			color.New(color.FgGreen),
			color.New(color.FgCyan),
			color.New(color.FgBlue),
			color.New(color.FgMagenta),
		},
	}

	all := append([]*color.Color{p.down, p.up, p.same, p.warn, p.ok, p.fail}, p.rainbow...)
	for _, c := range all {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

func (p *Printer) PrintStatus(result models.CycleResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !result.Valid {
		reason := "no fares found"
		if result.InvalidReason != nil {
			reason = result.InvalidReason.Error()
		}
		p.println(p.warn.Sprintf("Fares unavailable for %s this cycle (%s), keeping previous baseline", result.Route, reason))
		return
	}

	p.println(fmt.Sprintf("Lowest fares for an outbound flight is currently %s",
		p.fareWithDelta(*result.LowestOutbound, result.OutboundDelta)))

	if result.OneWay {
		return
	}

	p.println(fmt.Sprintf("Lowest fares for a return flight is currently %s",
		p.fareWithDelta(*result.LowestReturn, result.ReturnDelta)))
	if total := result.Total(); total != nil {
		p.println(fmt.Sprintf("Total for both flights is currently %s", tracker.FormatPrice(*total)))
	}
}

func (p *Printer) PrintDeal(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var b strings.Builder
	i := 0
	for _, r := range message {
		if r == ' ' {
			b.WriteRune(r)
			continue
		}
		b.WriteString(p.rainbow[i%len(p.rainbow)].Sprint(string(r)))
		i++
	}
	p.println(b.String())
}

func (p *Printer) PrintSuccess(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.println(p.ok.Sprint(line))
}

func (p *Printer) PrintFailure(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.println(p.fail.Sprint(line))
}

func (p *Printer) fareWithDelta(fare int64, delta models.Delta) string {
	price := tracker.FormatPrice(fare)
	switch delta.Kind {
	case models.DeltaDown:
		return price + " " + p.down.Sprintf("(down %s)", tracker.FormatPrice(delta.Amount))
	case models.DeltaUp:
		return price + " " + p.up.Sprintf("(up %s)", tracker.FormatPrice(delta.Amount))
	case models.DeltaUnchanged:
		return price + " " + p.same.Sprint("(no change)")
	default:
		return price
	}
}

func (p *Printer) println(line string) {
	_, _ = fmt.Fprintln(p.out, line)
}
