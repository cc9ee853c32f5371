package engine

import (
	"sync"
	"time"

	"github.com/alejandrodnm/evarb/internal/domain"
)

// FilterConfig contiene los umbrales del filtro de trades.
type FilterConfig struct {
	// MinPmPrice y MaxPmPrice acotan el precio YES aceptable: fuera de esos
	// límites el book está demasiado resuelto para que el edge sea real.
	MinPmPrice float64
	MaxPmPrice float64
	// MinNetEv es el EV neto mínimo (USD) para sugerir entrar.
	MinNetEv float64
	// MinRoiPct es el ROI mínimo en % sobre la inversión.
	MinRoiPct float64
	// DailyTrades limita las sugerencias accionables por día natural (UTC).
	DailyTrades int
}

// TradeFilter decide si una evaluación puede convertirse en sugerencia
// accionable. El contador diario es estado mutable compartido entre workers:
// el mutex es obligatorio.
type TradeFilter struct {
	cfg FilterConfig

	mu    sync.Mutex
	day   string // fecha UTC del contador actual
	count int
}

// NewTradeFilter crea un TradeFilter con la configuración dada.
func NewTradeFilter(cfg FilterConfig) *TradeFilter {
	return &TradeFilter{cfg: cfg}
}

// Check devuelve "" si la evaluación pasa todos los gates, o la sugerencia
// "no trade" correspondiente al primer gate que falla. El orden de los
// gates es fijo: señal, bounds de precio, signo del EV, mínimos, límite diario.
func (f *TradeFilter) Check(polyYes, ev, investment float64, now time.Time) string {
	if polyYes < f.cfg.MinPmPrice || polyYes > f.cfg.MaxPmPrice {
		return domain.SuggestPriceBounds
	}
	if ev <= 0 {
		return domain.SuggestNegativeEV
	}
	if f.cfg.MinNetEv > 0 && ev < f.cfg.MinNetEv {
		return domain.SuggestBelowMinEV
	}
	if f.cfg.MinRoiPct > 0 && investment > 0 {
		roi := ev / investment * 100
		if roi < f.cfg.MinRoiPct {
			return domain.SuggestBelowMinROI
		}
	}
	if !f.allowDaily(now) {
		return domain.SuggestDailyLimit
	}
	return ""
}

// allowDaily consume un slot del límite diario si queda alguno.
// El contador se reinicia al cambiar el día UTC.
func (f *TradeFilter) allowDaily(now time.Time) bool {
	if f.cfg.DailyTrades <= 0 {
		return true
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	day := now.UTC().Format("2006-01-02")
	if day != f.day {
		f.day = day
		f.count = 0
	}
	if f.count >= f.cfg.DailyTrades {
		return false
	}
	f.count++
	return true
}
