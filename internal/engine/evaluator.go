package engine

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/alejandrodnm/evarb/internal/domain"
)

// EvaluatorConfig contiene los parámetros de evaluación por estrategia.
type EvaluatorConfig struct {
	// EvSpreadMin descarta eventos cuyo spread poly-deribit es demasiado
	// estrecho para compensar el ruido del modelo.
	EvSpreadMin float64
	// MinContractSize es el tamaño mínimo de contrato de la pata de opciones.
	MinContractSize float64
	// RiskFactor es el sumando de riesgo sobre la prima en el cálculo de IM,
	// denominado en la moneda del instrumento.
	RiskFactor float64
	// DryTrade marca los registros como solo-señal: nunca ejecución.
	DryTrade bool
}

// Evaluator produce un ResultRecord por (evento, inversión). Es puro salvo
// por el contador diario del filtro: seguro para uso concurrente desde el
// worker pool compartiendo CostParameters de solo lectura.
type Evaluator struct {
	costs  domain.CostParameters
	cfg    EvaluatorConfig
	filter *TradeFilter
}

// NewEvaluator crea un Evaluator con todas las dependencias inyectadas.
func NewEvaluator(costs domain.CostParameters, cfg EvaluatorConfig, filter *TradeFilter) *Evaluator {
	return &Evaluator{costs: costs, cfg: cfg, filter: filter}
}

// Evaluate evalúa las dos estrategias de un evento para una inversión dada.
//
// La construcción del registro es todo-o-nada: o devuelve un ResultRecord
// completo (incluidos los "no trade" explícitos) o un error tipado que el
// caller reporta sin abortar el resto del batch.
func (e *Evaluator) Evaluate(q domain.EventQuotes, book domain.OrderBook, investment float64) (domain.ResultRecord, error) {
	rec := domain.ResultRecord{
		SignalID:    uuid.NewString(),
		MarketTitle: q.EventName,
		Timestamp:   q.CapturedAt,
		Investment:  investment,
		Spot:        q.Spot,
		DeribitProb: q.Option.ImpliedProbability,
	}

	// 0.0 exacto es el sentinel "sin señal" del modelo de probabilidad:
	// nunca una sugerencia de compra/venta, siempre un "no trade" explícito.
	if !q.Option.HasSignal() {
		rec.PolyYesPrice = q.Prediction.MidPrice
		rec.Suggest1 = domain.SuggestNoSignal
		rec.Suggest2 = "probability model returned the no-signal sentinel"
		return rec, nil
	}

	// Precio de entrada consciente del slippage: media ponderada del walk
	// sobre los asks, no el best ask.
	entry, err := book.WalkAsks(investment)
	if err != nil {
		return domain.ResultRecord{}, err
	}
	polyYes := entry.AvgPrice
	rec.PolyYesPrice = polyYes

	prob := q.Option.ImpliedProbability
	diff := polyYes - prob
	rec.ExpectedPnlYes = investment * diff

	if math.Abs(diff) < e.cfg.EvSpreadMin {
		rec.Suggest1 = domain.SuggestBelowMinEV
		rec.Suggest2 = fmt.Sprintf("spread %.4f below ev_spread_min %.4f", diff, e.cfg.EvSpreadMin)
		return rec, nil
	}

	contractSize := investment / q.Spot
	if contractSize < e.cfg.MinContractSize {
		contractSize = e.cfg.MinContractSize
	}

	// La prima y el fee por leg están en la moneda del instrumento; se
	// convierten a USD con el spot salvo en instrumentos stable-settled,
	// donde ya vienen en USD.
	premium := q.Option.MidPrice
	legFee := e.costs.LegFee(premium, contractSize, q.Spot, q.StableSettled)
	imNative := domain.Margin(contractSize, premium, e.cfg.RiskFactor)
	if !q.StableSettled {
		legFee *= q.Spot
		imNative *= q.Spot
	}

	// Coste de carry: margen e inversión inmovilizados hasta el vencimiento.
	// El margen base configurado actúa como suelo del IM calculado.
	marginBase := math.Max(imNative, e.costs.MarginRequirement)
	daysHeld := q.ExpiresAt.Sub(q.CapturedAt).Hours() / 24

	totalCosts := e.costs.TotalCosts(investment, legFee) + e.costs.CarryCost(marginBase, investment, daysHeld)
	rec.TotalCosts = totalCosts

	evYes := domain.ExpectedValueLongYes(polyYes, prob, investment, totalCosts)
	evNo := domain.ExpectedValueShortYes(polyYes, prob, investment, totalCosts)
	rec.EvYes = evYes
	rec.EvNo = evNo

	best, err := domain.PickBest(q.EventName,
		domain.StrategyEvaluation{Strategy: domain.StrategyLongYes, ExpectedValue: evYes, Margin: imNative},
		domain.StrategyEvaluation{Strategy: domain.StrategyShortYes, ExpectedValue: evNo, Margin: imNative},
	)
	if err != nil {
		return domain.ResultRecord{}, err
	}

	rec.EV = best.ExpectedValue
	rec.IM = best.Margin
	rec.EVIMRatio = best.EVMarginRatio

	rec.Suggest1, rec.Suggest2 = e.suggest(q, best, polyYes, entry, investment)
	return rec, nil
}

// suggest deriva las dos cadenas de recomendación de la estrategia ganadora
// y los gates del filtro.
func (e *Evaluator) suggest(
	q domain.EventQuotes,
	best domain.StrategyEvaluation,
	polyYes float64,
	entry domain.SlippageResult,
	investment float64,
) (string, string) {
	if reason := e.filter.Check(polyYes, best.ExpectedValue, investment, q.CapturedAt); reason != "" {
		detail := fmt.Sprintf("best strategy %s, EV %.2f USD, EV/IM %.3f",
			best.Strategy, best.ExpectedValue, best.EVMarginRatio)
		return reason, detail
	}

	var action string
	switch best.Strategy {
	case domain.StrategyShortYes:
		action = fmt.Sprintf("sell YES @ %.3f (short_yes, %.1f shares)", polyYes, entry.SharesBought)
	default:
		action = fmt.Sprintf("buy YES @ %.3f (long_yes, %.1f shares)", polyYes, entry.SharesBought)
	}

	roi := 0.0
	if investment > 0 {
		roi = best.ExpectedValue / investment * 100
	}
	detail := fmt.Sprintf("EV %.2f USD, EV/IM %.3f, roi %.2f%%, slippage %.2f%%, dry_trade=%v",
		best.ExpectedValue, best.EVMarginRatio, roi, entry.SlippagePct, e.cfg.DryTrade)
	return action, detail
}
