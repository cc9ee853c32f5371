package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alejandrodnm/evarb/internal/domain"
)

// Config es la configuración completa del engine.
// Se carga una vez al arrancar y es inmutable después: ningún componente
// muta estado de configuración en mitad de un tick.
type Config struct {
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Costs      CostsConfig      `yaml:"costs"`
	Events     []EventConfig    `yaml:"events"`
	API        APIConfig        `yaml:"api"`
	Storage    StorageConfig    `yaml:"storage"`
	Reconcile  ReconcileConfig  `yaml:"reconcile"`
	Log        LogConfig        `yaml:"log"`
}

// ThresholdsConfig controla los umbrales de decisión del evaluador.
type ThresholdsConfig struct {
	OutputCSV        string    `yaml:"output_csv"`         // decision log CSV (requerido)
	EvSpreadMin      float64   `yaml:"ev_spread_min"`      // spread mínimo poly-deribit para evaluar
	NotifyNetEvMin   float64   `yaml:"notify_net_ev_min"`  // EV neto mínimo para notificar
	CheckIntervalSec int       `yaml:"check_interval_sec"` // intervalo del tick loop
	Investments      []float64 `yaml:"investments"`        // tamaños de inversión a evaluar (requerido)
	MinContractSize  float64   `yaml:"min_contract_size"`
	MinPmPrice       float64   `yaml:"min_pm_price"` // bounds del precio YES aceptable
	MaxPmPrice       float64   `yaml:"max_pm_price"`
	MinNetEv         float64   `yaml:"min_net_ev"`  // EV neto mínimo para sugerir trade
	MinRoiPct        float64   `yaml:"min_roi_pct"` // ROI mínimo en % para sugerir trade
	DryTrade         bool      `yaml:"dry_trade"`   // true = solo señales, nunca ejecución
	DailyTrades      int       `yaml:"daily_trades"` // máximo de sugerencias accionables por día
	AnalysisWorkers  int       `yaml:"analysis_workers"`
	TickTimeoutSec   int       `yaml:"tick_timeout_sec"` // deadline de un tick completo
}

// CostsConfig son los parámetros del modelo de costes (ver domain.CostParameters).
type CostsConfig struct {
	FeeCap            float64 `yaml:"fee_cap"`
	FeeRate           float64 `yaml:"fee_rate"`
	FeeCombination    string  `yaml:"fee_combination"` // "min" | "max"
	GasOpen           float64 `yaml:"gas_open"`
	GasClose          float64 `yaml:"gas_close"`
	MarginRequirement float64 `yaml:"margin_requirement"`
	RiskFreeRate      float64 `yaml:"risk_free_rate"`
	TxFeeRate         float64 `yaml:"tx_fee_rate"`
	BaseFee           float64 `yaml:"base_fee"`
	RiskFactor        float64 `yaml:"risk_factor"` // aditivo sobre la prima en el cálculo de IM
	Volatility        float64 `yaml:"volatility"`  // fallback si la fuente no da mark_iv
}

// EventConfig define un evento monitorizado: umbral del mercado de
// predicción y strikes del spread de opciones.
type EventConfig struct {
	Name       string    `yaml:"name"`
	Asset      string    `yaml:"asset"`       // "BTC", "ETH"
	PmAssetID  string    `yaml:"pm_asset_id"` // token id del lado YES en el CLOB
	K1Strike   float64   `yaml:"k1_strike"`
	K2Strike   float64   `yaml:"k2_strike"`
	Expiration time.Time `yaml:"expiration"`
}

// APIConfig contiene los base URLs de las fuentes de datos.
type APIConfig struct {
	DeribitBase string `yaml:"deribit_base"`
	CLOBBase    string `yaml:"clob_base"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// ReconcileConfig controla la cadencia y tolerancia del reconciliador.
type ReconcileConfig struct {
	Schedule         string  `yaml:"schedule"`           // expresión cron, default "@hourly"
	DiffToleranceUSD float64 `yaml:"diff_tolerance_usd"` // drift shadow-vs-real reportable
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// ConfigValidationError agrupa los problemas de validación encontrados al
// arrancar. Siempre es fatal antes del primer tick, nunca en mitad de un run.
type ConfigValidationError struct {
	Problems []string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("config validation failed: %s", strings.Join(e.Problems, "; "))
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe, aplica overrides de entorno, defaults y valida. Cualquier key
// requerida ausente devuelve ConfigValidationError.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate comprueba las keys requeridas. Devuelve ConfigValidationError
// con todos los problemas a la vez, no solo el primero.
func (c *Config) Validate() error {
	var problems []string

	if c.Thresholds.OutputCSV == "" {
		problems = append(problems, "thresholds.output_csv is required")
	}
	if len(c.Thresholds.Investments) == 0 {
		problems = append(problems, "thresholds.investments must not be empty")
	}
	for _, inv := range c.Thresholds.Investments {
		if inv <= 0 {
			problems = append(problems, fmt.Sprintf("thresholds.investments contains non-positive value %v", inv))
			break
		}
	}
	if c.Thresholds.MinPmPrice < 0 || c.Thresholds.MaxPmPrice > 1 ||
		(c.Thresholds.MaxPmPrice > 0 && c.Thresholds.MinPmPrice >= c.Thresholds.MaxPmPrice) {
		problems = append(problems, "thresholds.min_pm_price/max_pm_price must satisfy 0 <= min < max <= 1")
	}
	if !domain.FeeCombination(c.Costs.FeeCombination).Valid() {
		problems = append(problems, fmt.Sprintf("costs.fee_combination must be %q or %q, got %q",
			domain.FeeCombineMin, domain.FeeCombineMax, c.Costs.FeeCombination))
	}

	if len(c.Events) == 0 {
		problems = append(problems, "events must not be empty")
	}
	for i, ev := range c.Events {
		switch {
		case ev.Asset == "":
			problems = append(problems, fmt.Sprintf("events[%d]: asset is required", i))
		case ev.K1Strike <= 0 || ev.K2Strike <= 0:
			problems = append(problems, fmt.Sprintf("events[%d] (%s): k1_strike and k2_strike must be > 0", i, ev.Asset))
		case ev.K2Strike <= ev.K1Strike:
			problems = append(problems, fmt.Sprintf("events[%d] (%s): k2_strike must be > k1_strike", i, ev.Asset))
		case ev.Expiration.IsZero():
			problems = append(problems, fmt.Sprintf("events[%d] (%s): expiration is required", i, ev.Asset))
		}
	}

	if len(problems) > 0 {
		return &ConfigValidationError{Problems: problems}
	}
	return nil
}

// CheckInterval devuelve el intervalo del tick loop como time.Duration.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.Thresholds.CheckIntervalSec) * time.Second
}

// TickTimeout devuelve el deadline de un tick como time.Duration.
func (c *Config) TickTimeout() time.Duration {
	return time.Duration(c.Thresholds.TickTimeoutSec) * time.Second
}

// CostParameters construye el struct de dominio de solo lectura que se
// comparte entre todas las evaluaciones.
func (c *Config) CostParameters() domain.CostParameters {
	return domain.CostParameters{
		FeeCap:            c.Costs.FeeCap,
		FeeRate:           c.Costs.FeeRate,
		GasOpen:           c.Costs.GasOpen,
		GasClose:          c.Costs.GasClose,
		MarginRequirement: c.Costs.MarginRequirement,
		RiskFreeRate:      c.Costs.RiskFreeRate,
		TxFeeRate:         c.Costs.TxFeeRate,
		BaseFee:           c.Costs.BaseFee,
		FeeCombination:    domain.FeeCombination(c.Costs.FeeCombination),
	}
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("OUTPUT_CSV"); v != "" {
		cfg.Thresholds.OutputCSV = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
}

// setDefaults asegura que los valores opcionales tengan valores sensatos.
// Las keys requeridas NO tienen default: su ausencia es un error de arranque.
func setDefaults(cfg *Config) {
	if cfg.Thresholds.CheckIntervalSec <= 0 {
		cfg.Thresholds.CheckIntervalSec = 60
	}
	if cfg.Thresholds.TickTimeoutSec <= 0 {
		cfg.Thresholds.TickTimeoutSec = 45
	}
	if cfg.Thresholds.MaxPmPrice == 0 {
		cfg.Thresholds.MaxPmPrice = 0.99
	}
	if cfg.Thresholds.MinPmPrice == 0 {
		cfg.Thresholds.MinPmPrice = 0.01
	}
	if cfg.Thresholds.DailyTrades <= 0 {
		cfg.Thresholds.DailyTrades = 10
	}
	if cfg.Thresholds.MinContractSize <= 0 {
		cfg.Thresholds.MinContractSize = 0.1
	}
	if cfg.Costs.FeeCombination == "" {
		// Deribit publica el cap como máximo por leg: min(cap, rate·precio).
		// La variante "max" queda disponible como política pesimista.
		cfg.Costs.FeeCombination = string(domain.FeeCombineMin)
	}
	if cfg.Costs.FeeCap == 0 {
		cfg.Costs.FeeCap = 0.0003
	}
	if cfg.Costs.FeeRate == 0 {
		cfg.Costs.FeeRate = 0.125
	}
	if cfg.Costs.GasOpen == 0 {
		cfg.Costs.GasOpen = 0.025
	}
	if cfg.Costs.GasClose == 0 {
		cfg.Costs.GasClose = 0.025
	}
	if cfg.Costs.RiskFreeRate == 0 {
		cfg.Costs.RiskFreeRate = 0.05
	}
	if cfg.Costs.TxFeeRate == 0 {
		cfg.Costs.TxFeeRate = 0.001
	}
	if cfg.Costs.RiskFactor == 0 {
		cfg.Costs.RiskFactor = 0.02
	}
	if cfg.Costs.Volatility == 0 {
		cfg.Costs.Volatility = 0.6
	}
	if cfg.API.DeribitBase == "" {
		cfg.API.DeribitBase = "https://www.deribit.com"
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "evarb.db"
	}
	if cfg.Reconcile.Schedule == "" {
		cfg.Reconcile.Schedule = "@hourly"
	}
	if cfg.Reconcile.DiffToleranceUSD <= 0 {
		cfg.Reconcile.DiffToleranceUSD = 50
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
