package pricing

import (
	"fmt"
	"math"
	"strings"
	"time"

	"riparo-be/internal/apperror"
)

type Urgency string

const (
	UrgencyNormal    Urgency = "NORMAL"
	UrgencyUrgent    Urgency = "URGENT"
	UrgencyEmergency Urgency = "EMERGENCY"
)

type PartQuality string

const (
	PartOriginal    PartQuality = "ORIGINAL"
	PartOEM         PartQuality = "OEM"
	PartAftermarket PartQuality = "AFTERMARKET"
)

type Request struct {
	DeviceBrand string
	DeviceModel string
	RepairType  string
	Urgency     Urgency
	PartQuality PartQuality
}

type Result struct {
	LaborCost     float64
	PartsCost     float64
	DiagnosticFee float64
	UrgencyFee    float64
	TotalCost     float64

	EstimatedHours      float64
	EstimatedCompletion time.Time

	WarrantyDays     int
	WarrantyCoverage string

	Notes []string
}

const (
	diagnosticFeeBasic    = 50
	diagnosticFeeAdvanced = 100
	diagnosticFeeComplex  = 150
)

// Estimator produces deterministic cost/time/warranty estimates from a static
// catalog. It holds no mutable state and is safe for concurrent use.
type Estimator struct {
	catalog    []Category
	brandRates []BrandRate
	partCosts  []PartCost
	now        func() time.Time
}

type Option func(*Estimator)

// WithClock overrides the completion-time clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Estimator) { e.now = now }
}

func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{
		catalog:    defaultCatalog(),
		brandRates: defaultBrandRates(),
		partCosts:  defaultPartCosts(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate computes the cost breakdown for a repair request. It fails with a
// not-found kind when the repair type matches no catalog category; callers
// must not fall back to a guessed price.
func (e *Estimator) Estimate(req Request) (*Result, error) {
	category, ok := e.findCategory(req.RepairType)
	if !ok {
		return nil, apperror.NotFound("repair_category_not_found", "no repair category matches the requested repair type")
	}

	brandMultiplier := e.brandMultiplier(req.DeviceBrand, req.DeviceModel)
	laborCost := math.Round(category.BasePrice * brandMultiplier)

	partsCost := math.Round(e.basePartsCost(req.RepairType) * brandMultiplier * partQualityMultiplier(req.PartQuality))

	diagnosticFee := diagnosticFeeFor(category.Difficulty)

	baseTotal := laborCost + partsCost + diagnosticFee

	urgencyFee := 0.0
	if req.Urgency != UrgencyNormal {
		urgencyFee = math.Round(baseTotal * (urgencyMultiplier(req.Urgency) - 1))
	}

	totalCost := baseTotal + urgencyFee

	hours := category.BaseHours * hourScale(req.Urgency)
	completion := e.now().Add(time.Duration(hours * float64(time.Hour)))

	warrantyDays := warrantyDaysFor(req.PartQuality)

	return &Result{
		LaborCost:           laborCost,
		PartsCost:           partsCost,
		DiagnosticFee:       diagnosticFee,
		UrgencyFee:          urgencyFee,
		TotalCost:           totalCost,
		EstimatedHours:      hours,
		EstimatedCompletion: completion,
		WarrantyDays:        warrantyDays,
		WarrantyCoverage:    fmt.Sprintf("%s维修质保，包含人工和配件", category.Name),
		Notes:               e.buildNotes(req, category, brandMultiplier),
	}, nil
}

func (e *Estimator) findCategory(repairType string) (Category, bool) {
	for _, c := range e.catalog {
		if strings.Contains(c.Name, repairType) || strings.Contains(repairType, c.Name) {
			return c, true
		}
	}
	return Category{}, false
}

func (e *Estimator) brandMultiplier(brand, model string) float64 {
	full := strings.ToLower(brand + " " + model)
	lowerBrand := strings.ToLower(brand)
	for _, rate := range e.brandRates {
		k := strings.ToLower(rate.Keyword)
		if strings.Contains(full, k) || strings.Contains(lowerBrand, k) {
			return rate.Multiplier
		}
	}
	return 1.0
}

func (e *Estimator) basePartsCost(repairType string) float64 {
	for _, pc := range e.partCosts {
		if strings.Contains(repairType, pc.Keyword) || strings.Contains(pc.Keyword, repairType) {
			return pc.Cost
		}
	}
	return defaultBasePartsCost
}

func partQualityMultiplier(q PartQuality) float64 {
	switch q {
	case PartOriginal:
		return 1.5
	case PartAftermarket:
		return 0.7
	default:
		return 1.0
	}
}

func urgencyMultiplier(u Urgency) float64 {
	switch u {
	case UrgencyEmergency:
		return 1.8
	case UrgencyUrgent:
		return 1.3
	default:
		return 1.0
	}
}

func hourScale(u Urgency) float64 {
	switch u {
	case UrgencyEmergency:
		return 0.5
	case UrgencyUrgent:
		return 0.7
	default:
		return 1.0
	}
}

func warrantyDaysFor(q PartQuality) int {
	switch q {
	case PartOriginal:
		return 180
	case PartOEM:
		return 90
	default:
		return 30
	}
}

func diagnosticFeeFor(difficulty int) float64 {
	switch {
	case difficulty <= 2:
		return diagnosticFeeBasic
	case difficulty <= 3:
		return diagnosticFeeAdvanced
	default:
		return diagnosticFeeComplex
	}
}

// buildNotes generates advisory text only; nothing here feeds back into the
// cost computation.
func (e *Estimator) buildNotes(req Request, category Category, brandMultiplier float64) []string {
	var notes []string

	if brandMultiplier > 1.3 {
		notes = append(notes, "该品牌维修难度较高，需要专业技师处理")
	}

	switch req.PartQuality {
	case PartOriginal:
		notes = append(notes, "使用原装配件，质量有保障，保修期更长")
	case PartAftermarket:
		notes = append(notes, "使用副厂配件，性价比高，保修期相对较短")
	}

	switch req.Urgency {
	case UrgencyEmergency:
		notes = append(notes, "紧急维修，优先安排，24小时内完成")
	case UrgencyUrgent:
		notes = append(notes, "加急维修，优先处理，1-2个工作日完成")
	}

	if category.Difficulty >= 4 {
		notes = append(notes, "高难度维修，可能需要额外检测时间")
	}

	notes = append(notes, "价格仅供参考，最终以实际检测结果为准")
	return notes
}
