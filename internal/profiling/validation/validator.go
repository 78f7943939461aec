// Package validation gates forward navigation in the profiling wizard. It is
// a pure mapping from step number to a rule set evaluated against the record.
package validation

import (
	"github.com/google/uuid"

	"offsite/internal/profiling/models"
)

// Wizard step indexes. Steps 1-5 carry blocking rules; document upload (6)
// and final review (7) are permissive.
const (
	StepGovernance = 1
	StepBusiness   = 2
	StepFinancials = 3
	StepBalance    = 4
	StepCapital    = 5
	StepDocuments  = 6
	StepReview     = 7

	FirstStep = StepGovernance
	LastStep  = StepReview
)

// Result is a step verdict plus field-scoped messages.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

type check struct {
	field   string
	message string
	failed  func(r *models.ProfilingRecord) bool
}

// stepChecks is the rule table. Checks run in order and evaluation stops at
// the first failure, so a step with several problems reports only the first.
var stepChecks = map[int][]check{
	StepGovernance: {
		{"companyId", "a valid company identifier is required", func(r *models.ProfilingRecord) bool {
			return !ValidCompanyID(r.CompanyID)
		}},
		{"boardMembers", "at least one board member is required", func(r *models.ProfilingRecord) bool {
			return len(r.BoardMembers) == 0
		}},
		{"committees", "at least one committee is required", func(r *models.ProfilingRecord) bool {
			return len(r.Committees) == 0
		}},
	},
	StepBusiness: {
		{"products", "at least one product or service is required", func(r *models.ProfilingRecord) bool {
			return len(r.Products) == 0
		}},
		{"clients", "at least one client segment is required", func(r *models.ProfilingRecord) bool {
			return len(r.Clients) == 0
		}},
	},
	StepFinancials: {
		{"financialStatement.periodStart", "statement period start is required", func(r *models.ProfilingRecord) bool {
			return r.FinancialStatement.PeriodStart == ""
		}},
		{"financialStatement.periodEnd", "statement period end is required", func(r *models.ProfilingRecord) bool {
			return r.FinancialStatement.PeriodEnd == ""
		}},
		{"financialStatement.incomeItems", "at least one income item is required", func(r *models.ProfilingRecord) bool {
			return len(r.FinancialStatement.IncomeItems) == 0
		}},
	},
	StepBalance: {
		{"balanceSheet.assets", "at least one asset line is required", func(r *models.ProfilingRecord) bool {
			return len(r.BalanceSheet.Assets) == 0
		}},
		{"balanceSheet.liabilities", "at least one liability line is required", func(r *models.ProfilingRecord) bool {
			return len(r.BalanceSheet.Liabilities) == 0
		}},
	},
	StepCapital: {
		{"clientAssets", "at least one client asset type is required", func(r *models.ProfilingRecord) bool {
			return len(r.ClientAssets) == 0
		}},
		{"capitalPosition.calculationDate", "capital calculation date is required", func(r *models.ProfilingRecord) bool {
			return r.CapitalPosition.CalculationDate == ""
		}},
	},
}

// ValidateStep evaluates the rule set for one step against the record.
// Unknown and permissive steps always pass.
func ValidateStep(step int, r *models.ProfilingRecord) Result {
	for _, c := range stepChecks[step] {
		if c.failed(r) {
			return Result{Valid: false, Errors: map[string]string{c.field: c.message}}
		}
	}
	return Result{Valid: true, Errors: map[string]string{}}
}

// ValidCompanyID reports whether s is a canonical textual UUID: 8-4-4-4-12
// hex groups with a version nibble in 1-5 and an RFC 4122 variant. Alternate
// encodings google/uuid tolerates (braces, urn prefix, 32-hex) are rejected
// because the ingestion endpoint only accepts the canonical form.
func ValidCompanyID(s string) bool {
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	if v := u.Version(); v < 1 || v > 5 {
		return false
	}
	return u.Variant() == uuid.RFC4122
}
