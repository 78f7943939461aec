// Package ratios derives the regulatory financial ratios from raw record
// inputs. Every function is pure; Apply writes the results back into the
// record immediately before a submission attempt so stored derived values are
// never trusted.
package ratios

import "offsite/internal/profiling/models"

// WorkingCapital is current assets less current liabilities.
func WorkingCapital(currentAssets, currentLiabilities float64) float64 {
	return currentAssets - currentLiabilities
}

// CapitalAdequacyRatio is net capital over required capital, as a plain ratio
// (presentation layers decide formatting). A zero required capital makes the
// ratio undefined; we report 0 rather than letting Inf/NaN reach the payload.
func CapitalAdequacyRatio(netCapital, requiredCapital float64) float64 {
	if requiredCapital == 0 {
		return 0
	}
	return netCapital / requiredCapital
}

// IsCompliant is the non-strict capital adequacy test.
func IsCompliant(netCapital, requiredCapital float64) bool {
	return netCapital >= requiredCapital
}

// GrossMargin is (revenue - operating costs) / revenue, 0 when revenue is 0.
func GrossMargin(totalRevenue, operatingCosts float64) float64 {
	if totalRevenue == 0 {
		return 0
	}
	return (totalRevenue - operatingCosts) / totalRevenue
}

// ProfitMargin is profit before tax / revenue, 0 when revenue is 0.
func ProfitMargin(profitBeforeTax, totalRevenue float64) float64 {
	if totalRevenue == 0 {
		return 0
	}
	return profitBeforeTax / totalRevenue
}

// Apply recomputes every derived field from the record's raw inputs and
// writes the results into the record.
func Apply(r *models.ProfilingRecord) {
	bs := &r.BalanceSheet
	bs.WorkingCapital = WorkingCapital(bs.CurrentAssets, bs.CurrentLiabilities)

	fs := &r.FinancialStatement
	fs.GrossMargin = GrossMargin(fs.TotalRevenue, fs.OperatingCosts)
	fs.ProfitMargin = ProfitMargin(fs.ProfitBeforeTax, fs.TotalRevenue)

	cp := &r.CapitalPosition
	cp.CapitalAdequacyRatio = CapitalAdequacyRatio(cp.NetCapital, cp.RequiredCapital)
	cp.IsCompliant = IsCompliant(cp.NetCapital, cp.RequiredCapital)
}
