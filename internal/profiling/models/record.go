// Package models defines the profiling record: the single mutable aggregate a
// wizard session owns. Field names (via JSON tags) are the wire names the
// ingestion endpoint expects after normalization.
package models

import "encoding/json"

// ReportingPeriod bounds the period the record describes. Dates are held as
// user-entered text; the payload normalizer canonicalizes or drops them.
type ReportingPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// BoardMember is one governance person record.
type BoardMember struct {
	FullName    string `json:"fullName"`
	Role        string `json:"role"`
	AppointedOn string `json:"appointedDate"`
}

// Committee is one governance committee record.
type Committee struct {
	Name        string `json:"name"`
	Chair       string `json:"chair"`
	MemberCount int    `json:"memberCount"`
}

// Product is one product/service offering record.
type Product struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// ClientSegment is one client-segment record.
type ClientSegment struct {
	Segment string `json:"segment"`
	Count   int    `json:"count"`
}

// IncomeItem is one income line of the financial statement.
type IncomeItem struct {
	Source string  `json:"source"`
	Amount float64 `json:"amount"`
}

// FinancialStatement holds raw statement inputs plus the derived margins.
// GrossMargin and ProfitMargin are never user-entered; they are recomputed
// from the raw fields immediately before every submission attempt.
type FinancialStatement struct {
	PeriodStart     string       `json:"periodStart"`
	PeriodEnd       string       `json:"periodEnd"`
	TotalRevenue    float64      `json:"totalRevenue"`
	OperatingCosts  float64      `json:"operatingCosts"`
	ProfitBeforeTax float64      `json:"profitBeforeTax"`
	GrossMargin     float64      `json:"grossMargin"`
	ProfitMargin    float64      `json:"profitMargin"`
	IncomeItems     []IncomeItem `json:"incomeItems"`
}

// BalanceLine is one asset/liability/debtor/creditor line.
type BalanceLine struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// RelatedParty records a related-party exposure.
type RelatedParty struct {
	Name         string  `json:"name"`
	Relationship string  `json:"relationship"`
	Amount       float64 `json:"amount"`
}

// BalanceSheet holds raw balance inputs plus the derived working capital.
type BalanceSheet struct {
	PeriodEnd          string         `json:"periodEnd"`
	ShareholdersFunds  float64        `json:"shareholdersFunds"`
	TotalAssets        float64        `json:"totalAssets"`
	TotalLiabilities   float64        `json:"totalLiabilities"`
	CurrentAssets      float64        `json:"currentAssets"`
	CurrentLiabilities float64        `json:"currentLiabilities"`
	WorkingCapital     float64        `json:"workingCapital"`
	CashCover          float64        `json:"cashCover"`
	Assets             []BalanceLine  `json:"assets"`
	Liabilities        []BalanceLine  `json:"liabilities"`
	Debtors            []BalanceLine  `json:"debtors"`
	Creditors          []BalanceLine  `json:"creditors"`
	RelatedParties     []RelatedParty `json:"relatedParties"`
}

// ClientAsset is one client-asset-type record.
type ClientAsset struct {
	AssetType string  `json:"assetType"`
	Value     float64 `json:"value"`
	Custodian string  `json:"custodian"`
}

// CapitalPosition holds raw capital inputs plus the derived adequacy fields.
type CapitalPosition struct {
	CalculationDate       string  `json:"calculationDate"`
	NetCapital            float64 `json:"netCapital"`
	RequiredCapital       float64 `json:"requiredCapital"`
	AdjustedLiquidCapital float64 `json:"adjustedLiquidCapital"`
	IsCompliant           bool    `json:"isCompliant"`
	CapitalAdequacyRatio  float64 `json:"capitalAdequacyRatio"`
}

// SupportingDocument references one uploaded file.
type SupportingDocument struct {
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	Category string `json:"category"`
}

// ProfilingRecord is the full offsite profiling submission for one supervised
// market intermediary. Exactly one wizard session owns each instance; nothing
// else retains a mutable reference to it.
type ProfilingRecord struct {
	CompanyID           string               `json:"companyId"`
	ReportingPeriod     ReportingPeriod      `json:"reportingPeriod"`
	BoardMembers        []BoardMember        `json:"boardMembers"`
	Committees          []Committee          `json:"committees"`
	Products            []Product            `json:"products"`
	Clients             []ClientSegment      `json:"clients"`
	FinancialStatement  FinancialStatement   `json:"financialStatement"`
	BalanceSheet        BalanceSheet         `json:"balanceSheet"`
	ClientAssets        []ClientAsset        `json:"clientAssets"`
	CapitalPosition     CapitalPosition      `json:"capitalPosition"`
	SupportingDocuments []SupportingDocument `json:"supportingDocuments"`
}

// NewRecord returns the empty skeleton a wizard starts from when neither seed
// data nor a stored draft exists: empty collections, zeroed numerics.
func NewRecord() *ProfilingRecord {
	return &ProfilingRecord{
		BoardMembers: []BoardMember{},
		Committees:   []Committee{},
		Products:     []Product{},
		Clients:      []ClientSegment{},
		FinancialStatement: FinancialStatement{
			IncomeItems: []IncomeItem{},
		},
		BalanceSheet: BalanceSheet{
			Assets:         []BalanceLine{},
			Liabilities:    []BalanceLine{},
			Debtors:        []BalanceLine{},
			Creditors:      []BalanceLine{},
			RelatedParties: []RelatedParty{},
		},
		ClientAssets:        []ClientAsset{},
		SupportingDocuments: []SupportingDocument{},
	}
}

// Clone returns a deep copy. The submit pipeline normalizes a snapshot so a
// failed submission never leaves partial rewrites in the live record.
func (r *ProfilingRecord) Clone() *ProfilingRecord {
	// The record is plain data with JSON tags on every field, so a round trip
	// is a faithful deep copy.
	raw, err := json.Marshal(r)
	if err != nil {
		// Marshaling a tree of strings, numbers and bools cannot fail.
		panic("models: marshal profiling record: " + err.Error())
	}
	var out ProfilingRecord
	if err := json.Unmarshal(raw, &out); err != nil {
		panic("models: unmarshal profiling record: " + err.Error())
	}
	return &out
}
