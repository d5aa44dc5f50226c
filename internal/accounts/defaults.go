package accounts

import "github.com/flipledger/flipledger/internal/model"

// DefaultChart returns the default chart of accounts for a business type.
func DefaultChart(businessType string) []model.Account {
	switch businessType {
	case "flip_and_contract":
		return flipAndContractChart()
	default:
		return flipAndContractChart()
	}
}

// Rehab cost accounts, keyed by cost-type code.
const (
	CodeRehabLabor      = "52100"
	CodeRehabMaterials  = "52200"
	CodeRehabServices   = "52300"
	CodeRehabInspection = "52400"
	CodeRehabHolding    = "52500"
)

// Well-known accounts used by the posting archetypes.
const (
	CodeChecking     = "10100"
	CodeCreditCard   = "21000"
	CodeGainOnSale   = "40200"
	CodeClosingCosts = "61000"
	CodeInterest     = "61100"
	CodeEscrow       = "61200"
)

func flipAndContractChart() []model.Account {
	biz := model.PurposeBusiness
	return []model.Account{
		{Code: CodeChecking, Name: "Business Checking", Type: model.AccountTypeAsset, Purpose: biz, Active: true, Description: "Primary operating account"},
		{Code: "10200", Name: "Business Savings", Type: model.AccountTypeAsset, Purpose: biz, Active: true},
		{Code: CodeCreditCard, Name: "Business Credit Card", Type: model.AccountTypeLiability, Purpose: model.PurposeMixed, Active: true},
		{Code: "30000", Name: "Owner's Equity", Type: model.AccountTypeEquity, Purpose: biz, Active: true},
		{Code: "30100", Name: "Owner Draws", Type: model.AccountTypeEquity, Purpose: model.PurposePersonal, Active: true},
		{Code: "40100", Name: "Contracting Income", Type: model.AccountTypeIncome, Purpose: biz, Active: true},
		{Code: CodeGainOnSale, Name: "Gain on Sale of Property", Type: model.AccountTypeIncome, Purpose: biz, Active: true, Description: "Flip sale price over carrying value"},
		{Code: "40900", Name: "Other Income", Type: model.AccountTypeIncome, Purpose: biz, Active: true},
		{Code: "51000", Name: "Job Materials", Type: model.AccountTypeExpense, Purpose: biz, Active: true},
		{Code: "51100", Name: "Subcontract Labor", Type: model.AccountTypeExpense, Purpose: biz, Active: true},
		{Code: CodeRehabLabor, Name: "Rehab Labor", Type: model.AccountTypeExpense, Purpose: biz, Active: true},
		{Code: CodeRehabMaterials, Name: "Rehab Materials", Type: model.AccountTypeExpense, Purpose: biz, Active: true},
		{Code: CodeRehabServices, Name: "Rehab Services", Type: model.AccountTypeExpense, Purpose: biz, Active: true},
		{Code: CodeRehabInspection, Name: "Permits & Inspections", Type: model.AccountTypeExpense, Purpose: biz, Active: true},
		{Code: CodeRehabHolding, Name: "Holding Costs", Type: model.AccountTypeExpense, Purpose: biz, Active: true, Description: "Utilities and insurance while a flip is held"},
		{Code: "60100", Name: "Advertising", Type: model.AccountTypeExpense, Purpose: biz, Active: true},
		{Code: "60200", Name: "Vehicle & Fuel", Type: model.AccountTypeExpense, Purpose: model.PurposeMixed, Active: true},
		{Code: "60300", Name: "Meals", Type: model.AccountTypeExpense, Purpose: model.PurposeMixed, Active: true},
		{Code: "60400", Name: "Tools & Equipment", Type: model.AccountTypeExpense, Purpose: biz, Active: true},
		{Code: "60500", Name: "Insurance", Type: model.AccountTypeExpense, Purpose: biz, Active: true},
		{Code: "60600", Name: "Professional Services", Type: model.AccountTypeExpense, Purpose: biz, Active: true, Description: "Legal, accounting, title"},
		{Code: CodeClosingCosts, Name: "Closing Costs", Type: model.AccountTypeExpense, Purpose: biz, Active: true},
		{Code: CodeInterest, Name: "Mortgage Interest", Type: model.AccountTypeExpense, Purpose: biz, Active: true},
		{Code: CodeEscrow, Name: "Property Taxes & Insurance (Escrow)", Type: model.AccountTypeExpense, Purpose: biz, Active: true},
		{Code: "62000", Name: "Office & Software", Type: model.AccountTypeExpense, Purpose: biz, Active: true},
	}
}
