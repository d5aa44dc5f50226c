package model

import "strings"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// Purpose tags a line as business, personal or mixed use.
type Purpose string

const (
	PurposeBusiness Purpose = "business"
	PurposePersonal Purpose = "personal"
	PurposeMixed    Purpose = "mixed"
)

// AccountClass is the behavioral class of an account, derived from its code prefix.
type AccountClass int

const (
	ClassUnknown AccountClass = iota
	ClassCash
	ClassCreditCard
	ClassEquity
	ClassIncome
	ClassExpense
	ClassRealEstateAsset
	ClassRealEstateLoan
)

var classNames = map[AccountClass]string{
	ClassUnknown:         "unknown",
	ClassCash:            "cash",
	ClassCreditCard:      "credit_card",
	ClassEquity:          "equity",
	ClassIncome:          "income",
	ClassExpense:         "expense",
	ClassRealEstateAsset: "real_estate_asset",
	ClassRealEstateLoan:  "real_estate_loan",
}

func (c AccountClass) String() string {
	if s, ok := classNames[c]; ok {
		return s
	}
	return "unknown"
}

// InvertsStatementSign reports whether statement amounts for this class are
// reported with the opposite sign of the ledger convention.
func (c AccountClass) InvertsStatementSign() bool {
	return c == ClassCreditCard
}

// IsCategory reports whether lines on this class are income/expense categories.
func (c AccountClass) IsCategory() bool {
	return c == ClassIncome || c == ClassExpense
}

// ClassifyCode resolves the class of an account code.
// "63" and "64" are checked before the generic "6" expense prefix.
func ClassifyCode(code string) AccountClass {
	code = strings.TrimSpace(code)
	switch {
	case strings.HasPrefix(code, "63"):
		return ClassRealEstateAsset
	case strings.HasPrefix(code, "64"):
		return ClassRealEstateLoan
	case strings.HasPrefix(code, "1"):
		return ClassCash
	case strings.HasPrefix(code, "2"):
		return ClassCreditCard
	case strings.HasPrefix(code, "3"):
		return ClassEquity
	case strings.HasPrefix(code, "4"):
		return ClassIncome
	case strings.HasPrefix(code, "5"), strings.HasPrefix(code, "6"):
		return ClassExpense
	default:
		return ClassUnknown
	}
}

// Account is a row in the chart of accounts.
type Account struct {
	ID          int64       `json:"id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Purpose     Purpose     `json:"purpose"`
	Active      bool        `json:"active"`
	Description string      `json:"description,omitempty"`
}

// Class returns the account's class derived from its code.
func (a Account) Class() AccountClass {
	return ClassifyCode(a.Code)
}
