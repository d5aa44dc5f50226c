package accounts

import (
	"fmt"
	"os"

	"github.com/flipledger/flipledger/internal/model"
)

// Service provides in-memory lookup over the chart of accounts.
type Service struct {
	accounts []model.Account
	byCode   map[string]model.Account
	byID     map[int64]model.Account
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.Account) *Service {
	byCode := make(map[string]model.Account, len(accounts))
	byID := make(map[int64]model.Account, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = a
		if a.ID != 0 {
			byID[a.ID] = a
		}
	}
	return &Service{accounts: accounts, byCode: byCode, byID: byID}
}

// Load reads a chart-of-accounts CSV file and returns a Service.
func Load(path string) (*Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts.
func (s *Service) All() []model.Account {
	return s.accounts
}

// ByCode returns an account by code.
func (s *Service) ByCode(code string) (model.Account, bool) {
	a, ok := s.byCode[code]
	return a, ok
}

// ByID returns an account by store ID. Seed accounts without IDs are not indexed.
func (s *Service) ByID(id int64) (model.Account, bool) {
	a, ok := s.byID[id]
	return a, ok
}

// Exists reports whether an account code exists.
func (s *Service) Exists(code string) bool {
	_, ok := s.byCode[code]
	return ok
}

// ByClass returns all accounts of the given class.
func (s *Service) ByClass(class model.AccountClass) []model.Account {
	var result []model.Account
	for _, a := range s.accounts {
		if a.Class() == class {
			result = append(result, a)
		}
	}
	return result
}

// Save writes the chart of accounts to a CSV file.
func (s *Service) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}
