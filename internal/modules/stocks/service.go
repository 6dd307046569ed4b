// Package stocks validates stock data against the canonical rules:
// symbol format and the allowed grade set. Pure functions, no I/O.
package stocks

import (
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/avoran/folio/internal/domain"
)

// symbolPattern is the canonical ticker format: 1-5 uppercase letters.
var symbolPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// ValidationService validates stock fields.
type ValidationService struct {
	log zerolog.Logger
}

// NewValidationService creates a new stock validation service.
func NewValidationService(log zerolog.Logger) *ValidationService {
	return &ValidationService{
		log: log.With().Str("service", "stock_validation").Logger(),
	}
}

// ValidateSymbol checks the canonical ticker format.
func (s *ValidationService) ValidateSymbol(symbol string) error {
	if !symbolPattern.MatchString(symbol) {
		return domain.NewValidationError(
			fmt.Sprintf("invalid stock symbol %q: must be 1-5 uppercase letters", symbol)).
			WithContext("rule", "symbol_format").
			WithContext("symbol", symbol)
	}
	return nil
}

// ValidateGrade checks the grade against the allowed set {A, B, C, unset}.
func (s *ValidationService) ValidateGrade(grade domain.Grade) error {
	switch grade {
	case domain.GradeA, domain.GradeB, domain.GradeC, domain.GradeUnset:
		return nil
	default:
		return domain.NewValidationError(
			fmt.Sprintf("invalid grade %q: must be A, B, C or unset", grade)).
			WithContext("rule", "grade_set").
			WithContext("grade", string(grade))
	}
}

// ValidateStock checks a whole stock record.
func (s *ValidationService) ValidateStock(stock domain.Stock) error {
	if err := s.ValidateSymbol(stock.Symbol); err != nil {
		return err
	}
	if stock.Name == "" {
		return domain.NewValidationError("stock name must not be empty").
			WithContext("rule", "name_required").
			WithContext("symbol", stock.Symbol)
	}
	return s.ValidateGrade(stock.Grade)
}
