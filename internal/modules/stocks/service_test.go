package stocks

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoran/folio/internal/domain"
)

func newService() *ValidationService {
	return NewValidationService(zerolog.Nop())
}

func TestValidateSymbol(t *testing.T) {
	svc := newService()

	for _, symbol := range []string{"A", "KO", "AAPL", "GOOGL"} {
		assert.NoError(t, svc.ValidateSymbol(symbol), symbol)
	}

	for _, symbol := range []string{"", "aapl", "Aapl", "TOOLONG", "BRK.A", "AAPL1", " AAPL"} {
		err := svc.ValidateSymbol(symbol)
		require.Error(t, err, symbol)
		assert.True(t, domain.IsKind(err, domain.KindValidation), symbol)
	}
}

func TestValidateGrade(t *testing.T) {
	svc := newService()

	for _, grade := range []domain.Grade{domain.GradeA, domain.GradeB, domain.GradeC, domain.GradeUnset} {
		assert.NoError(t, svc.ValidateGrade(grade))
	}

	for _, grade := range []domain.Grade{"D", "a", "AA"} {
		err := svc.ValidateGrade(grade)
		require.Error(t, err, grade)
		assert.True(t, domain.IsKind(err, domain.KindValidation), grade)
	}
}

func TestValidateStock(t *testing.T) {
	svc := newService()

	valid := domain.Stock{Symbol: "AAPL", Name: "Apple Inc.", Grade: domain.GradeA}
	assert.NoError(t, svc.ValidateStock(valid))

	ungraded := domain.Stock{Symbol: "KO", Name: "Coca-Cola"}
	assert.NoError(t, svc.ValidateStock(ungraded))

	badSymbol := valid
	badSymbol.Symbol = "aapl"
	assert.Error(t, svc.ValidateStock(badSymbol))

	noName := valid
	noName.Name = ""
	err := svc.ValidateStock(noName)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	badGrade := valid
	badGrade.Grade = "D"
	assert.Error(t, svc.ValidateStock(badGrade))
}
