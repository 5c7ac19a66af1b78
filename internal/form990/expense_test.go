package form990

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFundraisingExpense_PrimaryTag(t *testing.T) {
	doc := mustParse(t, `<Return>
  <CYTotalFundraisingExpenseAmt>3200000</CYTotalFundraisingExpenseAmt>
</Return>`)
	assert.Equal(t, 3200000.0, FundraisingExpense(doc))
}

func TestFundraisingExpense_LegacyTag(t *testing.T) {
	doc := mustParse(t, `<Return>
  <TotalFundrsngExpCurrentYrAmt>2100000</TotalFundrsngExpCurrentYrAmt>
</Return>`)
	assert.Equal(t, 2100000.0, FundraisingExpense(doc))
}

func TestFundraisingExpense_FallbackRequiresTotalParent(t *testing.T) {
	doc := mustParse(t, `<Return>
  <ProgramServicesGrp>
    <FundraisingAmt>999</FundraisingAmt>
  </ProgramServicesGrp>
  <TotalFunctionalExpensesGrp>
    <FundraisingAmt>2750000</FundraisingAmt>
  </TotalFunctionalExpensesGrp>
</Return>`)

	// The line-item amount under a non-Total parent is skipped; the one under
	// the functional-expense total row wins.
	assert.Equal(t, 2750000.0, FundraisingExpense(doc))
}

func TestFundraisingExpense_PrimaryTagWinsOverFallback(t *testing.T) {
	doc := mustParse(t, `<Return>
  <TotalFunctionalExpensesGrp>
    <FundraisingAmt>1</FundraisingAmt>
  </TotalFunctionalExpensesGrp>
  <CYTotalFundraisingExpenseAmt>5000000</CYTotalFundraisingExpenseAmt>
</Return>`)
	assert.Equal(t, 5000000.0, FundraisingExpense(doc))
}

func TestFundraisingExpense_NothingFound(t *testing.T) {
	doc := mustParse(t, `<Return><Other>x</Other></Return>`)
	assert.Equal(t, 0.0, FundraisingExpense(doc))
}

func TestFundraisingExpense_NilDocument(t *testing.T) {
	assert.Equal(t, 0.0, FundraisingExpense(nil))
}
