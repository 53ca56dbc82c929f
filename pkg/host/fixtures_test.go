package host

import (
	"testing"

	"github.com/aretw0/greenscreen/pkg/catalog"
	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/stretchr/testify/require"
)

const navigationYAML = `
initial_screen: sign_on
credentials:
  - {user_id: ALICE, password: SECRET1}
entities:
  loan:
    key: loan_number
    records:
      "0012345678": {borrower_name: JANE Q BORROWER, principal_balance: "182450.17"}
rules:
  - from: sign_on
    key: ENTER
    requires: [user_id, password]
    validation: credentials
    to: loan_inquiry
  - from: loan_inquiry
    key: ENTER
    requires: [loan_number]
    conditions:
      - {field: loan_number, op: matches, value: '^\d{10}$'}
    validation: loan_lookup
    to: loan_details
  - from: loan_inquiry
    key: ENTER
    requires: [loan_number]
    error: LOAN NUMBER MUST BE 10 DIGITS
  - from: loan_inquiry
    key: PF3
    to: sign_on
  - from: loan_details
    key: PF3
    to: loan_inquiry
`

func fixtures(t *testing.T) (*domain.Catalog, *domain.NavigationConfig) {
	t.Helper()
	cat, err := catalog.NewBuilder().
		Screen("sign_on").Identifier(1, 2, "SIGN ON").
		Text(10, 15, "USER ID:").Input("user_id", 10, 30, 8).
		Text(12, 15, "PASSWORD:").Input("password", 12, 30, 8, domain.AttrHidden).
		Screen("loan_inquiry").Identifier(1, 2, "LOAN INQUIRY").
		Input("loan_number", 6, 30, 10, domain.AttrNumeric).
		Display("user_id", 2, 60, 8).
		Screen("loan_details").Identifier(1, 2, "LOAN DETAILS").
		Display("borrower_name", 5, 35, 30).
		Display("principal_balance", 6, 35, 15).
		Input("pin", 20, 30, 4, domain.AttrSensitive).
		Build()
	require.NoError(t, err)
	nav, err := catalog.ParseNavigation([]byte(navigationYAML), "test", cat)
	require.NoError(t, err)
	return cat, nav
}
