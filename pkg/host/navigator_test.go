package host

import (
	"testing"

	"github.com/aretw0/greenscreen/pkg/datastream"
	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigate_ValidSignOn(t *testing.T) {
	cat, cfg := fixtures(t)
	nav := NewNavigator(cat, cfg)
	state := domain.NewSessionState("s1", nav.InitialScreen())

	out := nav.Navigate(state, "ENTER", map[string]string{"user_id": "alice", "password": "SECRET1"})
	require.True(t, out.Moved())
	assert.Equal(t, "loan_inquiry", out.Target)
	assert.Equal(t, map[string]string{"user_id": "alice"}, out.Updates)
	assert.Equal(t, "sign_on", state.CurrentScreen, "Navigate does not mutate the session")

	nav.Apply(state, out)
	assert.Equal(t, "loan_inquiry", state.CurrentScreen)
	assert.Equal(t, 1, state.Turns)
	assert.NotContains(t, state.Data, "password")
}

func TestNavigate_EmptyCredentialsGetRequiredMessage(t *testing.T) {
	cat, cfg := fixtures(t)
	nav := NewNavigator(cat, cfg)
	state := domain.NewSessionState("s1", "sign_on")

	out := nav.Navigate(state, "ENTER", map[string]string{})
	assert.False(t, out.Moved())
	assert.Equal(t, MsgRequiredMissing, out.Error)
	assert.Equal(t, "sign_on", out.Target)
}

func TestNavigate_RetainedValuesNeverSubstitute(t *testing.T) {
	cat, cfg := fixtures(t)
	nav := NewNavigator(cat, cfg)
	state := domain.NewSessionState("s1", "sign_on")
	state.Data["user_id"] = "ALICE"
	state.Data["password"] = "SECRET1"

	out := nav.Navigate(state, "ENTER", map[string]string{"user_id": "", "password": ""})
	assert.False(t, out.Moved())
	assert.Equal(t, MsgRequiredMissing, out.Error)
}

func TestNavigate_BadCredentials(t *testing.T) {
	cat, cfg := fixtures(t)
	nav := NewNavigator(cat, cfg)
	state := domain.NewSessionState("s1", "sign_on")

	out := nav.Navigate(state, "ENTER", map[string]string{"user_id": "ALICE", "password": "WRONG"})
	assert.Equal(t, MsgInvalidCredentials, out.Error)
	require.NotNil(t, out.Rule)
	assert.Equal(t, "credentials", out.Rule.Validation)
}

func TestNavigate_InvalidKey(t *testing.T) {
	cat, cfg := fixtures(t)
	nav := NewNavigator(cat, cfg)
	out := nav.Navigate(domain.NewSessionState("s1", "sign_on"), "PF12", nil)
	assert.Equal(t, MsgInvalidKey, out.Error)
}

func TestNavigate_GuardRule(t *testing.T) {
	cat, cfg := fixtures(t)
	nav := NewNavigator(cat, cfg)
	out := nav.Navigate(domain.NewSessionState("s1", "loan_inquiry"), "ENTER", map[string]string{"loan_number": "12AB"})
	assert.Equal(t, "LOAN NUMBER MUST BE 10 DIGITS", out.Error)
	assert.Equal(t, "loan_inquiry", out.Target)
}

func TestNavigate_EntityLookup(t *testing.T) {
	cat, cfg := fixtures(t)
	nav := NewNavigator(cat, cfg)
	state := domain.NewSessionState("s1", "loan_inquiry")

	out := nav.Navigate(state, "ENTER", map[string]string{"loan_number": "0012345678"})
	require.True(t, out.Moved())
	assert.Equal(t, "loan_details", out.Target)
	assert.Equal(t, "JANE Q BORROWER", out.Updates["borrower_name"])
	assert.Equal(t, "0012345678", out.Updates["loan_number"])

	out = nav.Navigate(state, "ENTER", map[string]string{"loan_number": "9999999999"})
	assert.Equal(t, "LOAN NOT FOUND", out.Error)
}

func TestNavigate_SensitiveNeverInUpdates(t *testing.T) {
	cat, cfg := fixtures(t)
	cfg.Rules = append(cfg.Rules, domain.TransitionRule{From: "loan_details", Key: "ENTER", To: "loan_inquiry"})
	nav := NewNavigator(cat, cfg)

	out := nav.Navigate(domain.NewSessionState("s1", "loan_details"), "ENTER", map[string]string{"pin": "1234"})
	require.True(t, out.Moved())
	assert.NotContains(t, out.Updates, "pin")
}

func TestNavigate_CustomValidator(t *testing.T) {
	cat, cfg := fixtures(t)
	nav := NewNavigator(cat, cfg, WithValidator("credentials", func(*domain.NavigationConfig, map[string]string) (map[string]string, string) {
		return map[string]string{"role": "admin"}, ""
	}))
	out := nav.Navigate(domain.NewSessionState("s1", "sign_on"), "ENTER", map[string]string{"user_id": "X", "password": "Y"})
	require.True(t, out.Moved())
	assert.Equal(t, "admin", out.Updates["role"])
}

func TestRender_InputsNeverShowRetainedValues(t *testing.T) {
	cat, _ := fixtures(t)
	def, _ := cat.Screen("loan_inquiry")
	state := domain.NewSessionState("s1", "loan_inquiry")
	state.Data["loan_number"] = "0012345678"
	state.Data["user_id"] = "ALICE"

	buf, err := datastream.DecodeScreen(Render(def, state, "SOMETHING WRONG"), nil)
	require.NoError(t, err)
	loan, _ := def.Field("loan_number")
	user, _ := def.Field("user_id")
	assert.Empty(t, buf.ReadField(loan))
	assert.Equal(t, "ALICE", buf.ReadField(user))
	assert.Equal(t, "SOMETHING WRONG", buf.Read(domain.ErrorRow, domain.ErrorCol, 15))
}
