package patch

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var draftSchema = Schema{
	"name":       Text,
	"address":    Text,
	"basic_info": JSON,
	"services":   JSON,
	"facilities": JSON,
	"pricing":    JSON,
}

func TestFromJSONAbsentFieldsAreUntouched(t *testing.T) {
	p, err := FromJSON([]byte(`{"name":"Bright Smile"}`), draftSchema)
	require.NoError(t, err)

	assert.Len(t, p, 1)
	v, ok := p.Text("name")
	assert.True(t, ok)
	assert.Equal(t, "Bright Smile", v)
	_, touched := p["address"]
	assert.False(t, touched)
}

func TestFromJSONEmptyAndNullClearExactlyThatField(t *testing.T) {
	p, err := FromJSON([]byte(`{"address":"","services":null,"name":"Kept"}`), draftSchema)
	require.NoError(t, err)

	assert.True(t, p.Cleared("address"))
	assert.True(t, p.Cleared("services"))
	assert.False(t, p.Cleared("name"))

	cols := p.Columns(draftSchema)
	require.Len(t, cols, 3)
	assert.Equal(t, "address", cols[0].Name)
	assert.Nil(t, cols[0].Value)
	assert.Equal(t, "name", cols[1].Name)
	assert.Equal(t, "Kept", cols[1].Value)
	assert.Equal(t, "services", cols[2].Name)
	assert.Nil(t, cols[2].Value)
}

func TestFromJSONRejectsUnknownAndMistypedFields(t *testing.T) {
	_, err := FromJSON([]byte(`{"is_published":true}`), draftSchema)
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = FromJSON([]byte(`{"name":42}`), draftSchema)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = FromJSON([]byte(`{"services":"not json"}`), draftSchema)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestFromJSONDocumentFieldsRequireObjectOrArray(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"bool", `{"basic_info":true}`, false},
		{"number", `{"services":5}`, false},
		{"encoded scalar", `{"pricing":"42"}`, false},
		{"object", `{"basic_info":{"city":"Izmir"}}`, true},
		{"array", `{"services":[{"name":"Cleaning"}]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON([]byte(tt.body), draftSchema)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestFromJSONAcceptsEncodedJSONString(t *testing.T) {
	p, err := FromJSON([]byte(`{"services":"[{\"name\":\"Cleaning\"}]"}`), draftSchema)
	require.NoError(t, err)
	assert.Equal(t, Set, p["services"].Mode)
	assert.JSONEq(t, `[{"name":"Cleaning"}]`, p["services"].Value)
}

func TestFromFormBlankFieldsClearOnlyWhenSubmittedWhole(t *testing.T) {
	form := url.Values{
		"name":    {"Clinic"},
		"address": {"   "},
	}
	p, err := FromForm(form, draftSchema)
	require.NoError(t, err)

	assert.True(t, p.Cleared("address"))
	assert.Equal(t, Set, p["name"].Mode)
	assert.Len(t, p, 2)
}

func TestFromFormReconstitutesArrays(t *testing.T) {
	form := url.Values{
		"services.1.name":     {"Whitening"},
		"services.1.price":    {"250"},
		"services.0.name":     {"Cleaning"},
		"services.0.price":    {"100"},
		"services.0.currency": {"USD"},
		"services.2.name":     {""},
		"services.2.price":    {""},
	}
	p, err := FromForm(form, draftSchema)
	require.NoError(t, err)

	op := p["services"]
	assert.Equal(t, Set, op.Mode)

	var got []map[string]string
	require.NoError(t, json.Unmarshal([]byte(op.Value), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Cleaning", got[0]["name"])
	assert.Equal(t, "USD", got[0]["currency"])
	assert.Equal(t, "Whitening", got[1]["name"])
}

func TestFromFormObjectsMergeAndSkipBlankKeys(t *testing.T) {
	form := url.Values{
		"basic_info.city":               {"Izmir"},
		"basic_info.description":        {""},
		"facilities.languages_spoken[]": {"English", "", "Turkish"},
	}
	p, err := FromForm(form, draftSchema)
	require.NoError(t, err)

	assert.Equal(t, Merge, p["basic_info"].Mode)
	assert.JSONEq(t, `{"city":"Izmir"}`, p["basic_info"].Value)
	assert.JSONEq(t, `{"languages_spoken":["English","Turkish"]}`, p["facilities"].Value)
}

func TestFromFormAllBlankNestedFieldIsUntouched(t *testing.T) {
	form := url.Values{
		"services.0.name": {""},
		"basic_info.city": {" "},
		"pricing.0":       {""},
	}
	p, err := FromForm(form, draftSchema)
	require.NoError(t, err)
	assert.Empty(t, p)
}

func TestFromFormStringArrays(t *testing.T) {
	form := url.Values{
		"pricing.0": {"Cash"},
		"pricing.1": {"Card"},
	}
	p, err := FromForm(form, draftSchema)
	require.NoError(t, err)
	assert.JSONEq(t, `["Cash","Card"]`, p["pricing"].Value)
}

func TestFromFormRejectsMixedAndConflictingKeys(t *testing.T) {
	_, err := FromForm(url.Values{"services.0.name": {"a"}, "services.name": {"b"}}, draftSchema)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = FromForm(url.Values{"services": {"[]"}, "services.0.name": {"a"}}, draftSchema)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = FromForm(url.Values{"name.first": {"a"}}, draftSchema)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestRestrict(t *testing.T) {
	p := Patch{"name": {Mode: Set, Value: "x"}, "address": {Mode: Clear}}
	assert.NoError(t, p.Restrict("name", "address"))
	assert.ErrorIs(t, p.Restrict("name"), ErrUnknownField)
}
