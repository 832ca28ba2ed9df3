package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/eliteacai/pdv-backend/pkg/errors"
)

type itemPayload struct {
	ProductCode string           `json:"product_code" validate:"required,max=8"`
	UnitPrice   decimal.Decimal  `json:"unit_price" validate:"money"`
	WeightKg    *decimal.Decimal `json:"weight_kg" validate:"omitempty,nonneg"`
	PerGram     *decimal.Decimal `json:"price_per_gram" validate:"omitempty,scale=4"`
}

func decode(t *testing.T, body string) (itemPayload, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest itemPayload
	return dest, DecodeJSONBody(req, &dest)
}

func detailsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok, "details type %T", typed.Details())
	return details
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	dest, err := decode(t, `{"product_code":"ACAI500","unit_price":"15.90","weight_kg":"0.455"}`)
	require.NoError(t, err)
	assert.Equal(t, "15.9", dest.UnitPrice.String())
	require.NotNil(t, dest.WeightKg)
	assert.Equal(t, "0.455", dest.WeightKg.String())
}

func TestDecodeJSONBodyRejectsMoneyPrecisionAndSign(t *testing.T) {
	_, err := decode(t, `{"product_code":"A","unit_price":"1.999"}`)
	assert.Contains(t, detailsOf(t, err), "unit_price")

	_, err = decode(t, `{"product_code":"A","unit_price":"-1"}`)
	assert.Contains(t, detailsOf(t, err), "unit_price")

	_, err = decode(t, `{"product_code":"A","unit_price":"1","weight_kg":"-0.1"}`)
	assert.Equal(t, "must not be negative", detailsOf(t, err)["weight_kg"])
}

func TestDecodeJSONBodyRejectsExcessScale(t *testing.T) {
	dest, err := decode(t, `{"product_code":"A","unit_price":"1","price_per_gram":"0.0650"}`)
	require.NoError(t, err)
	require.NotNil(t, dest.PerGram)
	assert.Equal(t, "0.065", dest.PerGram.String())

	_, err = decode(t, `{"product_code":"A","unit_price":"1","price_per_gram":"0.06501"}`)
	assert.Equal(t, "must be a non-negative number with at most 4 decimal places", detailsOf(t, err)["price_per_gram"])

	_, err = decode(t, `{"product_code":"A","unit_price":"1","price_per_gram":"-0.06"}`)
	assert.Contains(t, detailsOf(t, err), "price_per_gram")
}

func TestDecodeJSONBodyReportsRequiredAndMax(t *testing.T) {
	_, err := decode(t, `{"unit_price":"1"}`)
	assert.Equal(t, "is required", detailsOf(t, err)["product_code"])

	_, err = decode(t, `{"product_code":"ACAI-GRANDE-700","unit_price":"1"}`)
	assert.Equal(t, "must be at most 8", detailsOf(t, err)["product_code"])
}

func TestDecodeJSONBodyRejectsMalformedBodies(t *testing.T) {
	_, err := decode(t, ``)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, "request body is required", pkgerrors.As(err).Message())

	_, err = decode(t, `{"product_code":"A","unit_price":"1","discount":"5"}`)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = decode(t, `{"product_code":"A","notes":"`+strings.Repeat("x", MaxBodyBytes)+`"}`)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, "request body too large", pkgerrors.As(err).Message())
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/sales", nil)
	limit, err := ParseQueryInt(req, "limit", 50, 1, 200)
	require.NoError(t, err)
	assert.Equal(t, 50, limit)

	req = httptest.NewRequest(http.MethodGet, "/sales?limit=20", nil)
	limit, err = ParseQueryInt(req, "limit", 50, 1, 200)
	require.NoError(t, err)
	assert.Equal(t, 20, limit)

	for _, raw := range []string{"abc", "0", "201"} {
		req = httptest.NewRequest(http.MethodGet, "/sales?limit="+raw, nil)
		_, err = ParseQueryInt(req, "limit", 50, 1, 200)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), raw)
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Mesa 2 varanda", SanitizeString("  Mesa   2\tvaranda ", 0))
	assert.Equal(t, "Açaí", SanitizeString("Açaí com granola", 4))
	assert.Equal(t, "Açaí", SanitizeString("Açaí com granola", 5))
	assert.Equal(t, "", SanitizeString("   ", 10))
}
