package decode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vintrade/internal/vin"
)

const testVIN = "1HGCM82633A004352"

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(nil, WithBaseURL(srv.URL))
}

func mustVIN(t *testing.T) vin.VIN {
	t.Helper()
	v, err := vin.Validate(testVIN)
	require.NoError(t, err)
	return v
}

func TestDecode_Success(t *testing.T) {
	var gotPath, gotQuery string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"Count": 1,
			"Message": "Results returned successfully",
			"Results": [{
				"Make": "HONDA",
				"Model": "Accord",
				"ModelYear": "2003",
				"BodyClass": "Sedan",
				"Manufacturer": "AMERICAN HONDA MOTOR CO., INC.",
				"PlantCountry": "UNITED STATES (USA)",
				"EngineCylinders": "6",
				"DisplacementL": "3.0",
				"FuelTypePrimary": "Gasoline",
				"FuelTypeSecondary": "",
				"ElectrificationLevel": "0"
			}]
		}`))
	})

	res, err := c.Decode(context.Background(), mustVIN(t))
	require.NoError(t, err)

	assert.Equal(t, "/"+testVIN, gotPath)
	assert.Equal(t, "format=json", gotQuery)
	assert.Equal(t, "HONDA", res.Make)
	assert.Equal(t, "Accord", res.Model)
	assert.Equal(t, "2003", res.ModelYear)
	assert.Equal(t, "Sedan", res.BodyType)
	assert.Equal(t, "6", res.EngineCylinders)
	assert.Equal(t, "3.0", res.Displacement)
	assert.Equal(t, "Gasoline", res.FuelTypePrimary)
	// "" and "0" are placeholders, not values.
	assert.Empty(t, res.FuelTypeSecondary)
	assert.Empty(t, res.ElectrificationLevel)
	assert.NotEmpty(t, res.Raw)
	assert.False(t, res.DecodedAt.IsZero())
}

func TestDecode_NoResults(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Count": 0, "Message": "ok", "Results": []}`))
	})

	_, err := c.Decode(context.Background(), mustVIN(t))
	var noResults *NoResultsError
	require.ErrorAs(t, err, &noResults)
	assert.Equal(t, testVIN, noResults.VIN)
}

func TestDecode_Non2xx(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := c.Decode(context.Background(), mustVIN(t))
	var transport *TransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, http.StatusInternalServerError, transport.StatusCode)
}

func TestDecode_MalformedBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Results": "not an array"`))
	})

	_, err := c.Decode(context.Background(), mustVIN(t))
	var transport *TransportError
	require.ErrorAs(t, err, &transport)
}

func TestDecode_SchemaViolation(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Results": "not an array"}`))
	})

	_, err := c.Decode(context.Background(), mustVIN(t))
	var transport *TransportError
	require.ErrorAs(t, err, &transport)
	assert.Contains(t, transport.Error(), "schema")
}

func TestFieldValue(t *testing.T) {
	m := map[string]any{
		"a": "value",
		"b": "",
		"c": "0",
		"d": nil,
		"e": float64(42),
	}
	assert.Equal(t, "value", fieldValue(m, "a"))
	assert.Empty(t, fieldValue(m, "b"))
	assert.Empty(t, fieldValue(m, "c"))
	assert.Empty(t, fieldValue(m, "d"))
	assert.Equal(t, "42", fieldValue(m, "e"))
	assert.Empty(t, fieldValue(m, "missing"))
}
