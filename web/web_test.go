package web

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesDefinePages(t *testing.T) {
	tmpl := Templates(time.UTC)

	for _, name := range []string{"index.html", "order_form.html", "my_orders.html", "error.html", "header", "footer"} {
		assert.NotNil(t, tmpl.Lookup(name), "template %s should be defined", name)
	}
}

func TestFuncs_Money(t *testing.T) {
	money := Funcs(nil)["money"].(func(decimal.Decimal) string)

	assert.Equal(t, "10.00", money(decimal.RequireFromString("10")))
	assert.Equal(t, "0.13", money(decimal.RequireFromString("0.125")))
	assert.Equal(t, "19.99", money(decimal.RequireFromString("19.99")))
}

func TestFuncs_PickupTime(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	pickupTime := Funcs(berlin)["pickupTime"].(func(*time.Time) string)

	at := time.Date(2030, 6, 1, 13, 30, 0, 0, time.UTC)
	assert.Equal(t, "2030-06-01 15:30", pickupTime(&at))
	assert.Equal(t, "", pickupTime(nil))
}

func TestErrorPageRendersMessage(t *testing.T) {
	var buf bytes.Buffer
	err := Templates(time.UTC).ExecuteTemplate(&buf, "error.html", map[string]interface{}{
		"Title":   "Not found",
		"Message": "That item could not be found.",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "That item could not be found.")
}
