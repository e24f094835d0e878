package odoo

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	uidResponse = `<?xml version="1.0"?>
<methodResponse><params><param><value><int>7</int></value></param></params></methodResponse>`

	pickingsResponse = `<?xml version="1.0"?>
<methodResponse><params><param><value><array><data>
<value><struct>
<member><name>id</name><value><int>33</int></value></member>
<member><name>name</name><value><string>WH/OUT/00033</string></value></member>
<member><name>sale_id</name><value><array><data><value><int>42</int></value><value><string>S00042</string></value></data></array></value></member>
<member><name>origin</name><value><boolean>0</boolean></value></member>
</struct></value>
</data></array></value></param></params></methodResponse>`

	writeResponse = `<?xml version="1.0"?>
<methodResponse><params><param><value><boolean>1</boolean></value></param></params></methodResponse>`
)

// xmlrpcStub answers authenticate on /common and execute_kw on /object.
func xmlrpcStub(t *testing.T, bodies *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body := string(raw)
		*bodies = append(*bodies, body)
		w.Header().Set("Content-Type", "text/xml")
		switch {
		case strings.HasSuffix(r.URL.Path, "/common"):
			io.WriteString(w, uidResponse)
		case strings.Contains(body, "<string>write</string>"):
			io.WriteString(w, writeResponse)
		default:
			io.WriteString(w, pickingsResponse)
		}
	}))
}

func TestClientSearchReadAuthenticatesOnce(t *testing.T) {
	var bodies []string
	srv := xmlrpcStub(t, &bodies)
	defer srv.Close()

	c := NewClient(srv.URL, "flyt", "admin", "secret")
	recs, err := c.SearchRead("stock.picking", []interface{}{}, []string{"name"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, int64(33), recs[0].ID())
	assert.Equal(t, int64(42), recs[0].Int64("sale_id"))
	assert.Equal(t, "", recs[0].String("origin"))
	assert.Equal(t, 7, c.Uid)

	_, err = c.SearchRead("stock.picking", []interface{}{}, []string{"name"}, 10, 10)
	require.NoError(t, err)
	require.Len(t, bodies, 3)
	assert.Contains(t, bodies[0], "authenticate")
	assert.Contains(t, bodies[1], "search_read")
}

func TestClientWrite(t *testing.T) {
	var bodies []string
	srv := xmlrpcStub(t, &bodies)
	defer srv.Close()

	c := NewClient(srv.URL, "flyt", "admin", "secret")
	err := c.Write("stock.picking", []int64{33}, map[string]interface{}{"ongoing_order_id": "555"})
	require.NoError(t, err)
	assert.Contains(t, bodies[len(bodies)-1], "ongoing_order_id")
}
