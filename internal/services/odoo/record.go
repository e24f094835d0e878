package odoo

import (
	"reflect"
	"strconv"
	"time"
)

// odooDateTime is the layout Odoo uses for datetime fields (always UTC).
const odooDateTime = "2006-01-02 15:04:05"

// Record is one row returned by search_read. Odoo sends false for empty
// fields and [id, display_name] pairs for many2one fields.
type Record map[string]interface{}

// ID returns the record id.
func (r Record) ID() int64 {
	return r.Int64("id")
}

// Int64 returns an integer field, or the id of a many2one field.
func (r Record) Int64(key string) int64 {
	switch v := r[key].(type) {
	case []interface{}:
		if len(v) > 0 {
			n, _ := toInt64(v[0])
			return n
		}
		return 0
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		n, _ := toInt64(v)
		return n
	}
}

// Ref returns a many2one id, nil when unset.
func (r Record) Ref(key string) *int64 {
	n := r.Int64(key)
	if n == 0 {
		return nil
	}
	return &n
}

// FirstID returns the first id of a one2many/many2many field, nil when empty.
func (r Record) FirstID(key string) *int64 {
	v, ok := r[key].([]interface{})
	if !ok || len(v) == 0 {
		return nil
	}
	n, ok := toInt64(v[0])
	if !ok || n == 0 {
		return nil
	}
	return &n
}

func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	default:
		n, _ := toInt64(v)
		return float64(n)
	}
}

func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Time parses a datetime field; zero when unset or malformed.
func (r Record) Time(key string) time.Time {
	switch v := r[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		t, err := time.ParseInLocation(odooDateTime, v, time.UTC)
		if err != nil {
			t, err = time.ParseInLocation("2006-01-02", v, time.UTC)
			if err != nil {
				return time.Time{}
			}
		}
		return t
	}
	return time.Time{}
}

// TimePtr is Time with nil for unset values.
func (r Record) TimePtr(key string) *time.Time {
	t := r.Time(key)
	if t.IsZero() {
		return nil
	}
	return &t
}

// Helper function to convert interface{} to specific types safely
func toInt64(v interface{}) (int64, bool) {
	if v == nil {
		return 0, false
	}
	val := reflect.ValueOf(v)
	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return val.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(val.Uint()), true
	case reflect.Float32, reflect.Float64:
		return int64(val.Float()), true
	}
	return 0, false
}
