package rawdoc

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(raw string) Value {
	return NewValue(json.RawMessage(raw))
}

func TestValueTruthy(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{`null`, false},
		{`""`, false},
		{`"x"`, true},
		{`0`, false},
		{`0.0`, false},
		{`-3`, true},
		{`true`, true},
		{`false`, false},
		{`[]`, false},
		{`[0]`, true},
		{`{}`, false},
		{`{"$date":null}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, field(tt.raw).Truthy())
		})
	}

	assert.False(t, Absent.Truthy())
}

func TestValueNullness(t *testing.T) {
	assert.True(t, Absent.IsNull())
	assert.False(t, Absent.Present)

	null := field(`null`)
	assert.True(t, null.IsNull())
	assert.True(t, null.Present, "explicit null is still present")
	assert.Nil(t, null.TextPtr())
}

func TestValueDate(t *testing.T) {
	want := time.Date(2021, 1, 3, 15, 25, 31, 0, time.UTC)

	t.Run("epoch millis", func(t *testing.T) {
		got, ok := field(`{"$date":1609687531000}`).Date()
		require.True(t, ok)
		assert.True(t, want.Equal(got))
		assert.Equal(t, time.UTC, got.Location())
	})

	t.Run("iso string", func(t *testing.T) {
		got, ok := field(`{"$date":"2021-01-03T16:25:31+01:00"}`).Date()
		require.True(t, ok)
		assert.True(t, want.Equal(got))
		assert.Equal(t, time.UTC, got.Location())
	})

	t.Run("calendar bounds", func(t *testing.T) {
		got, ok := field(`{"$date":253402300799999}`).Date()
		require.True(t, ok)
		assert.Equal(t, 9999, got.Year())

		got, ok = field(`{"$date":-62167219200000}`).Date()
		require.True(t, ok)
		assert.Equal(t, 0, got.Year())
	})

	t.Run("number long", func(t *testing.T) {
		got, ok := field(`{"$date":{"$numberLong":"1609687531000"}}`).Date()
		require.True(t, ok)
		assert.True(t, want.Equal(got))
	})

	for _, raw := range []string{
		`null`, `""`, `{}`, `{"$date":null}`, `{"$date":"yesterday"}`, `{"$date":true}`, `1609687531000`, `"2021-01-03"`,
		`{"$date":253402300800000}`, `{"$date":1e30}`, `{"$date":-1e30}`,
		`{"$date":{"$numberLong":"-62167219200001"}}`, `{"$date":"9999-12-31T23:30:00-01:00"}`,
	} {
		t.Run("rejects "+raw, func(t *testing.T) {
			_, ok := field(raw).Date()
			assert.False(t, ok)
		})
	}
}

func TestValueNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{`500`, 500, true},
		{`"26.00"`, 26, true},
		{`" 1.5 "`, 1.5, true},
		{`"abc"`, 0, false},
		{`""`, 0, false},
		{`true`, 0, false},
		{`[1]`, 0, false},
		{`null`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := field(tt.raw).Number()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueText(t *testing.T) {
	s, ok := field(`"Pepsi"`).Text()
	require.True(t, ok)
	assert.Equal(t, "Pepsi", s)

	s, ok = field(`42`).Text()
	require.True(t, ok)
	assert.Equal(t, "42", s)

	s, ok = field(`{ "a" : 1 }`).Text()
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, s)

	_, ok = Absent.Text()
	assert.False(t, ok)
}

func TestValueBool(t *testing.T) {
	for raw, want := range map[string]bool{
		`true`:    true,
		`false`:   false,
		`"true"`:  true,
		`"FALSE"`: false,
		`"1"`:     true,
	} {
		got, ok := field(raw).Bool()
		require.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{`null`, `"yes"`, `1`, `{}`} {
		_, ok := field(raw).Bool()
		assert.False(t, ok, raw)
	}
}

func TestValueDigitsAndObjectID(t *testing.T) {
	assert.True(t, field(`"511111019862"`).IsDigits())
	assert.False(t, field(`""`).IsDigits())
	assert.False(t, field(`"12a"`).IsDigits())
	assert.False(t, field(`12`).IsDigits(), "json numbers are not digit strings")

	oid, ok := field(`{"$oid":"5ff1e194b6a9d73a3a9f1052"}`).ObjectID()
	require.True(t, ok)
	assert.Equal(t, "5ff1e194b6a9d73a3a9f1052", oid)

	for _, raw := range []string{`"5ff1e194"`, `{"$oid":""}`, `{"$oid":12}`, `{}`} {
		_, ok := field(raw).ObjectID()
		assert.False(t, ok, raw)
	}
}
