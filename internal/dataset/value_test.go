package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueAsFloat(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  float64
		ok    bool
	}{
		{name: "number", value: Number(3.5), want: 3.5, ok: true},
		{name: "integer string", value: String("42"), want: 42, ok: true},
		{name: "padded string", value: String("  7.25 "), want: 7.25, ok: true},
		{name: "negative string", value: String("-1e3"), want: -1000, ok: true},
		{name: "non numeric string", value: String("hello"), ok: false},
		{name: "missing", value: Missing(), ok: false},
		{name: "bool", value: Bool(true), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.AsFloat()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseBoolToken(t *testing.T) {
	tests := []struct {
		token string
		want  bool
		ok    bool
	}{
		{token: "true", want: true, ok: true},
		{token: "FALSE", want: false, ok: true},
		{token: "Yes", want: true, ok: true},
		{token: "n", want: false, ok: true},
		{token: " 1 ", want: true, ok: true},
		{token: "0", want: false, ok: true},
		{token: "2", ok: false},
		{token: "maybe", ok: false},
		{token: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := ParseBoolToken(tt.token)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseDatetime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{
			name:  "ISO date",
			input: "2024-03-15",
			want:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "ISO datetime",
			input: "2024-03-15 10:30:00",
			want:  time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "US slash date",
			input: "03/15/2024",
			want:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "long form",
			input: "Mar 15, 2024",
			want:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{name: "not a date", input: "15 o'clock", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDatetime(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got))
			}
		})
	}
}

func TestIsMissingToken(t *testing.T) {
	for _, token := range []string{"", "NA", "n/a", "NULL", "NaN", "none", "  na  "} {
		assert.True(t, IsMissingToken(token), "token %q should be missing", token)
	}
	for _, token := range []string{"0", "false", "nil", "missing"} {
		assert.False(t, IsMissingToken(token), "token %q should not be missing", token)
	}
}

func TestValueCoerce(t *testing.T) {
	t.Run("string to numeric", func(t *testing.T) {
		v, ok := String("12.5").Coerce(TypeNumeric)
		require.True(t, ok)
		assert.Equal(t, KindNumber, v.Kind())
		f, _ := v.AsFloat()
		assert.Equal(t, 12.5, f)
	})

	t.Run("string to boolean", func(t *testing.T) {
		v, ok := String("yes").Coerce(TypeBoolean)
		require.True(t, ok)
		assert.Equal(t, KindBool, v.Kind())
	})

	t.Run("string to datetime", func(t *testing.T) {
		v, ok := String("2024-01-02").Coerce(TypeDatetime)
		require.True(t, ok)
		assert.Equal(t, KindTime, v.Kind())
	})

	t.Run("incompatible value keeps kind", func(t *testing.T) {
		v, ok := String("hello").Coerce(TypeNumeric)
		assert.False(t, ok)
		assert.Equal(t, KindString, v.Kind())
	})

	t.Run("missing passes through", func(t *testing.T) {
		v, ok := Missing().Coerce(TypeNumeric)
		assert.True(t, ok)
		assert.True(t, v.IsMissing())
	})

	t.Run("anything to text", func(t *testing.T) {
		v, ok := Number(3).Coerce(TypeText)
		require.True(t, ok)
		assert.Equal(t, "3", v.AsString())
	})
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Missing().Equal(Missing()))
	assert.True(t, Number(1).Equal(Number(1)))
	assert.False(t, Number(1).Equal(Number(2)))
	assert.False(t, Number(1).Equal(String("1")), "kinds must match")
	assert.False(t, Missing().Equal(String("")))
}
