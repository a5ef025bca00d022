package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringMap_Scan(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  StringMap
	}{
		{name: "nil", input: nil, want: nil},
		{name: "bytes", input: []byte(`{"fill":"#fff"}`), want: StringMap{"fill": "#fff"}},
		{name: "string", input: `{"stroke":"red","dash":"4"}`, want: StringMap{"stroke": "red", "dash": "4"}},
		{name: "json null", input: "null", want: nil},
		{name: "empty", input: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m StringMap
			require.NoError(t, m.Scan(tt.input))
			assert.Equal(t, tt.want, m)
		})
	}
}

func TestStringMap_ScanUnsupported(t *testing.T) {
	var m StringMap
	assert.Error(t, m.Scan(42))
}

func TestStringMap_Value(t *testing.T) {
	v, err := StringMap(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = StringMap{"fill": "#000"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"fill":"#000"}`, v)
}
