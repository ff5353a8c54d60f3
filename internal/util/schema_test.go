package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectSchema(t *testing.T) {
	schema := ObjectSchema(map[string]any{
		"city": StringProperty("City name"),
	}, []string{"city"})

	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"city"}, schema["required"])

	props := schema["properties"].(map[string]any)
	city := props["city"].(map[string]any)
	assert.Equal(t, "string", city["type"])
	assert.Equal(t, "City name", city["description"])
}

func TestObjectSchema_Empty(t *testing.T) {
	schema := ObjectSchema(nil, nil)
	assert.Equal(t, map[string]any{}, schema["properties"])
	assert.Equal(t, []string{}, schema["required"])
}

func TestValidateParameters(t *testing.T) {
	schema := ObjectSchema(map[string]any{
		"city":  StringProperty("City name"),
		"count": map[string]any{"type": "integer"},
	}, []string{"city"})

	tests := []struct {
		name    string
		params  map[string]any
		wantErr string
	}{
		{
			name:   "valid",
			params: map[string]any{"city": "Berlin", "count": 3},
		},
		{
			name:    "missing required",
			params:  map[string]any{"count": 3},
			wantErr: "required field is missing",
		},
		{
			name:    "wrong type",
			params:  map[string]any{"city": 42},
			wantErr: "expected type string",
		},
		{
			name:   "json number for integer",
			params: map[string]any{"city": "Berlin", "count": float64(3)},
		},
		{
			name:    "fractional number for integer",
			params:  map[string]any{"city": "Berlin", "count": 3.5},
			wantErr: "expected type integer",
		},
		{
			name:   "extra fields allowed",
			params: map[string]any{"city": "Berlin", "unexpected": true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(tt.params, schema)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateParameters_RequiredFromJSON(t *testing.T) {
	// A schema decoded from JSON carries required as []any.
	schema := map[string]any{
		"type":     "object",
		"required": []any{"city"},
	}
	err := ValidateParameters(map[string]any{}, schema)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "city", verr.Field)
}
