package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusJSON(t *testing.T) {
	b, err := json.Marshal(map[string]any{"status": NoStatus()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":null}`, string(b))

	b, err = json.Marshal(map[string]any{"status": StatusOf("")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":""}`, string(b))

	var s Status
	require.NoError(t, json.Unmarshal([]byte(`"parked"`), &s))
	assert.Equal(t, StatusOf("parked"), s)
	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.False(t, s.Present())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "<absent>", NoStatus().String())
	assert.Equal(t, "", StatusOf("").String())
	v, ok := StatusOf("free").Value()
	assert.Equal(t, "free", v)
	assert.True(t, ok)
}
