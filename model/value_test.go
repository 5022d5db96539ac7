package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerValueUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  ValueKind
		str   string
		num   float64
		items []string
	}{
		{name: "null", input: `null`, kind: NullValue},
		{name: "string", input: `"hello"`, kind: StringValue, str: "hello"},
		{name: "number", input: `42.5`, kind: NumberValue, num: 42.5},
		{name: "bool", input: `true`, kind: StringValue, str: "true"},
		{name: "list", input: `["A","C"]`, kind: ListValue, items: []string{"A", "C"}},
		{name: "mixed list", input: `["A",2,false]`, kind: ListValue, items: []string{"A", "2", "false"}},
		{name: "object", input: `{"a":1}`, kind: NullValue},
		{name: "nested list", input: `[["A"]]`, kind: NullValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v AnswerValue
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.str, v.Str())
			assert.Equal(t, tt.num, v.Num())
			if tt.items != nil {
				assert.Equal(t, tt.items, v.Items())
			}
		})
	}
}

func TestAnswerMissingValueIsNull(t *testing.T) {
	var a Answer
	require.NoError(t, json.Unmarshal([]byte(`{"fieldId":"f1"}`), &a))
	assert.Equal(t, "f1", a.FieldID)
	assert.True(t, a.Value.IsNull())
}

func TestAnswerValueMarshal(t *testing.T) {
	out, err := json.Marshal([]AnswerValue{{}, String("x"), Number(3), List("a", "b"), List()})
	require.NoError(t, err)
	assert.JSONEq(t, `[null,"x",3,["a","b"],[]]`, string(out))
}

func TestFieldOptionUnmarshal(t *testing.T) {
	var opts []FieldOption
	require.NoError(t, json.Unmarshal([]byte(`["Red",{"label":"Blue","value":"blue"},{"label":"Green"}]`), &opts))
	require.Len(t, opts, 3)
	assert.Equal(t, "Red", opts[0].Key())
	assert.Equal(t, "blue", opts[1].Key())
	assert.Equal(t, "Blue", opts[1].Label)
	assert.Equal(t, "Green", opts[2].Key())
}
