package json

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"restrpc/internal/errs"
)

type user struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

type shape interface {
	Area() float64
}

type square struct {
	Side float64 `json:"side"`
}

func (s square) Area() float64 {
	return s.Side * s.Side
}

func TestSerializer_Encode(t *testing.T) {
	var nilMap map[string]any
	var nilUser *user
	testCases := []struct {
		name     string
		val      reflect.Value
		declared reflect.Type
		want     string
		wantErr  bool
	}{
		{
			name:     "int",
			val:      reflect.ValueOf(12),
			declared: reflect.TypeOf(0),
			want:     `12`,
		},
		{
			name:     "nil map is null",
			val:      reflect.ValueOf(nilMap),
			declared: reflect.TypeOf(nilMap),
			want:     `null`,
		},
		{
			name:     "empty map is not null",
			val:      reflect.ValueOf(map[string]any{}),
			declared: reflect.TypeOf(nilMap),
			want:     `{}`,
		},
		{
			name:     "nil pointer",
			val:      reflect.ValueOf(nilUser),
			declared: reflect.TypeOf(nilUser),
			want:     `null`,
		},
		{
			name:     "struct with nil slice keeps the field",
			val:      reflect.ValueOf(&user{Name: "<tom>"}),
			declared: reflect.TypeOf(&user{}),
			want:     `{"name":"<tom>","tags":null}`,
		},
		{
			name:     "interface declared",
			val:      reflect.ValueOf(square{Side: 2}),
			declared: reflect.TypeOf((*shape)(nil)).Elem(),
			want:     `{"side":2}`,
		},
		{
			name:     "invalid value",
			val:      reflect.Value{},
			declared: reflect.TypeOf(0),
			want:     `null`,
		},
		{
			name:     "proto message",
			val:      reflect.ValueOf(wrapperspb.String("kek")),
			declared: reflect.TypeOf(&wrapperspb.StringValue{}),
			want:     `"kek"`,
		},
		{
			name:     "not assignable",
			val:      reflect.ValueOf("12"),
			declared: reflect.TypeOf(0),
			wantErr:  true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bs, err := Serializer{}.Encode(tc.val, tc.declared)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(bs))
		})
	}
}

func TestSerializer_Decode(t *testing.T) {
	testCases := []struct {
		name     string
		data     string
		declared reflect.Type
		want     any
		wantErr  error
		anyErr   bool
	}{
		{
			name:     "int",
			data:     `5`,
			declared: reflect.TypeOf(0),
			want:     5,
		},
		{
			name:     "int slice",
			data:     `[2,3,4]`,
			declared: reflect.TypeOf([]int{}),
			want:     []int{2, 3, 4},
		},
		{
			name:     "nested map",
			data:     `{"a":123,"b":{"lol":"kek"},"c":["12345"],"d":null}`,
			declared: reflect.TypeOf(map[string]any{}),
			want: map[string]any{
				"a": float64(123),
				"b": map[string]any{"lol": "kek"},
				"c": []any{"12345"},
				"d": nil,
			},
		},
		{
			name:     "null map",
			data:     `null`,
			declared: reflect.TypeOf(map[string]any{}),
			want:     map[string]any(nil),
		},
		{
			name:     "null int",
			data:     `null`,
			declared: reflect.TypeOf(0),
			wantErr:  errs.NullValueError,
		},
		{
			name:     "struct pointer",
			data:     `{"name":"tom","tags":["a"]}`,
			declared: reflect.TypeOf(&user{}),
			want:     &user{Name: "tom", Tags: []string{"a"}},
		},
		{
			name:     "string for int",
			data:     `"5"`,
			declared: reflect.TypeOf(0),
			anyErr:   true,
		},
		{
			name:     "object for slice",
			data:     `{"a":1}`,
			declared: reflect.TypeOf([]int{}),
			anyErr:   true,
		},
		{
			name:     "empty",
			data:     ``,
			declared: reflect.TypeOf(0),
			anyErr:   true,
		},
		{
			name:     "trailing value",
			data:     `1 2`,
			declared: reflect.TypeOf(0),
			anyErr:   true,
		},
		{
			name:     "trailing bracket",
			data:     `[1,2]]`,
			declared: reflect.TypeOf([]int{}),
			anyErr:   true,
		},
		{
			name:     "trailing brace",
			data:     `{"a":1}}`,
			declared: reflect.TypeOf(map[string]any{}),
			anyErr:   true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			val, err := Serializer{}.Decode([]byte(tc.data), tc.declared)
			if tc.wantErr != nil {
				assert.Equal(t, tc.wantErr, err)
				return
			}
			if tc.anyErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.declared, val.Type())
			assert.Equal(t, tc.want, val.Interface())
		})
	}
}

func TestSerializer_DecodeProto(t *testing.T) {
	val, err := Serializer{}.Decode([]byte(`"kek"`), reflect.TypeOf(&wrapperspb.StringValue{}))
	require.NoError(t, err)
	assert.True(t, proto.Equal(wrapperspb.String("kek"), val.Interface().(proto.Message)))
}
