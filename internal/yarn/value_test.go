package yarn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Value_AsNumber(t *testing.T) {
	testCases := []struct {
		name   string
		v      Value
		expect float32
	}{
		{name: "number", v: NewNumber(3.5), expect: 3.5},
		{name: "numeric string", v: NewString("42"), expect: 42},
		{name: "non-numeric string", v: NewString("hello"), expect: 0},
		{name: "true", v: NewBool(true), expect: 1},
		{name: "false", v: NewBool(false), expect: 0},
		{name: "null", v: NewNull(), expect: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.v.AsNumber())
		})
	}
}

func Test_Value_AsBool(t *testing.T) {
	testCases := []struct {
		name   string
		v      Value
		expect bool
	}{
		{name: "nonzero number", v: NewNumber(1), expect: true},
		{name: "zero number", v: NewNumber(0), expect: false},
		{name: "nonempty string", v: NewString("x"), expect: true},
		{name: "empty string", v: NewString(""), expect: false},
		{name: "true", v: NewBool(true), expect: true},
		{name: "null", v: NewNull(), expect: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.v.AsBool())
		})
	}
}

func Test_Add(t *testing.T) {
	testCases := []struct {
		name      string
		a, b      Value
		expect    Value
		expectErr bool
	}{
		{name: "numbers", a: NewNumber(1), b: NewNumber(2), expect: NewNumber(3)},
		{name: "string concat", a: NewString("foo"), b: NewString("bar"), expect: NewString("foobar")},
		{name: "string + number coerces to concat", a: NewString("n="), b: NewNumber(4), expect: NewString("n=4")},
		{name: "bool + number", a: NewBool(true), b: NewNumber(1), expect: NewNumber(2)},
		{name: "null + number", a: NewNull(), b: NewNumber(5), expect: NewNumber(5)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Add(tc.a, tc.b)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expect.Type(), got.Type())
			assert.Equal(t, tc.expect.AsString(), got.AsString())
		})
	}
}

func Test_Sub_requiresNumeric(t *testing.T) {
	_, err := Sub(NewString("a"), NewNumber(1))
	assert.Error(t, err)
}

func Test_Equal_legacyNullQuirk(t *testing.T) {
	testCases := []struct {
		name   string
		a, b   Value
		expect bool
	}{
		{name: "null == 0", a: NewNull(), b: NewNumber(0), expect: true},
		{name: "null == false", a: NewNull(), b: NewBool(false), expect: true},
		{name: "null == empty string", a: NewNull(), b: NewString(""), expect: true},
		{name: "null == non-numeric string (AsNumber is 0)", a: NewNull(), b: NewString("x"), expect: true},
		{name: "null != 1", a: NewNull(), b: NewNumber(1), expect: false},
		{name: "null == null", a: NewNull(), b: NewNull(), expect: true},
		{name: "same numbers", a: NewNumber(2), b: NewNumber(2), expect: true},
		{name: "different numbers", a: NewNumber(2), b: NewNumber(3), expect: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, Equal(tc.a, tc.b))
			assert.Equal(t, tc.expect, Equal(tc.b, tc.a))
		})
	}
}

func Test_Compare(t *testing.T) {
	assert.Equal(t, -1, Compare(NewNumber(1), NewNumber(2)))
	assert.Equal(t, 0, Compare(NewNumber(2), NewNumber(2)))
	assert.Equal(t, 1, Compare(NewNumber(3), NewNumber(2)))
	assert.Equal(t, -1, Compare(NewString("a"), NewString("b")))
}
