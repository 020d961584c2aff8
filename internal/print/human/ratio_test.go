package human_test

import (
	"fmt"
	"testing"

	"github.com/stealthrocket/dawnwire/internal/assert"
	"github.com/stealthrocket/dawnwire/internal/print/human"
)

func TestParseRatio(t *testing.T) {
	for _, test := range []struct {
		in  string
		out human.Ratio
	}{
		{in: "0", out: 0},
		{in: "0.25", out: 0.25},
		{in: "25%", out: 0.25},
		{in: "50 %", out: 0.5},
		{in: "150%", out: 1.5},
	} {
		t.Run(test.in, func(t *testing.T) {
			r, err := human.ParseRatio(test.in)
			assert.OK(t, err)
			assert.Equal(t, r, test.out)
		})
	}

	_, err := human.ParseRatio("half")
	assert.True(t, err != nil, "expected an error")
}

func TestFormatRatio(t *testing.T) {
	for _, test := range []struct {
		in  human.Ratio
		fmt string
		out string
	}{
		{in: 0, fmt: "%v", out: "0%"},
		{in: 0.415, fmt: "%v", out: "41.5%"},
		{in: 1.0 / 3, fmt: "%v", out: "33.33%"},
		{in: 1.0 / 3, fmt: "%.0v", out: "33%"},
		{in: 0.5, fmt: "%f", out: "0.5"},
	} {
		t.Run(test.out, func(t *testing.T) {
			assert.Equal(t, fmt.Sprintf(test.fmt, test.in), test.out)
		})
	}
}
