package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestResult(t *testing.T) {
	invalid := errors.New("bad input")
	isInvalid := func(err error) bool { return errors.Is(err, invalid) }

	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{invalid, "invalid"},
		{errors.New("disk"), "error"},
	}
	for _, tc := range cases {
		if got := Result(tc.err, isInvalid); got != tc.want {
			t.Fatalf("Result(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{200: "2xx", 204: "2xx", 302: "3xx", 404: "4xx", 422: "4xx", 500: "5xx"}
	for code, want := range cases {
		if got := StatusClass(code); got != want {
			t.Fatalf("StatusClass(%d) = %s, want %s", code, got, want)
		}
	}
}

func TestLedgerOperationsCounter(t *testing.T) {
	c := LedgerOperations.WithLabelValues("metrics_test", "ok")
	before := testutil.ToFloat64(c)
	c.Inc()
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Fatalf("counter = %v, want %v", got, before+1)
	}
}
