package reward

import "testing"

func TestDecide(t *testing.T) {
	cases := []struct {
		name    string
		credits int
		pay     float64
		basePay float64
		want    Decision
	}{
		{"small reward finalizes", 50, 5.0, 3.0, Finalize},
		{"pay over cap escalates", 50, 10.0, 3.0, Escalate},
		{"credits over cap escalate", 101, 0.0, 3.0, Escalate},
		{"credits boundary finalizes", 100, 0.0, 3.0, Finalize},
		{"pay boundary finalizes", 0, 15.0, 3.0, Finalize},
		{"just past pay boundary escalates", 0, 15.01, 3.0, Escalate},
		{"zero base pay, zero pay finalizes", 0, 0.0, 0.0, Finalize},
		{"zero base pay, any pay escalates", 0, 0.01, 0.0, Escalate},
		{"both over cap escalate", 500, 100.0, 3.0, Escalate},
		{"zero everything finalizes", 0, 0.0, 3.0, Finalize},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Decide(c.credits, c.pay, c.basePay); got != c.want {
				t.Errorf("Decide(%d, %v, %v) = %v, want %v", c.credits, c.pay, c.basePay, got, c.want)
			}
		})
	}
}

func TestDecisionString(t *testing.T) {
	if Finalize.String() != "finalize" {
		t.Errorf("Finalize.String() = %q", Finalize.String())
	}
	if Escalate.String() != "escalate" {
		t.Errorf("Escalate.String() = %q", Escalate.String())
	}
}
