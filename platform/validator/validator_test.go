package validator

import "testing"

type orgRequest struct {
	OrganizationNumber string `validate:"required,orgnr"`
}

func TestOrganizationNumberRule(t *testing.T) {
	val := New()

	cases := map[string]bool{
		"987654321":   true,
		"98765432":    false,
		"9876543210":  false,
		"987 654 321": false,
		"98765432a":   false,
		"":            false,
	}

	for input, valid := range cases {
		err := val.Struct(orgRequest{OrganizationNumber: input})
		if valid && err != nil {
			t.Fatalf("expected %q to be valid, got %v", input, err)
		}
		if !valid && err == nil {
			t.Fatalf("expected %q to be rejected", input)
		}
	}
}

func TestVar(t *testing.T) {
	if err := New().Var("123456789", "orgnr"); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}
