package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Type  string `json:"entity_type" validate:"required,oneof=advertiser affiliate network"`
}

func TestValidate_JSONFieldNames(t *testing.T) {
	details := Validate(sample{Email: "nope", Type: "broker"})

	fields := map[string]string{}
	for _, d := range details {
		fields[d.Field] = d.Message
	}
	assert.Equal(t, "must be a valid email", fields["email"])
	assert.Contains(t, fields["entity_type"], "must be one of")
}

func TestValidate_OK(t *testing.T) {
	assert.Nil(t, Validate(sample{Email: "a@b.io", Type: "network"}))
}
