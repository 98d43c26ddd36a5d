package environment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/multitier/pkg/environment"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want environment.Environment
	}{
		{"production", environment.Production},
		{"PROD", environment.Production},
		{"stage", environment.Staging},
		{"staging", environment.Staging},
		{"dev", environment.Development},
		{"", environment.Development},
		{"whatever", environment.Development},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, environment.Parse(tt.in), tt.in)
	}

	assert.True(t, environment.Production.IsProduction())
	assert.True(t, environment.Development.IsDevelopment())
}
