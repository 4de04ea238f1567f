// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator FlagValidatorType
		value     any
		wantErr   bool
	}{
		{"jammed ok", JammedFlagValidator, "focal", false},
		{"jammed", JammedFlagValidator, "--pull", true},
		{"dash ok", LeadingDashValidator, "fix-a", false},
		{"dash", LeadingDashValidator, "-v", true},
		{"distro focal", DistroValidator, "focal", false},
		{"distro bionic", DistroValidator, "bionic", false},
		{"distro jammy", DistroValidator, "jammy", true},
		{"format text", FormatValidator, "text", false},
		{"format yaml", FormatValidator, "yaml", false},
		{"format xml", FormatValidator, "xml", true},
		{"positive", PositiveValidator, 4, false},
		{"zero", PositiveValidator, 0, true},
		{"kv ok", KeyValueValidator, []string{"A=1", "B="}, false},
		{"kv bad", KeyValueValidator, []string{"A=1", "B"}, true},
		{"upload empty", UploadValidator, "", false},
		{"upload ok", UploadValidator, "s3://bucket/prefix", false},
		{"upload bad", UploadValidator, "bucket/prefix", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validator(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFlagValidators_StopsAtFirstError(t *testing.T) {
	err := FlagValidators("--jammy", JammedFlagValidator, DistroValidator)
	assert.EqualError(t, err, "must not begin with '--'")

	err = FlagValidators("jammy", JammedFlagValidator, DistroValidator)
	assert.ErrorContains(t, err, "must be one of [bionic focal]")
}
