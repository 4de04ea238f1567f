// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/staranto/dnos-kdev/internal/output"
	"github.com/staranto/dnos-kdev/internal/plan"
	"github.com/staranto/dnos-kdev/internal/publish"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

// LeadingDashValidator is the stricter JammedFlagValidator for values that are
// handed on as arguments, where even a single '-' reads as a flag.
func LeadingDashValidator(value any) error {
	if strings.HasPrefix(value.(string), "-") {
		return errors.New("must not begin with '-'")
	}
	return nil
}

func DistroValidator(value any) error {
	if _, ok := plan.Distros[value.(string)]; !ok {
		return fmt.Errorf("must be one of %v", plan.DistroNames())
	}
	return nil
}

func FormatValidator(value any) error {
	if !slices.Contains(output.Formats, value.(string)) {
		return fmt.Errorf("must be one of %v", output.Formats)
	}
	return nil
}

func PositiveValidator(value any) error {
	if value.(int) < 1 {
		return errors.New("must be at least 1")
	}
	return nil
}

// KeyValueValidator checks every entry of a repeatable KEY=VALUE flag.
func KeyValueValidator(value any) error {
	for _, kv := range value.([]string) {
		if err := plan.ValidateKeyValue(kv); err != nil {
			return err
		}
	}
	return nil
}

func UploadValidator(value any) error {
	if value.(string) == "" {
		return nil
	}
	_, err := publish.ParseTarget(value.(string))
	return err
}
