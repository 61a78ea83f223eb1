package hcl_adapter

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// toFloat converts a statically evaluated attribute into a float64. Strings
// holding numbers are accepted, as HCL itself would for a number argument.
func toFloat(v cty.Value) (float64, error) {
	if !v.IsWhollyKnown() || v.IsNull() {
		return 0, fmt.Errorf("value is null or unknown")
	}
	num, err := convert.Convert(v, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("cannot use %s as a number: %w", v.Type().FriendlyName(), err)
	}
	var f float64
	if err := gocty.FromCtyValue(num, &f); err != nil {
		return 0, err
	}
	return f, nil
}

// toString converts a primitive attribute into its string form. Numbers and
// bools are rendered the way cty prints them.
func toString(v cty.Value) (string, error) {
	if !v.IsWhollyKnown() || v.IsNull() {
		return "", fmt.Errorf("value is null or unknown")
	}
	str, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", fmt.Errorf("cannot use %s as a string: %w", v.Type().FriendlyName(), err)
	}
	var s string
	if err := gocty.FromCtyValue(str, &s); err != nil {
		return "", err
	}
	return s, nil
}
