package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Parse builds rules from a comma separated list such as
// "required,minlen=3,email". Arguments follow '='; oneof takes values
// separated by '|'. A pattern argument may not contain a comma; use Pattern
// directly for those.
func Parse(tags string) ([]Rule, error) {
	var rules []Rule
	for _, item := range strings.Split(tags, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, arg, _ := strings.Cut(item, "=")
		r, err := fromTag(strings.ToLower(name), arg)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// MustParse is like Parse but panics on error.
func MustParse(tags string) []Rule {
	rules, err := Parse(tags)
	if err != nil {
		panic(err)
	}
	return rules
}

func fromTag(name, arg string) (Rule, error) {
	switch name {
	case "required":
		return Required(""), nil
	case "minlen", "minlength":
		n, err := intArg(name, arg)
		if err != nil {
			return nil, err
		}
		return MinLength(n, ""), nil
	case "maxlen", "maxlength":
		n, err := intArg(name, arg)
		if err != nil {
			return nil, err
		}
		return MaxLength(n, ""), nil
	case "min", "max":
		n, err := floatArg(name, arg)
		if err != nil {
			return nil, err
		}
		if name == "min" {
			return Min(n, ""), nil
		}
		return Max(n, ""), nil
	case "email":
		return Email(""), nil
	case "url":
		return URL(""), nil
	case "uuid":
		return UUID(""), nil
	case "alpha":
		return Alpha(""), nil
	case "alphanum", "alphanumeric":
		return AlphaNumeric(""), nil
	case "numeric":
		return Numeric(""), nil
	case "phone":
		return Phone(""), nil
	case "positive":
		return Positive(""), nil
	case "nonnegative":
		return NonNegative(""), nil
	case "pattern", "regex":
		re, err := regexp.Compile(arg)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", name, err)
		}
		return Pattern(re, ""), nil
	case "oneof":
		if arg == "" {
			return nil, fmt.Errorf("rule %s: missing values", name)
		}
		return OneOf(strings.Split(arg, "|"), ""), nil
	case "eqfield", "equals":
		if arg == "" {
			return nil, fmt.Errorf("rule %s: missing field", name)
		}
		return EqualTo(arg, ""), nil
	case "nefield":
		if arg == "" {
			return nil, fmt.Errorf("rule %s: missing field", name)
		}
		return NotEqualTo(arg, ""), nil
	default:
		return nil, fmt.Errorf("unknown rule %q", name)
	}
}

func intArg(name, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("rule %s: %q is not an integer", name, arg)
	}
	return n, nil
}

func floatArg(name, arg string) (float64, error) {
	n, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("rule %s: %q is not a number", name, arg)
	}
	return n, nil
}
