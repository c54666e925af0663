package access

import (
	"fmt"
	"strconv"
	"strings"
)

// PolicyError reports a rule set that cannot be parsed or converted into a
// native descriptor.
type PolicyError struct {
	Input  string
	Pos    int
	Reason string
	Err    error
}

func (e *PolicyError) Error() string {
	msg := "access policy: " + e.Reason
	if e.Input != "" {
		msg += fmt.Sprintf(" at offset %d of %q", e.Pos, e.Input)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PolicyError) Unwrap() error { return e.Err }

var knownPrincipals = map[Principal]struct{}{
	BuiltinGuests:      {},
	Anonymous:          {},
	AuthenticatedUsers: {},
	Administrators:     {},
	Everyone:           {},
	"SY":               {},
	"CO":               {},
	"BU":               {},
	"IU":               {},
	"NS":               {},
	"LS":               {},
}

var rightCodes = map[string]Rights{
	"GA": All,
	"FA": All,
	"GR": Read,
	"FR": Read,
	"GW": Write,
	"FW": Write,
	"GX": Execute,
	"FX": Execute,
}

// Parse reads a DACL-only SDDL string ("D:" followed by ACEs) into a Policy.
// Only allow/deny ACEs with generic or file rights are accepted.
func Parse(sddl string) (Policy, error) {
	fail := func(pos int, format string, args ...any) (Policy, error) {
		return Policy{}, &PolicyError{Input: sddl, Pos: pos, Reason: fmt.Sprintf(format, args...)}
	}

	s := strings.TrimSpace(sddl)
	if !strings.HasPrefix(s, "D:") {
		return fail(0, "expected DACL prefix \"D:\"")
	}
	pos := 2
	var policy Policy
	for pos < len(s) && s[pos] != '(' {
		switch {
		case strings.HasPrefix(s[pos:], "P"):
			policy.Protected = true
			pos++
		case strings.HasPrefix(s[pos:], "AI"), strings.HasPrefix(s[pos:], "AR"):
			pos += 2
		default:
			return fail(pos, "unknown DACL flag %q", s[pos:pos+1])
		}
	}

	for pos < len(s) {
		if s[pos] != '(' {
			return fail(pos, "expected '(' to open an ACE")
		}
		end := strings.IndexByte(s[pos:], ')')
		if end < 0 {
			return fail(pos, "unterminated ACE")
		}
		rule, err := parseACE(s[pos+1 : pos+end])
		if err != nil {
			return fail(pos, "%v", err)
		}
		policy.Rules = append(policy.Rules, rule)
		pos += end + 1
	}
	if len(policy.Rules) == 0 {
		return fail(pos, "DACL has no entries")
	}
	return policy, nil
}

func parseACE(body string) (Rule, error) {
	fields := strings.Split(body, ";")
	if len(fields) != 6 {
		return Rule{}, fmt.Errorf("ACE %q has %d fields, want 6", body, len(fields))
	}
	var rule Rule
	switch Kind(fields[0]) {
	case Allow, Deny:
		rule.Kind = Kind(fields[0])
	default:
		return Rule{}, fmt.Errorf("unsupported ACE type %q", fields[0])
	}

	flags := fields[1]
	if len(flags)%2 != 0 {
		return Rule{}, fmt.Errorf("malformed ACE flags %q", flags)
	}
	for i := 0; i < len(flags); i += 2 {
		switch flags[i : i+2] {
		case "OI", "CI", "NP", "IO", "ID":
		default:
			return Rule{}, fmt.Errorf("unknown ACE flag %q", flags[i:i+2])
		}
	}
	rule.Inherit = flags

	rights, err := parseRights(fields[2])
	if err != nil {
		return Rule{}, err
	}
	rule.Rights = rights

	if fields[3] != "" || fields[4] != "" {
		return Rule{}, fmt.Errorf("object ACEs are not supported")
	}

	principal := Principal(fields[5])
	if _, ok := knownPrincipals[principal]; !ok && !strings.HasPrefix(string(principal), "S-1-") {
		return Rule{}, fmt.Errorf("unknown trustee %q", fields[5])
	}
	rule.Principal = principal
	return rule, nil
}

func parseRights(value string) (Rights, error) {
	if value == "" {
		return 0, fmt.Errorf("empty access mask")
	}
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		mask, err := strconv.ParseUint(value[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid access mask %q: %w", value, err)
		}
		var rights Rights
		const (
			genericAll     = 0x10000000
			genericExecute = 0x20000000
			genericWrite   = 0x40000000
			genericRead    = 0x80000000
		)
		if mask&genericAll != 0 {
			rights |= All
		}
		if mask&genericRead != 0 {
			rights |= Read
		}
		if mask&genericWrite != 0 {
			rights |= Write
		}
		if mask&genericExecute != 0 {
			rights |= Execute
		}
		if rights == 0 {
			return 0, fmt.Errorf("access mask %q grants no generic rights", value)
		}
		return rights, nil
	}
	if len(value)%2 != 0 {
		return 0, fmt.Errorf("malformed rights %q", value)
	}
	var rights Rights
	for i := 0; i < len(value); i += 2 {
		code, ok := rightCodes[value[i:i+2]]
		if !ok {
			return 0, fmt.Errorf("unknown right %q", value[i:i+2])
		}
		rights |= code
	}
	return rights, nil
}
