package access

import (
	"fmt"
	"io/fs"
	"strings"
)

// Kind is the ACE type.
type Kind string

const (
	Allow Kind = "A"
	Deny  Kind = "D"
)

// Principal is an SDDL trustee alias or a literal SID string.
type Principal string

const (
	BuiltinGuests      Principal = "BG"
	Anonymous          Principal = "AN"
	AuthenticatedUsers Principal = "AU"
	Administrators     Principal = "BA"
	Everyone           Principal = "WD"
)

// Rights is a bitmask of generic access rights.
type Rights uint8

const (
	Read Rights = 1 << iota
	Write
	Execute

	All = Read | Write | Execute
)

// Rule is one ordered access control entry.
type Rule struct {
	Kind      Kind
	Inherit   string // ACE flags, e.g. "OICI"
	Rights    Rights
	Principal Principal
}

// Policy is an ordered rule set; earlier rules take precedence.
type Policy struct {
	Protected bool
	Rules     []Rule
}

// Default returns the channel policy: guests and anonymous denied, authenticated
// users read/write/execute, administrators full control.
func Default() Policy {
	return Policy{Rules: []Rule{
		{Kind: Deny, Inherit: "OICI", Rights: All, Principal: BuiltinGuests},
		{Kind: Deny, Inherit: "OICI", Rights: All, Principal: Anonymous},
		{Kind: Allow, Inherit: "OICI", Rights: Read | Write | Execute, Principal: AuthenticatedUsers},
		{Kind: Allow, Inherit: "OICI", Rights: All, Principal: Administrators},
	}}
}

// SDDL renders the policy as a DACL-only SDDL string.
func (p Policy) SDDL() string {
	var b strings.Builder
	b.WriteString("D:")
	if p.Protected {
		b.WriteString("P")
	}
	for _, rule := range p.Rules {
		fmt.Fprintf(&b, "(%s;%s;%s;;;%s)", rule.Kind, rule.Inherit, formatRights(rule), rule.Principal)
	}
	return b.String()
}

// formatRights mirrors the conventional spelling: a full-control grant on an
// administrator or a blanket deny is written GA, narrower grants as GRGWGX.
func formatRights(rule Rule) string {
	if rule.Rights == All && (rule.Kind == Deny || rule.Principal != AuthenticatedUsers) {
		return "GA"
	}
	var b strings.Builder
	if rule.Rights&Read != 0 {
		b.WriteString("GR")
	}
	if rule.Rights&Write != 0 {
		b.WriteString("GW")
	}
	if rule.Rights&Execute != 0 {
		b.WriteString("GX")
	}
	return b.String()
}

// Descriptor is the resolved, immutable permission set attached to every
// channel create call.
type Descriptor struct {
	policy Policy
	sddl   string
	mode   fs.FileMode
	native nativeDescriptor
}

// SDDL returns the textual form handed to the Windows pipe API.
func (d *Descriptor) SDDL() string { return d.sddl }

// Mode returns the Unix socket permission bits derived from the policy.
func (d *Descriptor) Mode() fs.FileMode { return d.mode }

// Rules returns a copy of the ordered rules.
func (d *Descriptor) Rules() []Rule { return append([]Rule(nil), d.policy.Rules...) }

// Build resolves the default policy.
func Build() (*Descriptor, error) {
	return Default().Build()
}

// Build converts the policy into a native descriptor. The SDDL form is parsed
// back before conversion so a malformed rule set never reaches the channel.
func (p Policy) Build() (*Descriptor, error) {
	if len(p.Rules) == 0 {
		return nil, &PolicyError{Reason: "policy has no rules; refusing an unrestricted descriptor"}
	}
	sddl := p.SDDL()
	parsed, err := Parse(sddl)
	if err != nil {
		return nil, err
	}
	native, err := convertNative(sddl)
	if err != nil {
		return nil, &PolicyError{Input: sddl, Reason: "native conversion failed", Err: err}
	}
	return &Descriptor{
		policy: parsed,
		sddl:   sddl,
		mode:   parsed.SocketMode(),
		native: native,
	}, nil
}

// SocketMode maps the ACL onto owner/group/other permission bits. Administrators
// map to the owner, authenticated users to the group, Everyone to other. Guests
// and anonymous logons have no Unix principal, so their deny rules only keep
// the other class closed. Execute has no meaning on a socket and is dropped.
func (p Policy) SocketMode() fs.FileMode {
	type class struct{ granted, denied Rights }
	classes := map[Principal]*class{
		Administrators:     {},
		AuthenticatedUsers: {},
		Everyone:           {},
	}
	for _, rule := range p.Rules {
		target, ok := classes[rule.Principal]
		if !ok {
			if rule.Kind == Deny && (rule.Principal == BuiltinGuests || rule.Principal == Anonymous) {
				classes[Everyone].denied |= rule.Rights
			}
			continue
		}
		fresh := rule.Rights &^ (target.granted | target.denied)
		if rule.Kind == Deny {
			target.denied |= fresh
		} else {
			target.granted |= fresh
		}
	}
	bits := func(r Rights) fs.FileMode {
		var m fs.FileMode
		if r&Read != 0 {
			m |= 0o4
		}
		if r&Write != 0 {
			m |= 0o2
		}
		return m
	}
	return bits(classes[Administrators].granted)<<6 |
		bits(classes[AuthenticatedUsers].granted)<<3 |
		bits(classes[Everyone].granted)
}
