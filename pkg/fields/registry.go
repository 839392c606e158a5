// Package fields holds the field definition registry: the selectable
// option sets behind every dropdown and radio group of the walkout
// forms, and the named bindings the engine resolves from them.
package fields

import (
	"fmt"
	"sort"
	"strings"

	"github.com/claritydental/walkout/pkg/domain"
)

// Option is one selectable entry of an option set. The numeric
// identity is stable; names may be edited by the billing team.
type Option struct {
	ID       int    `json:"id" yaml:"id" mapstructure:"id"`
	Name     string `json:"name" yaml:"name" mapstructure:"name"`
	IsActive bool   `json:"isActive" yaml:"isActive" mapstructure:"isActive"`
	Visible  bool   `json:"visible" yaml:"visible" mapstructure:"visible"`
}

// OptionSet is a named enumeration shared by one or more fields.
type OptionSet struct {
	SetID   int              `json:"setId" yaml:"setId" mapstructure:"setId"`
	Name    string           `json:"name" yaml:"name" mapstructure:"name"`
	UsedIn  []domain.FieldID `json:"usedInFieldIds" yaml:"usedInFieldIds" mapstructure:"usedInFieldIds"`
	Options []Option         `json:"options" yaml:"options" mapstructure:"options"`
}

// Bindings are the option identities the engine's rules depend on,
// resolved once from the registry by well-known option names. The
// original system embedded these as magic numbers; resolving them here
// keeps a registry re-numbering from silently breaking the rules.
type Bindings struct {
	// PersonalCheck is the payment mode that requires a 4-digit check
	// reference and an image attachment.
	PersonalCheck int

	// CrownPaidOnDelivery is the crown-paid-on answer that gates the
	// delivered-as-per-notes question.
	CrownPaidOnDelivery int

	// IVTeamReasons are the on-hold reason identities routed to the
	// insurance verification team instead of the office.
	IVTeamReasons map[int]bool
}

// Well-known option names used for binding resolution.
const (
	personalCheckName = "Personal Check"
	deliveryName      = "Delivery"
	ivReasonPrefix    = "Insurance Verification"
)

// Registry indexes option sets by set identity and by the fields that
// use them. It is immutable after construction.
type Registry struct {
	sets     map[int]OptionSet
	byField  map[domain.FieldID]OptionSet
	bindings Bindings
}

// New builds a registry from the given sets and resolves the named
// bindings. It fails when a binding cannot be resolved, since the
// transition and resolver rules would misroute records without it.
func New(sets []OptionSet) (*Registry, error) {
	r := &Registry{
		sets:    make(map[int]OptionSet, len(sets)),
		byField: make(map[domain.FieldID]OptionSet),
		bindings: Bindings{
			IVTeamReasons: make(map[int]bool),
		},
	}

	for _, set := range sets {
		if _, dup := r.sets[set.SetID]; dup {
			return nil, fmt.Errorf("duplicate option set id %d (%q)", set.SetID, set.Name)
		}
		r.sets[set.SetID] = set
		for _, fid := range set.UsedIn {
			r.byField[fid] = set
		}
	}

	if set, ok := r.byField[domain.FieldPrimaryPaymentMode]; ok {
		for _, opt := range set.Options {
			if strings.EqualFold(opt.Name, personalCheckName) {
				r.bindings.PersonalCheck = opt.ID
			}
		}
	}
	if r.bindings.PersonalCheck == 0 {
		return nil, fmt.Errorf("payment mode set has no %q option", personalCheckName)
	}

	if set, ok := r.byField[domain.FieldCrownPaidOn]; ok {
		for _, opt := range set.Options {
			if strings.EqualFold(opt.Name, deliveryName) {
				r.bindings.CrownPaidOnDelivery = opt.ID
			}
		}
	}
	if r.bindings.CrownPaidOnDelivery == 0 {
		return nil, fmt.Errorf("crown-paid-on set has no %q option", deliveryName)
	}

	if set, ok := r.byField[domain.FieldOnHoldReasons]; ok {
		for _, opt := range set.Options {
			if strings.HasPrefix(opt.Name, ivReasonPrefix) {
				r.bindings.IVTeamReasons[opt.ID] = true
			}
		}
	}
	if len(r.bindings.IVTeamReasons) == 0 {
		return nil, fmt.Errorf("on-hold reason set has no %q options", ivReasonPrefix)
	}

	return r, nil
}

// Bindings returns the resolved named option identities.
func (r *Registry) Bindings() Bindings { return r.bindings }

// Sets returns all option sets in set-id order independent of the
// construction order.
func (r *Registry) Sets() []OptionSet {
	out := make([]OptionSet, 0, len(r.sets))
	for _, set := range r.sets {
		out = append(out, set)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SetID < out[j].SetID })
	return out
}

// SetFor returns the option set backing the given field.
func (r *Registry) SetFor(id domain.FieldID) (OptionSet, bool) {
	set, ok := r.byField[id]
	return set, ok
}

// ValidOption reports whether optionID names an active option of the
// set backing the field. Fields without a registered set accept any
// value; their inputs are not enumerations.
func (r *Registry) ValidOption(id domain.FieldID, optionID int) bool {
	set, ok := r.byField[id]
	if !ok {
		return true
	}
	for _, opt := range set.Options {
		if opt.ID == optionID {
			return opt.IsActive
		}
	}
	return false
}

// OptionName resolves an option identity to its display name.
func (r *Registry) OptionName(id domain.FieldID, optionID int) (string, bool) {
	set, ok := r.byField[id]
	if !ok {
		return "", false
	}
	for _, opt := range set.Options {
		if opt.ID == optionID {
			return opt.Name, true
		}
	}
	return "", false
}

// PartitionReasons splits on-hold reason identities into the IV-Team
// subset and the office subset. Ownership of an on-hold record must
// reflect exactly which subsets are present.
func (r *Registry) PartitionReasons(ids []int) (ivTeam, office []int) {
	for _, id := range ids {
		if r.bindings.IVTeamReasons[id] {
			ivTeam = append(ivTeam, id)
		} else {
			office = append(office, id)
		}
	}
	return ivTeam, office
}
