package model

import "strings"

// ACUnit is an air-conditioning unit in the inventory. ID is the storage id
// the server assigns; Code is the short identifier staff type in.
type ACUnit struct {
	ID       string `json:"_id,omitempty"`
	Code     string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	Watts    int    `json:"watts,omitempty"`
}

// DisplayName returns the unit's name, or its code when unnamed.
func (u *ACUnit) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Code
}

// Matches reports whether ref names this unit by storage id or code.
func (u *ACUnit) Matches(ref string) bool {
	return ref != "" && (u.ID == ref || u.Code == ref)
}

// NameContains is a case-insensitive substring match on the unit name.
func (u *ACUnit) NameContains(term string) bool {
	return strings.Contains(strings.ToLower(u.Name), strings.ToLower(term))
}

// FindUnit returns the unit ref points at, or nil.
func FindUnit(units []ACUnit, ref string) *ACUnit {
	for i := range units {
		if units[i].Matches(ref) {
			return &units[i]
		}
	}
	return nil
}
