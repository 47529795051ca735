package profile

import "strings"

// PrefDailyAffirmation is the opt-in for the daily affirmation.
const PrefDailyAffirmation = "daily_affirmation"

// knownPreferences lists every preference a profile may carry, with its default.
var knownPreferences = map[string]bool{
	PrefDailyAffirmation: false,
}

// Profile is one member's stored settings. The JSON layout is the bot's
// on-disk record format and must stay stable across releases.
type Profile struct {
	Pronouns    *string           `json:"pronouns"`
	Triggers    []string          `json:"triggers"`
	Birthdate   *Date             `json:"birthdate"`
	Milestones  map[string]string `json:"milestones"` // DD-MM-YYYY → description
	Preferences map[string]bool   `json:"preferences"`
}

// Default returns the profile every member starts with.
func Default() Profile {
	p := Profile{}
	p.normalize()
	return p
}

// PronounsOr returns the stored pronouns or fallback when unset.
func (p Profile) PronounsOr(fallback string) string {
	if p.Pronouns == nil {
		return fallback
	}
	return *p.Pronouns
}

// BirthdateOr returns the formatted birthdate or fallback when unset.
func (p Profile) BirthdateOr(fallback string) string {
	if p.Birthdate == nil {
		return fallback
	}
	return p.Birthdate.String()
}

// Preference reports a named preference, falling back to its default.
func (p Profile) Preference(name string) bool {
	if v, ok := p.Preferences[name]; ok {
		return v
	}
	return knownPreferences[name]
}

// HasTrigger reports whether word is on the list, ignoring case.
func (p Profile) HasTrigger(word string) bool {
	return p.triggerIndex(word) >= 0
}

func (p Profile) triggerIndex(word string) int {
	for i, t := range p.Triggers {
		if strings.EqualFold(t, word) {
			return i
		}
	}
	return -1
}

// normalize fills in whatever a partial or legacy record left out.
func (p *Profile) normalize() {
	if p.Triggers == nil {
		p.Triggers = []string{}
	}
	if p.Milestones == nil {
		p.Milestones = map[string]string{}
	}
	if p.Preferences == nil {
		p.Preferences = make(map[string]bool, len(knownPreferences))
	}
	for name, def := range knownPreferences {
		if _, ok := p.Preferences[name]; !ok {
			p.Preferences[name] = def
		}
	}
}

func (p Profile) clone() Profile {
	cp := p
	if p.Pronouns != nil {
		s := *p.Pronouns
		cp.Pronouns = &s
	}
	if p.Birthdate != nil {
		d := *p.Birthdate
		cp.Birthdate = &d
	}
	if p.Triggers != nil {
		cp.Triggers = make([]string, len(p.Triggers))
		copy(cp.Triggers, p.Triggers)
	}
	if p.Milestones != nil {
		cp.Milestones = make(map[string]string, len(p.Milestones))
		for k, v := range p.Milestones {
			cp.Milestones[k] = v
		}
	}
	if p.Preferences != nil {
		cp.Preferences = make(map[string]bool, len(p.Preferences))
		for k, v := range p.Preferences {
			cp.Preferences[k] = v
		}
	}
	return cp
}
