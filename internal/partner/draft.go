package partner

// Draft carries the fields a caller wants to set. A nil field is left
// untouched when the draft is applied; a non-nil field replaces the stored
// value wholesale, including the anniversary and preference lists.
type Draft struct {
	ID            *string // ignored by the store
	FirstName     *string
	LastName      *string
	NickName      *string
	IntimateName  *string
	PreferredName *NameField
	Anniversaries *[]Anniversary
	Preferences   *[]Preference
	Email         *string
	Phone         *string
	Address       *string
	Notes         *string
}

// Ptr returns a pointer to v, for building drafts inline.
func Ptr[T any](v T) *T {
	return &v
}

// Apply returns base overwritten by every field present in d. The id of base
// is always kept.
func (d Draft) Apply(base Partner) Partner {
	out := base.Clone()

	setString(&out.FirstName, d.FirstName)
	setString(&out.LastName, d.LastName)
	setString(&out.NickName, d.NickName)
	setString(&out.IntimateName, d.IntimateName)
	setString(&out.Email, d.Email)
	setString(&out.Phone, d.Phone)
	setString(&out.Address, d.Address)
	setString(&out.Notes, d.Notes)

	if d.PreferredName != nil {
		out.PreferredName = *d.PreferredName
	}
	if d.Anniversaries != nil {
		out.Anniversaries = cloneAnniversaries(*d.Anniversaries)
	}
	if d.Preferences != nil {
		out.Preferences = clonePreferences(*d.Preferences)
	}
	return out
}

// DraftOf returns a draft that sets every field of p, minus its id.
func DraftOf(p Partner) Draft {
	return Draft{
		FirstName:     Ptr(p.FirstName),
		LastName:      Ptr(p.LastName),
		NickName:      Ptr(p.NickName),
		IntimateName:  Ptr(p.IntimateName),
		PreferredName: Ptr(p.PreferredName),
		Anniversaries: Ptr(cloneAnniversaries(p.Anniversaries)),
		Preferences:   Ptr(clonePreferences(p.Preferences)),
		Email:         Ptr(p.Email),
		Phone:         Ptr(p.Phone),
		Address:       Ptr(p.Address),
		Notes:         Ptr(p.Notes),
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
