package core

// Display values used when a tag reference no longer resolves.
const (
	OtherTagID    int64 = -1
	OtherTagName        = "Other"
	OtherTagIcon        = "help-circle"
	OtherTagColor       = "#607D8B"
)

// TagRef is the result of resolving a weak tag reference: either a tag that
// exists or Missing. Transactions keep their tag_id after the tag is deleted,
// so every reader goes through this type instead of nil checks.
type TagRef struct {
	tag      Tag
	resolved bool
}

// Missing is the TagRef of a null or dangling reference.
var Missing = TagRef{}

func Resolved(t Tag) TagRef {
	return TagRef{tag: t, resolved: true}
}

// Tag returns the referenced tag and whether it exists.
func (r TagRef) Tag() (Tag, bool) {
	return r.tag, r.resolved
}

func (r TagRef) IsMissing() bool {
	return !r.resolved
}

// Display returns the tag to render, substituting the "Other" sentinel when
// the reference is missing.
func (r TagRef) Display() Tag {
	if r.resolved {
		return r.tag
	}
	return Tag{
		ID:    OtherTagID,
		Name:  OtherTagName,
		Icon:  OtherTagIcon,
		Color: OtherTagColor,
	}
}
