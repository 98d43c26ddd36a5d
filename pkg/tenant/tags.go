package tenant

import (
	"encoding/json"
	"slices"
)

func (t *Tenant) extra() map[string]any {
	extra := map[string]any{}
	if t.Extra == "" {
		return extra
	}
	if err := json.Unmarshal([]byte(t.Extra), &extra); err != nil || extra == nil {
		return map[string]any{}
	}
	return extra
}

// Tags returns the tags stored in Extra.
func (t *Tenant) Tags() []string {
	raw, _ := t.extra()["tags"].([]any)
	tags := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			tags = append(tags, s)
		}
	}
	return tags
}

// AddTags puts tags in front of the existing ones, without duplicates.
// Other keys of Extra are preserved; unparsable Extra is replaced.
func (t *Tenant) AddTags(tags ...string) {
	merged := slices.Clone(tags)
	for _, tag := range t.Tags() {
		if !slices.Contains(tags, tag) {
			merged = append(merged, tag)
		}
	}
	t.setTags(merged)
}

// RemoveTags drops the given tags from Extra.
func (t *Tenant) RemoveTags(tags ...string) {
	kept := slices.DeleteFunc(t.Tags(), func(tag string) bool {
		return slices.Contains(tags, tag)
	})
	t.setTags(kept)
}

func (t *Tenant) setTags(tags []string) {
	extra := t.extra()
	extra["tags"] = tags
	b, _ := json.Marshal(extra)
	t.Extra = string(b)
}
