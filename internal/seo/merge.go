package seo

// Merge layers over on top of base field by field. A scalar in over wins when
// non-empty; structuredData and customMeta replace the base value wholesale
// when non-empty. Neither argument is modified.
func Merge(base, over Configuration) Configuration {
	out := base.Clone()
	dst := out.stringFields()
	for i, src := range over.stringFields() {
		if *src != "" {
			*dst[i] = *src
		}
	}
	if len(over.StructuredData) > 0 {
		out.StructuredData = cloneValue(over.StructuredData).(map[string]any)
	}
	if len(over.CustomMeta) > 0 {
		out.CustomMeta = append([]CustomMeta(nil), over.CustomMeta...)
	}
	return out
}
