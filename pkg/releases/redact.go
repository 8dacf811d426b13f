package releases

// FieldSet is a set of top-level field names to remove from a record.
type FieldSet map[string]struct{}

// NewFieldSet builds a set from names; duplicates collapse.
func NewFieldSet(names ...string) FieldSet {
	fs := make(FieldSet, len(names))
	for _, n := range names {
		fs[n] = struct{}{}
	}
	return fs
}

// Has reports whether name is in the set.
func (fs FieldSet) Has(name string) bool {
	_, ok := fs[name]
	return ok
}

// StripFrom deletes every field of the set from record.
func (fs FieldSet) StripFrom(record map[string]interface{}) {
	for name := range fs {
		delete(record, name)
	}
}

// without returns a copy of the set minus name, or the set itself when name
// is absent.
func (fs FieldSet) without(name string) FieldSet {
	if !fs.Has(name) {
		return fs
	}
	out := make(FieldSet, len(fs)-1)
	for n := range fs {
		if n != name {
			out[n] = struct{}{}
		}
	}
	return out
}

// Redactor removes configured fields and drops excluded releases.
type Redactor struct {
	ReleaseFields FieldSet
	AssetFields   FieldSet
	FilterDrafts  bool
}

// NewRedactor creates a redactor for one run.
func NewRedactor(releaseFields, assetFields []string, filterDrafts bool) *Redactor {
	return &Redactor{
		ReleaseFields: NewFieldSet(releaseFields...),
		AssetFields:   NewFieldSet(assetFields...),
		FilterDrafts:  filterDrafts,
	}
}

// SanitizeRelease strips release-level fields, then asset-level fields from
// each asset. The release's assets collection itself is never removed. The
// release is modified in place and returned.
func (r *Redactor) SanitizeRelease(release Release) Release {
	r.ReleaseFields.without(AssetsField).StripFrom(release)
	if len(r.AssetFields) > 0 {
		for _, asset := range release.Assets() {
			r.AssetFields.StripFrom(asset)
		}
	}
	return release
}

// ShouldExclude reports whether release is dropped from lists: only when
// draft filtering is on and the draft field is boolean true.
func (r *Redactor) ShouldExclude(release Release) bool {
	if !r.FilterDrafts {
		return false
	}
	draft, ok := release[DraftField].(bool)
	return ok && draft
}

// SanitizeReleaseList drops excluded releases, keeping the order of the
// rest, and sanitizes each survivor.
func (r *Redactor) SanitizeReleaseList(releases []Release) []Release {
	out := make([]Release, 0, len(releases))
	for _, rel := range releases {
		if r.ShouldExclude(rel) {
			continue
		}
		out = append(out, r.SanitizeRelease(rel))
	}
	return out
}
