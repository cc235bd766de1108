package normalize

import "strings"

// legacyCompanyKeys maps canonical company keys to the variant names models
// sometimes emit instead.
var legacyCompanyKeys = []struct {
	canonical string
	legacy    string
}{
	{canonical: "from_date", legacy: "start_date"},
	{canonical: "to_date", legacy: "end_date"},
	{canonical: "job_description", legacy: "description"},
}

// requiredCompanyKeys are defaulted to "" when still missing after renames.
var requiredCompanyKeys = []string{"position", "current_position", "job_description", "from_date", "to_date"}

// Normalize returns a reshaped copy of doc that uses canonical field names and
// primitive shapes wherever the input can be fixed. It never fails; anything it
// cannot repair is left for schema validation to report. The input is not modified.
func Normalize(doc *Value) *Value {
	out := doc.Clone()
	root, ok := out.Object()
	if !ok {
		return out
	}

	if companies, ok := root.Get("companies"); ok {
		for _, item := range companies.Items() {
			if company, ok := item.Object(); ok {
				normalizeCompany(company)
			}
		}
	}

	if projects, ok := root.Get("projects"); ok {
		for _, item := range projects.Items() {
			if project, ok := item.Object(); ok {
				normalizeProject(project)
			}
		}
	}

	skills, ok := root.Get("skills")
	if !ok {
		root.Set("skills", NewArray())
	} else if skills.Kind() == KindArray {
		root.Set("skills", NewStringArray(cleanStrings(skills.Items())))
	}

	return out
}

// normalizeCompany rewrites a single company entry in place.
//
// The current_position/position cross-fill copies a string into a boolean
// field and back. It matches the behavior clients already depend on and is most
// likely a bug upstream; a string current_position fails validation.
func normalizeCompany(company *Object) {
	if !company.Has("current_position") {
		position, ok := company.Get("position")
		if !ok {
			position = NewString("")
		}
		company.Set("current_position", position.Clone())
	}
	if !company.Has("position") && company.Has("current_position") {
		current, _ := company.Get("current_position")
		company.Set("position", current.Clone())
	}

	for _, k := range legacyCompanyKeys {
		if company.Has(k.canonical) || !company.Has(k.legacy) {
			continue
		}
		v, _ := company.Delete(k.legacy)
		company.Set(k.canonical, v)
	}

	for _, key := range requiredCompanyKeys {
		company.SetDefault(key, NewString(""))
	}
}

// normalizeProject rewrites a single project entry in place.
func normalizeProject(project *Object) {
	if !project.Has("title") && project.Has("project_name") {
		v, _ := project.Delete("project_name")
		project.Set("title", v)
	}

	technologies, ok := project.Get("technologies")
	switch {
	case !ok:
		project.Set("technologies", NewArray())
	case technologies.Kind() == KindString:
		s, _ := technologies.Str()
		project.Set("technologies", NewStringArray(SplitList(s)))
	}

	if image, ok := project.Get("image"); !ok || image.IsNull() {
		project.Set("image", NewString(""))
	}

	project.SetDefault("url", NewString(""))
}

// SplitList splits a comma separated list, trimming each entry and dropping
// empty ones.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cleanStrings keeps only non-blank string items, trimmed, in order.
func cleanStrings(items []*Value) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.Str()
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
