package behaviorpath

import "strings"

// CanonicalTemplates is the static table mapping a Nemesis template-name
// component (the directory name that sits directly above a patch file, e.g.
// "0_master") to the canonical, on-disk template key rooted at "meshes/".
// This table is closed and known at build time, per the spec: "the template
// name is mapped to a canonical on-disk template via a static table (the
// schema table is closed and known at build time)". It is deliberately
// small and representative rather than exhaustive — the real table used by
// the embedding game-data package is generated from the shipped behavior
// graph set, which is out of this repo's scope.
var CanonicalTemplates = map[string]string{
	"0_master":           "meshes/actors/character/behaviors/0_master.hkx",
	"1hm_behavior":       "meshes/actors/character/behaviors/1hm_behavior.hkx",
	"mt_behavior":        "meshes/actors/character/behaviors/mt_behavior.hkx",
	"staggerbehavior":    "meshes/actors/character/behaviors/staggerbehavior.hkx",
	"defaultmale":        "meshes/actors/character/behaviors/defaultmale.hkx",
	"defaultfemale":      "meshes/actors/character/behaviors/defaultfemale.hkx",
	"idlebehavior":       "meshes/actors/character/behaviors/idlebehavior.hkx",
	"firstperson":        "meshes/actors/character/_1stperson/behaviors/firstperson.hkx",
	"weapequip":          "meshes/actors/character/behaviors/weapequip.hkx",
	"animationdatasinglefile":    "meshes/animationdatasinglefile.txt",
	"animationsetdatasinglefile": "meshes/animationsetdatasinglefile.txt",
}

// LookupTemplate resolves a lower-cased template-name component to its
// canonical template key, honoring the first-person flag: first-person
// templates live under the separate meshes/actors/character/_1stperson/...
// namespace and must not collide with the third-person namespace that
// shares the same template-name components.
func LookupTemplate(templateName string, firstPerson bool) (string, bool) {
	key, ok := CanonicalTemplates[strings.ToLower(templateName)]
	if !ok {
		return "", false
	}
	if firstPerson && !strings.Contains(key, "_1stperson") {
		key = strings.Replace(key, "meshes/actors/character/", "meshes/actors/character/_1stperson/", 1)
	}
	return key, true
}
