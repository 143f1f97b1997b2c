package nemesisxml

import "regexp"

// The three marker comments a Nemesis patch embeds to delimit a
// differential region, per spec §4.2.
var (
	reOpen     = regexp.MustCompile(`<!--\s*MOD_CODE\s*~([^~]*)~\s*OPEN\s*-->`)
	reOriginal = regexp.MustCompile(`<!--\s*ORIGINAL\s*-->`)
	reClose    = regexp.MustCompile(`<!--\s*CLOSE\s*-->`)

	reObjectOpen  = regexp.MustCompile(`<hkobject\b([^>]*)>`)
	reObjectSelf  = regexp.MustCompile(`<hkobject\b([^>]*)/>`)
	reNameAttr    = regexp.MustCompile(`name="([^"]*)"`)
	reObjectCls   = regexp.MustCompile(`class="([^"]*)"`)
	reObjectClose = regexp.MustCompile(`</hkobject>`)

	reParamOpen      = regexp.MustCompile(`<hkparam\b([^>]*?)(/)?>`)
	reParamClose     = regexp.MustCompile(`</hkparam>`)
	reParamInlineVal = regexp.MustCompile(`<hkparam\b([^>]*?)>([^<]*)</hkparam>`)
	reNumElements    = regexp.MustCompile(`numelements="(\d+)"`)
)
