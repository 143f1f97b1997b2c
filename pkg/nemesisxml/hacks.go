package nemesisxml

// HackOptions is a bitfield enabling specific field-name rewrites found in
// community patches that target a known-buggy field name where the schema
// actually expects a different one. Hacks are off by default; enabling one
// never changes the JSON-patch algebra, only the pre-patch field name.
type HackOptions uint32

const (
	// HackEventToContactEvent rewrites a patched field literally named
	// "event" to "contactEvent", whatever the object's class — a mistake
	// seen in several community Nemesis patches that copy-pasted an older
	// schema's field name.
	HackEventToContactEvent HackOptions = 1 << iota
)

// fieldRewrites maps each hack this package knows about to its buggy field
// names and their corrected names. The object's class is not consulted.
var fieldRewrites = map[HackOptions]map[string]string{
	HackEventToContactEvent: {
		"event": "contactEvent",
	},
}

// applyHacks rewrites field, if the matching hack is enabled in opts.
func applyHacks(opts HackOptions, field string) string {
	for hack, rewrites := range fieldRewrites {
		if opts&hack == 0 {
			continue
		}
		if renamed, ok := rewrites[field]; ok {
			return renamed
		}
	}
	return field
}
