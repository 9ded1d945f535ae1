// Package classifier turns one raw key event into exactly one user intent.
//
// # Priority
//
// Rules are evaluated in a fixed order and the first match wins:
//
//	┌────┬──────────────────┬───────────────────────────────────────────────┐
//	│ #  │ Rule             │ Matches                                       │
//	├────┼──────────────────┼───────────────────────────────────────────────┤
//	│ 1  │ option-diacritic │ option, no ctrl/cmd, key is a mark-start key  │
//	│ 2  │ control-chord    │ ctrl + H P M N F I O J K ; S                  │
//	│ 3  │ fixed keys       │ return tab space delete escape yen , . F6-F8  │
//	│    │                  │ eisu kana arrows, digit row (no shift/option) │
//	│ 4  │ default          │ everything else                               │
//	└────┴──────────────────┴───────────────────────────────────────────────┘
//
// The default rule emits literal input when the host-decoded characters
// are printable, and unrecognized otherwise. In Japanese mode literal input
// goes through the full-width punctuation remap.
//
// # Dead keys
//
// A Classifier owns a dead-key composer. Option plus a mark-start key arms
// it. The next event always disarms it:
//
//	option+E        → begin-dead-key("´")
//	a               → literal-input("á")
//
//	option+`        → begin-dead-key("`")
//	y               → literal-input("`y")      mark folded into the text
//
//	option+`        → begin-dead-key("`")
//	return          → "`"+commit              mark carried as Prefix
//
// A Classifier is not safe for concurrent use. Events must be fed in the
// order the hardware produced them.
package classifier
