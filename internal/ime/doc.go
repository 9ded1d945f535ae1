// Package ime connects the keystroke classifier and the composition session
// to an input method framework.
//
// Engine is the framework-neutral core. A host wrapper translates each
// native key-down into a key code, modifiers and the characters the key
// produced, and passes it to ProcessKey together with the text field that
// receives the edit actions:
//
//	res, err := engine.ProcessKey(code, mods, chars, field)
//	if !res.Consumed {
//	    // let the application see the key
//	}
//
// Engine reads preferences from a settings.Provider on every key, so a
// configuration reload takes effect on the next keystroke without
// restarting the input method.
//
// On Linux, Server registers the engine with IBus over D-Bus. Every input
// context gets its own Engine and in-memory field; committed text and the
// preedit are sent back as CommitText and UpdatePreeditText signals.
// NewComponent renders the component file IBus uses to find the engine.
package ime
