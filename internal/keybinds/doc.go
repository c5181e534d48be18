/*
Package keybinds provides customizable keyboard binding management for the
terminal editor.

# Contexts

Each screen of the terminal UI has a context:
  - browse: the field list
  - search: the fuzzy filter input
  - input, textarea, select: the open field editor
  - confirm: the discard-changes prompt
  - journal, help: viewers

A key is looked up in the active context first, then in global.

# Sequences

Keys repeating one character ("gg") are sequences. MatchSequence holds the
first key until the next one arrives.

# Configuration File Format

~/.inplace/keybinds.json maps context -> action -> comma separated keys.
Comments and trailing commas are accepted:

	{
	  "version": "1.0",
	  "bindings": {
	    // vim users
	    "browse": {"edit": "enter,i", "save": "ctrl+s"},
	    "textarea": {"submit": "ctrl+d"},
	  }
	}

A configured action replaces all of its default keys in that context.
*/
package keybinds
