/*
Package manifest reads node type declarations from HCL and turns them into
registry entries.

A manifest file holds any number of `node_type` and `alias` blocks:

	node_type "osc~" {
	  arg "frequency" {
	    type    = number
	    default = 0
	  }
	  inlet "0"  { type = "signal" }
	  inlet "1"  { type = "message" }
	  outlet "0" { type = "signal" }
	  message_to_signal "0" { initial_value_arg = "frequency" }
	}

	alias "osc" { to = "osc~" }

Arguments are positional. Each declared `arg` consumes the node argument at
its position, converted to the declared type with go-cty; a `variadic` arg
collects every remaining argument into a list. Portlet counts that depend on
the number of arguments (dac~, pack, trigger) are declared with
`inlets_per_arg` and `outlets_per_arg`.

A builtin manifest covering common vanilla objects is embedded in the binary,
see Builtin.
*/
package manifest
