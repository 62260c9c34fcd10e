// Package lit implements the core of a literate-programming tangler: it
// extracts named chunks of code from prose documents, resolves the
// references between them and substitutes their parameters.
//
// # Directives
//
// A definition directive names the code that follows it:
//
//	<<c.sum, a, b>>
//
//	    return $0 + $1
//
// A paste reference inside a chunk inlines the expanded text of another
// chunk, optionally with its own arguments:
//
//	<<=c.sum, x, y>>
//	<<=c.*, join:\,, start:(, end:)>>
//
// Arguments are bare values (the body) or "name:value" pairs. A backslash
// makes any ASCII punctuation literal, so "a\:8000/" is the value "a:8000/".
//
// # Expansion
//
// [Registry.Expand] resolves a chunk depth first. Every reference is expanded
// with the arguments of the reference site, re-indented to the column of the
// reference and pasted in place. Placeholders "$name", "${name}", "$N",
// "$-N" and "$*" resolve from keyword bindings, then from the [Vars] store.
//
// # Events
//
// Commands fire four events: define, paste, post and subargs. Built-in
// [Directive] kinds such as "file.*" hook them directly. Documents add
// handlers with the "on" directive or inline "do.EVENT" arguments, written in
// a small pipe language:
//
//	<<on.chunk.paste, gpath:c.*, do:strip; upper>>
//
// # Usage
//
//	p := lit.New(
//		lit.WithFormats(format.Default()),
//		lit.WithSource(vfile.New()),
//		lit.WithSink(vfile.New()),
//	)
//	if err := p.ParseFile(ctx, "doc.md", true); err != nil {
//		// ...
//	}
package lit
