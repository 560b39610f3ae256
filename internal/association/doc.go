// Package association provides the specification types, the shorthand
// normalizer and the grammar validator for per-criterion technique
// specifications.
//
// Specifications are hand-authored, one document per success criterion,
// and favor shorthand: a bare string is either a technique id or a
// free-text title.
//
// # Schema Overview
//
//	intro: optional text
//	sufficient:
//	  - G158                          # shorthand id
//	  - Providing a transcript        # shorthand title (no technique yet)
//	  - id: G90                       # titled / extended reference
//	    title: Providing keyboard-triggered event handlers
//	    usingQuantity: one
//	    using: [SCR20, SCR35]
//	  - and: [G9, G93]                # conjunction
//	advisory:
//	  - id: G87
//	failure:
//	  - F8
//
// The sufficient list may instead be a list of sections:
//
//	sufficient:
//	  - title: Situation A
//	    techniques: [G158]
//	    groups:
//	      - id: text-alternatives
//	        title: Text alternatives
//	        techniques: [G94]
//	    note: optional text
//
// # Reference shapes
//
//   - shorthand: "G90" (id) or "Providing ..." (title)
//   - simple: {id, title}
//   - extended: simple fields plus using, skipUsingText, usingConjunction,
//     usingPrefix, usingQuantity
//   - conjunction: {and: [...]} plus andConjunction and the using fields;
//     and may not be combined with id
//
// using nests to any depth. Unknown fields are rejected with a SchemaError
// that names the criterion and the path of the offending entry.
package association
