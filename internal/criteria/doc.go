// Package criteria loads guideline node metadata (principles, guidelines
// and success criteria), orders criteria by their hierarchical number and
// filters them to one guideline version.
//
// # File format
//
//	criteria:
//	  - id: captions-live
//	    name: Captions (Live)
//	    number: 1.2.4
//	    type: SC
//	    versions: ["2.0", "2.1", "2.2"]
//	  - id: time-based-media
//	    name: Time-based Media
//	    number: "1.2"
//	    type: guideline
//
// A node without versions applies to every version.
package criteria
