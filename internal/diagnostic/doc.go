// Package diagnostic collects coded findings reported while loading and
// checking an association corpus.
//
// A finding names its subject (a criterion id or a technique id) and, for
// schema problems, the path of the offending entry inside that subject's
// specification, e.g. "sufficient[1].using[0]".
package diagnostic
