// Package docparse turns a declaration's documentation comment into a
// docinfo.Record.
//
// A Session is created once per run. Parse is called for every declaration
// the provider yields; each directive of the comment is resolved against the
// lexicon, validated against the declaration and stored. Shutdown reports
// the declarations that were never documented.
//
// Nothing here is fatal: a bad directive is reported and skipped, and the
// scan carries on with the next one.
package docparse
