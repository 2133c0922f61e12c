// Package language normalizes language codes and names on top of
// golang.org/x/text/language.
//
// Configuration, the recognizer, and the translator all accept a code in any
// of the common forms (en, eng, en-US, "english") and go through here to get
// the ISO 639-1 code or English display name they need.
package language
