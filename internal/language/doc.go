// Package language classifies subtitle language tags.
//
// Tags are matched case-insensitively against fixed code sets (ISO 639-1,
// ISO 639-2 and common region variants) built once at init. The Filter type
// carries the user's Spanish/English toggles; when neither toggle is set the
// filter is inactive and every subtitle is wanted.
package language
