// Package morph enumerates candidate surface forms of a verb.
//
// Two generation modes compose:
//
//   - Prefix mode attaches every variant of every prefix rule (including
//     the null rule, which yields the bare base) to a base string.
//   - Stem/ending mode pairs vowel-final stems with post-vowel endings and
//     consonant-final stems with post-consonant endings.
//
// Generate applies prefix mode to the output of stem/ending mode (or to the
// root when a verb has no stems). All functions are pure and never modify
// the tables they are given.
package morph
