// Package profile reads and writes PlayerLocalData.arkprofile
// containers: an envelope header, a property section, and raw trailing
// bytes. The envelope fields are preserved verbatim so a decoded
// profile re-encodes to the exact original bytes.
//
// Repairs work by mutating the decoded property tree (for example
// Profile.ClearArkItems) and saving; all sizes and counts are
// recomputed from the edited tree.
package profile
