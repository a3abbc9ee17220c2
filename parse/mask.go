package parse

// Mask is a bitmask of control fields a Parse call should honor; fields
// not present in the mask are left at their zero value even if present in
// the input stanza.
type Mask uint32

const (
	MaskVersion Mask = 1 << iota
	MaskArchitecture
	MaskDepends
	MaskPreDepends
	MaskRecommends
	MaskSuggests
	MaskConflicts
	MaskProvides
	MaskReplaces
	MaskFilename
	MaskSize
	MaskInstalledSize
	MaskMD5
	MaskSHA256
	MaskSection
	MaskPriority
	MaskMaintainer
	MaskSourcePackage
	MaskTags
	MaskDescription
	MaskEssential
	MaskAutoInstalled
	MaskInstalledTime
	MaskStatus
	MaskConffiles
)

// MaskAll honors every recognized field. Package is always honored
// regardless of mask; it is the minimum a paragraph must carry to become a
// Pkg at all.
const MaskAll Mask = ^Mask(0)
