package catalog

import (
	"fmt"
	"strings"
)

// StateWant records what the user or installer has asked for a package,
// independent of its current on-disk state.
type StateWant int

const (
	WantUnknown StateWant = iota
	WantInstall
	WantDeinstall
	WantPurge
)

var stateWantTable = []struct {
	value StateWant
	name  string
}{
	{WantUnknown, "unknown"},
	{WantInstall, "install"},
	{WantDeinstall, "deinstall"},
	{WantPurge, "purge"},
}

func (w StateWant) String() string {
	for _, e := range stateWantTable {
		if e.value == w {
			return e.name
		}
	}
	return "unknown"
}

// ParseStateWant parses one of the canonical want tokens. Unrecognized
// tokens are an internal invariant violation (category 7): callers get
// WantUnknown back rather than an aborted parse.
func ParseStateWant(s string) StateWant {
	for _, e := range stateWantTable {
		if e.name == s {
			return e.value
		}
	}
	return WantUnknown
}

// StateStatus tracks a package's position in the install/removal lifecycle.
type StateStatus int

const (
	StatusNotInstalled StateStatus = iota
	StatusUnpacked
	StatusHalfConfigured
	StatusInstalled
	StatusHalfInstalled
	StatusConfigFiles
	StatusPostInstFailed
	StatusRemovalFailed
)

var stateStatusTable = []struct {
	value StateStatus
	name  string
}{
	{StatusNotInstalled, "not-installed"},
	{StatusUnpacked, "unpacked"},
	{StatusHalfConfigured, "half-configured"},
	{StatusInstalled, "installed"},
	{StatusHalfInstalled, "half-installed"},
	{StatusConfigFiles, "config-files"},
	{StatusPostInstFailed, "post-inst-failed"},
	{StatusRemovalFailed, "removal-failed"},
}

func (s StateStatus) String() string {
	for _, e := range stateStatusTable {
		if e.value == s {
			return e.name
		}
	}
	return "not-installed"
}

func ParseStateStatus(s string) StateStatus {
	for _, e := range stateStatusTable {
		if e.name == s {
			return e.value
		}
	}
	return StatusNotInstalled
}

// StateFlag is a bitset of the orthogonal flags the installer attaches to a
// package record, mirroring dpkg's "status" flag word.
type StateFlag uint16

const (
	FlagOK StateFlag = 1 << iota
	FlagReinstreq
	FlagHold
	FlagReplace
	FlagNoPrune
	FlagPrefer
	FlagObsolete
	FlagUser
	FlagFilelistChanged
	FlagNeedDetail
)

var stateFlagTable = []struct {
	value StateFlag
	name  string
}{
	{FlagOK, "ok"},
	{FlagReinstreq, "reinstreq"},
	{FlagHold, "hold"},
	{FlagReplace, "replace"},
	{FlagNoPrune, "noprune"},
	{FlagPrefer, "prefer"},
	{FlagObsolete, "obsolete"},
	{FlagUser, "user"},
	{FlagFilelistChanged, "filelist-changed"},
	{FlagNeedDetail, "need-detail"},
}

// String renders the flag set as a comma-separated list of its canonical
// names, in table order, round-tripping with ParseStateFlag.
func (f StateFlag) String() string {
	var names []string
	for _, e := range stateFlagTable {
		if f&e.value != 0 {
			names = append(names, e.name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, ",")
}

// ParseStateFlag parses a comma-separated flag list. Unknown tokens are
// ignored rather than rejected, per the category-7 "never abort" policy.
func ParseStateFlag(s string) StateFlag {
	var f StateFlag
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		for _, e := range stateFlagTable {
			if e.name == tok {
				f |= e.value
			}
		}
	}
	return f
}

// ParseStatusLine parses the three whitespace-separated tokens of a Status
// control field: want, a comma-separated flag list, and status.
func ParseStatusLine(line string) (StateWant, StateFlag, StateStatus, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("status line must have exactly 3 fields, got %d", len(fields))
	}
	return ParseStateWant(fields[0]), ParseStateFlag(fields[1]), ParseStateStatus(fields[2]), nil
}

// FormatStatusLine is the inverse of ParseStatusLine.
func FormatStatusLine(want StateWant, flag StateFlag, status StateStatus) string {
	flagStr := flag.String()
	if flagStr == "" {
		flagStr = "ok"
	}
	return want.String() + " " + flagStr + " " + status.String()
}
