package rpm

// Header tags read or written in addition to the ones go-rpmutils names
const (
	tagEpoch             = 1003
	tagDescription       = 1005
	tagPreIn             = 1023
	tagPostIn            = 1024
	tagPreUn             = 1025
	tagPostUn            = 1026
	tagProvideName       = 1047
	tagRequireFlags      = 1048
	tagRequireVersion    = 1050
	tagConflictFlags     = 1053
	tagConflictName      = 1054
	tagConflictVersion   = 1055
	tagChangelogTime     = 1080
	tagChangelogName     = 1081
	tagChangelogText     = 1082
	tagObsoleteName      = 1090
	tagProvideFlags      = 1112
	tagProvideVersion    = 1113
	tagObsoleteFlags     = 1114
	tagObsoleteVersion   = 1115
	tagPayloadCompressor = 1125
)

// Dependency sense flags
const (
	senseLess    = 1 << 1
	senseGreater = 1 << 2
	senseEqual   = 1 << 3
)

// File flags
const (
	fileFlagConfig = 1 << 0
	fileFlagDoc    = 1 << 1
)

// regularFileType is the S_IFREG bit carried in RPM file modes
const regularFileType = 0o100000

// senseOperator renders dependency flags as a comparison operator
func senseOperator(flags int64) string {
	switch {
	case flags&senseLess != 0 && flags&senseEqual != 0:
		return "<="
	case flags&senseGreater != 0 && flags&senseEqual != 0:
		return ">="
	case flags&senseLess != 0:
		return "<"
	case flags&senseGreater != 0:
		return ">"
	case flags&senseEqual != 0:
		return "="
	}
	return ""
}
