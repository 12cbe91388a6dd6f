package rpm

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ralt/rpm-builder/internal/utils"
	"github.com/sassoftware/go-rpmutils"
	"github.com/sassoftware/go-rpmutils/cpio"
)

// PackageInfo describes an RPM artifact read back from disk
type PackageInfo struct {
	Name        string
	Version     string
	Release     string
	Epoch       int64
	Arch        string
	License     string
	Summary     string
	Description string

	Requires  []string
	Provides  []string
	Conflicts []string
	Obsoletes []string

	Changelog  []ChangelogInfo
	Scriptlets map[string]string

	// PayloadCompressor is the compressor named in the header, Compression
	// is what the payload stream actually starts with
	PayloadCompressor string
	Compression       string
	Files             []PayloadFile

	Filename string
	Size     int64
	SHA256   string
}

// ChangelogInfo is a changelog record stored in the header
type ChangelogInfo struct {
	Time   int64
	Author string
	Text   string
}

// PayloadFile is a file stored in the payload archive
type PayloadFile struct {
	Name   string
	Mode   uint32
	Size   int64
	Flags  int64
	SHA256 string
}

// IsConfig reports whether the file is flagged as configuration
func (f PayloadFile) IsConfig() bool {
	return f.Flags&fileFlagConfig != 0
}

// IsDoc reports whether the file is flagged as documentation
func (f PayloadFile) IsDoc() bool {
	return f.Flags&fileFlagDoc != 0
}

// ReadPackage parses an RPM file, its header and its payload
func ReadPackage(path string) (*PackageInfo, error) {
	digest, err := utils.DigestFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to hash package: %w", err)
	}

	// Open RPM file
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Read RPM header, the stream is left at the start of the payload
	rpm, err := rpmutils.ReadRpm(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read RPM: %w", err)
	}

	// Extract metadata
	pkg := &PackageInfo{
		Name:              getStringTag(rpm, rpmutils.NAME),
		Version:           getStringTag(rpm, rpmutils.VERSION),
		Release:           getStringTag(rpm, rpmutils.RELEASE),
		Epoch:             getIntTag(rpm, tagEpoch),
		Arch:              getStringTag(rpm, rpmutils.ARCH),
		License:           getStringTag(rpm, rpmutils.LICENSE),
		Summary:           getStringTag(rpm, rpmutils.SUMMARY),
		Description:       getStringTag(rpm, tagDescription),
		Requires:          getRelations(rpm, rpmutils.REQUIRENAME, tagRequireFlags, tagRequireVersion),
		Provides:          getRelations(rpm, tagProvideName, tagProvideFlags, tagProvideVersion),
		Conflicts:         getRelations(rpm, tagConflictName, tagConflictFlags, tagConflictVersion),
		Obsoletes:         getRelations(rpm, tagObsoleteName, tagObsoleteFlags, tagObsoleteVersion),
		Changelog:         getChangelog(rpm),
		Scriptlets:        make(map[string]string),
		PayloadCompressor: getStringTag(rpm, tagPayloadCompressor),
		Filename:          path,
		Size:              digest.Size,
		SHA256:            digest.SHA256,
	}

	scriptletTags := map[string]int{
		"pre-install":    tagPreIn,
		"post-install":   tagPostIn,
		"pre-uninstall":  tagPreUn,
		"post-uninstall": tagPostUn,
	}
	for name, tag := range scriptletTags {
		if content := getStringTag(rpm, tag); content != "" {
			pkg.Scriptlets[name] = content
		}
	}

	flags, err := getFileFlags(rpm)
	if err != nil {
		return nil, fmt.Errorf("failed to read file list: %w", err)
	}
	files, compression, err := readPayload(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	for i := range files {
		files[i].Flags = flags[files[i].Name]
	}
	pkg.Files = files
	pkg.Compression = compression

	return pkg, nil
}

// readPayload decompresses the payload and walks its cpio archive
func readPayload(r io.Reader) ([]PayloadFile, string, error) {
	payload, compression, err := utils.NewDecompressingReader(bufio.NewReader(r))
	if err != nil {
		return nil, "", err
	}
	defer payload.Close()

	var files []PayloadFile
	stream := cpio.NewReader(payload)
	for {
		entry, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, compression, fmt.Errorf("reading stream: %w", err)
		}

		h := sha256.New()
		written, err := io.Copy(h, stream)
		if err != nil {
			return nil, compression, fmt.Errorf("reading %s: %w", entry.Filename(), err)
		}

		files = append(files, PayloadFile{
			Name:   path.Clean("/" + strings.TrimPrefix(entry.Filename(), ".")),
			Mode:   uint32(entry.Mode()),
			Size:   written,
			SHA256: hex.EncodeToString(h.Sum(nil)),
		})
	}

	return files, compression, nil
}

// getFileFlags maps every file in the header to its flags
func getFileFlags(rpm *rpmutils.Rpm) (map[string]int64, error) {
	infos, err := rpm.Header.GetFiles()
	if err != nil {
		return nil, err
	}
	flags := make(map[string]int64, len(infos))
	for _, fi := range infos {
		flags[path.Clean("/"+fi.Name())] = int64(fi.Flags())
	}
	return flags, nil
}

// getStringTag safely gets a string tag from RPM
func getStringTag(rpm *rpmutils.Rpm, tag int) string {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return ""
	}

	// Handle different types that might be returned
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	default:
		// Try to convert to string using fmt
		return fmt.Sprintf("%v", v)
	}

	return ""
}

// getIntTag safely gets the first value of an integer tag from RPM
func getIntTag(rpm *rpmutils.Rpm, tag int) int64 {
	if vals := getIntsTag(rpm, tag); len(vals) > 0 {
		return vals[0]
	}
	return 0
}

// getIntsTag safely gets an integer array tag from RPM
func getIntsTag(rpm *rpmutils.Rpm, tag int) []int64 {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return nil
	}

	var out []int64
	switch v := val.(type) {
	case int:
		out = append(out, int64(v))
	case int64:
		out = append(out, v)
	case []int:
		for _, i := range v {
			out = append(out, int64(i))
		}
	case []int32:
		for _, i := range v {
			out = append(out, int64(i))
		}
	case []int64:
		out = append(out, v...)
	case []uint32:
		for _, i := range v {
			out = append(out, int64(i))
		}
	case []uint64:
		for _, i := range v {
			out = append(out, int64(i))
		}
	}
	return out
}

// getStringSliceTag safely gets a string slice tag from RPM
func getStringSliceTag(rpm *rpmutils.Rpm, tag int) []string {
	val, err := rpm.Header.Get(tag)
	if err != nil {
		return nil
	}
	if slice, ok := val.([]string); ok {
		return slice
	}
	return nil
}

// getRelations renders name/flags/version tag triples as "name op version"
func getRelations(rpm *rpmutils.Rpm, nameTag, flagsTag, versionTag int) []string {
	names := getStringSliceTag(rpm, nameTag)
	flags := getIntsTag(rpm, flagsTag)
	versions := getStringSliceTag(rpm, versionTag)

	var result []string
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		var op, version string
		if i < len(flags) {
			op = senseOperator(flags[i])
		}
		if i < len(versions) {
			version = versions[i]
		}
		if op == "" || version == "" {
			result = append(result, name)
			continue
		}
		result = append(result, fmt.Sprintf("%s %s %s", name, op, version))
	}
	return result
}

func getChangelog(rpm *rpmutils.Rpm) []ChangelogInfo {
	times := getIntsTag(rpm, tagChangelogTime)
	names := getStringSliceTag(rpm, tagChangelogName)
	texts := getStringSliceTag(rpm, tagChangelogText)

	var entries []ChangelogInfo
	for i := range times {
		if i >= len(names) || i >= len(texts) {
			break
		}
		// Stored as unsigned seconds
		entries = append(entries, ChangelogInfo{Time: int64(uint32(times[i])), Author: names[i], Text: texts[i]})
	}
	return entries
}
